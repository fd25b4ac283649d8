package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/internlink/internlink/internal/core/application"
	"github.com/internlink/internlink/internal/core/company"
	"github.com/internlink/internlink/internal/core/employment"
	"github.com/internlink/internlink/internal/core/joblisting"
	"github.com/internlink/internlink/internal/core/notification"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

func (c *stubClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeListingStore struct {
	items map[string]*joblisting.JobListing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{items: map[string]*joblisting.JobListing{}}
}

func (f *fakeListingStore) FindByID(_ context.Context, id string) (*joblisting.JobListing, error) {
	j, ok := f.items[id]
	if !ok {
		return nil, joblisting.ErrListingNotFound
	}
	return j, nil
}

func (f *fakeListingStore) ListExpiring(_ context.Context, now time.Time, _, _ time.Duration, limit int) ([]*joblisting.JobListing, error) {
	var out []*joblisting.JobListing
	for _, j := range f.items {
		if joblisting.NeedsExpiryReminder(j, now) {
			out = append(out, j)
		}
	}
	sortListings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeListingStore) StampExpiryReminder(_ context.Context, id string, at time.Time) error {
	j, ok := f.items[id]
	if !ok {
		return joblisting.ErrListingNotFound
	}
	stamped := at
	j.LastExpiryReminderAt = &stamped
	return nil
}

func sortListings(items []*joblisting.JobListing) {
	sort.Slice(items, func(i, k int) bool { return items[i].ID < items[k].ID })
}

type fakeApplicationStore struct {
	items map[string]*application.Application
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{items: map[string]*application.Application{}}
}

func (f *fakeApplicationStore) Create(_ context.Context, a *application.Application) (*application.Application, error) {
	if a.ID == "" {
		a.ID = fmt.Sprintf("app-%d", len(f.items)+1)
	}
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeApplicationStore) Update(_ context.Context, a *application.Application) (*application.Application, error) {
	if _, ok := f.items[a.ID]; !ok {
		return nil, application.ErrApplicationNotFound
	}
	f.items[a.ID] = a
	return a, nil
}

func (f *fakeApplicationStore) FindByID(_ context.Context, id string) (*application.Application, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, application.ErrApplicationNotFound
	}
	return a, nil
}

func (f *fakeApplicationStore) ListExpiredValidity(_ context.Context, now time.Time, limit int) ([]*application.Application, error) {
	var out []*application.Application
	for _, a := range f.items {
		switch a.Status {
		case application.StatusNew, application.StatusShortlisted,
			application.StatusInterviewScheduled, application.StatusPendingAcceptance:
		default:
			continue
		}
		if a.ValidityUntil.After(now) {
			continue
		}
		out = append(out, a)
	}
	sortApplications(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeApplicationStore) ListExpiringOffers(_ context.Context, now time.Time, window time.Duration, limit int) ([]*application.Application, error) {
	var out []*application.Application
	for _, a := range f.items {
		if a.Status != application.StatusPendingAcceptance || a.Offer == nil {
			continue
		}
		if a.Offer.ValidUntil.Before(now) || a.Offer.ValidUntil.After(now.Add(window)) {
			continue
		}
		out = append(out, a)
	}
	sortApplications(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortApplications(items []*application.Application) {
	sort.Slice(items, func(i, k int) bool { return items[i].ID < items[k].ID })
}

type fakeEmploymentStore struct {
	items map[string]*employment.Record
}

func newFakeEmploymentStore() *fakeEmploymentStore {
	return &fakeEmploymentStore{items: map[string]*employment.Record{}}
}

func (f *fakeEmploymentStore) Create(_ context.Context, r *employment.Record) (*employment.Record, error) {
	if r.ID == "" {
		r.ID = fmt.Sprintf("emp-%d", len(f.items)+1)
	}
	f.items[r.ID] = r
	return r, nil
}

func (f *fakeEmploymentStore) Update(_ context.Context, r *employment.Record) (*employment.Record, error) {
	if _, ok := f.items[r.ID]; !ok {
		return nil, employment.ErrRecordNotFound
	}
	f.items[r.ID] = r
	return r, nil
}

func (f *fakeEmploymentStore) FindByID(_ context.Context, id string) (*employment.Record, error) {
	r, ok := f.items[id]
	if !ok {
		return nil, employment.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeEmploymentStore) ListByStatus(_ context.Context, status employment.Status, limit int) ([]*employment.Record, error) {
	var out []*employment.Record
	for _, r := range f.items {
		if r.Status == status {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeEmploymentStore) MarkOngoingDue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.items {
		if employment.StartDue(r, now) {
			r.Status = employment.StatusOngoing
			r.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (f *fakeEmploymentStore) MarkClosureDue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, r := range f.items {
		if employment.EndDue(r, now) {
			r.Status = employment.StatusClosure
			r.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (f *fakeEmploymentStore) UpdateStatus(_ context.Context, id string, expected, next employment.Status, now time.Time) error {
	r, ok := f.items[id]
	if !ok {
		return employment.ErrRecordNotFound
	}
	if r.Status != expected {
		return employment.ErrInvalidTransition
	}
	r.Status = next
	r.UpdatedAt = now
	return nil
}

func (f *fakeEmploymentStore) Terminate(_ context.Context, id string, lastDay, now time.Time) error {
	r, ok := f.items[id]
	if !ok {
		return employment.ErrRecordNotFound
	}
	day := lastDay
	r.Status = employment.StatusTerminated
	r.EndDate = &day
	r.UpdatedAt = now
	return nil
}

type fakeCompanyStore struct {
	owners map[string]string
}

func (f *fakeCompanyStore) FindByID(_ context.Context, id string) (*company.Company, error) {
	owner, ok := f.owners[id]
	if !ok {
		return nil, company.ErrCompanyNotFound
	}
	return &company.Company{ID: id, OwnerUserID: owner}, nil
}

type fakeTimesheetCounts struct {
	counts map[string]int
}

func (f *fakeTimesheetCounts) CountUnapproved(_ context.Context, employmentID string, _ time.Time) (int, error) {
	return f.counts[employmentID], nil
}

// captureSink は作成された通知を記録し、ExistsSince を記録から答えます。
type captureSink struct {
	clock   *stubClock
	created []*notification.Notification
}

func (s *captureSink) Create(_ context.Context, in notification.CreateInput) (*notification.Notification, error) {
	n := &notification.Notification{
		ID:              fmt.Sprintf("ntf-%d", len(s.created)+1),
		RecipientUserID: in.RecipientUserID,
		RecipientRole:   in.RecipientRole,
		Type:            in.Type,
		Title:           in.Title,
		Body:            in.Body,
		Data:            in.Data,
		CreatedAt:       s.clock.Now(),
	}
	s.created = append(s.created, n)
	return n, nil
}

func (s *captureSink) ExistsSince(_ context.Context, filter notification.ExistsFilter) (bool, error) {
	for _, n := range s.created {
		if n.RecipientUserID != filter.RecipientUserID || n.Type != filter.Type {
			continue
		}
		if n.CreatedAt.Before(filter.Since) {
			continue
		}
		if filter.EmploymentID != "" {
			v, _ := n.Data["employmentId"].(string)
			if v != filter.EmploymentID {
				continue
			}
		}
		return true, nil
	}
	return false, nil
}

func (s *captureSink) ofType(notifyType string) []*notification.Notification {
	var out []*notification.Notification
	for _, n := range s.created {
		if n.Type == notifyType {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	sched       *Scheduler
	clock       *stubClock
	listings    *fakeListingStore
	apps        *fakeApplicationStore
	employments *fakeEmploymentStore
	counts      *fakeTimesheetCounts
	companies   *fakeCompanyStore
	sink        *captureSink
}

func newTestEnv(now time.Time) *testEnv {
	clock := &stubClock{now: now}
	listings := newFakeListingStore()
	apps := newFakeApplicationStore()
	employments := newFakeEmploymentStore()
	counts := &fakeTimesheetCounts{counts: map[string]int{}}
	companies := &fakeCompanyStore{owners: map[string]string{}}
	sink := &captureSink{clock: clock}

	sched := New(Deps{
		Listings:      listings,
		Applications:  apps,
		Employments:   employments,
		Companies:     companies,
		Gate:          employment.NewService(employments, counts, clock),
		Notifications: sink,
		Clock:         clock,
	})

	return &testEnv{
		sched:       sched,
		clock:       clock,
		listings:    listings,
		apps:        apps,
		employments: employments,
		counts:      counts,
		companies:   companies,
		sink:        sink,
	}
}
