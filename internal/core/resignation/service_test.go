package resignation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/internlink/internlink/internal/core/company"
	"github.com/internlink/internlink/internal/core/employment"
	"github.com/internlink/internlink/internal/core/notification"
)

var serviceNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

type stubRepo struct {
	items map[string]*Resignation
}

func (r *stubRepo) Create(_ context.Context, rs *Resignation) (*Resignation, error) {
	if rs.ID == "" {
		rs.ID = "res-1"
	}
	r.items[rs.ID] = rs
	return rs, nil
}

func (r *stubRepo) Update(_ context.Context, rs *Resignation) (*Resignation, error) {
	if _, ok := r.items[rs.ID]; !ok {
		return nil, ErrResignationNotFound
	}
	r.items[rs.ID] = rs
	return rs, nil
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*Resignation, error) {
	rs, ok := r.items[id]
	if !ok {
		return nil, ErrResignationNotFound
	}
	return rs, nil
}

type stubEmployments struct {
	records    map[string]*employment.Record
	terminated map[string]*time.Time
}

func (s *stubEmployments) FindByID(_ context.Context, id string) (*employment.Record, error) {
	r, ok := s.records[id]
	if !ok {
		return nil, employment.ErrRecordNotFound
	}
	return r, nil
}

func (s *stubEmployments) Terminate(_ context.Context, employmentID string, lastDay *time.Time) error {
	if _, ok := s.records[employmentID]; !ok {
		return employment.ErrRecordNotFound
	}
	s.records[employmentID].Status = employment.StatusTerminated
	s.terminated[employmentID] = lastDay
	return nil
}

type stubCompanies struct{}

func (stubCompanies) FindByID(_ context.Context, id string) (*company.Company, error) {
	return &company.Company{ID: id, OwnerUserID: "owner-1"}, nil
}

type captureNotifier struct {
	created []notification.CreateInput
}

func (c *captureNotifier) Create(_ context.Context, in notification.CreateInput) (*notification.Notification, error) {
	c.created = append(c.created, in)
	return &notification.Notification{ID: "ntf-1"}, nil
}

func newTestService() (*Service, *stubRepo, *stubEmployments, *captureNotifier) {
	repo := &stubRepo{items: map[string]*Resignation{}}
	employments := &stubEmployments{
		records: map[string]*employment.Record{
			"emp-1": {ID: "emp-1", UserID: "stu-1", CompanyID: "co-1", Status: employment.StatusOngoing},
		},
		terminated: map[string]*time.Time{},
	}
	notifier := &captureNotifier{}
	svc := NewService(repo, employments, stubCompanies{}, notifier, &stubClock{now: serviceNow}, nil)
	return svc, repo, employments, notifier
}

func TestRequest(t *testing.T) {
	t.Parallel()

	svc, _, _, notifier := newTestService()

	lastDay := serviceNow.Add(14 * 24 * time.Hour)
	r, err := svc.Request(context.Background(), RequestInput{
		EmploymentID:    "emp-1",
		StudentUserID:   "stu-1",
		Reason:          "returning to school",
		ProposedLastDay: &lastDay,
	})
	if err != nil {
		t.Fatalf("Request returned error: %v", err)
	}

	if r.Status != StatusPending {
		t.Errorf("status = %q, want pending", r.Status)
	}
	if len(notifier.created) != 1 || notifier.created[0].Type != notification.TypeResignationRequested {
		t.Errorf("notifications = %+v", notifier.created)
	}
	if notifier.created[0].RecipientUserID != "owner-1" {
		t.Errorf("recipient = %q, want owner-1", notifier.created[0].RecipientUserID)
	}
}

func TestRequest_ForbiddenForOtherStudent(t *testing.T) {
	t.Parallel()

	svc, _, _, _ := newTestService()

	_, err := svc.Request(context.Background(), RequestInput{EmploymentID: "emp-1", StudentUserID: "stu-2"})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestApprove_TerminatesEmployment(t *testing.T) {
	t.Parallel()

	svc, repo, employments, notifier := newTestService()
	lastDay := serviceNow.Add(7 * 24 * time.Hour)
	repo.items["res-1"] = &Resignation{
		ID:              "res-1",
		EmploymentID:    "emp-1",
		InitiatedBy:     "stu-1",
		Status:          StatusPending,
		ProposedLastDay: &lastDay,
	}

	r, err := svc.Approve(context.Background(), DecideInput{ID: "res-1", DeciderUserID: "owner-1"})
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}

	if r.Status != StatusApproved || r.DecidedBy != "owner-1" || r.DecidedAt == nil {
		t.Errorf("unexpected result: %+v", r)
	}
	if got := employments.terminated["emp-1"]; got == nil || !got.Equal(lastDay) {
		t.Errorf("terminated lastDay = %v, want %v", got, lastDay)
	}

	types := map[string]bool{}
	for _, n := range notifier.created {
		types[n.Type] = true
	}
	if !types[notification.TypeResignationApproved] || !types[notification.TypeEmploymentTerminated] {
		t.Errorf("notification types = %v", types)
	}
}

func TestApprove_RequiresPending(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService()
	repo.items["res-1"] = &Resignation{ID: "res-1", EmploymentID: "emp-1", Status: StatusCancelled}

	_, err := svc.Approve(context.Background(), DecideInput{ID: "res-1", DeciderUserID: "owner-1"})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestReject(t *testing.T) {
	t.Parallel()

	svc, repo, employments, notifier := newTestService()
	repo.items["res-1"] = &Resignation{ID: "res-1", EmploymentID: "emp-1", InitiatedBy: "stu-1", Status: StatusPending}

	r, err := svc.Reject(context.Background(), DecideInput{ID: "res-1", DeciderUserID: "owner-1"})
	if err != nil {
		t.Fatalf("Reject returned error: %v", err)
	}

	if r.Status != StatusRejected {
		t.Errorf("status = %q, want rejected", r.Status)
	}
	if employments.records["emp-1"].Status != employment.StatusOngoing {
		t.Error("rejection must not touch the employment record")
	}
	if len(notifier.created) != 1 || notifier.created[0].Type != notification.TypeResignationRejected {
		t.Errorf("notifications = %+v", notifier.created)
	}
}

func TestCancel(t *testing.T) {
	t.Parallel()

	svc, repo, _, _ := newTestService()
	repo.items["res-1"] = &Resignation{ID: "res-1", EmploymentID: "emp-1", InitiatedBy: "stu-1", Status: StatusPending}

	r, err := svc.Cancel(context.Background(), CancelInput{ID: "res-1", StudentUserID: "stu-1"})
	if err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}
	if r.Status != StatusCancelled {
		t.Errorf("status = %q, want cancelled", r.Status)
	}

	// 取り消し済みの申請は再度取り消せない。
	if _, err := svc.Cancel(context.Background(), CancelInput{ID: "res-1", StudentUserID: "stu-1"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
