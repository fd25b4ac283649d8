package timesheet

import (
	"context"
	"strings"
	"time"

	"github.com/internlink/internlink/internal/core/company"
	"github.com/internlink/internlink/internal/core/employment"
	"github.com/internlink/internlink/internal/core/notification"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// EmploymentLookup は勤務表が属する雇用レコードを解決します。
type EmploymentLookup interface {
	FindByID(ctx context.Context, id string) (*employment.Record, error)
}

// Service は勤務表に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	employments EmploymentLookup
	companies   company.Repository
	notifier    notification.Notifier
	clock       Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, employments EmploymentLookup, companies company.Repository, notifier notification.Notifier, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, employments: employments, companies: companies, notifier: notifier, clock: clock}
}

// SubmitInput は勤務表提出の入力です。
type SubmitInput struct {
	ID string
}

// Submit は勤務表を提出します (draft|rejected→submitted)。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Timesheet, error) {
	t, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !CanSubmit(t.Status) {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	t.Status = StatusSubmitted
	t.SubmittedAt = &now
	t.UpdatedAt = now

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	s.notifyOwner(ctx, updated, notification.TypeTimesheetSubmitted)
	return updated, nil
}

// WithdrawSubmission は提出を取り下げます (submitted→draft)。
func (s *Service) WithdrawSubmission(ctx context.Context, in SubmitInput) (*Timesheet, error) {
	t, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusSubmitted {
		return nil, ErrInvalidTransition
	}

	t.Status = StatusDraft
	t.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, t)
}

// ReviewInput は承認・差し戻しの入力です。
type ReviewInput struct {
	ID             string
	ReviewerUserID string
	Feedback       string
}

// Approve は勤務表を承認します (submitted→approved)。承認済みの勤務表を
// 再度承認しても状態は変わりません (ゲートの単調性)。
func (s *Service) Approve(ctx context.Context, in ReviewInput) (*Timesheet, error) {
	t, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusApproved {
		return t, nil
	}
	if !CanReview(t.Status) {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	t.Status = StatusApproved
	t.ReviewedBy = in.ReviewerUserID
	t.ReviewedAt = &now
	t.UpdatedAt = now

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	s.notifyStudent(ctx, updated, notification.TypeTimesheetApproved)
	return updated, nil
}

// Reject は勤務表を差し戻します (submitted→rejected)。
func (s *Service) Reject(ctx context.Context, in ReviewInput) (*Timesheet, error) {
	t, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !CanReview(t.Status) {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	t.Status = StatusRejected
	t.ReviewedBy = in.ReviewerUserID
	t.ReviewedAt = &now
	t.Feedback = in.Feedback
	t.UpdatedAt = now

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		return nil, err
	}
	s.notifyStudent(ctx, updated, notification.TypeTimesheetRejected)
	return updated, nil
}

func (s *Service) load(ctx context.Context, id string) (*Timesheet, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) notifyStudent(ctx context.Context, t *Timesheet, notifyType string) {
	if s.notifier == nil || s.employments == nil {
		return
	}
	emp, err := s.employments.FindByID(ctx, t.EmploymentID)
	if err != nil {
		return
	}
	_, _ = s.notifier.Create(ctx, notification.CreateInput{
		RecipientUserID: emp.UserID,
		RecipientRole:   notification.RoleStudent,
		Type:            notifyType,
		Title:           "Timesheet update",
		Data:            map[string]any{"timesheetId": t.ID, "employmentId": t.EmploymentID},
	})
}

func (s *Service) notifyOwner(ctx context.Context, t *Timesheet, notifyType string) {
	if s.notifier == nil || s.employments == nil || s.companies == nil {
		return
	}
	emp, err := s.employments.FindByID(ctx, t.EmploymentID)
	if err != nil {
		return
	}
	ownerID, err := company.OwnerUserID(ctx, s.companies, emp.CompanyID)
	if err != nil {
		return
	}
	_, _ = s.notifier.Create(ctx, notification.CreateInput{
		RecipientUserID: ownerID,
		RecipientRole:   notification.RoleCompany,
		Type:            notifyType,
		Title:           "Timesheet update",
		Data:            map[string]any{"timesheetId": t.ID, "employmentId": t.EmploymentID},
	})
}
