package resignation

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

// EmploymentTerminator は承認済み退職により雇用を終了させます。
type EmploymentTerminator interface {
	FindByID(ctx context.Context, id string) (*employment.Record, error)
	Terminate(ctx context.Context, employmentID string, lastDay *time.Time) error
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Service は退職申請に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	employments EmploymentTerminator
	companies   company.Repository
	notifier    notification.Notifier
	clock       Clock
	tx          TransactionManager
}

// NewService は Service を生成します。tx が nil の場合はトランザクションを
// 張らずに実行します。
func NewService(repo Repository, employments EmploymentTerminator, companies company.Repository, notifier notification.Notifier, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, employments: employments, companies: companies, notifier: notifier, clock: clock, tx: tx}
}

// RequestInput は退職申請作成の入力です。申請は学生のみが行えます。
type RequestInput struct {
	EmploymentID    string
	StudentUserID   string
	Reason          string
	ProposedLastDay *time.Time
}

// Request は pending 状態の退職申請を作成し、企業オーナーへ通知します。
func (s *Service) Request(ctx context.Context, in RequestInput) (*Resignation, error) {
	if strings.TrimSpace(in.EmploymentID) == "" {
		return nil, ErrInvalidID
	}

	emp, err := s.employments.FindByID(ctx, in.EmploymentID)
	if err != nil {
		return nil, err
	}
	if emp.UserID != in.StudentUserID {
		return nil, ErrForbidden
	}

	now := s.clock.Now()
	r := &Resignation{
		EmploymentID:    emp.ID,
		InitiatedBy:     in.StudentUserID,
		Reason:          in.Reason,
		ProposedLastDay: in.ProposedLastDay,
		Status:          StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.repo.Create(ctx, r)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, emp.CompanyID, notification.TypeResignationRequested, emp.ID)
	return created, nil
}

// CancelInput は申請取り消しの入力です。
type CancelInput struct {
	ID            string
	StudentUserID string
}

// Cancel は学生が自身の pending 申請を取り消します。
func (s *Service) Cancel(ctx context.Context, in CancelInput) (*Resignation, error) {
	r, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	emp, err := s.employments.FindByID(ctx, r.EmploymentID)
	if err != nil {
		return nil, err
	}
	if emp.UserID != in.StudentUserID {
		return nil, ErrForbidden
	}

	r.Status = StatusCancelled
	r.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, r)
}

// DecideInput は企業・管理者による裁定の入力です。
type DecideInput struct {
	ID            string
	DeciderUserID string
}

// Approve は pending の申請を承認し、雇用を terminated にします。最終日は
// 申請の proposedLastDay、未指定時は裁定時刻です。
func (s *Service) Approve(ctx context.Context, in DecideInput) (*Resignation, error) {
	r, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	emp, err := s.employments.FindByID(ctx, r.EmploymentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	r.Status = StatusApproved
	r.DecidedBy = in.DeciderUserID
	r.DecidedAt = &now
	r.UpdatedAt = now

	// 雇用の終了と申請の更新は同一トランザクションで行います。
	var updated *Resignation
	err = s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		if err := s.employments.Terminate(ctx, emp.ID, r.ProposedLastDay); err != nil {
			return err
		}
		updated, err = s.repo.Update(ctx, r)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notifyStudent(ctx, emp.UserID, notification.TypeResignationApproved, emp.ID)
	s.notifyStudent(ctx, emp.UserID, notification.TypeEmploymentTerminated, emp.ID)
	return updated, nil
}

// Reject は pending の申請を却下します。雇用状態は変わりません。
func (s *Service) Reject(ctx context.Context, in DecideInput) (*Resignation, error) {
	r, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, ErrInvalidTransition
	}

	emp, err := s.employments.FindByID(ctx, r.EmploymentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	r.Status = StatusRejected
	r.DecidedBy = in.DeciderUserID
	r.DecidedAt = &now
	r.UpdatedAt = now

	updated, err := s.repo.Update(ctx, r)
	if err != nil {
		return nil, err
	}

	s.notifyStudent(ctx, emp.UserID, notification.TypeResignationRejected, emp.ID)
	return updated, nil
}

func (s *Service) load(ctx context.Context, id string) (*Resignation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

func (s *Service) notifyStudent(ctx context.Context, userID, notifyType, employmentID string) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Create(ctx, notification.CreateInput{
		RecipientUserID: userID,
		RecipientRole:   notification.RoleStudent,
		Type:            notifyType,
		Title:           "Resignation update",
		Data:            map[string]any{"employmentId": employmentID},
	})
}

func (s *Service) notifyOwner(ctx context.Context, companyID, notifyType, employmentID string) {
	if s.notifier == nil || s.companies == nil {
		return
	}
	ownerID, err := company.OwnerUserID(ctx, s.companies, companyID)
	if err != nil {
		return
	}
	_, _ = s.notifier.Create(ctx, notification.CreateInput{
		RecipientUserID: ownerID,
		RecipientRole:   notification.RoleCompany,
		Type:            notifyType,
		Title:           "Resignation update",
		Data:            map[string]any{"employmentId": employmentID},
	})
}
