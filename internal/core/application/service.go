package application

import (
	"context"
	"fmt"
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

// EmploymentOpener は内定承諾時に雇用レコードを開始します。
type EmploymentOpener interface {
	Open(ctx context.Context, in employment.OpenInput) (*employment.Record, error)
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

// Service は応募に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	companies   company.Repository
	employments EmploymentOpener
	notifier    notification.Notifier
	clock       Clock
	tx          TransactionManager
}

// NewService は Service を生成します。tx が nil の場合はトランザクションを
// 張らずに実行します。
func NewService(repo Repository, companies company.Repository, employments EmploymentOpener, notifier notification.Notifier, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, companies: companies, employments: employments, notifier: notifier, clock: clock, tx: tx}
}

// SubmitInput は応募作成の入力です。
type SubmitInput struct {
	UserID        string
	CompanyID     string
	JobListingID  string
	ValidityUntil *time.Time
}

// Submit は新規応募を作成します。validityUntil 未指定時は 14 日後です。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Application, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.CompanyID) == "" {
		return nil, ErrInvalidID
	}

	now := s.clock.Now()
	validity := now.AddDate(0, 0, DefaultValidityDays)
	if in.ValidityUntil != nil {
		validity = *in.ValidityUntil
	}

	a := &Application{
		UserID:        in.UserID,
		CompanyID:     in.CompanyID,
		JobListingID:  in.JobListingID,
		Status:        StatusNew,
		ValidityUntil: validity,
		SubmittedAt:   now,
		History: []HistoryEntry{{
			At:          now,
			ActorUserID: in.UserID,
			ActorRole:   ActorRoleStudent,
			Action:      "apply",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	return s.repo.Create(ctx, a)
}

// ActionInput は単純な操作遷移の入力です。
type ActionInput struct {
	ID          string
	ActorUserID string
}

// Shortlist は応募を選考対象にします (new→shortlisted)。
func (s *Service) Shortlist(ctx context.Context, in ActionInput) (*Application, error) {
	return s.companyAction(ctx, in.ID, "shortlist", func(a *Application) (Status, error) {
		if a.Status != StatusNew {
			return "", ErrInvalidTransition
		}
		return StatusShortlisted, nil
	}, in.ActorUserID, notification.TypeApplicationShortlist)
}

// ScheduleInterviewInput は面接設定の入力です。
type ScheduleInterviewInput struct {
	ID          string
	ActorUserID string
	ScheduledAt *time.Time
	Location    string
	Mode        string
	Notes       string
}

// ScheduleInterview は面接を設定します (shortlisted|interview_scheduled→interview_scheduled)。
func (s *Service) ScheduleInterview(ctx context.Context, in ScheduleInterviewInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusShortlisted && a.Status != StatusInterviewScheduled {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	a.Status = StatusInterviewScheduled
	a.Interview = &Interview{
		ScheduledAt: in.ScheduledAt,
		Location:    in.Location,
		Mode:        in.Mode,
		Notes:       in.Notes,
		UpdatedAt:   now,
	}
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleCompany, Action: "scheduleInterview"})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyApplicant(ctx, updated, notification.TypeInterviewScheduled)
	return updated, nil
}

// CancelInterview は面接を取り消し選考中に戻します (interview_scheduled→shortlisted)。
func (s *Service) CancelInterview(ctx context.Context, in ActionInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInterviewScheduled {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	a.Status = StatusShortlisted
	if a.Interview != nil {
		a.Interview.ScheduledAt = nil
		a.Interview.UpdatedAt = now
	}
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleCompany, Action: "cancelInterview"})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyApplicant(ctx, updated, notification.TypeInterviewCancelled)
	return updated, nil
}

// SendOfferInput は内定送付の入力です。
type SendOfferInput struct {
	ID          string
	ActorUserID string
	ValidUntil  *time.Time
	Title       string
	Notes       string
}

// SendOffer は内定を送付します (shortlisted|interview_scheduled→pending_acceptance)。
// validUntil 未指定時は 7 日後です。
func (s *Service) SendOffer(ctx context.Context, in SendOfferInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusShortlisted && a.Status != StatusInterviewScheduled {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	validUntil := now.AddDate(0, 0, DefaultOfferValidityDays)
	if in.ValidUntil != nil {
		validUntil = *in.ValidUntil
	}

	a.Status = StatusPendingAcceptance
	a.Offer = &Offer{SentAt: now, ValidUntil: validUntil, Title: in.Title, Notes: in.Notes}
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleCompany, Action: "sendOffer"})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyApplicant(ctx, updated, notification.TypeOfferSent)
	return updated, nil
}

// Reject は応募を不採用にします (未解決状態→rejected)。
func (s *Service) Reject(ctx context.Context, in ActionInput) (*Application, error) {
	return s.companyAction(ctx, in.ID, "reject", func(a *Application) (Status, error) {
		if !isUnresolved(a.Status) {
			return "", ErrInvalidTransition
		}
		return StatusRejected, nil
	}, in.ActorUserID, notification.TypeApplicationRejected)
}

// MarkNoShow は面接不参加を記録します (interview_scheduled→not_attending)。
func (s *Service) MarkNoShow(ctx context.Context, in ActionInput) (*Application, error) {
	return s.companyAction(ctx, in.ID, "markNoShow", func(a *Application) (Status, error) {
		if a.Status != StatusInterviewScheduled {
			return "", ErrInvalidTransition
		}
		return StatusNotAttending, nil
	}, in.ActorUserID, notification.TypeInterviewNoShow)
}

// Withdraw は学生による取り下げです (未解決状態→withdrawn)。
func (s *Service) Withdraw(ctx context.Context, in ActionInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if !isUnresolved(a.Status) {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	a.Status = StatusWithdrawn
	a.WithdrawnAt = &now
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleStudent, Action: "withdraw"})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyCompanyOwner(ctx, updated, notification.TypeApplicationWithdrawn)
	return updated, nil
}

// DeclineInterview は学生による面接辞退です (interview_scheduled→shortlisted)。
func (s *Service) DeclineInterview(ctx context.Context, in ActionInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusInterviewScheduled {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	a.Status = StatusShortlisted
	if a.Interview != nil {
		a.Interview.Outcome = "declined"
		a.Interview.UpdatedAt = now
	}
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleStudent, Action: "declineInterview"})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyCompanyOwner(ctx, updated, notification.TypeInterviewDeclined)
	return updated, nil
}

// AcceptOfferInput は内定承諾の入力です。
type AcceptOfferInput struct {
	ID          string
	ActorUserID string
	StartDate   *time.Time
	EndDate     *time.Time
}

// AcceptOffer は内定を承諾し (pending_acceptance→accepted)、upcoming 状態の
// 雇用レコードを開始します。
func (s *Service) AcceptOffer(ctx context.Context, in AcceptOfferInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPendingAcceptance {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	a.Status = StatusAccepted
	a.AcceptedAt = &now
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleStudent, Action: "acceptOffer"})
	a.UpdatedAt = now

	// 承諾の永続化と雇用レコードの開始は同一トランザクションで行います。
	var updated *Application
	err = s.tx.WithinReadWrite(ctx, func(ctx context.Context) error {
		updated, err = s.repo.Update(ctx, a)
		if err != nil {
			return err
		}

		if s.employments != nil {
			if _, err := s.employments.Open(ctx, employment.OpenInput{
				ApplicationID: updated.ID,
				JobListingID:  updated.JobListingID,
				UserID:        updated.UserID,
				CompanyID:     updated.CompanyID,
				StartDate:     in.StartDate,
				EndDate:       in.EndDate,
			}); err != nil {
				return fmt.Errorf("application: open employment record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyCompanyOwner(ctx, updated, notification.TypeOfferAccepted)

	return updated, nil
}

// DeclineOffer は学生による内定辞退です (pending_acceptance→rejected)。
func (s *Service) DeclineOffer(ctx context.Context, in ActionInput) (*Application, error) {
	a, err := s.load(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusPendingAcceptance {
		return nil, ErrInvalidTransition
	}

	now := s.clock.Now()
	a.Status = StatusRejected
	a.RejectedAt = &now
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: in.ActorUserID, ActorRole: ActorRoleStudent, Action: "declineOffer"})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyCompanyOwner(ctx, updated, notification.TypeOfferDeclined)
	return updated, nil
}

func (s *Service) load(ctx context.Context, id string) (*Application, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// companyAction は状態のみを書き換える企業側操作の共通処理です。
func (s *Service) companyAction(ctx context.Context, id, action string, guard func(*Application) (Status, error), actorUserID, notifyType string) (*Application, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := guard(a)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	a.Status = next
	if next == StatusRejected {
		a.RejectedAt = &now
	}
	a.History = append(a.History, HistoryEntry{At: now, ActorUserID: actorUserID, ActorRole: ActorRoleCompany, Action: action})
	a.UpdatedAt = now

	updated, err := s.repo.Update(ctx, a)
	if err != nil {
		return nil, err
	}
	s.notifyApplicant(ctx, updated, notifyType)
	return updated, nil
}

// notifyApplicant は応募者宛の通知を送ります。通知シンクの失敗は
// 操作自体の失敗にはしません。
func (s *Service) notifyApplicant(ctx context.Context, a *Application, notifyType string) {
	if s.notifier == nil {
		return
	}
	_, _ = s.notifier.Create(ctx, notification.CreateInput{
		RecipientUserID: a.UserID,
		RecipientRole:   notification.RoleStudent,
		Type:            notifyType,
		Title:           "Application update",
		Data:            map[string]any{"applicationId": a.ID},
	})
}

// notifyCompanyOwner は企業オーナー宛の通知を送ります。オーナーが
// 解決できない場合は送信しません。
func (s *Service) notifyCompanyOwner(ctx context.Context, a *Application, notifyType string) {
	if s.notifier == nil || s.companies == nil {
		return
	}
	ownerID, err := company.OwnerUserID(ctx, s.companies, a.CompanyID)
	if err != nil {
		return
	}
	_, _ = s.notifier.Create(ctx, notification.CreateInput{
		RecipientUserID: ownerID,
		RecipientRole:   notification.RoleCompany,
		Type:            notifyType,
		Title:           "Application update",
		Data:            map[string]any{"applicationId": a.ID},
	})
}
