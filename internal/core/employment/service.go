package employment

import (
	"context"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// DefaultRequiredDocs は内定承諾時に要求される書類タグの既定値です。
var DefaultRequiredDocs = []string{"contract", "nda"}

// DefaultCadence は勤務表の既定サイクルです。
const DefaultCadence = "weekly"

// Service は雇用レコードに関するユースケースをまとめます。
type Service struct {
	repo       Repository
	timesheets TimesheetCounter
	clock      Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, timesheets TimesheetCounter, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, timesheets: timesheets, clock: clock}
}

// OpenInput は内定承諾により雇用レコードを開始する際の入力です。
type OpenInput struct {
	ApplicationID string
	JobListingID  string
	UserID        string
	CompanyID     string
	StartDate     *time.Time
	EndDate       *time.Time
	RequiredDocs  []string
}

// Open は upcoming 状態の雇用レコードを作成します。
func (s *Service) Open(ctx context.Context, in OpenInput) (*Record, error) {
	if strings.TrimSpace(in.UserID) == "" || strings.TrimSpace(in.CompanyID) == "" {
		return nil, ErrInvalidID
	}

	requiredDocs := in.RequiredDocs
	if len(requiredDocs) == 0 {
		requiredDocs = append([]string(nil), DefaultRequiredDocs...)
	}

	now := s.clock.Now()
	r := &Record{
		ApplicationID: in.ApplicationID,
		JobListingID:  in.JobListingID,
		UserID:        in.UserID,
		CompanyID:     in.CompanyID,
		Status:        StatusUpcoming,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		Cadence:       DefaultCadence,
		RequiredDocs:  requiredDocs,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return s.repo.Create(ctx, r)
}

// AttachDocInput は書類添付の入力です。
type AttachDocInput struct {
	EmploymentID string
	Type         string
	FileKey      string
}

// AttachDoc は雇用レコードへ書類を添付します。検証は別操作です。
func (s *Service) AttachDoc(ctx context.Context, in AttachDocInput) (*Record, error) {
	if strings.TrimSpace(in.EmploymentID) == "" {
		return nil, ErrInvalidID
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, ErrDocNotFound
	}

	r, err := s.repo.FindByID(ctx, in.EmploymentID)
	if err != nil {
		return nil, err
	}

	r.Docs = append(r.Docs, Doc{
		Type:       in.Type,
		FileKey:    in.FileKey,
		UploadedAt: s.clock.Now(),
	})
	r.UpdatedAt = s.clock.Now()

	return s.repo.Update(ctx, r)
}

// VerifyDocInput は書類検証の入力です。
type VerifyDocInput struct {
	EmploymentID string
	Type         string
}

// VerifyDoc は指定タイプの書類を検証済みにします。該当タイプの書類が
// 存在しない場合は ErrDocNotFound を返します。検証済みの書類を再度
// 検証しても結果は変わりません (ゲートの単調性)。
func (s *Service) VerifyDoc(ctx context.Context, in VerifyDocInput) (*Record, error) {
	if strings.TrimSpace(in.EmploymentID) == "" {
		return nil, ErrInvalidID
	}

	r, err := s.repo.FindByID(ctx, in.EmploymentID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range r.Docs {
		if r.Docs[i].Type == in.Type {
			r.Docs[i].Verified = true
			found = true
		}
	}
	if !found {
		return nil, ErrDocNotFound
	}

	r.UpdatedAt = s.clock.Now()
	return s.repo.Update(ctx, r)
}

// Terminate は承認済み退職により雇用を terminated にします。終端状態からの
// 遷移は許可されません。lastDay が nil の場合は現在時刻が最終日になります。
func (s *Service) Terminate(ctx context.Context, employmentID string, lastDay *time.Time) error {
	if strings.TrimSpace(employmentID) == "" {
		return ErrInvalidID
	}

	r, err := s.repo.FindByID(ctx, employmentID)
	if err != nil {
		return err
	}
	if IsTerminal(r.Status) {
		return ErrTerminalState
	}

	now := s.clock.Now()
	day := now
	if lastDay != nil {
		day = *lastDay
	}

	return s.repo.Terminate(ctx, r.ID, day, now)
}

// UnapprovedTimesheets はゲート評価の入力となる未承認勤務表の件数を返します。
// endDate を持たないレコードでは常に 0 です。
func (s *Service) UnapprovedTimesheets(ctx context.Context, r *Record) (int, error) {
	if r.EndDate == nil {
		return 0, nil
	}
	return s.timesheets.CountUnapproved(ctx, r.ID, *r.EndDate)
}

// ClosureComplete はクロージャ完了ゲートを新鮮に評価します。
func (s *Service) ClosureComplete(ctx context.Context, r *Record) (bool, error) {
	pending, err := s.UnapprovedTimesheets(ctx, r)
	if err != nil {
		return false, err
	}
	return IsClosureComplete(r, pending), nil
}
