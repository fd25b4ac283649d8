// Package employment は雇用レコードのライフサイクルを提供します。
// 時間駆動の遷移 (upcoming→ongoing→closure) とゲート付きの終端遷移
// (closure→completed) を持ち、承認済み退職により terminated へ至ります。
package employment

import "time"

// Status は雇用レコードの状態を表します。永続化されるタグは安定で追加のみ可能です。
type Status string

const (
	StatusUpcoming   Status = "upcoming"
	StatusOngoing    Status = "ongoing"
	StatusClosure    Status = "closure"
	StatusCompleted  Status = "completed"
	StatusTerminated Status = "terminated"
)

// Doc は雇用に紐づく提出書類です。
type Doc struct {
	Type       string
	FileKey    string
	Verified   bool
	UploadedAt time.Time
}

// Note は雇用レコードへの注記です。
type Note struct {
	At       time.Time
	ByUserID string
	Text     string
}

// Record は雇用レコードエンティティです。
type Record struct {
	ID            string
	ApplicationID string
	JobListingID  string
	UserID        string
	CompanyID     string
	Status        Status
	StartDate     *time.Time
	EndDate       *time.Time
	Cadence       string
	RequiredDocs  []string
	Docs          []Doc
	Notes         []Note
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidStatus は定義済みの状態かどうかを返します。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusUpcoming, StatusOngoing, StatusClosure, StatusCompleted, StatusTerminated:
		return true
	default:
		return false
	}
}

// IsTerminal は自動遷移が許可されない終端状態かどうかを返します。
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusTerminated
}

// StartDue は upcoming→ongoing の遷移が許可されるかを返します。
func StartDue(r *Record, now time.Time) bool {
	return r.Status == StatusUpcoming && r.StartDate != nil && !r.StartDate.After(now)
}

// EndDue は ongoing→closure の遷移が許可されるかを返します。
func EndDue(r *Record, now time.Time) bool {
	return r.Status == StatusOngoing && r.EndDate != nil && !r.EndDate.After(now)
}
