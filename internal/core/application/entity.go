// Package application は応募のライフサイクルを提供します。
// 企業・学生による操作遷移と、スケジューラによる自動遷移 (自動取り下げ、
// 内定期限リマインダー) の両方を同じガード層で扱います。
package application

import "time"

// Status は応募の状態を表します。永続化されるタグは安定で追加のみ可能です。
type Status string

const (
	StatusNew                Status = "new"
	StatusShortlisted        Status = "shortlisted"
	StatusInterviewScheduled Status = "interview_scheduled"
	StatusPendingAcceptance  Status = "pending_acceptance"
	StatusAccepted           Status = "accepted"
	StatusRejected           Status = "rejected"
	StatusWithdrawn          Status = "withdrawn"
	StatusNotAttending       Status = "not_attending"
)

// 応募と内定の既定有効期間です。
const (
	DefaultValidityDays      = 14
	DefaultOfferValidityDays = 7
)

// OfferReminderWindow は内定期限リマインダーの対象窓です。
const OfferReminderWindow = 24 * time.Hour

// アクターロールのタグです。履歴エントリに永続化されます。
const (
	ActorRoleStudent = "student"
	ActorRoleCompany = "company"
	ActorRoleAdmin   = "admin"
	ActorRoleSystem  = "system"
)

// HistoryEntry は応募履歴の 1 エントリです。履歴は追記専用です。
type HistoryEntry struct {
	At          time.Time
	ActorUserID string
	ActorRole   string
	Action      string
	Data        map[string]any
}

// Offer は送付済み内定の情報です。pending_acceptance の間のみ存在します。
type Offer struct {
	SentAt     time.Time
	ValidUntil time.Time
	Title      string
	Notes      string
}

// Interview は面接の調整情報です。
type Interview struct {
	ScheduledAt *time.Time
	Location    string
	Mode        string
	Notes       string
	Outcome     string
	UpdatedAt   time.Time
}

// Application は応募エンティティです。
type Application struct {
	ID            string
	UserID        string
	CompanyID     string
	JobListingID  string
	Status        Status
	ValidityUntil time.Time
	Offer         *Offer
	Interview     *Interview
	SubmittedAt   time.Time
	AcceptedAt    *time.Time
	RejectedAt    *time.Time
	WithdrawnAt   *time.Time
	History       []HistoryEntry
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsValidStatus は定義済みの状態かどうかを返します。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusShortlisted, StatusInterviewScheduled, StatusPendingAcceptance,
		StatusAccepted, StatusRejected, StatusWithdrawn, StatusNotAttending:
		return true
	default:
		return false
	}
}

// IsTerminal は自動遷移が許可されない終端状態かどうかを返します。
// 終端状態は固定点であり、どのチェックを再実行しても変化しません。
func IsTerminal(s Status) bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusWithdrawn, StatusNotAttending:
		return true
	default:
		return false
	}
}

// unresolvedStatuses は未解決 (自動取り下げ対象) の状態集合です。
func isUnresolved(s Status) bool {
	switch s {
	case StatusNew, StatusShortlisted, StatusInterviewScheduled, StatusPendingAcceptance:
		return true
	default:
		return false
	}
}
