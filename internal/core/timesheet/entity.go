// Package timesheet は勤務表のライフサイクルを提供します。
package timesheet

import "time"

// Status は勤務表の状態を表します。永続化されるタグは安定で追加のみ可能です。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Item は勤務表の 1 日分の記録です。
type Item struct {
	Date  time.Time
	Hours float64
	Note  string
}

// Timesheet は勤務表エンティティです。
type Timesheet struct {
	ID           string
	EmploymentID string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Status       Status
	Items        []Item
	TotalHours   float64
	SubmittedAt  *time.Time
	ReviewedBy   string
	ReviewedAt   *time.Time
	Feedback     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsValidStatus は定義済みの状態かどうかを返します。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// CanSubmit は提出が許可される状態かどうかを返します。
func CanSubmit(s Status) bool {
	return s == StatusDraft || s == StatusRejected
}

// CanReview は承認・差し戻しが許可される状態かどうかを返します。
func CanReview(s Status) bool {
	return s == StatusSubmitted
}
