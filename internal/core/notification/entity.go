// Package notification は通知作成の境界を提供します。
// 配送手段には関与せず、作成と重複抑止クエリのみを扱います。
package notification

import "time"

// Role は通知の宛先ロールです。
type Role string

const (
	RoleStudent Role = "student"
	RoleCompany Role = "company"
	RoleAdmin   Role = "admin"
)

// エンジンが発行する通知タイプのタグです。永続化されるため追加のみ可能です。
const (
	TypeJobExpiring          = "job_expiring"
	TypeOfferExpiring        = "offer_expiring"
	TypeApplicationWithdrawn = "application_withdrawn"
	TypeApplicationShortlist = "application_shortlisted"
	TypeApplicationRejected  = "application_rejected"
	TypeInterviewScheduled   = "interview_scheduled"
	TypeInterviewCancelled   = "interview_cancelled"
	TypeInterviewDeclined    = "interview_declined"
	TypeInterviewNoShow      = "interview_noshow"
	TypeOfferSent            = "offer_sent"
	TypeOfferAccepted        = "offer_accepted"
	TypeOfferDeclined        = "offer_declined"
	TypeTimesheetReminder    = "timesheet_reminder"
	TypeTimesheetSubmitted   = "timesheet_submitted"
	TypeTimesheetApproved    = "timesheet_approved"
	TypeTimesheetRejected    = "timesheet_rejected"
	TypeClosureReminder      = "closure_reminder"
	TypeResignationRequested = "resignation_requested"
	TypeResignationApproved  = "resignation_approved"
	TypeResignationRejected  = "resignation_rejected"
	TypeEmploymentTerminated = "employment_terminated"
)

// Notification は通知エンティティです。
type Notification struct {
	ID              string
	RecipientUserID string
	RecipientRole   Role
	Type            string
	Title           string
	Body            string
	Data            map[string]any
	CreatedAt       time.Time
}
