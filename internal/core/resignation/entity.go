// Package resignation は退職申請のライフサイクルを提供します。
// 承認された退職は雇用レコードを terminated へ遷移させます。
package resignation

import "time"

// Status は退職申請の状態を表します。
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Resignation は退職申請エンティティです。
type Resignation struct {
	ID              string
	EmploymentID    string
	InitiatedBy     string
	Reason          string
	ProposedLastDay *time.Time
	Status          Status
	DecidedBy       string
	DecidedAt       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsValidStatus は定義済みの状態かどうかを返します。
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}
