package notification

import (
	"context"
	"time"
)

// Repository は通知永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, n *Notification) (*Notification, error)
	// ExistsSince は since 以降に条件へ一致する通知が存在するかを返します。
	// 重複抑止のための read-then-write チェックに使われます。
	ExistsSince(ctx context.Context, filter ExistsFilter) (bool, error)
}

// ExistsFilter は重複抑止クエリの条件です。EmploymentID が空でない場合は
// data ペイロード内の employmentId も一致条件に含めます。
type ExistsFilter struct {
	RecipientUserID string
	Type            string
	EmploymentID    string
	Since           time.Time
}
