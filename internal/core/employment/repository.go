package employment

import (
	"context"
	"time"
)

// Repository は雇用レコード永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, r *Record) (*Record, error)
	Update(ctx context.Context, r *Record) (*Record, error)
	FindByID(ctx context.Context, id string) (*Record, error)
	// ListByStatus は指定状態のレコードを作成順で最大 limit 件返します。
	ListByStatus(ctx context.Context, status Status, limit int) ([]*Record, error)
	// MarkOngoingDue は startDate <= now の upcoming レコードを一括で
	// ongoing にします (ストアレベルの条件付き更新)。更新件数を返します。
	MarkOngoingDue(ctx context.Context, now time.Time) (int64, error)
	// MarkClosureDue は endDate <= now の ongoing レコードを一括で
	// closure にします。更新件数を返します。
	MarkClosureDue(ctx context.Context, now time.Time) (int64, error)
	// UpdateStatus は単一レコードの状態のみを更新します。expected と現在の
	// 状態が一致しない場合は更新せず ErrInvalidTransition を返します。
	UpdateStatus(ctx context.Context, id string, expected, next Status, now time.Time) error
	// Terminate は状態を terminated にし endDate を設定します。
	Terminate(ctx context.Context, id string, lastDay time.Time, now time.Time) error
}

// TimesheetCounter はクロージャゲートの入力となる未承認勤務表の件数を
// 提供します。timesheet パッケージのリポジトリが実装します。
type TimesheetCounter interface {
	CountUnapproved(ctx context.Context, employmentID string, upTo time.Time) (int, error)
}
