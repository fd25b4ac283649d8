package joblisting

import (
	"context"
	"time"
)

// Repository は求人掲載参照・更新の抽象です。
type Repository interface {
	FindByID(ctx context.Context, id string) (*JobListing, error)
	// ListExpiring は期限リマインダー候補を返します。条件:
	// status=active、expiresAt が (now, now+window]、リマインダー未送信
	// または cutoff より古いこと。limit で件数を制限します。
	ListExpiring(ctx context.Context, now time.Time, window, cutoff time.Duration, limit int) ([]*JobListing, error)
	// StampExpiryReminder は lastExpiryReminderAt を更新します。
	StampExpiryReminder(ctx context.Context, id string, at time.Time) error
}
