package timesheet

import (
	"context"
	"time"
)

// Repository は勤務表永続化の抽象です。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Timesheet, error)
	Update(ctx context.Context, t *Timesheet) (*Timesheet, error)
	// CountUnapproved は periodEnd が upTo 以前で status が approved 以外の
	// 勤務表の件数を返します。クロージャ判定のゲート入力になります。
	CountUnapproved(ctx context.Context, employmentID string, upTo time.Time) (int, error)
}
