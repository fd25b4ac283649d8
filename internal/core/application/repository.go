package application

import (
	"context"
	"time"
)

// Repository は応募永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, a *Application) (*Application, error)
	// Update は状態・タイムスタンプと履歴追記を永続化します。履歴は
	// 追記専用で、既存エントリを書き換えてはいけません。
	Update(ctx context.Context, a *Application) (*Application, error)
	FindByID(ctx context.Context, id string) (*Application, error)
	// ListExpiredValidity は未解決状態で validityUntil <= now の応募を
	// 最大 limit 件返します。自動取り下げの候補クエリです。
	ListExpiredValidity(ctx context.Context, now time.Time, limit int) ([]*Application, error)
	// ListExpiringOffers は pending_acceptance で offer.validUntil が
	// [now, now+window] の応募を最大 limit 件返します。
	ListExpiringOffers(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*Application, error)
}
