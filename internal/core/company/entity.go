// Package company は企業のオーナー解決を提供します。
// エンジンは通知宛先の解決のためにのみ企業を参照します。
package company

import "time"

// Company は企業エンティティです(エンジンが読むフィールドのみ)。
type Company struct {
	ID          string
	Name        string
	OwnerUserID string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
