// Package joblisting は求人掲載のうちエンジンが扱う部分を提供します。
// 掲載の作成・削除は CRUD サービス側の責務で、エンジンは期限リマインダーの
// タイムスタンプのみを更新する二次ミューテータです。
package joblisting

import "time"

// Status は求人掲載の状態を表します。
type Status string

const (
	StatusDraft    Status = "draft"
	StatusActive   Status = "active"
	StatusPaused   Status = "paused"
	StatusExpired  Status = "expired"
	StatusArchived Status = "archived"
)

// JobListing は求人掲載エンティティです(エンジンが読み書きするフィールドのみ)。
type JobListing struct {
	ID                   string
	CompanyID            string
	Title                string
	Status               Status
	ExpiresAt            time.Time
	LastExpiryReminderAt *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// 期限リマインダーの窓と抑止期間です。
const (
	ExpiryReminderWindow = 7 * 24 * time.Hour
	ExpiryReminderCutoff = 24 * time.Hour
)

// NeedsExpiryReminder は掲載が期限リマインダーの対象かどうかを判定します。
// 対象: active かつ expiresAt が now から 7 日以内、かつ直近 24 時間に
// リマインダーを送っていないこと。
func NeedsExpiryReminder(j *JobListing, now time.Time) bool {
	if j.Status != StatusActive {
		return false
	}
	if j.ExpiresAt.Before(now) || j.ExpiresAt.After(now.Add(ExpiryReminderWindow)) {
		return false
	}
	if j.LastExpiryReminderAt != nil && j.LastExpiryReminderAt.After(now.Add(-ExpiryReminderCutoff)) {
		return false
	}
	return true
}
