package application

import "time"

// このファイルはガード付き遷移を純関数として提供します。遷移は
// (現在状態, ガード入力) から (新状態, 副作用のリスト) を計算するだけで、
// 永続化や通知送信は行いません。副作用の実行は呼び出し側の責務であり、
// 独立に再試行・記録できます。

// NoticeTarget は通知副作用の宛先種別です。企業宛の通知はオーナーの
// ユーザー ID 解決が必要なため、宛先は実行時に解決されます。
type NoticeTarget int

const (
	// TargetApplicant は応募者 (UserID) 宛です。
	TargetApplicant NoticeTarget = iota
	// TargetCompanyOwner は企業 (CompanyID) のオーナー宛です。
	TargetCompanyOwner
)

// Notice は遷移が返す通知副作用です。
type Notice struct {
	Target NoticeTarget
	Type   string
	Title  string
	Body   string
}

// Transition は遷移の計算結果です。
type Transition struct {
	Status  Status
	History HistoryEntry
	Notices []Notice
}

// AutoWithdraw は有効期限切れの応募の自動取り下げを計算します。
// ガード: 状態が {new, shortlisted, interview_scheduled, pending_acceptance}
// かつ validityUntil <= now。終端状態では ErrInvalidTransition、期限内では
// ErrNotDue を返します。
func AutoWithdraw(a *Application, now time.Time) (*Transition, error) {
	if !isUnresolved(a.Status) {
		return nil, ErrInvalidTransition
	}
	if a.ValidityUntil.After(now) {
		return nil, ErrNotDue
	}

	return &Transition{
		Status: StatusWithdrawn,
		History: HistoryEntry{
			At:        now,
			ActorRole: ActorRoleSystem,
			Action:    "autoWithdraw",
		},
		Notices: []Notice{
			{
				Target: TargetCompanyOwner,
				Type:   "application_withdrawn",
				Title:  "Application withdrawn (expired)",
			},
			{
				Target: TargetApplicant,
				Type:   "application_withdrawn",
				Title:  "Your application expired",
			},
		},
	}, nil
}

// OfferExpiringSoon は内定期限リマインダーのガードです。状態が
// pending_acceptance で offer.validUntil が [now, now+24h] にあるときのみ
// 真を返します。リマインダーは状態を変更しません。
func OfferExpiringSoon(a *Application, now time.Time) bool {
	if a.Status != StatusPendingAcceptance || a.Offer == nil {
		return false
	}
	validUntil := a.Offer.ValidUntil
	return !validUntil.Before(now) && !validUntil.After(now.Add(OfferReminderWindow))
}

// OfferReminderNotice は内定期限リマインダーの通知副作用を返します。
func OfferReminderNotice() Notice {
	return Notice{
		Target: TargetApplicant,
		Type:   "offer_expiring",
		Title:  "Offer expiring soon",
	}
}

// Apply は遷移結果を応募へ反映します (永続化は行いません)。
func (a *Application) Apply(tr *Transition, now time.Time) {
	a.Status = tr.Status
	switch tr.Status {
	case StatusWithdrawn:
		a.WithdrawnAt = &tr.History.At
	case StatusAccepted:
		a.AcceptedAt = &tr.History.At
	case StatusRejected:
		a.RejectedAt = &tr.History.At
	}
	a.History = append(a.History, tr.History)
	a.UpdatedAt = now
}
