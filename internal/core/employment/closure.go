package employment

// このファイルはクロージャ完了のゲート評価を提供します。評価は毎回
// 新鮮に計算され、メモ化された状態を持ちません。

// AllRequiredDocsVerified は requiredDocs の全タグについて、同じ type を持つ
// 検証済み (verified=true) の書類が少なくとも 1 件存在するかを返します。
func AllRequiredDocsVerified(r *Record) bool {
	for _, required := range r.RequiredDocs {
		verified := false
		for _, doc := range r.Docs {
			if doc.Type == required && doc.Verified {
				verified = true
				break
			}
		}
		if !verified {
			return false
		}
	}
	return true
}

// IsClosureComplete は closure→completed の終端遷移を許可するゲートです。
// unapprovedTimesheets は periodEnd <= endDate で approved 以外の勤務表の
// 件数です。endDate が無い場合、勤務表の件数は問いません。
func IsClosureComplete(r *Record, unapprovedTimesheets int) bool {
	if !AllRequiredDocsVerified(r) {
		return false
	}
	if r.EndDate == nil {
		return true
	}
	return unapprovedTimesheets == 0
}

// OutstandingClosureWork はクロージャリマインダー用に未完了作業の有無を
// 返します。ゲートの否定ですが、意図を分けるため別名にしています。
func OutstandingClosureWork(r *Record, unapprovedTimesheets int) bool {
	return !IsClosureComplete(r, unapprovedTimesheets)
}
