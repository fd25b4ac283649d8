package scheduler

import "time"

// TickSummary は 1 tick の実行結果です。ルーチンは失敗をプロセスへ
// 伝播させる代わりに、件数を集計してログへ出します。
type TickSummary struct {
	Routine   string
	StartedAt time.Time
	Duration  time.Duration
	// Processed は遷移または通知を実行したレコード数です。
	Processed int
	// Skipped はガードまたは重複抑止により対象外としたレコード数です。
	Skipped int
	// Failed は個別に失敗しバッチ継続したレコード数です。
	Failed int
	// Aborted は候補クエリの失敗などで tick 全体を中断した場合に真です。
	// 次の周期で新しいクエリから再試行されます。
	Aborted bool
}
