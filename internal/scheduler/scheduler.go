// Package scheduler はライフサイクルエンジンの背景ルーチンを提供します。
// 5 つの冪等なルーチンが周期的に走り、求人期限リマインダー・応募の自動
// 取り下げ・雇用の時刻遷移・週次リマインダーを駆動します。ルーチンは
// 手動トリガーレジストリからも起動できます。
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/internlink/internlink/internal/core/application"
	"github.com/internlink/internlink/internal/core/company"
	"github.com/internlink/internlink/internal/core/employment"
	"github.com/internlink/internlink/internal/core/joblisting"
	"github.com/internlink/internlink/internal/core/notification"
)

// 各ルーチンの 1 tick あたりの取得上限です。残りは次周期に繰り越されます。
const (
	batchLimitChecks    = 200
	batchLimitReminders = 500
)

// 重複抑止の既定窓です。
const reminderDedupWindow = 7 * 24 * time.Hour

// 手動トリガーレジストリのルーチン名です。外部から参照される安定した
// 識別子のため変更できません。
const (
	RoutineJobExpiryCheck     = "runJobExpiryCheck"
	RoutineApplicationChecks  = "runApplicationChecks"
	RoutineEmploymentChecks   = "runEmploymentChecks"
	RoutineTimesheetReminders = "runTimesheetReminders"
	RoutineClosureReminders   = "runClosureReminders"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// NotificationSink は通知の作成と重複抑止クエリの契約です。
// notification.Service が実装します。
type NotificationSink interface {
	Create(ctx context.Context, in notification.CreateInput) (*notification.Notification, error)
	ExistsSince(ctx context.Context, filter notification.ExistsFilter) (bool, error)
}

// ClosureEvaluator はクロージャ完了ゲートの評価を提供します。
// employment.Service が実装します。
type ClosureEvaluator interface {
	ClosureComplete(ctx context.Context, r *employment.Record) (bool, error)
	UnapprovedTimesheets(ctx context.Context, r *employment.Record) (int, error)
}

// Deps は Scheduler の依存です。
type Deps struct {
	Listings      joblisting.Repository
	Applications  application.Repository
	Employments   employment.Repository
	Companies     company.Repository
	Gate          ClosureEvaluator
	Notifications NotificationSink
	Clock         Clock
	Logger        *zap.SugaredLogger
}

// Scheduler は背景ルーチンの集合体です。タイマー配線とは独立に、各
// ルーチンを名前で起動できます。
type Scheduler struct {
	listings      joblisting.Repository
	applications  application.Repository
	employments   employment.Repository
	companies     company.Repository
	gate          ClosureEvaluator
	notifications NotificationSink
	clock         Clock
	log           *zap.SugaredLogger

	routines map[string]func(context.Context) TickSummary

	cron   *cron.Cron
	timers []*time.Timer
}

// New は Scheduler を生成します。
func New(deps Deps) *Scheduler {
	clock := deps.Clock
	if clock == nil {
		clock = realClock{}
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	s := &Scheduler{
		listings:      deps.Listings,
		applications:  deps.Applications,
		employments:   deps.Employments,
		companies:     deps.Companies,
		gate:          deps.Gate,
		notifications: deps.Notifications,
		clock:         clock,
		log:           log,
	}
	s.routines = map[string]func(context.Context) TickSummary{
		RoutineJobExpiryCheck:     s.RunJobExpiryCheck,
		RoutineApplicationChecks:  s.RunApplicationChecks,
		RoutineEmploymentChecks:   s.RunEmploymentChecks,
		RoutineTimesheetReminders: s.RunTimesheetReminders,
		RoutineClosureReminders:   s.RunClosureReminders,
	}
	return s
}

// RoutineNames は登録済みルーチン名を返します。
func (s *Scheduler) RoutineNames() []string {
	return []string{
		RoutineJobExpiryCheck,
		RoutineApplicationChecks,
		RoutineEmploymentChecks,
		RoutineTimesheetReminders,
		RoutineClosureReminders,
	}
}

// Trigger は名前でルーチンを 1 回実行します。タイマーが無効でも動作し、
// テストや運用ツールからの手動起動に使われます。
func (s *Scheduler) Trigger(ctx context.Context, name string) (TickSummary, error) {
	run, ok := s.routines[name]
	if !ok {
		return TickSummary{}, fmt.Errorf("scheduler: unknown routine %q", name)
	}
	return run(ctx), nil
}

// TriggerAll は全ルーチンを並行に 1 回ずつ実行します。タイマーを使わない
// 一括掃き出し (運用ツールやバッチ起動) のための入口です。
func (s *Scheduler) TriggerAll(ctx context.Context) []TickSummary {
	names := s.RoutineNames()
	summaries := make([]TickSummary, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		run := s.routines[name]
		g.Go(func() error {
			summaries[i] = run(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return summaries
}

// run はルーチン本体を計測と回復のガードで包みます。ルーチン内の
// panic は tick を失敗として扱い、プロセスは落としません。
func (s *Scheduler) run(ctx context.Context, name string, body func(ctx context.Context, sum *TickSummary)) (sum TickSummary) {
	sum.Routine = name
	sum.StartedAt = s.clock.Now()

	defer func() {
		sum.Duration = s.clock.Now().Sub(sum.StartedAt)
		if r := recover(); r != nil {
			sum.Aborted = true
			s.log.Errorw("scheduler: routine panicked", "routine", name, "panic", r)
		}
		s.log.Infow("scheduler: tick finished",
			"routine", name,
			"processed", sum.Processed,
			"skipped", sum.Skipped,
			"failed", sum.Failed,
			"aborted", sum.Aborted,
			"duration", sum.Duration,
		)
	}()

	body(ctx, &sum)
	return sum
}
