package scheduler

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// 起動直後の初回実行をずらすための遅延です。同時起動によるストアへの
// 突入を避けます。
const (
	startupDelayJobExpiry    = 10 * time.Second
	startupDelayApplications = 15 * time.Second
	startupDelayEmployments  = 20 * time.Second
)

// Options はタイマー配線の設定です。
type Options struct {
	// Enabled が偽の場合、タイマーは一切登録されません。手動トリガーは
	// 常に利用できます。
	Enabled bool
	// Interval は周期ルーチン (求人・応募・雇用チェック) の間隔です。
	Interval time.Duration
	// 週次ルーチン (勤務表・クロージャリマインダー) のアンカーです。
	WeeklyWeekday time.Weekday
	WeeklyHour    int
	WeeklyMinute  int
}

// inTestContext はテストバイナリ内での実行かどうかを返します。テストでは
// タイマーを配線せず、手動トリガーのみで駆動します。
func inTestContext() bool {
	return flag.Lookup("test.v") != nil
}

// weeklySpec は週次アンカーを cron 式に変換します。
func weeklySpec(opts Options) string {
	return fmt.Sprintf("%d %d * * %d", opts.WeeklyMinute, opts.WeeklyHour, int(opts.WeeklyWeekday))
}

// Start はタイマーを配線します。前回の tick が走行中の場合、次の発火は
// スキップされます (重複実行の抑止)。
func (s *Scheduler) Start(ctx context.Context, opts Options) error {
	if !opts.Enabled {
		s.log.Infow("scheduler: timers disabled by configuration")
		return nil
	}
	if inTestContext() {
		s.log.Infow("scheduler: test context detected, manual triggers only")
		return nil
	}
	if opts.Interval <= 0 {
		return fmt.Errorf("scheduler: interval must be positive, got %s", opts.Interval)
	}

	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
		cron.Recover(cron.DiscardLogger),
	))

	every := fmt.Sprintf("@every %s", opts.Interval)
	periodic := []struct {
		name  string
		delay time.Duration
	}{
		{RoutineJobExpiryCheck, startupDelayJobExpiry},
		{RoutineApplicationChecks, startupDelayApplications},
		{RoutineEmploymentChecks, startupDelayEmployments},
	}
	for _, p := range periodic {
		run := s.routines[p.name]
		if _, err := c.AddFunc(every, func() { run(ctx) }); err != nil {
			return fmt.Errorf("scheduler: wire %s: %w", p.name, err)
		}
		s.timers = append(s.timers, time.AfterFunc(p.delay, func() { run(ctx) }))
	}

	weekly := weeklySpec(opts)
	for _, name := range []string{RoutineTimesheetReminders, RoutineClosureReminders} {
		run := s.routines[name]
		if _, err := c.AddFunc(weekly, func() { run(ctx) }); err != nil {
			return fmt.Errorf("scheduler: wire %s: %w", name, err)
		}
	}

	c.Start()
	s.cron = c

	s.log.Infow("scheduler: timers started",
		"interval", opts.Interval,
		"weekly", weekly,
	)
	return nil
}

// Stop はタイマーを止め、走行中の tick の完了を待ちます。
func (s *Scheduler) Stop() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil

	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
	s.log.Infow("scheduler: timers stopped")
}
