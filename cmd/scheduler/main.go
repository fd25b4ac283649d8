package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/internlink/internlink/internal/adapters/repository/postgres"
	"github.com/internlink/internlink/internal/core/employment"
	"github.com/internlink/internlink/internal/core/notification"
	"github.com/internlink/internlink/internal/platform/config"
	pg "github.com/internlink/internlink/internal/platform/db/postgres"
	"github.com/internlink/internlink/internal/platform/logger"
	"github.com/internlink/internlink/internal/scheduler"
)

func main() {
	sweep := flag.Bool("sweep", false, "run every routine once and exit instead of wiring timers")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(os.Getenv("APP_ENV") == "production")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	dbPool, err := pg.NewPool(ctx, cfg.Database)
	if err != nil {
		zlog.Fatalw("failed to initialize database pool", "error", err)
	}
	defer dbPool.Close()

	listingRepo := postgres.NewJobListingRepository(dbPool)
	applicationRepo := postgres.NewApplicationRepository(dbPool)
	employmentRepo := postgres.NewEmploymentRepository(dbPool)
	timesheetRepo := postgres.NewTimesheetRepository(dbPool)
	notificationRepo := postgres.NewNotificationRepository(dbPool)
	companyRepo := postgres.NewCompanyRepository(dbPool)

	notificationSvc := notification.NewService(notificationRepo, nil)
	employmentSvc := employment.NewService(employmentRepo, timesheetRepo, nil)

	sched := scheduler.New(scheduler.Deps{
		Listings:      listingRepo,
		Applications:  applicationRepo,
		Employments:   employmentRepo,
		Companies:     companyRepo,
		Gate:          employmentSvc,
		Notifications: notificationSvc,
		Logger:        zlog,
	})

	if *sweep {
		for _, sum := range sched.TriggerAll(ctx) {
			zlog.Infow("sweep routine finished",
				"routine", sum.Routine,
				"processed", sum.Processed,
				"skipped", sum.Skipped,
				"failed", sum.Failed,
				"aborted", sum.Aborted,
			)
		}
		return
	}

	opts := scheduler.Options{
		Enabled:       cfg.Scheduler.IsEnabled(),
		Interval:      cfg.Scheduler.Interval(),
		WeeklyWeekday: time.Weekday(*cfg.Scheduler.WeeklyWeekday),
		WeeklyHour:    *cfg.Scheduler.WeeklyHour,
		WeeklyMinute:  cfg.Scheduler.WeeklyMinute,
	}

	if err := sched.Start(ctx, opts); err != nil {
		zlog.Fatalw("failed to start scheduler", "error", err)
	}

	zlog.Infow("lifecycle scheduler running", "routines", sched.RoutineNames())

	<-ctx.Done()
	sched.Stop()
	zlog.Infow("lifecycle scheduler stopped")
}
