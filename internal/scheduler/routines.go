package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/internlink/internlink/internal/core/application"
	"github.com/internlink/internlink/internal/core/company"
	"github.com/internlink/internlink/internal/core/employment"
	"github.com/internlink/internlink/internal/core/joblisting"
	"github.com/internlink/internlink/internal/core/notification"
)

// RunJobExpiryCheck は期限が 7 日以内に迫った active な求人掲載の
// オーナーへリマインダーを送り、lastExpiryReminderAt を更新します。
// 更新により次の 24 時間は同じ掲載が候補から外れます。
func (s *Scheduler) RunJobExpiryCheck(ctx context.Context) TickSummary {
	return s.run(ctx, RoutineJobExpiryCheck, func(ctx context.Context, sum *TickSummary) {
		now := s.clock.Now()

		jobs, err := s.listings.ListExpiring(ctx, now, joblisting.ExpiryReminderWindow, joblisting.ExpiryReminderCutoff, batchLimitChecks)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: list expiring job listings", "error", err)
			return
		}

		for _, job := range jobs {
			if !joblisting.NeedsExpiryReminder(job, now) {
				sum.Skipped++
				continue
			}

			ownerID, err := company.OwnerUserID(ctx, s.companies, job.CompanyID)
			if err != nil {
				if errors.Is(err, company.ErrNoOwner) || errors.Is(err, company.ErrCompanyNotFound) {
					sum.Skipped++
				} else {
					sum.Failed++
					s.log.Warnw("scheduler: resolve listing owner", "jobId", job.ID, "error", err)
				}
				continue
			}

			_, err = s.notifications.Create(ctx, notification.CreateInput{
				RecipientUserID: ownerID,
				RecipientRole:   notification.RoleCompany,
				Type:            notification.TypeJobExpiring,
				Title:           "Job listing expiring soon",
				Body:            fmt.Sprintf("%q expires on %s.", job.Title, job.ExpiresAt.Format("2006-01-02")),
				Data:            map[string]any{"jobId": job.ID, "expiresAt": job.ExpiresAt},
			})
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: create expiry reminder", "jobId", job.ID, "error", err)
				continue
			}

			// スタンプ更新が後なので、ここで失敗すると次周期に再送され得ます。
			// at-least-once の方針として許容しています。
			if err := s.listings.StampExpiryReminder(ctx, job.ID, now); err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: stamp expiry reminder", "jobId", job.ID, "error", err)
				continue
			}
			sum.Processed++
		}
	})
}

// RunApplicationChecks は 2 つの掃き出しを行います。有効期限の切れた
// 未解決応募の自動取り下げと、24 時間以内に期限を迎える内定の
// リマインダーです。
func (s *Scheduler) RunApplicationChecks(ctx context.Context) TickSummary {
	return s.run(ctx, RoutineApplicationChecks, func(ctx context.Context, sum *TickSummary) {
		now := s.clock.Now()

		expired, err := s.applications.ListExpiredValidity(ctx, now, batchLimitChecks)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: list expired applications", "error", err)
			return
		}

		for _, a := range expired {
			tr, err := application.AutoWithdraw(a, now)
			if err != nil {
				// ガードの再判定に落ちた候補。終端状態は不動点です。
				sum.Skipped++
				continue
			}

			a.Apply(tr, now)
			if _, err := s.applications.Update(ctx, a); err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: persist auto-withdraw", "applicationId", a.ID, "error", err)
				continue
			}

			s.deliverNotices(ctx, a, tr.Notices, map[string]any{"applicationId": a.ID})
			sum.Processed++
		}

		offers, err := s.applications.ListExpiringOffers(ctx, now, application.OfferReminderWindow, batchLimitChecks)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: list expiring offers", "error", err)
			return
		}

		for _, a := range offers {
			if !application.OfferExpiringSoon(a, now) {
				sum.Skipped++
				continue
			}

			notice := application.OfferReminderNotice()
			data := map[string]any{"applicationId": a.ID, "validUntil": a.Offer.ValidUntil}
			if err := s.deliverNotice(ctx, a, notice, data); err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: create offer reminder", "applicationId", a.ID, "error", err)
				continue
			}
			sum.Processed++
		}
	})
}

// RunEmploymentChecks は雇用レコードの時刻駆動遷移を行います。
// upcoming→ongoing と ongoing→closure はストアレベルの一括更新で、
// closure→completed はレコードごとにゲートを評価します。
func (s *Scheduler) RunEmploymentChecks(ctx context.Context) TickSummary {
	return s.run(ctx, RoutineEmploymentChecks, func(ctx context.Context, sum *TickSummary) {
		now := s.clock.Now()

		started, err := s.employments.MarkOngoingDue(ctx, now)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: mark ongoing due", "error", err)
			return
		}
		entered, err := s.employments.MarkClosureDue(ctx, now)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: mark closure due", "error", err)
			return
		}
		sum.Processed += int(started) + int(entered)

		inClosure, err := s.employments.ListByStatus(ctx, employment.StatusClosure, batchLimitChecks)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: list closure records", "error", err)
			return
		}

		for _, r := range inClosure {
			complete, err := s.gate.ClosureComplete(ctx, r)
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: evaluate closure gate", "employmentId", r.ID, "error", err)
				continue
			}
			if !complete {
				sum.Skipped++
				continue
			}

			if err := s.employments.UpdateStatus(ctx, r.ID, employment.StatusClosure, employment.StatusCompleted, now); err != nil {
				if errors.Is(err, employment.ErrInvalidTransition) {
					// 並行して状態が変わった候補。次周期のクエリからは外れます。
					sum.Skipped++
				} else {
					sum.Failed++
					s.log.Warnw("scheduler: complete employment", "employmentId", r.ID, "error", err)
				}
				continue
			}
			sum.Processed++
		}
	})
}

// RunTimesheetReminders は ongoing の雇用ごとに学生へ週次の勤務表
// リマインダーを送ります。同じ宛先への timesheet_reminder が過去 7 日に
// あれば抑止します。
func (s *Scheduler) RunTimesheetReminders(ctx context.Context) TickSummary {
	return s.run(ctx, RoutineTimesheetReminders, func(ctx context.Context, sum *TickSummary) {
		now := s.clock.Now()
		since := now.Add(-reminderDedupWindow)

		ongoing, err := s.employments.ListByStatus(ctx, employment.StatusOngoing, batchLimitReminders)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: list ongoing employments", "error", err)
			return
		}

		for _, r := range ongoing {
			exists, err := s.notifications.ExistsSince(ctx, notification.ExistsFilter{
				RecipientUserID: r.UserID,
				Type:            notification.TypeTimesheetReminder,
				Since:           since,
			})
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: dedup timesheet reminder", "employmentId", r.ID, "error", err)
				continue
			}
			if exists {
				sum.Skipped++
				continue
			}

			_, err = s.notifications.Create(ctx, notification.CreateInput{
				RecipientUserID: r.UserID,
				RecipientRole:   notification.RoleStudent,
				Type:            notification.TypeTimesheetReminder,
				Title:           "Weekly timesheet reminder",
				Body:            "Please submit your timesheet for the past week.",
				Data:            map[string]any{"employmentId": r.ID},
			})
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: create timesheet reminder", "employmentId", r.ID, "error", err)
				continue
			}
			sum.Processed++
		}
	})
}

// RunClosureReminders は closure の雇用ごとに、未完了のクロージャ作業が
// 残っている場合のみ企業オーナーへリマインダーを送ります。重複抑止は
// 宛先・タイプに加えて data 内の employmentId でも絞ります。
func (s *Scheduler) RunClosureReminders(ctx context.Context) TickSummary {
	return s.run(ctx, RoutineClosureReminders, func(ctx context.Context, sum *TickSummary) {
		now := s.clock.Now()
		since := now.Add(-reminderDedupWindow)

		inClosure, err := s.employments.ListByStatus(ctx, employment.StatusClosure, batchLimitReminders)
		if err != nil {
			sum.Aborted = true
			s.log.Warnw("scheduler: list closure employments", "error", err)
			return
		}

		for _, r := range inClosure {
			pending, err := s.gate.UnapprovedTimesheets(ctx, r)
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: count unapproved timesheets", "employmentId", r.ID, "error", err)
				continue
			}
			if !employment.OutstandingClosureWork(r, pending) {
				sum.Skipped++
				continue
			}

			ownerID, err := company.OwnerUserID(ctx, s.companies, r.CompanyID)
			if err != nil {
				if errors.Is(err, company.ErrNoOwner) || errors.Is(err, company.ErrCompanyNotFound) {
					sum.Skipped++
				} else {
					sum.Failed++
					s.log.Warnw("scheduler: resolve employment owner", "employmentId", r.ID, "error", err)
				}
				continue
			}

			exists, err := s.notifications.ExistsSince(ctx, notification.ExistsFilter{
				RecipientUserID: ownerID,
				Type:            notification.TypeClosureReminder,
				EmploymentID:    r.ID,
				Since:           since,
			})
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: dedup closure reminder", "employmentId", r.ID, "error", err)
				continue
			}
			if exists {
				sum.Skipped++
				continue
			}

			_, err = s.notifications.Create(ctx, notification.CreateInput{
				RecipientUserID: ownerID,
				RecipientRole:   notification.RoleCompany,
				Type:            notification.TypeClosureReminder,
				Title:           "Employment closure pending",
				Body:            "Documents or timesheets are still outstanding for this employment.",
				Data:            map[string]any{"employmentId": r.ID, "pendingTimesheets": pending},
			})
			if err != nil {
				sum.Failed++
				s.log.Warnw("scheduler: create closure reminder", "employmentId", r.ID, "error", err)
				continue
			}
			sum.Processed++
		}
	})
}

// deliverNotices は遷移の通知副作用を best-effort で実行します。
// 通知の失敗は遷移の成否に影響しません。
func (s *Scheduler) deliverNotices(ctx context.Context, a *application.Application, notices []application.Notice, data map[string]any) {
	for _, notice := range notices {
		if err := s.deliverNotice(ctx, a, notice, data); err != nil {
			s.log.Warnw("scheduler: deliver transition notice", "applicationId", a.ID, "type", notice.Type, "error", err)
		}
	}
}

func (s *Scheduler) deliverNotice(ctx context.Context, a *application.Application, notice application.Notice, data map[string]any) error {
	recipientID := a.UserID
	role := notification.RoleStudent
	if notice.Target == application.TargetCompanyOwner {
		ownerID, err := company.OwnerUserID(ctx, s.companies, a.CompanyID)
		if err != nil {
			return err
		}
		recipientID = ownerID
		role = notification.RoleCompany
	}

	_, err := s.notifications.Create(ctx, notification.CreateInput{
		RecipientUserID: recipientID,
		RecipientRole:   role,
		Type:            notice.Type,
		Title:           notice.Title,
		Body:            notice.Body,
		Data:            data,
	})
	return err
}
