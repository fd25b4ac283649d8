package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internlink/internlink/internal/core/timesheet"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

const timesheetColumns = `
        id, employment_id, period_start, period_end, status, items, total_hours,
        submitted_at, reviewed_by, reviewed_at, feedback, created_at, updated_at`

// TimesheetRepository は PostgreSQL を利用した勤務表永続化の実装です。
type TimesheetRepository struct {
	pool pgdb.Queryer
}

// NewTimesheetRepository は TimesheetRepository を生成します。
func NewTimesheetRepository(pool pgdb.Queryer) *TimesheetRepository {
	return &TimesheetRepository{pool: pool}
}

// FindByID は ID で勤務表を取得します。
func (r *TimesheetRepository) FindByID(ctx context.Context, id string) (*timesheet.Timesheet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+timesheetColumns+`
          FROM timesheets
         WHERE id = $1
         LIMIT 1
    `, id)

	return scanTimesheet(row)
}

// Update は勤務表を更新します。
func (r *TimesheetRepository) Update(ctx context.Context, t *timesheet.Timesheet) (*timesheet.Timesheet, error) {
	items, err := jsonbValue(t.Items)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE timesheets
           SET status = $1,
               items = COALESCE($2, '[]'::jsonb),
               total_hours = $3,
               submitted_at = $4,
               reviewed_by = $5,
               reviewed_at = $6,
               feedback = $7,
               updated_at = $8
         WHERE id = $9
        RETURNING`+timesheetColumns,
		string(t.Status),
		items,
		t.TotalHours,
		nullableTime(t.SubmittedAt),
		t.ReviewedBy,
		nullableTime(t.ReviewedAt),
		t.Feedback,
		t.UpdatedAt,
		t.ID,
	)

	return scanTimesheet(row)
}

// CountUnapproved は periodEnd が upTo 以前で approved 以外の勤務表の件数を
// 返します。
func (r *TimesheetRepository) CountUnapproved(ctx context.Context, employmentID string, upTo time.Time) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT COUNT(*)
          FROM timesheets
         WHERE employment_id = $1
           AND period_end <= $2
           AND status <> $3
    `, employmentID, upTo, string(timesheet.StatusApproved))

	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanTimesheet(row pgx.Row) (*timesheet.Timesheet, error) {
	var (
		t           timesheet.Timesheet
		status      string
		itemsRaw    []byte
		submittedAt sql.NullTime
		reviewedAt  sql.NullTime
		reviewedBy  sql.NullString
		feedback    sql.NullString
	)

	if err := row.Scan(
		&t.ID,
		&t.EmploymentID,
		&t.PeriodStart,
		&t.PeriodEnd,
		&status,
		&itemsRaw,
		&t.TotalHours,
		&submittedAt,
		&reviewedBy,
		&reviewedAt,
		&feedback,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, timesheet.ErrTimesheetNotFound
		}
		return nil, err
	}

	t.Status = timesheet.Status(status)
	t.SubmittedAt = timePtr(submittedAt)
	t.ReviewedAt = timePtr(reviewedAt)
	t.ReviewedBy = reviewedBy.String
	t.Feedback = feedback.String

	if err := scanJSONB(itemsRaw, &t.Items); err != nil {
		return nil, err
	}

	return &t, nil
}
