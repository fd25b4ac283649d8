package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/internlink/internlink/internal/core/joblisting"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

// JobListingRepository は PostgreSQL を利用した求人掲載参照・更新の実装です。
// エンジンは掲載の作成・削除を行わないため、読み取りとリマインダーの
// スタンプ更新のみを提供します。
type JobListingRepository struct {
	pool pgdb.Queryer
}

// NewJobListingRepository は JobListingRepository を生成します。
func NewJobListingRepository(pool pgdb.Queryer) *JobListingRepository {
	return &JobListingRepository{pool: pool}
}

// FindByID は ID で求人掲載を取得します。
func (r *JobListingRepository) FindByID(ctx context.Context, id string) (*joblisting.JobListing, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, company_id, title, status, expires_at, last_expiry_reminder_at, created_at, updated_at
          FROM job_listings
         WHERE id = $1
         LIMIT 1
    `, id)

	return scanJobListing(row)
}

// ListExpiring は期限リマインダー候補を返します。スタンプが cutoff より
// 新しい掲載はストアレベルで除外されます。
func (r *JobListingRepository) ListExpiring(ctx context.Context, now time.Time, window, cutoff time.Duration, limit int) ([]*joblisting.JobListing, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, company_id, title, status, expires_at, last_expiry_reminder_at, created_at, updated_at
          FROM job_listings
         WHERE status = $1
           AND expires_at >= $2
           AND expires_at <= $3
           AND (last_expiry_reminder_at IS NULL OR last_expiry_reminder_at <= $4)
         ORDER BY expires_at ASC, id ASC
         LIMIT $5
    `,
		string(joblisting.StatusActive),
		now,
		now.Add(window),
		now.Add(-cutoff),
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*joblisting.JobListing
	for rows.Next() {
		j, err := scanJobListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, j)
	}
	return listings, rows.Err()
}

// StampExpiryReminder は lastExpiryReminderAt を更新します。
func (r *JobListingRepository) StampExpiryReminder(ctx context.Context, id string, at time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE job_listings
           SET last_expiry_reminder_at = $1,
               updated_at = $1
         WHERE id = $2
    `, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return joblisting.ErrListingNotFound
	}
	return nil
}

func scanJobListing(row pgx.Row) (*joblisting.JobListing, error) {
	var (
		j          joblisting.JobListing
		status     string
		reminderAt sql.NullTime
	)

	if err := row.Scan(
		&j.ID,
		&j.CompanyID,
		&j.Title,
		&status,
		&j.ExpiresAt,
		&reminderAt,
		&j.CreatedAt,
		&j.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, joblisting.ErrListingNotFound
		}
		return nil, err
	}

	j.Status = joblisting.Status(status)
	j.LastExpiryReminderAt = timePtr(reminderAt)
	return &j, nil
}
