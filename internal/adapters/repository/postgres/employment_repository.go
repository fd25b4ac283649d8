package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/internlink/internlink/internal/core/employment"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

const employmentColumns = `
        id, application_id, job_listing_id, user_id, company_id, status,
        start_date, end_date, cadence, required_docs, docs, notes,
        created_at, updated_at`

// EmploymentRepository は PostgreSQL を利用した雇用レコード永続化の実装です。
// 時刻駆動の一括遷移はストアレベルの条件付き UPDATE で行います。
type EmploymentRepository struct {
	pool pgdb.Queryer
}

// NewEmploymentRepository は EmploymentRepository を生成します。
func NewEmploymentRepository(pool pgdb.Queryer) *EmploymentRepository {
	return &EmploymentRepository{pool: pool}
}

// Create は雇用レコードを新規作成します。
func (r *EmploymentRepository) Create(ctx context.Context, rec *employment.Record) (*employment.Record, error) {
	requiredDocs, err := jsonbValue(rec.RequiredDocs)
	if err != nil {
		return nil, err
	}
	docs, err := jsonbValue(rec.Docs)
	if err != nil {
		return nil, err
	}
	notes, err := jsonbValue(rec.Notes)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employment_records (application_id, job_listing_id, user_id, company_id, status,
                                        start_date, end_date, cadence, required_docs, docs, notes,
                                        created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
                COALESCE($9, '[]'::jsonb), COALESCE($10, '[]'::jsonb), COALESCE($11, '[]'::jsonb),
                $12, $13)
        RETURNING`+employmentColumns,
		rec.ApplicationID,
		rec.JobListingID,
		rec.UserID,
		rec.CompanyID,
		string(rec.Status),
		nullableTime(rec.StartDate),
		nullableTime(rec.EndDate),
		rec.Cadence,
		requiredDocs,
		docs,
		notes,
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	created, err := scanEmployment(row)
	if err != nil {
		return nil, translateEmploymentPgError(err)
	}
	return created, nil
}

// Update は雇用レコードを更新します。
func (r *EmploymentRepository) Update(ctx context.Context, rec *employment.Record) (*employment.Record, error) {
	requiredDocs, err := jsonbValue(rec.RequiredDocs)
	if err != nil {
		return nil, err
	}
	docs, err := jsonbValue(rec.Docs)
	if err != nil {
		return nil, err
	}
	notes, err := jsonbValue(rec.Notes)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employment_records
           SET status = $1,
               start_date = $2,
               end_date = $3,
               cadence = $4,
               required_docs = COALESCE($5, '[]'::jsonb),
               docs = COALESCE($6, '[]'::jsonb),
               notes = COALESCE($7, '[]'::jsonb),
               updated_at = $8
         WHERE id = $9
        RETURNING`+employmentColumns,
		string(rec.Status),
		nullableTime(rec.StartDate),
		nullableTime(rec.EndDate),
		rec.Cadence,
		requiredDocs,
		docs,
		notes,
		rec.UpdatedAt,
		rec.ID,
	)

	updated, err := scanEmployment(row)
	if err != nil {
		return nil, translateEmploymentPgError(err)
	}
	return updated, nil
}

// FindByID は ID で雇用レコードを取得します。
func (r *EmploymentRepository) FindByID(ctx context.Context, id string) (*employment.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+employmentColumns+`
          FROM employment_records
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployment(row)
	if err != nil {
		return nil, translateEmploymentPgError(err)
	}
	return found, nil
}

// ListByStatus は指定状態のレコードを作成順で返します。
func (r *EmploymentRepository) ListByStatus(ctx context.Context, status employment.Status, limit int) ([]*employment.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+employmentColumns+`
          FROM employment_records
         WHERE status = $1
         ORDER BY created_at ASC, id ASC
         LIMIT $2
    `, string(status), limit)
	if err != nil {
		return nil, translateEmploymentPgError(err)
	}
	defer rows.Close()

	var records []*employment.Record
	for rows.Next() {
		rec, err := scanEmployment(rows)
		if err != nil {
			return nil, translateEmploymentPgError(err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkOngoingDue は開始日を迎えた upcoming レコードを一括で ongoing にします。
func (r *EmploymentRepository) MarkOngoingDue(ctx context.Context, now time.Time) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employment_records
           SET status = $1,
               updated_at = $2
         WHERE status = $3
           AND start_date IS NOT NULL
           AND start_date <= $2
    `,
		string(employment.StatusOngoing),
		now,
		string(employment.StatusUpcoming),
	)
	if err != nil {
		return 0, translateEmploymentPgError(err)
	}
	return tag.RowsAffected(), nil
}

// MarkClosureDue は終了日を過ぎた ongoing レコードを一括で closure にします。
func (r *EmploymentRepository) MarkClosureDue(ctx context.Context, now time.Time) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employment_records
           SET status = $1,
               updated_at = $2
         WHERE status = $3
           AND end_date IS NOT NULL
           AND end_date <= $2
    `,
		string(employment.StatusClosure),
		now,
		string(employment.StatusOngoing),
	)
	if err != nil {
		return 0, translateEmploymentPgError(err)
	}
	return tag.RowsAffected(), nil
}

// UpdateStatus は期待状態が一致する場合のみ状態を更新します。一致しない
// 場合は ErrInvalidTransition を返します (楽観的な条件付き更新)。
func (r *EmploymentRepository) UpdateStatus(ctx context.Context, id string, expected, next employment.Status, now time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employment_records
           SET status = $1,
               updated_at = $2
         WHERE id = $3
           AND status = $4
    `, string(next), now, id, string(expected))
	if err != nil {
		return translateEmploymentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employment.ErrInvalidTransition
	}
	return nil
}

// Terminate は状態を terminated にし、最終日を end_date へ設定します。
func (r *EmploymentRepository) Terminate(ctx context.Context, id string, lastDay, now time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employment_records
           SET status = $1,
               end_date = $2,
               updated_at = $3
         WHERE id = $4
    `, string(employment.StatusTerminated), lastDay, now, id)
	if err != nil {
		return translateEmploymentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employment.ErrRecordNotFound
	}
	return nil
}

func scanEmployment(row pgx.Row) (*employment.Record, error) {
	var (
		rec             employment.Record
		status          string
		startDate       sql.NullTime
		endDate         sql.NullTime
		requiredDocsRaw []byte
		docsRaw         []byte
		notesRaw        []byte
	)

	if err := row.Scan(
		&rec.ID,
		&rec.ApplicationID,
		&rec.JobListingID,
		&rec.UserID,
		&rec.CompanyID,
		&status,
		&startDate,
		&endDate,
		&rec.Cadence,
		&requiredDocsRaw,
		&docsRaw,
		&notesRaw,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employment.ErrRecordNotFound
		}
		return nil, err
	}

	rec.Status = employment.Status(status)
	rec.StartDate = timePtr(startDate)
	rec.EndDate = timePtr(endDate)

	if err := scanJSONB(requiredDocsRaw, &rec.RequiredDocs); err != nil {
		return nil, err
	}
	if err := scanJSONB(docsRaw, &rec.Docs); err != nil {
		return nil, err
	}
	if err := scanJSONB(notesRaw, &rec.Notes); err != nil {
		return nil, err
	}

	return &rec, nil
}

func translateEmploymentPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employment.ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return employment.ErrInvalidID
	}
	return err
}
