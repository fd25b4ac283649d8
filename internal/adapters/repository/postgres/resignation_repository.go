package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/internlink/internlink/internal/core/resignation"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

const resignationColumns = `
        id, employment_id, initiated_by, reason, proposed_last_day, status,
        reviewed_by, reviewed_at, created_at, updated_at`

// ResignationRepository は PostgreSQL を利用した退職申請永続化の実装です。
type ResignationRepository struct {
	pool pgdb.Queryer
}

// NewResignationRepository は ResignationRepository を生成します。
func NewResignationRepository(pool pgdb.Queryer) *ResignationRepository {
	return &ResignationRepository{pool: pool}
}

// Create は退職申請を新規作成します。
func (r *ResignationRepository) Create(ctx context.Context, rs *resignation.Resignation) (*resignation.Resignation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO resignations (employment_id, initiated_by, reason, proposed_last_day, status,
                                  reviewed_by, reviewed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING`+resignationColumns,
		rs.EmploymentID,
		rs.InitiatedBy,
		rs.Reason,
		nullableTime(rs.ProposedLastDay),
		string(rs.Status),
		rs.DecidedBy,
		nullableTime(rs.DecidedAt),
		rs.CreatedAt,
		rs.UpdatedAt,
	)

	created, err := scanResignation(row)
	if err != nil {
		return nil, translateResignationPgError(err)
	}
	return created, nil
}

// Update は退職申請を更新します。
func (r *ResignationRepository) Update(ctx context.Context, rs *resignation.Resignation) (*resignation.Resignation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE resignations
           SET status = $1,
               proposed_last_day = $2,
               reviewed_by = $3,
               reviewed_at = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING`+resignationColumns,
		string(rs.Status),
		nullableTime(rs.ProposedLastDay),
		rs.DecidedBy,
		nullableTime(rs.DecidedAt),
		rs.UpdatedAt,
		rs.ID,
	)

	updated, err := scanResignation(row)
	if err != nil {
		return nil, translateResignationPgError(err)
	}
	return updated, nil
}

// FindByID は ID で退職申請を取得します。
func (r *ResignationRepository) FindByID(ctx context.Context, id string) (*resignation.Resignation, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+resignationColumns+`
          FROM resignations
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanResignation(row)
	if err != nil {
		return nil, translateResignationPgError(err)
	}
	return found, nil
}

func scanResignation(row pgx.Row) (*resignation.Resignation, error) {
	var (
		rs              resignation.Resignation
		status          string
		proposedLastDay sql.NullTime
		decidedBy       sql.NullString
		decidedAt       sql.NullTime
	)

	if err := row.Scan(
		&rs.ID,
		&rs.EmploymentID,
		&rs.InitiatedBy,
		&rs.Reason,
		&proposedLastDay,
		&status,
		&decidedBy,
		&decidedAt,
		&rs.CreatedAt,
		&rs.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, resignation.ErrResignationNotFound
		}
		return nil, err
	}

	rs.Status = resignation.Status(status)
	rs.ProposedLastDay = timePtr(proposedLastDay)
	rs.DecidedBy = decidedBy.String
	rs.DecidedAt = timePtr(decidedAt)
	return &rs, nil
}

func translateResignationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return resignation.ErrResignationNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return resignation.ErrInvalidID
	}
	return err
}
