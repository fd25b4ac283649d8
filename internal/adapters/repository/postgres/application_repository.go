package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/internlink/internlink/internal/core/application"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

const applicationColumns = `
        id, user_id, company_id, job_listing_id, status, validity_until,
        offer, interview, history,
        submitted_at, accepted_at, rejected_at, withdrawn_at,
        created_at, updated_at`

// ApplicationRepository は PostgreSQL を利用した応募永続化の実装です。
// 内定・面接・履歴は JSONB 列に保存されます。
type ApplicationRepository struct {
	pool pgdb.Queryer
}

// NewApplicationRepository は ApplicationRepository を生成します。
func NewApplicationRepository(pool pgdb.Queryer) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create は応募を新規作成します。
func (r *ApplicationRepository) Create(ctx context.Context, a *application.Application) (*application.Application, error) {
	offer, err := jsonbValue(a.Offer)
	if err != nil {
		return nil, err
	}
	interview, err := jsonbValue(a.Interview)
	if err != nil {
		return nil, err
	}
	history, err := jsonbValue(a.History)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO applications (user_id, company_id, job_listing_id, status, validity_until,
                                  offer, interview, history,
                                  submitted_at, accepted_at, rejected_at, withdrawn_at,
                                  created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '[]'::jsonb), $9, $10, $11, $12, $13, $14)
        RETURNING`+applicationColumns,
		a.UserID,
		a.CompanyID,
		a.JobListingID,
		string(a.Status),
		a.ValidityUntil,
		offer,
		interview,
		history,
		a.SubmittedAt,
		nullableTime(a.AcceptedAt),
		nullableTime(a.RejectedAt),
		nullableTime(a.WithdrawnAt),
		a.CreatedAt,
		a.UpdatedAt,
	)

	created, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return created, nil
}

// Update は状態・タイムスタンプと履歴を永続化します。履歴列は全体を
// 書き戻しますが、呼び出し側の契約により追記のみが行われます。
func (r *ApplicationRepository) Update(ctx context.Context, a *application.Application) (*application.Application, error) {
	offer, err := jsonbValue(a.Offer)
	if err != nil {
		return nil, err
	}
	interview, err := jsonbValue(a.Interview)
	if err != nil {
		return nil, err
	}
	history, err := jsonbValue(a.History)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE applications
           SET status = $1,
               validity_until = $2,
               offer = $3,
               interview = $4,
               history = COALESCE($5, '[]'::jsonb),
               accepted_at = $6,
               rejected_at = $7,
               withdrawn_at = $8,
               updated_at = $9
         WHERE id = $10
        RETURNING`+applicationColumns,
		string(a.Status),
		a.ValidityUntil,
		offer,
		interview,
		history,
		nullableTime(a.AcceptedAt),
		nullableTime(a.RejectedAt),
		nullableTime(a.WithdrawnAt),
		a.UpdatedAt,
		a.ID,
	)

	updated, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return updated, nil
}

// FindByID は ID で応募を取得します。
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT`+applicationColumns+`
          FROM applications
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanApplication(row)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	return found, nil
}

// ListExpiredValidity は未解決状態で有効期限の切れた応募を返します。
func (r *ApplicationRepository) ListExpiredValidity(ctx context.Context, now time.Time, limit int) ([]*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+applicationColumns+`
          FROM applications
         WHERE status IN ($1, $2, $3, $4)
           AND validity_until <= $5
         ORDER BY validity_until ASC, id ASC
         LIMIT $6
    `,
		string(application.StatusNew),
		string(application.StatusShortlisted),
		string(application.StatusInterviewScheduled),
		string(application.StatusPendingAcceptance),
		now,
		limit,
	)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

// ListExpiringOffers は期限の迫った内定を持つ応募を返します。
func (r *ApplicationRepository) ListExpiringOffers(ctx context.Context, now time.Time, window time.Duration, limit int) ([]*application.Application, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT`+applicationColumns+`
          FROM applications
         WHERE status = $1
           AND offer IS NOT NULL
           AND (offer->>'ValidUntil')::timestamptz >= $2
           AND (offer->>'ValidUntil')::timestamptz <= $3
         ORDER BY (offer->>'ValidUntil')::timestamptz ASC, id ASC
         LIMIT $4
    `,
		string(application.StatusPendingAcceptance),
		now,
		now.Add(window),
		limit,
	)
	if err != nil {
		return nil, translateApplicationPgError(err)
	}
	defer rows.Close()

	return collectApplications(rows)
}

func collectApplications(rows pgx.Rows) ([]*application.Application, error) {
	var apps []*application.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, translateApplicationPgError(err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, translateApplicationPgError(err)
	}
	return apps, nil
}

func scanApplication(row pgx.Row) (*application.Application, error) {
	var (
		a           application.Application
		status      string
		offerRaw    []byte
		intervRaw   []byte
		historyRaw  []byte
		acceptedAt  sql.NullTime
		rejectedAt  sql.NullTime
		withdrawnAt sql.NullTime
	)

	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.CompanyID,
		&a.JobListingID,
		&status,
		&a.ValidityUntil,
		&offerRaw,
		&intervRaw,
		&historyRaw,
		&a.SubmittedAt,
		&acceptedAt,
		&rejectedAt,
		&withdrawnAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, application.ErrApplicationNotFound
		}
		return nil, err
	}

	a.Status = application.Status(status)
	a.AcceptedAt = timePtr(acceptedAt)
	a.RejectedAt = timePtr(rejectedAt)
	a.WithdrawnAt = timePtr(withdrawnAt)

	if len(offerRaw) > 0 {
		a.Offer = &application.Offer{}
		if err := scanJSONB(offerRaw, a.Offer); err != nil {
			return nil, err
		}
	}
	if len(intervRaw) > 0 {
		a.Interview = &application.Interview{}
		if err := scanJSONB(intervRaw, a.Interview); err != nil {
			return nil, err
		}
	}
	if err := scanJSONB(historyRaw, &a.History); err != nil {
		return nil, err
	}

	return &a, nil
}

func translateApplicationPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return application.ErrApplicationNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolationCode {
		return application.ErrInvalidID
	}
	return err
}
