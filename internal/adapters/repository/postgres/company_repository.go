package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/internlink/internlink/internal/core/company"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

// CompanyRepository は PostgreSQL を利用した企業参照の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// FindByID は ID で企業を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, COALESCE(owner_user_id, ''), created_at, updated_at
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)

	var c company.Company
	if err := row.Scan(&c.ID, &c.Name, &c.OwnerUserID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}
	return &c, nil
}
