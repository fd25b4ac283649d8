package company

import "context"

// Repository は企業参照の抽象です。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Company, error)
}

// OwnerUserID は企業のオーナーのユーザー ID を解決します。
// オーナーが未設定の場合は ErrNoOwner を返します。
func OwnerUserID(ctx context.Context, repo Repository, companyID string) (string, error) {
	c, err := repo.FindByID(ctx, companyID)
	if err != nil {
		return "", err
	}
	if c.OwnerUserID == "" {
		return "", ErrNoOwner
	}
	return c.OwnerUserID, nil
}
