package resignation

import "context"

// Repository は退職申請永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, r *Resignation) (*Resignation, error)
	Update(ctx context.Context, r *Resignation) (*Resignation, error)
	FindByID(ctx context.Context, id string) (*Resignation, error)
}
