package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/internlink/internlink/internal/core/notification"
	pgdb "github.com/internlink/internlink/internal/platform/db/postgres"
)

// NotificationRepository は PostgreSQL を利用した通知永続化の実装です。
// 配送は別系統の責務で、このリポジトリは作成と重複抑止クエリのみを担います。
type NotificationRepository struct {
	pool pgdb.Queryer
}

// NewNotificationRepository は NotificationRepository を生成します。
func NewNotificationRepository(pool pgdb.Queryer) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create は通知レコードを作成します。
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) (*notification.Notification, error) {
	data, err := jsonbValue(n.Data)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO notifications (id, recipient_user_id, recipient_role, type, title, body, data, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, '{}'::jsonb), $8)
        RETURNING id, recipient_user_id, recipient_role, type, title, body, data, created_at
    `,
		n.ID,
		n.RecipientUserID,
		string(n.RecipientRole),
		n.Type,
		n.Title,
		n.Body,
		data,
		n.CreatedAt,
	)

	return scanNotification(row)
}

// ExistsSince は since 以降に条件へ一致する通知が存在するかを返します。
// EmploymentID が指定されている場合は data 内の employmentId も照合します。
func (r *NotificationRepository) ExistsSince(ctx context.Context, filter notification.ExistsFilter) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
              FROM notifications
             WHERE recipient_user_id = $1
               AND type = $2
               AND created_at >= $3`
	args := []any{filter.RecipientUserID, filter.Type, filter.Since}
	if filter.EmploymentID != "" {
		query += `
               AND data->>'employmentId' = $4`
		args = append(args, filter.EmploymentID)
	}
	query += `
        )
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, query, args...)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var (
		n       notification.Notification
		role    string
		dataRaw []byte
	)

	if err := row.Scan(
		&n.ID,
		&n.RecipientUserID,
		&role,
		&n.Type,
		&n.Title,
		&n.Body,
		&dataRaw,
		&n.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotificationNotFound
		}
		return nil, err
	}

	n.RecipientRole = notification.Role(role)
	if err := scanJSONB(dataRaw, &n.Data); err != nil {
		return nil, err
	}
	return &n, nil
}
