package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// CreateInput は通知作成の入力です。
type CreateInput struct {
	RecipientUserID string
	RecipientRole   Role
	Type            string
	Title           string
	Body            string
	Data            map[string]any
}

// Notifier は通知作成の契約です。エンジンはこの契約のみに依存し、
// 配送の成否や exactly-once は前提にしません。
type Notifier interface {
	Create(ctx context.Context, in CreateInput) (*Notification, error)
}

// Service は Repository を通知シンクとして用いる Notifier 実装です。
type Service struct {
	repo  Repository
	clock Clock
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// Create は通知レコードを作成します。
func (s *Service) Create(ctx context.Context, in CreateInput) (*Notification, error) {
	if strings.TrimSpace(in.RecipientUserID) == "" {
		return nil, ErrInvalidRecipient
	}
	if !isValidRole(in.RecipientRole) {
		return nil, ErrInvalidRole
	}
	if strings.TrimSpace(in.Type) == "" {
		return nil, ErrInvalidType
	}

	n := &Notification{
		ID:              uuid.NewString(),
		RecipientUserID: in.RecipientUserID,
		RecipientRole:   in.RecipientRole,
		Type:            in.Type,
		Title:           in.Title,
		Body:            in.Body,
		Data:            in.Data,
		CreatedAt:       s.clock.Now(),
	}

	return s.repo.Create(ctx, n)
}

// ExistsSince は重複抑止クエリを委譲します。
func (s *Service) ExistsSince(ctx context.Context, filter ExistsFilter) (bool, error) {
	return s.repo.ExistsSince(ctx, filter)
}

func isValidRole(role Role) bool {
	switch role {
	case RoleStudent, RoleCompany, RoleAdmin:
		return true
	default:
		return false
	}
}
