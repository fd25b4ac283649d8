package notification

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (c *stubClock) Now() time.Time {
	return c.now
}

type stubRepo struct {
	created []*Notification
	exists  bool
}

func (r *stubRepo) Create(_ context.Context, n *Notification) (*Notification, error) {
	r.created = append(r.created, n)
	return n, nil
}

func (r *stubRepo) ExistsSince(context.Context, ExistsFilter) (bool, error) {
	return r.exists, nil
}

func TestCreate(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{}
	svc := NewService(repo, &stubClock{now: now})

	n, err := svc.Create(context.Background(), CreateInput{
		RecipientUserID: "stu-1",
		RecipientRole:   RoleStudent,
		Type:            TypeTimesheetReminder,
		Title:           "Weekly timesheet reminder",
		Data:            map[string]any{"employmentId": "emp-1"},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if n.ID == "" {
		t.Error("id was not assigned")
	}
	if !n.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", n.CreatedAt, now)
	}
	if len(repo.created) != 1 {
		t.Errorf("persisted notifications = %d, want 1", len(repo.created))
	}
}

func TestCreate_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   CreateInput
		wantErr error
	}{
		{
			name:    "missing recipient",
			input:   CreateInput{RecipientRole: RoleStudent, Type: TypeJobExpiring},
			wantErr: ErrInvalidRecipient,
		},
		{
			name:    "unknown role",
			input:   CreateInput{RecipientUserID: "u-1", RecipientRole: "visitor", Type: TypeJobExpiring},
			wantErr: ErrInvalidRole,
		},
		{
			name:    "missing type",
			input:   CreateInput{RecipientUserID: "u-1", RecipientRole: RoleCompany},
			wantErr: ErrInvalidType,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &stubRepo{}
			svc := NewService(repo, nil)

			_, err := svc.Create(context.Background(), tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(repo.created) != 0 {
				t.Error("invalid input must not be persisted")
			}
		})
	}
}
