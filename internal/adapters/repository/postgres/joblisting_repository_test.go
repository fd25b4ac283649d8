package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/internlink/internlink/internal/core/joblisting"
)

func TestJobListingRepository_ListExpiring(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewJobListingRepository(mock)

	query := regexp.QuoteMeta(`
        SELECT id, company_id, title, status, expires_at, last_expiry_reminder_at, created_at, updated_at
          FROM job_listings
         WHERE status = $1
           AND expires_at >= $2
           AND expires_at <= $3
           AND (last_expiry_reminder_at IS NULL OR last_expiry_reminder_at <= $4)
         ORDER BY expires_at ASC, id ASC
         LIMIT $5
    `)

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "company_id", "title", "status", "expires_at", "last_expiry_reminder_at", "created_at", "updated_at"}).
		AddRow("job-1", "co-1", "Backend intern", string(joblisting.StatusActive), now.Add(48*time.Hour), nil, now, now)

	mock.ExpectQuery(query).
		WithArgs(
			string(joblisting.StatusActive),
			now,
			now.Add(joblisting.ExpiryReminderWindow),
			now.Add(-joblisting.ExpiryReminderCutoff),
			200,
		).
		WillReturnRows(rows)

	listings, err := repo.ListExpiring(context.Background(), now, joblisting.ExpiryReminderWindow, joblisting.ExpiryReminderCutoff, 200)
	if err != nil {
		t.Fatalf("ListExpiring returned error: %v", err)
	}

	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].LastExpiryReminderAt != nil {
		t.Fatalf("expected nil reminder timestamp, got %v", listings[0].LastExpiryReminderAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestJobListingRepository_StampExpiryReminder_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewJobListingRepository(mock)

	query := regexp.QuoteMeta(`
        UPDATE job_listings
           SET last_expiry_reminder_at = $1,
               updated_at = $1
         WHERE id = $2
    `)

	at := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(query).
		WithArgs(at, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.StampExpiryReminder(context.Background(), "missing", at)
	if !errors.Is(err, joblisting.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
