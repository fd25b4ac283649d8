package joblisting

import (
	"testing"
	"time"
)

func TestNeedsExpiryReminder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	stale := now.Add(-25 * time.Hour)

	tests := []struct {
		name     string
		status   Status
		expires  time.Time
		reminded *time.Time
		want     bool
	}{
		{name: "active inside window", status: StatusActive, expires: now.Add(48 * time.Hour), want: true},
		{name: "expires at window edge", status: StatusActive, expires: now.Add(ExpiryReminderWindow), want: true},
		{name: "beyond window", status: StatusActive, expires: now.Add(8 * 24 * time.Hour), want: false},
		{name: "already expired", status: StatusActive, expires: now.Add(-time.Minute), want: false},
		{name: "paused listing", status: StatusPaused, expires: now.Add(24 * time.Hour), want: false},
		{name: "draft listing", status: StatusDraft, expires: now.Add(24 * time.Hour), want: false},
		{name: "reminded within cutoff", status: StatusActive, expires: now.Add(48 * time.Hour), reminded: &recent, want: false},
		{name: "stale reminder resends", status: StatusActive, expires: now.Add(48 * time.Hour), reminded: &stale, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			j := &JobListing{Status: tt.status, ExpiresAt: tt.expires, LastExpiryReminderAt: tt.reminded}
			if got := NeedsExpiryReminder(j, now); got != tt.want {
				t.Errorf("NeedsExpiryReminder = %v, want %v", got, tt.want)
			}
		})
	}
}
