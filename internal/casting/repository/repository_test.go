package repository

import (
	"strings"
	"testing"
	"time"

	"casting_ops_backend/internal/casting/domain"

	"github.com/google/uuid"
)

func TestConflictQueryExcludesDeletedAndOwnRows(t *testing.T) {
	for _, frag := range []string{
		"start_date <= $2 AND end_date >= $2",
		"status = ANY($3)",
		"deleted_at IS NULL",
		"NOT (id = ANY($4))",
		"LIMIT 1",
	} {
		if !strings.Contains(conflictQuery, frag) {
			t.Fatalf("conflict query missing %q", frag)
		}
	}
}

func TestHoldSharedQueryIgnoresSelfAndDeadBookings(t *testing.T) {
	for _, frag := range []string{
		"calendar_event_id = $1",
		"id <> $2",
		"status = ANY($3)",
		"deleted_at IS NULL",
	} {
		if !strings.Contains(holdSharedQuery, frag) {
			t.Fatalf("shared hold query missing %q", frag)
		}
	}
}

func TestThreadLookupRequiresThread(t *testing.T) {
	if !strings.Contains(threadLookupQuery, "thread_ts <> ''") {
		t.Fatal("thread lookup must ignore bookings without a thread")
	}
	if !strings.Contains(threadLookupQuery, "ORDER BY created_at ASC") {
		t.Fatal("thread lookup must prefer the first thread")
	}
}

func TestCorrelationUpdateKeepsExistingHold(t *testing.T) {
	if !strings.Contains(correlationUpdateQuery, "CASE WHEN $4 = '' THEN calendar_event_id ELSE $4 END") {
		t.Fatal("write-back must not clear an existing hold id")
	}
}

func TestHistoryInsertIsIdempotent(t *testing.T) {
	if !strings.Contains(insertHistoryQuery, "ON CONFLICT (booking_id) DO NOTHING") {
		t.Fatal("history insert must be idempotent per booking")
	}
	if !strings.Contains(renameHistoryQuery, "WHERE cast_id = $1 AND project_name = $2") {
		t.Fatal("rename must be scoped to the cast and old project")
	}
}

func TestBookingFilterClause(t *testing.T) {
	castID := uuid.New()
	status := domain.StatusConfirmedOK
	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	where, args := bookingFilterClause(BookingFilter{
		ProjectID: "abc",
		CastID:    &castID,
		Status:    &status,
		From:      &from,
	})

	want := "WHERE deleted_at IS NULL AND project_id = $1 AND cast_id = $2 AND status = $3 AND end_date >= $4"
	if where != want {
		t.Fatalf("unexpected clause:\n got %s\nwant %s", where, want)
	}
	if len(args) != 4 || args[2] != "confirmed_ok" {
		t.Fatalf("unexpected args %v", args)
	}
}

func TestBookingFilterClauseIncludeDeletedEmpty(t *testing.T) {
	where, args := bookingFilterClause(BookingFilter{IncludeDeleted: true})
	if where != "" || len(args) != 0 {
		t.Fatalf("expected no clause, got %q %v", where, args)
	}
}

func TestStatusStringsMatchesActiveSet(t *testing.T) {
	got := statusStrings(domain.ActiveStatuses())
	for _, s := range got {
		if s == string(domain.StatusRejected) || s == string(domain.StatusDeleted) {
			t.Fatalf("inactive status %q in conflict set", s)
		}
	}
	if len(got) != 7 {
		t.Fatalf("expected 7 active statuses, got %d", len(got))
	}
}
