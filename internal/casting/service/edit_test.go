package service

import (
	"context"
	"testing"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestEditMovesSingleDayBooking(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)

	resp, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{
		Date: strPtr("2026-03-10"),
	})
	require.NoError(t, err)

	assert.Equal(t, transport.Change{From: "2026-02-01", To: "2026-03-10"}, resp.ChangeSummary["startDate"])
	assert.Equal(t, transport.Change{From: "2026-02-01", To: "2026-03-10"}, resp.ChangeSummary["endDate"])
	assert.NotContains(t, resp.ChangeSummary, "projectName")

	after := h.store.booking(b.ID)
	assert.Equal(t, day("2026-03-10"), after.StartDate)
	assert.Equal(t, day("2026-03-10"), after.EndDate)

	patch := h.calendar.patched["evt-held"]
	require.NotNil(t, patch.Timing)
	assert.Equal(t, "2026-03-10", patch.Timing.StartDate)
	assert.Nil(t, patch.Text)
}

func TestEditRenameCascades(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)
	h.store.bookings[h.store.index(b.ID)].ThreadTS = "111.222"

	resp, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{
		Title: strPtr("春CM 第2弾"),
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]transport.Change{"projectName": {From: "春CM", To: "春CM 第2弾"}}, resp.ChangeSummary)
	assert.Equal(t, []string{"春CM->春CM 第2弾"}, h.store.renames)
	assert.Equal(t, []string{"春CM->春CM 第2弾"}, h.contacts.renames)

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "111.222", h.notifier.sent[0].ThreadTS)
	assert.Contains(t, h.notifier.sent[0].Text, "作品名: 春CM → 春CM 第2弾")

	patch := h.calendar.patched["evt-held"]
	require.NotNil(t, patch.Text)
	assert.Nil(t, patch.Timing)
	assert.Equal(t, "春CM 第2弾", patch.Text.ProjectName)
}

func TestEditTimesAndClear(t *testing.T) {
	h := newHarness()
	b := h.store.addBooking(repository.Booking{
		CastID:    uuid.New(),
		CastType:  domain.CastExternal,
		StartDate: day("2026-02-01"),
		StartTime: "09:00",
		EndTime:   "18:00",
		Status:    domain.StatusProvisionalHold,
	})

	resp, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{
		StartTime: strPtr("10:00"),
		EndTime:   strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, transport.Change{From: "09:00", To: "10:00"}, resp.ChangeSummary["startTime"])
	assert.Equal(t, transport.Change{From: "18:00", To: ""}, resp.ChangeSummary["endTime"])
	assert.Empty(t, h.store.renames)
}

func TestEditNoChangeHasNoSideEffects(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)

	resp, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{
		Date: strPtr("2026/02/01"),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ChangeSummary)
	assert.Empty(t, h.calendar.patched)
}

func TestEditRejectsInvertedRange(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)

	_, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{
		EndDate: strPtr("2026-01-15"),
	})
	assert.Equal(t, apperr.KindValidation, apperr.GetKind(err))
}

func TestEditExtendsToMultiDay(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)

	_, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{
		EndDate: strPtr("2026-02-03"),
	})
	require.NoError(t, err)
	assert.Len(t, h.store.booking(b.ID).ShootingDates, 3)
}
