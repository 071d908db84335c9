package service

import (
	"context"
	"testing"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteBookingIsSoftAndIdempotent(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)
	h.store.bookings[h.store.index(b.ID)].ThreadTS = "111.222"

	require.NoError(t, h.svc.DeleteBooking(context.Background(), uuid.New(), b.ID))
	require.NoError(t, h.svc.DeleteBooking(context.Background(), uuid.New(), b.ID))

	after := h.store.booking(b.ID)
	assert.Equal(t, domain.StatusDeleted, after.Status)
	assert.NotNil(t, after.DeletedAt)
	assert.Equal(t, []string{"evt-held"}, h.calendar.deleted)
	require.Len(t, h.notifier.sent, 1)
	assert.Contains(t, h.notifier.sent[0].Text, "Staff")
}

func TestDeleteViaStatusRequiresConfirmedFinal(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)

	_, err := h.svc.UpdateStatus(context.Background(), uuid.New(), true, b.ID, transport.UpdateStatusRequest{Status: "deleted"})
	assert.Equal(t, apperr.KindInvalidTransition, apperr.GetKind(err))

	h.store.bookings[h.store.index(b.ID)].Status = domain.StatusConfirmedFinal
	resp, err := h.svc.UpdateStatus(context.Background(), uuid.New(), true, b.ID, transport.UpdateStatusRequest{Status: "deleted"})
	require.NoError(t, err)
	assert.Equal(t, "deleted", resp.Status)
	assert.NotNil(t, h.store.booking(b.ID).DeletedAt)
}

func TestEditDeletedBookingIsGone(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)
	require.NoError(t, h.svc.DeleteBooking(context.Background(), uuid.New(), b.ID))

	_, err := h.svc.EditBookingFields(context.Background(), uuid.New(), b.ID, transport.EditBookingRequest{Title: strPtr("x")})
	assert.Equal(t, apperr.KindGone, apperr.GetKind(err))
}

func TestDeleteBookingKeepsHoldSharedWithSibling(t *testing.T) {
	h := newHarness()
	b := internalHeldBooking(h)
	sibling := b
	sibling.ID = uuid.New()
	h.store.addBooking(sibling)

	require.NoError(t, h.svc.DeleteBooking(context.Background(), uuid.New(), b.ID))
	assert.Empty(t, h.calendar.deleted)
	assert.Equal(t, "evt-held", h.store.booking(sibling.ID).CalendarEventID)

	require.NoError(t, h.svc.DeleteBooking(context.Background(), uuid.New(), sibling.ID))
	assert.Equal(t, []string{"evt-held"}, h.calendar.deleted)
}
