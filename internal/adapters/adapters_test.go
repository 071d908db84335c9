package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"casting_ops_backend/internal/casting/domain"
	castingsvc "casting_ops_backend/internal/casting/service"
	castingtransport "casting_ops_backend/internal/casting/transport"
	contactsvc "casting_ops_backend/internal/contacts/service"

	"github.com/google/uuid"
)

type recordingContacts struct {
	got contactsvc.NewContact
}

func (r *recordingContacts) CreateFromBooking(_ context.Context, in contactsvc.NewContact) (uuid.UUID, bool, error) {
	r.got = in
	return uuid.New(), true, nil
}

func (r *recordingContacts) RenameProject(context.Context, uuid.UUID, string, string) (int64, error) {
	return 2, nil
}

type castReaderFunc func(ctx context.Context, id uuid.UUID) (*castingtransport.CastResponse, error)

func (f castReaderFunc) GetCast(ctx context.Context, id uuid.UUID) (*castingtransport.CastResponse, error) {
	return f(ctx, id)
}

func TestContactRecordsAdapterCopiesBookingSnapshot(t *testing.T) {
	rec := &recordingContacts{}
	a := NewContactRecordsAdapter(rec)
	shoot := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	src := castingsvc.ContactSource{
		BookingID:   uuid.New(),
		CastID:      uuid.New(),
		CastName:    "Ren",
		CastType:    domain.CastExternal,
		ProjectName: "Summer CM",
		Tier:        domain.TierMain,
		ShootDate:   shoot,
		ThreadTS:    "1.2",
	}

	if _, created, err := a.CreateFromBooking(context.Background(), src); err != nil || !created {
		t.Fatalf("create: created=%v err=%v", created, err)
	}
	if rec.got.BookingID != src.BookingID || rec.got.CastType != "external" || rec.got.Tier != "main" {
		t.Fatalf("unexpected record %+v", rec.got)
	}
	if !rec.got.ShootDate.Equal(shoot) || rec.got.ThreadTS != "1.2" {
		t.Fatalf("schedule not copied: %+v", rec.got)
	}
}

func TestCastDirectoryAdapter(t *testing.T) {
	id := uuid.New()
	a := NewCastDirectoryAdapter(castReaderFunc(func(_ context.Context, got uuid.UUID) (*castingtransport.CastResponse, error) {
		if got != id {
			return nil, errors.New("unknown cast")
		}
		return &castingtransport.CastResponse{ID: id, Name: "Ren", Email: "ren@example.com"}, nil
	}))

	to, err := a.CastRecipient(context.Background(), id)
	if err != nil {
		t.Fatalf("recipient: %v", err)
	}
	if to.Name != "Ren" || to.Email != "ren@example.com" {
		t.Fatalf("unexpected recipient %+v", to)
	}
	if _, err := a.CastRecipient(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown cast")
	}
}
