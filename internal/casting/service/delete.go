package service

import (
	"context"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/events"
	"casting_ops_backend/internal/slack"
	"casting_ops_backend/internal/slackmsg"

	"github.com/google/uuid"
)

// DeleteBooking removes the booking's calendar hold, posts a deletion notice
// into its thread and soft-deletes it. Deleting twice is a no-op.
func (s *Service) DeleteBooking(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	return s.deleteBooking(ctx, actorID, b)
}

func (s *Service) deleteBooking(ctx context.Context, actorID uuid.UUID, b repository.Booking) error {
	if b.DeletedAt != nil || b.Status == domain.StatusDeleted {
		return nil
	}
	attrs := []any{"booking_id", b.ID}

	if s.calendar != nil && b.CastType == domain.CastInternal && b.CalendarEventID != "" {
		s.releaseHold(ctx, b, attrs)
	}
	if b.ThreadTS != "" && s.notifier != nil {
		text := slackmsg.Deletion(b.CastName, b.ProjectName)
		attempt(s.log, "deletion_notice", func() (slack.Result, error) {
			return s.notifier.Dispatch(ctx, slack.Message{Text: text, ThreadTS: b.ThreadTS})
		}, attrs...)
	}

	if err := s.repo.SoftDelete(ctx, b.ID, actorID); err != nil {
		return err
	}

	s.publish(ctx, events.BookingDeleted{
		BaseEvent:  events.NewBaseEvent(),
		BookingID:  b.ID,
		FromStatus: string(b.Status),
		ActorID:    actorID,
	})
	return nil
}
