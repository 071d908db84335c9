package service

import (
	"context"
	"time"

	"casting_ops_backend/internal/calendar"
	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/internal/events"
	"casting_ops_backend/internal/notion"
	"casting_ops_backend/internal/slack"
	"casting_ops_backend/internal/slackmsg"

	"github.com/google/uuid"
)

// UpdateStatus validates and persists a transition, then replies in the
// order thread, updates the calendar hold, lists confirmed casts on the
// tracker page and derives the fulfillment and history records. Each side
// effect runs even when an earlier one failed.
func (s *Service) UpdateStatus(ctx context.Context, actorID uuid.UUID, admin bool, id uuid.UUID, req transport.UpdateStatusRequest) (*transport.StatusResponse, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := domain.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	// The transition is checked against the stored status. The previous-status
	// hint only counts when the caller already stored next, and then only
	// names the old status in the reply.
	prev := b.Status
	if req.PreviousStatus != "" && b.Status == next {
		if prev, err = domain.ParseStatus(req.PreviousStatus); err != nil {
			return nil, err
		}
	}
	if err := domain.ValidateTransition(prev, next, admin); err != nil {
		return nil, err
	}

	if next == domain.StatusDeleted {
		if err := s.deleteBooking(ctx, actorID, b); err != nil {
			return nil, err
		}
		return &transport.StatusResponse{OK: true, Status: string(next)}, nil
	}

	if err := s.repo.UpdateStatus(ctx, repository.StatusUpdate{
		BookingID: b.ID,
		Status:    next,
		Cost:      req.Cost,
		ActorID:   actorID,
	}); err != nil {
		return nil, err
	}
	b.Status = next
	if req.Cost != nil {
		b.Cost = *req.Cost
	}

	attrs := []any{"booking_id", b.ID, "from", prev, "to", next}

	if b.ThreadTS != "" && s.notifier != nil {
		text := slackmsg.StatusChange(slackmsg.StatusParams{
			CastName:  b.CastName,
			OldStatus: prev.Label(),
			NewStatus: next.Label(),
			Cost:      costOf(req.Cost),
			Note:      req.Note,
		})
		attempt(s.log, "status_reply", func() (slack.Result, error) {
			return s.notifier.Dispatch(ctx, slack.Message{Text: text, ThreadTS: b.ThreadTS})
		}, attrs...)
	}

	s.syncHoldStatus(ctx, b, attrs)

	if next.Confirmation() && s.tracker != nil && b.ProjectID != "" {
		property := notion.PropertyFor(b.CastType == domain.CastInternal, b.Tier == domain.TierMain)
		attempt(s.log, "tracker_sync", func() (bool, error) {
			return s.tracker.AddToMultiSelect(ctx, b.ProjectID, property, b.CastName)
		}, attrs...)
	}

	resp := &transport.StatusResponse{OK: true, Status: string(next)}

	if next.Confirmation() && b.CastType == domain.CastExternal && s.contacts != nil {
		type created struct {
			id uuid.UUID
			ok bool
		}
		rec, _ := attempt(s.log, "contact_record", func() (created, error) {
			id, ok, err := s.contacts.CreateFromBooking(ctx, contactSource(b))
			return created{id: id, ok: ok}, err
		}, attrs...)
		if rec.ok {
			resp.ContactRecordID = &rec.id
			s.publish(ctx, events.ContactRecordCreated{
				BaseEvent:   events.NewBaseEvent(),
				ContactID:   rec.id,
				BookingID:   b.ID,
				ProjectID:   b.ProjectID,
				ProjectName: b.ProjectName,
			})
		}
	}

	if next == domain.StatusConfirmedFinal {
		actor := actorID
		attempt(s.log, "cast_history", func() (bool, error) {
			return s.repo.InsertHistory(ctx, repository.HistoryEntry{
				ID:          uuid.New(),
				BookingID:   b.ID,
				CastID:      b.CastID,
				CastName:    b.CastName,
				CastType:    b.CastType,
				AccountName: b.AccountName,
				ProjectName: b.ProjectName,
				RoleName:    b.RoleName,
				Tier:        b.Tier,
				ShootDate:   b.StartDate,
				EndDate:     b.EndDate,
				Cost:        b.Cost,
				DecidedAt:   time.Now(),
				DecidedBy:   &actor,
			})
		}, attrs...)
	}

	s.publish(ctx, events.BookingStatusChanged{
		BaseEvent:  events.NewBaseEvent(),
		BookingID:  b.ID,
		CastID:     b.CastID,
		FromStatus: string(prev),
		ToStatus:   string(next),
		Cost:       req.Cost,
		Note:       req.Note,
		ActorID:    actorID,
	})
	return resp, nil
}

// syncHoldStatus rewrites an internal cast's hold for the new status, or
// removes it when the booking was turned down or cancelled.
func (s *Service) syncHoldStatus(ctx context.Context, b repository.Booking, attrs []any) {
	if s.calendar == nil || b.CastType != domain.CastInternal || b.CalendarEventID == "" {
		return
	}
	if b.Status.Negative() {
		if s.releaseHold(ctx, b, attrs) {
			try(s.log, "calendar_clear_hold", func() error { return s.repo.ClearCalendarEvent(ctx, b.ID) }, attrs...)
		}
		return
	}
	hold := holdFor(b, "")
	try(s.log, "calendar_patch_hold", func() error {
		return s.calendar.PatchHold(ctx, b.CalendarEventID, calendar.Patch{Text: &hold})
	}, attrs...)
}

// releaseHold deletes the booking's hold unless another live booking of the
// same order shares it. It reports whether the booking may drop its hold id.
func (s *Service) releaseHold(ctx context.Context, b repository.Booking, attrs []any) bool {
	shared, ok := attempt(s.log, "calendar_hold_shared", func() (bool, error) {
		return s.repo.HoldShared(ctx, b.CalendarEventID, b.ID)
	}, attrs...)
	if !ok {
		return false
	}
	if shared {
		s.log.Info("calendar hold kept for sibling booking", append(attrs, "event_id", b.CalendarEventID)...)
		return true
	}
	return try(s.log, "calendar_delete_hold", func() error { return s.calendar.DeleteHold(ctx, b.CalendarEventID) }, attrs...)
}

func costOf(c *int64) int64 {
	if c == nil {
		return 0
	}
	return *c
}
