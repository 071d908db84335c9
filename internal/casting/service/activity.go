package service

import (
	"context"
	"encoding/json"
	"fmt"

	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/events"

	"github.com/google/uuid"
)

// Activity kinds written to the booking timeline.
const (
	ActivityOrdered       = "ordered"
	ActivityStatusChanged = "status_changed"
	ActivityEdited        = "edited"
	ActivityDeleted       = "deleted"
)

// ActivityRecorder writes booking domain events to the audit timeline.
type ActivityRecorder struct {
	repo Store
}

func NewActivityRecorder(repo Store) *ActivityRecorder {
	return &ActivityRecorder{repo: repo}
}

// Subscribe registers the recorder for every booking event.
func (r *ActivityRecorder) Subscribe(bus events.Bus) {
	for _, name := range []string{
		events.OrderSubmitted{}.EventName(),
		events.BookingStatusChanged{}.EventName(),
		events.BookingFieldsEdited{}.EventName(),
		events.BookingDeleted{}.EventName(),
	} {
		bus.Subscribe(name, r)
	}
}

// Handle implements events.Handler.
func (r *ActivityRecorder) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.OrderSubmitted:
		detail := map[string]any{"threadTs": e.ThreadTS, "additional": e.Additional, "mode": e.Mode}
		for _, id := range e.BookingIDs {
			if err := r.write(ctx, e, id, ActivityOrdered, "", "", detail, e.ActorID); err != nil {
				return err
			}
		}
		return nil
	case events.BookingStatusChanged:
		detail := map[string]any{}
		if e.Cost != nil {
			detail["cost"] = *e.Cost
		}
		if e.Note != "" {
			detail["note"] = e.Note
		}
		return r.write(ctx, e, e.BookingID, ActivityStatusChanged, e.FromStatus, e.ToStatus, detail, e.ActorID)
	case events.BookingFieldsEdited:
		return r.write(ctx, e, e.BookingID, ActivityEdited, "", "", map[string]any{"changes": e.Changes}, e.ActorID)
	case events.BookingDeleted:
		return r.write(ctx, e, e.BookingID, ActivityDeleted, e.FromStatus, "deleted", nil, e.ActorID)
	}
	return nil
}

func (r *ActivityRecorder) write(ctx context.Context, event events.Event, bookingID uuid.UUID, kind, from, to string, detail map[string]any, actorID uuid.UUID) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("marshal %s activity: %w", kind, err)
	}
	if detail == nil {
		raw = []byte(`{}`)
	}
	var actor *uuid.UUID
	if actorID != uuid.Nil {
		actor = &actorID
	}
	return r.repo.InsertActivity(ctx, repository.Activity{
		ID:         uuid.New(),
		BookingID:  bookingID,
		Kind:       kind,
		FromStatus: from,
		ToStatus:   to,
		Detail:     raw,
		ActorID:    actor,
		CreatedAt:  event.OccurredAt(),
	})
}
