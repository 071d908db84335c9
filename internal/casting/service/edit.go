package service

import (
	"context"
	"strings"
	"time"

	"casting_ops_backend/internal/calendar"
	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/internal/events"
	"casting_ops_backend/internal/slack"
	"casting_ops_backend/internal/slackmsg"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
)

// Change summary keys.
const (
	fieldStartDate   = "startDate"
	fieldEndDate     = "endDate"
	fieldStartTime   = "startTime"
	fieldEndTime     = "endTime"
	fieldProjectName = "projectName"
)

// EditBookingFields applies date, time and title edits. Only fields that
// actually change are persisted and reported. A project rename is carried
// into the cast's history and fulfillment records.
func (s *Service) EditBookingFields(ctx context.Context, actorID uuid.UUID, id uuid.UUID, req transport.EditBookingRequest) (*transport.EditBookingResponse, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.DeletedAt != nil {
		return nil, apperr.Gone("booking has been deleted")
	}

	after, err := applyEdit(b, req)
	if err != nil {
		return nil, err
	}
	changes := diffBooking(b, after)
	resp := &transport.EditBookingResponse{OK: true, ChangeSummary: changes}
	if len(changes) == 0 {
		return resp, nil
	}

	var shootingDates []time.Time
	if r := (domain.DateRange{Start: after.StartDate, End: after.EndDate}); r.MultiDay() {
		shootingDates = r.Days()
	}
	if err := s.repo.UpdateFields(ctx, b.ID, repository.FieldUpdate{
		StartDate:     after.StartDate,
		EndDate:       after.EndDate,
		ShootingDates: shootingDates,
		StartTime:     after.StartTime,
		EndTime:       after.EndTime,
		ProjectName:   after.ProjectName,
		ActorID:       actorID,
	}); err != nil {
		return nil, err
	}

	attrs := []any{"booking_id", b.ID}
	_, renamed := changes[fieldProjectName]
	if renamed {
		attempt(s.log, "rename_history", func() (int64, error) {
			return s.repo.RenameHistoryProject(ctx, b.CastID, b.ProjectName, after.ProjectName)
		}, attrs...)
		if s.contacts != nil {
			attempt(s.log, "rename_contacts", func() (int64, error) {
				return s.contacts.RenameProject(ctx, b.CastID, b.ProjectName, after.ProjectName)
			}, attrs...)
		}
	}

	if b.ThreadTS != "" && s.notifier != nil {
		text := slackmsg.OrderUpdate(slackmsg.UpdateParams{
			CastName:    b.CastName,
			ProjectName: after.ProjectName,
			Changes:     toMessageChanges(changes),
		})
		attempt(s.log, "edit_reply", func() (slack.Result, error) {
			return s.notifier.Dispatch(ctx, slack.Message{Text: text, ThreadTS: b.ThreadTS})
		}, attrs...)
	}

	if s.calendar != nil && b.CastType == domain.CastInternal && b.CalendarEventID != "" {
		var patch calendar.Patch
		if len(changes) > 1 || !renamed {
			timing := timingFor(after)
			patch.Timing = &timing
		}
		if renamed {
			hold := holdFor(after, "")
			patch.Text = &hold
		}
		try(s.log, "calendar_patch_hold", func() error {
			return s.calendar.PatchHold(ctx, b.CalendarEventID, patch)
		}, attrs...)
	}

	edited := make(map[string]events.FieldChange, len(changes))
	for k, c := range changes {
		edited[k] = events.FieldChange{From: c.From, To: c.To}
	}
	s.publish(ctx, events.BookingFieldsEdited{
		BaseEvent: events.NewBaseEvent(),
		BookingID: b.ID,
		Changes:   edited,
		ActorID:   actorID,
	})
	return resp, nil
}

// applyEdit returns the booking as it would look after req. A single-day
// booking moved by date stays single-day.
func applyEdit(b repository.Booking, req transport.EditBookingRequest) (repository.Booking, error) {
	after := b
	if req.Date != nil {
		d, err := domain.ParseDate(*req.Date)
		if err != nil {
			return b, err
		}
		if !b.EndDate.After(b.StartDate) {
			after.EndDate = d
		}
		after.StartDate = d
	}
	if req.EndDate != nil {
		d, err := domain.ParseDate(*req.EndDate)
		if err != nil {
			return b, err
		}
		after.EndDate = d
	}
	if after.EndDate.Before(after.StartDate) {
		return b, apperr.Validation("endDate must not be before the start date")
	}
	if req.StartTime != nil {
		after.StartTime = strings.TrimSpace(*req.StartTime)
	}
	if req.EndTime != nil {
		after.EndTime = strings.TrimSpace(*req.EndTime)
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return b, apperr.Validation("title must not be empty")
		}
		after.ProjectName = title
	}
	return after, nil
}

func diffBooking(before, after repository.Booking) map[string]transport.Change {
	changes := make(map[string]transport.Change)
	add := func(key, from, to string) {
		if from != to {
			changes[key] = transport.Change{From: from, To: to}
		}
	}
	add(fieldStartDate, domain.FormatDate(before.StartDate), domain.FormatDate(after.StartDate))
	add(fieldEndDate, domain.FormatDate(before.EndDate), domain.FormatDate(after.EndDate))
	add(fieldStartTime, before.StartTime, after.StartTime)
	add(fieldEndTime, before.EndTime, after.EndTime)
	add(fieldProjectName, before.ProjectName, after.ProjectName)
	return changes
}

func toMessageChanges(changes map[string]transport.Change) map[string]slackmsg.Change {
	out := make(map[string]slackmsg.Change, len(changes))
	for k, c := range changes {
		out[k] = slackmsg.Change{From: c.From, To: c.To}
	}
	return out
}
