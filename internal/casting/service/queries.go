package service

import (
	"context"
	"time"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/internal/email"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
)

const maxAvailabilityWindow = 366 * 24 * time.Hour

// ListBookings returns bookings matching the query
func (s *Service) ListBookings(ctx context.Context, req transport.ListBookingsRequest) ([]transport.BookingResponse, error) {
	filter := repository.BookingFilter{
		ProjectID:      projectKey(req.ProjectID),
		CastID:         req.CastID,
		IncludeDeleted: req.IncludeDeleted,
		Limit:          req.Limit,
	}
	if req.Status != "" {
		st, err := domain.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}
	if req.From != "" {
		d, err := domain.ParseDate(req.From)
		if err != nil {
			return nil, err
		}
		filter.From = &d
	}
	if req.To != "" {
		d, err := domain.ParseDate(req.To)
		if err != nil {
			return nil, err
		}
		filter.To = &d
	}

	bookings, err := s.repo.ListBookings(ctx, filter)
	if err != nil {
		return nil, err
	}
	return toBookingResponses(bookings), nil
}

// GetBooking returns a single booking
func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*transport.BookingResponse, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toBookingResponse(b)
	return &resp, nil
}

// AllowedTransitions lists the statuses the caller may move the booking to.
func (s *Service) AllowedTransitions(ctx context.Context, admin bool, id uuid.UUID) (*transport.TransitionsResponse, error) {
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &transport.TransitionsResponse{Current: statusOption(b.Status), Allowed: []transport.StatusOption{}}
	for _, st := range domain.AllowedTransitions(b.Status, admin) {
		resp.Allowed = append(resp.Allowed, statusOption(st))
	}
	return resp, nil
}

// Activity returns the booking's audit timeline
func (s *Service) Activity(ctx context.Context, id uuid.UUID) ([]repository.Activity, error) {
	if _, err := s.repo.GetBooking(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.repo.ListActivity(ctx, id)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []repository.Activity{}
	}
	return items, nil
}

// CastAvailability lists the cast's active bookings in [from, to] and the
// days they occupy.
func (s *Service) CastAvailability(ctx context.Context, castID uuid.UUID, req transport.AvailabilityRequest) (*transport.AvailabilityResponse, error) {
	from, err := domain.ParseDate(req.From)
	if err != nil {
		return nil, err
	}
	to, err := domain.ParseDate(req.To)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, apperr.Validation("to must not be before from")
	}
	if to.Sub(from) > maxAvailabilityWindow {
		return nil, apperr.Validation("availability window is limited to one year")
	}
	if _, err := s.repo.GetCast(ctx, castID); err != nil {
		return nil, err
	}

	bookings, err := s.repo.ListActiveForCast(ctx, castID, from, to)
	if err != nil {
		return nil, err
	}

	busy := []string{}
	seen := make(map[string]bool)
	for _, day := range (domain.DateRange{Start: from, End: to}).Days() {
		for _, b := range bookings {
			if day.Before(b.StartDate) || day.After(b.EndDate) {
				continue
			}
			key := domain.FormatDate(day)
			if !seen[key] {
				seen[key] = true
				busy = append(busy, key)
			}
			break
		}
	}

	return &transport.AvailabilityResponse{
		CastID:   castID,
		From:     domain.FormatDate(from),
		To:       domain.FormatDate(to),
		Busy:     busy,
		Bookings: toBookingResponses(bookings),
	}, nil
}

// SendInquiryEmail asks the booked cast whether they can take the dates.
func (s *Service) SendInquiryEmail(ctx context.Context, id uuid.UUID) error {
	if s.mailer == nil {
		return apperr.PreconditionFailed("email is not configured")
	}
	b, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	cast, err := s.repo.GetCast(ctx, b.CastID)
	if err != nil {
		return err
	}
	if cast.Email == "" {
		return apperr.PreconditionFailed("cast has no email address")
	}

	dates := []string{(domain.DateRange{Start: b.StartDate, End: b.EndDate}).String()}
	if len(b.ShootingDates) > 0 {
		dates = dates[:0]
		for _, d := range b.ShootingDates {
			dates = append(dates, d.Format("2006/01/02"))
		}
	}

	return s.mailer.SendAvailabilityInquiry(ctx, email.Recipient{Name: cast.Name, Email: cast.Email}, email.AvailabilityInquiry{
		CastName:    cast.Name,
		AccountName: b.AccountName,
		ProjectName: b.ProjectName,
		RoleName:    b.RoleName,
		Dates:       dates,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
	})
}

// ListCasts returns the roster
func (s *Service) ListCasts(ctx context.Context, req transport.ListCastsRequest) ([]transport.CastResponse, error) {
	var castType *domain.CastType
	if req.CastType != "" {
		ct := domain.CastType(req.CastType)
		castType = &ct
	}
	casts, err := s.repo.ListCasts(ctx, castType)
	if err != nil {
		return nil, err
	}
	out := make([]transport.CastResponse, 0, len(casts))
	for _, c := range casts {
		out = append(out, toCastResponse(c))
	}
	return out, nil
}

// GetCast returns a roster entry
func (s *Service) GetCast(ctx context.Context, id uuid.UUID) (*transport.CastResponse, error) {
	c, err := s.repo.GetCast(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toCastResponse(c)
	return &resp, nil
}

// UpsertCast creates or replaces a roster entry
func (s *Service) UpsertCast(ctx context.Context, req transport.UpsertCastRequest) (*transport.CastResponse, error) {
	ct := domain.CastType(req.CastType)
	if !ct.Valid() {
		return nil, apperr.Validation("castType must be internal or external")
	}
	id := uuid.New()
	if req.ID != nil {
		id = *req.ID
	}
	c, err := s.repo.UpsertCast(ctx, repository.Cast{
		ID:             id,
		Name:           req.Name,
		Furigana:       req.Furigana,
		CastType:       ct,
		Agency:         req.Agency,
		Email:          req.Email,
		SlackMentionID: req.SlackMentionID,
		Notes:          req.Notes,
	})
	if err != nil {
		return nil, err
	}
	resp := toCastResponse(c)
	return &resp, nil
}
