package service

import (
	"casting_ops_backend/internal/calendar"
	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/transport"
)

func toBookingResponse(b repository.Booking) transport.BookingResponse {
	resp := transport.BookingResponse{
		ID:              b.ID,
		CastID:          b.CastID,
		CastName:        b.CastName,
		CastType:        string(b.CastType),
		AccountName:     b.AccountName,
		ProjectName:     b.ProjectName,
		ProjectID:       b.ProjectID,
		RoleName:        b.RoleName,
		StartDate:       domain.FormatDate(b.StartDate),
		EndDate:         domain.FormatDate(b.EndDate),
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Rank:            b.Rank,
		Tier:            string(b.Tier),
		Mode:            string(b.Mode),
		Status:          string(b.Status),
		StatusLabel:     b.Status.Label(),
		Note:            b.Note,
		Cost:            b.Cost,
		ThreadID:        b.ThreadTS,
		Permalink:       b.Permalink,
		CalendarEventID: b.CalendarEventID,
		AttachmentKey:   b.AttachmentKey,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		DeletedAt:       b.DeletedAt,
	}
	for _, d := range b.ShootingDates {
		resp.ShootingDates = append(resp.ShootingDates, domain.FormatDate(d))
	}
	return resp
}

func toBookingResponses(bookings []repository.Booking) []transport.BookingResponse {
	out := make([]transport.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

func toCastResponse(c repository.Cast) transport.CastResponse {
	return transport.CastResponse{
		ID:             c.ID,
		Name:           c.Name,
		Furigana:       c.Furigana,
		CastType:       string(c.CastType),
		CastTypeLabel:  c.CastType.Label(),
		Agency:         c.Agency,
		Email:          c.Email,
		SlackMentionID: c.SlackMentionID,
		Notes:          c.Notes,
		UpdatedAt:      c.UpdatedAt,
	}
}

func statusOption(s domain.Status) transport.StatusOption {
	return transport.StatusOption{Value: string(s), Label: s.Label()}
}

// holdFor renders the calendar hold of an internal booking in its current state.
func holdFor(b repository.Booking, castEmail string) calendar.Hold {
	return calendar.Hold{
		Timing:      timingFor(b),
		BookingID:   b.ID.String(),
		AccountName: b.AccountName,
		ProjectName: b.ProjectName,
		RoleName:    b.RoleName,
		TierLabel:   b.Tier.Label(),
		CastName:    b.CastName,
		CastEmail:   castEmail,
		Rank:        b.Rank,
		StatusLabel: b.Status.Label(),
		Confirmed:   b.Status.Confirmation(),
	}
}

func timingFor(b repository.Booking) calendar.Timing {
	return calendar.Timing{
		StartDate: domain.FormatDate(b.StartDate),
		EndDate:   domain.FormatDate(b.EndDate),
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
	}
}

func contactSource(b repository.Booking) ContactSource {
	return ContactSource{
		BookingID:   b.ID,
		CastID:      b.CastID,
		CastName:    b.CastName,
		CastType:    b.CastType,
		AccountName: b.AccountName,
		ProjectName: b.ProjectName,
		ProjectID:   b.ProjectID,
		RoleName:    b.RoleName,
		Tier:        b.Tier,
		ShootDate:   b.StartDate,
		ThreadTS:    b.ThreadTS,
	}
}
