package domain

import (
	"fmt"
	"strings"
	"time"

	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
)

// DateLayout is the canonical wire and storage form of a calendar date.
const DateLayout = "2006-01-02"

// ParseDate accepts YYYY-MM-DD or YYYY/MM/DD.
func ParseDate(raw string) (time.Time, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "/", "-")
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("invalid date %q", raw))
	}
	return d, nil
}

// FormatDate renders a date in DateLayout, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DateRange is an inclusive span of whole days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange accepts a single date or "A ~ B" (ASCII or full-width tilde).
func ParseDateRange(raw string) (DateRange, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), "〜", "~")
	parts := strings.Split(s, "~")
	switch len(parts) {
	case 1:
		d, err := ParseDate(parts[0])
		if err != nil {
			return DateRange{}, err
		}
		return DateRange{Start: d, End: d}, nil
	case 2:
		start, err := ParseDate(parts[0])
		if err != nil {
			return DateRange{}, err
		}
		end, err := ParseDate(parts[1])
		if err != nil {
			return DateRange{}, err
		}
		if end.Before(start) {
			return DateRange{}, apperr.Validation(fmt.Sprintf("date range %q ends before it starts", raw))
		}
		return DateRange{Start: start, End: end}, nil
	default:
		return DateRange{}, apperr.Validation(fmt.Sprintf("invalid date range %q", raw))
	}
}

func (r DateRange) MultiDay() bool { return r.End.After(r.Start) }

// Days enumerates every date in the range, start first.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// String renders the range the way it appears in notifications.
func (r DateRange) String() string {
	if !r.MultiDay() {
		return r.Start.Format("2006/01/02")
	}
	return r.Start.Format("2006/01/02") + " ~ " + r.End.Format("2006/01/02")
}

// HoldKey identifies the calendar hold created for one cast on one start date.
type HoldKey struct {
	CastID uuid.UUID
	Date   string
}

func NewHoldKey(castID uuid.UUID, day time.Time) HoldKey {
	return HoldKey{CastID: castID, Date: FormatDate(day)}
}
