// Package calendar manages calendar holds for internal cast on a shared
// Google Calendar using a service account.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"casting_ops_backend/platform/config"
	"casting_ops_backend/platform/logger"

	"golang.org/x/time/rate"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const dateLayout = "2006-01-02"

type Client struct {
	svc        *gcal.Service
	calendarID string
	loc        *time.Location
	limiter    *rate.Limiter
	log        *logger.Logger
}

// NewClient returns nil when no credential or calendar is configured. Extra
// options replace the service account credential, which tests rely on.
func NewClient(ctx context.Context, cfg config.CalendarConfig, log *logger.Logger, opts ...option.ClientOption) (*Client, error) {
	if !cfg.IsCalendarEnabled() {
		return nil, nil
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsJSON([]byte(cfg.GetGoogleServiceAccountKey())),
			option.WithScopes(gcal.CalendarScope),
		}
	}
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar service: %w", err)
	}

	loc, err := time.LoadLocation(cfg.GetCalendarTimeZone())
	if err != nil {
		return nil, fmt.Errorf("calendar time zone %q: %w", cfg.GetCalendarTimeZone(), err)
	}

	perMinute := cfg.GetCalendarRequestsPerMinute()
	if perMinute <= 0 {
		perMinute = 120
	}

	return &Client{
		svc:        svc,
		calendarID: cfg.GetGoogleCalendarID(),
		loc:        loc,
		limiter:    rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 5),
		log:        log,
	}, nil
}

// Verify checks that the service account can read the target calendar.
func (c *Client) Verify(ctx context.Context) error {
	if c == nil {
		return errors.New("calendar not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.svc.Calendars.Get(c.calendarID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar access check: %w", err)
	}
	return nil
}

// CreateHold inserts the hold and returns its event id.
func (c *Client) CreateHold(ctx context.Context, h Hold) (string, error) {
	if c == nil {
		return "", nil
	}

	start, end, err := c.eventTimes(h.Timing)
	if err != nil {
		return "", err
	}
	ev := &gcal.Event{
		Summary:     h.Summary(),
		Description: h.Description(),
		Start:       start,
		End:         end,
	}
	if h.CastEmail != "" {
		ev.Attendees = []*gcal.EventAttendee{{Email: h.CastEmail}}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	created, err := c.svc.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("calendar insert: %w", err)
	}
	return created.Id, nil
}

// PatchHold rewrites the title and description, the timing, or both.
func (c *Client) PatchHold(ctx context.Context, eventID string, p Patch) error {
	if c == nil || eventID == "" {
		return nil
	}

	ev := &gcal.Event{}
	if p.Text != nil {
		ev.Summary = p.Text.Summary()
		ev.Description = p.Text.Description()
	}
	if p.Timing != nil {
		start, end, err := c.eventTimes(*p.Timing)
		if err != nil {
			return err
		}
		ev.Start, ev.End = start, end
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.svc.Events.Patch(c.calendarID, eventID, ev).Context(ctx).Do(); err != nil {
		return fmt.Errorf("calendar patch: %w", err)
	}
	return nil
}

// DeleteHold removes the hold. An event that is already gone counts as deleted.
func (c *Client) DeleteHold(ctx context.Context, eventID string) error {
	if c == nil || eventID == "" {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	err := c.svc.Events.Delete(c.calendarID, eventID).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == http.StatusNotFound || gerr.Code == http.StatusGone) {
			c.log.Info("calendar hold already gone", "eventId", eventID)
			return nil
		}
		return fmt.Errorf("calendar delete: %w", err)
	}
	return nil
}

// eventTimes builds start and end. All-day events end on the day after the
// last day, since the API treats end dates as exclusive.
func (c *Client) eventTimes(t Timing) (*gcal.EventDateTime, *gcal.EventDateTime, error) {
	startDay, err := time.ParseInLocation(dateLayout, t.StartDate, c.loc)
	if err != nil {
		return nil, nil, fmt.Errorf("calendar start date %q: %w", t.StartDate, err)
	}
	endDay := startDay
	if t.EndDate != "" {
		if endDay, err = time.ParseInLocation(dateLayout, t.EndDate, c.loc); err != nil {
			return nil, nil, fmt.Errorf("calendar end date %q: %w", t.EndDate, err)
		}
	}

	if !t.timed() {
		return &gcal.EventDateTime{Date: startDay.Format(dateLayout), NullFields: []string{"DateTime"}},
			&gcal.EventDateTime{Date: endDay.AddDate(0, 0, 1).Format(dateLayout), NullFields: []string{"DateTime"}},
			nil
	}

	start, err := time.ParseInLocation(dateLayout+" 15:04", t.StartDate+" "+t.StartTime, c.loc)
	if err != nil {
		return nil, nil, fmt.Errorf("calendar start time %q: %w", t.StartTime, err)
	}
	end, err := time.ParseInLocation(dateLayout+" 15:04", endDay.Format(dateLayout)+" "+t.EndTime, c.loc)
	if err != nil {
		return nil, nil, fmt.Errorf("calendar end time %q: %w", t.EndTime, err)
	}
	zone := c.loc.String()
	return &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: zone, NullFields: []string{"Date"}},
		&gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: zone, NullFields: []string{"Date"}},
		nil
}
