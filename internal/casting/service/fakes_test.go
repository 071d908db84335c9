package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"sync"
	"time"

	"casting_ops_backend/internal/calendar"
	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/slack"
	"casting_ops_backend/platform/apperr"
	"casting_ops_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	mu       sync.Mutex
	bookings []repository.Booking
	casts    map[uuid.UUID]repository.Cast
	history  map[uuid.UUID]repository.HistoryEntry
	activity []repository.Activity
	renames  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		casts:   make(map[uuid.UUID]repository.Cast),
		history: make(map[uuid.UUID]repository.HistoryEntry),
	}
}

func (f *fakeStore) addCast(name string, t domain.CastType) repository.Cast {
	c := repository.Cast{ID: uuid.New(), Name: name, CastType: t, Email: name + "@example.com", SlackMentionID: "U" + name}
	f.casts[c.ID] = c
	return c
}

func (f *fakeStore) addBooking(b repository.Booking) repository.Booking {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.EndDate.IsZero() {
		b.EndDate = b.StartDate
	}
	if b.Rank == 0 {
		b.Rank = 1
	}
	if b.Tier == "" {
		b.Tier = domain.TierOther
	}
	f.bookings = append(f.bookings, b)
	return b
}

func (f *fakeStore) index(id uuid.UUID) int {
	return slices.IndexFunc(f.bookings, func(b repository.Booking) bool { return b.ID == id })
}

func (f *fakeStore) booking(id uuid.UUID) repository.Booking {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookings[f.index(id)]
}

func (f *fakeStore) CreateBookings(_ context.Context, bookings []repository.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings = append(f.bookings, bookings...)
	return nil
}

func (f *fakeStore) GetBooking(_ context.Context, id uuid.UUID) (repository.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		return repository.Booking{}, apperr.NotFound("booking not found")
	}
	return f.bookings[i], nil
}

func (f *fakeStore) FindThread(_ context.Context, projectID string) (repository.ThreadRef, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if projectID != "" && b.ProjectID == projectID && b.ThreadTS != "" {
			return repository.ThreadRef{TS: b.ThreadTS, Permalink: b.Permalink}, true, nil
		}
	}
	return repository.ThreadRef{}, false, nil
}

func (f *fakeStore) FindConflict(_ context.Context, castID uuid.UUID, day time.Time, exclude []uuid.UUID) (*repository.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.CastID != castID || b.DeletedAt != nil || !b.Status.Active() || slices.Contains(exclude, b.ID) {
			continue
		}
		if !day.Before(b.StartDate) && !day.After(b.EndDate) {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ApplyCorrelation(_ context.Context, updates []repository.Correlation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range updates {
		i := f.index(u.BookingID)
		f.bookings[i].ThreadTS = u.ThreadTS
		f.bookings[i].Permalink = u.Permalink
		if u.CalendarEventID != "" {
			f.bookings[i].CalendarEventID = u.CalendarEventID
		}
		if u.AttachmentKey != "" {
			f.bookings[i].AttachmentKey = u.AttachmentKey
		}
	}
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, u repository.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(u.BookingID)
	f.bookings[i].Status = u.Status
	if u.Cost != nil {
		f.bookings[i].Cost = *u.Cost
	}
	return nil
}

func (f *fakeStore) ClearCalendarEvent(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[f.index(id)].CalendarEventID = ""
	return nil
}

func (f *fakeStore) HoldShared(_ context.Context, eventID string, exclude uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ID != exclude && b.CalendarEventID == eventID && b.DeletedAt == nil && b.Status.Active() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id uuid.UUID, _ uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	i := f.index(id)
	f.bookings[i].Status = domain.StatusDeleted
	f.bookings[i].CalendarEventID = ""
	f.bookings[i].DeletedAt = &now
	return nil
}

func (f *fakeStore) UpdateFields(_ context.Context, id uuid.UUID, u repository.FieldUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	f.bookings[i].StartDate = u.StartDate
	f.bookings[i].EndDate = u.EndDate
	f.bookings[i].ShootingDates = u.ShootingDates
	f.bookings[i].StartTime = u.StartTime
	f.bookings[i].EndTime = u.EndTime
	f.bookings[i].ProjectName = u.ProjectName
	return nil
}

func (f *fakeStore) ListBookings(_ context.Context, filter repository.BookingFilter) ([]repository.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Booking
	for _, b := range f.bookings {
		if filter.CastID != nil && b.CastID != *filter.CastID {
			continue
		}
		if !filter.IncludeDeleted && b.DeletedAt != nil {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeStore) ListActiveForCast(_ context.Context, castID uuid.UUID, from, to time.Time) ([]repository.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Booking
	for _, b := range f.bookings {
		if b.CastID == castID && b.Status.Active() && b.DeletedAt == nil && !b.StartDate.After(to) && !b.EndDate.Before(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCast(_ context.Context, id uuid.UUID) (repository.Cast, error) {
	c, ok := f.casts[id]
	if !ok {
		return repository.Cast{}, apperr.NotFound("cast not found")
	}
	return c, nil
}

func (f *fakeStore) GetCastsByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.Cast, error) {
	out := make(map[uuid.UUID]repository.Cast)
	for _, id := range ids {
		if c, ok := f.casts[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func (f *fakeStore) ListCasts(_ context.Context, castType *domain.CastType) ([]repository.Cast, error) {
	var out []repository.Cast
	for _, c := range f.casts {
		if castType == nil || c.CastType == *castType {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpsertCast(_ context.Context, c repository.Cast) (repository.Cast, error) {
	f.casts[c.ID] = c
	return c, nil
}

func (f *fakeStore) FindCastByHandle(_ context.Context, handle string) (*repository.Cast, error) {
	for _, c := range f.casts {
		if c.Name == handle || c.Email == handle {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) InsertHistory(_ context.Context, e repository.HistoryEntry) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.history[e.BookingID]; ok {
		return false, nil
	}
	f.history[e.BookingID] = e
	return true, nil
}

func (f *fakeStore) RenameHistoryProject(_ context.Context, castID uuid.UUID, oldName, newName string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renames = append(f.renames, oldName+"->"+newName)
	return 1, nil
}

func (f *fakeStore) InsertActivity(_ context.Context, a repository.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activity = append(f.activity, a)
	return nil
}

func (f *fakeStore) ListActivity(_ context.Context, bookingID uuid.UUID) ([]repository.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []repository.Activity
	for _, a := range f.activity {
		if a.BookingID == bookingID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []slack.Message
	fail   bool
	nextTS string
}

func (n *fakeNotifier) MentionGroupID() string { return "S123" }

func (n *fakeNotifier) Dispatch(_ context.Context, msg slack.Message) (slack.Result, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	if n.fail {
		return slack.Result{}, errors.New("slack unavailable")
	}
	ts := n.nextTS
	if ts == "" {
		ts = "1700000000.000100"
	}
	if msg.ThreadTS != "" {
		ts = msg.ThreadTS
	}
	return slack.Result{TS: ts, Permalink: "https://slack.test/p" + ts}, nil
}

type fakeCalendar struct {
	created map[string]calendar.Hold
	patched map[string]calendar.Patch
	deleted []string
	seq     int
	calls   int
	fail    bool
	// failCall fails only the n-th CreateHold call when set.
	failCall  int
	failPatch bool
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{created: map[string]calendar.Hold{}, patched: map[string]calendar.Patch{}}
}

func (c *fakeCalendar) Verify(context.Context) error { return nil }

func (c *fakeCalendar) CreateHold(_ context.Context, h calendar.Hold) (string, error) {
	c.calls++
	if c.fail || c.calls == c.failCall {
		return "", errors.New("calendar unavailable")
	}
	c.seq++
	id := "evt" + strconv.Itoa(c.seq)
	c.created[id] = h
	return id, nil
}

func (c *fakeCalendar) PatchHold(_ context.Context, id string, p calendar.Patch) error {
	if c.failPatch {
		return errors.New("calendar unavailable")
	}
	c.patched[id] = p
	return nil
}

func (c *fakeCalendar) DeleteHold(_ context.Context, id string) error {
	c.deleted = append(c.deleted, id)
	delete(c.created, id)
	return nil
}

type fakeTracker struct {
	pages map[string]map[string][]string
	fail  bool
}

func (t *fakeTracker) AddToMultiSelect(_ context.Context, pageKey, property, name string) (bool, error) {
	if t.fail {
		return false, errors.New("notion unavailable")
	}
	if t.pages == nil {
		t.pages = map[string]map[string][]string{}
	}
	if t.pages[pageKey] == nil {
		t.pages[pageKey] = map[string][]string{}
	}
	if slices.Contains(t.pages[pageKey][property], name) {
		return false, nil
	}
	t.pages[pageKey][property] = append(t.pages[pageKey][property], name)
	return true, nil
}

type fakeContacts struct {
	records map[uuid.UUID]ContactSource
	renames []string
}

func (c *fakeContacts) CreateFromBooking(_ context.Context, src ContactSource) (uuid.UUID, bool, error) {
	if c.records == nil {
		c.records = map[uuid.UUID]ContactSource{}
	}
	for id, r := range c.records {
		if r.BookingID == src.BookingID {
			return id, false, nil
		}
	}
	id := uuid.New()
	c.records[id] = src
	return id, true, nil
}

func (c *fakeContacts) RenameProject(_ context.Context, _ uuid.UUID, oldName, newName string) (int64, error) {
	c.renames = append(c.renames, oldName+"->"+newName)
	return 1, nil
}

type harness struct {
	svc      *Service
	store    *fakeStore
	notifier *fakeNotifier
	calendar *fakeCalendar
	tracker  *fakeTracker
	contacts *fakeContacts
}

func newHarness() *harness {
	h := &harness{
		store:    newFakeStore(),
		notifier: &fakeNotifier{},
		calendar: newFakeCalendar(),
		tracker:  &fakeTracker{},
		contacts: &fakeContacts{},
	}
	h.svc = New(h.store, nil, logger.New("test"))
	h.svc.SetNotifier(h.notifier)
	h.svc.SetCalendar(h.calendar)
	h.svc.SetTracker(h.tracker)
	h.svc.SetContactRecords(h.contacts)
	return h
}

func day(s string) time.Time {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
