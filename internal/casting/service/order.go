package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/casting/transport"
	"casting_ops_backend/internal/events"
	"casting_ops_backend/internal/notion"
	"casting_ops_backend/internal/slack"
	"casting_ops_backend/internal/slackmsg"
	"casting_ops_backend/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const conflictCheckParallelism = 8

// orderPlan is a validated order with its casts resolved.
type orderPlan struct {
	mode       domain.Mode
	ranges     []domain.DateRange
	casts      []repository.Cast
	projectKey string
}

// conflictHit is the first same-day booking found for an order item.
type conflictHit struct {
	day     time.Time
	booking repository.Booking
}

// CreateOrder writes one booking per item and date range, announces the order
// and places calendar holds for internal casts. Only input, roster and
// database failures fail the call; notification, calendar and archive
// failures leave the corresponding response fields empty.
func (s *Service) CreateOrder(ctx context.Context, actorID uuid.UUID, req transport.CreateOrderRequest) (*transport.CreateOrderResponse, error) {
	if s.notifier == nil {
		return nil, apperr.PreconditionFailed("slack is not configured")
	}
	plan, err := s.planOrder(ctx, req)
	if err != nil {
		return nil, err
	}

	if plan.projectKey != "" {
		lock, err := s.locks.Acquire(ctx, "thread:"+plan.projectKey, threadLockWait)
		if err != nil {
			s.log.Step("thread_lock", err, "project_id", plan.projectKey)
		}
		defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()
	}

	thread, additional, err := s.repo.FindThread(ctx, plan.projectKey)
	if err != nil {
		return nil, err
	}

	bookings := s.buildBookings(actorID, req, plan)
	if err := s.repo.CreateBookings(ctx, bookings); err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
	}

	hits := s.detectConflicts(ctx, plan, ids)
	candidates := make([]slackmsg.Candidate, len(req.Items))
	for i, item := range req.Items {
		cast := plan.casts[i]
		candidates[i] = slackmsg.Candidate{
			ProjectName: itemProject(req, item),
			RoleName:    item.RoleName,
			Rank:        item.Rank,
			CastName:    cast.Name,
			MentionID:   cast.SlackMentionID,
			Internal:    cast.CastType == domain.CastInternal,
		}
		if hit, ok := hits[i]; ok {
			candidates[i].Conflict = slackmsg.ConflictNote(hit.booking.ProjectName)
		}
	}

	text := s.orderMessage(ctx, req, plan, candidates, additional)

	var attachmentKey string
	if req.Attachment != nil && s.archive != nil {
		attachmentKey, _ = attempt(s.log, "archive_attachment", func() (string, error) {
			return s.archive.StoreOrderDocument(ctx, req.Attachment.Name, req.Attachment.Content)
		}, "project_id", plan.projectKey)
	}

	msg := slack.Message{Text: text}
	if additional {
		msg.ThreadTS = thread.TS
	}
	if req.Attachment != nil {
		msg.File = &slack.File{Name: req.Attachment.Name, Content: req.Attachment.Content}
	}
	posted, _ := attempt(s.log, "slack_dispatch", func() (slack.Result, error) {
		return s.notifier.Dispatch(ctx, msg)
	}, "project_id", plan.projectKey, "additional", additional)

	threadID, permalink := posted.TS, posted.Permalink
	if additional {
		threadID, permalink = thread.TS, thread.Permalink
	}

	holds := s.createHolds(ctx, bookings, plan)

	updates := make([]repository.Correlation, 0, len(bookings))
	for _, b := range bookings {
		u := repository.Correlation{
			BookingID:     b.ID,
			ThreadTS:      threadID,
			Permalink:     permalink,
			AttachmentKey: attachmentKey,
		}
		if b.CastType == domain.CastInternal {
			u.CalendarEventID = holds[domain.NewHoldKey(b.CastID, b.StartDate)]
		}
		updates = append(updates, u)
	}
	try(s.log, "write_back", func() error { return s.repo.ApplyCorrelation(ctx, updates) }, "bookings", len(updates))

	resp := &transport.CreateOrderResponse{
		BookingIDs:                ids,
		ThreadID:                  threadID,
		Permalink:                 permalink,
		IsAdditionalThread:        additional,
		CalendarHoldsByKey:        []transport.HoldRef{},
		ConflictAnnotationsByItem: []transport.ConflictAnnotation{},
		AttachmentKey:             attachmentKey,
	}
	for _, b := range bookings {
		key := domain.NewHoldKey(b.CastID, b.StartDate)
		if id, ok := holds[key]; ok && b.CastType == domain.CastInternal {
			resp.CalendarHoldsByKey = append(resp.CalendarHoldsByKey, transport.HoldRef{CastID: key.CastID, Date: key.Date, EventID: id})
			delete(holds, key)
		}
	}
	for i := range req.Items {
		hit, ok := hits[i]
		if !ok {
			continue
		}
		resp.ConflictAnnotationsByItem = append(resp.ConflictAnnotationsByItem, transport.ConflictAnnotation{
			ItemIndex:            i,
			CastID:               plan.casts[i].ID,
			Date:                 domain.FormatDate(hit.day),
			ConflictingBookingID: hit.booking.ID,
			ProjectName:          hit.booking.ProjectName,
			Note:                 candidates[i].Conflict,
		})
	}

	s.publish(ctx, events.OrderSubmitted{
		BaseEvent:    events.NewBaseEvent(),
		BookingIDs:   ids,
		ProjectID:    plan.projectKey,
		ProjectName:  req.ProjectName,
		Mode:         string(plan.mode),
		ThreadTS:     threadID,
		Additional:   additional,
		Conflicts:    len(resp.ConflictAnnotationsByItem),
		CalendarHold: len(resp.CalendarHoldsByKey),
		ActorID:      actorID,
	})
	return resp, nil
}

func (s *Service) planOrder(ctx context.Context, req transport.CreateOrderRequest) (orderPlan, error) {
	if len(req.Items) == 0 {
		return orderPlan{}, apperr.Validation("items must not be empty")
	}
	if len(req.DateRanges) == 0 {
		return orderPlan{}, apperr.Validation("dateRanges must not be empty")
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return orderPlan{}, err
	}

	plan := orderPlan{mode: mode, projectKey: projectKey(req.ProjectID)}
	for _, raw := range req.DateRanges {
		r, err := domain.ParseDateRange(raw)
		if err != nil {
			return orderPlan{}, err
		}
		plan.ranges = append(plan.ranges, r)
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	for i, item := range req.Items {
		if item.Rank < 1 {
			return orderPlan{}, apperr.Validation(fmt.Sprintf("items[%d].rank must be at least 1", i))
		}
		if item.Tier != "" && !domain.Tier(item.Tier).Valid() {
			return orderPlan{}, apperr.Validation(fmt.Sprintf("items[%d].mainSub %q is not main, sub or other", i, item.Tier))
		}
		ids = append(ids, item.CastID)
	}

	roster, err := s.repo.GetCastsByIDs(ctx, ids)
	if err != nil {
		return orderPlan{}, err
	}
	for _, item := range req.Items {
		cast, ok := roster[item.CastID]
		if !ok {
			return orderPlan{}, apperr.NotFound(fmt.Sprintf("cast %s not found", item.CastID))
		}
		plan.casts = append(plan.casts, cast)
	}
	return plan, nil
}

// projectKey normalizes a tracker page id or URL; values that are not page
// ids are kept verbatim so free-form project ids still group threads.
func projectKey(raw string) string {
	if key := notion.NormalizePageID(raw); key != "" {
		return key
	}
	return strings.TrimSpace(raw)
}

func itemProject(req transport.CreateOrderRequest, item transport.OrderItem) string {
	if item.ProjectName != "" {
		return item.ProjectName
	}
	if req.ProjectName != "" {
		return req.ProjectName
	}
	return req.Title
}

func (s *Service) buildBookings(actorID uuid.UUID, req transport.CreateOrderRequest, plan orderPlan) []repository.Booking {
	now := time.Now()
	actor := actorID
	bookings := make([]repository.Booking, 0, len(req.Items)*len(plan.ranges))
	for i, item := range req.Items {
		cast := plan.casts[i]
		tier := domain.Tier(item.Tier)
		if tier == "" {
			tier = domain.TierOther
		}
		for _, r := range plan.ranges {
			b := repository.Booking{
				ID:          uuid.New(),
				CastID:      cast.ID,
				CastName:    cast.Name,
				CastType:    cast.CastType,
				AccountName: req.AccountName,
				ProjectName: itemProject(req, item),
				ProjectID:   plan.projectKey,
				RoleName:    item.RoleName,
				StartDate:   r.Start,
				EndDate:     r.End,
				StartTime:   req.StartTime,
				EndTime:     req.EndTime,
				Rank:        item.Rank,
				Tier:        tier,
				Mode:        plan.mode,
				Status:      domain.InitialStatus(plan.mode, cast.CastType),
				Note:        item.Note,
				CreatedBy:   &actor,
				UpdatedBy:   &actor,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			if r.MultiDay() {
				b.ShootingDates = r.Days()
			}
			bookings = append(bookings, b)
		}
	}
	return bookings
}

// detectConflicts checks every item concurrently. Within an item the days
// are walked in order and the first hit wins. Bookings created by this
// order are excluded. A failed check leaves the item unannotated.
func (s *Service) detectConflicts(ctx context.Context, plan orderPlan, own []uuid.UUID) map[int]conflictHit {
	var (
		mu   sync.Mutex
		hits = make(map[int]conflictHit)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(conflictCheckParallelism)

	for i, cast := range plan.casts {
		g.Go(func() error {
			for _, r := range plan.ranges {
				for _, day := range r.Days() {
					existing, err := s.repo.FindConflict(gctx, cast.ID, day, own)
					if err != nil {
						return fmt.Errorf("cast %s on %s: %w", cast.ID, domain.FormatDate(day), err)
					}
					if existing != nil {
						mu.Lock()
						hits[i] = conflictHit{day: day, booking: *existing}
						mu.Unlock()
						return nil
					}
				}
			}
			return nil
		})
	}
	try(s.log, "conflict_check", g.Wait, "items", len(plan.casts))
	return hits
}

func (s *Service) orderMessage(ctx context.Context, req transport.CreateOrderRequest, plan orderPlan, candidates []slackmsg.Candidate, additional bool) string {
	dates := make([]string, len(plan.ranges))
	for i, r := range plan.ranges {
		dates[i] = r.String()
	}

	switch {
	case additional:
		return slackmsg.AdditionalOrder(slackmsg.AdditionalParams{
			MentionGroupID: s.notifier.MentionGroupID(),
			Candidates:     candidates,
		})
	case plan.mode.Special():
		title := req.Title
		if title == "" {
			title = req.ProjectName
		}
		return slackmsg.SpecialOrder(slackmsg.SpecialParams{
			Mode:       string(plan.mode),
			Title:      title,
			Dates:      dates,
			StartTime:  req.StartTime,
			EndTime:    req.EndTime,
			Candidates: candidates,
			CCMention:  s.resolveMention(ctx, req.CCMention),
		})
	default:
		var trackerURL string
		if key := notion.NormalizePageID(req.ProjectID); key != "" {
			trackerURL = notion.PageURL(key)
		}
		return slackmsg.Order(slackmsg.OrderParams{
			Mode:           string(plan.mode),
			MentionGroupID: s.notifier.MentionGroupID(),
			CC:             s.ccLine(ctx, req),
			Dates:          dates,
			AccountName:    req.AccountName,
			Candidates:     candidates,
			TrackerURL:     trackerURL,
		})
	}
}

// ccLine renders "CD: x / FD: y / P: z" from the named staff, skipping blanks.
func (s *Service) ccLine(ctx context.Context, req transport.CreateOrderRequest) string {
	var parts []string
	for _, staff := range []struct{ label, name string }{
		{"CD", req.Director},
		{"FD", req.FloorDirector},
		{"P", req.Producer},
	} {
		if strings.TrimSpace(staff.name) == "" {
			continue
		}
		parts = append(parts, staff.label+": "+s.resolveMention(ctx, staff.name))
	}
	return strings.Join(parts, " / ")
}

// resolveMention turns a roster name or email into a mention. Preformatted
// mentions and unknown names pass through.
func (s *Service) resolveMention(ctx context.Context, handle string) string {
	handle = strings.TrimSpace(handle)
	if handle == "" || strings.HasPrefix(handle, "<@") {
		return handle
	}
	cast, ok := attempt(s.log, "mention_lookup", func() (*repository.Cast, error) {
		return s.repo.FindCastByHandle(ctx, handle)
	}, "handle", handle)
	if !ok || cast == nil {
		return handle
	}
	return slackmsg.Mention(cast.SlackMentionID, handle)
}

// createHolds places one hold per internal cast and range start, in booking
// order. Each failure is absorbed on its own.
func (s *Service) createHolds(ctx context.Context, bookings []repository.Booking, plan orderPlan) map[domain.HoldKey]string {
	holds := make(map[domain.HoldKey]string)
	if s.calendar == nil {
		return holds
	}
	internal := false
	for _, b := range bookings {
		if b.CastType == domain.CastInternal {
			internal = true
			break
		}
	}
	if !internal {
		return holds
	}
	if !try(s.log, "calendar_verify", func() error { return s.calendar.Verify(ctx) }) {
		return holds
	}

	emails := make(map[uuid.UUID]string, len(plan.casts))
	for _, c := range plan.casts {
		emails[c.ID] = c.Email
	}

	for _, b := range bookings {
		if b.CastType != domain.CastInternal {
			continue
		}
		key := domain.NewHoldKey(b.CastID, b.StartDate)
		if _, done := holds[key]; done {
			continue
		}
		id, ok := attempt(s.log, "calendar_create_hold", func() (string, error) {
			return s.calendar.CreateHold(ctx, holdFor(b, emails[b.CastID]))
		}, "booking_id", b.ID, "cast", b.CastName, "date", key.Date)
		if ok && id != "" {
			holds[key] = id
		}
	}
	return holds
}
