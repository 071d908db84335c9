// Package service implements the casting workflows: order submission, status
// transitions, field edits, deletion and the supporting booking queries.
package service

import (
	"context"
	"time"

	"casting_ops_backend/internal/events"
	"casting_ops_backend/platform/logger"
	"casting_ops_backend/platform/redislock"
)

const threadLockWait = 5 * time.Second

// Service provides business logic for bookings
type Service struct {
	repo     Store
	log      *logger.Logger
	eventBus events.Bus

	notifier Notifier
	calendar HoldCalendar
	tracker  Tracker
	contacts ContactRecords
	archive  DocumentArchive
	mailer   InquiryMailer
	locks    *redislock.Locker
}

// New creates a new casting service. Downstream integrations are attached
// with the Set* methods; a missing integration skips its step.
func New(repo Store, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

func (s *Service) SetNotifier(n Notifier)               { s.notifier = n }
func (s *Service) SetCalendar(c HoldCalendar)           { s.calendar = c }
func (s *Service) SetTracker(t Tracker)                 { s.tracker = t }
func (s *Service) SetContactRecords(c ContactRecords)   { s.contacts = c }
func (s *Service) SetDocumentArchive(a DocumentArchive) { s.archive = a }
func (s *Service) SetInquiryMailer(m InquiryMailer)     { s.mailer = m }

// SetThreadLocker serializes concurrent orders for the same project so only
// one of them opens a thread.
func (s *Service) SetThreadLocker(l *redislock.Locker) { s.locks = l }

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, event)
	}
}
