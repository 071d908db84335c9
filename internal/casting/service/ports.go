package service

import (
	"context"
	"time"

	"casting_ops_backend/internal/calendar"
	"casting_ops_backend/internal/casting/domain"
	"casting_ops_backend/internal/casting/repository"
	"casting_ops_backend/internal/email"
	"casting_ops_backend/internal/slack"

	"github.com/google/uuid"
)

// Store is the persistence surface the casting workflows need.
type Store interface {
	CreateBookings(ctx context.Context, bookings []repository.Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (repository.Booking, error)
	FindThread(ctx context.Context, projectID string) (repository.ThreadRef, bool, error)
	FindConflict(ctx context.Context, castID uuid.UUID, day time.Time, exclude []uuid.UUID) (*repository.Booking, error)
	ApplyCorrelation(ctx context.Context, updates []repository.Correlation) error
	UpdateStatus(ctx context.Context, u repository.StatusUpdate) error
	ClearCalendarEvent(ctx context.Context, id uuid.UUID) error
	HoldShared(ctx context.Context, eventID string, exclude uuid.UUID) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	UpdateFields(ctx context.Context, id uuid.UUID, u repository.FieldUpdate) error
	ListBookings(ctx context.Context, f repository.BookingFilter) ([]repository.Booking, error)
	ListActiveForCast(ctx context.Context, castID uuid.UUID, from, to time.Time) ([]repository.Booking, error)

	GetCast(ctx context.Context, id uuid.UUID) (repository.Cast, error)
	GetCastsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]repository.Cast, error)
	ListCasts(ctx context.Context, castType *domain.CastType) ([]repository.Cast, error)
	UpsertCast(ctx context.Context, c repository.Cast) (repository.Cast, error)
	FindCastByHandle(ctx context.Context, handle string) (*repository.Cast, error)

	InsertHistory(ctx context.Context, e repository.HistoryEntry) (bool, error)
	RenameHistoryProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error)

	InsertActivity(ctx context.Context, a repository.Activity) error
	ListActivity(ctx context.Context, bookingID uuid.UUID) ([]repository.Activity, error)
}

// Notifier posts order and lifecycle messages.
type Notifier interface {
	MentionGroupID() string
	Dispatch(ctx context.Context, msg slack.Message) (slack.Result, error)
}

// HoldCalendar manages internal cast holds.
type HoldCalendar interface {
	Verify(ctx context.Context) error
	CreateHold(ctx context.Context, h calendar.Hold) (string, error)
	PatchHold(ctx context.Context, eventID string, p calendar.Patch) error
	DeleteHold(ctx context.Context, eventID string) error
}

// Tracker records confirmed casts on the project page.
type Tracker interface {
	AddToMultiSelect(ctx context.Context, pageKey, property, name string) (bool, error)
}

// ContactSource is the booking data a fulfillment record is derived from.
type ContactSource struct {
	BookingID   uuid.UUID
	CastID      uuid.UUID
	CastName    string
	CastType    domain.CastType
	AccountName string
	ProjectName string
	ProjectID   string
	RoleName    string
	Tier        domain.Tier
	ShootDate   time.Time
	ThreadTS    string
}

// ContactRecords creates and renames downstream fulfillment records.
type ContactRecords interface {
	// CreateFromBooking reports created=false when a record for the booking already exists.
	CreateFromBooking(ctx context.Context, src ContactSource) (id uuid.UUID, created bool, err error)
	RenameProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error)
}

// DocumentArchive keeps order attachments.
type DocumentArchive interface {
	StoreOrderDocument(ctx context.Context, fileName string, content []byte) (string, error)
}

// InquiryMailer sends availability inquiries to casts.
type InquiryMailer interface {
	SendAvailabilityInquiry(ctx context.Context, to email.Recipient, q email.AvailabilityInquiry) error
}
