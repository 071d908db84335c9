package transport

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is one candidate cast for a role
type OrderItem struct {
	CastID      uuid.UUID `json:"castId" validate:"required"`
	RoleName    string    `json:"roleName,omitempty" validate:"max=200"`
	Rank        int       `json:"rank" validate:"required,min=1,max=99"`
	Tier        string    `json:"mainSub,omitempty" validate:"omitempty,oneof=main sub other"`
	ProjectName string    `json:"projectName,omitempty" validate:"max=300"`
	Note        string    `json:"note,omitempty" validate:"max=2000"`
}

// Attachment is a document posted with the order. Content is base64 in JSON.
type Attachment struct {
	Name    string `json:"name" validate:"required,max=255"`
	Content []byte `json:"content" validate:"required"`
}

// CreateOrderRequest is the request body for submitting an order
type CreateOrderRequest struct {
	Items         []OrderItem `json:"items" validate:"required,min=1,max=50,dive"`
	DateRanges    []string    `json:"dateRanges" validate:"required,min=1,max=31,dive,daterange"`
	Mode          string      `json:"mode,omitempty" validate:"omitempty,oneof=shooting external internal"`
	ProjectID     string      `json:"projectId,omitempty" validate:"max=500"`
	ProjectName   string      `json:"projectName,omitempty" validate:"max=300"`
	AccountName   string      `json:"accountName,omitempty" validate:"max=200"`
	Title         string      `json:"title,omitempty" validate:"max=300"`
	StartTime     string      `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime       string      `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	Director      string      `json:"director,omitempty" validate:"max=100"`
	FloorDirector string      `json:"floorDirector,omitempty" validate:"max=100"`
	Producer      string      `json:"producer,omitempty" validate:"max=100"`
	CCMention     string      `json:"ccMention,omitempty" validate:"max=200"`
	Attachment    *Attachment `json:"pdfAttachment,omitempty"`
}

// HoldRef is one calendar hold created by an order
type HoldRef struct {
	CastID  uuid.UUID `json:"castId"`
	Date    string    `json:"date"`
	EventID string    `json:"eventId"`
}

// ConflictAnnotation records a same-day booking found for an order item
type ConflictAnnotation struct {
	ItemIndex            int       `json:"itemIndex"`
	CastID               uuid.UUID `json:"castId"`
	Date                 string    `json:"date"`
	ConflictingBookingID uuid.UUID `json:"conflictingBookingId"`
	ProjectName          string    `json:"projectName"`
	Note                 string    `json:"note"`
}

// CreateOrderResponse is the response body for a submitted order
type CreateOrderResponse struct {
	BookingIDs                []uuid.UUID          `json:"bookingIds"`
	ThreadID                  string               `json:"threadId"`
	Permalink                 string               `json:"permalink"`
	IsAdditionalThread        bool                 `json:"isAdditionalThread"`
	CalendarHoldsByKey        []HoldRef            `json:"calendarHoldsByKey"`
	ConflictAnnotationsByItem []ConflictAnnotation `json:"conflictAnnotationsByItem"`
	AttachmentKey             string               `json:"attachmentKey,omitempty"`
}

// UpdateStatusRequest is the request body for a status transition
type UpdateStatusRequest struct {
	Status         string `json:"newStatus" validate:"required"`
	PreviousStatus string `json:"previousStatus,omitempty"`
	Cost           *int64 `json:"cost,omitempty" validate:"omitempty,min=0"`
	Note           string `json:"note,omitempty" validate:"max=2000"`
}

// StatusResponse is the response body for a status transition
type StatusResponse struct {
	OK              bool       `json:"ok"`
	Status          string     `json:"status"`
	ContactRecordID *uuid.UUID `json:"contactRecordId,omitempty"`
}

// OKResponse acknowledges a command
type OKResponse struct {
	OK bool `json:"ok"`
}

// EditBookingRequest is the request body for editing schedule or project
// fields. An empty time clears it.
type EditBookingRequest struct {
	Date      *string `json:"date,omitempty" validate:"omitempty,isodate"`
	EndDate   *string `json:"endDate,omitempty" validate:"omitempty,isodate"`
	StartTime *string `json:"startTime,omitempty" validate:"omitempty,hhmm"`
	EndTime   *string `json:"endTime,omitempty" validate:"omitempty,hhmm"`
	Title     *string `json:"title,omitempty" validate:"omitempty,max=300"`
}

// Change is the before and after value of one field
type Change struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// EditBookingResponse lists the fields that actually changed
type EditBookingResponse struct {
	OK            bool              `json:"ok"`
	ChangeSummary map[string]Change `json:"changeSummary"`
}

// ListBookingsRequest is the query parameters for listing bookings
type ListBookingsRequest struct {
	ProjectID      string     `form:"projectId"`
	CastID         *uuid.UUID `form:"castId"`
	Status         string     `form:"status"`
	From           string     `form:"from" validate:"omitempty,isodate"`
	To             string     `form:"to" validate:"omitempty,isodate"`
	IncludeDeleted bool       `form:"includeDeleted"`
	Limit          int        `form:"limit" validate:"omitempty,min=1,max=500"`
}

// BookingResponse is the response body for a booking
type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	CastID          uuid.UUID  `json:"castId"`
	CastName        string     `json:"castName"`
	CastType        string     `json:"castType"`
	AccountName     string     `json:"accountName"`
	ProjectName     string     `json:"projectName"`
	ProjectID       string     `json:"projectId"`
	RoleName        string     `json:"roleName"`
	StartDate       string     `json:"startDate"`
	EndDate         string     `json:"endDate"`
	StartTime       string     `json:"startTime,omitempty"`
	EndTime         string     `json:"endTime,omitempty"`
	ShootingDates   []string   `json:"shootingDates,omitempty"`
	Rank            int        `json:"rank"`
	Tier            string     `json:"mainSub"`
	Mode            string     `json:"mode"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"statusLabel"`
	Note            string     `json:"note,omitempty"`
	Cost            int64      `json:"cost"`
	ThreadID        string     `json:"threadId,omitempty"`
	Permalink       string     `json:"permalink,omitempty"`
	CalendarEventID string     `json:"calendarEventId,omitempty"`
	AttachmentKey   string     `json:"attachmentKey,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	DeletedAt       *time.Time `json:"deletedAt,omitempty"`
}

// StatusOption is a status the caller may move a booking to
type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// TransitionsResponse lists the caller's allowed next statuses
type TransitionsResponse struct {
	Current StatusOption   `json:"current"`
	Allowed []StatusOption `json:"allowed"`
}

// AvailabilityRequest is the query parameters for a cast availability window
type AvailabilityRequest struct {
	From string `form:"from" validate:"required,isodate"`
	To   string `form:"to" validate:"required,isodate"`
}

// AvailabilityResponse lists the cast's active bookings inside the window
type AvailabilityResponse struct {
	CastID   uuid.UUID         `json:"castId"`
	From     string            `json:"from"`
	To       string            `json:"to"`
	Busy     []string          `json:"busyDates"`
	Bookings []BookingResponse `json:"bookings"`
}

// ListCastsRequest is the query parameters for the roster
type ListCastsRequest struct {
	CastType string `form:"castType" validate:"omitempty,oneof=internal external"`
}

// UpsertCastRequest is the request body for creating or replacing a roster entry
type UpsertCastRequest struct {
	ID             *uuid.UUID `json:"id,omitempty"`
	Name           string     `json:"name" validate:"required,min=1,max=100"`
	Furigana       string     `json:"furigana,omitempty" validate:"max=100"`
	CastType       string     `json:"castType" validate:"required,oneof=internal external"`
	Agency         string     `json:"agency,omitempty" validate:"max=200"`
	Email          string     `json:"email,omitempty" validate:"omitempty,email"`
	SlackMentionID string     `json:"slackMentionId,omitempty" validate:"max=50"`
	Notes          string     `json:"notes,omitempty" validate:"max=2000"`
}

// CastResponse is the response body for a roster entry
type CastResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Furigana       string    `json:"furigana,omitempty"`
	CastType       string    `json:"castType"`
	CastTypeLabel  string    `json:"castTypeLabel"`
	Agency         string    `json:"agency,omitempty"`
	Email          string    `json:"email,omitempty"`
	SlackMentionID string    `json:"slackMentionId,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
