package adapters

import (
	"context"
	"fmt"

	castingsvc "casting_ops_backend/internal/casting/service"
	contactsvc "casting_ops_backend/internal/contacts/service"

	"github.com/google/uuid"
)

// ContactRecordWriter is the narrow interface of the contacts service used by
// the casting workflows.
type ContactRecordWriter interface {
	CreateFromBooking(ctx context.Context, in contactsvc.NewContact) (uuid.UUID, bool, error)
	RenameProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error)
}

// ContactRecordsAdapter lets the casting module create and rename contact
// records without importing the contacts repository.
// It implements casting/service.ContactRecords.
type ContactRecordsAdapter struct {
	contacts ContactRecordWriter
}

// NewContactRecordsAdapter creates a new contact records adapter.
func NewContactRecordsAdapter(contacts ContactRecordWriter) *ContactRecordsAdapter {
	return &ContactRecordsAdapter{contacts: contacts}
}

// CreateFromBooking converts the booking snapshot into a contact record.
func (a *ContactRecordsAdapter) CreateFromBooking(ctx context.Context, src castingsvc.ContactSource) (uuid.UUID, bool, error) {
	id, created, err := a.contacts.CreateFromBooking(ctx, contactsvc.NewContact{
		BookingID:   src.BookingID,
		CastID:      src.CastID,
		CastName:    src.CastName,
		CastType:    string(src.CastType),
		AccountName: src.AccountName,
		ProjectName: src.ProjectName,
		RoleName:    src.RoleName,
		Tier:        string(src.Tier),
		ShootDate:   src.ShootDate,
		ThreadTS:    src.ThreadTS,
	})
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("create contact record for booking %s: %w", src.BookingID, err)
	}
	return id, created, nil
}

// RenameProject forwards a project rename to the cast's contact records.
func (a *ContactRecordsAdapter) RenameProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error) {
	return a.contacts.RenameProject(ctx, castID, oldName, newName)
}

var _ castingsvc.ContactRecords = (*ContactRecordsAdapter)(nil)
