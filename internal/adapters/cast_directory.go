package adapters

import (
	"context"
	"fmt"

	castingtransport "casting_ops_backend/internal/casting/transport"
	contactsvc "casting_ops_backend/internal/contacts/service"
	"casting_ops_backend/internal/email"

	"github.com/google/uuid"
)

// CastReader is the narrow interface for reading a roster entry.
type CastReader interface {
	GetCast(ctx context.Context, id uuid.UUID) (*castingtransport.CastResponse, error)
}

// CastDirectoryAdapter resolves contact mail recipients from the cast roster.
// It implements contacts/service.CastDirectory.
type CastDirectoryAdapter struct {
	casts CastReader
}

// NewCastDirectoryAdapter creates a new cast directory adapter.
func NewCastDirectoryAdapter(casts CastReader) *CastDirectoryAdapter {
	return &CastDirectoryAdapter{casts: casts}
}

// CastRecipient returns the cast's name and roster email.
func (a *CastDirectoryAdapter) CastRecipient(ctx context.Context, castID uuid.UUID) (email.Recipient, error) {
	cast, err := a.casts.GetCast(ctx, castID)
	if err != nil {
		return email.Recipient{}, fmt.Errorf("look up cast for contact email: %w", err)
	}
	return email.Recipient{Name: cast.Name, Email: cast.Email}, nil
}

var _ contactsvc.CastDirectory = (*CastDirectoryAdapter)(nil)
