// Package service manages the fulfillment records kept for confirmed external
// casts: schedule logistics, purchase orders, making footage and post dates.
package service

import (
	"bytes"
	"context"
	"slices"
	"time"

	"casting_ops_backend/internal/contacts/repository"
	"casting_ops_backend/internal/contacts/transport"
	"casting_ops_backend/internal/email"
	"casting_ops_backend/platform/apperr"
	"casting_ops_backend/platform/logger"

	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var statusOrder = []transport.ContactStatus{
	transport.ContactStatusAwaitingSchedule,
	transport.ContactStatusAwaitingPurchaseOrder,
	transport.ContactStatusAwaitingMakingShare,
	transport.ContactStatusAwaitingPostDate,
	transport.ContactStatusCompleted,
}

// Store is the persistence surface of contact records.
type Store interface {
	FindByBooking(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, bool, error)
	Create(ctx context.Context, c repository.Contact) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Contact, error)
	List(ctx context.Context, f repository.Filter) ([]repository.Contact, error)
	Update(ctx context.Context, id uuid.UUID, p repository.Patch) (repository.Contact, error)
	SetOrderDocument(ctx context.Context, id uuid.UUID, key string) error
	RenameProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error)
}

// DocumentStore keeps purchase-order documents.
type DocumentStore interface {
	StoreOrderDocument(ctx context.Context, fileName string, content []byte) (string, error)
	LoadOrderDocument(ctx context.Context, key string) ([]byte, error)
}

// CastDirectory resolves the mail recipient for a cast.
type CastDirectory interface {
	CastRecipient(ctx context.Context, castID uuid.UUID) (email.Recipient, error)
}

// NewContact is the booking data a record is created from.
type NewContact struct {
	BookingID   uuid.UUID
	CastID      uuid.UUID
	CastName    string
	CastType    string
	AccountName string
	ProjectName string
	RoleName    string
	Tier        string
	ShootDate   time.Time
	ThreadTS    string
}

// Service provides business logic for contact records
type Service struct {
	repo      Store
	log       *logger.Logger
	docs      DocumentStore
	mailer    email.Sender
	directory CastDirectory
}

// New creates a new contacts service
func New(repo Store, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) SetDocumentStore(d DocumentStore) { s.docs = d }
func (s *Service) SetMailer(m email.Sender)         { s.mailer = m }
func (s *Service) SetCastDirectory(d CastDirectory) { s.directory = d }

// CreateFromBooking creates the record for a booking once. The existing id is
// returned with created=false when the booking already has one.
func (s *Service) CreateFromBooking(ctx context.Context, in NewContact) (uuid.UUID, bool, error) {
	if id, ok, err := s.repo.FindByBooking(ctx, in.BookingID); err != nil || ok {
		return id, false, err
	}

	c := repository.Contact{
		ID:          uuid.New(),
		BookingID:   in.BookingID,
		CastID:      in.CastID,
		CastName:    in.CastName,
		CastType:    in.CastType,
		AccountName: in.AccountName,
		ProjectName: in.ProjectName,
		RoleName:    in.RoleName,
		Tier:        in.Tier,
		ShootDate:   in.ShootDate,
		ThreadTS:    in.ThreadTS,
		Status:      string(transport.ContactStatusAwaitingSchedule),
	}
	created, err := s.repo.Create(ctx, c)
	if err != nil {
		return uuid.UUID{}, false, err
	}
	if !created {
		id, _, err := s.repo.FindByBooking(ctx, in.BookingID)
		return id, false, err
	}

	s.log.Info("contact record created", "contactId", c.ID, "bookingId", in.BookingID, "castId", in.CastID)
	return c.ID, true, nil
}

// RenameProject follows a booking's project rename.
func (s *Service) RenameProject(ctx context.Context, castID uuid.UUID, oldName, newName string) (int64, error) {
	return s.repo.RenameProject(ctx, castID, oldName, newName)
}

// List returns contact records, optionally filtered by status and project
func (s *Service) List(ctx context.Context, req transport.ListContactsRequest) (transport.ContactListResponse, error) {
	var f repository.Filter
	if req.Status != "" {
		f.Status = &req.Status
	}
	if req.ProjectName != "" {
		f.ProjectName = &req.ProjectName
	}
	contacts, err := s.repo.List(ctx, f)
	if err != nil {
		return transport.ContactListResponse{}, err
	}
	items := make([]transport.ContactResponse, 0, len(contacts))
	for _, c := range contacts {
		items = append(items, toResponse(c))
	}
	return transport.ContactListResponse{Items: items}, nil
}

// StatusCounts returns the number of records in each fulfillment status.
func (s *Service) StatusCounts(ctx context.Context) (map[transport.ContactStatus]int, error) {
	contacts, err := s.repo.List(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}
	counts := make(map[transport.ContactStatus]int, len(statusOrder))
	for _, st := range statusOrder {
		counts[st] = 0
	}
	for _, c := range contacts {
		counts[transport.ContactStatus(c.Status)]++
	}
	return counts, nil
}

// Get returns a contact record by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.ContactResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContactResponse{}, err
	}
	return toResponse(c), nil
}

// Update applies the provided fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateContactRequest) (transport.ContactResponse, error) {
	p := repository.Patch{
		Status:    req.Status,
		InTime:    req.InTime,
		OutTime:   req.OutTime,
		Location:  req.Location,
		Address:   req.Address,
		Fee:       req.Fee,
		MakingURL: req.MakingURL,
	}
	if req.PostDate != nil {
		d, err := time.Parse(dateLayout, *req.PostDate)
		if err != nil {
			return transport.ContactResponse{}, apperr.Validation("postDate must be YYYY-MM-DD")
		}
		p.PostDate = &d
	}
	c, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return transport.ContactResponse{}, err
	}
	return toResponse(c), nil
}

// Advance moves the record to the next fulfillment status.
func (s *Service) Advance(ctx context.Context, id uuid.UUID) (transport.ContactResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContactResponse{}, err
	}
	i := slices.Index(statusOrder, transport.ContactStatus(c.Status))
	if i < 0 || i == len(statusOrder)-1 {
		return transport.ContactResponse{}, apperr.Conflict("contact record is already " + transport.ContactStatus(c.Status).Label())
	}
	next := string(statusOrder[i+1])
	c, err = s.repo.Update(ctx, id, repository.Patch{Status: &next})
	if err != nil {
		return transport.ContactResponse{}, err
	}
	return toResponse(c), nil
}

// UploadOrderDocument stores the purchase-order PDF and links it to the record.
func (s *Service) UploadOrderDocument(ctx context.Context, id uuid.UUID, req transport.UploadDocumentRequest) (transport.DocumentResponse, error) {
	if s.docs == nil {
		return transport.DocumentResponse{}, apperr.PreconditionFailed("object storage is not configured")
	}
	if !bytes.HasPrefix(req.Content, []byte("%PDF")) {
		return transport.DocumentResponse{}, apperr.Validation("order document must be a PDF")
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return transport.DocumentResponse{}, err
	}

	key, err := s.docs.StoreOrderDocument(ctx, req.FileName, req.Content)
	if err != nil {
		return transport.DocumentResponse{}, err
	}
	if err := s.repo.SetOrderDocument(ctx, id, key); err != nil {
		return transport.DocumentResponse{}, err
	}
	return transport.DocumentResponse{Key: key}, nil
}

// SendEmail mails the cast of the record.
func (s *Service) SendEmail(ctx context.Context, id uuid.UUID, req transport.SendEmailRequest) (transport.EmailResponse, error) {
	if s.mailer == nil || s.directory == nil {
		return transport.EmailResponse{}, apperr.PreconditionFailed("email is not configured")
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.EmailResponse{}, err
	}
	to, err := s.directory.CastRecipient(ctx, c.CastID)
	if err != nil {
		return transport.EmailResponse{}, err
	}
	if to.Email == "" {
		return transport.EmailResponse{}, apperr.PreconditionFailed("cast has no email address")
	}

	switch req.Kind {
	case transport.EmailKindScheduleNotice:
		err = s.mailer.SendScheduleNotice(ctx, to, email.ScheduleNotice{
			CastName:    c.CastName,
			AccountName: c.AccountName,
			ProjectName: c.ProjectName,
			RoleName:    c.RoleName,
			ShootDate:   c.ShootDate.Format(dateLayout),
			InTime:      c.InTime,
			OutTime:     c.OutTime,
			Location:    c.Location,
			Address:     c.Address,
		})
	case transport.EmailKindPurchaseOrder:
		po := email.PurchaseOrder{
			CastName:    c.CastName,
			AccountName: c.AccountName,
			ProjectName: c.ProjectName,
			ShootDate:   c.ShootDate.Format(dateLayout),
			Fee:         c.Fee,
		}
		if po.Document, err = s.orderDocument(ctx, c); err != nil {
			return transport.EmailResponse{}, err
		}
		err = s.mailer.SendPurchaseOrder(ctx, to, po)
	default:
		return transport.EmailResponse{}, apperr.Validation("unknown email kind")
	}
	if err != nil {
		return transport.EmailResponse{}, err
	}

	s.log.Info("contact email sent", "contactId", id, "kind", req.Kind)
	return transport.EmailResponse{OK: true, To: to.Email, Kind: req.Kind}, nil
}

func (s *Service) orderDocument(ctx context.Context, c repository.Contact) (*email.Attachment, error) {
	if c.OrderDocumentKey == "" || s.docs == nil {
		return nil, nil
	}
	content, err := s.docs.LoadOrderDocument(ctx, c.OrderDocumentKey)
	if err != nil {
		return nil, err
	}
	return &email.Attachment{
		Content:  content,
		FileName: "発注書_" + c.CastName + ".pdf",
		MIMEType: "application/pdf",
	}, nil
}

func toResponse(c repository.Contact) transport.ContactResponse {
	resp := transport.ContactResponse{
		ID:               c.ID,
		BookingID:        c.BookingID,
		CastID:           c.CastID,
		CastName:         c.CastName,
		AccountName:      c.AccountName,
		ProjectName:      c.ProjectName,
		RoleName:         c.RoleName,
		Tier:             c.Tier,
		ShootDate:        c.ShootDate.Format(dateLayout),
		InTime:           c.InTime,
		OutTime:          c.OutTime,
		Location:         c.Location,
		Address:          c.Address,
		Fee:              c.Fee,
		MakingURL:        c.MakingURL,
		OrderDocumentKey: c.OrderDocumentKey,
		Status:           transport.ContactStatus(c.Status),
		StatusLabel:      transport.ContactStatus(c.Status).Label(),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
	if c.PostDate != nil {
		d := c.PostDate.Format(dateLayout)
		resp.PostDate = &d
	}
	return resp
}
