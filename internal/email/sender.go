package email

import (
	"context"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte
	FileName string
	MIMEType string
}

// Recipient is the addressee of a casting mail.
type Recipient struct {
	Name  string
	Email string
}

// ScheduleNotice tells an external cast the confirmed shoot logistics (香盤連絡).
type ScheduleNotice struct {
	CastName    string
	AccountName string
	ProjectName string
	RoleName    string
	ShootDate   string
	InTime      string
	OutTime     string
	Location    string
	Address     string
}

// PurchaseOrder sends the order document for a confirmed engagement (発注書送付).
type PurchaseOrder struct {
	CastName    string
	AccountName string
	ProjectName string
	ShootDate   string
	Fee         *int64
	Document    *Attachment
}

// AvailabilityInquiry asks a cast whether they can take the listed dates (出演可否確認).
type AvailabilityInquiry struct {
	CastName    string
	AccountName string
	ProjectName string
	RoleName    string
	Dates       []string
	StartTime   string
	EndTime     string
}

type Sender interface {
	SendScheduleNotice(ctx context.Context, to Recipient, n ScheduleNotice) error
	SendPurchaseOrder(ctx context.Context, to Recipient, po PurchaseOrder) error
	SendAvailabilityInquiry(ctx context.Context, to Recipient, q AvailabilityInquiry) error
}

type NoopSender struct{}

func (NoopSender) SendScheduleNotice(ctx context.Context, to Recipient, n ScheduleNotice) error {
	return nil
}

func (NoopSender) SendPurchaseOrder(ctx context.Context, to Recipient, po PurchaseOrder) error {
	return nil
}

func (NoopSender) SendAvailabilityInquiry(ctx context.Context, to Recipient, q AvailabilityInquiry) error {
	return nil
}

var (
	_ Sender = NoopSender{}
	_ Sender = (*SMTPSender)(nil)
)
