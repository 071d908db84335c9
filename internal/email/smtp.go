package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"casting_ops_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSender returns an SMTPSender when SMTP is configured and a NoopSender otherwise.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.IsEmailEnabled() {
		return NoopSender{}
	}
	return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) message(to Recipient, subject, htmlContent string, attachments ...Attachment) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return nil, fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.AddToFormat(to.Name, to.Email); err != nil {
		return nil, fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}
	return msg, nil
}

func (s *SMTPSender) send(ctx context.Context, to Recipient, subject, htmlContent string, attachments ...Attachment) error {
	msg, err := s.message(to, subject, htmlContent, attachments...)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(s.port),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15 * time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	}
	if s.username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.username),
			gomail.WithPassword(s.password),
		)
	}

	client, err := gomail.NewClient(s.host, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendScheduleNotice(ctx context.Context, to Recipient, n ScheduleNotice) error {
	content, err := renderEmailTemplate("schedule_notice.html", scheduleNoticeEmailData{
		baseEmailData:  baseEmailData{Title: "香盤連絡", Heading: "香盤のご連絡", Recipient: to.Name},
		ScheduleNotice: n,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, fmt.Sprintf(subjectScheduleNoticeFmt, n.ShootDate, n.ProjectName), content)
}

func (s *SMTPSender) SendPurchaseOrder(ctx context.Context, to Recipient, po PurchaseOrder) error {
	data := purchaseOrderEmailData{
		baseEmailData:  baseEmailData{Title: "発注書送付", Heading: "発注書のご送付", Recipient: to.Name},
		PurchaseOrder:  po,
		HasAttachments: po.Document != nil,
	}
	if po.Fee != nil {
		data.FeeFormatted = formatYen(*po.Fee)
	}
	content, err := renderEmailTemplate("purchase_order.html", data)
	if err != nil {
		return err
	}

	var attachments []Attachment
	if po.Document != nil {
		attachments = append(attachments, *po.Document)
	}
	return s.send(ctx, to, fmt.Sprintf(subjectPurchaseOrderFmt, po.ShootDate, po.ProjectName), content, attachments...)
}

func (s *SMTPSender) SendAvailabilityInquiry(ctx context.Context, to Recipient, q AvailabilityInquiry) error {
	content, err := renderEmailTemplate("availability_inquiry.html", availabilityInquiryEmailData{
		baseEmailData:       baseEmailData{Title: "出演可否確認", Heading: "ご出演可否のご確認", Recipient: to.Name},
		AvailabilityInquiry: q,
		TimeRange:           timeRange(q.StartTime, q.EndTime),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, fmt.Sprintf(subjectAvailabilityInquiryFmt, q.ProjectName), content)
}

func timeRange(start, end string) string {
	var parts []string
	for _, t := range []string{start, end} {
		if t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ~ ")
}
