package transport

import (
	"time"

	"github.com/google/uuid"
)

// ContactStatus is the fulfillment stage of an external engagement
type ContactStatus string

const (
	ContactStatusAwaitingSchedule      ContactStatus = "awaiting_schedule"
	ContactStatusAwaitingPurchaseOrder ContactStatus = "awaiting_purchase_order"
	ContactStatusAwaitingMakingShare   ContactStatus = "awaiting_making_share"
	ContactStatusAwaitingPostDate      ContactStatus = "awaiting_post_date"
	ContactStatusCompleted             ContactStatus = "completed"
)

var contactStatusLabels = map[ContactStatus]string{
	ContactStatusAwaitingSchedule:      "香盤連絡待ち",
	ContactStatusAwaitingPurchaseOrder: "発注書送信待ち",
	ContactStatusAwaitingMakingShare:   "メイキング共有待ち",
	ContactStatusAwaitingPostDate:      "投稿日連絡待ち",
	ContactStatusCompleted:             "完了",
}

// Label returns the display name of the status.
func (s ContactStatus) Label() string {
	if l, ok := contactStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// EmailKind selects the mail sent to the cast of a contact record
type EmailKind string

const (
	EmailKindScheduleNotice EmailKind = "schedule_notice"
	EmailKindPurchaseOrder  EmailKind = "purchase_order"
)

// ListContactsRequest filters the contact list
type ListContactsRequest struct {
	Status      string `form:"status" validate:"omitempty,oneof=awaiting_schedule awaiting_purchase_order awaiting_making_share awaiting_post_date completed"`
	ProjectName string `form:"projectName" validate:"max=300"`
}

// UpdateContactRequest is a partial update; nil fields stay unchanged
type UpdateContactRequest struct {
	Status    *string `json:"status,omitempty" validate:"omitempty,oneof=awaiting_schedule awaiting_purchase_order awaiting_making_share awaiting_post_date completed"`
	InTime    *string `json:"inTime,omitempty" validate:"omitempty,hhmm"`
	OutTime   *string `json:"outTime,omitempty" validate:"omitempty,hhmm"`
	Location  *string `json:"location,omitempty" validate:"omitempty,max=300"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=500"`
	Fee       *int64  `json:"fee,omitempty" validate:"omitempty,min=0"`
	MakingURL *string `json:"makingUrl,omitempty" validate:"omitempty,url,max=1000"`
	PostDate  *string `json:"postDate,omitempty" validate:"omitempty,isodate"`
}

// UploadDocumentRequest carries the purchase-order PDF. Content is base64 in JSON.
type UploadDocumentRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
	Content  []byte `json:"content" validate:"required"`
}

// SendEmailRequest selects the mail to send
type SendEmailRequest struct {
	Kind EmailKind `json:"kind" validate:"required,oneof=schedule_notice purchase_order"`
}

// ContactResponse is a contact record as returned by the API
type ContactResponse struct {
	ID               uuid.UUID     `json:"id"`
	BookingID        uuid.UUID     `json:"bookingId"`
	CastID           uuid.UUID     `json:"castId"`
	CastName         string        `json:"castName"`
	AccountName      string        `json:"accountName"`
	ProjectName      string        `json:"projectName"`
	RoleName         string        `json:"roleName"`
	Tier             string        `json:"mainSub"`
	ShootDate        string        `json:"shootDate"`
	InTime           string        `json:"inTime"`
	OutTime          string        `json:"outTime"`
	Location         string        `json:"location"`
	Address          string        `json:"address"`
	Fee              *int64        `json:"fee,omitempty"`
	MakingURL        string        `json:"makingUrl"`
	PostDate         *string       `json:"postDate,omitempty"`
	OrderDocumentKey string        `json:"orderDocumentKey,omitempty"`
	Status           ContactStatus `json:"status"`
	StatusLabel      string        `json:"statusLabel"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// ContactListResponse wraps the contact list
type ContactListResponse struct {
	Items []ContactResponse `json:"items"`
}

// DocumentResponse reports the stored order document
type DocumentResponse struct {
	Key string `json:"key"`
}

// EmailResponse reports a sent mail
type EmailResponse struct {
	OK   bool      `json:"ok"`
	To   string    `json:"to"`
	Kind EmailKind `json:"kind"`
}
