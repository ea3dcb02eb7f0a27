package message

import (
	"time"

	"github.com/google/uuid"
)

// Sender types
const (
	SenderCustomer = "customer"
	SenderAdmin    = "admin"
)

// Message types
const (
	TypeMessage = "message"
	TypeEnquiry = "enquiry"
	TypeSystem  = "system"
	TypeFile    = "file"
)

// Message represents the messages table. CreatedAt is assigned by the
// store at insert time; ordering within a room is (created_at, id)
// ascending. Exactly one of EnquiryData/FileData is set depending on Type;
// plain messages carry neither. Only Read and EmailNotificationSent are
// mutable after insert.
type Message struct {
	ID                    uuid.UUID    `json:"id"`
	RoomID                uuid.UUID    `json:"room_id" gorm:"index"`
	Content               string       `json:"content"`
	SenderID              string       `json:"sender_id"`
	SenderEmail           string       `json:"sender_email"`
	SenderName            string       `json:"sender_name"`
	SenderType            string       `json:"sender_type"`
	Type                  string       `json:"message_type" gorm:"column:message_type"`
	CreatedAt             time.Time    `json:"timestamp" gorm:"index"`
	Read                  bool         `json:"read"`
	EmailNotificationSent bool         `json:"email_notification_sent"`
	EnquiryData           *EnquiryData `json:"enquiry_data,omitempty" gorm:"serializer:json"`
	FileData              *FileData    `json:"file_data,omitempty" gorm:"serializer:json"`
}

// EnquiryData is the structured product-enquiry payload, stored verbatim.
type EnquiryData struct {
	Products       []EnquiryProduct `json:"products"`
	GeneralMessage string           `json:"general_message,omitempty"`
	ContactDetails string           `json:"contact_details,omitempty"`
}

type EnquiryProduct struct {
	Name         string `json:"name"`
	CategorySlug string `json:"category_slug"`
	ProductSlug  string `json:"product_slug"`
	Notes        string `json:"notes,omitempty"`
}

// FileData describes a stored attachment. ThumbnailURL mirrors FileURL for
// image MIME types; there is no separate resize step.
type FileData struct {
	FileName     string `json:"file_name"`
	FileSize     int64  `json:"file_size"`
	FileType     string `json:"file_type"`
	FileURL      string `json:"file_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func (Message) TableName() string {
	return "messages"
}
