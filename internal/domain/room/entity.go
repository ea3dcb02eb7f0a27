package room

import (
	"time"

	"github.com/google/uuid"
)

// Room represents the chat_rooms table. One room exists per
// (customer_email, company_email) pair; uniqueness is enforced by a
// lookup-before-create protocol, not a constraint, so a concurrent first
// contact can in theory create a duplicate.
type Room struct {
	ID            uuid.UUID `json:"id"`
	CustomerEmail string    `json:"customer_email" gorm:"index:idx_rooms_pair"`
	CustomerName  string    `json:"customer_name"`
	CompanyEmail  string    `json:"company_email" gorm:"index:idx_rooms_pair"`
	Participants  []string  `json:"participants" gorm:"serializer:json"`
	CreatedAt     time.Time `json:"created_at"`
	LastActivity  time.Time `json:"last_activity" gorm:"index"`

	// Denormalized preview of the most recent message.
	LastMessage *Preview `json:"last_message,omitempty" gorm:"embedded;embeddedPrefix:last_message_"`
}

// Preview is the denormalized last-message summary shown in room lists.
type Preview struct {
	Content    string    `json:"content"`
	SenderID   string    `json:"sender_id"`
	SenderType string    `json:"sender_type"`
	Timestamp  time.Time `json:"timestamp"`
}

func (Room) TableName() string {
	return "chat_rooms"
}
