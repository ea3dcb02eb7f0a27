package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"storefront-chat/internal/domain/message"
	"storefront-chat/internal/domain/room"
)

type RoomRepository interface {
	Create(ctx context.Context, r *room.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (room.Room, error)
	FindByPair(ctx context.Context, customerEmail, companyEmail string) (room.Room, error)
	UpdateActivity(ctx context.Context, roomID uuid.UUID, at time.Time, preview room.Preview) error
	ListByCompany(ctx context.Context, companyEmail string) ([]room.Room, error)
}

type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetRoomMessages(ctx context.Context, roomID uuid.UUID) ([]message.Message, error)
	MarkRead(ctx context.Context, roomID uuid.UUID, ids []uuid.UUID) (int64, error)
	SetNotificationSent(ctx context.Context, id uuid.UUID) error
	CountUnread(ctx context.Context, roomID uuid.UUID, senderType string) (int64, error)
}

// Migrate applies the schema for all chat tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&room.Room{},
		&message.Message{},
	)
}
