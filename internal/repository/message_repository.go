package repository

import (
	"context"
	"errors"
	"time"

	"storefront-chat/internal/domain/message"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

// Create appends a message to the room's log. The id and timestamp are
// assigned here from the server clock, never taken from the caller, so all
// consumers observe one total order per room regardless of client skew.
func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	m.ID = uuid.New()
	m.CreatedAt = time.Now().UTC()
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetRoomMessages(ctx context.Context, roomID uuid.UUID) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead flips read=true for exactly the given ids in one statement.
// Callers must skip the call for an empty id list; an empty list here is an
// input error, not a no-op batch.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, roomID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, chat_errors.ErrInvalidInput
	}
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("room_id = ? AND id IN ?", roomID, ids).
		Update("read", true)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *PostgresMessageRepository) SetNotificationSent(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ?", id).
		Update("email_notification_sent", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) CountUnread(ctx context.Context, roomID uuid.UUID, senderType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("room_id = ? AND sender_type = ? AND read = ?", roomID, senderType, false).
		Count(&count).Error
	return count, err
}
