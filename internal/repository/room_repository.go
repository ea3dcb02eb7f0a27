package repository

import (
	"context"
	"errors"
	"time"

	"storefront-chat/internal/domain/room"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &PostgresRoomRepository{db: db}
}

func (r *PostgresRoomRepository) Create(ctx context.Context, rm *room.Room) error {
	if rm.ID == uuid.Nil {
		rm.ID = uuid.New()
	}
	res := r.db.WithContext(ctx).Create(rm)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chat_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresRoomRepository) GetByID(ctx context.Context, id uuid.UUID) (room.Room, error) {
	var rm room.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&rm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room.Room{}, chat_errors.ErrNotFound
		}
		return room.Room{}, err
	}
	return rm, nil
}

func (r *PostgresRoomRepository) FindByPair(ctx context.Context, customerEmail, companyEmail string) (room.Room, error) {
	var rm room.Room
	err := r.db.WithContext(ctx).
		Where("customer_email = ? AND company_email = ?", customerEmail, companyEmail).
		Order("created_at ASC").
		First(&rm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room.Room{}, chat_errors.ErrNotFound
		}
		return room.Room{}, err
	}
	return rm, nil
}

func (r *PostgresRoomRepository) UpdateActivity(ctx context.Context, roomID uuid.UUID, at time.Time, preview room.Preview) error {
	res := r.db.WithContext(ctx).
		Model(&room.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"last_activity":            at,
			"last_message_content":     preview.Content,
			"last_message_sender_id":   preview.SenderID,
			"last_message_sender_type": preview.SenderType,
			"last_message_timestamp":   preview.Timestamp,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chat_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresRoomRepository) ListByCompany(ctx context.Context, companyEmail string) ([]room.Room, error) {
	var rooms []room.Room
	err := r.db.WithContext(ctx).
		Where("company_email = ?", companyEmail).
		Order("last_activity DESC").
		Find(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}
