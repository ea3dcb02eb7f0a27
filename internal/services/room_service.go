package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"storefront-chat/internal/domain/message"
	"storefront-chat/internal/domain/room"
	"storefront-chat/internal/events"
	"storefront-chat/internal/repository"
	chat_errors "storefront-chat/pkg/errors"
	"storefront-chat/pkg/logger"

	"github.com/google/uuid"
)

// EventPublisher publishes raw change events to a channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// EventSubscriber blocks delivering channel messages to handler until the
// context is cancelled or the connection drops.
type EventSubscriber interface {
	Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error
}

// RoomService is the chat room registry: one room per
// (customer, company) pair, room-level summary state, and the live rooms
// feed for the admin dashboard.
type RoomService struct {
	rooms      repository.RoomRepository
	publisher  EventPublisher
	subscriber EventSubscriber
	log        *logger.Logger
}

func NewRoomService(rooms repository.RoomRepository, publisher EventPublisher, subscriber EventSubscriber, log *logger.Logger) *RoomService {
	return &RoomService{rooms: rooms, publisher: publisher, subscriber: subscriber, log: log}
}

// CreateOrGetRoom returns the existing room for the pair or creates one.
// This is a read-then-write sequence, not a transaction: two concurrent
// first-contact requests can create duplicate rooms. FindByPair orders by
// created_at so later calls converge on the oldest room.
func (s *RoomService) CreateOrGetRoom(ctx context.Context, customerEmail, customerName, companyEmail string) (room.Room, error) {
	if customerEmail == "" || companyEmail == "" {
		return room.Room{}, chat_errors.ErrInvalidInput
	}

	existing, err := s.rooms.FindByPair(ctx, customerEmail, companyEmail)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, chat_errors.ErrNotFound) {
		return room.Room{}, err
	}

	now := time.Now().UTC()
	rm := room.Room{
		ID:            uuid.New(),
		CustomerEmail: customerEmail,
		CustomerName:  customerName,
		CompanyEmail:  companyEmail,
		Participants:  []string{customerEmail, companyEmail},
		CreatedAt:     now,
		LastActivity:  now,
	}
	if err := s.rooms.Create(ctx, &rm); err != nil {
		return room.Room{}, err
	}

	s.publishRoomEvent(ctx, events.EventTypeRoomCreated, rm)
	return rm, nil
}

func (s *RoomService) GetRoom(ctx context.Context, roomID uuid.UUID) (room.Room, error) {
	return s.rooms.GetByID(ctx, roomID)
}

// UpdateLastActivity refreshes the room's activity timestamp and message
// preview after an append. Callers treat failure as a logged, swallowed
// side effect; it never fails the send that triggered it.
func (s *RoomService) UpdateLastActivity(ctx context.Context, rm room.Room, msg message.Message) error {
	now := time.Now().UTC()
	preview := room.Preview{
		Content:    msg.Content,
		SenderID:   msg.SenderID,
		SenderType: msg.SenderType,
		Timestamp:  now,
	}
	if err := s.rooms.UpdateActivity(ctx, rm.ID, now, preview); err != nil {
		return err
	}
	s.publishRoomEvent(ctx, events.EventTypeRoomUpdated, rm)
	return nil
}

// SubscribeRoomsForCompany streams the company's rooms ordered by
// last_activity descending. Every emission is the full current list. Query
// errors degrade to an empty list; the stream only ends with the context.
func (s *RoomService) SubscribeRoomsForCompany(ctx context.Context, companyEmail string) (<-chan []room.Room, error) {
	if companyEmail == "" {
		return nil, chat_errors.ErrInvalidInput
	}

	out := make(chan []room.Room, 1)
	notify := make(chan struct{}, 1)

	go func() {
		err := s.subscriber.Subscribe(ctx, []string{events.CompanyRoomsChannel(companyEmail)}, func(channel string, payload []byte) {
			select {
			case notify <- struct{}{}:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			s.log.Warnf("rooms subscription for %s ended: %v", companyEmail, err)
		}
	}()

	go func() {
		defer close(out)
		emit := func() {
			rooms, err := s.rooms.ListByCompany(ctx, companyEmail)
			if err != nil {
				// Degraded mode: the feed stays alive and shows nothing
				// rather than tearing down the dashboard.
				s.log.Errorf("rooms query for %s failed: %v", companyEmail, err)
				rooms = []room.Room{}
			}
			select {
			case out <- rooms:
			case <-ctx.Done():
			}
		}

		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
				emit()
			}
		}
	}()

	return out, nil
}

func (s *RoomService) publishRoomEvent(ctx context.Context, eventType string, rm room.Room) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, "room", rm.ID.String(), rm)
	if err != nil {
		s.log.Errorf("encode room event: %v", err)
		return
	}
	data, _ := json.Marshal(env)
	if err := s.publisher.Publish(ctx, events.CompanyRoomsChannel(rm.CompanyEmail), data); err != nil {
		s.log.Errorf("publish room event for %s: %v", rm.ID, err)
	}
}
