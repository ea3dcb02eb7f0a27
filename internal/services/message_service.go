package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"storefront-chat/internal/domain/message"
	"storefront-chat/internal/domain/room"
	"storefront-chat/internal/events"
	"storefront-chat/internal/repository"
	chat_errors "storefront-chat/pkg/errors"
	"storefront-chat/pkg/logger"

	"github.com/google/uuid"
)

const notifyTimeout = 10 * time.Second

// Sender identifies who is writing into a room.
type Sender struct {
	Email   string
	Name    string
	IsAdmin bool
}

func (s Sender) senderType() string {
	if s.IsAdmin {
		return message.SenderAdmin
	}
	return message.SenderCustomer
}

// Notifier hands a persisted message to the outbound email gateway.
type Notifier interface {
	Notify(ctx context.Context, msg message.Message, rm room.Room, recipient string) error
}

// FileUploader resolves an incoming file to a durable FileData descriptor.
type FileUploader interface {
	Upload(ctx context.Context, in FileUpload) (message.FileData, error)
}

// FileUpload is an incoming attachment before it reaches blob storage.
type FileUpload struct {
	FileName    string
	FileSize    int64
	ContentType string
	Body        []byte
}

// MessageService owns the ordered message log of each room: appends,
// the live log subscription, and batched read-state updates.
type MessageService struct {
	messages   repository.MessageRepository
	roomSvc    *RoomService
	uploader   FileUploader
	notifier   Notifier
	publisher  EventPublisher
	subscriber EventSubscriber
	log        *logger.Logger
	maxLen     int
}

func NewMessageService(
	messages repository.MessageRepository,
	roomSvc *RoomService,
	uploader FileUploader,
	notifier Notifier,
	publisher EventPublisher,
	subscriber EventSubscriber,
	log *logger.Logger,
	maxMessageLength int,
) *MessageService {
	if maxMessageLength <= 0 {
		maxMessageLength = 2000
	}
	return &MessageService{
		messages:   messages,
		roomSvc:    roomSvc,
		uploader:   uploader,
		notifier:   notifier,
		publisher:  publisher,
		subscriber: subscriber,
		log:        log,
		maxLen:     maxMessageLength,
	}
}

// SendMessage appends a plain text message. Content is trimmed, then
// validated against the configured maximum before any write.
func (s *MessageService) SendMessage(ctx context.Context, roomID uuid.UUID, content string, from Sender) (message.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return message.Message{}, chat_errors.ErrInvalidInput
	}
	if utf8.RuneCountInString(content) > s.maxLen {
		return message.Message{}, chat_errors.ErrMessageTooLong
	}

	rm, err := s.roomSvc.GetRoom(ctx, roomID)
	if err != nil {
		return message.Message{}, err
	}

	msg := s.newMessage(rm, content, message.TypeMessage, from)
	return s.append(ctx, rm, msg)
}

// SendFileMessage uploads the attachment first; the message is only
// appended once a provider has produced a durable URL. A pipeline failure
// surfaces as ErrUploadFailed with no partial state.
func (s *MessageService) SendFileMessage(ctx context.Context, roomID uuid.UUID, file FileUpload, from Sender) (message.Message, error) {
	rm, err := s.roomSvc.GetRoom(ctx, roomID)
	if err != nil {
		return message.Message{}, err
	}

	fileData, err := s.uploader.Upload(ctx, file)
	if err != nil {
		return message.Message{}, err
	}

	msg := s.newMessage(rm, fileLabel(fileData.FileName), message.TypeFile, from)
	msg.FileData = &fileData
	return s.append(ctx, rm, msg)
}

// AddEnquiryMessage appends a product enquiry with a human-readable
// summary as content and the payload stored verbatim.
func (s *MessageService) AddEnquiryMessage(ctx context.Context, roomID uuid.UUID, enquiry message.EnquiryData, from Sender) (message.Message, error) {
	if len(enquiry.Products) == 0 {
		return message.Message{}, chat_errors.ErrInvalidInput
	}

	rm, err := s.roomSvc.GetRoom(ctx, roomID)
	if err != nil {
		return message.Message{}, err
	}

	msg := s.newMessage(rm, enquirySummary(enquiry), message.TypeEnquiry, from)
	msg.EnquiryData = &enquiry
	return s.append(ctx, rm, msg)
}

// SubscribeMessages streams the full, ascending message log of a room.
// Every emission is the complete current log, re-queried on each change
// event. Query errors degrade to an empty emission.
func (s *MessageService) SubscribeMessages(ctx context.Context, roomID uuid.UUID) (<-chan []message.Message, error) {
	if roomID == uuid.Nil {
		return nil, chat_errors.ErrInvalidInput
	}

	out := make(chan []message.Message, 1)
	notify := make(chan struct{}, 1)

	go func() {
		err := s.subscriber.Subscribe(ctx, []string{events.RoomMessagesChannel(roomID.String())}, func(channel string, payload []byte) {
			select {
			case notify <- struct{}{}:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			s.log.Warnf("message subscription for room %s ended: %v", roomID, err)
		}
	}()

	go func() {
		defer close(out)
		emit := func() {
			msgs, err := s.messages.GetRoomMessages(ctx, roomID)
			if err != nil {
				s.log.Errorf("message query for room %s failed: %v", roomID, err)
				msgs = []message.Message{}
			}
			select {
			case out <- msgs:
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

// MarkMessagesAsRead sets read=true for exactly the given ids in one
// atomic batch. An empty id list skips the write entirely.
func (s *MessageService) MarkMessagesAsRead(ctx context.Context, roomID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.messages.MarkRead(ctx, roomID, ids); err != nil {
		return err
	}
	s.publishLogChange(ctx, events.EventTypeMessageRead, roomID, map[string]int{"count": len(ids)})
	return nil
}

// UnreadCount reports how many messages from the other party the caller
// has not read yet.
func (s *MessageService) UnreadCount(ctx context.Context, roomID uuid.UUID, viewer Sender) (int64, error) {
	otherParty := message.SenderAdmin
	if viewer.IsAdmin {
		otherParty = message.SenderCustomer
	}
	return s.messages.CountUnread(ctx, roomID, otherParty)
}

func (s *MessageService) newMessage(rm room.Room, content, msgType string, from Sender) message.Message {
	return message.Message{
		RoomID:      rm.ID,
		Content:     content,
		SenderID:    from.Email,
		SenderEmail: from.Email,
		SenderName:  from.Name,
		SenderType:  from.senderType(),
		Type:        msgType,
	}
}

// append persists the message and runs the post-append side effects:
// room summary refresh (logged, swallowed), change event, then the
// best-effort notification.
func (s *MessageService) append(ctx context.Context, rm room.Room, msg message.Message) (message.Message, error) {
	if err := s.messages.Create(ctx, &msg); err != nil {
		return message.Message{}, err
	}

	if err := s.roomSvc.UpdateLastActivity(ctx, rm, msg); err != nil {
		s.log.Errorf("update room %s activity after message %s: %v", rm.ID, msg.ID, err)
	}

	s.publishLogChange(ctx, events.EventTypeMessageCreated, rm.ID, msg)
	s.dispatchNotification(msg, rm)

	return msg, nil
}

// dispatchNotification notifies the other party off the send path. Failure
// is logged, never surfaced, never retried here.
func (s *MessageService) dispatchNotification(msg message.Message, rm room.Room) {
	if s.notifier == nil {
		return
	}

	recipient := rm.CompanyEmail
	if msg.SenderType == message.SenderAdmin {
		recipient = rm.CustomerEmail
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if err := s.notifier.Notify(ctx, msg, rm, recipient); err != nil {
			s.log.Errorf("notify %s about message %s: %v", recipient, msg.ID, err)
			return
		}
		if err := s.messages.SetNotificationSent(ctx, msg.ID); err != nil {
			s.log.Errorf("flag notification sent for message %s: %v", msg.ID, err)
		}
	}()
}

func (s *MessageService) publishLogChange(ctx context.Context, eventType string, roomID uuid.UUID, payload interface{}) {
	if s.publisher == nil {
		return
	}
	env, err := events.NewEnvelope(eventType, "message", roomID.String(), payload)
	if err != nil {
		s.log.Errorf("encode message event: %v", err)
		return
	}
	data, _ := json.Marshal(env)
	if err := s.publisher.Publish(ctx, events.RoomMessagesChannel(roomID.String()), data); err != nil {
		s.log.Errorf("publish message event for room %s: %v", roomID, err)
	}
}

func fileLabel(fileName string) string {
	return "📎 " + fileName
}

// enquirySummary renders the numbered product list the chat UI shows as
// the enquiry message body.
func enquirySummary(enq message.EnquiryData) string {
	var b strings.Builder
	b.WriteString("Product enquiry:\n")
	for i, p := range enq.Products {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		if p.Notes != "" {
			fmt.Fprintf(&b, " (%s)", p.Notes)
		}
		b.WriteByte('\n')
	}
	if enq.GeneralMessage != "" {
		b.WriteByte('\n')
		b.WriteString(enq.GeneralMessage)
	}
	return strings.TrimRight(b.String(), "\n")
}
