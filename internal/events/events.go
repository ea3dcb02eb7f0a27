package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event type constants, format: domain.action
const (
	EventTypeMessageCreated  = "message.created"
	EventTypeMessageRead     = "message.read"
	EventTypeRoomCreated     = "room.created"
	EventTypeRoomUpdated     = "room.updated"
	EventTypePresenceChanged = "presence.changed"
)

// Envelope is the wire form of every change event published to redis.
// Subscribers treat any envelope on a channel as "re-query and re-emit";
// the payload is diagnostic, not authoritative.
type Envelope struct {
	EventType     string          `json:"event_type"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Payload       json.RawMessage `json:"payload"`
}

func NewEnvelope(eventType, aggregateType, aggregateID string, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventType:     eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		OccurredAt:    time.Now().UTC(),
		Payload:       data,
	}, nil
}

// Channel naming. One channel per room message log, one per company room
// list, one per presence key.
func RoomMessagesChannel(roomID string) string {
	return fmt.Sprintf("channel:room:%s:messages", roomID)
}

func CompanyRoomsChannel(companyEmail string) string {
	return fmt.Sprintf("channel:company:%s:rooms", companyEmail)
}

func PresenceChannel(presenceKey string) string {
	return fmt.Sprintf("channel:presence:%s", presenceKey)
}
