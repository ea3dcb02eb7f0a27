package redis

import (
	"context"
	"encoding/json"
	"time"

	"storefront-chat/internal/domain/presence"
	"storefront-chat/internal/events"
	chat_errors "storefront-chat/pkg/errors"

	goredis "github.com/redis/go-redis/v9"
)

const (
	presenceKeyPrefix = "presence:"
	// Offline documents are kept around for last-seen queries.
	presenceDocTTL = 24 * time.Hour
)

// PresenceStore persists presence documents in redis, keyed by the
// reversible email encoding, and publishes a change event on every write so
// subscribers can re-derive liveness. Concurrent writers for the same email
// (multiple tabs) are tolerated: last write wins on last_seen.
type PresenceStore struct {
	client    *goredis.Client
	publisher *Publisher
}

func NewPresenceStore(client *goredis.Client, publisher *Publisher) *PresenceStore {
	return &PresenceStore{client: client, publisher: publisher}
}

// Set overwrites the presence document for status.Email.
func (p *PresenceStore) Set(ctx context.Context, status presence.Status) error {
	key := presenceKeyPrefix + presence.Key(status.Email)
	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := p.client.Set(ctx, key, data, presenceDocTTL).Err(); err != nil {
		return err
	}
	return p.publishChange(ctx, status)
}

// Heartbeat re-stamps last_seen on the existing document. A heartbeat for
// an absent document recreates it online, matching the upsert semantics of
// going online.
func (p *PresenceStore) Heartbeat(ctx context.Context, email string, at time.Time) error {
	key := presenceKeyPrefix + presence.Key(email)
	existing, err := p.client.Get(ctx, key).Result()
	if err != nil && err != goredis.Nil {
		return err
	}

	status := presence.Status{Email: email, Online: true}
	if existing != "" {
		if err := json.Unmarshal([]byte(existing), &status); err != nil {
			return err
		}
	}
	status.LastSeen = at

	data, err := json.Marshal(status)
	if err != nil {
		return err
	}
	if err := p.client.Set(ctx, key, data, presenceDocTTL).Err(); err != nil {
		return err
	}
	return p.publishChange(ctx, status)
}

// Get returns the presence document for an email. A missing document reads
// as offline with a zero last_seen, never as an error.
func (p *PresenceStore) Get(ctx context.Context, email string) (presence.Status, error) {
	key := presenceKeyPrefix + presence.Key(email)
	data, err := p.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return presence.Status{Email: email, Online: false}, nil
	}
	if err != nil {
		return presence.Status{}, err
	}

	var status presence.Status
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return presence.Status{}, err
	}
	return status, nil
}

func (p *PresenceStore) publishChange(ctx context.Context, status presence.Status) error {
	if p.publisher == nil {
		return nil
	}
	env, err := events.NewEnvelope(events.EventTypePresenceChanged, "presence", status.Email, status)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := p.publisher.Publish(ctx, events.PresenceChannel(presence.Key(status.Email)), data); err != nil {
		return chat_errors.ErrServiceUnavailable
	}
	return nil
}
