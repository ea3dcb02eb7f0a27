package services

import (
	"context"
	"sync"
	"time"

	"storefront-chat/internal/domain/presence"
	"storefront-chat/internal/events"
	chat_errors "storefront-chat/pkg/errors"
	"storefront-chat/pkg/logger"
)

// PresenceWriter is the presence document store.
type PresenceWriter interface {
	Set(ctx context.Context, status presence.Status) error
	Heartbeat(ctx context.Context, email string, at time.Time) error
	Get(ctx context.Context, email string) (presence.Status, error)
}

// PresenceConfig mirrors config.PresenceConfig; the window and interval
// are independent tunables with no fixed ratio.
type PresenceConfig struct {
	HeartbeatInterval time.Duration
	StalenessWindow   time.Duration
	ReevalInterval    time.Duration
}

// PresenceTracker maintains each user's online signal via a recurring
// heartbeat and derives liveness from the staleness window. Heartbeat
// timers live in a registry owned by the tracker and are cancelled through
// the handle stored there, one timer per online user.
type PresenceTracker struct {
	store      PresenceWriter
	subscriber EventSubscriber
	cfg        PresenceConfig
	log        *logger.Logger

	mu     sync.Mutex
	timers map[string]*heartbeatHandle
}

type heartbeatHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPresenceTracker(store PresenceWriter, subscriber EventSubscriber, cfg PresenceConfig, log *logger.Logger) *PresenceTracker {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 20 * time.Second
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = 60 * time.Second
	}
	if cfg.ReevalInterval <= 0 {
		cfg.ReevalInterval = 5 * time.Second
	}
	return &PresenceTracker{
		store:      store,
		subscriber: subscriber,
		cfg:        cfg,
		log:        log,
		timers:     make(map[string]*heartbeatHandle),
	}
}

// SetOnline upserts the presence document and starts the heartbeat for
// this session, replacing any heartbeat already running for the email.
func (t *PresenceTracker) SetOnline(ctx context.Context, email, roomID, userAgent string) error {
	if email == "" {
		return chat_errors.ErrInvalidInput
	}

	status := presence.Status{
		Email:        email,
		Online:       true,
		LastSeen:     time.Now().UTC(),
		ActiveInRoom: roomID,
		UserAgent:    userAgent,
	}
	if err := t.store.Set(ctx, status); err != nil {
		return err
	}

	t.startHeartbeat(email)
	return nil
}

// SetOffline cancels the heartbeat, then writes the offline document.
// The write is best-effort: it runs from teardown paths that may not
// complete, which is why observers also age presences out via staleness.
func (t *PresenceTracker) SetOffline(ctx context.Context, email string) error {
	if email == "" {
		return chat_errors.ErrInvalidInput
	}

	t.stopHeartbeat(email)

	return t.store.Set(ctx, presence.Status{
		Email:    email,
		Online:   false,
		LastSeen: time.Now().UTC(),
	})
}

// SubscribePresence streams the derived online boolean for one email.
// Liveness is recomputed on every stored change and on a local ticker, so
// an indicator cannot stick online after the last heartbeat silently
// stopped. Only transitions are emitted after the initial value.
func (t *PresenceTracker) SubscribePresence(ctx context.Context, email string) (<-chan bool, error) {
	if email == "" {
		return nil, chat_errors.ErrInvalidInput
	}

	out := make(chan bool, 1)
	notify := make(chan struct{}, 1)

	go func() {
		channel := events.PresenceChannel(presence.Key(email))
		err := t.subscriber.Subscribe(ctx, []string{channel}, func(_ string, _ []byte) {
			select {
			case notify <- struct{}{}:
			default:
			}
		})
		if err != nil && ctx.Err() == nil {
			t.log.Warnf("presence subscription for %s ended: %v", email, err)
		}
	}()

	go func() {
		defer close(out)

		derive := func() bool {
			status, err := t.store.Get(ctx, email)
			if err != nil {
				if ctx.Err() == nil {
					t.log.Errorf("presence read for %s failed: %v", email, err)
				}
				return false
			}
			return status.Fresh(time.Now(), t.cfg.StalenessWindow)
		}

		last := derive()
		select {
		case out <- last:
		case <-ctx.Done():
			return
		}

		ticker := time.NewTicker(t.cfg.ReevalInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-notify:
			case <-ticker.C:
			}
			if online := derive(); online != last {
				last = online
				select {
				case out <- online:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close tears down every running heartbeat. Used on shutdown.
func (t *PresenceTracker) Close() {
	t.mu.Lock()
	handles := make([]*heartbeatHandle, 0, len(t.timers))
	for email, h := range t.timers {
		handles = append(handles, h)
		delete(t.timers, email)
	}
	t.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		<-h.done
	}
}

func (t *PresenceTracker) startHeartbeat(email string) {
	ctx, cancel := context.WithCancel(context.Background())
	handle := &heartbeatHandle{cancel: cancel, done: make(chan struct{})}

	t.mu.Lock()
	if prev, ok := t.timers[email]; ok {
		prev.cancel()
	}
	t.timers[email] = handle
	t.mu.Unlock()

	go func() {
		defer close(handle.done)
		ticker := time.NewTicker(t.cfg.HeartbeatInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := t.store.Heartbeat(ctx, email, time.Now().UTC()); err != nil {
					if ctx.Err() != nil {
						return
					}
					// A failed beat tears the loop down; the user ages into
					// stale for observers instead of a forced offline write.
					t.log.Warnf("heartbeat for %s failed, stopping: %v", email, err)
					t.removeHandle(email, handle)
					return
				}
			}
		}
	}()
}

func (t *PresenceTracker) stopHeartbeat(email string) {
	t.mu.Lock()
	handle, ok := t.timers[email]
	if ok {
		delete(t.timers, email)
	}
	t.mu.Unlock()

	if ok {
		handle.cancel()
		<-handle.done
	}
}

func (t *PresenceTracker) removeHandle(email string, handle *heartbeatHandle) {
	t.mu.Lock()
	if current, ok := t.timers[email]; ok && current == handle {
		delete(t.timers, email)
	}
	t.mu.Unlock()
}

// HeartbeatCount reports how many heartbeats are currently running.
func (t *PresenceTracker) HeartbeatCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.timers)
}
