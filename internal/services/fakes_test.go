package services

import (
	"context"
	"sync"
	"time"

	"storefront-chat/internal/domain/message"
	"storefront-chat/internal/domain/presence"
	"storefront-chat/internal/domain/room"
	chat_errors "storefront-chat/pkg/errors"

	"github.com/google/uuid"
)

// fakeBus is an in-memory stand-in for the redis pub/sub pair.
type fakeBus struct {
	mu       sync.Mutex
	handlers map[string][]func(channel string, payload []byte)
}

func newFakeBus() *fakeBus {
	return &fakeBus{handlers: make(map[string][]func(string, []byte))}
}

func (b *fakeBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	handlers := append([]func(string, []byte){}, b.handlers[channel]...)
	b.mu.Unlock()
	for _, h := range handlers {
		h(channel, payload)
	}
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channels []string, handler func(channel string, payload []byte)) error {
	b.mu.Lock()
	for _, ch := range channels {
		b.handlers[ch] = append(b.handlers[ch], handler)
	}
	b.mu.Unlock()
	<-ctx.Done()
	return ctx.Err()
}

// fakeRoomRepo implements repository.RoomRepository in memory.
type fakeRoomRepo struct {
	mu      sync.Mutex
	rooms   map[uuid.UUID]room.Room
	listErr error
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]room.Room)}
}

func (r *fakeRoomRepo) Create(ctx context.Context, rm *room.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm.ID == uuid.Nil {
		rm.ID = uuid.New()
	}
	r.rooms[rm.ID] = *rm
	return nil
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id uuid.UUID) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[id]
	if !ok {
		return room.Room{}, chat_errors.ErrNotFound
	}
	return rm, nil
}

func (r *fakeRoomRepo) FindByPair(ctx context.Context, customerEmail, companyEmail string) (room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *room.Room
	for _, rm := range r.rooms {
		rm := rm
		if rm.CustomerEmail == customerEmail && rm.CompanyEmail == companyEmail {
			if found == nil || rm.CreatedAt.Before(found.CreatedAt) {
				found = &rm
			}
		}
	}
	if found == nil {
		return room.Room{}, chat_errors.ErrNotFound
	}
	return *found, nil
}

func (r *fakeRoomRepo) UpdateActivity(ctx context.Context, roomID uuid.UUID, at time.Time, preview room.Preview) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return chat_errors.ErrNotFound
	}
	rm.LastActivity = at
	rm.LastMessage = &preview
	r.rooms[roomID] = rm
	return nil
}

func (r *fakeRoomRepo) ListByCompany(ctx context.Context, companyEmail string) ([]room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []room.Room
	for _, rm := range r.rooms {
		if rm.CompanyEmail == companyEmail {
			out = append(out, rm)
		}
	}
	// last_activity descending, the repository's contract
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].LastActivity.After(out[i].LastActivity) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// fakeMessageRepo implements repository.MessageRepository and counts
// writes so tests can assert on skipped batches.
type fakeMessageRepo struct {
	mu         sync.Mutex
	messages   []message.Message
	writeCount int
	seq        int64
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = uuid.New()
	m.CreatedAt = time.Unix(0, r.seq)
	r.messages = append(r.messages, *m)
	r.writeCount++
	return nil
}

func (r *fakeMessageRepo) GetRoomMessages(ctx context.Context, roomID uuid.UUID) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, roomID uuid.UUID, ids []uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(ids) == 0 {
		return 0, chat_errors.ErrInvalidInput
	}
	r.writeCount++
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range r.messages {
		if r.messages[i].RoomID == roomID && want[r.messages[i].ID] {
			r.messages[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) SetNotificationSent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.messages {
		if r.messages[i].ID == id {
			r.messages[i].EmailNotificationSent = true
			return nil
		}
	}
	return chat_errors.ErrNotFound
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, roomID uuid.UUID, senderType string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.messages {
		if m.RoomID == roomID && m.SenderType == senderType && !m.Read {
			n++
		}
	}
	return n, nil
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func (r *fakeMessageRepo) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.writeCount
}

// fakeNotifier records dispatches and can be told to fail.
type fakeNotifier struct {
	mu         sync.Mutex
	recipients []string
	err        error
	delivered  chan struct{}
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{delivered: make(chan struct{}, 16)}
}

func (n *fakeNotifier) Notify(ctx context.Context, msg message.Message, rm room.Room, recipient string) error {
	n.mu.Lock()
	n.recipients = append(n.recipients, recipient)
	err := n.err
	n.mu.Unlock()
	n.delivered <- struct{}{}
	return err
}

func (n *fakeNotifier) lastRecipient() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.recipients) == 0 {
		return ""
	}
	return n.recipients[len(n.recipients)-1]
}

// fakeUploader resolves or fails uploads without any provider.
type fakeUploader struct {
	fileData message.FileData
	err      error
	calls    int
}

func (u *fakeUploader) Upload(ctx context.Context, in FileUpload) (message.FileData, error) {
	u.calls++
	if u.err != nil {
		return message.FileData{}, u.err
	}
	return u.fileData, nil
}

// fakePresenceStore keeps presence documents in memory.
type fakePresenceStore struct {
	mu           sync.Mutex
	docs         map[string]presence.Status
	heartbeatErr error
	beats        int
	bus          *fakeBus
}

func newFakePresenceStore(bus *fakeBus) *fakePresenceStore {
	return &fakePresenceStore{docs: make(map[string]presence.Status), bus: bus}
}

func (s *fakePresenceStore) Set(ctx context.Context, status presence.Status) error {
	s.mu.Lock()
	s.docs[status.Email] = status
	s.mu.Unlock()
	s.publish(ctx, status.Email)
	return nil
}

func (s *fakePresenceStore) Heartbeat(ctx context.Context, email string, at time.Time) error {
	s.mu.Lock()
	if s.heartbeatErr != nil {
		err := s.heartbeatErr
		s.mu.Unlock()
		return err
	}
	s.beats++
	doc, ok := s.docs[email]
	if !ok {
		doc = presence.Status{Email: email, Online: true}
	}
	doc.LastSeen = at
	s.docs[email] = doc
	s.mu.Unlock()
	s.publish(ctx, email)
	return nil
}

func (s *fakePresenceStore) Get(ctx context.Context, email string) (presence.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[email]
	if !ok {
		return presence.Status{Email: email}, nil
	}
	return doc, nil
}

func (s *fakePresenceStore) publish(ctx context.Context, email string) {
	if s.bus != nil {
		s.bus.Publish(ctx, "channel:presence:"+presence.Key(email), []byte("{}"))
	}
}

func (s *fakePresenceStore) beatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beats
}

func (s *fakePresenceStore) failHeartbeats() {
	s.mu.Lock()
	s.heartbeatErr = chat_errors.ErrServiceUnavailable
	s.mu.Unlock()
}

func (s *fakePresenceStore) doc(email string) presence.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[email]
}
