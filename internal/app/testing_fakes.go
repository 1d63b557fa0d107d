//go:build unit || integration
// +build unit integration

package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MGTheTrain/admin-console/internal/domain/datatable"
	"github.com/MGTheTrain/admin-console/internal/domain/mail"
	"github.com/MGTheTrain/admin-console/internal/domain/notifications"
	"github.com/MGTheTrain/admin-console/internal/pkg/errs"
)

// sentMail is one message handed to recordingMailer
type sentMail struct {
	Creds *mail.Credentials
	Msg   *mail.Message
}

// recordingMailer keeps every message instead of delivering it
type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(_ context.Context, creds *mail.Credentials, msg *mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{Creds: creds, Msg: msg})
	return nil
}

func (m *recordingMailer) Sent() []sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]sentMail(nil), m.sent...)
}

// memorySessionStore keeps sessions in a map
type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: map[string]string{}}
}

func (s *memorySessionStore) Create(_ context.Context, userID string, _ time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := uuid.NewString()
	s.sessions[token] = userID
	return token, nil
}

func (s *memorySessionStore) UserID(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.sessions[token]
	if !ok {
		return "", errs.ErrUnauthenticated
	}
	return userID, nil
}

func (s *memorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// memoryPreferenceStore keeps preferences in a map; getErr fails every Get
type memoryPreferenceStore struct {
	mu     sync.Mutex
	data   map[string]datatable.Preferences
	getErr error
	puts   int
}

func newMemoryPreferenceStore() *memoryPreferenceStore {
	return &memoryPreferenceStore{data: map[string]datatable.Preferences{}}
}

func (s *memoryPreferenceStore) Get(_ context.Context, owner, entity string) (*datatable.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.getErr != nil {
		return nil, s.getErr
	}
	prefs, ok := s.data[owner+":"+entity]
	if !ok {
		return nil, nil
	}
	return &prefs, nil
}

func (s *memoryPreferenceStore) Put(_ context.Context, owner, entity string, prefs datatable.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.puts++
	s.data[owner+":"+entity] = prefs
	return nil
}

func (s *memoryPreferenceStore) Delete(_ context.Context, owner, entity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, owner+":"+entity)
	return nil
}

func (s *memoryPreferenceStore) has(owner, entity string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.data[owner+":"+entity]
	return ok
}

// memoryToastStore queues toasts per session
type memoryToastStore struct {
	mu     sync.Mutex
	queues map[string][]*notifications.Toast
}

func newMemoryToastStore() *memoryToastStore {
	return &memoryToastStore{queues: map[string][]*notifications.Toast{}}
}

func (s *memoryToastStore) Push(_ context.Context, sessionID string, toast *notifications.Toast) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queues[sessionID] = append(s.queues[sessionID], toast)
	return nil
}

func (s *memoryToastStore) Pull(_ context.Context, sessionID string) ([]*notifications.Toast, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	toasts := s.queues[sessionID]
	delete(s.queues, sessionID)
	return toasts, nil
}

// publishedEvent is one event handed to memoryBroadcaster
type publishedEvent struct {
	UserID string
	Event  *notifications.Event
}

// memoryBroadcaster records published events and fans them out to subscribers
type memoryBroadcaster struct {
	mu        sync.Mutex
	published []publishedEvent
	subs      map[string][]chan *notifications.Event
}

func newMemoryBroadcaster() *memoryBroadcaster {
	return &memoryBroadcaster{subs: map[string][]chan *notifications.Event{}}
}

func (b *memoryBroadcaster) Publish(_ context.Context, userID string, event *notifications.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.published = append(b.published, publishedEvent{UserID: userID, Event: event})
	for _, ch := range b.subs[userID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *memoryBroadcaster) Subscribe(ctx context.Context, userID string) (<-chan *notifications.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan *notifications.Event, 16)
	b.subs[userID] = append(b.subs[userID], ch)
	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[userID]
		for i, c := range subs {
			if c == ch {
				b.subs[userID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (b *memoryBroadcaster) Published() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]publishedEvent(nil), b.published...)
}

// kinds lists the kinds of events published to userID
func (b *memoryBroadcaster) kinds(userID string) []string {
	var kinds []string
	for _, p := range b.Published() {
		if p.UserID == userID {
			kinds = append(kinds, p.Event.Kind)
		}
	}
	return kinds
}
