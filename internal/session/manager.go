package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
)

// ErrSessionChanged is returned by Rotate when the pair was replaced or
// cleared while a renewal was in flight.
var ErrSessionChanged = errors.New("session changed during renewal")

// EventKind distinguishes why a session ended.
type EventKind string

const (
	EventExpired   EventKind = "expired"
	EventLoggedOut EventKind = "logged_out"
)

// Event is published to subscribers when a session ends.
type Event struct {
	Kind       EventKind
	CustomerID string
	Cause      error
	At         time.Time
}

// Manager is the process-wide credential store. Reads are lock-free whole-pair
// snapshots; writes are serialised and replace the pair as a whole.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time

	current atomic.Pointer[model.Session]

	writeMu sync.Mutex

	subsMu sync.Mutex
	subs   map[int]*subscriber
	nextID int
}

// NewManager creates a Manager persisting through store.
func NewManager(store Store, logger *slog.Logger) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
		subs:   make(map[int]*subscriber),
	}
	m.current.Store(&model.Session{})
	return m
}

// Snapshot returns the current credential pair.
func (m *Manager) Snapshot() model.Credentials {
	return m.current.Load().Credentials
}

// Identity returns the customer id of the active session, if any.
func (m *Manager) Identity() (string, bool) {
	s := m.current.Load()
	if s.Credentials.Empty() {
		return "", false
	}
	return s.CustomerID, s.CustomerID != ""
}

// Active reports whether an access token is held.
func (m *Manager) Active() bool {
	return !m.Snapshot().Empty()
}

// Restore loads a previously persisted session, if any.
func (m *Manager) Restore(ctx context.Context) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	s, err := m.store.Load(ctx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if s.Credentials.Empty() {
		return nil
	}
	m.current.Store(&s)
	m.logger.Info("session restored", slog.String("customer_id", s.CustomerID))
	return nil
}

// Begin installs a freshly issued session, replacing any previous one.
func (m *Manager) Begin(ctx context.Context, s model.Session) error {
	if s.Credentials.Empty() {
		return domainErrors.NewValidation("access_token", "must not be empty")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	if err := m.store.Save(ctx, s); err != nil {
		return err
	}
	m.current.Store(&s)
	return nil
}

// Rotate replaces previous with next, keeping the identity. It fails when the
// stored pair no longer matches previous, which happens if the user logged
// out or another writer replaced the pair meanwhile.
func (m *Manager) Rotate(ctx context.Context, previous, next model.Credentials) error {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	cur := m.current.Load()
	if cur.Credentials != previous {
		return ErrSessionChanged
	}

	updated := model.Session{Credentials: next, CustomerID: cur.CustomerID}
	if err := m.store.Save(ctx, updated); err != nil {
		return err
	}
	m.current.Store(&updated)
	return nil
}

// Expire clears the session after a terminal authorization failure. The
// expiry event is published only on the transition from active to cleared,
// so concurrent callers produce a single signal. It reports whether this call
// performed the transition.
func (m *Manager) Expire(ctx context.Context, cause error) bool {
	return m.end(ctx, EventExpired, cause)
}

// Logout clears the session on user request.
func (m *Manager) Logout(ctx context.Context) bool {
	return m.end(ctx, EventLoggedOut, nil)
}

func (m *Manager) end(ctx context.Context, kind EventKind, cause error) bool {
	m.writeMu.Lock()
	cur := m.current.Load()
	if cur.Credentials.Empty() {
		m.writeMu.Unlock()
		return false
	}
	m.current.Store(&model.Session{})
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("clear persisted session failed", slog.String("error", err.Error()))
	}
	m.writeMu.Unlock()

	m.logger.Info("session ended", slog.String("kind", string(kind)), slog.String("customer_id", cur.CustomerID))
	m.publish(Event{Kind: kind, CustomerID: cur.CustomerID, Cause: cause, At: m.now()})
	return true
}

// Subscribe registers for session-end events. Events are queued per
// subscriber and delivered in order, so a slow reader never loses one. The
// returned function unsubscribes and closes the channel; undelivered events
// are discarded.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	sub := &subscriber{
		out:  make(chan Event),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}

	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = sub
	m.subsMu.Unlock()

	go sub.run()

	var once sync.Once
	return sub.out, func() {
		once.Do(func() {
			m.subsMu.Lock()
			delete(m.subs, id)
			m.subsMu.Unlock()
			close(sub.done)
		})
	}
}

func (m *Manager) publish(ev Event) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, sub := range m.subs {
		sub.push(ev)
	}
}

type subscriber struct {
	out  chan Event
	wake chan struct{}
	done chan struct{}

	mu      sync.Mutex
	pending []Event
}

func (s *subscriber) push(ev Event) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		batch := s.pending
		s.pending = nil
		s.mu.Unlock()

		for _, ev := range batch {
			select {
			case s.out <- ev:
			case <-s.done:
				return
			}
		}

		select {
		case <-s.wake:
		case <-s.done:
			return
		}
	}
}
