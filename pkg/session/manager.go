package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/tutorgraph/internal/logging"
	"github.com/aretw0/tutorgraph/pkg/domain"
	"github.com/aretw0/tutorgraph/pkg/ports"
	"github.com/google/uuid"
)

// ErrInvalidSession is returned by Start when the request is incomplete.
var ErrInvalidSession = errors.New("invalid session request")

// ErrSessionEnded is returned when appending to a session that was ended.
var ErrSessionEnded = errors.New("session already ended")

// lockTTL bounds how long a distributed lock outlives a crashed holder.
const lockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, serializing read-modify-write cycles
// per session ID. It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker ports.DistributedLocker // Optional distributed locker
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Start opens a new session for owner. Owner, persona and at least one topic are required.
func (m *Manager) Start(ctx context.Context, owner string, topics []string, persona string) (*domain.Session, error) {
	if owner == "" || persona == "" || len(topics) == 0 {
		return nil, fmt.Errorf("%w: userId, topics (non-empty) and persona are required", ErrInvalidSession)
	}

	s := &domain.Session{
		ID:        m.newID(),
		Owner:     owner,
		Topics:    slices.Clone(topics),
		Persona:   persona,
		StartedAt: m.now().UTC(),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	m.logger.InfoContext(ctx, "session started", "session_id", s.ID, "user_id", owner)
	return s, nil
}

// End marks the session as ended. Ending twice keeps the first end time.
func (m *Manager) End(ctx context.Context, sessionID string) (*domain.Session, error) {
	var ended *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if s.EndedAt == nil {
			t := m.now().UTC()
			s.EndedAt = &t
			if err := m.store.Save(ctx, s); err != nil {
				return fmt.Errorf("failed to end session: %w", err)
			}
			m.logger.InfoContext(ctx, "session ended", "session_id", sessionID)
		}
		ended = s
		return nil
	})
	return ended, err
}

// Get retrieves a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.store.Load(ctx, sessionID)
}

// AppendHistory records conversation turns on an active session.
func (m *Manager) AppendHistory(ctx context.Context, sessionID string, messages ...domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		s, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if !s.Active() {
			return ErrSessionEnded
		}
		s.History = append(s.History, messages...)
		return m.store.Save(ctx, s)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
