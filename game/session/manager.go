package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/pong-arena/game/engine"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSessionID = errors.New("invalid session ID")
)

// Session is one game instance. Its engine is only touched while mu is held.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	engine       *engine.GameEngine
	deleted      bool
	lastAccessed atomic.Int64
}

// LastAccessedAt returns the time of the most recent operation on the session.
func (s *Session) LastAccessedAt() time.Time {
	return time.Unix(0, s.lastAccessed.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastAccessed.Store(now.UnixNano())
}

// snapshot must be called with s.mu held.
func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:             s.ID,
		CreatedAt:      s.CreatedAt,
		LastAccessedAt: s.LastAccessedAt(),
		State:          s.engine.GetState(),
	}
}

// Snapshot is a point-in-time copy of a session. Callers never hold a
// reference to live session state.
type Snapshot struct {
	ID             string
	CreatedAt      time.Time
	LastAccessedAt time.Time
	State          engine.GameState
}

// SourceFactory builds the RandomSource for a new or restored session.
type SourceFactory func() (engine.RandomSource, error)

// Manager owns every live session. The map lock is held only for lookup and
// insert/remove; game updates take the per-session lock, so operations on
// different sessions never contend.
type Manager struct {
	sessions    map[string]*Session
	persistence SessionPersistence
	newSource   SourceFactory
	logger      *zap.Logger
	now         func() time.Time
	mu          sync.RWMutex
}

// Option configures a Manager.
type Option func(*Manager)

// WithPersistence saves every session change through p.
func WithPersistence(p SessionPersistence) Option {
	return func(m *Manager) { m.persistence = p }
}

// WithSourceFactory overrides how per-session random sources are built.
func WithSourceFactory(f SourceFactory) Option {
	return func(m *Manager) { m.newSource = f }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions:  make(map[string]*Session),
		newSource: engine.NewRandomSource,
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new game under a fresh identifier.
func (m *Manager) Create() (Snapshot, error) {
	rng, err := m.newSource()
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create random source: %w", err)
	}
	eng, err := engine.NewEngine(rng)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to create engine: %w", err)
	}

	now := m.now()
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		engine:    eng,
	}
	sess.touch(now)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	m.mu.Unlock()

	snap := sess.snapshot()
	m.persist(snap)
	return snap, nil
}

// Get returns the current state of a session without advancing it.
func (m *Manager) Get(id string) (Snapshot, error) {
	return m.update(id, func(*engine.GameEngine) bool { return false })
}

// ApplyMove moves the player paddle, lets the computer react and advances
// one tick.
func (m *Manager) ApplyMove(id string, direction engine.Direction) (Snapshot, error) {
	return m.update(id, func(e *engine.GameEngine) bool {
		e.Move(direction)
		return true
	})
}

// Poll lets the computer react and advances one tick. It mutates the game.
func (m *Manager) Poll(id string) (Snapshot, error) {
	return m.update(id, func(e *engine.GameEngine) bool {
		e.Poll()
		return true
	})
}

// update runs fn against the session engine with the session lock held. The
// result is persisted when fn reports a change.
func (m *Manager) update(id string, fn func(*engine.GameEngine) bool) (Snapshot, error) {
	sess, err := m.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.deleted {
		return Snapshot{}, ErrSessionNotFound
	}

	changed := fn(sess.engine)
	sess.touch(m.now())

	snap := sess.snapshot()
	if changed {
		m.persist(snap)
	}
	return snap, nil
}

// lookup finds a session in memory, falling back to persistence.
func (m *Manager) lookup(id string) (*Session, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if key == "" {
		return nil, ErrSessionNotFound
	}

	m.mu.RLock()
	sess, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return sess, nil
	}

	if m.persistence == nil || !m.persistence.Exists(key) {
		return nil, ErrSessionNotFound
	}

	restored, err := m.restore(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another request may have restored it first.
	if existing, ok := m.sessions[key]; ok {
		return existing, nil
	}
	m.sessions[key] = restored
	return restored, nil
}

// restore rebuilds a session from its persisted snapshot.
func (m *Manager) restore(id string) (*Session, error) {
	snap, err := m.persistence.Load(id)
	if err != nil {
		return nil, err
	}
	rng, err := m.newSource()
	if err != nil {
		return nil, fmt.Errorf("failed to create random source: %w", err)
	}
	eng, err := engine.NewEngine(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	eng.SetState(snap.State)

	sess := &Session{
		ID:        strings.ToLower(snap.ID),
		CreatedAt: snap.CreatedAt,
		engine:    eng,
	}
	sess.touch(snap.LastAccessedAt)
	return sess, nil
}

// persist saves a snapshot if persistence is configured. Failures are logged;
// the in-memory session stays authoritative.
func (m *Manager) persist(snap Snapshot) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(snap); err != nil {
		m.logger.Warn("failed to persist session", zap.String("session_id", snap.ID), zap.Error(err))
	}
}

// List returns snapshots of all active sessions
func (m *Manager) List() []Snapshot {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.mu.RUnlock()

	result := make([]Snapshot, 0, len(sessions))
	for _, sess := range sessions {
		sess.mu.Lock()
		if !sess.deleted {
			result = append(result, sess.snapshot())
		}
		sess.mu.Unlock()
	}
	return result
}

// Delete removes a session from memory and persistence.
func (m *Manager) Delete(id string) error {
	key := strings.ToLower(strings.TrimSpace(id))

	m.mu.Lock()
	sess, inMemory := m.sessions[key]
	delete(m.sessions, key)
	m.mu.Unlock()

	if inMemory {
		sess.mu.Lock()
		sess.deleted = true
		sess.mu.Unlock()
	}

	if m.persistence != nil && m.persistence.Exists(key) {
		if err := m.persistence.Delete(key); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed within
// maxAge. Sessions busy with a request are skipped rather than waited on.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := m.now().Add(-maxAge)
	var removed []string

	m.mu.Lock()
	for id, sess := range m.sessions {
		if !sess.LastAccessedAt().Before(cutoff) {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		sess.deleted = true
		sess.mu.Unlock()
		delete(m.sessions, id)
		removed = append(removed, id)
	}
	m.mu.Unlock()

	if m.persistence != nil {
		for _, id := range removed {
			if err := m.persistence.Delete(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
				m.logger.Warn("failed to delete expired session", zap.String("session_id", id), zap.Error(err))
			}
		}
	}

	return len(removed)
}

// RunSweeper evicts idle sessions every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxAge time.Duration) error {
	if interval <= 0 || maxAge <= 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := m.CleanupExpiredSessions(maxAge); removed > 0 {
				m.logger.Info("cleaned up expired sessions", zap.Int("removed", removed), zap.Int("remaining", m.Count()))
			}
		}
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	loaded := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)

		m.mu.RLock()
		_, exists := m.sessions[key]
		m.mu.RUnlock()
		if exists {
			continue
		}

		sess, err := m.restore(key)
		if err != nil {
			m.logger.Warn("failed to load persisted session", zap.String("session_id", id), zap.Error(err))
			continue
		}

		m.mu.Lock()
		if _, exists := m.sessions[key]; !exists {
			m.sessions[key] = sess
			loaded++
		}
		m.mu.Unlock()
	}

	if loaded > 0 {
		m.logger.Info("loaded persisted sessions", zap.Int("count", loaded))
	}
	return nil
}
