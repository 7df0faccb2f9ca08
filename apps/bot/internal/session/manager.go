package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"baccarat-lite/road"
	"baccarat-lite/shoe"

	"github.com/rs/zerolog"
)

// State is what a Manager hands to the callback: the restored road session plus the
// bot-level bookkeeping that travels with it.
type State struct {
	Key       string
	Session   *road.Session
	Tally     shoe.Tally
	StartedAt time.Time
	// UpdatedAt is the stored record's last write; zero when Fresh.
	UpdatedAt time.Time
	// Fresh is true when no stored record existed for the key.
	Fresh bool

	discard bool
	keep    bool
}

// Discard deletes the record instead of saving it once the callback returns.
func (s *State) Discard() { s.discard = true }

// Keep leaves the stored record as it was: nothing is saved or deleted.
func (s *State) Keep() { s.keep = true }

// Restart empties the shoe in place and restarts its clock.
func (s *State) Restart(now time.Time) {
	s.Session.Reset()
	s.Tally = shoe.Tally{}
	s.StartedAt = now
	s.discard = false
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes work per key: one callback in flight per key, different keys in
// parallel.
type Manager struct {
	store Store
	cfg   road.Config
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*keyLock
}

func NewManager(store Store, cfg road.Config, log zerolog.Logger) *Manager {
	return &Manager{
		store: store,
		cfg:   cfg,
		log:   log.With().Str("component", "session").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
		locks: make(map[string]*keyLock),
	}
}

func (m *Manager) lock(key string) func() {
	m.mu.Lock()
	l := m.locks[key]
	if l == nil {
		l = &keyLock{}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		m.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}
}

// Do loads the state for key, runs fn and persists the result. If fn fails nothing
// is written.
func (m *Manager) Do(ctx context.Context, key string, fn func(*State) error) error {
	unlock := m.lock(key)
	defer unlock()

	st, err := m.load(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(st); err != nil {
		return err
	}
	if st.keep {
		return nil
	}
	if st.discard {
		if err := m.store.Delete(ctx, key); err != nil {
			return err
		}
		m.log.Debug().Str("key", key).Msg("session discarded")
		return nil
	}

	rec := &Record{
		Key:       key,
		Hands:     st.Session.Hands(),
		Tally:     st.Tally,
		StartedAt: st.StartedAt,
		UpdatedAt: m.now(),
	}
	if last, ok := st.Session.LastRecommendation(); ok {
		rec.Last = &last
	}
	return m.store.Save(ctx, rec)
}

func (m *Manager) load(ctx context.Context, key string) (*State, error) {
	rec, err := m.store.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		s, err := road.NewSession(m.cfg)
		if err != nil {
			return nil, err
		}
		return &State{Key: key, Session: s, StartedAt: m.now(), Fresh: true}, nil
	}
	if err != nil {
		return nil, err
	}
	s, err := road.RestoreSession(m.cfg, rec.Hands, rec.Last)
	if err != nil {
		return nil, fmt.Errorf("restore session %s: %w", key, err)
	}
	return &State{Key: key, Session: s, Tally: rec.Tally, StartedAt: rec.StartedAt, UpdatedAt: rec.UpdatedAt}, nil
}

// IdleKeys lists sessions untouched for longer than ttl, along with the cutoff it
// compared against. A session may be written again before it is expired, so callers
// pass the cutoff back to recheck under the key lock.
func (m *Manager) IdleKeys(ctx context.Context, ttl time.Duration) ([]string, time.Time, error) {
	cutoff := m.now().Add(-ttl)
	keys, err := m.store.ListIdle(ctx, cutoff)
	if err != nil {
		return nil, cutoff, err
	}
	return keys, cutoff, nil
}

func (m *Manager) Close() error { return m.store.Close() }
