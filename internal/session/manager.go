// Package session holds per-user parameter state. Each session owns its own
// Store; nothing mutable is shared between sessions.
package session

import (
	"fmt"
	"sync"
	"time"

	"payoffchart/internal/model"
	"payoffchart/internal/structure"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type entry struct {
	mu       sync.Mutex
	store    *Store
	lastSeen time.Time
}

// Manager owns the live sessions of a service process.
type Manager struct {
	reg      *structure.Registry
	fallback model.Variant
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry

	cron *cron.Cron
}

// NewManager creates a manager. New sessions start on fallback unless told
// otherwise; sessions idle for longer than ttl are removed by Sweep.
func NewManager(reg *structure.Registry, fallback model.Variant, ttl time.Duration, log zerolog.Logger) *Manager {
	return &Manager{
		reg:      reg,
		fallback: fallback,
		ttl:      ttl,
		log:      log.With().Str("component", "sessions").Logger(),
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a session on v (or the fallback when v is empty).
func (m *Manager) Create(v model.Variant) (string, State, error) {
	if v == "" {
		v = m.fallback
	}
	store, err := NewStore(m.reg, v)
	if err != nil {
		return "", State{}, err
	}

	id := uuid.NewString()
	m.mu.Lock()
	m.sessions[id] = &entry{store: store, lastSeen: m.now()}
	m.mu.Unlock()

	m.log.Debug().Str("session", id).Str("variant", string(store.Variant())).Msg("session created")
	return id, store.Snapshot(), nil
}

// With runs fn with exclusive access to the session's store.
func (m *Manager) With(id string, fn func(*Store) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = m.now()
	return fn(e.store)
}

// Delete removes a session and reports whether it existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info().Int("removed", removed).Int("remaining", len(m.sessions)).Msg("idle sessions swept")
	}
	return removed
}

// StartSweeper runs Sweep on a cron schedule such as "@every 1m".
func (m *Manager) StartSweeper(schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { m.Sweep() }); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	c.Start()
	m.cron = c
	m.log.Info().Str("schedule", schedule).Dur("ttl", m.ttl).Msg("session sweeper started")
	return nil
}

// StopSweeper stops the sweeper and waits for a running sweep to finish.
func (m *Manager) StopSweeper() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.cron = nil
}
