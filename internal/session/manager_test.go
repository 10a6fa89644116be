package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"payoffchart/internal/model"
	"payoffchart/internal/structure"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(ttl time.Duration) *Manager {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	return NewManager(structure.New(), model.SharkfinCall, ttl, log)
}

func TestManager_SessionsAreIsolated(t *testing.T) {
	m := newManager(time.Hour)

	a, stateA, err := m.Create("")
	require.NoError(t, err)
	b, stateB, err := m.Create(model.VanillaCall)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, model.SharkfinCall, stateA.Variant)
	assert.Equal(t, model.VanillaCall, stateB.Variant)

	require.NoError(t, m.With(a, func(s *Store) error {
		return s.Edit(map[model.Key]string{model.KeyAsset: "黄金"})
	}))
	require.NoError(t, m.With(b, func(s *Store) error {
		assert.Equal(t, "中证1000", s.Params().Text(model.KeyAsset))
		return nil
	}))
	assert.Equal(t, 2, m.Len())
}

func TestManager_UnknownSession(t *testing.T) {
	m := newManager(time.Hour)
	err := m.With("missing", func(*Store) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.False(t, m.Delete("missing"))

	_, _, err = m.Create("bogus")
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestManager_WithPropagatesError(t *testing.T) {
	m := newManager(time.Hour)
	id, _, err := m.Create("")
	require.NoError(t, err)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.With(id, func(*Store) error { return boom }), boom)
	assert.True(t, m.Delete(id))
	assert.Equal(t, 0, m.Len())
}

func TestManager_SweepRemovesIdle(t *testing.T) {
	m := newManager(10 * time.Minute)
	clock := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	stale, _, err := m.Create("")
	require.NoError(t, err)
	clock = clock.Add(8 * time.Minute)
	fresh, _, err := m.Create("")
	require.NoError(t, err)

	clock = clock.Add(5 * time.Minute)
	assert.Equal(t, 1, m.Sweep())
	assert.ErrorIs(t, m.With(stale, func(*Store) error { return nil }), ErrSessionNotFound)
	assert.NoError(t, m.With(fresh, func(*Store) error { return nil }))
}

func TestManager_ZeroTTLNeverSweeps(t *testing.T) {
	m := newManager(0)
	_, _, err := m.Create("")
	require.NoError(t, err)
	assert.Equal(t, 0, m.Sweep())
	assert.Equal(t, 1, m.Len())
}

func TestManager_ConcurrentEditsOnOneSession(t *testing.T) {
	m := newManager(time.Hour)
	id, _, err := m.Create(model.Snowball3Leg)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.With(id, func(s *Store) error {
				if err := s.Edit(map[model.Key]string{model.KeyRet2: "5"}); err != nil {
					return err
				}
				_ = s.Geometry()
				return nil
			})
		}()
	}
	wg.Wait()

	require.NoError(t, m.With(id, func(s *Store) error {
		assert.Equal(t, "5", s.Params().Text(model.KeyRet2))
		return nil
	}))
}

func TestManager_SweeperSchedule(t *testing.T) {
	m := newManager(time.Minute)
	assert.Error(t, m.StartSweeper("not a schedule"))
	require.NoError(t, m.StartSweeper("@every 1h"))
	m.StopSweeper()
	m.StopSweeper()
}
