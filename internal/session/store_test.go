package session

import (
	"context"
	"testing"
	"time"

	"github.com/spacesedan/emotisense/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClockedStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	clock := time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)
	m := NewMemoryStore(ttl)
	m.now = func() time.Time { return clock }
	return m, &clock
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	m, clock := newClockedStore(time.Hour)

	require.NoError(t, m.Put(ctx, models.AnalysisSession{ID: "a"}))

	*clock = clock.Add(59 * time.Minute)
	s, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", s.ID)

	// Writing refreshes the expiry.
	require.NoError(t, m.Put(ctx, s))
	*clock = clock.Add(59 * time.Minute)
	_, err = m.Get(ctx, "a")
	require.NoError(t, err)

	*clock = clock.Add(time.Minute)
	_, err = m.Get(ctx, "a")
	require.ErrorIs(t, err, ErrSessionNotFound)
	assert.NotContains(t, m.sessions, "a")
}

func TestMemoryStore_SweepOnPut(t *testing.T) {
	ctx := context.Background()
	m, clock := newClockedStore(10 * time.Minute)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, m.Put(ctx, models.AnalysisSession{ID: id}))
	}
	assert.Len(t, m.sessions, 3)

	*clock = clock.Add(11 * time.Minute)
	require.NoError(t, m.Put(ctx, models.AnalysisSession{ID: "d"}))

	assert.Len(t, m.sessions, 1)
	assert.Contains(t, m.sessions, "d")
}

func TestMemoryStore_NoTTL(t *testing.T) {
	ctx := context.Background()
	m, clock := newClockedStore(0)

	require.NoError(t, m.Put(ctx, models.AnalysisSession{ID: "a"}))
	*clock = clock.Add(24 * 365 * time.Hour)

	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, "a"))
	_, err = m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestManager_ExpiredSessionRejectsResult(t *testing.T) {
	ctx := context.Background()
	store, clock := newClockedStore(time.Hour)
	m := NewManager(store)
	src := models.SourceRef{Kind: models.SourceUpload, Ref: "face.png#1"}

	_, err := m.Start(ctx, "user-1", src)
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Hour)
	_, err = m.ApplyResult(ctx, "user-1", src, happyResult())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
