package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real server when EMOTISENSE_TEST_VALKEY_ADDRESS is set.
func TestValkeyStore(t *testing.T) {
	addr := os.Getenv("EMOTISENSE_TEST_VALKEY_ADDRESS")
	if addr == "" {
		t.Skip("EMOTISENSE_TEST_VALKEY_ADDRESS not set")
	}

	ctx := context.Background()
	vc, err := clients.NewValkeyClient(ctx, clients.ValkeyConfig{Address: addr})
	require.NoError(t, err)
	defer vc.Close()

	store := NewValkeyStore(vc.Client, time.Minute)
	id := "test-" + time.Now().Format("150405.000000000")
	defer func() { _ = store.Delete(ctx, id) }()

	_, err = store.Get(ctx, id)
	require.ErrorIs(t, err, ErrSessionNotFound)

	m := NewManager(store)
	src := models.SourceRef{Kind: models.SourceURL, Ref: "https://example.com/face.png"}
	_, err = m.Start(ctx, id, src)
	require.NoError(t, err)

	applied, err := m.ApplyResult(ctx, id, src, happyResult())
	require.NoError(t, err)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, applied.PredominantLabel, got.PredominantLabel)
	require.NotNil(t, got.Result)
	assert.Equal(t, applied.Result.Scores, got.Result.Scores)

	ttl, err := vc.Client.Do(ctx, vc.Client.B().Ttl().Key(sessionKey(id)).Build()).AsInt64()
	require.NoError(t, err)
	assert.Greater(t, ttl, int64(0))

	require.NoError(t, m.Reset(ctx, id))
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "emotisense:session:abc", sessionKey("abc"))
}

func TestStoreError(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	refused := errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
	err := storeError("get", "user-1", refused)
	assert.ErrorIs(t, err, refused)
	assert.Equal(t, "get session user-1: "+refused.Error(), err.Error())
	assert.Contains(t, logs.String(), "[ValkeyStore] Connection lost")

	logs.Reset()
	wrongType := errors.New("WRONGTYPE Operation against a key holding the wrong kind of value")
	assert.ErrorIs(t, storeError("put", "user-1", wrongType), wrongType)
	assert.Empty(t, logs.String())
}
