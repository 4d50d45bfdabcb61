package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/models"
	"github.com/valkey-io/valkey-go"
)

const keyPrefix = "emotisense:session:"

// ValkeyStore keeps sessions as JSON strings that expire after ttl.
type ValkeyStore struct {
	client valkey.Client
	ttl    time.Duration
}

func NewValkeyStore(client valkey.Client, ttl time.Duration) *ValkeyStore {
	if ttl < time.Second {
		ttl = time.Second
	}
	return &ValkeyStore{client: client, ttl: ttl}
}

func sessionKey(id string) string {
	return keyPrefix + id
}

func (v *ValkeyStore) Get(ctx context.Context, id string) (models.AnalysisSession, error) {
	var s models.AnalysisSession

	raw, err := v.client.Do(ctx, v.client.B().Get().Key(sessionKey(id)).Build()).AsBytes()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return s, ErrSessionNotFound
		}
		return s, storeError("get", id, err)
	}

	if err := json.Unmarshal(raw, &s); err != nil {
		slog.Error("[ValkeyStore] Corrupt session payload, dropping",
			slog.String("id", id),
			slog.String("error", err.Error()))
		_ = v.Delete(ctx, id)
		return models.AnalysisSession{}, ErrSessionNotFound
	}
	return s, nil
}

func (v *ValkeyStore) Put(ctx context.Context, s models.AnalysisSession) error {
	body, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	key := sessionKey(s.ID)
	completed := []valkey.Completed{
		v.client.B().Set().Key(key).Value(string(body)).Build(),
		v.client.B().Expire().Key(key).Seconds(int64(v.ttl / time.Second)).Build(),
	}

	for _, res := range v.client.DoMulti(ctx, completed...) {
		if err := res.Error(); err != nil {
			return storeError("put", s.ID, err)
		}
	}
	return nil
}

func (v *ValkeyStore) Delete(ctx context.Context, id string) error {
	if err := v.client.Do(ctx, v.client.B().Del().Key(sessionKey(id)).Build()).Error(); err != nil {
		return storeError("delete", id, err)
	}
	return nil
}

func storeError(op, id string, err error) error {
	if clients.IsConnectionError(err) {
		slog.Error("[ValkeyStore] Connection lost",
			slog.String("op", op),
			slog.String("id", id),
			slog.String("error", err.Error()))
	}
	return fmt.Errorf("%s session %s: %w", op, id, err)
}
