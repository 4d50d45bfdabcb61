package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/emotisense/internal/models"
)

// ErrStaleResult means a result arrived for a source the session no longer points at.
var ErrStaleResult = errors.New("result is for a superseded source")

// Manager owns the session lifecycle: one active session per user, replaced whenever new
// media is chosen and cleared when the user starts over. Writes are serialized so a result
// check and its store happen without a Start in between.
type Manager struct {
	mu    sync.Mutex
	store Store
	now   func() time.Time
}

func NewManager(store Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

// Start creates the session or replaces it for a new source. Any previous result is
// dropped.
func (m *Manager) Start(ctx context.Context, id string, source models.SourceRef) (models.AnalysisSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := models.AnalysisSession{
		ID:        id,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.store.Put(ctx, s); err != nil {
		return models.AnalysisSession{}, fmt.Errorf("start session: %w", err)
	}

	slog.Debug("[SessionManager] Session started",
		slog.String("id", id),
		slog.String("source_kind", string(source.Kind)))
	return s, nil
}

// ApplyResult stores result only if the session still refers to source. Otherwise the
// result is discarded and ErrStaleResult is returned.
func (m *Manager) ApplyResult(ctx context.Context, id string, source models.SourceRef, result models.EmotionResult) (models.AnalysisSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.store.Get(ctx, id)
	if err != nil {
		return models.AnalysisSession{}, err
	}
	if s.Source != source {
		slog.Info("[SessionManager] Discarding stale result",
			slog.String("id", id),
			slog.String("current_source", s.Source.Ref),
			slog.String("result_source", source.Ref))
		return s, ErrStaleResult
	}

	s.Result = &result
	s.PredominantLabel = ""
	if result.Predominant != nil {
		s.PredominantLabel = result.Predominant.Label
	}
	s.UpdatedAt = m.now()

	if err := m.store.Put(ctx, s); err != nil {
		return models.AnalysisSession{}, fmt.Errorf("apply result: %w", err)
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (models.AnalysisSession, error) {
	return m.store.Get(ctx, id)
}

// Reset clears the session entirely.
func (m *Manager) Reset(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}
