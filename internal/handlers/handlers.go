package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/recommendations"
	"github.com/spacesedan/emotisense/internal/session"
)

const (
	SessionCookieName = "emotisense_session"

	maxJSONBodyBytes = 1 << 20
)

// MediaAnalyzer runs the emotion model. *clients.InferenceClient satisfies it.
type MediaAnalyzer interface {
	Analyze(ctx context.Context, media []byte, contentType string) ([]byte, error)
	FetchMedia(ctx context.Context, url string) ([]byte, string, error)
}

type Deps struct {
	Inference       MediaAnalyzer
	Recommendations *recommendations.Service
	Sessions        *session.Manager
	// InferenceHealthy is updated by the health monitor. Nil means unknown.
	InferenceHealthy *atomic.Bool
	MaxUploadBytes   int64
}

type Handler struct {
	inference        MediaAnalyzer
	recs             *recommendations.Service
	sessions         *session.Manager
	inferenceHealthy *atomic.Bool
	maxUploadBytes   int64
}

func New(d Deps) *Handler {
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = clients.MAX_MEDIA_BYTES
	}
	return &Handler{
		inference:        d.Inference,
		recs:             d.Recommendations,
		sessions:         d.Sessions,
		inferenceHealthy: d.InferenceHealthy,
		maxUploadBytes:   maxUpload,
	}
}

// Routes registers every endpoint on a fresh mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /v1/analyze", withHealthGate(h.Analyze, h.inferenceHealthy))
	mux.HandleFunc("GET /v1/session", h.GetSession)
	mux.HandleFunc("DELETE /v1/session", h.ResetSession)
	mux.HandleFunc("POST /v1/recommendations", h.Recommend)
	mux.HandleFunc("GET /v1/prompt", h.Prompt)
	mux.HandleFunc("POST /v1/normalize", h.Normalize)
	return logRequests(mux)
}

type healthResponse struct {
	Status           string `json:"status"`
	LLMConfigured    bool   `json:"llm_configured"`
	InferenceHealthy *bool  `json:"inference_healthy,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		LLMConfigured: h.recs.IsConfigured(),
	}
	if h.inferenceHealthy != nil {
		healthy := h.inferenceHealthy.Load()
		resp.InferenceHealthy = &healthy
		if !healthy {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// sessionID returns the caller's session id, issuing a new cookie when the request has
// none or carries a malformed one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// existingSessionID reads the cookie without issuing one.
func existingSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("[Server] Failed to encode response", slog.String("error", err.Error()))
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)).Decode(v)
}

func isNotFound(err error) bool {
	return errors.Is(err, session.ErrSessionNotFound)
}
