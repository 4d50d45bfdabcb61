package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/emotisense/internal/models"
)

type sessionResponse struct {
	SessionID string           `json:"session_id"`
	Source    models.SourceRef `json:"source"`
	Analyzed  bool             `json:"analyzed"`
	Result    *resultView      `json:"result,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := existingSessionID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "no-session", "No media has been analyzed yet.")
		return
	}

	s, err := h.sessions.Get(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "no-session", "No media has been analyzed yet.")
			return
		}
		slog.Error("[Server] Failed to load session",
			slog.String("session", id),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "session-unavailable", "Please try again.")
		return
	}

	resp := sessionResponse{
		SessionID: s.ID,
		Source:    s.Source,
		Analyzed:  s.Result != nil,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Result != nil {
		view := newResultView(*s.Result)
		resp.Result = &view
	}
	writeJSON(w, http.StatusOK, resp)
}

// ResetSession drops the session so the next request starts from scratch.
func (h *Handler) ResetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := existingSessionID(r)
	if ok {
		if err := h.sessions.Reset(r.Context(), id); err != nil {
			slog.Error("[Server] Failed to reset session",
				slog.String("session", id),
				slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "session-unavailable", "Please try again.")
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
