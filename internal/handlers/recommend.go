package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/prompts"
)

// Recommend answers with a Recommendation value on every path, including failures. The
// emotion defaults to the predominant label of the caller's session.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req models.RecommendationRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad-json", err.Error())
			return
		}
	}

	if strings.TrimSpace(req.PredominantEmotionLabel) == "" {
		if id, ok := existingSessionID(r); ok {
			if s, err := h.sessions.Get(r.Context(), id); err == nil {
				req.PredominantEmotionLabel = s.PredominantLabel
			}
		}
	}

	writeJSON(w, http.StatusOK, h.recs.Generate(r.Context(), req))
}

type promptResponse struct {
	models.RecommendationPrompt
	CopilotURL string `json:"copilot_url"`
}

const copilotURL = "https://copilot.microsoft.com/"

// Prompt returns the manual prompt for pasting into an assistant. mode is single
// (default) or multi; single accepts an explicit emotion query parameter.
func (h *Handler) Prompt(w http.ResponseWriter, r *http.Request) {
	mode := models.PromptMode(strings.ToLower(r.URL.Query().Get("mode")))
	if mode == "" {
		mode = models.PromptModeSingle
	}
	if mode != models.PromptModeSingle && mode != models.PromptModeMulti {
		writeError(w, http.StatusBadRequest, "bad-mode", "mode must be single or multi")
		return
	}

	if label := strings.TrimSpace(r.URL.Query().Get("emotion")); label != "" && mode == models.PromptModeSingle {
		writeJSON(w, http.StatusOK, promptResponse{
			RecommendationPrompt: prompts.SingleEmotion(label),
			CopilotURL:           copilotURL,
		})
		return
	}

	var result models.EmotionResult
	if id, ok := existingSessionID(r); ok {
		if s, err := h.sessions.Get(r.Context(), id); err == nil && s.Result != nil {
			result = *s.Result
		}
	}
	if result.Empty() {
		writeError(w, http.StatusNotFound, string(models.ErrorNoInput),
			"No emotion was detected in the image. Please try analyzing a clearer image.")
		return
	}

	writeJSON(w, http.StatusOK, promptResponse{
		RecommendationPrompt: prompts.ForMode(mode, result),
		CopilotURL:           copilotURL,
	})
}
