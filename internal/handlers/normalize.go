package handlers

import (
	"io"
	"net/http"

	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/processing"
)

type normalizeResponse struct {
	Result models.EmotionResult `json:"result"`
	resultView
}

// Normalize runs a raw inference payload through the normalizer without calling the model.
func (h *Handler) Normalize(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "too-large", err.Error())
		return
	}

	result := processing.Normalize(raw)
	writeJSON(w, http.StatusOK, normalizeResponse{
		Result:     result,
		resultView: newResultView(result),
	})
}
