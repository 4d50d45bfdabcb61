package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/spacesedan/emotisense/internal/clients"
	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/processing"
	"github.com/spacesedan/emotisense/internal/session"
)

const (
	msgAnalysisFailed = "We couldn't analyze that media right now. Please try again in a moment."
	msgNoEmotion      = "No emotion was detected. Try a clearer image or a different clip."
)

type analyzeURLRequest struct {
	URL string `json:"url"`
}

// resultView is the rendered form of an analysis result.
type resultView struct {
	Scores            []processing.ScoreView `json:"scores"`
	Predominant       *models.EmotionScore   `json:"predominant,omitempty"`
	Display           string                 `json:"display,omitempty"`
	Category          *processing.Category   `json:"category,omitempty"`
	NoEmotionDetected bool                   `json:"no_emotion_detected"`
	Message           string                 `json:"message,omitempty"`
	Shape             models.ResponseShape   `json:"shape"`
}

type analyzeResponse struct {
	SessionID string           `json:"session_id"`
	Source    models.SourceRef `json:"source"`
	MediaType string           `json:"media_type"`
	// MediaKind is "image" or "video". Video results suggest the multi-emotion prompt.
	MediaKind           string            `json:"media_kind"`
	SuggestedPromptMode models.PromptMode `json:"suggested_prompt_mode"`
	resultView
}

// mediaRequest is a parsed analyze request. Uploads carry their bytes; URL sources are
// downloaded only after the session has been started for them.
type mediaRequest struct {
	source      models.SourceRef
	media       []byte
	contentType string
}

func newResultView(result models.EmotionResult) resultView {
	view := resultView{
		Scores: processing.ViewScores(result),
		Shape:  result.Shape,
	}

	top, err := processing.Predominant(result)
	if errors.Is(err, processing.ErrNoEmotionDetected) {
		view.NoEmotionDetected = true
		view.Message = msgNoEmotion
		return view
	}

	category := processing.CategoryFor(top.Label)
	view.Predominant = &top
	view.Display = top.Display()
	view.Category = &category
	return view
}

// Analyze accepts either a multipart upload in the "media" field or a JSON body with a
// media URL, replaces the caller's session and runs the model once. The session is started
// before any download so a newer selection always wins; ApplyResult is the only commit.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := sessionID(w, r)

	req, status, err := h.parseMediaRequest(w, r)
	if err != nil {
		slog.Warn("[Server] Rejected analyze request",
			slog.String("session", id),
			slog.String("error", err.Error()))
		writeError(w, status, "invalid-media", err.Error())
		return
	}

	if _, err := h.sessions.Start(ctx, id, req.source); err != nil {
		slog.Error("[Server] Failed to start session",
			slog.String("session", id),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "session-unavailable", msgAnalysisFailed)
		return
	}

	media, contentType, status, err := h.loadMedia(r, req)
	if err != nil {
		slog.Warn("[Server] Could not load media",
			slog.String("session", id),
			slog.String("source", req.source.Ref),
			slog.String("error", err.Error()))
		writeError(w, status, "invalid-media", err.Error())
		return
	}

	raw, err := h.inference.Analyze(ctx, media, contentType)
	if err != nil {
		slog.Error("[Server] Inference failed",
			slog.String("session", id),
			slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "upstream-failure", msgAnalysisFailed)
		return
	}

	result := processing.Normalize(raw)

	if _, err := h.sessions.ApplyResult(ctx, id, req.source, result); err != nil {
		if errors.Is(err, session.ErrStaleResult) || isNotFound(err) {
			writeError(w, http.StatusConflict, "superseded",
				"A newer selection replaced this one before its analysis finished.")
			return
		}
		slog.Error("[Server] Failed to store result",
			slog.String("session", id),
			slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "session-unavailable", msgAnalysisFailed)
		return
	}

	kind, mode := "image", models.PromptModeSingle
	if clients.IsVideo(contentType) {
		kind, mode = "video", models.PromptModeMulti
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		SessionID:           id,
		Source:              req.source,
		MediaType:           contentType,
		MediaKind:           kind,
		SuggestedPromptMode: mode,
		resultView:          newResultView(result),
	})
}

// parseMediaRequest reads the request body and builds the session source. It performs no
// outbound network calls.
func (h *Handler) parseMediaRequest(w http.ResponseWriter, r *http.Request) (mediaRequest, int, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+(1<<20))
		file, header, err := r.FormFile("media")
		if err != nil {
			return mediaRequest{}, http.StatusBadRequest, fmt.Errorf("missing media file: %w", err)
		}
		defer file.Close()

		media, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
		if err != nil {
			return mediaRequest{}, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err)
		}
		if int64(len(media)) > h.maxUploadBytes {
			return mediaRequest{}, http.StatusRequestEntityTooLarge, clients.ErrMediaTooLarge
		}
		if len(media) == 0 {
			return mediaRequest{}, http.StatusBadRequest, clients.ErrEmptyMedia
		}

		return mediaRequest{
			// Each upload is a new selection even when the same file is chosen twice.
			source: models.SourceRef{
				Kind: models.SourceUpload,
				Ref:  header.Filename + "#" + uuid.NewString(),
			},
			media:       media,
			contentType: header.Header.Get("Content-Type"),
		}, 0, nil

	case "application/json":
		var req analyzeURLRequest
		if err := decodeJSON(w, r, &req); err != nil {
			return mediaRequest{}, http.StatusBadRequest, fmt.Errorf("bad json: %w", err)
		}
		mediaURL, err := validateMediaURL(req.URL)
		if err != nil {
			return mediaRequest{}, http.StatusBadRequest, err
		}
		return mediaRequest{
			source: models.SourceRef{Kind: models.SourceURL, Ref: mediaURL},
		}, 0, nil

	default:
		return mediaRequest{}, http.StatusUnsupportedMediaType,
			errors.New("send multipart/form-data with a media file or JSON with a url")
	}
}

// loadMedia returns the bytes to analyze and their content type, downloading URL
// sources first.
func (h *Handler) loadMedia(r *http.Request, req mediaRequest) ([]byte, string, int, error) {
	media, contentType := req.media, req.contentType

	if req.source.Kind == models.SourceURL {
		var err error
		media, contentType, err = h.inference.FetchMedia(r.Context(), req.source.Ref)
		if err != nil {
			status := http.StatusBadGateway
			switch {
			case errors.Is(err, clients.ErrMediaTooLarge):
				status = http.StatusRequestEntityTooLarge
			case errors.Is(err, clients.ErrForbiddenMediaHost):
				status = http.StatusBadRequest
			}
			return nil, "", status, fmt.Errorf("could not fetch media: %w", err)
		}
	}

	if len(media) == 0 {
		return nil, "", http.StatusBadRequest, clients.ErrEmptyMedia
	}
	if !clients.IsAnalyzableMedia(contentType) {
		contentType = clients.SniffContentType(media)
	}
	if !clients.IsAnalyzableMedia(contentType) {
		return nil, "", http.StatusUnsupportedMediaType,
			fmt.Errorf("unsupported media type %q", contentType)
	}
	return media, contentType, 0, nil
}

func validateMediaURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid media url %q", raw)
	}
	return u.String(), nil
}
