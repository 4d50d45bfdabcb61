package recommendations

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/spacesedan/emotisense/internal/models"
	"github.com/spacesedan/emotisense/internal/prompts"
	"github.com/spacesedan/emotisense/internal/render"
)

// Completer is the chat completion backend. *clients.OpenAIClient satisfies it.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, system, user string) (string, error)
}

type Service struct {
	llm Completer
}

// NewService accepts a nil or disabled Completer; every request then fails fast as
// not-configured and the manual prompt is returned instead.
func NewService(llm Completer) *Service {
	return &Service{llm: llm}
}

func (s *Service) IsConfigured() bool {
	return s != nil && s.llm != nil && s.llm.Enabled()
}

// Generate issues at most one completion for the predominant emotion. Failures are never
// returned as errors: they come back as an unsuccessful Recommendation carrying a
// category, a friendly message, the manual prompt and static guidance.
func (s *Service) Generate(ctx context.Context, req models.RecommendationRequest) models.Recommendation {
	label := strings.TrimSpace(req.PredominantEmotionLabel)

	if !s.IsConfigured() {
		slog.Warn("[Recommendations] LLM not configured, serving fallback")
		return failure(label, models.ErrorNotConfigured, FriendlyMessage(models.ErrorNotConfigured))
	}
	if label == "" {
		return failure(label, models.ErrorNoInput, FriendlyMessage(models.ErrorNoInput))
	}

	prompt := prompts.SingleEmotion(label)
	start := time.Now()

	text, err := s.llm.Complete(ctx, prompts.SystemInstruction, prompt.RenderedText)
	if err != nil {
		category := Categorize(err)
		slog.Error("[Recommendations] Recommendation request failed",
			slog.String("emotion", label),
			slog.String("category", string(category)),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return failure(label, category, friendlyMessageFor(category, err))
	}

	if strings.TrimSpace(text) == "" {
		slog.Warn("[Recommendations] Empty completion", slog.String("emotion", label))
		return failure(label, models.ErrorUnknown, FriendlyMessage(models.ErrorUnknown))
	}

	slog.Info("[Recommendations] Recommendation generated",
		slog.String("emotion", label),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("length", len(text)))

	return models.Recommendation{
		Success: true,
		Emotion: label,
		Text:    text,
		HTML:    render.MarkdownToHTML(text),
	}
}

func failure(label string, category models.ErrorCategory, message string) models.Recommendation {
	rec := models.Recommendation{
		Success:        false,
		Emotion:        label,
		ErrorCategory:  category,
		Message:        message,
		StaticGuidance: StaticGuidanceFor(label),
	}
	if label != "" {
		rec.FallbackPrompt = prompts.SingleEmotion(label).RenderedText
	}
	return rec
}
