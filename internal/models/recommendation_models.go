package models

// ErrorCategory classifies a failed recommendation request for user messaging.
type ErrorCategory string

const (
	ErrorNotConfigured ErrorCategory = "not-configured"
	ErrorNoInput       ErrorCategory = "no-input"
	ErrorTransient     ErrorCategory = "transient"
	ErrorUnknown       ErrorCategory = "unknown"
)

type RecommendationRequest struct {
	PredominantEmotionLabel string `json:"emotion"`
}

// Recommendation is the outcome of one recommendation request. On failure Text is empty,
// ErrorCategory is set and FallbackPrompt carries the manual prompt when a label was given.
type Recommendation struct {
	Success        bool             `json:"success"`
	Emotion        string           `json:"emotion,omitempty"`
	Text           string           `json:"text,omitempty"`
	HTML           string           `json:"html,omitempty"`
	ErrorCategory  ErrorCategory    `json:"error_category,omitempty"`
	Message        string           `json:"message,omitempty"`
	FallbackPrompt string           `json:"fallback_prompt,omitempty"`
	StaticGuidance []StaticGuidance `json:"static_guidance,omitempty"`
}

// StaticGuidance is a canned tip shown when the LLM path is unavailable.
type StaticGuidance struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}
