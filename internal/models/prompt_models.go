package models

// PromptMode selects which recommendation template is rendered.
type PromptMode string

const (
	PromptModeSingle PromptMode = "single"
	PromptModeMulti  PromptMode = "multi"
)

// RecommendationPrompt is a fully rendered instruction string and the emotions it describes.
type RecommendationPrompt struct {
	Mode            PromptMode     `json:"mode"`
	SubjectEmotions []EmotionScore `json:"subject_emotions"`
	RenderedText    string         `json:"rendered_text"`
}
