package prompts

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spacesedan/emotisense/internal/models"
)

// maxSubjectEmotions caps how many emotions the multi-emotion template describes.
const maxSubjectEmotions = 3

// SystemInstruction is sent as the system message with every recommendation request.
const SystemInstruction = "You are an experienced special education instructor who specializes in supporting " +
	"students with autism. Provide practical, actionable advice that can be immediately " +
	"implemented in an educational setting."

const singleEmotionTemplate = `I am currently working with a student living with autism and they are experiencing %s. How do I assist them as an instructor?

Please provide:
1. Specific strategies for responding to this emotional state in a student with autism
2. Communication approaches that would be most effective given this emotion
3. Potential triggers that might be causing this emotion and how to address them
4. Activities or coping mechanisms that might help regulate this emotion
5. Signs to watch for if this emotion may escalate and how to prevent that

Please format your response in clear, concise sections that are easy to understand and implement in an educational setting.`

const multiEmotionTemplate = `I'm working with a person who has autism and has shown the following emotions in a video: %s.

Please provide:
1. Specific strategies for responding to these emotional states in someone with autism
2. Communication approaches that would be most effective given these emotions
3. Potential triggers that might be causing these emotions and how to address them
4. Activities or coping mechanisms that might help regulate these emotions
5. Signs to watch for if these emotions may escalate and how to prevent that

Please format your response in clear, concise sections that are easy to understand and implement.`

// SingleEmotion renders the instructor prompt for one predominant emotion.
func SingleEmotion(label string) models.RecommendationPrompt {
	label = strings.TrimSpace(label)
	return models.RecommendationPrompt{
		Mode:            models.PromptModeSingle,
		SubjectEmotions: []models.EmotionScore{{Label: label}},
		RenderedText:    fmt.Sprintf(singleEmotionTemplate, label),
	}
}

// MultiEmotion renders the prompt describing the top emotions of a distribution.
// The input is not modified.
func MultiEmotion(scores []models.EmotionScore) models.RecommendationPrompt {
	subject := slices.Clone(scores)
	slices.SortStableFunc(subject, func(a, b models.EmotionScore) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	if len(subject) > maxSubjectEmotions {
		subject = subject[:maxSubjectEmotions]
	}
	if subject == nil {
		subject = []models.EmotionScore{}
	}

	parts := make([]string, 0, len(subject))
	for _, s := range subject {
		parts = append(parts, fmt.Sprintf("%s (%s%%)", s.Label, formatPercent(s)))
	}

	return models.RecommendationPrompt{
		Mode:            models.PromptModeMulti,
		SubjectEmotions: subject,
		RenderedText:    fmt.Sprintf(multiEmotionTemplate, strings.Join(parts, ", ")),
	}
}

// ForMode picks the template for a mode. Unknown modes fall back to the single template.
func ForMode(mode models.PromptMode, result models.EmotionResult) models.RecommendationPrompt {
	if mode == models.PromptModeMulti {
		return MultiEmotion(result.Scores)
	}
	label := ""
	if result.Predominant != nil {
		label = result.Predominant.Label
	}
	return SingleEmotion(label)
}

func formatPercent(s models.EmotionScore) string {
	return strconv.FormatFloat(s.Percent(), 'f', -1, 64)
}
