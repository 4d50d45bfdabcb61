package processing

import (
	"strings"
	"sync"

	"github.com/spacesedan/emotisense/internal/models"
)

type Category struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

const (
	CategoryPositive   = "Positive"
	CategoryNeutral    = "Neutral"
	CategoryUncertain  = "Uncertain"
	CategoryDistressed = "Distressed"
	CategoryOther      = "Other"
)

var categoryColors = map[string]string{
	CategoryPositive:   "bg-green-500",
	CategoryNeutral:    "bg-blue-500",
	CategoryUncertain:  "bg-amber-500",
	CategoryDistressed: "bg-red-500",
	CategoryOther:      "bg-gray-400",
}

// CategoryToLabels lists the lowercase label synonyms each palette category covers.
var CategoryToLabels = map[string][]string{
	CategoryPositive: {
		"happy", "happiness", "joy", "joyful", "excited", "excitement",
		"content", "pleased", "amused", "love",
	},
	CategoryNeutral: {
		"neutral", "calm", "relaxed", "focused",
	},
	CategoryUncertain: {
		"confused", "confusion", "surprise", "surprised", "bored", "boredom",
	},
	CategoryDistressed: {
		"anxious", "anxiety", "fear", "fearful", "scared", "sad", "sadness",
		"angry", "anger", "disgust", "disgusted", "frustrated", "upset", "contempt",
	},
}

var (
	labelToCategory     = make(map[string]string)
	categoryHelpersOnce sync.Once
)

func initCategoryHelpers() {
	categoryHelpersOnce.Do(func() {
		for category, labels := range CategoryToLabels {
			for _, label := range labels {
				labelToCategory[label] = category
			}
		}
	})
}

// CategoryFor maps a model label onto the display palette. Unknown labels land in
// CategoryOther, so the lookup always returns a value.
func CategoryFor(label string) Category {
	initCategoryHelpers()

	name, ok := labelToCategory[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		name = CategoryOther
	}
	return Category{Name: name, Color: categoryColors[name]}
}

// ScoreView is one row of the rendered emotion distribution.
type ScoreView struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Percentage float64 `json:"percentage"`
	Display    string  `json:"display"`
	Category   string  `json:"category"`
	Color      string  `json:"color"`
}

func ViewScores(result models.EmotionResult) []ScoreView {
	views := make([]ScoreView, 0, len(result.Scores))
	for _, score := range result.Scores {
		category := CategoryFor(score.Label)
		views = append(views, ScoreView{
			Emotion:    score.Label,
			Confidence: score.Rounded(),
			Percentage: score.Percent(),
			Display:    score.Display(),
			Category:   category.Name,
			Color:      category.Color,
		})
	}
	return views
}
