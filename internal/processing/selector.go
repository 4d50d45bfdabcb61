package processing

import (
	"errors"

	"github.com/spacesedan/emotisense/internal/models"
)

var ErrNoEmotionDetected = errors.New("no emotion detected")

// Predominant returns the highest-confidence score. Scores are already sorted with ties in
// arrival order, so the first entry is the answer.
func Predominant(result models.EmotionResult) (models.EmotionScore, error) {
	if len(result.Scores) == 0 {
		return models.EmotionScore{}, ErrNoEmotionDetected
	}
	return result.Scores[0], nil
}
