package models

import (
	"fmt"
	"math"
)

// ResponseShape records which inference payload layout produced a result.
type ResponseShape string

const (
	ShapeLabelConfidence ResponseShape = "label-confidence"
	ShapeKeyedMapping    ResponseShape = "keyed-mapping"
	ShapeUnrecognized    ResponseShape = "unrecognized"
)

// EmotionScore is one detected emotion. Confidence is always a fraction in [0,1].
type EmotionScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Percent is the confidence on the 0-100 scale, rounded half-up to 2 decimals.
func (s EmotionScore) Percent() float64 {
	return RoundHalfUp(s.Confidence*100, 2)
}

// Rounded is the stored 2-decimal confidence, rounded half-up. Confidence keeps the raw
// fraction; use Rounded wherever a stored or reported confidence is required.
func (s EmotionScore) Rounded() float64 {
	return RoundHalfUp(s.Confidence, 2)
}

// DisplayPercent is the whole-number percentage shown next to a label.
func (s EmotionScore) DisplayPercent() int {
	return int(RoundHalfUp(s.Percent(), 0))
}

// Display renders the score the way result screens show it, e.g. "Happy — 91%".
func (s EmotionScore) Display() string {
	return fmt.Sprintf("%s — %d%%", s.Label, s.DisplayPercent())
}

// EmotionResult is the normalized outcome of a single inference call.
// Scores are sorted descending by confidence with ties kept in arrival order.
type EmotionResult struct {
	Scores      []EmotionScore `json:"scores"`
	Predominant *EmotionScore  `json:"predominant,omitempty"`
	Shape       ResponseShape  `json:"shape"`
}

// Empty reports whether nothing was detected.
func (r EmotionResult) Empty() bool {
	return len(r.Scores) == 0
}

// RoundHalfUp rounds v to the given number of decimals, halves going up.
// The small bias absorbs binary representation error (0.285*100 is 28.499999...).
func RoundHalfUp(v float64, decimals int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scale := math.Pow(10, float64(decimals))
	return math.Floor(v*scale+0.5+1e-9) / scale
}
