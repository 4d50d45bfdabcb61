package processing

import (
	"bytes"
	"cmp"
	"encoding/json"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/spacesedan/emotisense/internal/models"
	"github.com/tidwall/gjson"
)

// labelRecordIndex is where the label/confidence record sits in array-shaped replies.
const labelRecordIndex = "2"

// Normalize turns a raw inference reply into an EmotionResult. It never fails: payloads
// that match no known shape yield an empty result.
//
// Recognized shapes, first match wins:
//
//	[_, _, {"label": "Happy", "confidences": [{"confidence": 0.91}]}]
//	{"Happy": 0.5, "Sad": "0.3"}  or  [{"Happy": 0.5, "Sad": "0.3"}]
func Normalize(raw []byte) models.EmotionResult {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		slog.Debug("[Normalizer] Empty or invalid payload", getPreview(trimmed))
		return emptyResult()
	}

	root := gjson.ParseBytes(trimmed)

	if score, ok := fromLabelRecord(root); ok {
		return buildResult([]models.EmotionScore{score}, models.ShapeLabelConfidence)
	}

	if scores, ok := fromKeyedMapping(root); ok {
		return buildResult(scores, models.ShapeKeyedMapping)
	}

	slog.Debug("[Normalizer] Unrecognized payload shape", getPreview(trimmed))
	return emptyResult()
}

// NormalizeValue normalizes an already decoded payload. Decoded Go maps do not keep key
// order, so ties between equal confidences follow the sorted key order json.Marshal emits.
func NormalizeValue(v any) models.EmotionResult {
	if v == nil {
		return emptyResult()
	}
	raw, err := json.Marshal(v)
	if err != nil {
		slog.Debug("[Normalizer] Failed to marshal decoded payload",
			slog.String("error", err.Error()))
		return emptyResult()
	}
	return Normalize(raw)
}

func fromLabelRecord(root gjson.Result) (models.EmotionScore, bool) {
	if !root.IsArray() {
		return models.EmotionScore{}, false
	}

	record := root.Get(labelRecordIndex)
	if !record.IsObject() {
		return models.EmotionScore{}, false
	}

	label := record.Get("label")
	if label.Type != gjson.String || strings.TrimSpace(label.Str) == "" {
		return models.EmotionScore{}, false
	}

	first := record.Get("confidences.0")
	if !first.IsObject() {
		return models.EmotionScore{}, false
	}
	confidence := first.Get("confidence")
	if !confidence.Exists() {
		return models.EmotionScore{}, false
	}

	return models.EmotionScore{
		Label:      strings.TrimSpace(label.Str),
		Confidence: parseConfidence(confidence),
	}, true
}

func fromKeyedMapping(root gjson.Result) ([]models.EmotionScore, bool) {
	mapping := root
	if root.IsArray() {
		mapping = root.Get("0")
	}
	if !mapping.IsObject() {
		return nil, false
	}

	scores := make([]models.EmotionScore, 0)
	mapping.ForEach(func(key, value gjson.Result) bool {
		label := strings.TrimSpace(key.String())
		if label == "" {
			return true
		}
		scores = append(scores, models.EmotionScore{
			Label:      label,
			Confidence: parseConfidence(value),
		})
		return true
	})

	return scores, true
}

// parseConfidence reads a numeric or string-encoded confidence. Anything it cannot read
// resolves to zero instead of failing the whole payload.
func parseConfidence(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return clampConfidence(v.Num)
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			slog.Debug("[Normalizer] Unparsable confidence, defaulting to zero",
				slog.String("value", v.Str))
			return 0
		}
		if percent {
			f = f / 100
		}
		return clampConfidence(f)
	default:
		return 0
	}
}

// clampConfidence keeps confidences in [0,1]. Values in (1,100] arrived as percentages.
func clampConfidence(f float64) float64 {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0) || f <= 0:
		return 0
	case f <= 1:
		return f
	case f <= 100:
		return f / 100
	default:
		return 1
	}
}

func buildResult(scores []models.EmotionScore, shape models.ResponseShape) models.EmotionResult {
	slices.SortStableFunc(scores, func(a, b models.EmotionScore) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})

	result := models.EmotionResult{
		Scores: scores,
		Shape:  shape,
	}
	if len(scores) > 0 {
		top := scores[0]
		result.Predominant = &top
	}
	return result
}

func emptyResult() models.EmotionResult {
	return models.EmotionResult{
		Scores: []models.EmotionScore{},
		Shape:  models.ShapeUnrecognized,
	}
}

func getPreview(raw []byte) slog.Attr {
	s := string(raw)
	if len(s) > 50 {
		s = s[:50]
	}
	return slog.String("raw_payload", s)
}
