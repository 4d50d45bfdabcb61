package models

import "time"

type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceURL    SourceKind = "url"
)

// SourceRef identifies the media a session was created for. Results coming back from an
// inference call are only applied when their originating SourceRef is still current.
type SourceRef struct {
	Kind SourceKind `json:"kind"`
	Ref  string     `json:"ref"`
}

func (s SourceRef) IsZero() bool {
	return s.Ref == ""
}

// AnalysisSession is the hand-off state between upload, analysis and recommendation.
type AnalysisSession struct {
	ID               string         `json:"id"`
	Source           SourceRef      `json:"source"`
	Result           *EmotionResult `json:"result,omitempty"`
	PredominantLabel string         `json:"predominant_label,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
