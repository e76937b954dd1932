// internal/models/result.go
package models

// SubScores are the per-criterion components of a recommendation, each in
// [0,1] before weighting.
type SubScores struct {
	Location     float64 `json:"location"`
	Price        float64 `json:"price"`
	Services     float64 `json:"services"`
	Features     float64 `json:"features"`
	Availability float64 `json:"availability"`
}

// RecommendationResult is one scored, explainable recommendation.
type RecommendationResult struct {
	Property  Property  `json:"property"`
	Score     float64   `json:"score"`
	SubScores SubScores `json:"subScores"`

	// NearestServiceMeters holds the distance to the closest found service
	// per required category; absent categories found nothing in range.
	NearestServiceMeters map[ServiceCategory]float64 `json:"nearestServiceMeters,omitempty"`

	// Rationale lists the human-readable reasons behind the score, in the
	// order the criteria were evaluated.
	Rationale []string `json:"rationale,omitempty"`
}
