package models

// CurrentStatus is the snapshot of the artist the prediction was computed from.
type CurrentStatus struct {
	TotalSongs      int     `json:"total_songs"`
	HitRate         float64 `json:"hit_rate"`
	CareerSpanYears float64 `json:"career_span_years"`
	TotalRevenue    float64 `json:"total_revenue"`
	PrimaryGenre    string  `json:"primary_genre"`
}

// Forecast holds the model output for an artist's next release.
type Forecast struct {
	HitProbability      float64   `json:"hit_probability"`
	PredictedPopularity float64   `json:"predicted_popularity"`
	PredictedTier       Tier      `json:"predicted_tier"`
	ConfidenceInterval  []float64 `json:"confidence_interval,omitempty"`
	HotnessScore        float64   `json:"hotness_score"`
	Recommendation      string    `json:"recommendation"`
}

// ConfidenceBounds returns the interval as (low, high), or ok=false when it is missing or malformed.
func (f Forecast) ConfidenceBounds() (low, high float64, ok bool) {
	if len(f.ConfidenceInterval) != 2 {
		return 0, 0, false
	}
	return f.ConfidenceInterval[0], f.ConfidenceInterval[1], true
}

// Prediction is one entry of the predictions payload, keyed by artist name.
type Prediction struct {
	CurrentStatus CurrentStatus `json:"current_status"`
	Forecast      Forecast      `json:"predictions"`
	Timestamp     string        `json:"timestamp"`
}
