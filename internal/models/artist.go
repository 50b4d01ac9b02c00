package models

import "strings"

// Tier is a song or predicted-artist performance bucket.
type Tier string

const (
	TierHit     Tier = "hit"
	TierGood    Tier = "good"
	TierMid     Tier = "mid"
	TierBust    Tier = "bust"
	TierUnknown Tier = ""
)

// Tiers lists the known tiers from best to worst.
var Tiers = []Tier{TierHit, TierGood, TierMid, TierBust}

// Rank orders tiers for sorting: hit=4, good=3, mid=2, bust=1, anything else 0.
func (t Tier) Rank() int {
	switch Tier(strings.ToLower(string(t))) {
	case TierHit:
		return 4
	case TierGood:
		return 3
	case TierMid:
		return 2
	case TierBust:
		return 1
	default:
		return 0
	}
}

// ParseTier normalises s into a known tier, or TierUnknown.
func ParseTier(s string) Tier {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	if t.Rank() == 0 {
		return TierUnknown
	}
	return t
}

// Song is one track inside an artist record.
type Song struct {
	Title       string  `json:"title"`
	Popularity  float64 `json:"popularity"`
	Tier        Tier    `json:"tier"`
	Revenue     float64 `json:"revenue"`
	ReleaseDate string  `json:"release_date"`
}

// Artist is the precomputed analytics record for one artist. Name is the join key.
type Artist struct {
	Name string `json:"name"`

	TotalSongs int `json:"total_songs"`
	HitSongs   int `json:"hit_songs"`
	GoodSongs  int `json:"good_songs"`
	MidSongs   int `json:"mid_songs"`
	BustSongs  int `json:"bust_songs"`

	HitRate  float64 `json:"hit_rate"`
	GoodRate float64 `json:"good_rate"`
	MidRate  float64 `json:"mid_rate"`
	BustRate float64 `json:"bust_rate"`

	EstimatedTotalRevenue float64 `json:"estimated_total_revenue"`
	AvgRevenuePerSong     float64 `json:"avg_revenue_per_song"`

	PrimaryGenre        string         `json:"primary_genre"`
	GenreDistribution   map[string]int `json:"genre_distribution,omitempty"`
	ExplicitRatio       float64        `json:"explicit_ratio"`
	FirstRelease        string         `json:"first_release"`
	LastRelease         string         `json:"last_release"`
	CareerSpanYears     float64        `json:"career_span_years"`
	AvgEnergy           float64        `json:"avg_energy"`
	AvgDanceability     float64        `json:"avg_danceability"`
	AvgPositiveness     float64        `json:"avg_positiveness"`
	AvgSpeechiness      float64        `json:"avg_speechiness"`
	AvgLiveness         float64        `json:"avg_liveness"`
	AvgAcousticness     float64        `json:"avg_acousticness"`
	AvgInstrumentalness float64        `json:"avg_instrumentalness"`

	Songs []Song `json:"songs,omitempty"`
}

// CombinedArtist is an artist joined with its prediction. Prediction is nil when the
// predictions payload has no entry for the artist.
type CombinedArtist struct {
	Artist
	Prediction *Prediction `json:"prediction"`
}

// HasPrediction reports whether a prediction was joined.
func (c CombinedArtist) HasPrediction() bool { return c.Prediction != nil }

// PredictedTier returns the predicted tier, or TierUnknown without a prediction.
func (c CombinedArtist) PredictedTier() Tier {
	if c.Prediction == nil {
		return TierUnknown
	}
	return c.Prediction.Forecast.PredictedTier
}

// HitProbability returns the predicted hit probability (0-100), or 0 without a prediction.
func (c CombinedArtist) HitProbability() float64 {
	if c.Prediction == nil {
		return 0
	}
	return c.Prediction.Forecast.HitProbability
}

// Hotness returns the predicted hotness score, or 0 without a prediction.
func (c CombinedArtist) Hotness() float64 {
	if c.Prediction == nil {
		return 0
	}
	return c.Prediction.Forecast.HotnessScore
}
