package models

// Summary holds dataset-wide totals, as emitted next to the artists map and as
// recomputed by the explorer.
type Summary struct {
	TotalArtists          int     `json:"total_artists"`
	TotalSongs            int     `json:"total_songs"`
	TotalEstimatedRevenue float64 `json:"total_estimated_revenue"`
	AvgSongsPerArtist     float64 `json:"avg_songs_per_artist"`
	AvgRevenuePerArtist   float64 `json:"avg_revenue_per_artist"`
	AvgHitRate            float64 `json:"avg_hit_rate"`
	MedianHitRate         float64 `json:"median_hit_rate"`
}
