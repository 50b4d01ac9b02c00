package pipeline

import (
	"strings"

	"github.com/desertthunder/hitscope/internal/models"
)

// Filter holds the table predicates. All predicates are ANDed and a field left at its
// zero value matches everything.
type Filter struct {
	Search     string      // case-insensitive substring of name or primary genre
	Genre      string      // exact primary genre
	Tier       models.Tier // exact predicted tier
	MinHitRate float64     // hit_rate >= MinHitRate
	MinRevenue float64     // estimated_total_revenue >= MinRevenue
}

// IsZero reports whether f matches every row.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether row passes every active predicate.
func (f Filter) Match(row models.CombinedArtist) bool {
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		if !strings.Contains(strings.ToLower(row.Name), term) &&
			!strings.Contains(strings.ToLower(row.PrimaryGenre), term) {
			return false
		}
	}
	if f.Genre != "" && row.PrimaryGenre != f.Genre {
		return false
	}
	if f.Tier != models.TierUnknown && row.PredictedTier() != f.Tier {
		return false
	}
	if f.MinHitRate != 0 && row.HitRate < f.MinHitRate {
		return false
	}
	if f.MinRevenue != 0 && row.EstimatedTotalRevenue < f.MinRevenue {
		return false
	}
	return true
}

// Apply returns the rows matching f, preserving order. The input is not modified.
func (f Filter) Apply(rows []models.CombinedArtist) []models.CombinedArtist {
	if f.IsZero() {
		return append([]models.CombinedArtist(nil), rows...)
	}

	out := make([]models.CombinedArtist, 0, len(rows))
	for _, r := range rows {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
