package pipeline

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// SortKey names a sortable column.
type SortKey string

const (
	SortName           SortKey = "name"
	SortSongs          SortKey = "songs"
	SortHitRate        SortKey = "hit_rate"
	SortRevenue        SortKey = "revenue"
	SortTier           SortKey = "tier"
	SortHitProbability SortKey = "hit_probability"
	SortHotness        SortKey = "hotness"
)

// SortKeys lists every key in column order.
var SortKeys = []SortKey{SortName, SortSongs, SortHitRate, SortRevenue, SortTier, SortHitProbability, SortHotness}

// ParseSortKey accepts a key name or one of its short aliases.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "artist":
		return SortName, nil
	case "songs", "total_songs":
		return SortSongs, nil
	case "hit_rate", "hitrate", "rate":
		return SortHitRate, nil
	case "revenue", "money":
		return SortRevenue, nil
	case "tier", "predicted_tier":
		return SortTier, nil
	case "hit_probability", "probability", "prob":
		return SortHitProbability, nil
	case "hotness", "hot":
		return SortHotness, nil
	}
	return "", fmt.Errorf("%w: unknown sort key %q", shared.ErrInvalidArgument, s)
}

// DefaultDirection is the direction a key starts in when first selected.
func (k SortKey) DefaultDirection() Direction {
	if k == SortName {
		return Ascending
	}
	return Descending
}

// Direction is a sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts asc/desc (any case). Empty means the key's default.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("%w: unknown sort direction %q", shared.ErrInvalidArgument, s)
}

// Toggle flips the direction.
func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

func compareBy(key SortKey) func(a, b models.CombinedArtist) int {
	switch key {
	case SortSongs:
		return func(a, b models.CombinedArtist) int { return cmp.Compare(a.TotalSongs, b.TotalSongs) }
	case SortHitRate:
		return func(a, b models.CombinedArtist) int { return cmp.Compare(a.HitRate, b.HitRate) }
	case SortRevenue:
		return func(a, b models.CombinedArtist) int {
			return cmp.Compare(a.EstimatedTotalRevenue, b.EstimatedTotalRevenue)
		}
	case SortTier:
		return func(a, b models.CombinedArtist) int {
			return cmp.Compare(a.PredictedTier().Rank(), b.PredictedTier().Rank())
		}
	case SortHitProbability:
		return func(a, b models.CombinedArtist) int { return cmp.Compare(a.HitProbability(), b.HitProbability()) }
	case SortHotness:
		return func(a, b models.CombinedArtist) int { return cmp.Compare(a.Hotness(), b.Hotness()) }
	default:
		return func(a, b models.CombinedArtist) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	}
}

// Sort returns a stably sorted copy of rows. Equal keys keep their input order in both
// directions.
func Sort(rows []models.CombinedArtist, key SortKey, dir Direction) []models.CombinedArtist {
	out := append([]models.CombinedArtist(nil), rows...)
	compare := compareBy(key)
	if dir == Descending {
		slices.SortStableFunc(out, func(a, b models.CombinedArtist) int { return compare(b, a) })
	} else {
		slices.SortStableFunc(out, compare)
	}
	return out
}
