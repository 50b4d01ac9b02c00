package analytics

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// Explorer answers ad-hoc questions about the combined dataset.
type Explorer struct {
	rows []models.CombinedArtist
}

// NewExplorer creates an explorer over rows. rows is treated as read-only.
func NewExplorer(rows []models.CombinedArtist) *Explorer {
	return &Explorer{rows: rows}
}

// Lookup returns the artist with exactly this name.
func (e *Explorer) Lookup(name string) (models.CombinedArtist, bool) {
	for _, r := range e.rows {
		if r.Name == name {
			return r, true
		}
	}
	return models.CombinedArtist{}, false
}

// FindArtists returns artists whose name contains q (case-insensitive), ordered by name.
func (e *Explorer) FindArtists(q string) []models.CombinedArtist {
	q = strings.ToLower(strings.TrimSpace(q))
	var out []models.CombinedArtist
	for _, r := range e.rows {
		if strings.Contains(strings.ToLower(r.Name), q) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b models.CombinedArtist) int { return strings.Compare(a.Name, b.Name) })
	return out
}

// Resolve finds an artist by exact name, or by a partial match when only one artist matches.
func (e *Explorer) Resolve(name string) (models.CombinedArtist, error) {
	if r, ok := e.Lookup(name); ok {
		return r, nil
	}

	matches := e.FindArtists(name)
	switch len(matches) {
	case 0:
		return models.CombinedArtist{}, fmt.Errorf("%w: %q", shared.ErrArtistNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return models.CombinedArtist{}, fmt.Errorf("%w: %q matches %d artists", shared.ErrInvalidArgument, name, len(matches))
	}
}

// Metric extracts a numeric column for ranking.
type Metric func(models.Artist) float64

var metrics = map[string]Metric{
	"revenue":      func(a models.Artist) float64 { return a.EstimatedTotalRevenue },
	"hit_rate":     func(a models.Artist) float64 { return a.HitRate },
	"hits":         func(a models.Artist) float64 { return float64(a.HitSongs) },
	"songs":        func(a models.Artist) float64 { return float64(a.TotalSongs) },
	"career":       func(a models.Artist) float64 { return a.CareerSpanYears },
	"energy":       func(a models.Artist) float64 { return a.AvgEnergy },
	"danceability": func(a models.Artist) float64 { return a.AvgDanceability },
}

// MetricNames lists the accepted ranking metrics.
func MetricNames() []string {
	names := []string{"money"}
	for k := range metrics {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// ParseMetric resolves a metric name or alias.
func ParseMetric(name string) (Metric, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "money" {
		key = "revenue"
	}
	m, ok := metrics[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown metric %q (want one of %s)", shared.ErrInvalidArgument, name, strings.Join(MetricNames(), ", "))
	}
	return m, nil
}

// TopBy returns the n artists with the highest metric among those with at least
// minSongs songs. n <= 0 returns every eligible artist.
func (e *Explorer) TopBy(metric string, n, minSongs int) ([]models.CombinedArtist, error) {
	m, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}

	var out []models.CombinedArtist
	for _, r := range e.rows {
		if r.TotalSongs >= minSongs {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b models.CombinedArtist) int { return cmp.Compare(m(b.Artist), m(a.Artist)) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Compare resolves each name and returns the matched artists in argument order, along
// with the names that could not be resolved.
func (e *Explorer) Compare(names ...string) ([]models.CombinedArtist, []string) {
	var found []models.CombinedArtist
	var missing []string
	for _, n := range names {
		r, err := e.Resolve(n)
		if err != nil {
			missing = append(missing, n)
			continue
		}
		found = append(found, r)
	}
	return found, missing
}

// GenreStats aggregates artists sharing a primary genre.
type GenreStats struct {
	Genre               string  `json:"genre"`
	Artists             int     `json:"artists"`
	TotalSongs          int     `json:"total_songs"`
	TotalHits           int     `json:"total_hits"`
	TotalRevenue        float64 `json:"total_revenue"`
	AvgHitRate          float64 `json:"avg_hit_rate"`
	AvgRevenuePerArtist float64 `json:"avg_revenue_per_artist"`
}

// GenreAnalysis groups artists by primary genre, ordered by total revenue descending.
// Artists without a genre are skipped.
func (e *Explorer) GenreAnalysis() []GenreStats {
	byGenre := map[string]*GenreStats{}
	for _, r := range e.rows {
		if r.PrimaryGenre == "" {
			continue
		}
		s, ok := byGenre[r.PrimaryGenre]
		if !ok {
			s = &GenreStats{Genre: r.PrimaryGenre}
			byGenre[r.PrimaryGenre] = s
		}
		s.Artists++
		s.TotalSongs += r.TotalSongs
		s.TotalHits += r.HitSongs
		s.TotalRevenue += r.EstimatedTotalRevenue
		s.AvgHitRate += r.HitRate
	}

	out := make([]GenreStats, 0, len(byGenre))
	for _, s := range byGenre {
		s.AvgHitRate /= float64(s.Artists)
		s.AvgRevenuePerArtist = s.TotalRevenue / float64(s.Artists)
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b GenreStats) int {
		if c := cmp.Compare(b.TotalRevenue, a.TotalRevenue); c != 0 {
			return c
		}
		return strings.Compare(a.Genre, b.Genre)
	})
	return out
}

// CareerStage is a bucket of career length.
type CareerStage string

const (
	StageNew         CareerStage = "New (0-2 years)"
	StageEmerging    CareerStage = "Emerging (2-5 years)"
	StageEstablished CareerStage = "Established (5-10 years)"
	StageVeteran     CareerStage = "Veteran (10+ years)"
)

// CareerStages lists stages from newest to oldest.
var CareerStages = []CareerStage{StageNew, StageEmerging, StageEstablished, StageVeteran}

// StageFor buckets a career span in years.
func StageFor(years float64) CareerStage {
	switch {
	case years <= 2:
		return StageNew
	case years <= 5:
		return StageEmerging
	case years <= 10:
		return StageEstablished
	default:
		return StageVeteran
	}
}

// StageStats aggregates one career stage. Averages are zero for an empty stage.
type StageStats struct {
	Stage      CareerStage `json:"stage"`
	Count      int         `json:"count"`
	AvgHitRate float64     `json:"avg_hit_rate"`
	AvgSongs   float64     `json:"avg_songs"`
	AvgRevenue float64     `json:"avg_revenue"`
}

// CareerStages reports every stage in order, including empty ones.
func (e *Explorer) CareerStages() []StageStats {
	idx := make(map[CareerStage]int, len(CareerStages))
	out := make([]StageStats, len(CareerStages))
	for i, s := range CareerStages {
		idx[s] = i
		out[i].Stage = s
	}

	for _, r := range e.rows {
		s := &out[idx[StageFor(r.CareerSpanYears)]]
		s.Count++
		s.AvgHitRate += r.HitRate
		s.AvgSongs += float64(r.TotalSongs)
		s.AvgRevenue += r.EstimatedTotalRevenue
	}
	for i := range out {
		if n := float64(out[i].Count); n > 0 {
			out[i].AvgHitRate /= n
			out[i].AvgSongs /= n
			out[i].AvgRevenue /= n
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Summary computes dataset-wide totals, rounded to cents and hundredths.
func (e *Explorer) Summary() models.Summary {
	s := models.Summary{TotalArtists: len(e.rows)}
	if len(e.rows) == 0 {
		return s
	}

	rates := make([]float64, 0, len(e.rows))
	var revenue, rateSum float64
	for _, r := range e.rows {
		s.TotalSongs += r.TotalSongs
		revenue += r.EstimatedTotalRevenue
		rates = append(rates, r.HitRate)
		rateSum += r.HitRate
	}
	n := float64(len(e.rows))
	s.TotalEstimatedRevenue = round2(revenue)
	s.AvgSongsPerArtist = round2(float64(s.TotalSongs) / n)
	s.AvgRevenuePerArtist = round2(revenue / n)
	s.AvgHitRate = round2(rateSum / n)

	slices.Sort(rates)
	mid := len(rates) / 2
	if len(rates)%2 == 1 {
		s.MedianHitRate = round2(rates[mid])
	} else {
		s.MedianHitRate = round2((rates[mid-1] + rates[mid]) / 2)
	}
	return s
}

// RisingStars returns artists with a song count in [minSongs, maxSongs], a career under
// five years, hit probability above 30 and hotness above 40, ordered by hotness.
func (e *Explorer) RisingStars(minSongs, maxSongs int) []models.CombinedArtist {
	var out []models.CombinedArtist
	for _, r := range e.rows {
		if !r.HasPrediction() || r.TotalSongs < minSongs || r.TotalSongs > maxSongs {
			continue
		}
		if r.HitProbability() > 30 && r.Hotness() > 40 && r.CareerSpanYears < 5 {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b models.CombinedArtist) int { return cmp.Compare(b.Hotness(), a.Hotness()) })
	return out
}

// TopPredicted returns the n artists with the highest predicted hit probability.
func (e *Explorer) TopPredicted(n int) []models.CombinedArtist {
	var out []models.CombinedArtist
	for _, r := range e.rows {
		if r.HasPrediction() {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b models.CombinedArtist) int {
		return cmp.Compare(b.HitProbability(), a.HitProbability())
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
