package pipeline

import (
	"slices"
	"strings"

	"github.com/desertthunder/hitscope/internal/models"
)

// Join attaches the prediction with the same key to every artist. Artists without an
// entry get a nil prediction. Rows come back in artist-name order.
func Join(artists map[string]models.Artist, predictions map[string]*models.Prediction) []models.CombinedArtist {
	keys := make([]string, 0, len(artists))
	for k := range artists {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rows := make([]models.CombinedArtist, 0, len(keys))
	for _, k := range keys {
		a := artists[k]
		if a.Name == "" {
			a.Name = k
		}
		rows = append(rows, models.CombinedArtist{Artist: a, Prediction: predictions[k]})
	}
	return rows
}

// Genres returns the distinct primary genres present in rows, sorted.
func Genres(rows []models.CombinedArtist) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		g := strings.TrimSpace(r.PrimaryGenre)
		if g == "" {
			continue
		}
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}
