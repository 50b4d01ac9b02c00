package ui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
)

// columns follow [pipeline.SortKeys] after the row number and genre, so hotkeys 1-7
// line up with the sortable headers.
var columns = []struct {
	title string
	width int
	key   pipeline.SortKey
}{
	{"#", 4, ""},
	{"Artist", 24, pipeline.SortName},
	{"Genre", 12, ""},
	{"Songs", 6, pipeline.SortSongs},
	{"Hit Rate", 9, pipeline.SortHitRate},
	{"Revenue", 14, pipeline.SortRevenue},
	{"Tier", 6, pipeline.SortTier},
	{"Hit Prob", 9, pipeline.SortHitProbability},
	{"Hotness", 8, pipeline.SortHotness},
}

// tableColumns builds headers, marking the active sort column with an arrow.
func tableColumns(key pipeline.SortKey, dir pipeline.Direction) []table.Column {
	out := make([]table.Column, len(columns))
	for i, c := range columns {
		title := c.title
		if c.key != "" && c.key == key {
			if dir == pipeline.Ascending {
				title += " ▲"
			} else {
				title += " ▼"
			}
		}
		out[i] = table.Column{Title: title, Width: c.width}
	}
	return out
}

// tableRows renders one page. Row numbers continue across pages.
func tableRows(page pipeline.Page) []table.Row {
	offset := (page.Number - 1) * pipeline.PageSize
	rows := make([]table.Row, len(page.Items))
	for i, a := range page.Items {
		rows[i] = table.Row{
			strconv.Itoa(offset + i + 1),
			a.Name,
			a.PrimaryGenre,
			strconv.Itoa(a.TotalSongs),
			shared.FormatPercent(a.HitRate),
			shared.FormatCurrency(a.EstimatedTotalRevenue),
			tierLabel(a.PredictedTier()),
			predicted(a, a.HitProbability()),
			predicted(a, a.Hotness()),
		}
	}
	return rows
}

func predicted(a models.CombinedArtist, v float64) string {
	if !a.HasPrediction() {
		return shared.NotAvailable
	}
	return fmt.Sprintf("%.1f", v)
}

func tierLabel(t models.Tier) string {
	if t == models.TierUnknown {
		return "-"
	}
	return string(t)
}

// nextTier cycles any → hit → good → mid → bust → any.
func nextTier(t models.Tier) models.Tier {
	if t == models.TierUnknown {
		return models.Tiers[0]
	}
	for i, known := range models.Tiers {
		if known == t && i+1 < len(models.Tiers) {
			return models.Tiers[i+1]
		}
	}
	return models.TierUnknown
}

// nextGenre cycles "" → genres[0] → … → "".
func nextGenre(current string, genres []string) string {
	if current == "" {
		if len(genres) == 0 {
			return ""
		}
		return genres[0]
	}
	for i, g := range genres {
		if g == current && i+1 < len(genres) {
			return genres[i+1]
		}
	}
	return ""
}
