package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func optional(a models.CombinedArtist, v float64) string {
	if !a.HasPrediction() {
		return shared.NotAvailable
	}
	return fmt.Sprintf("%.1f", v)
}

func tierCell(a models.CombinedArtist) string {
	if !a.HasPrediction() {
		return shared.NotAvailable
	}
	return string(a.PredictedTier())
}

// renderArtists draws rows as a table numbered from offset+1.
func renderArtists(rows []models.CombinedArtist, offset int) string {
	t := newTable("#", "Artist", "Genre", "Songs", "Hit Rate", "Revenue", "Tier", "Hit Prob", "Hotness")
	for i, a := range rows {
		t.Row(
			strconv.Itoa(offset+i+1),
			a.Name,
			a.PrimaryGenre,
			strconv.Itoa(a.TotalSongs),
			shared.FormatPercent(a.HitRate),
			shared.FormatCurrency(a.EstimatedTotalRevenue),
			tierCell(a),
			optional(a, a.HitProbability()),
			optional(a, a.Hotness()),
		)
	}
	return t.String()
}
