// package formatter renders artist table rows to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists the supported export formats.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or one of its aliases ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("%w: %q (want csv, markdown, txt or json)", shared.ErrUnknownFormat, s)
	}
}

// Ext returns the file extension written for f.
func (f Format) Ext() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

var csvHeaders = []string{
	"Name", "Genre", "Songs", "Hit Rate", "Revenue", "Predicted Tier", "Hit Probability", "Hotness",
}

func optional(row models.CombinedArtist, v float64) string {
	if !row.HasPrediction() {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// ExportToCSV converts rows to CSV with one header line. Prediction columns are blank for unpredicted artists.
func ExportToCSV(rows []models.CombinedArtist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Name,
			row.PrimaryGenre,
			strconv.Itoa(row.TotalSongs),
			strconv.FormatFloat(row.HitRate, 'f', 1, 64),
			strconv.FormatFloat(row.EstimatedTotalRevenue, 'f', 2, 64),
			string(row.PredictedTier()),
			optional(row, row.HitProbability()),
			optional(row, row.Hotness()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func tierCell(row models.CombinedArtist) string {
	if !row.HasPrediction() || row.PredictedTier() == models.TierUnknown {
		return shared.NotAvailable
	}
	return string(row.PredictedTier())
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToMarkdown renders rows as a Markdown table. Names link to Spotify when infos holds a match.
func ExportToMarkdown(title string, rows []models.CombinedArtist, infos map[string]models.ArtistInfo) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Artists**: %d\n\n", len(rows)))

	buf.WriteString("| # | Artist | Genre | Songs | Hit Rate | Revenue | Tier | Hit Prob. |\n")
	buf.WriteString("|---|---|---|---:|---:|---:|---|---:|\n")
	for i, row := range rows {
		name := escapeCell(row.Name)
		if info, ok := infos[row.Name]; ok && info.Found && info.SpotifyURL != "" {
			name = fmt.Sprintf("[%s](%s)", name, info.SpotifyURL)
		}
		prob := shared.NotAvailable
		if row.HasPrediction() {
			prob = shared.FormatPercent(row.HitProbability())
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %d | %s | %s | %s | %s |\n",
			i+1,
			name,
			escapeCell(row.PrimaryGenre),
			row.TotalSongs,
			shared.FormatPercent(row.HitRate),
			shared.FormatCurrency(row.EstimatedTotalRevenue),
			tierCell(row),
			prob,
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts rows to a numbered plain text listing
func ExportToText(title string, rows []models.CombinedArtist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", title))
	buf.WriteString(fmt.Sprintf("Artists: %d\n\n", len(rows)))

	for i, row := range rows {
		buf.WriteString(fmt.Sprintf("%d. %s (%s) - %d songs, %s hit rate, %s\n",
			i+1,
			row.Name,
			row.PrimaryGenre,
			row.TotalSongs,
			shared.FormatPercent(row.HitRate),
			shared.FormatCurrency(row.EstimatedTotalRevenue),
		))
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes rows as an indented JSON array, never null.
func ExportToJSON(rows []models.CombinedArtist) ([]byte, error) {
	if rows == nil {
		rows = []models.CombinedArtist{}
	}
	return shared.MarshalJSON(rows, true)
}

// TableExport describes one table to write to disk.
type TableExport struct {
	Title string
	Rows  []models.CombinedArtist
	Infos map[string]models.ArtistInfo // optional, markdown only
}

// WriteTableExport renders t in format f to {base}.{ext} and returns the written path.
func WriteTableExport(t TableExport, f Format, base string) (string, error) {
	if base == "" {
		base = "artists"
	}

	var (
		data []byte
		err  error
	)
	switch f {
	case FormatCSV:
		data, err = ExportToCSV(t.Rows)
	case FormatMarkdown:
		data, err = ExportToMarkdown(t.Title, t.Rows, t.Infos)
	case FormatText:
		data, err = ExportToText(t.Title, t.Rows)
	case FormatJSON:
		data, err = ExportToJSON(t.Rows)
	default:
		return "", fmt.Errorf("%w: %q", shared.ErrUnknownFormat, f)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	path := base + "." + f.Ext()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// Manifest summarises one export run.
type Manifest struct {
	Format     Format    `json:"format"`
	Title      string    `json:"title"`
	Query      string    `json:"query,omitempty"`
	TotalRows  int       `json:"total_rows"`
	Predicted  int       `json:"predicted_rows"`
	Files      []string  `json:"files"`
	ExportedAt time.Time `json:"exported_at"`
}

// NewManifest counts rows and predicted rows for a manifest. File paths are stored relative to dir.
func NewManifest(f Format, t TableExport, query, dir string, files []string) Manifest {
	m := Manifest{
		Format:     f,
		Title:      t.Title,
		Query:      query,
		TotalRows:  len(t.Rows),
		Files:      make([]string, 0, len(files)),
		ExportedAt: time.Now().UTC(),
	}
	for _, row := range t.Rows {
		if row.HasPrediction() {
			m.Predicted++
		}
	}
	for _, file := range files {
		if rel, err := filepath.Rel(dir, file); err == nil {
			file = rel
		}
		m.Files = append(m.Files, file)
	}
	return m
}

// WriteManifest writes m as indented JSON to path
func WriteManifest(m Manifest, path string) error {
	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
