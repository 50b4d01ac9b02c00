package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/desertthunder/hitscope/internal/formatter"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// ExportOpts contains configuration for table exports.
type ExportOpts struct {
	Format      formatter.Format // Export format: json, csv, markdown, txt
	OutputDir   string           // Output directory (default: hitscope_export_{epoch})
	Title       string           // Heading for markdown and text output
	Query       string           // Human-readable description of the filters, recorded in the manifest
	WithSpotify bool             // Link names to Spotify using already cached lookups
}

// ExportResult lists what an export wrote.
type ExportResult struct {
	Format          formatter.Format
	OutputDirectory string
	Files           []string
	ManifestPath    string
	Rows            int
}

// Export writes rows in the requested format plus an export_manifest.json into opts.OutputDir.
//
// Spotify links only use entries already in the cache: exporting never triggers lookups.
func (e *Engine) Export(ctx context.Context, rows []models.CombinedArtist, opts ExportOpts, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no artists match the current filters", shared.ErrEmptySelection)
	}
	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("hitscope_export_%d", time.Now().Unix())
	}
	if opts.Title == "" {
		opts.Title = "Artists"
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	table := formatter.TableExport{Title: opts.Title, Rows: rows}
	if opts.WithSpotify && e.cache != nil {
		table.Infos = make(map[string]models.ArtistInfo)
		for _, row := range rows {
			if info, ok := e.cache.Peek(row.Name); ok {
				table.Infos[row.Name] = info
			}
		}
	}

	e.sendProgress(progress, exportTableUpdate(opts.Format, len(rows)))
	path, err := formatter.WriteTableExport(table, opts.Format, filepath.Join(opts.OutputDir, "artists"))
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		Format:          opts.Format,
		OutputDirectory: opts.OutputDir,
		Files:           []string{path},
		Rows:            len(rows),
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	e.sendProgress(progress, exportManifestUpdate(manifestPath))
	manifest := formatter.NewManifest(opts.Format, table, opts.Query, opts.OutputDir, result.Files)
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	e.logger.Info("export written", "format", opts.Format, "rows", len(rows), "dir", opts.OutputDir)
	return result, nil
}
