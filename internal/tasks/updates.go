package tasks

import (
	"fmt"

	"github.com/desertthunder/hitscope/internal/formatter"
	"github.com/desertthunder/hitscope/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	EnrichStart Phase = iota
	EnrichArtist
	EnrichDone
	ExportTable
	ExportManifest
)

func (p Phase) String() string {
	switch p {
	case EnrichStart:
		return "enrich_start"
	case EnrichArtist:
		return "enrich_artist"
	case EnrichDone:
		return "enrich_done"
	case ExportTable:
		return "export_table"
	case ExportManifest:
		return "export_manifest"
	default:
		return ""
	}
}

func enrichStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichStart,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Looking up %d artists on Spotify...", total),
	}
}

func enrichArtistUpdate(step, total int, info models.ArtistInfo) ProgressUpdate {
	mark := "✓"
	if !info.Found {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   EnrichArtist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, info.Name),
		Data:    info,
	}
}

func enrichDoneUpdate(res *EnrichResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EnrichDone,
		Step:    res.Found + res.Missing,
		Total:   res.Total,
		Message: fmt.Sprintf("Enriched %d artists (%d found, %d missing)", res.Found+res.Missing, res.Found, res.Missing),
		Data:    res,
	}
}

func exportTableUpdate(f formatter.Format, rows int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportTable,
		Step:    1,
		Total:   2,
		Message: fmt.Sprintf("Writing %d artists as %s...", rows, f),
	}
}

func exportManifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportManifest,
		Step:    2,
		Total:   2,
		Message: fmt.Sprintf("Writing manifest %s", path),
	}
}
