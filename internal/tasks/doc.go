// Package tasks runs batch operations over the artist table with real-time progress reporting.
//
// # Core Operations
//
//  1. [Engine.Enrich] : Warm the Spotify info cache for a set of artists
//     - Deduplicates names and feeds a bounded worker pool through a rate limiter
//     - A lookup that finds nothing is counted as missing, never as an error
//     - Records each run as a [models.EnrichmentRun] when a [RunRecorder] is configured
//
//  2. [Engine.Export] : Write the current table to disk
//     - csv, markdown, txt or json via the formatter package
//     - Writes export_manifest.json next to the table
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default so a slow reader never stalls a run.
package tasks
