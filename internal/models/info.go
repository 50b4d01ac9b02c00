package models

import (
	"fmt"
	"strings"
	"time"
)

const notAvailable = "N/A"

// ArtistInfo is the display projection of a Spotify artist. Empty ImageURL and
// SpotifyURL mean "none"; textual fields fall back to "N/A".
type ArtistInfo struct {
	Name       string `json:"name"`
	ImageURL   string `json:"image"`
	Followers  string `json:"followers"`
	Popularity string `json:"popularity"`
	Genres     string `json:"genres"`
	SpotifyURL string `json:"spotify_url"`
	Found      bool   `json:"found"`
}

// DefaultArtistInfo is the record returned when no Spotify match exists.
func DefaultArtistInfo(name string) ArtistInfo {
	return ArtistInfo{
		Name:       name,
		Followers:  notAvailable,
		Popularity: notAvailable,
		Genres:     notAvailable,
	}
}

// GenreList splits Genres back into tags.
func (i ArtistInfo) GenreList() []string {
	if i.Genres == "" || i.Genres == notAvailable {
		return nil
	}
	return strings.Split(i.Genres, ", ")
}

// CachedInfo is a persisted [ArtistInfo].
type CachedInfo struct {
	Record
	info ArtistInfo
}

// NewCachedInfo wraps info for persistence.
func NewCachedInfo(sequence int, info ArtistInfo) *CachedInfo {
	return &CachedInfo{Record: newRecord(sequence), info: info}
}

func (c *CachedInfo) Info() ArtistInfo        { return c.info }
func (c *CachedInfo) Name() string            { return c.info.Name }
func (c *CachedInfo) SetInfo(info ArtistInfo) { c.info = info }

// Validate requires a name and non-empty display fields.
func (c *CachedInfo) Validate() error {
	if strings.TrimSpace(c.info.Name) == "" {
		return fmt.Errorf("artist name is required")
	}
	if c.info.Followers == "" || c.info.Popularity == "" || c.info.Genres == "" {
		return fmt.Errorf("display fields must be set for %q", c.info.Name)
	}
	return nil
}

// RunStatus is the lifecycle state of an [EnrichmentRun].
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// EnrichmentRun records one cache warm-up pass.
type EnrichmentRun struct {
	Record
	status       RunStatus
	total        int
	found        int
	missing      int
	errorMessage string
	startedAt    time.Time
	completedAt  *time.Time
}

// NewEnrichmentRun creates a pending run over total artists.
func NewEnrichmentRun(sequence, total int) *EnrichmentRun {
	return &EnrichmentRun{
		Record:    newRecord(sequence),
		status:    RunPending,
		total:     total,
		startedAt: time.Now(),
	}
}

func (r *EnrichmentRun) Status() RunStatus         { return r.status }
func (r *EnrichmentRun) SetStatus(s RunStatus)     { r.status = s }
func (r *EnrichmentRun) Total() int                { return r.total }
func (r *EnrichmentRun) Found() int                { return r.found }
func (r *EnrichmentRun) Missing() int              { return r.missing }
func (r *EnrichmentRun) ErrorMessage() string      { return r.errorMessage }
func (r *EnrichmentRun) StartedAt() time.Time      { return r.startedAt }
func (r *EnrichmentRun) SetStartedAt(t time.Time)  { r.startedAt = t }
func (r *EnrichmentRun) CompletedAt() *time.Time   { return r.completedAt }

// SetCounts records how many lookups matched and how many came back empty.
func (r *EnrichmentRun) SetCounts(found, missing int) { r.found, r.missing = found, missing }

// Complete marks the run finished, failed when err is non-nil.
func (r *EnrichmentRun) Complete(err error) {
	now := time.Now()
	r.completedAt = &now
	r.status = RunCompleted
	if err != nil {
		r.status = RunFailed
		r.errorMessage = err.Error()
	}
}

// Restore sets the fields read back from storage.
func (r *EnrichmentRun) Restore(status RunStatus, total, found, missing int, errMsg string, completedAt *time.Time) {
	r.status, r.total, r.found, r.missing = status, total, found, missing
	r.errorMessage = errMsg
	r.completedAt = completedAt
}

// Validate checks status and counts.
func (r *EnrichmentRun) Validate() error {
	switch r.status {
	case RunPending, RunRunning, RunCompleted, RunFailed:
	default:
		return fmt.Errorf("invalid run status %q", r.status)
	}
	if r.total < 0 || r.found < 0 || r.missing < 0 {
		return fmt.Errorf("run counts must be non-negative")
	}
	if r.found+r.missing > r.total {
		return fmt.Errorf("found + missing exceeds total")
	}
	return nil
}
