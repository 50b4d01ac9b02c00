package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/repositories"
	"github.com/desertthunder/hitscope/internal/shared"
	"github.com/desertthunder/hitscope/internal/tasks"
)

func (r *Runner) writeInfo(info models.ArtistInfo) {
	if !info.Found {
		r.writePlain("  No Spotify match for %s\n", info.Name)
		return
	}
	r.writePlain("  Name:       %s\n", info.Name)
	r.writePlain("  Followers:  %s\n", info.Followers)
	r.writePlain("  Popularity: %s\n", info.Popularity)
	r.writePlain("  Genres:     %s\n", info.Genres)
	if info.SpotifyURL != "" {
		r.writePlain("  Profile:    %s\n", info.SpotifyURL)
	}
	if info.ImageURL != "" {
		r.writePlain("  Image:      %s\n", info.ImageURL)
	}
}

// SpotifyInfo looks up one artist through the cache.
func (r *Runner) SpotifyInfo(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	sp, err := r.enrichment()
	if err != nil {
		return err
	}
	info := sp.Cache.Cached(ctx, name)

	if cmd.Bool("json") {
		return r.writeJSON(info, cmd.Bool("pretty"))
	}

	r.writePlainHeader(name)
	r.writeInfo(info)

	if cmd.Bool("open") {
		if info.SpotifyURL == "" {
			return fmt.Errorf("%w: no Spotify profile for %s", shared.ErrArtistNotFound, name)
		}
		if err := shared.OpenBrowser(info.SpotifyURL); err != nil {
			return err
		}
		r.writePlain("\n✓ Opened %s\n", info.SpotifyURL)
	}
	return nil
}

// SpotifyToken exchanges the client credentials and reports when the token will be refreshed.
// The token itself is never printed.
func (r *Runner) SpotifyToken(ctx context.Context, cmd *cli.Command) error {
	sp, err := r.enrichment()
	if err != nil {
		return err
	}

	if cmd.Bool("refresh") {
		sp.Tokens.Invalidate()
	}
	if _, ok := sp.Tokens.Token(ctx); !ok {
		return fmt.Errorf("%w: client credentials exchange failed (see log)", shared.ErrAuthFailed)
	}

	expiry := sp.Tokens.Expiry()
	r.writePlain("✓ Access token acquired\n")
	r.writePlain("Refresh after: %s (in %s)\n", expiry.Format(time.RFC3339), time.Until(expiry).Round(time.Second))
	r.writePlain("Circuit:       %s\n", sp.Client.BreakerState())
	return nil
}

// SpotifyEnrich warms the cache for one page of the filtered table.
func (r *Runner) SpotifyEnrich(ctx context.Context, cmd *cli.Command) error {
	q, err := queryFrom(cmd)
	if err != nil {
		return err
	}
	rows, err := r.table(ctx)
	if err != nil {
		return err
	}
	if _, err := r.enrichment(); err != nil {
		return err
	}
	engine, err := r.taskEngine()
	if err != nil {
		return err
	}

	page := pipeline.Run(rows, q)
	if len(page.Items) == 0 {
		return fmt.Errorf("%w: no artists match %s", shared.ErrEmptySelection, describeQuery(q))
	}

	progressCh := make(chan tasks.ProgressUpdate, len(page.Items)+4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.EnrichStart:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.EnrichArtist:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Enrich(ctx, artistNames(page.Items), tasks.EnrichOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.Spotify.RequestsPerSecond,
	}, progressCh)
	close(progressCh)
	<-done

	if result != nil {
		r.writePlain("\n═══════════════════════════════════════\n")
		r.writePlain("Page %d of %d warmed\n", page.Number, page.TotalPages)
		r.writePlain("═══════════════════════════════════════\n")
		r.writePlain("Found:   %d/%d\n", result.Found, result.Total)
		r.writePlain("Missing: %d\n", result.Missing)
		if result.Run != nil && result.Run.ID() != "" {
			r.writePlain("Run:     #%d\n", result.Run.Sequence())
		}
	}
	return err
}

type runRow struct {
	Sequence    int        `json:"sequence"`
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Total       int        `json:"total"`
	Found       int        `json:"found"`
	Missing     int        `json:"missing"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SpotifyRuns lists recorded enrichment runs, newest first.
func (r *Runner) SpotifyRuns(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	runs, err := repositories.NewEnrichmentRunRepository(db).List(map[string]any{
		"status": cmd.String("status"),
		"limit":  cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	out := make([]runRow, len(runs))
	for i, run := range runs {
		out[i] = runRow{
			Sequence:    run.Sequence(),
			ID:          run.ID(),
			Status:      string(run.Status()),
			Total:       run.Total(),
			Found:       run.Found(),
			Missing:     run.Missing(),
			Error:       run.ErrorMessage(),
			StartedAt:   run.StartedAt(),
			CompletedAt: run.CompletedAt(),
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(out, cmd.Bool("pretty"))
	}
	if len(out) == 0 {
		return r.writePlain("No enrichment runs recorded (enable database.persist_cache)\n")
	}

	t := newTable("#", "Status", "Found", "Missing", "Started", "Duration")
	for _, run := range out {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		t.Row(
			fmt.Sprint(run.Sequence),
			run.Status,
			fmt.Sprintf("%d/%d", run.Found, run.Total),
			fmt.Sprint(run.Missing),
			run.StartedAt.Local().Format(time.DateTime),
			duration,
		)
	}
	return r.writePlain("%s\n", t.String())
}

// SpotifyCacheClear empties the in-memory cache and, when persisted, the sqlite store.
func (r *Runner) SpotifyCacheClear(ctx context.Context, cmd *cli.Command) error {
	sp, err := r.enrichment()
	if err != nil {
		return err
	}
	if err := sp.Cache.Clear(); err != nil {
		return err
	}
	r.writePlain("✓ Spotify cache cleared\n")
	return nil
}

// SpotifyCacheList prints persisted lookups.
func (r *Runner) SpotifyCacheList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	cached, err := repositories.NewArtistInfoRepository(db).List(map[string]any{})
	if err != nil {
		return err
	}

	infos := make([]models.ArtistInfo, len(cached))
	for i, c := range cached {
		infos[i] = c.Info()
	}

	if cmd.Bool("json") {
		return r.writeJSON(infos, cmd.Bool("pretty"))
	}
	if len(infos) == 0 {
		return r.writePlain("No persisted Spotify lookups\n")
	}

	t := newTable("Artist", "Found", "Followers", "Popularity", "Genres")
	for _, info := range infos {
		found := "no"
		if info.Found {
			found = "yes"
		}
		t.Row(info.Name, found, info.Followers, info.Popularity, info.Genres)
	}
	return r.writePlain("%s\n", t.String())
}
