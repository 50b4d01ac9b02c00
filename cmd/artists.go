package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/analytics"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
)

// queryFrom reads the shared filter, sort and page flags.
func queryFrom(cmd *cli.Command) (pipeline.Query, error) {
	q := pipeline.Query{
		Filter: pipeline.Filter{
			Search:     cmd.String("search"),
			Genre:      cmd.String("genre"),
			MinHitRate: cmd.Float("min-hit-rate"),
			MinRevenue: cmd.Float("min-revenue"),
		},
		Page: cmd.Int("page"),
	}

	if raw := cmd.String("tier"); raw != "" {
		if q.Tier = models.ParseTier(raw); q.Tier == models.TierUnknown {
			return q, fmt.Errorf("%w: unknown tier %q (want hit, good, mid or bust)", shared.ErrInvalidFlag, raw)
		}
	}

	var err error
	if q.Sort, err = pipeline.ParseSortKey(cmd.String("sort")); err != nil {
		return q, err
	}
	if q.Direction, err = pipeline.ParseDirection(cmd.String("dir")); err != nil {
		return q, err
	}
	return q, nil
}

// describeQuery renders the active flags for headers and export manifests.
func describeQuery(q pipeline.Query) string {
	parts := []string{}
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", q.Search))
	}
	if q.Genre != "" {
		parts = append(parts, "genre="+q.Genre)
	}
	if q.Tier != models.TierUnknown {
		parts = append(parts, "tier="+string(q.Tier))
	}
	if q.MinHitRate != 0 {
		parts = append(parts, fmt.Sprintf("min_hit_rate=%g", q.MinHitRate))
	}
	if q.MinRevenue != 0 {
		parts = append(parts, fmt.Sprintf("min_revenue=%g", q.MinRevenue))
	}

	dir := q.Direction
	if dir == "" {
		dir = q.Sort.DefaultDirection()
	}
	parts = append(parts, fmt.Sprintf("sort=%s %s", q.Sort, dir))
	return strings.Join(parts, " ")
}

// ArtistsList prints one page of the filtered, sorted table.
func (r *Runner) ArtistsList(ctx context.Context, cmd *cli.Command) error {
	q, err := queryFrom(cmd)
	if err != nil {
		return err
	}
	rows, err := r.table(ctx)
	if err != nil {
		return err
	}

	page := pipeline.Run(rows, q)
	if cmd.Bool("json") {
		if page.Items == nil {
			page.Items = []models.CombinedArtist{}
		}
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	if page.TotalItems == 0 {
		return r.writePlain("No artists match %s\n", describeQuery(q))
	}

	r.writePlain("%s\n", renderArtists(page.Items, (page.Number-1)*pipeline.PageSize))
	r.writePlain("Page %d of %d • %d artists • %s\n", page.Number, page.TotalPages, page.TotalItems, describeQuery(q))
	return nil
}

// ArtistsShow prints a single artist, resolved by exact or unique partial name.
func (r *Runner) ArtistsShow(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: artist name", shared.ErrMissingArgument)
	}

	rows, err := r.table(ctx)
	if err != nil {
		return err
	}
	row, err := analytics.NewExplorer(rows).Resolve(name)
	if err != nil {
		return err
	}

	var info *models.ArtistInfo
	if cmd.Bool("spotify") {
		if cache := r.infoCache(); cache != nil {
			i := cache.Cached(ctx, row.Name)
			info = &i
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			models.Artist
			Prediction  *models.Prediction    `json:"prediction"`
			CareerStage analytics.CareerStage `json:"career_stage"`
			Spotify     *models.ArtistInfo    `json:"spotify,omitempty"`
		}{row.Artist, row.Prediction, analytics.StageFor(row.CareerSpanYears), info}, cmd.Bool("pretty"))
	}

	r.writePlainHeader(row.Name)
	r.writePlain("Genre:        %s\n", row.PrimaryGenre)
	r.writePlain("Songs:        %d (%d hits, %d good, %d mid, %d bust)\n",
		row.TotalSongs, row.HitSongs, row.GoodSongs, row.MidSongs, row.BustSongs)
	r.writePlain("Hit rate:     %s\n", shared.FormatPercent(row.HitRate))
	r.writePlain("Revenue:      %s (%s per song)\n",
		shared.FormatCurrency(row.EstimatedTotalRevenue), shared.FormatCurrency(row.AvgRevenuePerSong))
	r.writePlain("Career:       %.1f years, %s\n", row.CareerSpanYears, analytics.StageFor(row.CareerSpanYears))

	if p := row.Prediction; p != nil {
		r.writePlainln("Prediction")
		r.writePlain("  Tier:           %s\n", p.Forecast.PredictedTier)
		r.writePlain("  Hit probability: %s\n", shared.FormatPercent(p.Forecast.HitProbability))
		r.writePlain("  Popularity:     %.1f\n", p.Forecast.PredictedPopularity)
		if lo, hi, ok := p.Forecast.ConfidenceBounds(); ok {
			r.writePlain("  Confidence:     %.1f to %.1f\n", lo, hi)
		}
		r.writePlain("  Hotness:        %.1f (%s)\n", p.Forecast.HotnessScore, analytics.HotnessLabel(p.Forecast.HotnessScore))
		if p.Forecast.Recommendation != "" {
			r.writePlain("  Advice:         %s\n", p.Forecast.Recommendation)
		}
	} else {
		r.writePlainln("Prediction: %s", shared.NotAvailable)
	}

	if info != nil {
		r.writePlainln("Spotify")
		r.writeInfo(*info)
	}
	return nil
}

// ArtistsSearch lists artists whose name contains the query.
func (r *Runner) ArtistsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	rows, err := r.table(ctx)
	if err != nil {
		return err
	}
	found := analytics.NewExplorer(rows).FindArtists(query)

	if cmd.Bool("json") {
		if found == nil {
			found = []models.CombinedArtist{}
		}
		return r.writeJSON(found, cmd.Bool("pretty"))
	}
	if len(found) == 0 {
		return r.writePlain("No artists found matching %q\n", query)
	}

	r.writePlain("Found %d artists matching %q:\n\n", len(found), query)
	for _, a := range found {
		r.writePlain("  • %s (%s, %d songs)\n", a.Name, a.PrimaryGenre, a.TotalSongs)
	}
	return nil
}

// ArtistsCompare prints the named artists side by side.
func (r *Runner) ArtistsCompare(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if len(names) < 2 {
		return fmt.Errorf("%w: compare needs at least two artist names", shared.ErrMissingArgument)
	}

	rows, err := r.table(ctx)
	if err != nil {
		return err
	}
	found, missing := analytics.NewExplorer(rows).Compare(names...)
	for _, name := range missing {
		r.logger.Warn("artist not found", "name", name)
	}

	if cmd.Bool("json") {
		if found == nil {
			found = []models.CombinedArtist{}
		}
		return r.writeJSON(map[string]any{"artists": found, "missing": missing}, cmd.Bool("pretty"))
	}
	if len(found) == 0 {
		return fmt.Errorf("%w: none of %s", shared.ErrArtistNotFound, strings.Join(names, ", "))
	}

	t := newTable(append([]string{"Metric"}, artistNames(found)...)...)
	metric := func(label string, value func(models.CombinedArtist) string) {
		cells := []string{label}
		for _, a := range found {
			cells = append(cells, value(a))
		}
		t.Row(cells...)
	}
	metric("Genre", func(a models.CombinedArtist) string { return a.PrimaryGenre })
	metric("Songs", func(a models.CombinedArtist) string { return fmt.Sprint(a.TotalSongs) })
	metric("Hit rate", func(a models.CombinedArtist) string { return shared.FormatPercent(a.HitRate) })
	metric("Revenue", func(a models.CombinedArtist) string { return shared.FormatCurrency(a.EstimatedTotalRevenue) })
	metric("Career", func(a models.CombinedArtist) string { return fmt.Sprintf("%.1f yrs", a.CareerSpanYears) })
	metric("Energy", func(a models.CombinedArtist) string { return fmt.Sprintf("%.2f", a.AvgEnergy) })
	metric("Danceability", func(a models.CombinedArtist) string { return fmt.Sprintf("%.2f", a.AvgDanceability) })
	metric("Tier", tierCell)
	metric("Hit prob", func(a models.CombinedArtist) string { return optional(a, a.HitProbability()) })
	metric("Hotness", func(a models.CombinedArtist) string { return optional(a, a.Hotness()) })

	r.writePlain("%s\n", t.String())
	if len(missing) > 0 {
		r.writePlain("Not found: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func artistNames(rows []models.CombinedArtist) []string {
	out := make([]string, len(rows))
	for i, a := range rows {
		out[i] = a.Name
	}
	return out
}

// ArtistsTop ranks artists by a metric.
func (r *Runner) ArtistsTop(ctx context.Context, cmd *cli.Command) error {
	rows, err := r.table(ctx)
	if err != nil {
		return err
	}

	metric := cmd.String("metric")
	top, err := analytics.NewExplorer(rows).TopBy(metric, cmd.Int("limit"), cmd.Int("min-songs"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		if top == nil {
			top = []models.CombinedArtist{}
		}
		return r.writeJSON(top, cmd.Bool("pretty"))
	}

	r.writePlain("Top %d by %s (min %d songs)\n", len(top), metric, cmd.Int("min-songs"))
	r.writePlain("%s\n", renderArtists(top, 0))
	return nil
}
