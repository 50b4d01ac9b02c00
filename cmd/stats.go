package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/analytics"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

func (r *Runner) explorer(ctx context.Context) (*analytics.Explorer, error) {
	rows, err := r.table(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.NewExplorer(rows), nil
}

// StatsSummary prints dataset-wide totals.
func (r *Runner) StatsSummary(ctx context.Context, cmd *cli.Command) error {
	e, err := r.explorer(ctx)
	if err != nil {
		return err
	}
	s := e.Summary()

	if cmd.Bool("json") {
		return r.writeJSON(s, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Dataset Summary")
	r.writePlain("Artists:                %s\n", shared.FormatCount(int64(s.TotalArtists)))
	r.writePlain("Songs:                  %s\n", shared.FormatCount(int64(s.TotalSongs)))
	r.writePlain("Estimated revenue:      %s\n", shared.FormatCurrency(s.TotalEstimatedRevenue))
	r.writePlain("Avg songs per artist:   %.1f\n", s.AvgSongsPerArtist)
	r.writePlain("Avg revenue per artist: %s\n", shared.FormatCurrency(s.AvgRevenuePerArtist))
	r.writePlain("Hit rate (mean/median): %s / %s\n", shared.FormatPercent(s.AvgHitRate), shared.FormatPercent(s.MedianHitRate))
	return nil
}

// StatsGenres prints per-genre aggregates ordered by revenue.
func (r *Runner) StatsGenres(ctx context.Context, cmd *cli.Command) error {
	e, err := r.explorer(ctx)
	if err != nil {
		return err
	}
	genres := e.GenreAnalysis()

	if cmd.Bool("json") {
		return r.writeJSON(genres, cmd.Bool("pretty"))
	}

	t := newTable("Genre", "Artists", "Songs", "Hits", "Revenue", "Avg Hit Rate", "Avg Revenue/Artist")
	for _, g := range genres {
		t.Row(
			g.Genre,
			fmt.Sprint(g.Artists),
			fmt.Sprint(g.TotalSongs),
			fmt.Sprint(g.TotalHits),
			shared.FormatCurrency(g.TotalRevenue),
			shared.FormatPercent(g.AvgHitRate),
			shared.FormatCurrency(g.AvgRevenuePerArtist),
		)
	}
	return r.writePlain("%s\n", t.String())
}

// StatsCareers prints averages per career stage.
func (r *Runner) StatsCareers(ctx context.Context, cmd *cli.Command) error {
	e, err := r.explorer(ctx)
	if err != nil {
		return err
	}
	stages := e.CareerStages()

	if cmd.Bool("json") {
		return r.writeJSON(stages, cmd.Bool("pretty"))
	}

	t := newTable("Stage", "Artists", "Avg Hit Rate", "Avg Songs", "Avg Revenue")
	for _, s := range stages {
		t.Row(
			string(s.Stage),
			fmt.Sprint(s.Count),
			shared.FormatPercent(s.AvgHitRate),
			fmt.Sprintf("%.1f", s.AvgSongs),
			shared.FormatCurrency(s.AvgRevenue),
		)
	}
	return r.writePlain("%s\n", t.String())
}

// StatsRising prints young artists with strong predictions.
func (r *Runner) StatsRising(ctx context.Context, cmd *cli.Command) error {
	e, err := r.explorer(ctx)
	if err != nil {
		return err
	}
	minSongs, maxSongs := cmd.Int("min-songs"), cmd.Int("max-songs")
	if minSongs > maxSongs {
		return fmt.Errorf("%w: --min-songs %d exceeds --max-songs %d", shared.ErrInvalidFlag, minSongs, maxSongs)
	}
	rising := e.RisingStars(minSongs, maxSongs)

	if cmd.Bool("json") {
		if rising == nil {
			rising = []models.CombinedArtist{}
		}
		return r.writeJSON(rising, cmd.Bool("pretty"))
	}
	if len(rising) == 0 {
		return r.writePlain("No rising artists with %d-%d songs\n", minSongs, maxSongs)
	}

	r.writePlain("Rising artists (%d-%d songs, under 5 years)\n", minSongs, maxSongs)
	return r.writePlain("%s\n", renderArtists(rising, 0))
}

// StatsPredicted prints the artists most likely to chart next.
func (r *Runner) StatsPredicted(ctx context.Context, cmd *cli.Command) error {
	e, err := r.explorer(ctx)
	if err != nil {
		return err
	}
	top := e.TopPredicted(cmd.Int("limit"))

	if cmd.Bool("json") {
		if top == nil {
			top = []models.CombinedArtist{}
		}
		return r.writeJSON(top, cmd.Bool("pretty"))
	}
	if len(top) == 0 {
		return r.writePlain("No predictions loaded\n")
	}
	return r.writePlain("%s\n", renderArtists(top, 0))
}

type revenueReport struct {
	analytics.RevenueBreakdown
	Tier      models.Tier `json:"tier"`
	Benchmark float64     `json:"benchmark_song_revenue"`
}

// Revenue prints the stakeholder split for one song, using the configured model and tiers.
func (r *Runner) Revenue(ctx context.Context, cmd *cli.Command) error {
	pop := cmd.Float("popularity")
	if pop < 0 || pop > 100 {
		return fmt.Errorf("%w: --popularity must be between 0 and 100", shared.ErrInvalidFlag)
	}

	model, err := analytics.NewRevenueModel(r.config.Revenue)
	if err != nil {
		return err
	}
	tiers, err := analytics.NewTierThresholds(r.config.Tiers)
	if err != nil {
		return err
	}

	report := revenueReport{
		RevenueBreakdown: model.Breakdown(pop),
		Tier:             tiers.Classify(pop),
		Benchmark:        analytics.EstimateSongRevenue(pop),
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, cmd.Bool("pretty"))
	}

	b := report.RevenueBreakdown
	money := shared.FormatCurrency
	r.writePlainHeader(fmt.Sprintf("Popularity %.0f (%s tier)", pop, report.Tier))
	r.writePlain("Estimated streams:    %s\n", shared.FormatCount(int64(b.Streams)))
	r.writePlain("Gross revenue:        %s\n", money(b.TotalGross))
	r.writePlain("Benchmark per song:   %s\n", money(report.Benchmark))

	t := newTable("Source", "Gross", "Deduction", "Net")
	t.Row("Streaming", money(b.Streaming), money(b.PlatformCut), money(b.StreamingToRights))
	t.Row("Physical", money(b.Physical), money(b.DistributionCut), money(b.PhysicalToRights))
	t.Row("Touring", money(b.Tour), money(b.VenueCut), money(b.TourToArtist))
	t.Row("Merchandise", money(b.Merch), money(b.MerchCosts), money(b.MerchToArtist))
	r.writePlain("%s\n", t.String())

	s := newTable("Stakeholder", "Share")
	s.Row("Label", money(b.LabelShare))
	s.Row("Artist (before manager)", money(b.ArtistShare))
	s.Row("Songwriter", money(b.SongwriterShare))
	s.Row("Publisher", money(b.PublisherShare))
	s.Row("Producer", money(b.ProducerShare))
	s.Row("Manager", money(b.ManagerCut))
	s.Row("Artist net", money(b.ArtistNet))
	return r.writePlain("%s\n", s.String())
}
