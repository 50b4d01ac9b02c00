package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/formatter"
	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/tasks"
)

// Export writes the current page, or with --all every matching artist, in the chosen format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	q, err := queryFrom(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	rows, err := r.table(ctx)
	if err != nil {
		return err
	}

	selected := pipeline.Run(rows, q).Items
	if cmd.Bool("all") {
		selected = pipeline.Sort(q.Filter.Apply(rows), q.Sort, directionOf(q))
	}

	// links come from lookups already cached; nothing is fetched here
	withSpotify := cmd.Bool("spotify") && r.infoCache() != nil

	engine, err := r.taskEngine()
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.writePlain("📝 %s\n", update.Message)
		}
	}()

	result, err := engine.Export(ctx, selected, tasks.ExportOpts{
		Format:      format,
		OutputDir:   cmd.String("output"),
		Title:       cmd.String("title"),
		Query:       describeQuery(q),
		WithSpotify: withSpotify,
	}, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n✓ Exported %d artists as %s\n", result.Rows, result.Format)
	for _, f := range result.Files {
		r.writePlain("  %s\n", f)
	}
	r.writePlain("  %s\n", result.ManifestPath)
	return nil
}

func directionOf(q pipeline.Query) pipeline.Direction {
	if q.Direction != "" {
		return q.Direction
	}
	return q.Sort.DefaultDirection()
}
