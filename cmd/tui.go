package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
	"github.com/desertthunder/hitscope/internal/tasks"
	"github.com/desertthunder/hitscope/internal/ui"
)

// TUI launches the interactive artist table.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	rows, err := r.table(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.Log.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.ConfigureLogger(fileLogger, r.config.Log)
	r.SetLogger(fileLogger)

	var cache ui.InfoCache
	if c := r.infoCache(); c != nil {
		cache = c
	}
	var engine *tasks.Engine
	if cache != nil {
		if engine, err = r.taskEngine(); err != nil {
			return err
		}
	}

	model := ui.NewModel(ctx, pipeline.NewView(rows), cache, engine)
	model.SetEnrichOpts(tasks.EnrichOpts{RateLimit: r.config.Spotify.RequestsPerSecond})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
