package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/dataset"
	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/repositories"
	"github.com/desertthunder/hitscope/internal/services"
	"github.com/desertthunder/hitscope/internal/shared"
	"github.com/desertthunder/hitscope/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The dataset, Spotify services and database are created on first use so commands that
// don't need them never touch the network or disk.
type Runner struct {
	config     *shared.Config
	configPath string
	preloaded  bool
	logger     *log.Logger
	output     io.Writer
	rows       []models.CombinedArtist
	spotify    *services.Spotify
	db         *sql.DB
	engine     *tasks.Engine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	Rows       []models.CombinedArtist // skips dataset loading when set
	Spotify    *services.Spotify
	DB         *sql.DB
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	preloaded := opts.Config != nil
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		preloaded:  preloaded,
		logger:     opts.Logger,
		output:     opts.Output,
		rows:       opts.Rows,
		spotify:    opts.Spotify,
		db:         opts.DB,
	}
}

// SetLogger replaces the logger, e.g. with a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, artistsCommand, statsCommand, revenueCommand, spotifyCommand, exportCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// configure loads the config file and environment overrides before any action runs.
// A Runner built with an explicit Config keeps it.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !r.preloaded {
		path := cmd.String("config")
		r.configPath = path

		if _, err := os.Stat(path); err == nil {
			config, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else if cmd.IsSet("config") {
			r.logger.Warn("config file not found, using defaults (run hitscope setup)", "path", path)
		}

		if err := shared.ApplyEnv(r.config, cmd.String("env")); err != nil {
			return ctx, err
		}
	}

	shared.ConfigureLogger(r.logger, r.config.Log)
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// table loads and joins the artist table once.
func (r *Runner) table(ctx context.Context) ([]models.CombinedArtist, error) {
	if r.rows != nil {
		return r.rows, nil
	}

	loader := dataset.NewLoader(r.config.Spotify.Timeout(), shared.WithLogger(r.logger, "component", "dataset"))
	ds, err := loader.Load(ctx, r.config.Data.Artists, r.config.Data.Predictions)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}

	r.rows = ds.Combined()
	r.logger.Debug("artist table ready", "artists", len(r.rows), "predictions", len(ds.Predictions))
	return r.rows, nil
}

// database opens the sqlite database and applies pending migrations once.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// enrichment returns the Spotify services, or ErrMissingCredentials when none are configured.
// With database.persist_cache set, lookups are written through to sqlite.
func (r *Runner) enrichment() (*services.Spotify, error) {
	if r.spotify != nil {
		return r.spotify, nil
	}
	if !r.config.Credentials.Spotify.HasCredentials() {
		return nil, fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or run hitscope setup", shared.ErrMissingCredentials)
	}

	var store services.InfoStore
	if r.config.Database.PersistCache {
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		store = repositories.NewInfoStoreAdapter(repositories.NewArtistInfoRepository(db))
	}

	r.spotify = services.NewSpotify(r.config, store, r.logger)
	return r.spotify, nil
}

// infoCache returns the Spotify cache or nil, logging why enrichment is off.
func (r *Runner) infoCache() *services.InfoCache {
	sp, err := r.enrichment()
	if err != nil {
		r.logger.Warn("spotify enrichment disabled", "error", err)
		return nil
	}
	return sp.Cache
}

// taskEngine builds the batch engine over the Spotify cache. Runs are recorded when
// the cache is persisted.
func (r *Runner) taskEngine() (*tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	var lookup tasks.InfoLookup
	if sp, err := r.enrichment(); err == nil {
		lookup = sp.Cache
	} else if !errors.Is(err, shared.ErrMissingCredentials) {
		return nil, err
	}

	var runs tasks.RunRecorder
	if r.config.Database.PersistCache {
		db, err := r.database()
		if err != nil {
			return nil, err
		}
		runs = repositories.NewEnrichmentRunRepository(db)
	}

	r.engine = tasks.NewEngine(lookup, runs, shared.WithLogger(r.logger, "component", "tasks"))
	return r.engine, nil
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
