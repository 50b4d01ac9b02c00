// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// queryFlags are the table filter, sort and page flags shared by list, export and enrich.
func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"q"},
			Usage:   "Case-insensitive match on artist name or primary genre",
		},
		&cli.StringFlag{
			Name:    "genre",
			Aliases: []string{"g"},
			Usage:   "Exact primary genre",
		},
		&cli.StringFlag{
			Name:    "tier",
			Aliases: []string{"t"},
			Usage:   "Predicted tier (hit, good, mid, bust)",
		},
		&cli.FloatFlag{
			Name:  "min-hit-rate",
			Usage: "Minimum hit rate percentage",
		},
		&cli.FloatFlag{
			Name:  "min-revenue",
			Usage: "Minimum estimated total revenue",
		},
		&cli.StringFlag{
			Name:    "sort",
			Aliases: []string{"s"},
			Usage:   "Sort key (name, songs, hit_rate, revenue, tier, hit_probability, hotness)",
			Value:   "revenue",
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "Sort direction (asc, desc); defaults to the key's natural order",
		},
		&cli.IntFlag{
			Name:    "page",
			Aliases: []string{"p"},
			Usage:   "Page number, 25 artists per page",
			Value:   1,
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// setupCommand initializes config and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create config.toml if missing and migrate the database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent migration instead",
			},
		},
		Action: r.Setup,
	}
}

// artistsCommand browses the artist table
func artistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "artists",
		Aliases: []string{"a"},
		Usage:   "Browse the artist table",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List one page of artists, filtered and sorted",
				Flags:  withFlags(queryFlags(), outputFlags()),
				Action: r.ArtistsList,
			},
			{
				Name:  "show",
				Usage: "Show one artist with prediction details",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  "spotify",
						Usage: "Include Spotify artist info",
					},
				}),
				Action: r.ArtistsShow,
			},
			{
				Name:  "search",
				Usage: "Find artists by partial name",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "query"},
				},
				Flags:  outputFlags(),
				Action: r.ArtistsSearch,
			},
			{
				Name:      "compare",
				Usage:     "Compare two or more artists side by side",
				ArgsUsage: "NAME NAME [NAME...]",
				Flags:     outputFlags(),
				Action:    r.ArtistsCompare,
			},
			{
				Name:  "top",
				Usage: "Rank artists by a metric",
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:    "metric",
						Aliases: []string{"m"},
						Usage:   "revenue, hit_rate, hits, songs, career, energy or danceability",
						Value:   "revenue",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of artists",
						Value:   10,
					},
					&cli.IntFlag{
						Name:  "min-songs",
						Usage: "Only rank artists with at least this many songs",
						Value: 5,
					},
				}),
				Action: r.ArtistsTop,
			},
		},
	}
}

// statsCommand reports dataset-wide aggregates
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Dataset statistics",
		Commands: []*cli.Command{
			{
				Name:   "summary",
				Usage:  "Totals and averages across all artists",
				Flags:  outputFlags(),
				Action: r.StatsSummary,
			},
			{
				Name:   "genres",
				Usage:  "Per-genre totals, by revenue",
				Flags:  outputFlags(),
				Action: r.StatsGenres,
			},
			{
				Name:   "careers",
				Usage:  "Per career stage averages",
				Flags:  outputFlags(),
				Action: r.StatsCareers,
			},
			{
				Name:  "rising",
				Usage: "Young artists with strong predictions",
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:  "min-songs",
						Usage: "Minimum song count",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "max-songs",
						Usage: "Maximum song count",
						Value: 20,
					},
				}),
				Action: r.StatsRising,
			},
			{
				Name:  "predicted",
				Usage: "Highest predicted hit probability",
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of artists",
						Value:   10,
					},
				}),
				Action: r.StatsPredicted,
			},
		},
	}
}

// revenueCommand prints the revenue split for a song popularity
func revenueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "revenue",
		Usage: "Estimate the revenue split for a song of a given popularity",
		Flags: withFlags(outputFlags(), []cli.Flag{
			&cli.FloatFlag{
				Name:     "popularity",
				Usage:    "Spotify popularity, 0-100",
				Required: true,
			},
		}),
		Action: r.Revenue,
	}
}

// spotifyCommand handles Spotify enrichment
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify artist enrichment",
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "Look up an artist on Spotify",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the artist's Spotify page in a browser",
					},
				}),
				Action: r.SpotifyInfo,
			},
			{
				Name:  "token",
				Usage: "Exchange client credentials and report the token expiry",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "refresh",
						Usage: "Drop the cached token and exchange again",
					},
				},
				Action: r.SpotifyToken,
			},
			{
				Name:  "enrich",
				Usage: "Warm the Spotify cache for one page of the table",
				Flags: withFlags(queryFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Concurrent lookups (max 10)",
						Value:   4,
					},
				}),
				Action: r.SpotifyEnrich,
			},
			{
				Name:  "runs",
				Usage: "List recorded enrichment runs",
				Flags: withFlags(outputFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (running, completed, failed)",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of runs",
						Value:   20,
					},
				}),
				Action: r.SpotifyRuns,
			},
			{
				Name:  "cache",
				Usage: "Manage the Spotify info cache",
				Commands: []*cli.Command{
					{
						Name:   "clear",
						Usage:  "Drop every cached lookup, including persisted ones",
						Action: r.SpotifyCacheClear,
					},
					{
						Name:   "list",
						Usage:  "List persisted lookups",
						Flags:  outputFlags(),
						Action: r.SpotifyCacheList,
					},
				},
			},
		},
	}
}

// exportCommand writes the filtered table to disk
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the filtered, sorted table",
		Flags: withFlags(queryFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "csv, markdown, txt or json",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: hitscope_export_{timestamp})",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: "Heading for markdown and text exports",
				Value: "Artists",
			},
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Export every matching artist instead of one page",
			},
			&cli.BoolFlag{
				Name:  "spotify",
				Usage: "Link names to Spotify profiles already in the cache",
			},
		}),
		Action: r.Export,
	}
}

// serveCommand starts the JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the artist table as a JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse the artist table interactively",
		Action:  r.TUI,
	}
}
