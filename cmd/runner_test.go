package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/desertthunder/hitscope/internal/pipeline"
	"github.com/desertthunder/hitscope/internal/shared"
	tu "github.com/desertthunder/hitscope/internal/testing"
)

// newTestRunner returns a preloaded runner writing to a buffer.
func newTestRunner(t *testing.T, opts RunnerOpts) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
		opts.Config.Database.Path = filepath.Join(t.TempDir(), "hitscope.db")
	}
	opts.Logger = shared.NewLogger(io.Discard)
	opts.Output = output

	runner := NewRunner(opts)
	t.Cleanup(func() { runner.Close() })
	return runner, output
}

// fixtureConfig points the data sources at the small three-artist fixtures.
func fixtureConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Data.Artists = tu.WriteFixture(t, "artists.json", tu.ArtistsJSON)
	config.Data.Predictions = tu.WriteFixture(t, "predictions.json", tu.PredictionsJSON)
	config.Database.Path = filepath.Join(t.TempDir(), "hitscope.db")
	return config
}

func catalogRows(n int) RunnerOpts {
	return RunnerOpts{Rows: pipeline.Join(tu.Catalog(n))}
}

func execute(r *Runner, args ...string) error {
	return rootCommand(r).Run(context.Background(), append([]string{"hitscope"}, args...))
}

type pageJSON struct {
	Items []struct {
		Name string `json:"name"`
	} `json:"items"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

func decode[T any](t *testing.T, out *bytes.Buffer) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(out.Bytes(), &v); err != nil {
		t.Fatalf("expected valid JSON, got %v\n%s", err, out.String())
	}
	return v
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if !runner.preloaded {
				t.Error("expected an explicit config to be kept")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.preloaded {
				t.Error("expected default config to be replaceable")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(math.NaN(), false)
			if err == nil {
				t.Fatal("expected error for NaN")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "artists", "stats", "revenue", "spotify", "export", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("expected %d commands, got %d", len(want), len(commands))
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			if cmd.Name != want[i] {
				t.Errorf("expected command %q at index %d, got %q", want[i], i, cmd.Name)
			}
		}
	})
}

func TestArtistsCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		tests := []struct {
			name      string
			args      []string
			wantItems int
			wantTotal int
			wantPage  int
			wantFirst string
			wantPages int
		}{
			{"first page by revenue", nil, 25, 60, 1, "Artist 059", 3},
			{"page past the end clamps", []string{"--page", "9"}, 10, 60, 3, "Artist 009", 3},
			{"name ascending", []string{"--sort", "name"}, 25, 60, 1, "Artist 000", 3},
			{"revenue ascending", []string{"--dir", "asc"}, 25, 60, 1, "Artist 000", 3},
			{"tier filter", []string{"--tier", "hit"}, 10, 10, 1, "Artist 056", 1},
			{"search matches genre", []string{"--search", "HIP HOP"}, 15, 15, 1, "Artist 058", 1},
			{"filters are combined", []string{"--genre", "rock", "--min-revenue", "30000"}, 8, 8, 1, "Artist 057", 1},
			{"no match", []string{"--search", "nobody"}, 0, 0, 1, "", 1},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				runner, output := newTestRunner(t, catalogRows(60))

				args := append([]string{"artists", "list", "--json"}, tt.args...)
				if err := execute(runner, args...); err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				page := decode[pageJSON](t, output)
				if len(page.Items) != tt.wantItems {
					t.Errorf("expected %d items, got %d", tt.wantItems, len(page.Items))
				}
				if page.TotalItems != tt.wantTotal {
					t.Errorf("expected %d total, got %d", tt.wantTotal, page.TotalItems)
				}
				if page.Page != tt.wantPage {
					t.Errorf("expected page %d, got %d", tt.wantPage, page.Page)
				}
				if page.TotalPages != tt.wantPages {
					t.Errorf("expected %d pages, got %d", tt.wantPages, page.TotalPages)
				}
				if tt.wantFirst != "" && page.Items[0].Name != tt.wantFirst {
					t.Errorf("expected %s first, got %s", tt.wantFirst, page.Items[0].Name)
				}
			})
		}

		t.Run("plain output shows the page footer", func(t *testing.T) {
			runner, output := newTestRunner(t, catalogRows(30))

			if err := execute(runner, "artists", "list", "--page", "2"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, "Page 2 of 2 • 30 artists") {
				t.Errorf("expected page footer, got %s", result)
			}
			if !strings.Contains(result, "Artist 004") {
				t.Errorf("expected second page rows, got %s", result)
			}
		})

		t.Run("rejects unknown tier", func(t *testing.T) {
			runner, _ := newTestRunner(t, catalogRows(5))

			err := execute(runner, "artists", "list", "--tier", "legendary")
			if !errors.Is(err, shared.ErrInvalidFlag) {
				t.Errorf("expected ErrInvalidFlag, got %v", err)
			}
		})

		t.Run("rejects unknown sort key", func(t *testing.T) {
			runner, _ := newTestRunner(t, catalogRows(5))

			if err := execute(runner, "artists", "list", "--sort", "popularity"); err == nil {
				t.Error("expected error for unknown sort key")
			}
		})
	})

	t.Run("show", func(t *testing.T) {
		t.Run("resolves a partial name", func(t *testing.T) {
			runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			if err := execute(runner, "artists", "show", "--json", "zach"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			got := decode[struct {
				Name        string `json:"name"`
				CareerStage string `json:"career_stage"`
				Prediction  *struct {
					Forecast struct {
						PredictedTier string `json:"predicted_tier"`
					} `json:"predictions"`
				} `json:"prediction"`
			}](t, output)

			if got.Name != "Zach Bryan" {
				t.Errorf("expected Zach Bryan, got %s", got.Name)
			}
			if got.CareerStage != "Emerging (2-5 years)" {
				t.Errorf("expected emerging stage, got %s", got.CareerStage)
			}
			if got.Prediction == nil || got.Prediction.Forecast.PredictedTier != "hit" {
				t.Errorf("expected hit prediction, got %+v", got.Prediction)
			}
		})

		t.Run("reports a missing prediction as N/A", func(t *testing.T) {
			runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			if err := execute(runner, "artists", "show", "Metallica"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); !strings.Contains(result, "Prediction: N/A") {
				t.Errorf("expected N/A prediction, got %s", result)
			}
		})

		t.Run("unknown artist", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			err := execute(runner, "artists", "show", "Nobody")
			if !errors.Is(err, shared.ErrArtistNotFound) {
				t.Errorf("expected ErrArtistNotFound, got %v", err)
			}
		})

		t.Run("requires a name", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			err := execute(runner, "artists", "show")
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("search", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		if err := execute(runner, "artists", "search", "a"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result := output.String(); !strings.Contains(result, "Found 3 artists") {
			t.Errorf("expected three matches, got %s", result)
		}
	})

	t.Run("compare", func(t *testing.T) {
		t.Run("lists found and missing artists", func(t *testing.T) {
			runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			if err := execute(runner, "artists", "compare", "Adele", "Metallica", "Nobody"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			for _, want := range []string{"Adele", "Metallica", "Not found: Nobody"} {
				if !strings.Contains(result, want) {
					t.Errorf("expected %q in output, got %s", want, result)
				}
			}
		})

		t.Run("needs two names", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			err := execute(runner, "artists", "compare", "Adele")
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("fails when nothing matches", func(t *testing.T) {
			runner, _ := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

			err := execute(runner, "artists", "compare", "Nobody", "Somebody")
			if !errors.Is(err, shared.ErrArtistNotFound) {
				t.Errorf("expected ErrArtistNotFound, got %v", err)
			}
		})
	})

	t.Run("top", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		if err := execute(runner, "artists", "top", "--limit", "2", "--min-songs", "0", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		top := decode[[]struct {
			Name string `json:"name"`
		}](t, output)
		if len(top) != 2 || top[0].Name != "Adele" || top[1].Name != "Metallica" {
			t.Errorf("expected Adele then Metallica, got %+v", top)
		}
	})
}

func TestStatsCommands(t *testing.T) {
	t.Run("summary", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		if err := execute(runner, "stats", "summary", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		summary := decode[struct {
			TotalArtists int `json:"total_artists"`
			TotalSongs   int `json:"total_songs"`
		}](t, output)
		if summary.TotalArtists != 3 || summary.TotalSongs != 56 {
			t.Errorf("expected 3 artists and 56 songs, got %+v", summary)
		}
	})

	t.Run("genres", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		if err := execute(runner, "stats", "genres"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if strings.Index(result, "pop") > strings.Index(result, "country") {
			t.Errorf("expected pop ahead of country by revenue, got %s", result)
		}
	})

	t.Run("careers", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		if err := execute(runner, "stats", "careers", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		stages := decode[[]struct {
			Count int `json:"count"`
		}](t, output)
		if len(stages) != 4 {
			t.Fatalf("expected 4 stages, got %d", len(stages))
		}
		if stages[1].Count != 1 || stages[3].Count != 2 {
			t.Errorf("expected 1 emerging and 2 veteran artists, got %+v", stages)
		}
	})

	t.Run("rising rejects an inverted range", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		err := execute(runner, "stats", "rising", "--min-songs", "10", "--max-songs", "5")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("predicted", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

		if err := execute(runner, "stats", "predicted", "--limit", "1", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		top := decode[[]struct {
			Name string `json:"name"`
		}](t, output)
		if len(top) != 1 || top[0].Name != "Zach Bryan" {
			t.Errorf("expected Zach Bryan, got %+v", top)
		}
	})
}

func TestRevenueCommand(t *testing.T) {
	t.Run("classifies and splits", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})

		if err := execute(runner, "revenue", "--popularity", "85", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		report := decode[struct {
			Popularity float64 `json:"popularity"`
			Tier       string  `json:"tier"`
			Gross      float64 `json:"total_gross_revenue"`
			Benchmark  float64 `json:"benchmark_song_revenue"`
		}](t, output)

		if report.Popularity != 85 {
			t.Errorf("expected popularity 85, got %v", report.Popularity)
		}
		if report.Tier != "hit" {
			t.Errorf("expected hit tier, got %s", report.Tier)
		}
		if report.Gross <= 0 {
			t.Errorf("expected positive gross revenue, got %v", report.Gross)
		}
		if report.Benchmark != 8_500_000 {
			t.Errorf("expected benchmark 8500000, got %v", report.Benchmark)
		}
	})

	t.Run("plain output lists stakeholders", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{})

		if err := execute(runner, "revenue", "--popularity", "50"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		for _, want := range []string{"mid tier", "Songwriter", "Artist net"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in output, got %s", want, result)
			}
		}
	})

	t.Run("rejects out of range popularity", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})

		err := execute(runner, "revenue", "--popularity", "120")
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("requires popularity", func(t *testing.T) {
		runner, _ := newTestRunner(t, RunnerOpts{})

		if err := execute(runner, "revenue"); err == nil {
			t.Error("expected error without --popularity")
		}
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("writes every matching artist with --all", func(t *testing.T) {
		runner, output := newTestRunner(t, catalogRows(60))
		dir := filepath.Join(t.TempDir(), "out")

		if err := execute(runner, "export", "--format", "csv", "--output", dir, "--all"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "artists.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))

		csv := tu.MustReadFile(t, filepath.Join(dir, "artists.csv"))
		if lines := strings.Count(strings.TrimSpace(csv), "\n") + 1; lines != 61 {
			t.Errorf("expected header plus 60 rows, got %d lines", lines)
		}
		if !strings.Contains(output.String(), "Exported 60 artists as csv") {
			t.Errorf("expected summary, got %s", output.String())
		}
	})

	t.Run("writes one page by default", func(t *testing.T) {
		runner, _ := newTestRunner(t, catalogRows(60))
		dir := filepath.Join(t.TempDir(), "out")

		if err := execute(runner, "export", "--output", dir, "--page", "3"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		rows := decode[[]struct {
			Name string `json:"name"`
		}](t, bytes.NewBufferString(tu.MustReadFile(t, filepath.Join(dir, "artists.json"))))
		if len(rows) != 10 {
			t.Errorf("expected the 10 artists of the last page, got %d", len(rows))
		}
	})

	t.Run("rejects an unknown format", func(t *testing.T) {
		runner, _ := newTestRunner(t, catalogRows(5))

		err := execute(runner, "export", "--format", "xml", "--output", t.TempDir())
		if !errors.Is(err, shared.ErrUnknownFormat) {
			t.Errorf("expected ErrUnknownFormat, got %v", err)
		}
	})

	t.Run("refuses an empty selection", func(t *testing.T) {
		runner, _ := newTestRunner(t, catalogRows(5))

		err := execute(runner, "export", "--search", "nobody", "--output", t.TempDir())
		if !errors.Is(err, shared.ErrEmptySelection) {
			t.Errorf("expected ErrEmptySelection, got %v", err)
		}
	})
}

const adeleSearch = `{"artists": {"items": [{
	"id": "4dpARuHxo51G3z768sgnrY",
	"name": "Adele",
	"genres": ["british soul", "pop"],
	"images": [{"url": "https://i.scdn.co/image/large", "height": 640, "width": 640}],
	"popularity": 85,
	"followers": {"total": 58234117},
	"external_urls": {"spotify": "https://open.spotify.com/artist/4dpARuHxo51G3z768sgnrY"}
}]}}`

// spotifyConfig points credentials at a fake accounts and search API that only knows Adele.
func spotifyConfig(t *testing.T) *shared.Config {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/token":
			w.Write([]byte(`{"access_token": "tok", "token_type": "bearer", "expires_in": 3600}`))
		case "/search":
			if r.URL.Query().Get("q") == "Adele" {
				w.Write([]byte(adeleSearch))
				return
			}
			w.Write([]byte(`{"artists": {"items": []}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)

	config := fixtureConfig(t)
	config.Credentials.Spotify.ClientID = "client-id"
	config.Credentials.Spotify.ClientSecret = "client-secret"
	config.Credentials.Spotify.TokenURL = server.URL + "/token"
	config.Credentials.Spotify.APIURL = server.URL
	config.Spotify.RequestsPerSecond = 1000
	config.Database.PersistCache = true
	return config
}

func TestSpotifyCommands(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		for _, args := range [][]string{
			{"spotify", "token"},
			{"spotify", "info", "Adele"},
			{"spotify", "cache", "clear"},
			{"spotify", "enrich"},
		} {
			t.Run(strings.Join(args, " "), func(t *testing.T) {
				runner, _ := newTestRunner(t, RunnerOpts{Config: fixtureConfig(t)})

				err := execute(runner, args...)
				if !errors.Is(err, shared.ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials, got %v", err)
				}
			})
		}
	})

	t.Run("token", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: spotifyConfig(t)})

		if err := execute(runner, "spotify", "token"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.Contains(result, "Access token acquired") {
			t.Errorf("expected token confirmation, got %s", result)
		}
		if strings.Contains(result, "tok\n") {
			t.Errorf("expected the token itself to stay hidden, got %s", result)
		}
	})

	t.Run("info", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: spotifyConfig(t)})

		if err := execute(runner, "spotify", "info", "--json", "Adele"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		info := decode[struct {
			Found      bool   `json:"found"`
			Followers  string `json:"followers"`
			SpotifyURL string `json:"spotify_url"`
		}](t, output)
		if !info.Found || info.Followers != "58,234,117" {
			t.Errorf("expected Adele with formatted followers, got %+v", info)
		}
	})

	t.Run("info for an unknown artist falls back to defaults", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: spotifyConfig(t)})

		if err := execute(runner, "spotify", "info", "Nobody"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result := output.String(); !strings.Contains(result, "No Spotify match for Nobody") {
			t.Errorf("expected no match message, got %s", result)
		}
	})

	t.Run("enrich records a run and persists matches", func(t *testing.T) {
		runner, output := newTestRunner(t, RunnerOpts{Config: spotifyConfig(t)})

		if err := execute(runner, "spotify", "enrich"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		result := output.String()
		if !strings.Contains(result, "Found:   1/3") {
			t.Errorf("expected one of three found, got %s", result)
		}
		if !strings.Contains(result, "Run:     #1") {
			t.Errorf("expected run #1, got %s", result)
		}

		output.Reset()
		if err := execute(runner, "spotify", "runs", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		runs := decode[[]struct {
			Sequence int    `json:"sequence"`
			Status   string `json:"status"`
			Found    int    `json:"found"`
			Missing  int    `json:"missing"`
		}](t, output)
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		if runs[0].Status != "completed" || runs[0].Found != 1 || runs[0].Missing != 2 {
			t.Errorf("expected completed run with 1 found and 2 missing, got %+v", runs[0])
		}

		output.Reset()
		if err := execute(runner, "spotify", "cache", "list", "--json"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		cached := decode[[]struct {
			Name string `json:"name"`
		}](t, output)
		if len(cached) != 1 || cached[0].Name != "Adele" {
			t.Errorf("expected only Adele persisted, got %+v", cached)
		}

		output.Reset()
		if err := execute(runner, "spotify", "cache", "clear"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if runner.spotify.Cache.Len() != 0 {
			t.Errorf("expected empty cache, got %d entries", runner.spotify.Cache.Len())
		}

		output.Reset()
		if err := execute(runner, "spotify", "cache", "list"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result := output.String(); !strings.Contains(result, "No persisted Spotify lookups") {
			t.Errorf("expected empty store, got %s", result)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	dbPath := filepath.Join(dir, "hitscope.db")
	t.Setenv(shared.EnvDatabasePath, dbPath)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: output})
	t.Cleanup(func() { runner.Close() })

	if err := execute(runner, "--config", configPath, "--env", "", "setup"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tu.AssertFileExists(t, configPath)
	tu.AssertFileExists(t, dbPath)
	if result := output.String(); !strings.Contains(result, "Database ready at "+dbPath) {
		t.Errorf("expected database confirmation, got %s", result)
	}

	output.Reset()
	if err := execute(runner, "--config", configPath, "--env", "", "setup", "--rollback"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result := output.String(); !strings.Contains(result, "Rolled back") {
		t.Errorf("expected rollback confirmation, got %s", result)
	}
}
