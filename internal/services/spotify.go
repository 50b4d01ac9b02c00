// Spotify catalog search
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/desertthunder/hitscope/internal/shared"
)

const defaultAPIURL = "https://api.spotify.com/v1"

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type followers struct {
	Total int `json:"total"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a Spotify artist. Popularity is nil when the field is absent.
type SpotifyArtist struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Genres       []string       `json:"genres"`
	Images       []SpotifyImage `json:"images"`
	Popularity   *int           `json:"popularity"`
	Followers    followers      `json:"followers"`
	ExternalURLs externalURLs   `json:"external_urls"`
	URI          string         `json:"uri"`
}

type searchResponse struct {
	Artists struct {
		Items []SpotifyArtist `json:"items"`
	} `json:"artists"`
}

// SpotifyClient searches the Spotify catalog for artists.
//
// A lookup is a single request: no retries and no 429 handling. The rate limiter paces
// outgoing calls and the circuit breaker fails fast after consecutive failures; both
// surface as "absent" like any other failure.
type SpotifyClient struct {
	tokens  TokenSource
	client  *resty.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker[*SpotifyArtist]
	logger  *log.Logger
}

// NewSpotifyClient creates a search client against cfg.APIURL (or the public API).
func NewSpotifyClient(tokens TokenSource, cfg shared.SpotifyConfig, opts shared.SpotifyClientConf, logger *log.Logger) *SpotifyClient {
	baseURL := strings.TrimRight(cfg.APIURL, "/")
	if baseURL == "" {
		baseURL = defaultAPIURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout()).
		SetLogger(logger).
		SetHeader("Accept", "application/json")

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	failures := uint32(5)
	if opts.BreakerFailures > 0 {
		failures = uint32(opts.BreakerFailures)
	}

	breaker := gobreaker.NewCircuitBreaker[*SpotifyArtist](gobreaker.Settings{
		Name:        "spotify-search",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return &SpotifyClient{
		tokens:  tokens,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		breaker: breaker,
		logger:  logger,
	}
}

// SearchArtist returns the best catalog match for name, or ok=false when there is no
// match, no token, or the request fails for any reason.
func (c *SpotifyClient) SearchArtist(ctx context.Context, name string) (*SpotifyArtist, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false
	}

	token, ok := c.tokens.Token(ctx)
	if !ok {
		artistLookups.WithLabelValues("unavailable").Inc()
		return nil, false
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("artist search cancelled", "artist", name, "error", err)
		artistLookups.WithLabelValues("error").Inc()
		return nil, false
	}

	start := time.Now()
	artist, err := c.breaker.Execute(func() (*SpotifyArtist, error) {
		return c.search(ctx, token, name)
	})
	lookupDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.logger.Error("artist search failed", "artist", name, "error", err)
		artistLookups.WithLabelValues("error").Inc()
		return nil, false
	case artist == nil:
		c.logger.Debug("no spotify match", "artist", name)
		artistLookups.WithLabelValues("missing").Inc()
		return nil, false
	default:
		artistLookups.WithLabelValues("found").Inc()
		return artist, true
	}
}

// search performs one request. Zero results is (nil, nil), which the breaker counts as
// a success.
func (c *SpotifyClient) search(ctx context.Context, token, name string) (*SpotifyArtist, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"q":     name,
			"type":  "artist",
			"limit": "1",
		}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if !resp.IsSuccess() {
		if resp.StatusCode() == http.StatusUnauthorized {
			if inv, ok := c.tokens.(interface{ Invalidate() }); ok {
				inv.Invalidate()
			}
		}
		return nil, fmt.Errorf("%w: search returned status %d", shared.ErrAPIRequest, resp.StatusCode())
	}

	var result searchResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search response: %v", shared.ErrAPIRequest, err)
	}

	if len(result.Artists.Items) == 0 {
		return nil, nil
	}
	return &result.Artists.Items[0], nil
}

// BreakerState returns the search breaker's state name.
func (c *SpotifyClient) BreakerState() string {
	return c.breaker.State().String()
}
