package services

import (
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/hitscope/internal/shared"
)

// Spotify bundles the enrichment components built from one configuration.
type Spotify struct {
	Tokens *TokenManager
	Client *SpotifyClient
	Info   *InfoService
	Cache  *InfoCache
}

// NewSpotify wires a token manager, search client, projection and cache. store may be nil.
func NewSpotify(cfg *shared.Config, store InfoStore, logger *log.Logger, opts ...TokenOption) *Spotify {
	logger = shared.WithLogger(logger, "service", "spotify")
	opts = append([]TokenOption{
		WithMargin(cfg.Spotify.TokenMargin()),
		WithHTTPClient(&http.Client{Timeout: cfg.Spotify.Timeout()}),
	}, opts...)

	tokens := NewTokenManager(cfg.Credentials.Spotify, logger, opts...)
	client := NewSpotifyClient(tokens, cfg.Credentials.Spotify, cfg.Spotify, logger)
	info := NewInfoService(client)

	return &Spotify{
		Tokens: tokens,
		Client: client,
		Info:   info,
		Cache:  NewInfoCache(info, store, logger),
	}
}
