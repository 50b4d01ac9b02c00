package services

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/desertthunder/hitscope/internal/shared"
)

const defaultTokenURL = "https://accounts.spotify.com/api/token"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TokenSource hands out bearer tokens. ok=false means enrichment is unavailable.
type TokenSource interface {
	Token(ctx context.Context) (token string, ok bool)
}

// TokenManager obtains and caches a client-credentials bearer token.
//
// A cached token is reused until its expiry, which is set to the issued lifetime minus a
// safety margin. Failures never surface as errors: [TokenManager.Token] reports ok=false
// and callers treat that as "enrichment unavailable".
type TokenManager struct {
	mu     sync.Mutex
	config *clientcredentials.Config
	client *http.Client
	clock  Clock
	margin time.Duration
	logger *log.Logger

	token  string
	expiry time.Time
}

// TokenOption configures a [TokenManager].
type TokenOption func(*TokenManager)

// WithClock replaces the wall clock.
func WithClock(c Clock) TokenOption {
	return func(m *TokenManager) { m.clock = c }
}

// WithHTTPClient sets the client used for the token exchange.
func WithHTTPClient(c *http.Client) TokenOption {
	return func(m *TokenManager) { m.client = c }
}

// WithMargin sets how long before the issued expiry a token is considered stale.
func WithMargin(d time.Duration) TokenOption {
	return func(m *TokenManager) { m.margin = d }
}

// NewTokenManager creates a token manager for the configured client credentials.
// Missing credentials produce a manager whose Token always reports ok=false.
func NewTokenManager(cfg shared.SpotifyConfig, logger *log.Logger, opts ...TokenOption) *TokenManager {
	m := &TokenManager{
		client: &http.Client{Timeout: 10 * time.Second},
		clock:  SystemClock{},
		margin: 300 * time.Second,
		logger: logger,
	}

	if cfg.HasCredentials() {
		tokenURL := cfg.TokenURL
		if tokenURL == "" {
			tokenURL = defaultTokenURL
		}
		m.config = &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		}
	}

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Configured reports whether client credentials are present.
func (m *TokenManager) Configured() bool { return m.config != nil }

// Token returns the cached token while it is fresh, otherwise performs one exchange.
func (m *TokenManager) Token(ctx context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if m.token != "" && now.Before(m.expiry) {
		return m.token, true
	}

	if m.config == nil {
		m.logger.Warn("spotify credentials not configured, enrichment disabled")
		tokenExchanges.WithLabelValues("unconfigured").Inc()
		return "", false
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	tok, err := m.config.Token(ctx)
	if err != nil {
		m.logger.Error("spotify token exchange failed", "error", err)
		tokenExchanges.WithLabelValues("error").Inc()
		return "", false
	}

	lifetime := issuedLifetime(tok)
	m.token = tok.AccessToken
	m.expiry = now.Add(lifetime - m.margin)
	tokenExchanges.WithLabelValues("ok").Inc()
	m.logger.Debug("spotify token refreshed", "expires", m.expiry)
	return m.token, true
}

// issuedLifetime reads the lifetime the token endpoint returned. The client-credentials
// flow leaves ExpiresIn unset, so the raw expires_in field is read first and the absolute
// Expiry, which is measured on the wall clock, is only a last resort.
func issuedLifetime(tok *oauth2.Token) time.Duration {
	if tok.ExpiresIn > 0 {
		return time.Duration(tok.ExpiresIn) * time.Second
	}

	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v * float64(time.Second))
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if secs, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	case nil:
	default:
		if secs, err := strconv.ParseFloat(fmt.Sprint(v), 64); err == nil {
			return time.Duration(secs * float64(time.Second))
		}
	}

	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry)
	}
	return 0
}

// Expiry returns the instant the cached token goes stale, or the zero time.
func (m *TokenManager) Expiry() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiry
}

// Invalidate drops the cached token so the next call exchanges again.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiry = time.Time{}
}
