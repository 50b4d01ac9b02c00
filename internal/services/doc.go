// Package services talks to the Spotify Web API to enrich artists with live metadata.
//
// # Token Manager
//
// [TokenManager] performs the client-credentials exchange through [clientcredentials.Config] and
// caches the bearer token until its issued lifetime, minus a safety margin, has elapsed. The
// clock is injectable so expiry can be tested without sleeping.
//
// # Artist Lookup
//
// [SpotifyClient] issues a single search request (type=artist, limit=1) per lookup. Every
// failure mode (no token, non-2xx status, transport or decode error, open circuit) is reported
// as "absent" rather than as an error, and logged.
//
// # Projection and Cache
//
// [InfoService] turns a match into [models.ArtistInfo], substituting "N/A" for missing
// fields. [InfoCache] memoizes projections by exact name until cleared, optionally backed by
// an [InfoStore] so matches survive restarts.
//
// # Metrics
//
// Token exchanges, lookups, search latency and cache events are exported as Prometheus
// collectors on the default registry.
package services
