// Package models defines domain entities and persistence interfaces for hitscope.
//
// The package contains two categories of types:
//
// 1. Dataset records: immutable values decoded from the precomputed JSON payloads
//   - [Artist] : per-artist aggregates, audio-feature averages and songs
//   - [Prediction] : per-artist forecast for the next release
//   - [CombinedArtist] : an artist joined with its prediction (nil when absent)
//   - [ArtistInfo] : display projection of a Spotify artist lookup
//
// 2. Persistent entities: database-backed models with full lifecycle management
//   - [CachedInfo] : an [ArtistInfo] stored so lookups survive restarts
//   - [EnrichmentRun] : one cache warm-up pass and its outcome
//
// Persistent entities embed [Record] and implement the Model interface providing ID generation, timestamps,
// validation, and soft delete support. The Repository[T] interface defines standard CRUD operations for database access.
package models
