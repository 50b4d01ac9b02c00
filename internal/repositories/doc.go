// Package repositories implements SQLite persistence for hitscope's persistent entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [ArtistInfoRepository] : Spotify projections keyed by the exact artist name used for the lookup
//   - [EnrichmentRunRepository] : Cache warm-up history with status tracking
//   - [InfoStoreAdapter] : Upserting store used by the info cache for write-through persistence
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
