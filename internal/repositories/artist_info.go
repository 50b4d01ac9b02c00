package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// ArtistInfoRepository implements [models.Repository] for [models.CachedInfo] persistence.
type ArtistInfoRepository struct {
	db *sql.DB
}

// NewArtistInfoRepository creates a new [ArtistInfoRepository] with the given database connection
func NewArtistInfoRepository(db *sql.DB) *ArtistInfoRepository {
	return &ArtistInfoRepository{db: db}
}

const artistInfoColumns = `id, sequence, name, image_url, followers, popularity, genres, spotify_url, found, created_at, updated_at, deleted_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanArtistInfo(row scanner) (*models.CachedInfo, error) {
	var (
		id         string
		sequence   int
		info       models.ArtistInfo
		imageURL   sql.NullString
		spotifyURL sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &info.Name, &imageURL, &info.Followers, &info.Popularity, &info.Genres,
		&spotifyURL, &info.Found, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}
	info.ImageURL = imageURL.String
	info.SpotifyURL = spotifyURL.String

	cached := models.NewCachedInfo(sequence, info)
	cached.SetID(id)
	cached.SetCreatedAt(createdAt)
	cached.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		cached.SetDeletedAt(&deletedAt.Time)
	}
	return cached, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create inserts a new cached projection with generated ID and sequence
func (r *ArtistInfoRepository) Create(cached *models.CachedInfo) error {
	if err := cached.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "artist_info")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	cached.SetID(id)
	cached.SetSequence(sequence)

	info := cached.Info()
	query := `
		INSERT INTO artist_info (id, sequence, name, image_url, followers, popularity, genres, spotify_url, found, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, info.Name, nullable(info.ImageURL), info.Followers, info.Popularity,
		info.Genres, nullable(info.SpotifyURL), info.Found, cached.CreatedAt(), cached.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert artist info: %w", err)
	}

	return nil
}

// Upsert stores info under its name in a single statement. A live row with the same name
// keeps its id and sequence and has its display fields replaced.
func (r *ArtistInfoRepository) Upsert(info models.ArtistInfo) error {
	cached := models.NewCachedInfo(0, info)
	if err := cached.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "artist_info")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	now := time.Now()
	query := `
		INSERT INTO artist_info (id, sequence, name, image_url, followers, popularity, genres, spotify_url, found, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) WHERE deleted_at IS NULL DO UPDATE SET
			image_url = excluded.image_url,
			followers = excluded.followers,
			popularity = excluded.popularity,
			genres = excluded.genres,
			spotify_url = excluded.spotify_url,
			found = excluded.found,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query, shared.GenerateID(), sequence, info.Name, nullable(info.ImageURL), info.Followers,
		info.Popularity, info.Genres, nullable(info.SpotifyURL), info.Found, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert artist info: %w", err)
	}
	return nil
}

// Get retrieves a cached projection by ID, excluding soft-deleted rows
func (r *ArtistInfoRepository) Get(id string) (*models.CachedInfo, error) {
	query := `SELECT ` + artistInfoColumns + ` FROM artist_info WHERE id = ? AND deleted_at IS NULL`

	cached, err := scanArtistInfo(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artist info %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist info: %w", err)
	}
	return cached, nil
}

// GetByName retrieves the live projection stored under the exact artist name
func (r *ArtistInfoRepository) GetByName(name string) (*models.CachedInfo, error) {
	query := `SELECT ` + artistInfoColumns + ` FROM artist_info WHERE name = ? AND deleted_at IS NULL`

	cached, err := scanArtistInfo(r.db.QueryRow(query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artist info for %q", shared.ErrRecordNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query artist info: %w", err)
	}
	return cached, nil
}

// Update overwrites the display fields of an existing projection
func (r *ArtistInfoRepository) Update(cached *models.CachedInfo) error {
	if err := cached.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	cached.SetUpdatedAt(now)
	info := cached.Info()

	query := `
		UPDATE artist_info
		SET name = ?, image_url = ?, followers = ?, popularity = ?, genres = ?, spotify_url = ?, found = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, info.Name, nullable(info.ImageURL), info.Followers, info.Popularity, info.Genres,
		nullable(info.SpotifyURL), info.Found, now, cached.ID())
	if err != nil {
		return fmt.Errorf("failed to update artist info: %w", err)
	}

	return requireAffected(result, "artist info", cached.ID())
}

// Delete soft-deletes a projection by ID
func (r *ArtistInfoRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE artist_info SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete artist info: %w", err)
	}
	return requireAffected(result, "artist info", id)
}

// List retrieves live projections. Supported criteria: "found" (bool), "name" (string).
func (r *ArtistInfoRepository) List(criteria map[string]any) ([]*models.CachedInfo, error) {
	query := `SELECT ` + artistInfoColumns + ` FROM artist_info WHERE deleted_at IS NULL`
	args := []any{}

	if found, ok := criteria["found"].(bool); ok {
		query += " AND found = ?"
		args = append(args, found)
	}
	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query artist info: %w", err)
	}
	defer rows.Close()

	var out []*models.CachedInfo
	for rows.Next() {
		cached, err := scanArtistInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artist info: %w", err)
		}
		out = append(out, cached)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return out, nil
}

// Clear soft-deletes every live projection and returns how many were removed
func (r *ArtistInfoRepository) Clear() (int64, error) {
	result, err := r.db.Exec(`UPDATE artist_info SET deleted_at = ? WHERE deleted_at IS NULL`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear artist info: %w", err)
	}
	return result.RowsAffected()
}

func requireAffected(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s not found or already deleted", shared.ErrRecordNotFound, entity, id)
	}
	return nil
}
