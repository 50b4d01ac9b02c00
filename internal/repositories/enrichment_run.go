package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hitscope/internal/models"
	"github.com/desertthunder/hitscope/internal/shared"
)

// EnrichmentRunRepository implements models.Repository[*models.EnrichmentRun] for warm-up run tracking.
//
// Handles run CRUD operations with soft delete support and status-based queries.
type EnrichmentRunRepository struct {
	db *sql.DB
}

// NewEnrichmentRunRepository creates a new EnrichmentRunRepository with the given database connection
func NewEnrichmentRunRepository(db *sql.DB) *EnrichmentRunRepository {
	return &EnrichmentRunRepository{db: db}
}

const enrichmentRunColumns = `
	id, sequence, status, artists_total, artists_found, artists_missing,
	error_message, started_at, completed_at, created_at, updated_at, deleted_at
`

// Create inserts a new run into the database with generated ID and sequence
func (r *EnrichmentRunRepository) Create(run *models.EnrichmentRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "enrichment_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	query := `
		INSERT INTO enrichment_runs (
			id, sequence, status, artists_total, artists_found, artists_missing,
			error_message, started_at, completed_at, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		string(run.Status()),
		run.Total(),
		run.Found(),
		run.Missing(),
		nullable(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert enrichment run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *EnrichmentRunRepository) Get(id string) (*models.EnrichmentRun, error) {
	query := `SELECT ` + enrichmentRunColumns + ` FROM enrichment_runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanEnrichmentRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: enrichment run %s", shared.ErrRecordNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan enrichment run: %w", err)
	}
	return run, nil
}

// Update modifies an existing run in the database
func (r *EnrichmentRunRepository) Update(run *models.EnrichmentRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE enrichment_runs
		SET status = ?, artists_total = ?, artists_found = ?, artists_missing = ?,
			error_message = ?, started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		string(run.Status()),
		run.Total(),
		run.Found(),
		run.Missing(),
		nullable(run.ErrorMessage()),
		run.StartedAt(),
		run.CompletedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update enrichment run: %w", err)
	}

	return requireAffected(result, "enrichment run", run.ID())
}

// Delete soft-deletes a run by ID
func (r *EnrichmentRunRepository) Delete(id string) error {
	result, err := r.db.Exec(`UPDATE enrichment_runs SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete enrichment run: %w", err)
	}
	return requireAffected(result, "enrichment run", id)
}

// List retrieves runs newest first. Supported criteria: "status" (string), "limit" (int).
func (r *EnrichmentRunRepository) List(criteria map[string]any) ([]*models.EnrichmentRun, error) {
	query := `SELECT ` + enrichmentRunColumns + ` FROM enrichment_runs WHERE deleted_at IS NULL`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrichment runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.EnrichmentRun
	for rows.Next() {
		run, err := scanEnrichmentRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrichment run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func scanEnrichmentRun(row scanner) (*models.EnrichmentRun, error) {
	var (
		id           string
		sequence     int
		status       string
		total        int
		found        int
		missing      int
		errorMessage sql.NullString
		startedAt    time.Time
		completedAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&id, &sequence, &status, &total, &found, &missing,
		&errorMessage, &startedAt, &completedAt, &createdAt, &updatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	run := models.NewEnrichmentRun(sequence, total)
	run.SetID(id)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	var completed *time.Time
	if completedAt.Valid {
		completed = &completedAt.Time
	}
	run.Restore(models.RunStatus(status), total, found, missing, errorMessage.String, completed)

	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}
