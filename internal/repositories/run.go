package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/shared"
)

// RunRepository implements [models.Repository] for [models.ArchiveRun] persistence.
type RunRepository struct {
	db querier
}

// NewRunRepository creates a new [RunRepository] with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// withTx returns a repository that runs its statements inside tx.
func (r *RunRepository) withTx(tx *sql.Tx) *RunRepository { return &RunRepository{db: tx} }

const runColumns = `id, sequence, roots, total, succeeded, failed, started_at, finished_at, created_at, updated_at, deleted_at`

// Create inserts a new run with a generated sequence. An ID is generated when the run has none.
func (r *RunRepository) Create(run *models.ArchiveRun) error {
	sequence, err := NextSequence(r.db, "runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if run.ID() == "" {
		run.SetID(shared.GenerateID())
	}
	run.SetSequence(sequence)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, sequence, roots, total, succeeded, failed, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		run.ID(), sequence, run.RootsString(), run.Total(), run.Succeeded(), run.Failed(),
		run.StartedAt(), nullable(run.FinishedAt()), run.CreatedAt(), run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID, excluding soft-deleted runs
func (r *RunRepository) Get(id string) (*models.ArchiveRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ? AND deleted_at IS NULL`

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	return run, nil
}

// Update stores the totals and completion time of an existing run
func (r *RunRepository) Update(run *models.ArchiveRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE runs
		SET roots = ?, total = ?, succeeded = ?, failed = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		run.RootsString(), run.Total(), run.Succeeded(), run.Failed(), nullable(run.FinishedAt()), now, run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return expectRow(result, fmt.Errorf("%w: %s not found or already deleted", shared.ErrRunNotFound, run.ID()))
}

// Delete soft-deletes a run by ID
func (r *RunRepository) Delete(id string) error {
	query := `
		UPDATE runs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	return expectRow(result, fmt.Errorf("%w: %s not found or already deleted", shared.ErrRunNotFound, id))
}

// List retrieves runs matching the given criteria, newest first, excluding soft-deleted runs.
//
// Supported criteria: "failed_only" (bool) and "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.ArchiveRun, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE deleted_at IS NULL`
	args := []any{}

	if failedOnly, ok := criteria["failed_only"].(bool); ok && failedOnly {
		query += " AND failed > 0"
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ArchiveRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Recent returns at most limit runs, newest first.
func (r *RunRepository) Recent(limit int) ([]*models.ArchiveRun, error) {
	return r.List(map[string]any{"limit": limit})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.ArchiveRun, error) {
	var (
		runID      string
		sequence   int
		roots      string
		total      int
		succeeded  int
		failed     int
		startedAt  time.Time
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&runID, &sequence, &roots, &total, &succeeded, &failed,
		&startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	run := models.NewArchiveRun(sequence, nil, startedAt)
	run.SetID(runID)
	run.SetRootsString(roots)
	if finishedAt.Valid {
		run.Finish(total, succeeded, failed, finishedAt.Time)
	} else {
		run.SetCounts(total, succeeded, failed)
	}
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		run.SetDeletedAt(&deletedAt.Time)
	}

	return run, nil
}

// expectRow returns notFound when the statement touched no rows.
func expectRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
