package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/shared"
)

// OutcomeRepository implements [models.Repository] for [models.ArchiveOutcome] persistence.
type OutcomeRepository struct {
	db querier
}

// NewOutcomeRepository creates a new [OutcomeRepository] with the given database connection
func NewOutcomeRepository(db *sql.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

// withTx returns a repository that runs its statements inside tx.
func (r *OutcomeRepository) withTx(tx *sql.Tx) *OutcomeRepository { return &OutcomeRepository{db: tx} }

const outcomeColumns = `id, sequence, run_id, project_path, archive_name, status, error_message, started_at, finished_at, created_at, updated_at, deleted_at`

// Create inserts a new outcome with generated ID and sequence
func (r *OutcomeRepository) Create(outcome *models.ArchiveOutcome) error {
	sequence, err := NextSequence(r.db, "archive_outcomes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	outcome.SetID(shared.GenerateID())
	outcome.SetSequence(sequence)

	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO archive_outcomes (id, sequence, run_id, project_path, archive_name, status, error_message, started_at, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		outcome.ID(), sequence, outcome.RunID(), outcome.ProjectPath(), outcome.ArchiveName(),
		string(outcome.Status()), outcome.ErrorMessage(),
		nullable(outcome.StartedAt()), nullable(outcome.FinishedAt()), outcome.CreatedAt(), outcome.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}

	return nil
}

// Get retrieves an outcome by ID, excluding soft-deleted outcomes
func (r *OutcomeRepository) Get(id string) (*models.ArchiveOutcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM archive_outcomes WHERE id = ? AND deleted_at IS NULL`

	outcome, err := scanOutcome(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("outcome not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query outcome: %w", err)
	}

	return outcome, nil
}

// Update modifies the status and error of an existing outcome
func (r *OutcomeRepository) Update(outcome *models.ArchiveOutcome) error {
	if err := outcome.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	outcome.SetUpdatedAt(now)

	query := `
		UPDATE archive_outcomes
		SET archive_name = ?, status = ?, error_message = ?, finished_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		outcome.ArchiveName(), string(outcome.Status()), outcome.ErrorMessage(), nullable(outcome.FinishedAt()), now, outcome.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update outcome: %w", err)
	}

	return expectRow(result, fmt.Errorf("outcome not found or already deleted: %s", outcome.ID()))
}

// Delete soft-deletes an outcome by ID
func (r *OutcomeRepository) Delete(id string) error {
	query := `
		UPDATE archive_outcomes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete outcome: %w", err)
	}

	return expectRow(result, fmt.Errorf("outcome not found or already deleted: %s", id))
}

// List retrieves outcomes matching the given criteria in sequence order, excluding soft-deleted outcomes.
//
// Supported criteria: "run_id" (string) and "status" ([models.Outcome]).
func (r *OutcomeRepository) List(criteria map[string]any) ([]*models.ArchiveOutcome, error) {
	query := `SELECT ` + outcomeColumns + ` FROM archive_outcomes WHERE deleted_at IS NULL`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if status, ok := criteria["status"].(models.Outcome); ok && status != models.OutcomePending {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []*models.ArchiveOutcome
	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		outcomes = append(outcomes, outcome)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return outcomes, nil
}

// ListByRun returns every outcome recorded for runID.
func (r *OutcomeRepository) ListByRun(runID string) ([]*models.ArchiveOutcome, error) {
	return r.List(map[string]any{"run_id": runID})
}

func scanOutcome(row rowScanner) (*models.ArchiveOutcome, error) {
	var (
		outcomeID    string
		sequence     int
		runID        string
		projectPath  string
		archiveName  string
		status       string
		errorMessage sql.NullString
		startedAt    sql.NullTime
		finishedAt   sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
		deletedAt    sql.NullTime
	)

	err := row.Scan(&outcomeID, &sequence, &runID, &projectPath, &archiveName, &status, &errorMessage,
		&startedAt, &finishedAt, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	outcome := models.NewArchiveOutcome(sequence, runID, projectPath, archiveName, models.Outcome(status))
	outcome.SetID(outcomeID)
	outcome.SetErrorMessage(errorMessage.String)
	if startedAt.Valid {
		outcome.SetStartedAt(&startedAt.Time)
	}
	if finishedAt.Valid {
		outcome.SetFinishedAt(&finishedAt.Time)
	}
	outcome.SetCreatedAt(createdAt)
	outcome.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		outcome.SetDeletedAt(&deletedAt.Time)
	}

	return outcome, nil
}
