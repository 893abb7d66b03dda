package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/tasks"
)

// HistoryRecorder persists finished archive runs.
type HistoryRecorder struct {
	db       *sql.DB
	runs     *RunRepository
	outcomes *OutcomeRepository
}

// NewHistoryRecorder creates a recorder writing to db.
func NewHistoryRecorder(db *sql.DB) *HistoryRecorder {
	return &HistoryRecorder{db: db, runs: NewRunRepository(db), outcomes: NewOutcomeRepository(db)}
}

// Runs exposes the run repository backing the recorder.
func (h *HistoryRecorder) Runs() *RunRepository { return h.runs }

// Outcomes exposes the outcome repository backing the recorder.
func (h *HistoryRecorder) Outcomes() *OutcomeRepository { return h.outcomes }

// Record stores result as a run row plus one outcome row per task. The run keeps the result's ID.
//
// All rows are written in one transaction: on error nothing of the run is stored.
func (h *HistoryRecorder) Record(result *tasks.RunResult) (*models.ArchiveRun, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	runs, outcomes := h.runs.withTx(tx), h.outcomes.withTx(tx)

	run := models.NewArchiveRun(0, result.Roots, result.StartedAt)
	run.SetID(result.ID)
	run.Finish(result.Total, result.Succeeded, result.Failed, result.FinishedAt)

	if err := runs.Create(run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}

	for _, task := range result.Tasks {
		if !task.Outcome.IsTerminal() {
			continue
		}
		outcome := models.NewArchiveOutcome(0, run.ID(), task.Project.Path, task.ArchiveName, task.Outcome)
		outcome.SetErrorMessage(task.Error())
		if !task.StartedAt.IsZero() {
			startedAt := task.StartedAt
			outcome.SetStartedAt(&startedAt)
		}
		if !task.FinishedAt.IsZero() {
			finishedAt := task.FinishedAt
			outcome.SetFinishedAt(&finishedAt)
		}

		if err := outcomes.Create(outcome); err != nil {
			return nil, fmt.Errorf("failed to record outcome for %s: %w", task.Project.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit run: %w", err)
	}
	return run, nil
}
