package tasks

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/projarc/internal/backend"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/shared"
	"golang.org/x/time/rate"
)

// ArchiveTask is the per-project unit of work and its final outcome.
//
// Outcome is written exactly once, when the task reaches a terminal state.
type ArchiveTask struct {
	ID          string                   `json:"id"`
	Project     models.ProjectDescriptor `json:"project"`
	ArchiveName string                   `json:"archive_name"`
	State       models.TaskState         `json:"-"`
	Outcome     models.Outcome           `json:"outcome"`
	Err         error                    `json:"-"`
	Message     string                   `json:"message,omitempty"`
	StartedAt   time.Time                `json:"started_at"`
	FinishedAt  time.Time                `json:"finished_at"`
}

func newArchiveTask(d models.ProjectDescriptor) *ArchiveTask {
	return &ArchiveTask{ID: shared.GenerateID(), Project: d, State: models.StateCreated}
}

// Error returns the failure message or an empty string.
func (t ArchiveTask) Error() string {
	if t.Err == nil {
		return ""
	}
	return t.Err.Error()
}

func (t *ArchiveTask) succeed(at time.Time, msg string) {
	if t.Outcome.IsTerminal() {
		return
	}
	t.State = models.StateSucceeded
	t.Outcome = models.OutcomeSucceeded
	t.Message = msg
	t.FinishedAt = at
}

func (t *ArchiveTask) fail(at time.Time, err error) {
	if t.Outcome.IsTerminal() {
		return
	}
	t.State = models.StateFailed
	t.Outcome = models.OutcomeFailed
	t.Err = err
	t.FinishedAt = at
}

// EngineOpts configures an [ArchiveEngine].
type EngineOpts struct {
	Factory    backend.Factory     // Required
	OutputDir  string              // Directory receiving archives
	Mode       backend.ArchiveMode // Defaults to compressed
	LaunchRate float64             // Sessions started per second; 0 means unlimited
	Logger     *log.Logger
	Clock      func() time.Time // Defaults to time.Now
}

// ArchiveEngine archives projects through sessions created by its factory.
type ArchiveEngine struct {
	factory   backend.Factory
	outputDir string
	mode      backend.ArchiveMode
	limiter   *rate.Limiter
	logger    *log.Logger
	clock     func() time.Time
}

// NewArchiveEngine creates an engine. A nil logger discards output.
func NewArchiveEngine(opts EngineOpts) *ArchiveEngine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	limit := rate.Inf
	burst := 0
	if opts.LaunchRate > 0 {
		limit = rate.Limit(opts.LaunchRate)
		burst = 1
	}

	return &ArchiveEngine{
		factory:   opts.Factory,
		outputDir: opts.OutputDir,
		mode:      opts.Mode,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
		clock:     clock,
	}
}

// OutputDir returns the directory archives are written to.
func (e *ArchiveEngine) OutputDir() string { return e.outputDir }

// sendProgress sends a progress update through the channel without blocking.
func (e *ArchiveEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
		// Channel full, skip this update
	}
}
