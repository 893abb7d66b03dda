package models

import (
	"fmt"
	"strings"
	"time"
)

// ArchiveRun is a persisted summary of one archive command invocation.
type ArchiveRun struct {
	id         string
	sequence   int
	roots      []string
	total      int
	succeeded  int
	failed     int
	startedAt  time.Time
	finishedAt *time.Time
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewArchiveRun creates a run that started at startedAt over the given search roots.
func NewArchiveRun(sequence int, roots []string, startedAt time.Time) *ArchiveRun {
	now := time.Now()
	return &ArchiveRun{
		sequence:  sequence,
		roots:     append([]string(nil), roots...),
		startedAt: startedAt,
		createdAt: now,
		updatedAt: now,
	}
}

func (r *ArchiveRun) ID() string                { return r.id }
func (r *ArchiveRun) Sequence() int             { return r.sequence }
func (r *ArchiveRun) Roots() []string           { return r.roots }
func (r *ArchiveRun) Total() int                { return r.total }
func (r *ArchiveRun) Succeeded() int            { return r.succeeded }
func (r *ArchiveRun) Failed() int               { return r.failed }
func (r *ArchiveRun) StartedAt() time.Time      { return r.startedAt }
func (r *ArchiveRun) FinishedAt() *time.Time    { return r.finishedAt }
func (r *ArchiveRun) CreatedAt() time.Time      { return r.createdAt }
func (r *ArchiveRun) UpdatedAt() time.Time      { return r.updatedAt }
func (r *ArchiveRun) DeletedAt() *time.Time     { return r.deletedAt }
func (r *ArchiveRun) SetID(id string)           { r.id = id }
func (r *ArchiveRun) SetSequence(seq int)       { r.sequence = seq }
func (r *ArchiveRun) SetUpdatedAt(t time.Time)  { r.updatedAt = t }
func (r *ArchiveRun) SetCreatedAt(t time.Time)  { r.createdAt = t }
func (r *ArchiveRun) SetDeletedAt(t *time.Time) { r.deletedAt = t }

// RootsString joins roots with newlines for storage.
func (r *ArchiveRun) RootsString() string { return strings.Join(r.roots, "\n") }

// SetRootsString is the inverse of [ArchiveRun.RootsString].
func (r *ArchiveRun) SetRootsString(s string) {
	r.roots = nil
	for _, root := range strings.Split(s, "\n") {
		if root != "" {
			r.roots = append(r.roots, root)
		}
	}
}

// Finish records the totals and completion time of the run.
func (r *ArchiveRun) Finish(total, succeeded, failed int, finishedAt time.Time) {
	r.total = total
	r.succeeded = succeeded
	r.failed = failed
	r.finishedAt = &finishedAt
}

// SetCounts restores totals of a run that has not finished.
func (r *ArchiveRun) SetCounts(total, succeeded, failed int) {
	r.total = total
	r.succeeded = succeeded
	r.failed = failed
}

// Validate checks counts are consistent.
func (r *ArchiveRun) Validate() error {
	if r.id == "" {
		return fmt.Errorf("run ID is required")
	}
	if r.startedAt.IsZero() {
		return fmt.Errorf("run start time is required")
	}
	if r.total < 0 || r.succeeded < 0 || r.failed < 0 {
		return fmt.Errorf("run counts must not be negative")
	}
	if r.succeeded+r.failed > r.total {
		return fmt.Errorf("run outcome counts (%d+%d) exceed total %d", r.succeeded, r.failed, r.total)
	}
	return nil
}

// ArchiveOutcome is the persisted result of archiving one project.
type ArchiveOutcome struct {
	id           string
	sequence     int
	runID        string
	projectPath  string
	archiveName  string
	status       Outcome
	errorMessage string
	startedAt    *time.Time
	finishedAt   *time.Time
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewArchiveOutcome creates an outcome row for runID.
func NewArchiveOutcome(sequence int, runID, projectPath, archiveName string, status Outcome) *ArchiveOutcome {
	now := time.Now()
	return &ArchiveOutcome{
		sequence:    sequence,
		runID:       runID,
		projectPath: projectPath,
		archiveName: archiveName,
		status:      status,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (o *ArchiveOutcome) ID() string                 { return o.id }
func (o *ArchiveOutcome) Sequence() int              { return o.sequence }
func (o *ArchiveOutcome) RunID() string              { return o.runID }
func (o *ArchiveOutcome) ProjectPath() string        { return o.projectPath }
func (o *ArchiveOutcome) ArchiveName() string        { return o.archiveName }
func (o *ArchiveOutcome) Status() Outcome            { return o.status }
func (o *ArchiveOutcome) ErrorMessage() string       { return o.errorMessage }
func (o *ArchiveOutcome) StartedAt() *time.Time      { return o.startedAt }
func (o *ArchiveOutcome) FinishedAt() *time.Time     { return o.finishedAt }
func (o *ArchiveOutcome) CreatedAt() time.Time       { return o.createdAt }
func (o *ArchiveOutcome) UpdatedAt() time.Time       { return o.updatedAt }
func (o *ArchiveOutcome) DeletedAt() *time.Time      { return o.deletedAt }
func (o *ArchiveOutcome) SetID(id string)            { o.id = id }
func (o *ArchiveOutcome) SetSequence(seq int)        { o.sequence = seq }
func (o *ArchiveOutcome) SetErrorMessage(m string)   { o.errorMessage = m }
func (o *ArchiveOutcome) SetStartedAt(t *time.Time)  { o.startedAt = t }
func (o *ArchiveOutcome) SetFinishedAt(t *time.Time) { o.finishedAt = t }
func (o *ArchiveOutcome) SetCreatedAt(t time.Time)   { o.createdAt = t }
func (o *ArchiveOutcome) SetUpdatedAt(t time.Time)   { o.updatedAt = t }
func (o *ArchiveOutcome) SetDeletedAt(t *time.Time)  { o.deletedAt = t }

// Validate requires a parent run, a project path and a terminal status.
func (o *ArchiveOutcome) Validate() error {
	if o.runID == "" {
		return fmt.Errorf("outcome run ID is required")
	}
	if o.projectPath == "" {
		return fmt.Errorf("outcome project path is required")
	}
	if !o.status.IsTerminal() {
		return fmt.Errorf("outcome status must be %q or %q, got %q", OutcomeSucceeded, OutcomeFailed, o.status)
	}
	if o.status == OutcomeFailed && o.errorMessage == "" {
		return fmt.Errorf("failed outcome requires an error message")
	}
	return nil
}
