package tasks

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/shared"
)

// RunResult contains every task outcome of one archive run.
type RunResult struct {
	ID         string        `json:"id"`
	Roots      []string      `json:"roots,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Tasks      []ArchiveTask `json:"tasks"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
}

// Failures returns the failed tasks.
func (r *RunResult) Failures() []ArchiveTask {
	var failed []ArchiveTask
	for _, t := range r.Tasks {
		if t.Outcome == models.OutcomeFailed {
			failed = append(failed, t)
		}
	}
	return failed
}

// Collisions maps each archive name written by more than one succeeded task to those projects' paths.
// Only the last writer's file survives in the output directory.
func (r *RunResult) Collisions() map[string][]string {
	byName := make(map[string][]string)
	for _, t := range r.Tasks {
		if t.Outcome == models.OutcomeSucceeded {
			byName[t.ArchiveName] = append(byName[t.ArchiveName], t.Project.Path)
		}
	}
	for name, paths := range byName {
		if len(paths) < 2 {
			delete(byName, name)
		}
	}
	return byName
}

// AllSucceeded reports whether every task succeeded.
func (r *RunResult) AllSucceeded() bool { return r.Failed == 0 }

// RunAll archives every project concurrently and waits until all of them are finished.
//
// A failing task never affects its siblings. Tasks are not retried.
func (e *ArchiveEngine) RunAll(ctx context.Context, projects []models.ProjectDescriptor, progress chan<- ProgressUpdate) *RunResult {
	result := &RunResult{ID: shared.GenerateID(), StartedAt: e.clock(), Total: len(projects)}

	tasks := make([]*ArchiveTask, len(projects))
	for i, d := range projects {
		tasks[i] = newArchiveTask(d)
	}

	e.sendProgress(progress, runStartedUpdate(len(tasks)))

	var (
		wg       sync.WaitGroup
		finished atomic.Int64
	)
	for _, task := range tasks {
		wg.Add(1)
		go func(task *ArchiveTask) {
			defer wg.Done()
			e.archive(ctx, task, progress)
			step := int(finished.Add(1))
			e.sendProgress(progress, taskFinishedUpdate(step, len(tasks), *task))
		}(task)
	}
	wg.Wait()

	result.Tasks = make([]ArchiveTask, 0, len(tasks))
	for _, task := range tasks {
		switch task.Outcome {
		case models.OutcomeSucceeded:
			result.Succeeded++
		case models.OutcomeFailed:
			result.Failed++
		}
		result.Tasks = append(result.Tasks, *task)
	}
	result.FinishedAt = e.clock()

	for name, paths := range result.Collisions() {
		e.logger.Warn("archive name collision, earlier archives were overwritten", "archive", name, "projects", paths)
	}

	e.sendProgress(progress, runCompletedUpdate(result))
	return result
}
