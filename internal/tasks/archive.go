package tasks

import (
	"context"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/projarc/internal/backend"
	"github.com/desertthunder/projarc/internal/models"
)

// Archive opens the project described by d in a fresh session, archives it into the output directory and closes it.
//
// Failures are recorded in the returned task, never returned as errors.
func (e *ArchiveEngine) Archive(ctx context.Context, d models.ProjectDescriptor, progress chan<- ProgressUpdate) ArchiveTask {
	task := newArchiveTask(d)
	e.archive(ctx, task, progress)
	return *task
}

func (e *ArchiveEngine) archive(ctx context.Context, task *ArchiveTask, progress chan<- ProgressUpdate) {
	runtime.Gosched()

	logger := e.projectLogger(task.Project.Path)
	defer func() {
		if r := recover(); r != nil {
			task.fail(e.clock(), fmt.Errorf("panic while archiving %s: %v", task.Project.Path, r))
			logger.Error("Error archiving project", "error", task.Err)
		}
	}()

	task.StartedAt = e.clock()
	task.ArchiveName = ArchiveFileName(task.Project, task.StartedAt)
	logger.Info("Archiving project")

	e.setState(task, models.StateSessionAcquiring, progress)
	if err := e.limiter.Wait(ctx); err != nil {
		task.fail(e.clock(), &backend.SessionError{Path: task.Project.Path, Err: err})
		logger.Error("Error archiving project", "error", task.Err)
		return
	}

	session, err := e.factory.NewSession(ctx, backend.SessionOpts{Headless: true})
	if err != nil {
		task.fail(e.clock(), &backend.SessionError{Path: task.Project.Path, Err: err})
		logger.Error("Error archiving project", "error", task.Err)
		return
	}
	defer func() {
		if err := session.Dispose(); err != nil {
			logger.Warn("failed to dispose session", "error", err)
		}
	}()

	if err := e.openAndArchive(ctx, session, task, progress); err != nil {
		task.fail(e.clock(), err)
		logger.Error("Error archiving project", "error", err)
		return
	}

	task.succeed(e.clock(), fmt.Sprintf("%s archived!", task.ArchiveName))
	logger.Info(task.Message)
}

// openAndArchive closes the project on every path once Open has succeeded, and never otherwise.
func (e *ArchiveEngine) openAndArchive(ctx context.Context, session backend.Session, task *ArchiveTask, progress chan<- ProgressUpdate) (err error) {
	logger := e.projectLogger(task.Project.Path)

	var (
		handle backend.ProjectHandle
		opened bool
	)
	defer func() {
		if !opened {
			return
		}
		e.setState(task, models.StateClosing, progress)
		logger.Debug("Closing project")
		if closeErr := session.Close(ctx, handle); closeErr != nil {
			logger.Warn("failed to close project", "error", closeErr)
		}
	}()

	e.setState(task, models.StateOpening, progress)
	handle, err = session.Open(ctx, task.Project.Path)
	if err != nil {
		return err
	}
	opened = true

	e.setState(task, models.StateArchiving, progress)
	return session.Archive(ctx, handle, e.outputDir, task.ArchiveName, e.mode)
}

func (e *ArchiveEngine) setState(task *ArchiveTask, state models.TaskState, progress chan<- ProgressUpdate) {
	task.State = state
	e.sendProgress(progress, taskProgressUpdate(*task))
}

// projectLogger tags entries with the project path. Entries go through the engine's logger so concurrent tasks share one lock.
type projectLogger struct {
	l    *log.Logger
	path string
}

func (e *ArchiveEngine) projectLogger(path string) projectLogger {
	return projectLogger{l: e.logger, path: path}
}

func (p projectLogger) kv(kv []any) []any { return append([]any{"project", p.path}, kv...) }

func (p projectLogger) Debug(msg string, kv ...any) {
	p.l.Helper()
	p.l.Debug(msg, p.kv(kv)...)
}

func (p projectLogger) Info(msg string, kv ...any) {
	p.l.Helper()
	p.l.Info(msg, p.kv(kv)...)
}

func (p projectLogger) Warn(msg string, kv ...any) {
	p.l.Helper()
	p.l.Warn(msg, p.kv(kv)...)
}

func (p projectLogger) Error(msg string, kv ...any) {
	p.l.Helper()
	p.l.Error(msg, p.kv(kv)...)
}
