package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during an archive run.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // ArchiveTask snapshot for task phases, *RunResult for RunCompleted
}

// Operation phase enumeration
type Phase int

const (
	RunStarted Phase = iota
	TaskProgress
	TaskFinished
	RunCompleted
)

func (p Phase) String() string {
	switch p {
	case RunStarted:
		return "run_started"
	case TaskProgress:
		return "task_progress"
	case TaskFinished:
		return "task_finished"
	case RunCompleted:
		return "run_completed"
	default:
		return ""
	}
}

func runStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunStarted,
		Total:   total,
		Message: fmt.Sprintf("Archiving %d projects...", total),
	}
}

func taskProgressUpdate(task ArchiveTask) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TaskProgress,
		Message: fmt.Sprintf("%s: %s", task.Project.BaseName, task.State),
		Data:    task,
	}
}

func taskFinishedUpdate(step, total int, task ArchiveTask) ProgressUpdate {
	msg := fmt.Sprintf("[%d/%d] ✓ %s", step, total, task.Message)
	if task.Err != nil {
		msg = fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, task.Project.BaseName, task.Err)
	}
	return ProgressUpdate{
		Phase:   TaskFinished,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    task,
	}
}

func runCompletedUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RunCompleted,
		Step:    len(result.Tasks),
		Total:   len(result.Tasks),
		Message: fmt.Sprintf("All projects processed: %d archived, %d failed", result.Succeeded, result.Failed),
		Data:    result,
	}
}
