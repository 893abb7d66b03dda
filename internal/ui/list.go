package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/tasks"
)

var _ list.Item = taskItem{}

// taskItem wraps [tasks.ArchiveTask] to implement [list.Item].
type taskItem struct {
	task tasks.ArchiveTask
}

func (i taskItem) FilterValue() string { return i.task.Project.BaseName }

func (i taskItem) Title() string {
	if i.task.Outcome == models.OutcomeFailed {
		return "✗ " + i.task.Project.BaseName
	}
	return "✓ " + i.task.Project.BaseName
}

func (i taskItem) Description() string {
	if i.task.Err != nil {
		return i.task.Err.Error()
	}
	return fmt.Sprintf("%s • %s", i.task.ArchiveName, i.task.Project.Path)
}

// outcomeItems orders failures first so they are visible without scrolling.
func outcomeItems(ts []tasks.ArchiveTask) []list.Item {
	items := make([]list.Item, 0, len(ts))
	for _, t := range ts {
		if t.Outcome == models.OutcomeFailed {
			items = append(items, taskItem{task: t})
		}
	}
	for _, t := range ts {
		if t.Outcome != models.OutcomeFailed {
			items = append(items, taskItem{task: t})
		}
	}
	return items
}
