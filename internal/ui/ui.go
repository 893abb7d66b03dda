package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProgressView ViewState = iota
	ResultView
)

const recentLines = 5

// RunFunc starts an archive run, reporting to progress. [tasks.ArchiveEngine.RunAll] satisfies it.
type RunFunc func(ctx context.Context, projects []models.ProjectDescriptor, progress chan<- tasks.ProgressUpdate) *tasks.RunResult

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	cancel       context.CancelFunc
	view         ViewState
	run          RunFunc
	projects     []models.ProjectDescriptor
	states       map[string]models.TaskState
	total        int
	finished     int
	failed       int
	recent       []string
	width        int
	height       int
	spinner      spinner.Model
	bar          progress.Model
	outcomes     list.Model
	progressChan chan tasks.ProgressUpdate
	done         chan *tasks.RunResult
	result       *tasks.RunResult
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model that archives projects with run once started.
func NewModel(ctx context.Context, run RunFunc, projects []models.ProjectDescriptor) *Model {
	ctx, cancel := context.WithCancel(ctx)

	states := make(map[string]models.TaskState, len(projects))
	for _, p := range projects {
		states[p.Path] = models.StateCreated
	}

	return &Model{
		ctx:      ctx,
		cancel:   cancel,
		view:     ProgressView,
		run:      run,
		projects: projects,
		states:   states,
		total:    len(projects),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(NewStyle("#7D56F4"))),
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Result returns the finished run, or nil when the user quit before it completed.
func (m *Model) Result() *tasks.RunResult { return m.result }

// Init starts the run and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = min(max(msg.Width-4, 10), 60)
		if m.view == ResultView {
			m.outcomes.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if m.view != ProgressView {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		if b, ok := bar.(progress.Model); ok {
			m.bar = b
		}
		return m, cmd

	case Msg:
		switch msg.kind {
		case MsgProgressUpdate:
			m.apply(msg.data.(tasks.ProgressUpdate))
			return m, tea.Batch(m.waitForProgress(), m.bar.SetPercent(m.percent()))
		case MsgRunComplete:
			m.complete(msg.data.(*tasks.RunResult))
			return m, m.bar.SetPercent(1)
		}
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.outcomes, cmd = m.outcomes.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case ProgressView:
		return m.renderProgress()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view == ResultView && m.outcomes.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.outcomes, cmd = m.outcomes.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.cancel()
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	if m.view == ResultView {
		var cmd tea.Cmd
		m.outcomes, cmd = m.outcomes.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(u tasks.ProgressUpdate) {
	switch u.Phase {
	case tasks.RunStarted:
		m.total = u.Total
	case tasks.TaskProgress:
		if t, ok := u.Data.(tasks.ArchiveTask); ok {
			m.states[t.Project.Path] = t.State
		}
	case tasks.TaskFinished:
		if t, ok := u.Data.(tasks.ArchiveTask); ok {
			m.states[t.Project.Path] = t.State
			if t.Outcome == models.OutcomeFailed {
				m.failed++
			}
		}
		m.finished = max(m.finished, u.Step)
		m.recent = append(m.recent, u.Message)
		if len(m.recent) > recentLines {
			m.recent = m.recent[len(m.recent)-recentLines:]
		}
	}
}

func (m *Model) complete(result *tasks.RunResult) {
	m.result = result
	m.view = ResultView
	if result == nil {
		return
	}

	m.finished = len(result.Tasks)
	m.failed = result.Failed
	for _, t := range result.Tasks {
		m.states[t.Project.Path] = t.State
	}

	m.outcomes = list.New(outcomeItems(result.Tasks), list.NewDefaultDelegate(), 0, 0)
	m.outcomes.Title = "Archive results"
	m.outcomes.SetSize(max(m.width-4, 20), max(m.height-8, 10))
}

func (m *Model) percent() float64 {
	if m.total == 0 {
		return 1
	}
	return float64(m.finished) / float64(m.total)
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 6*len(m.projects)+4)
	m.done = make(chan *tasks.RunResult, 1)

	go func(ch chan tasks.ProgressUpdate, done chan *tasks.RunResult) {
		done <- m.run(m.ctx, m.projects, ch)
		close(ch)
	}(m.progressChan, m.done)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	ch, done := m.progressChan, m.done
	return func() tea.Msg {
		update, ok := <-ch
		if !ok {
			return runCompleteMsg(<-done)
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderProgress() string {
	var b strings.Builder

	b.WriteString(styles.Title(fmt.Sprintf("Archiving %d projects", m.total)))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %d/%d finished", m.spinner.View(), m.finished, m.total))
	if m.failed > 0 {
		b.WriteString(" " + styles.Err(fmt.Sprintf("(%d failed)", m.failed)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.bar.View())
	b.WriteString("\n\n")

	paths := make([]string, 0, len(m.states))
	for p := range m.states {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		b.WriteString(m.renderState(p, m.states[p]))
		b.WriteString("\n")
	}

	if len(m.recent) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Help(strings.Join(m.recent, "\n")))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderState(path string, state models.TaskState) string {
	name := path
	for _, p := range m.projects {
		if p.Path == path {
			name = p.BaseName
			break
		}
	}

	switch state {
	case models.StateSucceeded:
		return styles.OK("✓ " + name)
	case models.StateFailed:
		return styles.Err("✗ " + name)
	case models.StateCreated:
		return styles.Help("· " + name)
	default:
		return fmt.Sprintf("%s %s %s", m.spinner.View(), name, styles.As(state.String(), lipgloss.Color("#626262")))
	}
}

func (m *Model) renderResult() string {
	if m.result == nil {
		return styles.Err("Run did not complete") + "\n\n" + m.help.View(m.keys)
	}

	var title string
	if m.result.Failed == 0 {
		title = styles.OK(fmt.Sprintf("✓ %d projects archived", m.result.Succeeded))
	} else {
		title = styles.Warn(fmt.Sprintf("%d archived, %d failed", m.result.Succeeded, m.result.Failed))
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.outcomes.View(), m.help.View(m.keys))
}
