// package formatter renders archive runs, discovered projects and run history as JSON manifests, CSV, text and tables.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/tasks"
)

// ManifestEntry is one project line of a run manifest.
type ManifestEntry struct {
	Project    string         `json:"project"`
	Archive    string         `json:"archive,omitempty"`
	Outcome    models.Outcome `json:"outcome"`
	Error      string         `json:"error,omitempty"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// Manifest describes every archive produced (or attempted) by one run.
type Manifest struct {
	RunID      string          `json:"run_id"`
	Roots      []string        `json:"roots,omitempty"`
	OutputDir  string          `json:"output_dir"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Total      int             `json:"total"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Archives   []ManifestEntry `json:"archives"`
}

// NewManifest builds a manifest from a run result. Entries are sorted by project path.
func NewManifest(result *tasks.RunResult, outputDir string) Manifest {
	m := Manifest{
		RunID:      result.ID,
		Roots:      result.Roots,
		OutputDir:  outputDir,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Total:      result.Total,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
		Archives:   make([]ManifestEntry, 0, len(result.Tasks)),
	}

	for _, t := range sortedTasks(result.Tasks) {
		entry := ManifestEntry{
			Project:    t.Project.Path,
			Outcome:    t.Outcome,
			Error:      t.Error(),
			StartedAt:  t.StartedAt,
			FinishedAt: t.FinishedAt,
		}
		if t.Outcome == models.OutcomeSucceeded {
			entry.Archive = filepath.Join(outputDir, t.ArchiveName)
		}
		m.Archives = append(m.Archives, entry)
	}
	return m
}

// ToManifestJSON generates the indented JSON manifest of a run.
func ToManifestJSON(result *tasks.RunResult, outputDir string) ([]byte, error) {
	data, err := json.MarshalIndent(NewManifest(result, outputDir), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteRunManifest writes the JSON manifest of a run to path, creating parent directories.
func WriteRunManifest(result *tasks.RunResult, outputDir, path string) error {
	if path == "" {
		return fmt.Errorf("manifest path is required")
	}

	data, err := ToManifestJSON(result, outputDir)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create manifest directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// RunSummary renders a plain text report of a run: counts, then failures, then archives.
func RunSummary(result *tasks.RunResult) string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Run: %s\n", result.ID))
	buf.WriteString(fmt.Sprintf("Projects: %d  Archived: %d  Failed: %d\n", result.Total, result.Succeeded, result.Failed))
	if !result.StartedAt.IsZero() && !result.FinishedAt.IsZero() {
		buf.WriteString(fmt.Sprintf("Duration: %s\n", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)))
	}

	ordered := sortedTasks(result.Tasks)
	if result.Failed > 0 {
		buf.WriteString("\nFailed:\n")
		for _, t := range ordered {
			if t.Outcome == models.OutcomeFailed {
				buf.WriteString(fmt.Sprintf("  ✗ %s: %s\n", t.Project.Path, t.Error()))
			}
		}
	}
	if result.Succeeded > 0 {
		buf.WriteString("\nArchived:\n")
		for _, t := range ordered {
			if t.Outcome == models.OutcomeSucceeded {
				buf.WriteString(fmt.Sprintf("  ✓ %s\n", t.ArchiveName))
			}
		}
	}

	return buf.String()
}

// ProjectsToCSV converts discovered projects to CSV with columns: Path, Name, Extension
func ProjectsToCSV(projects []models.ProjectDescriptor) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Path", "Name", "Extension"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range projects {
		if err := writer.Write([]string{p.Path, p.BaseName, p.Extension}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// ProjectTable renders discovered projects as a bordered table.
func ProjectTable(projects []models.ProjectDescriptor) string {
	t := newTable("#", "Name", "Ext", "Path")
	for i, p := range projects {
		t.Row(fmt.Sprintf("%d", i+1), p.BaseName, p.Extension, p.Path)
	}
	return t.Render()
}

// HistoryTable renders past runs, most recent first as given.
func HistoryTable(runs []*models.ArchiveRun) string {
	t := newTable("#", "Started", "Total", "Archived", "Failed", "Duration")
	for _, r := range runs {
		duration := "-"
		if f := r.FinishedAt(); f != nil {
			duration = f.Sub(r.StartedAt()).Round(time.Millisecond).String()
		}
		t.Row(
			fmt.Sprintf("%d", r.Sequence()),
			r.StartedAt().Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d", r.Total()),
			fmt.Sprintf("%d", r.Succeeded()),
			fmt.Sprintf("%d", r.Failed()),
			duration,
		)
	}
	return t.Render()
}

// OutcomeTable renders the per-project outcomes of one run.
func OutcomeTable(outcomes []*models.ArchiveOutcome) string {
	t := newTable("Status", "Project", "Archive", "Error")
	for _, o := range outcomes {
		t.Row(string(o.Status()), o.ProjectPath(), o.ArchiveName(), o.ErrorMessage())
	}
	return t.Render()
}

func sortedTasks(ts []tasks.ArchiveTask) []tasks.ArchiveTask {
	out := append([]tasks.ArchiveTask(nil), ts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Project.Path < out[j].Project.Path })
	return out
}
