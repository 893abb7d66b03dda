package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/projarc/internal/formatter"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/repositories"
	"github.com/desertthunder/projarc/internal/shared"
	"github.com/urfave/cli/v3"
)

type runJSON struct {
	ID         string     `json:"id"`
	Sequence   int        `json:"sequence"`
	Roots      []string   `json:"roots,omitempty"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type outcomeJSON struct {
	Project string `json:"project"`
	Archive string `json:"archive"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

// History lists recorded runs, or the outcomes of one run with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if r.config.Database.Disabled {
		return shared.ErrHistoryOff
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	if runID := cmd.String("run"); runID != "" {
		return r.showRun(repositories.NewRunRepository(db), repositories.NewOutcomeRepository(db), runID, cmd.Bool("json"))
	}

	runs, err := repositories.NewRunRepository(db).List(map[string]any{
		"limit":       int(cmd.Int("limit")),
		"failed_only": cmd.Bool("failed"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, toRunJSON(run))
		}
		return r.writeJSON(out, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded yet\n")
	}
	return r.writePlain("%s\n", formatter.HistoryTable(runs))
}

func (r *Runner) showRun(runs *repositories.RunRepository, outcomes *repositories.OutcomeRepository, id string, asJSON bool) error {
	run, err := runs.Get(id)
	if err != nil {
		return err
	}

	rows, err := outcomes.ListByRun(run.ID())
	if err != nil {
		return err
	}

	if asJSON {
		out := struct {
			Run      runJSON       `json:"run"`
			Outcomes []outcomeJSON `json:"outcomes"`
		}{Run: toRunJSON(run), Outcomes: make([]outcomeJSON, 0, len(rows))}
		for _, o := range rows {
			out.Outcomes = append(out.Outcomes, outcomeJSON{
				Project: o.ProjectPath(),
				Archive: o.ArchiveName(),
				Status:  string(o.Status()),
				Error:   o.ErrorMessage(),
			})
		}
		return r.writeJSON(out, true)
	}

	r.writePlainHeader(fmt.Sprintf("Run #%d (%s)", run.Sequence(), run.ID()))
	return r.writePlain("%s\n", formatter.OutcomeTable(rows))
}

func toRunJSON(run *models.ArchiveRun) runJSON {
	return runJSON{
		ID:         run.ID(),
		Sequence:   run.Sequence(),
		Roots:      run.Roots(),
		Total:      run.Total(),
		Succeeded:  run.Succeeded(),
		Failed:     run.Failed(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
	}
}
