package main

import (
	"context"

	"github.com/desertthunder/projarc/internal/formatter"
	"github.com/desertthunder/projarc/internal/models"
	"github.com/desertthunder/projarc/internal/shared"
	"github.com/urfave/cli/v3"
)

type skippedJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type scanJSON struct {
	Roots    []string                   `json:"roots"`
	Source   string                     `json:"source"`
	Projects []models.ProjectDescriptor `json:"projects"`
	Skipped  []skippedJSON              `json:"skipped,omitempty"`
}

// Scan lists discovered projects as a table, CSV or JSON.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	roots, scan := r.discover(cmd)

	switch {
	case cmd.Bool("json"):
		out := scanJSON{Roots: roots.Roots(), Source: string(roots.Source()), Projects: scan.Projects}
		for _, s := range scan.Skipped {
			out.Skipped = append(out.Skipped, skippedJSON{Path: s.Path, Error: s.Err.Error()})
		}
		if err := r.writeJSON(out, true); err != nil {
			return err
		}
	case cmd.Bool("csv"):
		data, err := formatter.ProjectsToCSV(scan.Projects)
		if err != nil {
			return err
		}
		if err := r.writePlain("%s", data); err != nil {
			return err
		}
	default:
		if scan.Found {
			if err := r.writePlain("%s\n", formatter.ProjectTable(scan.Projects)); err != nil {
				return err
			}
		}
	}

	if !scan.Found {
		return cli.Exit(shared.ErrNoProjects.Error(), exitNoProjects)
	}
	return nil
}
