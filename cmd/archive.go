package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/projarc/internal/backend"
	"github.com/desertthunder/projarc/internal/discovery"
	"github.com/desertthunder/projarc/internal/formatter"
	"github.com/desertthunder/projarc/internal/repositories"
	"github.com/desertthunder/projarc/internal/shared"
	"github.com/desertthunder/projarc/internal/tasks"
	"github.com/desertthunder/projarc/internal/ui"
	"github.com/urfave/cli/v3"
)

// Process exit codes
const (
	exitOK         = 0
	exitFailures   = 1
	exitNoProjects = 2
)

const tuiLogPath = "./tmp/projarc-tui.log"

// Archive discovers projects and archives all of them concurrently, then reports, waits and exits.
func (r *Runner) Archive(ctx context.Context, cmd *cli.Command) error {
	launchRate, err := r.launchRate(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("tui") {
		fileLogger, err := shared.NewFileLogger(tuiLogPath)
		if err != nil {
			return fmt.Errorf("failed to create file logger: %w", err)
		}
		r.SetLogger(fileLogger)
	}

	roots, scan := r.discover(cmd)
	if !scan.Found {
		r.wait(cmd)
		return cli.Exit(shared.ErrNoProjects.Error(), exitNoProjects)
	}

	factory, err := r.loader.Load(r.config.Backend)
	if err != nil {
		return fmt.Errorf("failed to load backend: %w", err)
	}
	if bf, ok := factory.(*backend.BridgeFactory); ok && cmd.Bool("tui") {
		bf.SetStderr(nil)
	}

	outputDir := cmd.String("output")
	if outputDir == "" {
		outputDir = r.config.Archive.OutputDirOr(r.config.Search.DefaultRootDir())
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	engine := tasks.NewArchiveEngine(tasks.EngineOpts{
		Factory:    factory,
		OutputDir:  outputDir,
		Mode:       backend.ModeCompressed,
		LaunchRate: launchRate,
		Logger:     r.logger,
	})

	r.logger.Debug("starting archive run", "projects", len(scan.Projects), "backend", factory.Name(), "output", outputDir)

	var result *tasks.RunResult
	if cmd.Bool("tui") {
		if result, err = r.runTUI(ctx, engine, scan); err != nil {
			return err
		}
	} else {
		result = engine.RunAll(ctx, scan.Projects, nil)
	}
	result.Roots = roots.Roots()

	if !cmd.Bool("no-history") {
		r.recordHistory(result)
	}

	if path := cmd.String("manifest"); path != "" {
		if err := formatter.WriteRunManifest(result, outputDir, path); err != nil {
			r.logger.Error("failed to write manifest", "path", path, "error", err)
		} else {
			r.logger.Info("manifest written", "path", path)
		}
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(formatter.NewManifest(result, outputDir), true); err != nil {
			return err
		}
	} else if !cmd.Bool("tui") {
		r.writePlainHeader("Archive run complete")
		if err := r.writePlain("%s", formatter.RunSummary(result)); err != nil {
			return err
		}
	}

	r.wait(cmd)

	if result.Failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d projects failed to archive", result.Failed, result.Total), exitFailures)
	}
	return nil
}

// discover resolves the search roots for cmd and scans them.
func (r *Runner) discover(cmd *cli.Command) (discovery.SearchConfig, discovery.ScanResult) {
	var roots discovery.SearchConfig
	if cmd.Args().Len() > 0 {
		roots = discovery.NewSearchConfig(cmd.Args().Slice()...)
	} else {
		pathsFile := cmd.String("paths-file")
		if pathsFile == "" {
			pathsFile = r.config.Search.PathsFilePath()
		}
		roots = discovery.ResolveSearchRoots(discovery.ResolveOpts{
			PathsFile:   pathsFile,
			DefaultRoot: r.config.Search.DefaultRootDir(),
			Logger:      r.logger,
		})
	}

	scanner := discovery.NewScanner(r.config.Search.Extensions, r.logger)
	return roots, scanner.Scan(roots)
}

func (r *Runner) runTUI(ctx context.Context, engine *tasks.ArchiveEngine, scan discovery.ScanResult) (*tasks.RunResult, error) {
	model := ui.NewModel(ctx, engine.RunAll, scan.Projects)
	p := tea.NewProgram(model, tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running TUI: %w", err)
	}

	result := model.Result()
	if result == nil {
		return nil, shared.ErrRunInterrupted
	}
	return result, nil
}

// launchRate returns the --launch-rate flag when set, else the configured rate.
func (r *Runner) launchRate(cmd *cli.Command) (float64, error) {
	if !cmd.IsSet("launch-rate") {
		return r.config.Archive.LaunchRate, nil
	}
	rate := cmd.Float("launch-rate")
	if rate < 0 {
		return 0, fmt.Errorf("%w: --launch-rate must not be negative, got %v", shared.ErrInvalidInput, rate)
	}
	return rate, nil
}

// recordHistory stores the run in SQLite. Failures are logged and never change the exit code.
func (r *Runner) recordHistory(result *tasks.RunResult) {
	if r.config.Database.Disabled {
		return
	}

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		r.logger.Warn("failed to open history database", "path", r.config.Database.Path, "error", err)
		return
	}
	defer db.Close()

	run, err := repositories.NewHistoryRecorder(db).Record(result)
	if err != nil {
		r.logger.Warn("failed to record run history", "error", err)
		return
	}
	r.logger.Debug("run recorded", "run", run.ID(), "sequence", run.Sequence())
}

func (r *Runner) wait(cmd *cli.Command) {
	delay := r.config.Archive.ExitDelay.Duration
	if cmd.Bool("no-wait") || delay <= 0 {
		return
	}
	r.sleep(delay)
}
