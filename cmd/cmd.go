// submodule cmd contains command definitions
package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/projarc/internal/shared"
	"github.com/urfave/cli/v3"
)

func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:      "projarc",
		Usage:     "Discover automation projects and archive them all at once",
		Version:   "0.1.0",
		ArgsUsage: "[root...]",
		Description: "Without a subcommand, projects found one level below each search root are archived concurrently.\n" +
			"Roots come from the arguments, else the paths file, else the default root.",
		Flags:    append(globalFlags(), archiveFlags()...),
		Before:   r.before,
		Action:   r.Archive,
		Commands: r.register(),
		ExitErrHandler: func(ctx context.Context, cmd *cli.Command, err error) {
			// exit codes are applied by main
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
			Sources: cli.EnvVars("PROJARC_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("PROJARC_LOG_LEVEL"),
		},
	}
}

// archiveFlags apply to the root action only; subcommands define their own.
func archiveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "paths-file",
			Local: true,
			Usage: "Text file listing search roots, one per line",
		},
		&cli.StringFlag{
			Name:    "output",
			Local:   true,
			Aliases: []string{"o"},
			Usage:   "Directory receiving archives (defaults to the default root)",
		},
		&cli.StringFlag{
			Name:    "manifest",
			Local:   true,
			Aliases: []string{"m"},
			Usage:   "Write a JSON manifest of the run to this file",
		},
		&cli.FloatFlag{
			Name:  "launch-rate",
			Local: true,
			Usage: "Maximum sessions started per second (0 = unlimited)",
		},
		&cli.BoolFlag{
			Name:  "tui",
			Local: true,
			Usage: "Show an interactive progress view",
		},
		&cli.BoolFlag{
			Name:  "no-wait",
			Local: true,
			Usage: "Exit immediately instead of waiting for the exit delay",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Local: true,
			Usage: "Do not record the run in the history database",
		},
		&cli.BoolFlag{
			Name:  "json",
			Local: true,
			Usage: "Output the run report as JSON",
		},
	}
}

// scanCommand lists discovered projects without archiving them
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Aliases:   []string{"ls"},
		Usage:     "List projects that would be archived",
		ArgsUsage: "[root...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "paths-file",
				Usage: "Text file listing search roots, one per line",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "csv",
				Usage: "Output CSV",
			},
		},
		Action: r.Scan,
	}
}

// historyCommand shows recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show previous archive runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show",
				Value:   10,
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the per-project outcomes of one run",
			},
			&cli.BoolFlag{
				Name:  "failed",
				Usage: "Only show runs with failures",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and initialize the history database",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "reset-history", Usage: "drop and recreate the run history tables"},
		},
		Action: r.Setup,
	}
}

// before loads configuration and applies logging flags for every command.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if !r.pinnedConfig || cmd.IsSet("config") {
		if err := r.loadConfig(cmd.String("config")); err != nil {
			return ctx, err
		}
	}

	level := shared.ParseLogLevel(cmd.String("log-level"))
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

func (r *Runner) loadConfig(path string) error {
	config, err := shared.LoadConfigOrDefault(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	r.config = config
	r.configPath = path
	r.logger.Debug("configuration loaded", "path", path)
	return nil
}
