package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pipewright/pipewright/internal/config"
	"github.com/pipewright/pipewright/internal/docs"
	"github.com/pipewright/pipewright/internal/doctor"
	"github.com/pipewright/pipewright/internal/prompt"
	"github.com/pipewright/pipewright/internal/publish"
	"github.com/pipewright/pipewright/internal/reconcile"
	"github.com/pipewright/pipewright/internal/remote"
	"github.com/pipewright/pipewright/internal/retry"
	"github.com/pipewright/pipewright/internal/runner"
	"github.com/pipewright/pipewright/internal/scaffold"
	"github.com/pipewright/pipewright/internal/task"
	"github.com/pipewright/pipewright/internal/ux"
	"github.com/pipewright/pipewright/internal/validate"
	cli "github.com/urfave/cli/v3"
)

func main() {
	app := &cli.Command{
		Name:        "pipewright",
		Usage:       "Generate and publish CI pipelines for a repository",
		Description: "Run 'pipewright docs' for documentation on configuration, stages, prompts, and recovery.",
		Commands: []*cli.Command{
			initCmd(),
			runCmd(),
			statusCmd(),
			doctorCmd(),
			docsCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%serror:%s %v\n", ux.Red, ux.Reset, err)
		os.Exit(1)
	}
}

func runCmd() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the pipeline for a repository",
		ArgsUsage: "<repo-url>",
		Flags: []cli.Flag{
			configFlag(),
			verboseFlag(),
			&cli.StringFlag{Name: "branch", Usage: "Branch to analyze instead of the default branch"},
			&cli.StringFlag{Name: "task-id", Usage: "Reuse a task id instead of generating one"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			repoURL := cmd.Args().First()
			if repoURL == "" {
				return fmt.Errorf("repository URL argument is required")
			}
			if _, err := task.ParseRepoURL(repoURL); err != nil {
				return err
			}
			if id := cmd.String("task-id"); id != "" {
				if err := task.ValidateID(id); err != nil {
					return err
				}
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(cmd.Bool("verbose"))
			r, err := buildRunner(cfg, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
			defer stop()

			_, err = r.Run(ctx, task.Input{
				ID:     cmd.String("task-id"),
				Repo:   repoURL,
				Branch: cmd.String("branch"),
			})
			return err
		},
	}
}

func statusCmd() *cli.Command {
	return &cli.Command{
		Name:      "status",
		Usage:     "List recorded tasks, or show one task's step trail",
		ArgsUsage: "[task-id]",
		Flags:     []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := task.NewFileStore(cfg.Store.Dir)
			if err != nil {
				return err
			}

			if id := cmd.Args().First(); id != "" {
				t, err := store.Get(id)
				if err != nil {
					return err
				}
				ux.RenderTask(t)
				return nil
			}

			tasks, err := store.List()
			if err != nil {
				return err
			}
			ux.RenderTaskList(tasks)
			return nil
		},
	}
}

func doctorCmd() *cli.Command {
	return &cli.Command{
		Name:  "doctor",
		Usage: "Check the config, gateways, and credentials before a run",
		Flags: []cli.Flag{configFlag()},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := locateConfig(cmd)
			if err != nil {
				return err
			}
			return doctor.Run(path)
		},
	}
}

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Scaffold pipewright.yaml and a prompts directory",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}
			return scaffold.Init(dir)
		},
	}
}

func docsCmd() *cli.Command {
	return &cli.Command{
		Name:      "docs",
		Usage:     "Show documentation",
		ArgsUsage: "[topic]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.Args().First()
			if name == "" {
				fmt.Print("\nAvailable topics:\n\n")
				for _, t := range docs.All() {
					fmt.Printf("  %-12s %s\n", t.Name, t.Summary)
				}
				fmt.Println("\nRun 'pipewright docs <topic>' to read a topic.")
				return nil
			}
			t, err := docs.Get(name)
			if err != nil {
				return err
			}
			fmt.Print(t.Content)
			return nil
		},
	}
}

func configFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "config", Usage: "Path to the config file (default: nearest pipewright.yaml)"}
}

func verboseFlag() *cli.BoolFlag {
	return &cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging on stderr"}
}

func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path, err := locateConfig(cmd)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// locateConfig honors --config when given, otherwise walks up from the
// working directory looking for pipewright.yaml.
func locateConfig(cmd *cli.Command) (string, error) {
	if path := cmd.String("config"); path != "" {
		return path, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, "pipewright.yaml")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no pipewright.yaml found (searched from cwd to root); run 'pipewright init' to create one")
		}
		dir = parent
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildRunner assembles the engine from config: gateway clients, retry
// controller, task store, prompt builder, validator, and publisher.
func buildRunner(cfg *config.Config, logger *slog.Logger) (*runner.Runner, error) {
	connect := time.Duration(cfg.Gateway.ConnectTimeout) * time.Second
	agent := remote.NewAgentClient(cfg.Gateway.AgentURL, connect,
		time.Duration(cfg.Gateway.AgentTimeout)*time.Second, logger)

	var function remote.Caller
	if cfg.Gateway.FunctionURL != "" {
		function = remote.NewFunctionClient(cfg.Gateway.FunctionURL, connect,
			time.Duration(cfg.Gateway.FunctionTimeout)*time.Second, logger)
	}

	retrier := retry.New(retry.Config{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BackoffBase: time.Duration(cfg.Retry.BackoffBase) * time.Second,
		MaxBackoff:  time.Duration(cfg.Retry.MaxBackoff) * time.Second,
	}, logger)

	store, err := task.NewFileStore(cfg.Store.Dir)
	if err != nil {
		return nil, err
	}

	gateway, err := buildGateway(cfg, function, logger)
	if err != nil {
		return nil, err
	}

	return &runner.Runner{
		Config:     cfg,
		Agent:      agent,
		Function:   function,
		Retrier:    retrier,
		Store:      store,
		Prompts:    prompt.NewBuilder(cfg.PromptsDir),
		Validator:  validate.NewAdapter(buildValidator(cfg, function), logger),
		Reconciler: reconcile.New(gateway, logger),
		Logger:     logger,
	}, nil
}

func buildValidator(cfg *config.Config, function remote.Caller) validate.Validator {
	switch cfg.Validator.Mode {
	case "actionlint":
		return &validate.LintValidator{}
	case "remote":
		return &validate.RemoteValidator{Caller: function, Ref: cfg.Validator.Function}
	default:
		return &validate.ActionsValidator{Level: validate.Level(cfg.Validator.Level)}
	}
}

func buildGateway(cfg *config.Config, function remote.Caller, logger *slog.Logger) (publish.Gateway, error) {
	if cfg.Publisher.Mode == "remote" {
		return &publish.RemoteGateway{Caller: function, Ref: cfg.Publisher.Function}, nil
	}
	token := os.Getenv(cfg.Publisher.TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("publisher token missing: set %s or switch publisher.mode (see 'pipewright doctor')", cfg.Publisher.TokenEnv)
	}
	return publish.NewGitHubGateway(token, cfg.Publisher.Host, logger)
}
