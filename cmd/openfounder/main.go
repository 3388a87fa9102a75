package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"openfounder/internal/audit"
	"openfounder/internal/config"
	"openfounder/internal/logging"
	"openfounder/internal/workspace"
)

const appName = "openfounder"

var version = "dev"

// errReported marks a failure whose details were already printed.
var errReported = errors.New("plan validation failed")

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := newRootCmd(a).Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// app holds what every command shares once flags are parsed.
type app struct {
	home       string
	configPath string
	logLevel   string

	ws    *workspace.Workspace
	cfg   *config.Config
	log   *slog.Logger
	audit *audit.Logger

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Seed autonomous AI ventures from a business brief",
		Long:          "OpenFounder turns a business brief into a validated multi-agent workflow, installs it with the workflow runner and starts the first sprint.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "help" {
				return nil
			}
			return a.setup()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	defaultHome := os.Getenv("OPENFOUNDER_HOME")
	if defaultHome == "" {
		defaultHome = workspace.DefaultRoot
	}
	root.PersistentFlags().StringVar(&a.home, "home", defaultHome, "OpenFounder home directory")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: <home>/config.yml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")

	root.AddCommand(
		newSeedCmd(a),
		newValidateCmd(a),
		newCompileCmd(a),
		newInstallCmd(a),
		newVenturesCmd(a),
		newVersionCmd(a),
	)
	return root
}

func (a *app) setup() error {
	ws, err := workspace.Open(a.home)
	if err != nil {
		return err
	}
	configPath := ws.ConfigPath
	if a.configPath != "" {
		configPath, err = absPath(a.configPath)
		if err != nil {
			return fmt.Errorf("resolve --config: %w", err)
		}
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := ws.SetWorkflowsDir(cfg.Runner.WorkflowsDir); err != nil {
		return fmt.Errorf("resolve runner.workflows_dir: %w", err)
	}

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.ws = ws
	a.cfg = cfg
	a.log = logging.New(a.stderr, level)
	a.audit = audit.NewLogger(ws.AuditDBPath, "cli")
	a.log.Debug("home resolved", "root", ws.Root, "config", configPath, "workflows", ws.WorkflowsDir)
	return nil
}

// track records <name>_started and <name>_finished around fn. Audit failures
// are reported but never fail the command.
func (a *app) track(name string, args []string, fn func() (map[string]any, error)) error {
	start := map[string]any{
		"home": a.ws.Root,
		"args": shellquote.Join(args...),
	}
	if err := a.audit.Record(name+"_started", start); err != nil {
		fmt.Fprintln(a.stderr, "audit log failed:", err)
	}

	finish, err := fn()
	if finish == nil {
		finish = map[string]any{}
	}
	if err != nil {
		finish["error"] = err.Error()
	}
	if auditErr := a.audit.Record(name+"_finished", finish); auditErr != nil {
		fmt.Fprintln(a.stderr, "audit log failed:", auditErr)
	}
	return err
}

// absPath resolves command-line paths against the working directory.
func absPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, nil
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", appName, version)
		},
	}
}
