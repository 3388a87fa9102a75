package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"openfounder/internal/ceo"
	"openfounder/internal/notify"
	"openfounder/internal/plan"
	"openfounder/internal/runner"
	"openfounder/internal/seed"
	"openfounder/internal/venture"
)

type launchFlags struct {
	mockRunner bool
}

func (f *launchFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.mockRunner, "mock-runner", false, "Use the offline mock runner instead of the runner command")
}

func newSeedCmd(a *app) *cobra.Command {
	var flags launchFlags
	var briefFile string
	cmd := &cobra.Command{
		Use:   "seed [brief...]",
		Short: "Design a team for a business brief and start its first sprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			brief := strings.TrimSpace(strings.Join(args, " "))
			if briefFile != "" {
				path, err := absPath(briefFile)
				if err != nil {
					return fmt.Errorf("resolve --file: %w", err)
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read brief: %w", err)
				}
				brief = strings.TrimSpace(string(data))
			}
			if brief == "" {
				return errors.New("a business brief is required")
			}

			return a.track("seed", args, func() (map[string]any, error) {
				model, err := ceo.NewModel(ceo.ProviderOptions{
					Name:    a.cfg.Provider.Name,
					Model:   a.cfg.Provider.Model,
					APIKey:  a.cfg.Provider.APIKey,
					BaseURL: a.cfg.Provider.BaseURL,
				})
				if err != nil {
					return nil, fmt.Errorf("planner model: %w", err)
				}
				gen := ceo.NewGenerator(model, a.cfg.Provider.MaxTokens)

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				return a.launch(ctx, flags, gen, func(s *seed.Seeder) (*seed.Result, error) {
					return s.Seed(ctx, brief)
				})
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&briefFile, "file", "f", "", "Read the brief from a file")
	return cmd
}

func newInstallCmd(a *app) *cobra.Command {
	var flags launchFlags
	cmd := &cobra.Command{
		Use:   "install <plan.json>",
		Short: "Validate, compile, install and run an existing plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.track("install", args, func() (map[string]any, error) {
				path, err := absPath(args[0])
				if err != nil {
					return nil, err
				}
				p, err := plan.Load(path)
				if err != nil {
					return map[string]any{"plan": path}, err
				}
				if err := a.checkPlan(p); err != nil {
					return map[string]any{"plan": path, "venture_id": p.VentureID}, err
				}

				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
				defer stop()
				payload, err := a.launch(ctx, flags, nil, func(s *seed.Seeder) (*seed.Result, error) {
					return s.Launch(ctx, p, p.Description)
				})
				if payload == nil {
					payload = map[string]any{}
				}
				payload["plan"] = path
				return payload, err
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) launch(ctx context.Context, flags launchFlags, gen seed.Generator, fn func(*seed.Seeder) (*seed.Result, error)) (map[string]any, error) {
	var r runner.Runner
	if flags.mockRunner {
		r = &runner.MockRunner{}
	} else {
		cr, err := runner.NewCommandRunner(a.cfg.Runner.Command)
		if err != nil {
			return nil, err
		}
		cr.InstallTimeout = a.cfg.Runner.InstallTimeout
		cr.RunTimeout = a.cfg.Runner.RunTimeout
		r = cr
	}

	store, err := venture.Open(a.ws.StateDBPath, a.ws.VenturesDir)
	if err != nil {
		return nil, fmt.Errorf("open venture store: %w", err)
	}
	defer store.Close()

	seeder, err := seed.New(seed.Options{
		Generator:     gen,
		Runner:        r,
		Store:         store,
		WorkflowsDir:  a.ws.WorkflowsDir,
		Audit:         a.audit,
		Notifier:      &notify.Notifier{Enabled: a.cfg.Notify.Enabled},
		Reporter:      seed.NewConsoleReporter(a.stdout),
		Logger:        a.log,
		InstallOutput: a.stdout,
	})
	if err != nil {
		return nil, err
	}

	res, err := fn(seeder)
	if err != nil {
		var stageErr *seed.StageError
		if errors.As(err, &stageErr) {
			return map[string]any{"venture_id": stageErr.VentureID, "stage": stageErr.Stage}, err
		}
		return nil, err
	}
	return map[string]any{
		"seed_id":    res.SeedID,
		"venture_id": res.VentureID,
		"run_id":     res.RunID,
		"run_number": res.RunNumber,
		"runner":     r.Name(),
	}, nil
}

func newVenturesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ventures",
		Short: "List seeded ventures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.track("ventures", args, func() (map[string]any, error) {
				store, err := venture.Open(a.ws.StateDBPath, a.ws.VenturesDir)
				if err != nil {
					return nil, fmt.Errorf("open venture store: %w", err)
				}
				defer store.Close()

				records, err := store.List()
				if err != nil {
					return nil, err
				}
				payload := map[string]any{"count": len(records)}
				if len(records) == 0 {
					fmt.Fprintln(a.stdout, "No ventures yet. Start one with: openfounder seed \"<brief>\"")
					return payload, nil
				}

				tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VENTURE\tSTATUS\tRUN\tCREATED")
				for _, rec := range records {
					run := "-"
					if rec.RunID != "" {
						run = fmt.Sprintf("%s (#%d)", rec.RunID, rec.RunNumber)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.VentureID, rec.Status, run, humanize.Time(rec.CreatedAt))
				}
				return payload, tw.Flush()
			})
		},
	}
}
