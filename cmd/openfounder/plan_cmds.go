package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"openfounder/internal/compiler"
	"openfounder/internal/plan"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <plan.json>",
		Short: "Check a team plan and print every issue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.track("validate", args, func() (map[string]any, error) {
				path, err := absPath(args[0])
				if err != nil {
					return nil, err
				}
				payload := map[string]any{"plan": path}
				p, err := plan.Load(path)
				if err != nil {
					return payload, err
				}
				payload["venture_id"] = p.VentureID
				if err := a.checkPlan(p); err != nil {
					payload["issues"] = len(plan.Check(p))
					return payload, err
				}
				payload["issues"] = 0
				fmt.Fprintf(a.stdout, "Plan is valid: %s (%d agents, %d steps)\n", p.VentureID, len(p.Agents), len(p.Steps))
				return payload, nil
			})
		},
	}
}

func newCompileCmd(a *app) *cobra.Command {
	var outDir string
	var toStdout bool
	cmd := &cobra.Command{
		Use:   "compile <plan.json>",
		Short: "Validate a plan and write the workflow tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.track("compile", args, func() (map[string]any, error) {
				path, err := absPath(args[0])
				if err != nil {
					return nil, err
				}
				payload := map[string]any{"plan": path}
				p, err := plan.Load(path)
				if err != nil {
					return payload, err
				}
				payload["venture_id"] = p.VentureID
				if err := a.checkPlan(p); err != nil {
					return payload, err
				}

				bundle := compiler.Compile(p)
				if toStdout {
					data, err := compiler.Render(bundle.Workflow)
					if err != nil {
						return payload, err
					}
					_, err = a.stdout.Write(data)
					return payload, err
				}

				root := a.ws.WorkflowsDir
				if outDir != "" {
					root, err = absPath(outDir)
					if err != nil {
						return payload, fmt.Errorf("resolve --out: %w", err)
					}
				}
				res, err := compiler.WriteBundle(root, bundle)
				if err != nil {
					return payload, err
				}
				payload["dir"] = res.Dir
				payload["files"] = len(res.Files)
				payload["hash"] = res.Hash
				payload["changed"] = res.Changed

				state := "unchanged"
				if res.Changed {
					state = "updated"
				}
				fmt.Fprintf(a.stdout, "Wrote %s (%d files, %s)\n", res.Dir, len(res.Files), state)
				if res.Diff != "" {
					fmt.Fprint(a.stdout, res.Diff)
				}
				return payload, nil
			})
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "Output root (default: runner workflows dir)")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print workflow.yml instead of writing files")
	return cmd
}

// checkPlan validates p, printing each issue on its own line on failure and
// any warnings on success.
func (a *app) checkPlan(p plan.Plan) error {
	err := plan.Validate(p)
	var issues plan.ValidationErrors
	if errors.As(err, &issues) {
		fmt.Fprintf(a.stderr, "Plan is invalid (%d issues):\n", len(issues))
		for _, msg := range issues.Messages() {
			fmt.Fprintln(a.stderr, msg)
		}
		return errReported
	}
	if err != nil {
		return err
	}
	for _, w := range plan.Warnings(p) {
		fmt.Fprintf(a.stderr, "warning: %s\n", w.Message)
	}
	return nil
}
