package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/automation"
	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/viz"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [scenario.yaml]",
		Short: "run a scripted sequence of sweeps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			fmt.Println(viz.Title.Render(sc.Name))
			if sc.Description != "" {
				fmt.Println(viz.Subtle.Render(sc.Description))
			}
			results, err := automation.RunScenario(cmd.Context(), sc, base,
				func(ctx context.Context, name string, cfg *config.Config) (*experiment.Summary, error) {
					fmt.Println(viz.Separator(60))
					fmt.Println(viz.Header.Render(name))
					return runSweep(ctx, cfg, "")
				})
			if err != nil {
				return err
			}

			fmt.Println(viz.Separator(60))
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tEVALUATED\tACCEPTED\tBEST")
			for _, r := range results {
				best := "-"
				if r.Summary.Best != nil {
					best = r.Summary.Best.Gains.String()
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", r.Name, r.Summary.Evaluated, r.Summary.Accepted, best)
			}
			return w.Flush()
		},
	}
}

func newSensitivityCmd() *cobra.Command {
	var sweep automation.ParameterSweep
	cmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "repeat the gain search across values of one physical constant",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			results, err := automation.RunSweep(cmd.Context(), &sweep, base)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\tEVALUATED\tACCEPTED\tBEST\n", sweep.ParamName)
			for _, r := range results {
				best := "-"
				if r.Best != nil {
					best = r.Best.Gains.String() + " " + r.Best.Diagnostic()
				}
				fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", dynamo.FormatFloat(r.ParamValue), r.Evaluated, r.Accepted, best)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&sweep.ParamName, "param", "rate_max", "constant to vary")
	cmd.Flags().Float64Var(&sweep.ParamMin, "min", 0.00005, "first value")
	cmd.Flags().Float64Var(&sweep.ParamMax, "max", 0.0001, "last value")
	cmd.Flags().IntVar(&sweep.NumSteps, "steps", 5, "number of values")
	return cmd
}

func newRobustnessCmd() *cobra.Command {
	var (
		g      control.Gains
		params []string
		mc     automation.MonteCarloConfig
	)
	cmd := &cobra.Command{
		Use:   "robustness",
		Short: "test one gain pair against randomly perturbed constants",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			crit, err := cfg.Criteria()
			if err != nil {
				return err
			}
			mc.Base = cfg.Constants
			mc.Gains = g
			mc.Criteria = crit
			mc.Params = params
			mc.Begin, mc.End = cfg.Sweep.Begin, cfg.Sweep.End

			results, err := automation.RunMonteCarlo(cmd.Context(), &mc)
			if err != nil {
				return err
			}
			passed, failed := automation.MonteCarloStats(results)
			ratio := float64(passed) / float64(max(passed+failed, 1))

			fmt.Println(viz.Title.Render(g.String()))
			fmt.Println(viz.Metric("perturbed", fmt.Sprintf("%v +-%g%%", params, mc.Perturbation*100)))
			fmt.Println(viz.Metric("passed", fmt.Sprintf("%d/%d %s", passed, passed+failed, viz.ProgressBar(ratio, 20))))
			return nil
		},
	}
	gainFlags(cmd, &g)
	cmd.Flags().StringSliceVar(&params, "params", []string{"mass", "density"}, "constants to perturb")
	cmd.Flags().Float64Var(&mc.Perturbation, "perturbation", 0.05, "relative perturbation")
	cmd.Flags().IntVar(&mc.NumTrials, "trials", 100, "number of trials")
	cmd.Flags().Int64Var(&mc.Seed, "seed", 0, "random seed (0 = time based)")
	return cmd
}
