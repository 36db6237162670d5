package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/experiment"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/optim"
	"github.com/san-kum/buoysim/internal/sim"
	"github.com/san-kum/buoysim/internal/storage"
	"github.com/san-kum/buoysim/internal/viz"
)

type sweepFlags struct {
	criteria  []string
	begin     float64
	end       float64
	divisions int
	workers   int
	zTarget   float64
	outDir    string
	index     string
}

func (f *sweepFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.criteria, "criterion", []string{config.DefaultCriterion}, "acceptance criteria, all must pass (mse, overshoot)")
	cmd.Flags().Float64Var(&f.begin, "begin", config.DefaultBegin, "first simulated time [s]")
	cmd.Flags().Float64Var(&f.end, "end", config.DefaultEnd, "end of simulated time [s]")
	cmd.Flags().IntVar(&f.divisions, "divisions", optim.DefaultDivisions, "grid steps per search width")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel simulations (0 = GOMAXPROCS)")
	cmd.Flags().Float64Var(&f.zTarget, "z-target", 0, "target depth [m]")
}

// apply overrides cfg with the flags the user set explicitly.
func (f *sweepFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("criterion") {
		cfg.Sweep.Criteria = f.criteria
	}
	if cmd.Flags().Changed("begin") {
		cfg.Sweep.Begin = f.begin
	}
	if cmd.Flags().Changed("end") {
		cfg.Sweep.End = f.end
	}
	if cmd.Flags().Changed("divisions") {
		cfg.Sweep.Divisions = f.divisions
	}
	if cmd.Flags().Changed("workers") {
		cfg.Sweep.Workers = f.workers
	}
	if cmd.Flags().Changed("z-target") {
		cfg.Constants.ZTarget = f.zTarget
	}
	if cmd.Flags().Changed("index") {
		cfg.Output.Index = f.index
	}
}

func newSweepCmd() *cobra.Command {
	var f sweepFlags
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "search the (k1, k2) grid and store accepted pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			_, err = runSweep(cmd.Context(), cfg, f.outDir)
			return err
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&f.outDir, "out", "", "write summary.csv and detail logs directly into this directory")
	cmd.Flags().StringVar(&f.index, "index", "", "sqlite index of accepted pairs")
	return cmd
}

func runSweep(ctx context.Context, cfg *config.Config, outDir string) (*experiment.Summary, error) {
	expCfg, err := cfg.Experiment()
	if err != nil {
		return nil, err
	}

	meta := storage.RunMetadata{
		Constants: expCfg.Constants,
		Criteria:  cfg.Sweep.Criteria,
		Begin:     expCfg.Begin,
		End:       expCfg.End,
	}

	var run *storage.Run
	if outDir != "" {
		run, err = storage.OpenDir(outDir, meta)
	} else {
		st := storage.New(cfg.Output.DataDir)
		if err := st.Init(); err != nil {
			return nil, err
		}
		run, err = st.Create(meta)
	}
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("run", run.ID())
	exp := experiment.New(expCfg)
	exp.SetLogger(log)
	exp.AddSink(run)

	if cfg.Output.Index != "" {
		ix, err := storage.OpenIndex(cfg.Output.Index)
		if err != nil {
			run.Finish(nil)
			return nil, err
		}
		defer ix.Close()
		id := run.ID()
		if id == "" {
			id = run.Dir()
		}
		exp.AddSink(ix.Sink(id))
	}

	total := expCfg.Grid.Len()
	fmt.Printf("sweeping %d pairs (k1 %d x k2 %d), criteria %v\n",
		total, len(expCfg.Grid.K1), len(expCfg.Grid.K2), cfg.Sweep.Criteria)

	sum, runErr := exp.Run(ctx)
	if err := run.Finish(sum); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return sum, runErr
	}

	ratio := float64(sum.Accepted) / float64(max(sum.Evaluated, 1))
	fmt.Println(viz.Metric("evaluated", fmt.Sprintf("%d", sum.Evaluated)))
	fmt.Println(viz.Metric("accepted", fmt.Sprintf("%d %s", sum.Accepted, viz.ProgressBar(ratio, 20))))
	fmt.Println(viz.Metric("elapsed", sum.Elapsed.Round(time.Millisecond).String()))
	if sum.Best != nil {
		fmt.Println(viz.Metric("best", fmt.Sprintf("%s  %s  tc=%s",
			sum.Best.Gains, sum.Best.Diagnostic(), dynamo.FormatFloat(sum.Best.TimeConstant))))
	}
	if run.ID() != "" {
		fmt.Println(viz.Metric("run id", run.ID()))
	} else {
		fmt.Println(viz.Metric("output", run.Dir()))
	}
	return sum, nil
}

func newRunCmd() *cobra.Command {
	var (
		f      sweepFlags
		k1, k2 float64
		save   string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one (k1, k2) pair and report every metric",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			g := control.Gains{K1: k1, K2: k2}
			times := dynamo.Range(cfg.Sweep.Begin, cfg.Sweep.End, cfg.Constants.Dt)
			s := sim.New(cfg.Constants)
			ms := metrics.DefaultMetrics(cfg.Constants)
			for _, m := range ms {
				s.AddObserver(m)
			}
			if logrus.IsLevelEnabled(logrus.TraceLevel) {
				s.AddObserver(sim.ObserverFunc(func(r dynamo.StepRecord) {
					logrus.WithFields(logrus.Fields{"t": r.T, "z": r.Z, "v": r.V, "dv": r.DeltaV}).Trace("step")
				}))
			}
			trace, err := s.Run(cmd.Context(), times, g)
			if err != nil {
				return err
			}
			rep := metrics.NewReport(trace, cfg.Constants, ms)

			if save != "" {
				if err := os.MkdirAll(save, 0755); err != nil {
					return err
				}
				path := filepath.Join(save, storage.DetailName(g))
				if err := storage.WriteDetail(path, trace); err != nil {
					return err
				}
				logrus.WithField("path", path).Info("detail log written")
			}

			if asJSON {
				return storage.ExportJSON(os.Stdout, g, trace, &rep)
			}
			printReport(g, trace, rep)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().Float64Var(&k1, "k1", 0, "depth-error gain")
	cmd.Flags().Float64Var(&k2, "k2", 0, "velocity gain")
	cmd.Flags().StringVar(&save, "save", "", "write the detail log into this directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the trace and report as JSON")
	cmd.MarkFlagRequired("k1")
	cmd.MarkFlagRequired("k2")
	return cmd
}

func printReport(g control.Gains, trace dynamo.Trace, rep metrics.Report) {
	fmt.Println(viz.Title.Render(g.String()))
	fmt.Println(viz.Metric("samples", fmt.Sprintf("%d", len(trace))))
	for _, v := range rep.Verdicts {
		fmt.Println(viz.Metric(string(v.Criterion), dynamo.FormatFloat(v.Value)+" "+viz.Verdict(v.Passed)))
	}
	for c, reason := range rep.Skipped {
		fmt.Println(viz.Metric(string(c), viz.Subtle.Render("skipped: "+reason)))
	}
	fmt.Println(viz.Metric("time constant", dynamo.FormatFloat(rep.TimeConstant)+" s"))
	fmt.Println(viz.Metric("settling time", dynamo.FormatFloat(rep.SettlingTime)+" s"))
	fmt.Println(viz.Metric("max depth", dynamo.FormatFloat(rep.MaxDepth)+" m"))
	fmt.Println(viz.Metric("final depth", dynamo.FormatFloat(rep.FinalDepth)+" m"))
	fmt.Println(viz.Metric("volume", viz.Sparkline(trace.Volumes(), 40)))
	for name, val := range rep.Metrics {
		fmt.Println(viz.Metric(name, dynamo.FormatFloat(val)))
	}
	fmt.Println()
	fmt.Println(viz.DepthPlot(trace, viz.DefaultPlotWidth, viz.DefaultPlotHeight))
}

func newOptimizeCmd() *cobra.Command {
	var f sweepFlags
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "find the grid pair with the smallest criterion value, accepted or not",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			expCfg, err := cfg.Experiment()
			if err != nil {
				return err
			}
			crit := expCfg.Criteria[0]
			times := dynamo.Range(expCfg.Begin, expCfg.End, expCfg.Constants.Dt)

			search := optim.NewGridSearch(expCfg.Grid, expCfg.Workers).WithLogger(logrus.StandardLogger())
			start := time.Now()
			g, val, err := search.Minimize(cmd.Context(), func(ctx context.Context, g control.Gains) (float64, error) {
				trace, err := sim.New(expCfg.Constants).Run(ctx, times, g)
				if err != nil {
					return 0, err
				}
				v, err := crit.Evaluate(trace, expCfg.Constants)
				if err != nil {
					return 0, err
				}
				return v.Value, nil
			})
			if err != nil {
				return err
			}

			fmt.Println(viz.Metric("criterion", string(crit)))
			fmt.Println(viz.Metric("best", g.String()))
			fmt.Println(viz.Metric("value", dynamo.FormatFloat(val)))
			fmt.Println(viz.Metric("elapsed", time.Since(start).Round(time.Millisecond).String()))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}
