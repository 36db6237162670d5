package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/buoysim/internal/analysis"
	"github.com/san-kum/buoysim/internal/config"
	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/export"
	"github.com/san-kum/buoysim/internal/metrics"
	"github.com/san-kum/buoysim/internal/storage"
	"github.com/san-kum/buoysim/internal/viz"
)

func openStore(cmd *cobra.Command) (*config.Config, *storage.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	return cfg, storage.New(cfg.Output.DataDir), nil
}

func gainFlags(cmd *cobra.Command, g *control.Gains) {
	cmd.Flags().Float64Var(&g.K1, "k1", 0, "depth-error gain")
	cmd.Flags().Float64Var(&g.K2, "k2", 0, "velocity gain")
	cmd.MarkFlagRequired("k1")
	cmd.MarkFlagRequired("k2")
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			runs, err := st.List()
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tCRITERIA\tZ_TARGET\tEVALUATED\tACCEPTED\tELAPSED")

			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%d\t%d\t%.2fs\n",
					run.ID,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					strings.Join(run.Criteria, "+"),
					run.Constants.ZTarget,
					run.Evaluated,
					run.Accepted,
					run.Elapsed,
				)
			}

			return w.Flush()
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}
}

func newPlotCmd() *cobra.Command {
	var g control.Gains
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the depth and volume traces of an accepted pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			trace, err := st.LoadTrace(args[0], g)
			if err != nil {
				return err
			}
			if len(trace) == 0 {
				return fmt.Errorf("no data to plot: %w", dynamo.ErrEmptyTrace)
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("gains: %s\n", g)
			rep := metrics.Summarize(trace, meta.Constants)
			fmt.Printf("time constant: %s s\n", dynamo.FormatFloat(rep.TimeConstant))
			fmt.Printf("settling time: %s s\n", dynamo.FormatFloat(rep.SettlingTime))
			fmt.Printf("control effort: %s m^3\n", dynamo.FormatFloat(rep.Metrics["control_effort"]))
			fmt.Printf("samples: %d\n\n", len(trace))
			fmt.Println(viz.DepthPlot(trace, viz.DefaultPlotWidth, viz.DefaultPlotHeight))
			fmt.Println()
			fmt.Println(viz.VolumePlot(trace, viz.DefaultPlotWidth, viz.DefaultPlotHeight))

			target := meta.Constants.ZTarget
			fmt.Println("\nphase portrait (depth vs velocity):")
			fmt.Print(analysis.NewPhasePortrait(trace).ASCII(viz.DefaultPlotWidth, viz.DefaultPlotHeight))
			fmt.Printf("target crossings: %d\n", len(analysis.TargetCrossings(trace, target)))
			if period := analysis.DominantPeriod(trace, target, meta.Constants.Dt); period > 0 {
				fmt.Printf("dominant period: %.3f s\n", period)
			}
			return nil
		},
	}
	gainFlags(cmd, &g)
	return cmd
}

func newExportSVGCmd() *cobra.Command {
	var (
		g             control.Gains
		out           string
		width, height int
		phase         bool
	)
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the depth trace of an accepted pair as SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			trace, err := st.LoadTrace(args[0], g)
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(storage.DetailName(g), ".csv") + ".svg"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if phase {
				if len(trace) == 0 {
					return fmt.Errorf("export phase portrait: %w", dynamo.ErrEmptyTrace)
				}
				pp := analysis.NewPhasePortrait(trace)
				points := make([]export.Point, len(pp.Points))
				for i, p := range pp.Points {
					points[i] = export.Point{X: p.X, Y: p.Y}
				}
				if _, err := f.WriteString(export.TrajectoryToSVG(points, width, height, "#ff9900")); err != nil {
					return err
				}
			} else if err := export.WriteDepthSVG(f, trace, meta.Constants.ZTarget, width, height); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return f.Close()
		},
	}
	gainFlags(cmd, &g)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 400, "image height")
	cmd.Flags().BoolVar(&phase, "phase", false, "export the depth/velocity phase portrait instead")
	return cmd
}

func newExportPNGCmd() *cobra.Command {
	var (
		g             control.Gains
		out           string
		width, height float64
	)
	cmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render the depth trace of an accepted pair as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			trace, err := st.LoadTrace(args[0], g)
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(storage.DetailName(g), ".csv") + ".png"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := export.WriteDepthPNG(f, trace, meta.Constants.ZTarget, g.String(), width, height); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return f.Close()
		},
	}
	gainFlags(cmd, &g)
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file")
	cmd.Flags().Float64Var(&width, "width", 8, "image width [in]")
	cmd.Flags().Float64Var(&height, "height", 4, "image height [in]")
	return cmd
}

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse [run_id]",
		Short: "browse the accepted pairs of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, st, err := openStore(cmd)
			if err != nil {
				return err
			}
			runID := args[0]
			records, err := st.LoadSummary(runID)
			if err != nil {
				return err
			}
			return viz.Browse("run "+runID, records, func(g control.Gains) (dynamo.Trace, error) {
				return st.LoadTrace(runID, g)
			})
		},
	}
}

func newBestCmd() *cobra.Command {
	var (
		criterion string
		n         int
		index     string
	)
	cmd := &cobra.Command{
		Use:   "best",
		Short: "list the best accepted pairs across runs from the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("index") || cfg.Output.Index == "" {
				cfg.Output.Index = index
			}
			if cfg.Output.Index == "" {
				return fmt.Errorf("no index configured (set output.index or --index)")
			}
			crit, err := metrics.ParseCriterion(criterion)
			if err != nil {
				return err
			}

			ix, err := storage.OpenIndex(cfg.Output.Index)
			if err != nil {
				return err
			}
			defer ix.Close()

			entries, err := ix.Best(cmd.Context(), crit, n)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no accepted pairs indexed")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tK1\tK2\tTIME_CONSTANT\tVALUE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.RunID,
					dynamo.FormatFloat(e.Gains.K1),
					dynamo.FormatFloat(e.Gains.K2),
					dynamo.FormatFloat(e.TimeConstant),
					dynamo.FormatFloat(e.Value),
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&criterion, "criterion", config.DefaultCriterion, "criterion to rank by")
	cmd.Flags().IntVarP(&n, "count", "n", 10, "number of pairs")
	cmd.Flags().StringVar(&index, "index", "", "sqlite index path")
	return cmd
}
