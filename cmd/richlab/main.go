package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/richlab/internal/config"
	"github.com/san-kum/richlab/internal/experiment"
	"github.com/san-kum/richlab/internal/storage"
)

var (
	dataDir    string
	size       int
	density    float64
	coupling   float64
	configFile string
	preset     string
	tol        float64
	etaStart   float64
	etaEnd     float64
	saveRun    bool
	verbose    bool
	// sweep parameter lists
	sizesArg     string
	densitiesArg string
	couplingsArg string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "richlab",
		Short: "exact pairing-model rapidity and correlator lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".richlab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log continuation progress")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "solve one (size, density, coupling) configuration",
		RunE:  runSolve,
	}
	runCmd.Flags().IntVar(&size, "size", config.DefaultSize, "linear lattice size")
	runCmd.Flags().Float64Var(&density, "density", config.DefaultDensity, "pair density per site")
	runCmd.Flags().Float64Var(&coupling, "coupling", config.DefaultCoupling, "target coupling strength")
	runCmd.Flags().Float64Var(&tol, "tol", 0, "residual tolerance (0 = config value)")
	runCmd.Flags().Float64Var(&etaStart, "eta-start", 0, "regularizer at the start of continuation")
	runCmd.Flags().Float64Var(&etaEnd, "eta-end", 0, "regularizer at the target coupling")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset configuration ("+strings.Join(config.ListPresets(), ", ")+")")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run archive")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run independent parameter triples in parallel",
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&sizesArg, "sizes", "6", "comma-separated lattice sizes")
	sweepCmd.Flags().StringVar(&densitiesArg, "densities", "0.125", "comma-separated pair densities")
	sweepCmd.Flags().StringVar(&couplingsArg, "couplings", "0.5", "comma-separated couplings")
	sweepCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	sweepCmd.Flags().BoolVar(&saveRun, "save", false, "persist every run archive")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a run's continuation trace",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "write a run archive to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	rootCmd.AddCommand(runCmd, sweepCmd, listCmd, plotCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q", preset)
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("size") {
		cfg.Lattice.Size = size
	}
	if cmd.Flags().Changed("density") {
		cfg.Lattice.Density = density
	}
	if cmd.Flags().Changed("coupling") {
		cfg.Lattice.Coupling = coupling
	}
	if cmd.Flags().Changed("tol") {
		cfg.Solver.Tol = tol
	}
	if cmd.Flags().Changed("eta-start") {
		cfg.Solver.EtaStart = etaStart
	}
	if cmd.Flags().Changed("eta-end") {
		cfg.Solver.EtaEnd = etaEnd
	}
	return cfg, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	opts := cfg.Options()
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer logger.Sync()
		opts.Logger = logger
	}

	fmt.Println(titleStyle.Render("richlab") + subtleStyle.Render(
		fmt.Sprintf("  L=%d density=%g g=%g", cfg.Lattice.Size, cfg.Lattice.Density, cfg.Lattice.Coupling)))

	start := time.Now()
	res, err := experiment.Run(experiment.Config{
		L:       cfg.Lattice.Size,
		Density: cfg.Lattice.Density,
		G:       cfg.Lattice.Coupling,
		Options: opts,
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	last := res.Trace[len(res.Trace)-1]
	fmt.Println(okStyle.Render("converged") + fmt.Sprintf(" in %v", elapsed))
	fmt.Printf("pairs:       %d\n", res.M)
	fmt.Printf("steps:       %d\n", len(res.Trace))
	fmt.Printf("residual:    %.3e\n", last.Residual)
	fmt.Printf("pair trace:  %.6f (M=%d, deviation %.3e)\n",
		res.PairTrace, res.M, math.Abs(res.PairTrace-float64(res.M)))

	fmt.Println("\nrapidities:")
	for i, e := range res.Rapidities {
		fmt.Printf("  E[%d] = %+.8f %+.8fi\n", i, real(e), imag(e))
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(res)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sizes, err := parseInts(sizesArg)
	if err != nil {
		return err
	}
	densities, err := parseFloats(densitiesArg)
	if err != nil {
		return err
	}
	couplings, err := parseFloats(couplingsArg)
	if err != nil {
		return err
	}

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	opts := cfg.Options()

	var cfgs []experiment.Config
	for _, l := range sizes {
		for _, nu := range densities {
			for _, g := range couplings {
				cfgs = append(cfgs, experiment.Config{L: l, Density: nu, G: g, Options: opts})
			}
		}
	}

	fmt.Printf("sweeping %d configurations...\n", len(cfgs))
	start := time.Now()
	results, err := experiment.Sweep(context.Background(), cfgs)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "L\tM\tG\tSTEPS\tRESIDUAL\tPAIR TRACE")
	for _, res := range results {
		last := res.Trace[len(res.Trace)-1]
		fmt.Fprintf(w, "%d\t%d\t%.4g\t%d\t%.3e\t%.6f\n",
			res.L, res.M, res.G, len(res.Trace), last.Residual, res.PairTrace)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		for _, res := range results {
			if _, err := st.Save(res); err != nil {
				return err
			}
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tL\tM\tG\tSTEPS\tRESIDUAL\tPAIR TRACE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%.4g\t%d\t%.3e\t%.6f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.L,
			run.M,
			run.G,
			run.Steps,
			run.Residual,
			run.PairTrace,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	trace, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(trace) == 0 {
		return fmt.Errorf("no trace data to plot")
	}

	fmt.Printf("run: %s (L=%d, M=%d, g=%g)\n\n", meta.ID, meta.L, meta.M, meta.G)

	residuals := make([]float64, len(trace))
	steps := make([]float64, len(trace))
	for i, s := range trace {
		residuals[i] = math.Log10(math.Max(s.Residual, 1e-300))
		steps[i] = s.DG
	}

	fmt.Println(asciigraph.Plot(residuals,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("log10 residual per accepted step"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(steps,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("homotopy step size"),
	))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	arch, err := st.LoadArchive(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(arch)
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad integer %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
