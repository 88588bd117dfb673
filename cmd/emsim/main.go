package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/emsim/internal/analysis"
	"github.com/san-kum/emsim/internal/config"
	"github.com/san-kum/emsim/internal/dynamo"
	"github.com/san-kum/emsim/internal/experiment"
	"github.com/san-kum/emsim/internal/export"
	"github.com/san-kum/emsim/internal/field"
	"github.com/san-kum/emsim/internal/metrics"
	"github.com/san-kum/emsim/internal/optim"
	"github.com/san-kum/emsim/internal/storage"
	"github.com/san-kum/emsim/internal/tui"
	"github.com/san-kum/emsim/internal/waves"
)

var (
	dataDir   string
	logLevel  string
	logFormat string
	log       = logrus.New()

	configFile  string
	fps         float64
	duration    float64
	integrator  string
	substeps    int
	live        bool
	noSave      bool
	exportPath  string
	metricsAddr string

	particleName string
	axisName     string
	pathPlot     bool
	tolerance    float64

	svgPath string

	sweepParams   []string
	sweepMetric   string
	sweepMaximize bool
	sweepWorkers  int

	fieldAt    float64
	fieldName  string
	fieldLimit int
)

var axes = map[string]int{"x": 0, "y": 1, "z": 2}

func main() {
	rootCmd := &cobra.Command{
		Use:           "emsim",
		Short:         "retarded-field charged particle simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".emsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a preset or scene file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScene,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	runCmd.Flags().Float64Var(&fps, "fps", config.DefaultFPS, "frames per second")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	runCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator (euler, leapfrog, rk4)")
	runCmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "integrator sub-steps per frame")
	runCmd.Flags().BoolVar(&live, "live", false, "show the scene while it runs")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&exportPath, "export", "", "also write the full run as json ('-' for stdout)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().StringVar(&particleName, "particle", "", "draw this particle's path in the xy plane")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot particle coordinates over time",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&particleName, "particle", "", "particle to plot (default all)")
	plotCmd.Flags().StringVar(&axisName, "axis", "y", "coordinate to plot (x, y, z)")
	plotCmd.Flags().BoolVar(&pathPlot, "path", false, "plot the xy path instead of a time series")
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "write xy trajectories of the plotted particles to this svg file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency and arrival analysis of a particle coordinate",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&particleName, "particle", "", "particle to analyze (default first)")
	analyzeCmd.Flags().StringVar(&axisName, "axis", "y", "coordinate to analyze (x, y, z)")
	analyzeCmd.Flags().Float64Var(&tolerance, "tol", 1e-4, "displacement that counts as arrival")

	fieldCmd := &cobra.Command{
		Use:   "field [preset]",
		Short: "sample a scene's fields over its probe grid",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sampleField,
	}
	fieldCmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	fieldCmd.Flags().Float64Var(&fieldAt, "at", 0, "advance the scene this many seconds first")
	fieldCmd.Flags().StringVar(&fieldName, "name", "", "only this field")
	fieldCmd.Flags().IntVar(&fieldLimit, "limit", 40, "rows per field (0 for all)")
	fieldCmd.Flags().StringVar(&svgPath, "svg", "", "write the xy field of the first sampled field to this svg file")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scene over a parameter grid and rank by a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepScene,
	}
	sweepCmd.Flags().StringVar(&configFile, "config", "", "scene file path (yaml)")
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration in seconds")
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "name=v1,v2,... or name=lo:hi:n (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "peak_speed", "metric to rank by")
	sweepCmd.Flags().BoolVar(&sweepMaximize, "max", false, "rank by largest value instead of smallest")
	sweepCmd.Flags().IntVar(&sweepWorkers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, analyzeCmd, fieldCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)

	switch logFormat {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", logFormat)
	}
	return nil
}

// loadScene resolves a preset name or scene file, then applies any flags
// the user set explicitly.
func loadScene(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
	case len(args) == 1:
		cfg = config.GetPreset(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
		}
	default:
		return nil, errors.New("need a preset name or --config")
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.FPS = fps
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	return cfg, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return err
	}
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
		defer srv.Close()
		log.WithField("addr", metricsAddr).Info("serving metrics")
	}

	exp, err := experiment.Build(cfg, nil, log.WithField("scene", cfg.Name), collector)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if live {
		m := tui.Start(ctx, cfg.Name, exp.Scene(), exp.SimConfig())
		if rings, source := radiationRings(cfg); rings != nil {
			m.SetRings(rings, source)
		}
		if err := tui.Run(m); err != nil {
			return err
		}
		if !m.Finished() {
			fmt.Println("run stopped")
		}
		return nil
	}

	fmt.Printf("running %s (%d particles, %d frames)...\n", cfg.Name, len(cfg.Particles), exp.SimConfig().Frames())
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		var fe *dynamo.FrameError
		if errors.As(err, &fe) {
			fmt.Printf("aborted at frame %d (t=%.3fs)\n", fe.Frame, fe.Time)
		}
		return err
	}

	elapsed := time.Since(start)

	if exportPath != "" {
		out := os.Stdout
		if exportPath != "-" {
			f, err := os.Create(exportPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if err := storage.ExportJSON(out, cfg, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("frames: %d\n", result.FramesRun)
	if len(result.Probes) > 0 {
		fmt.Printf("probe samples: %d over %d points\n", len(result.Probes), len(result.ProbePoints))
	}

	fmt.Println("\nmetrics:")
	fmt.Print(tui.Metrics([]string{"kinetic_energy", "larmor_peak", "peak_speed"}, result.Metrics))
	return nil
}

// radiationRings returns wavefronts expanding at the first radiation
// field's c around its first source.
func radiationRings(cfg *config.Config) (*waves.Rings, string) {
	for _, f := range cfg.Fields {
		if field.Kind(f.Kind) != field.KindLorentz {
			continue
		}
		source := ""
		switch {
		case len(f.Sources) > 0:
			source = f.Sources[0]
		case len(cfg.Particles) > 0:
			source = cfg.Particles[0].Name
		default:
			return nil, ""
		}
		r := waves.NewRings()
		r.GrowthRate = f.Params().C
		return r, source
	}
	return nil, ""
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
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tDURATION\tFPS\tINTEG\tPARTICLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.0f\t%s\t%s\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.FPS,
			run.Integrator,
			strings.Join(run.Particles, ","),
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return err
	}

	if particleName == "" {
		return nil
	}
	return printPath(st, args[0], particleName)
}

func printPath(st *storage.Store, runID, name string) error {
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	xs, err := traj.Series(name, 0)
	if err != nil {
		return err
	}
	ys, _ := traj.Series(name, 1)

	centers := make([]dynamo.Vec3, len(xs))
	for i := range xs {
		centers[i] = dynamo.V(xs[i], ys[i], 0)
	}
	fmt.Println()
	fmt.Println(tui.HeaderStyle.Render(name + " (x, y)"))
	fmt.Print(analysis.PathToASCII(analysis.Project(centers, 0, 1), 72, 20))
	return nil
}

func axisIndex() (int, error) {
	i, ok := axes[axisName]
	if !ok {
		return 0, fmt.Errorf("unknown axis %q", axisName)
	}
	return i, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	if pathPlot {
		if particleName == "" {
			return errors.New("--path needs --particle")
		}
		return printPath(st, runID, particleName)
	}

	axis, err := axisIndex()
	if err != nil {
		return err
	}

	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("samples: %d\n\n", len(traj.Times))

	names := traj.Particles
	if particleName != "" {
		names = []string{particleName}
	}
	if svgPath != "" {
		if err := writeTrajectorySVG(traj, names); err != nil {
			return err
		}
	}
	for _, name := range names {
		data, err := traj.Series(name, axis)
		if err != nil {
			return err
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s %s vs time", name, axisName)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func writeTrajectorySVG(traj *storage.Trajectory, names []string) error {
	paths := make([]*analysis.Path, len(names))
	for i, name := range names {
		xs, err := traj.Series(name, 0)
		if err != nil {
			return err
		}
		ys, _ := traj.Series(name, 1)
		centers := make([]dynamo.Vec3, len(xs))
		for j := range xs {
			centers[j] = dynamo.V(xs[j], ys[j], 0)
		}
		paths[i] = analysis.Project(centers, 0, 1)
	}
	if err := os.WriteFile(svgPath, []byte(export.TrajectoriesSVG(names, paths, 800, 600)), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n\n", svgPath)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}
	if len(traj.Particles) == 0 || len(traj.Times) < 2 {
		return fmt.Errorf("no data")
	}

	axis, err := axisIndex()
	if err != nil {
		return err
	}
	name := particleName
	if name == "" {
		name = traj.Particles[0]
	}
	data, err := traj.Series(name, axis)
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("scene: %s, particle %s, axis %s\n\n", meta.Scene, name, axisName)

	spectrum := analysis.NewSpectrum(data, meta.FPS)
	plotData := spectrum.Power
	if len(plotData) > 8 {
		plotData = plotData[:len(plotData)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("power spectrum (%s.%s)", name, axisName)),
	)
	fmt.Println(graph)
	fmt.Println()

	freq, _ := spectrum.Peak()
	fmt.Printf("dominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))
	if period, ok := analysis.MeanPeriod(analysis.UpwardCrossings(traj.Times, data, mean)); ok {
		fmt.Printf("crossing period: %.3f s\n", period)
	}

	if at, ok := analysis.ArrivalTime(traj.Times, data, tolerance); ok {
		fmt.Printf("first motion: t=%.3f s\n", at)
	} else {
		fmt.Println("first motion: never")
	}
	return nil
}

func sampleField(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg, nil, log.WithField("scene", cfg.Name), nil)
	if err != nil {
		return err
	}
	scene := exp.Scene()

	dt := 1 / cfg.FPS
	for scene.Time()+dt/2 <= fieldAt {
		if _, err := scene.Step(dt); err != nil {
			return err
		}
	}

	grid := field.Grid{Min: dynamo.V(-4, -4, 0), Max: dynamo.V(4, 4, 0), Step: 1}
	if cfg.Probe != nil {
		grid = *cfg.Probe
	}

	fields := scene.Fields()
	if fieldName != "" {
		f, err := scene.Field(fieldName)
		if err != nil {
			return err
		}
		fields = []*field.Field{f}
	}
	if len(fields) == 0 {
		return fmt.Errorf("scene %s has no fields", cfg.Name)
	}

	fmt.Printf("scene %s at t=%.3fs\n\n", cfg.Name, scene.Time())
	for i, f := range fields {
		pts, vals, err := f.Sample(grid)
		if err != nil {
			return err
		}
		fmt.Println(tui.FieldTable(f.Name(), pts, vals, fieldLimit))
		if i == 0 && svgPath != "" {
			svg := export.FieldSVG(pts, vals, grid.Step, 800, 800)
			if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", svgPath)
		}
	}
	return nil
}

// parseParam reads "name=1,2,4" or "name=lo:hi:n".
func parseParam(arg string) (optim.Param, error) {
	name, values, ok := strings.Cut(arg, "=")
	if !ok || name == "" {
		return optim.Param{}, fmt.Errorf("bad --param %q", arg)
	}
	p := optim.Param{Name: name}

	if parts := strings.Split(values, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return p, fmt.Errorf("bad range in --param %q: %w", arg, err)
		}
		if n < 2 {
			return p, fmt.Errorf("range in --param %q needs at least 2 points", arg)
		}
		for i := 0; i < n; i++ {
			p.Values = append(p.Values, lo+(hi-lo)*float64(i)/float64(n-1))
		}
		return p, nil
	}

	for _, raw := range strings.Split(values, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return p, fmt.Errorf("bad value in --param %q: %w", arg, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

func sweepScene(cmd *cobra.Command, args []string) error {
	cfg, err := loadScene(cmd, args)
	if err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("need at least one --param (have %v)", optim.KnobNames())
	}

	params := make([]optim.Param, 0, len(sweepParams))
	for _, arg := range sweepParams {
		p, err := parseParam(arg)
		if err != nil {
			return err
		}
		params = append(params, p)
	}

	g, err := optim.NewGridSearch(params)
	if err != nil {
		return err
	}
	g.SetWorkers(sweepWorkers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %d points...\n\n", cfg.Name, g.Size())
	start := time.Now()
	best, points, err := g.Search(ctx, cfg, sweepMetric, sweepMaximize)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := make([]string, 0, len(params)+1)
	for _, p := range params {
		header = append(header, strings.ToUpper(p.Name))
	}
	fmt.Fprintln(w, strings.Join(append(header, strings.ToUpper(sweepMetric)), "\t"))
	for _, pt := range points {
		row := make([]string, 0, len(params)+1)
		for _, p := range params {
			row = append(row, strconv.FormatFloat(pt.Params[p.Name], 'g', 6, 64))
		}
		if pt.Err != nil {
			row = append(row, "error: "+pt.Err.Error())
		} else {
			row = append(row, strconv.FormatFloat(pt.Metrics[sweepMetric], 'g', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at", sweepMetric, best.Metrics[sweepMetric])
	for _, p := range params {
		fmt.Printf(" %s=%g", p.Name, best.Params[p.Name])
	}
	fmt.Printf(" (%v)\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPARTICLES\tFIELDS\tDURATION\tINTEG")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fields := make([]string, len(p.Fields))
		for i, f := range p.Fields {
			fields[i] = f.Name + ":" + f.Kind
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%.0fs\t%s\n", name, len(p.Particles), strings.Join(fields, ","), p.Duration, p.Integrator)
	}
	return w.Flush()
}
