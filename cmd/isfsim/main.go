package main

import (
	"context"
	"fmt"
	"math/cmplx"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/cache"
	"github.com/san-kum/isfsim/internal/config"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/lattice"
	"github.com/san-kum/isfsim/internal/logger"
	"github.com/san-kum/isfsim/internal/metrics"
	"github.com/san-kum/isfsim/internal/storage"
	"github.com/san-kum/isfsim/internal/sweep"
	"github.com/san-kum/isfsim/internal/thermal"
	"github.com/san-kum/isfsim/internal/viz"
)

var (
	dataDir     string
	configFile  string
	preset      string
	logLevel    string
	system      string
	shape       int
	resolution  int
	nBands      int
	temperature float64
	samples     int
	seed        int64
	direction   int
	tStart      float64
	tStop       float64
	tPoints     int
	workers     int
	cacheDir    string
	noSave      bool
	plotWidth   int
	plotHeight  int
	sweepTemps  []float64
	sweepDirs   []int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "isfsim",
		Short:        "intermediate scattering function of a particle in a periodic potential",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultRunsDir, "data directory for saved runs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Monte-Carlo thermal ISF",
		RunE:  runAverage,
	}
	addRunFlags(runCmd)
	runCmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "number of random Boltzmann states")
	runCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	runCmd.Flags().IntVar(&workers, "workers", 0, "concurrent samples (0 = all CPUs)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print the result without saving a run")

	exactCmd := &cobra.Command{
		Use:   "exact",
		Short: "phase-averaged thermal ISF without sampling",
		RunE:  runExact,
	}
	addRunFlags(exactCmd)
	exactCmd.Flags().BoolVar(&noSave, "no-save", false, "print the result without saving a run")

	bandsCmd := &cobra.Command{
		Use:   "bands",
		Short: "print the band structure",
		RunE:  printBands,
	}
	addRunFlags(bandsCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the Monte-Carlo average converge",
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&samples, "samples", config.DefaultLiveSamples, "number of random Boltzmann states")
	liveCmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "exact ISF metrics over temperatures and directions",
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&sweepTemps, "temps", []float64{100, 200, 300, 400}, "temperatures in kelvin")
	sweepCmd.Flags().IntSliceVar(&sweepDirs, "directions", nil, "scattering directions (default: --direction)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 60, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a saved run as csv to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a saved run as json to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list systems and run presets",
		RunE:  listPresets,
	}

	rootCmd.AddCommand(runCmd, exactCmd, bandsCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, presetsCmd)
	return rootCmd
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&system, "system", config.DefaultSystem, "system preset id")
	cmd.Flags().IntVar(&shape, "shape", config.DefaultShape, "unit cells in the super-cell")
	cmd.Flags().IntVar(&resolution, "resolution", config.DefaultResolution, "samples per unit cell")
	cmd.Flags().IntVar(&nBands, "bands", config.DefaultBands, "bands kept per momentum")
	cmd.Flags().Float64Var(&temperature, "temperature", config.DefaultTemperature, "temperature in kelvin")
	cmd.Flags().IntVar(&direction, "direction", config.DefaultDirection, "scattering vector in reciprocal super-cell lengths")
	cmd.Flags().Float64Var(&tStart, "t-start", 0, "first time in seconds")
	cmd.Flags().Float64Var(&tStop, "t-stop", config.DefaultTimeStop, "last time in seconds")
	cmd.Flags().IntVar(&tPoints, "t-points", config.DefaultTimePoints, "number of times")
	cmd.Flags().StringVar(&cacheDir, "cache", "", "directory for compiled hamiltonians")
}

// resolveConfig layers defaults, preset, config file and explicit flags in
// that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("system") {
		cfg.System = system
		cfg.Custom = nil
	}
	if flags.Changed("shape") {
		cfg.Shape = shape
	}
	if flags.Changed("resolution") {
		cfg.Resolution = resolution
	}
	if flags.Changed("bands") {
		cfg.NBands = nBands
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if flags.Changed("direction") {
		cfg.Direction = direction
	}
	if flags.Changed("t-start") {
		cfg.Times.Start = tStart
	}
	if flags.Changed("t-stop") {
		cfg.Times.Stop = tStop
	}
	if flags.Changed("t-points") {
		cfg.Times.N = tPoints
	}
	if flags.Changed("cache") {
		cfg.CacheDir = cacheDir
	}
	if flags.Changed("samples") {
		n, err := flags.GetInt("samples")
		if err != nil {
			return nil, err
		}
		cfg.Samples = n
		cfg.LiveSamples = n
	}
	if f := flags.Lookup("seed"); f != nil && (f.Changed || cfg.Seed == 0) {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("data") || cfg.RunsDir == "" {
		cfg.RunsDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type setup struct {
	cfg    *config.Config
	log    zerolog.Logger
	system lattice.PeriodicSystem
	params lattice.Config
	cache  *cache.Cache
}

func prepare(cmd *cobra.Command) (*setup, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	sys, err := cfg.PeriodicSystem()
	if err != nil {
		return nil, err
	}
	params, err := cfg.Lattice()
	if err != nil {
		return nil, err
	}
	return &setup{cfg: cfg, log: log, system: sys, params: params, cache: cache.New(cfg.CacheDir, log)}, nil
}

func (s *setup) compile() (*hamiltonian.Diagonal, error) {
	start := time.Now()
	h, err := s.cache.Get(s.system, s.params)
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("system", s.system.ID).
		Str("config", s.params.Key()).
		Int("states", len(h.Energies)).
		Dur("elapsed", time.Since(start)).
		Msg("hamiltonian ready")
	return h, nil
}

func runAverage(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	times := s.cfg.TimePoints()
	avg := thermal.NewAverager(rand.New(rand.NewSource(s.cfg.Seed)),
		thermal.WithWorkers(s.cfg.Workers),
		thermal.WithCompiler(s.cache.Get),
		thermal.WithLogger(s.log),
	)

	start := time.Now()
	isf, err := avg.AverageBoltzmannISF(ctx, s.system, s.params, times, s.cfg.Direction, s.cfg.Temperature, s.cfg.Samples)
	if err != nil {
		return err
	}

	meta := &storage.RunMetadata{
		Method:  storage.MethodMonteCarlo,
		Samples: s.cfg.Samples,
		Seed:    s.cfg.Seed,
		Elapsed: time.Since(start),
	}
	return s.finish(meta, &storage.Result{Times: times, ISF: isf})
}

func runExact(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}
	h, err := s.compile()
	if err != nil {
		return err
	}

	times := s.cfg.TimePoints()
	start := time.Now()
	isf, err := thermal.ExactBoltzmannISF(h, basis.PeriodicXOperator(h.Basis, s.cfg.Direction), times, s.cfg.Temperature)
	if err != nil {
		return err
	}
	meta := &storage.RunMetadata{Method: storage.MethodExact, Elapsed: time.Since(start)}
	return s.finish(meta, &storage.Result{Times: times, ISF: isf})
}

func (s *setup) finish(meta *storage.RunMetadata, res *storage.Result) error {
	meta.System = s.system
	meta.Config = s.params
	meta.Temperature = s.cfg.Temperature
	meta.Direction = s.cfg.Direction
	meta.Metrics = metrics.Compute(res.Times, res.ISF, metrics.Defaults()...)

	printResult(res)
	fmt.Println(viz.Separator(60))
	printMetrics(meta.Metrics)
	fmt.Println(viz.Separator(60))
	fmt.Println(viz.PlotISF(res.Times, res.ISF, viz.PlotOptions{Caption: fmt.Sprintf("%s %s", s.system.ID, meta.Method)}))

	if noSave {
		return nil
	}
	st := storage.New(s.cfg.RunsDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(meta, res)
	if err != nil {
		return err
	}
	s.log.Info().Str("run", runID).Dur("elapsed", meta.Elapsed).Msg("saved run")
	fmt.Printf("\nsaved: %s\n", runID)
	return nil
}

func printResult(res *storage.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRE\tIM\t|F|")
	for i, t := range res.Times {
		v := res.ISF[i]
		fmt.Fprintf(w, "%.4g\t%.6f\t%.6f\t%.6f\n", t, real(v), imag(v), cmplx.Abs(v))
	}
	w.Flush()
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%-16s %.6g\n", name, m[name])
	}
}

func printBands(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}
	h, err := s.compile()
	if err != nil {
		return err
	}
	title := fmt.Sprintf("%s  %s  (meV)", s.system.ID, s.params.Key())
	fmt.Println(viz.BoxWithTitle(title, viz.BandTable(h), 14+11*h.NSamples))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}
	h, err := s.compile()
	if err != nil {
		return err
	}

	m := viz.NewLiveModel(viz.LiveConfig{
		Title:       fmt.Sprintf("%s %s %.0fK", s.system.ID, s.params.Key(), s.cfg.Temperature),
		Hamiltonian: h,
		Operator:    basis.PeriodicXOperator(h.Basis, s.cfg.Direction),
		Times:       s.cfg.TimePoints(),
		Temperature: s.cfg.Temperature,
		Samples:     s.cfg.LiveSamples,
		Seed:        s.cfg.Seed,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := prepare(cmd)
	if err != nil {
		return err
	}
	h, err := s.compile()
	if err != nil {
		return err
	}

	dirs := make([]float64, 0, len(sweepDirs))
	for _, d := range sweepDirs {
		dirs = append(dirs, float64(d))
	}
	if len(dirs) == 0 {
		dirs = append(dirs, float64(s.cfg.Direction))
	}
	grid, err := sweep.NewGrid([]string{sweep.ParamTemperature, sweep.ParamDirection}, [][]float64{sweepTemps, dirs})
	if err != nil {
		return err
	}

	points, err := grid.Run(cmd.Context(), sweep.ExactISF(h, s.cfg.TimePoints(), s.cfg.Direction))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TEMP\tDIR\t|F(0)|\tDECAY\tDECAY TIME (s)")
	for _, p := range points {
		fmt.Fprintf(w, "%.1fK\t%.0f\t%.6f\t%.6f\t%.4g\n",
			p.Params[sweep.ParamTemperature],
			p.Params[sweep.ParamDirection],
			p.Metrics["isf0"],
			p.Metrics["decay_fraction"],
			p.Metrics["decay_time"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if best, ok := sweep.Best(points, "decay_fraction", true); ok {
		fmt.Printf("\nfastest decay: %.1fK direction %.0f\n", best.Params[sweep.ParamTemperature], best.Params[sweep.ParamDirection])
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
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tMETHOD\tCONFIG\tTEMP\tSAMPLES")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1fK\t%d\n",
			run.ID,
			run.System.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Method,
			run.Config.Key(),
			run.Temperature,
			run.Samples,
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, *storage.Result, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	res, err := st.LoadISF(runID)
	if err != nil {
		return nil, nil, err
	}
	return meta, res, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	fmt.Println(viz.PlotISF(res.Times, res.ISF, viz.PlotOptions{
		Width:   plotWidth,
		Height:  plotHeight,
		Caption: fmt.Sprintf("%s %s %.0fK", meta.System.ID, meta.Method, meta.Temperature),
	}))
	fmt.Println()
	printMetrics(meta.Metrics)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, res)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, res, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, meta, res)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYSTEM\tBARRIER (J)\tLATTICE (m)\tMASS (kg)")
	for _, id := range lattice.ListPresets() {
		p, _ := lattice.GetPreset(id)
		fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\n", p.ID, p.BarrierEnergy, p.LatticeConstant, p.Mass)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "PRESET\tSYSTEM\tCONFIG\tTEMP\tSAMPLES")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\tshape=%d res=%d bands=%d\t%.0fK\t%d\n",
			name, p.System, p.Shape, p.Resolution, p.NBands, p.Temperature, p.Samples)
	}
	return w.Flush()
}
