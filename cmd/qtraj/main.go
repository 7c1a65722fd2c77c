package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/qtraj"
	"github.com/san-kum/qtraj/internal/analysis"
	"github.com/san-kum/qtraj/internal/config"
	"github.com/san-kum/qtraj/internal/store"
)

var (
	configFile string
	preset     string
	model      string
	duration   float64
	ntraj      int
	seed       uint64
	methodName string
	dt         float64
	smart      bool
	jsonOut    string
	csvOut     string
	verbose    bool
)

var log zerolog.Logger

func main() {
	rootCmd := &cobra.Command{
		Use:   "qtraj",
		Short: "quantum-jump trajectory simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).With().Timestamp().Logger()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a trajectory simulation",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "preset name (model/name)")
	runCmd.Flags().StringVar(&model, "model", "", "model: decay, rabi, cavity")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	runCmd.Flags().IntVar(&ntraj, "ntraj", 0, "number of trajectories override")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "random seed override")
	runCmd.Flags().StringVar(&methodName, "method", "", "no-click stepper: euler, rk4, dopri5")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "fixed step size (euler, rk4)")
	runCmd.Flags().BoolVar(&smart, "smart", false, "enable smart sampling")
	runCmd.Flags().StringVar(&jsonOut, "json", "", "export result as json")
	runCmd.Flags().StringVar(&csvOut, "csv", "", "export ensemble means as csv")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		parts := strings.SplitN(preset, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("preset must be model/name, got %q", preset)
		}
		p := config.GetPreset(parts[0], parts[1])
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q, try the presets command", preset)
		}
		cfg = p
	}

	if model != "" {
		cfg.Model = model
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("ntraj") {
		cfg.NTraj = ntraj
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if methodName != "" {
		cfg.Method = methodName
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("smart") {
		cfg.Smart = smart
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	problem, err := cfg.Build()
	if err != nil {
		return err
	}

	log.Info().
		Str("model", cfg.Model).
		Str("method", cfg.Method).
		Int("ntraj", cfg.NTraj).
		Float64("duration", cfg.Duration).
		Bool("smart", cfg.Smart).
		Msg("starting solve")

	start := time.Now()
	res, err := qtraj.Solve(context.Background(), problem)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	log.Info().Dur("elapsed", elapsed).Msg("solve finished")

	printSummary(cfg, res, elapsed)
	plotResult(cfg, res)

	if jsonOut != "" {
		if err := store.ExportJSON(jsonOut, res); err != nil {
			return err
		}
		log.Info().Str("path", jsonOut).Msg("wrote json export")
	}
	if csvOut != "" {
		if err := store.ExportCSV(csvOut, res); err != nil {
			return err
		}
		log.Info().Str("path", csvOut).Msg("wrote csv export")
	}
	return nil
}

func printSummary(cfg *config.Config, res *qtraj.Result, elapsed time.Duration) {
	b := res.At()

	fmt.Println(titleStyle.Render("qtraj run summary"))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\n", labelStyle.Render("model"), cfg.Model)
	fmt.Fprintf(w, "%s\t%s\n", labelStyle.Render("method"), cfg.Method)
	fmt.Fprintf(w, "%s\t%d\n", labelStyle.Render("trajectories"), len(res.Keys))
	fmt.Fprintf(w, "%s\t%g\n", labelStyle.Render("duration"), cfg.Duration)
	fmt.Fprintf(w, "%s\t%s\n", labelStyle.Render("elapsed"), elapsed.Round(time.Millisecond))

	last := len(res.SaveTimes) - 1
	counts := make([]int, len(b.NClicks))
	for ti, perChan := range b.NClicks {
		for _, n := range perChan {
			counts[ti] += n
		}
	}
	rate := analysis.ClickRate(counts, res.SaveTimes[last]-res.SaveTimes[0])

	failed := 0
	for _, info := range b.Infos {
		if info.Err != nil {
			failed++
		}
	}
	fmt.Fprintf(w, "%s\t%.4f\n", labelStyle.Render("mean click rate"), rate)
	w.Flush()

	if failed > 0 {
		fmt.Println(warnStyle.Render(fmt.Sprintf("%d trajectories terminated early", failed)))
	}
	fmt.Println()
}

func plotResult(cfg *config.Config, res *qtraj.Result) {
	b := res.At()
	if len(b.Expects) == 0 || len(b.Expects[0]) == 0 {
		return
	}

	perTraj := make([][]complex128, len(b.Expects))
	for ti := range b.Expects {
		perTraj[ti] = b.Expects[ti][0]
	}
	mean := analysis.EnsembleMean(perTraj)

	graph := asciigraph.Plot(mean,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("ensemble mean observable"),
	)
	fmt.Println(graph)
	fmt.Println()

	if b.NoClickProb != nil {
		graph := asciigraph.Plot(b.NoClickProb,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("no-click survival probability"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPRESET\tNTRAJ\tDURATION\tSMART")

	models := make([]string, 0, len(config.Presets))
	for m := range config.Presets {
		models = append(models, m)
	}
	sort.Strings(models)

	for _, m := range models {
		names := config.ListPresets(m)
		sort.Strings(names)
		for _, name := range names {
			p := config.GetPreset(m, name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%.1fs\t%v\n", m, name, p.NTraj, p.Duration, p.Smart)
		}
	}
	return w.Flush()
}
