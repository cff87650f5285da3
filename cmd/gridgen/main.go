package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/Rojas-Binny/GridGen/circuit"
	"github.com/Rojas-Binny/GridGen/grid"
	"github.com/Rojas-Binny/GridGen/internal/config"
	"github.com/Rojas-Binny/GridGen/internal/logging"
	"github.com/Rojas-Binny/GridGen/internal/observability"
	"github.com/Rojas-Binny/GridGen/solver/virtual"
	"github.com/Rojas-Binny/GridGen/validate"
)

var (
	configFile  string
	metricsAddr string
	jsonOut     bool

	// Time-series offsets: either an explicit comma-separated list or a
	// generated 0, interval, 2*interval, ... sequence.
	offsetsFlag  string
	stepCount    int
	stepInterval float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridgen",
		Short: "power grid scenario validation",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "prometheus listen address (e.g. :9090)")

	validateCmd := &cobra.Command{
		Use:   "validate [scenario.json]",
		Short: "validate a scenario against voltage and thermal limits",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	validateCmd.Flags().BoolVar(&jsonOut, "json", false, "emit the result as JSON")

	timeseriesCmd := &cobra.Command{
		Use:   "timeseries [scenario.json]",
		Short: "validate a scenario across a sequence of time offsets",
		Args:  cobra.ExactArgs(1),
		RunE:  runTimeSeries,
	}
	timeseriesCmd.Flags().StringVar(&offsetsFlag, "offsets", "", "comma-separated time offsets (overrides --steps/--interval)")
	timeseriesCmd.Flags().IntVar(&stepCount, "steps", 24, "number of generated time steps")
	timeseriesCmd.Flags().Float64Var(&stepInterval, "interval", 1.0, "spacing between generated time steps")
	timeseriesCmd.Flags().BoolVar(&jsonOut, "json", false, "emit the result as JSON")

	generateCmd := &cobra.Command{
		Use:   "generate [dir]",
		Short: "write the sample scenario set to a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}

	rootCmd.AddCommand(validateCmd, timeseriesCmd, generateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newValidator assembles the validator with config, logging, metrics,
// and tracing applied. The returned cleanup flushes tracing spans.
func newValidator(ctx context.Context) (*validate.Validator, logging.Logger, func(), error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, nil, err
		}
		cfg = loaded
	}

	log := logging.NewFromEnv()

	shutdown, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup := func() { observability.ShutdownWithTimeout(ctx, shutdown, log) }

	collector, err := observability.NewValidationCollector(nil)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	addr := metricsAddr
	if addr == "" {
		addr = cfg.Metrics.Addr
	}
	if addr != "" {
		go func() {
			if err := http.ListenAndServe(addr, collector.Handler()); err != nil {
				log.Warn(ctx, "metrics endpoint stopped", logging.String("error", err.Error()))
			}
		}()
	}

	v := validate.New(virtual.New(),
		validate.WithLogger(log),
		validate.WithMetrics(collector),
		validate.WithBand(validate.Band{Min: cfg.Limits.VmLb, Max: cfg.Limits.VmUb}),
		validate.WithSettings(circuit.Settings{
			BaseFrequency:        cfg.Solver.BaseFrequency,
			VoltageBases:         cfg.Solver.VoltageBases,
			MaxIterations:        cfg.Solver.MaxIterations,
			MaxControlIterations: cfg.Solver.MaxControlIterations,
		}),
	)
	return v, log, cleanup, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	v, _, cleanup, err := newValidator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	scenario, err := grid.LoadScenarioFile(args[0])
	if err != nil {
		return err
	}

	result, err := v.Validate(ctx, scenario)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(scenario, result)
	return nil
}

func printResult(scenario *grid.Scenario, result *validate.Result) {
	fmt.Printf("scenario: %s\n", scenario.ID)
	fmt.Printf("converged: %v\n", result.Converged)
	fmt.Printf("success: %v\n", result.Success)

	if !result.Converged {
		fmt.Println("solve did not converge; limits not evaluated")
		return
	}

	if len(result.VoltageViolations) > 0 {
		fmt.Println("\nvoltage violations:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BUS\tVOLTAGE\tLIMIT")
		for _, vv := range result.VoltageViolations {
			fmt.Fprintf(w, "%s\t%.4f\t%s\n", vv.Bus, vv.Voltage, vv.Limit)
		}
		w.Flush()
	}

	if len(result.ThermalViolations) > 0 {
		fmt.Println("\nthermal violations:")
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "BRANCH\tCURRENT\tLIMIT")
		for _, tv := range result.ThermalViolations {
			fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", tv.Branch, tv.Current, tv.Limit)
		}
		w.Flush()
	}

	fmt.Printf("\npower flow:\n")
	fmt.Printf("  total losses:     %.6f\n", result.PowerFlow.TotalLosses)
	fmt.Printf("  total generation: %.6f\n", result.PowerFlow.TotalGeneration)
	fmt.Printf("  total load:       %.6f\n", result.PowerFlow.TotalLoad)
}

func runTimeSeries(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	offsets, err := parseOffsets()
	if err != nil {
		return err
	}

	v, _, cleanup, err := newValidator(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	scenario, err := grid.LoadScenarioFile(args[0])
	if err != nil {
		return err
	}

	result, err := v.ValidateTimeSeries(ctx, scenario, offsets)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("scenario: %s\n", scenario.ID)
	fmt.Printf("steps: %d\n", len(result.Steps))
	fmt.Printf("success: %v\n\n", result.Success)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSUCCESS\tCONVERGED")
	for _, step := range result.Steps {
		fmt.Fprintf(w, "%g\t%v\t%v\n", step.Time, step.Success, step.Converged)
	}
	w.Flush()

	if len(result.Steps) > 1 {
		data := make([]float64, len(result.Steps))
		for i, step := range result.Steps {
			if step.Success {
				data[i] = 1
			}
		}
		fmt.Println()
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(5),
			asciigraph.Width(len(data)*2),
			asciigraph.Caption("per-step success (1 = within limits)"),
		))
	}

	fmt.Printf("\nvoltage violations across series: %d\n", len(result.VoltageViolations))
	fmt.Printf("thermal violations across series: %d\n", len(result.ThermalViolations))
	return nil
}

func parseOffsets() ([]float64, error) {
	if offsetsFlag != "" {
		parts := strings.Split(offsetsFlag, ",")
		offsets := make([]float64, 0, len(parts))
		for _, p := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return nil, fmt.Errorf("bad offset %q: %w", p, err)
			}
			offsets = append(offsets, v)
		}
		return offsets, nil
	}

	if stepCount <= 0 {
		return nil, fmt.Errorf("steps must be positive, got %d", stepCount)
	}
	offsets := make([]float64, stepCount)
	for i := range offsets {
		offsets[i] = float64(i) * stepInterval
	}
	return offsets, nil
}
