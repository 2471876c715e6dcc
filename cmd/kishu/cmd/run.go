package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/kishu/config"
	"github.com/sarchlab/kishu/examples/mm1"
	"github.com/sarchlab/kishu/listeners"
	"github.com/sarchlab/kishu/sim"
	"github.com/sarchlab/kishu/simulation"
)

var (
	length      float64 // Simulation horizon, overriding the configuration
	seed        int64   // Master seed, overriding the configuration
	model       string  // Built-in model to attach
	arrivalRate float64 // Arrival rate of the mm1 model
	serviceRate float64 // Service rate of the mm1 model
)

// runCmd executes a single simulation run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single simulation experiment",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		applyFlagOverrides(cmd, &cfg)
		mustBeRunnable(cfg)

		s := simulation.MakeBuilder().WithConfig(cfg).Build()
		defer s.Terminate()

		attachModel(s.GetKernel())

		start := time.Now()

		results, err := s.Run()
		if err != nil {
			logrus.Fatalf("Simulation failed: %s", err)
		}

		logrus.Infof("Simulation %s finished in %s",
			cfg.Name, time.Since(start).Round(time.Millisecond))

		printResults(results)
	},
}

// applyFlagOverrides copies the flags the user actually set into the
// configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("length") {
		cfg.Length = length
	}

	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
}

// mustBeRunnable rejects configurations that cannot produce a terminating
// run before any simulation state is built.
func mustBeRunnable(cfg config.Config) {
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %s", err)
	}

	switch model {
	case "", "mm1":
	default:
		logrus.Fatalf("Unknown model: %s", model)
	}

	if model != "" && cfg.Length <= 0 {
		logrus.Fatalf("A %s run needs a simulation length", model)
	}
}

// attachModel wires the console printer and the selected built-in model
// into a kernel.
func attachModel(kernel *sim.Simulation) {
	printer := listeners.NewConsolePrinter(
		logrus.StandardLogger(), printCategory(logrus.GetLevel()))
	kernel.AddListener(printer)

	if model == "mm1" {
		if _, err := mm1.New(kernel, arrivalRate, serviceRate); err != nil {
			logrus.Fatalf("Cannot build the mm1 model: %s", err)
		}
	}
}

// printCategory maps the logger verbosity onto the category of print
// notifications that reach the console.
func printCategory(level logrus.Level) sim.MsgCategory {
	switch {
	case level >= logrus.TraceLevel:
		return sim.CategoryAll
	case level >= logrus.DebugLevel:
		return sim.CategoryDebug
	case level >= logrus.InfoLevel:
		return sim.CategoryInfo
	case level >= logrus.WarnLevel:
		return sim.CategoryWarn
	default:
		return sim.CategoryError
	}
}

func printResults(results map[string]any) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s: %v\n", name, results[name])
	}
}

// init sets up the flags of the run command.
func init() {
	runCmd.Flags().Float64Var(&length, "length", 0,
		"Simulation length in seconds, overriding the configuration")
	runCmd.Flags().Int64Var(&seed, "seed", 0,
		"Master seed, overriding the configuration")
	runCmd.Flags().StringVar(&model, "model", "",
		"Built-in model to attach (mm1)")
	runCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 1.0,
		"Arrival rate of the mm1 model, in customers per second")
	runCmd.Flags().Float64Var(&serviceRate, "service-rate", 2.0,
		"Service rate of the mm1 model, in customers per second")

	rootCmd.AddCommand(runCmd)
}
