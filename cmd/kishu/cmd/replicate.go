package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/kishu/replication"
	"github.com/sarchlab/kishu/sim"
	"github.com/sarchlab/kishu/simulation"
)

var (
	replications int // Number of replications, overriding the configuration
	parallelism  int // Concurrent replications, overriding the configuration
)

// replicateCmd executes a batch of independent replications of one
// experiment, each with its own seed.
var replicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Run a batch of replications of an experiment",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		applyFlagOverrides(cmd, &cfg)

		if cmd.Flags().Changed("replications") {
			cfg.Replications = replications
		}

		if cmd.Flags().Changed("parallelism") {
			cfg.Parallelism = parallelism
		}

		mustBeRunnable(cfg)

		runner := &replication.Runner{
			Replications: cfg.Replications,
			Parallelism:  cfg.Parallelism,
			Setup: func(index int) (*sim.Simulation, error) {
				kernel := simulation.NewKernel(cfg, cfg.Seed+int64(index))
				attachModel(kernel)

				return kernel, nil
			},
		}

		start := time.Now()

		results, err := runner.Run(context.Background())
		if err != nil {
			logrus.Fatalf("Replication batch failed: %s", err)
		}

		logrus.Infof("%d replications of %s finished in %s",
			cfg.Replications, cfg.Name, time.Since(start).Round(time.Millisecond))

		printMeanResults(results)
	},
}

// printMeanResults averages the numeric results over all replications.
// Non-numeric results are skipped.
func printMeanResults(results []map[string]any) {
	if len(results) == 0 {
		return
	}

	names := make([]string, 0, len(results[0]))
	for name := range results[0] {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		sum := 0.0
		count := 0

		for _, res := range results {
			if v, ok := asFloat(res[name]); ok {
				sum += v
				count++
			}
		}

		if count == 0 {
			continue
		}

		fmt.Printf("%s: %.6g\n", name, sum/float64(count))
	}
}

func asFloat(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case sim.VTimeInSec:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	default:
		return 0, false
	}
}

// init sets up the flags of the replicate command.
func init() {
	replicateCmd.Flags().IntVar(&replications, "replications", 1,
		"Number of replications, overriding the configuration")
	replicateCmd.Flags().IntVar(&parallelism, "parallelism", 0,
		"Concurrent replications, 0 for one per CPU")
	replicateCmd.Flags().Float64Var(&length, "length", 0,
		"Simulation length in seconds, overriding the configuration")
	replicateCmd.Flags().Int64Var(&seed, "seed", 0,
		"Base seed, replication i runs with seed+i")
	replicateCmd.Flags().StringVar(&model, "model", "",
		"Built-in model to attach (mm1)")
	replicateCmd.Flags().Float64Var(&arrivalRate, "arrival-rate", 1.0,
		"Arrival rate of the mm1 model, in customers per second")
	replicateCmd.Flags().Float64Var(&serviceRate, "service-rate", 2.0,
		"Service rate of the mm1 model, in customers per second")

	rootCmd.AddCommand(replicateCmd)
}
