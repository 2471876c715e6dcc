// Package replication runs independent replications of an experiment and
// collects their results.
package replication

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/kishu/monitoring"
	"github.com/sarchlab/kishu/sim"
)

// A Runner runs several independent replications of the same experiment.
// Each replication gets its own simulation, so replications can run in
// parallel without sharing state.
type Runner struct {
	// Replications is the number of independent runs.
	Replications int

	// Parallelism caps how many replications run at the same time. Zero
	// selects one replication per CPU core.
	Parallelism int

	// Setup builds the simulation of one replication. The index runs from
	// 0 to Replications-1 and is typically used to derive the seed.
	Setup func(index int) (*sim.Simulation, error)

	// Monitor, when set, shows a progress bar for the batch.
	Monitor *monitoring.Monitor
}

// Run executes all replications and returns their result maps in
// replication order. The first failure stops new replications from
// starting; replications that already started run to completion.
func (r *Runner) Run(ctx context.Context) ([]map[string]any, error) {
	if r.Setup == nil {
		log.Panic("a replication runner needs a setup function")
	}

	if r.Replications < 1 {
		log.Panic("a replication runner needs at least one replication")
	}

	parallelism := r.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	var bar *monitoring.ProgressBar
	if r.Monitor != nil {
		bar = r.Monitor.CreateProgressBar(
			"replications", uint64(r.Replications))
		defer r.Monitor.CompleteProgressBar(bar)
	}

	results := make([]map[string]any, r.Replications)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i := 0; i < r.Replications; i++ {
		i := i
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if bar != nil {
				bar.IncrementInProgress(1)
			}

			res, err := r.runOne(i)
			if err != nil {
				return fmt.Errorf("replication %d: %w", i, err)
			}

			results[i] = res

			if bar != nil {
				bar.MoveInProgressToFinished(1)
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *Runner) runOne(index int) (map[string]any, error) {
	s, err := r.Setup(index)
	if err != nil {
		return nil, err
	}

	s.Init()

	if err := s.Run(); err != nil {
		return nil, err
	}

	s.Done()

	res := map[string]any{}
	s.ProduceResults(res)

	return res, nil
}
