// Package simulation assembles runnable experiments. It wires the kernel
// together with random streams, result recording, and monitoring, so that
// models only describe their events and their metrics.
package simulation

import (
	"github.com/sarchlab/kishu/config"
	"github.com/sarchlab/kishu/monitoring"
	"github.com/sarchlab/kishu/random"
	"github.com/sarchlab/kishu/recording"
	"github.com/sarchlab/kishu/sim"
)

// A Simulation provides the services required to run an experiment.
type Simulation struct {
	cfg    config.Config
	kernel *sim.Simulation

	recorder recording.Recorder
	monitor  *monitoring.Monitor
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.kernel.ID()
}

// GetKernel returns the simulation kernel.
func (s *Simulation) GetKernel() *sim.Simulation {
	return s.kernel
}

// GetConfig returns the configuration the simulation was built from.
func (s *Simulation) GetConfig() config.Config {
	return s.cfg
}

// GetRandomFactory returns the random stream factory of the simulation.
func (s *Simulation) GetRandomFactory() *random.Factory {
	return s.kernel.RandomFactory()
}

// GetRecorder returns the recorder used in the simulation. It is nil when
// recording is disabled.
func (s *Simulation) GetRecorder() recording.Recorder {
	return s.recorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Run takes the simulation through its whole lifecycle and returns the
// collected results. When recording is enabled, the run and its results are
// persisted as a side effect.
func (s *Simulation) Run() (map[string]any, error) {
	s.kernel.Init()

	if err := s.kernel.Run(); err != nil {
		return nil, err
	}

	s.kernel.Done()

	results := map[string]any{}
	s.kernel.ProduceResults(results)

	return results, nil
}

// Terminate terminates the simulation.
func (s *Simulation) Terminate() {
	if s.recorder != nil {
		s.recorder.Close()
	}
}
