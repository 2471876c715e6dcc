package simulation

import (
	"sort"

	"github.com/sarchlab/kishu/config"
	"github.com/sarchlab/kishu/monitoring"
	"github.com/sarchlab/kishu/random"
	"github.com/sarchlab/kishu/recording"
	"github.com/sarchlab/kishu/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg              config.Config
	withoutMonitor   bool
	withoutRecording bool
}

// MakeBuilder creates a builder with a default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the configuration of the experiment.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithoutMonitoring builds the simulation without the monitoring server,
// even when the configuration enables it.
func (b Builder) WithoutMonitoring() Builder {
	b.withoutMonitor = true
	return b
}

// WithoutRecording builds the simulation without recording, even when the
// configuration enables it.
func (b Builder) WithoutRecording() Builder {
	b.withoutRecording = true
	return b
}

func (b Builder) parametersMustBeValid() {
	if err := b.cfg.Validate(); err != nil {
		panic(err)
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{cfg: b.cfg}

	s.kernel = b.buildKernel()

	if b.cfg.Recording.Enabled && !b.withoutRecording {
		b.buildRecording(s)
	}

	if b.cfg.Monitor.Enabled && !b.withoutMonitor {
		b.buildMonitor(s)
	}

	return s
}

// NewKernel builds only the kernel of a configuration, with the given seed
// overriding the configured one. Replication batches use it to give every
// run its own seed while sharing one configuration.
func NewKernel(cfg config.Config, seed int64) *sim.Simulation {
	cfg.Seed = seed

	b := Builder{cfg: cfg}
	b.parametersMustBeValid()

	return b.buildKernel()
}

func (b Builder) buildKernel() *sim.Simulation {
	policy, err := random.ParseSeedPolicy(b.cfg.SeedPolicy)
	if err != nil {
		panic(err)
	}

	factory := random.NewFactory(b.cfg.Seed, policy)

	names := make([]string, 0, len(b.cfg.Streams))
	for name := range b.cfg.Streams {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		_, err := factory.CreateStream(name, b.cfg.Streams[name])
		if err != nil {
			panic(err)
		}
	}

	return sim.MakeBuilder().
		WithName(b.cfg.Name).
		WithSimulationLength(sim.VTimeInSec(b.cfg.Length)).
		WithQueueFactory(b.queueFactory()).
		WithRandomFactory(factory).
		Build()
}

func (b Builder) queueFactory() sim.QueueFactory {
	if b.cfg.Queue == config.QueueInsertion {
		return func() sim.EventQueue { return sim.NewInsertionQueue() }
	}

	return func() sim.EventQueue { return sim.NewEventHeap() }
}

func (b Builder) buildRecording(s *Simulation) {
	path := b.cfg.Recording.Path
	if path == "" {
		path = "kishu_run_" + s.kernel.ID()
	}

	s.recorder = recording.NewRecorder(path)
	s.kernel.AddListener(recording.NewResultsListener(s.recorder))
}

func (b Builder) buildMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()

	if b.cfg.Monitor.Port > 0 {
		s.monitor.WithPortNumber(b.cfg.Monitor.Port)
	}

	s.monitor.RegisterSimulation(s.kernel)
	s.monitor.StartServer()

	if b.cfg.Monitor.OpenBrowser {
		s.monitor.OpenDashboard()
	}
}
