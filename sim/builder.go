package sim

import (
	"github.com/rs/xid"

	"github.com/sarchlab/kishu/random"
)

// A Builder configures and creates simulations.
type Builder struct {
	name             string
	simulationLength VTimeInSec
	queueFactory     QueueFactory
	randFactory      *random.Factory
}

// MakeBuilder creates a builder with the default configuration: an unbounded
// horizon and the binary-heap event queue.
func MakeBuilder() Builder {
	return Builder{
		queueFactory: func() EventQueue { return NewEventHeap() },
	}
}

// WithName sets a human-readable label for the simulation.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithSimulationLength sets the horizon. A run with a finite horizon
// terminates at the horizon through an ordinary lowest-priority event. Zero
// means unbounded.
func (b Builder) WithSimulationLength(length VTimeInSec) Builder {
	b.simulationLength = length
	return b
}

// WithQueueFactory selects the event queue implementation.
func (b Builder) WithQueueFactory(f QueueFactory) Builder {
	b.queueFactory = f
	return b
}

// WithRandomFactory sets the random stream factory model code draws from.
func (b Builder) WithRandomFactory(f *random.Factory) Builder {
	b.randFactory = f
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.simulationLength < 0 {
		panic("simulation length cannot be negative")
	}

	if b.queueFactory == nil {
		panic("queue factory cannot be nil")
	}
}

// Build creates a simulation in the Created state.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:               xid.New().String(),
		name:             b.name,
		simulationLength: b.simulationLength,
		queueFactory:     b.queueFactory,
		randFactory:      b.randFactory,
	}

	return s
}
