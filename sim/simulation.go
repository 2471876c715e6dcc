package sim

import (
	"fmt"
	"log"
	"math"
	"sync"

	"github.com/sarchlab/kishu/observer"
	"github.com/sarchlab/kishu/random"
)

// State tracks where a simulation is in its lifecycle.
type State int

// The lifecycle states. A simulation moves strictly forward through them.
const (
	StateCreated State = iota
	StateInitialized
	StateRunning
	StateEnded
	StateDone
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "Created"
	case StateInitialized:
		return "Initialized"
	case StateRunning:
		return "Running"
	case StateEnded:
		return "Ended"
	case StateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// A Simulation owns the logical clock and the event queue and drives one
// Init, Run, Done cycle. It is not restartable: experiment batches create a
// fresh instance for every run, so no kernel state is shared across runs.
//
// Dispatch is single-threaded and cooperative. Every action runs to
// completion on the goroutine that called Run, and all side effects of an
// action are visible to every later-dispatched event. The clock, the state,
// and the counters may be read from other goroutines while the simulation
// runs.
type Simulation struct {
	id   string
	name string

	simulationLength VTimeInSec
	queueFactory     QueueFactory
	randFactory      *random.Factory

	stateLock sync.RWMutex
	state     State

	timeLock sync.RWMutex
	time     VTimeInSec

	continueLock sync.RWMutex
	continueSim  bool

	countLock     sync.RWMutex
	eventCounter  int64
	numAppEvents  int
	numDispatched int64

	queue EventQueue

	notifier *observer.Notifier[SimEvent]

	valueStore map[any]any
}

// Init allocates the event queue and resets the clock and the counters. It
// moves the simulation from the Created to the Initialized state and fires
// the Init notification.
func (s *Simulation) Init() {
	if s.queueFactory == nil {
		log.Panic("no event queue factory configured")
	}

	queue := s.queueFactory()
	if queue == nil {
		log.Panic("event queue factory returned no queue")
	}

	s.advanceState(StateCreated, StateInitialized, "Init")

	s.queue = queue
	s.writeNow(0)

	s.countLock.Lock()
	s.eventCounter = math.MinInt64
	s.numAppEvents = 0
	s.numDispatched = 0
	s.countLock.Unlock()

	s.fire(SimEvent{Kind: KindInit, Sim: s})
}

// Run dispatches events in (time, priority, sequence number) order until no
// application events remain, the horizon is reached, or End is called. It
// returns the first error an action returns, leaving the clock and the
// queue as of the failing dispatch; the simulation then stays in the
// Running state for diagnosis.
func (s *Simulation) Run() error {
	s.advanceState(StateInitialized, StateRunning, "Run")

	s.beforeRun()

	s.writeContinue(s.PendingAppEvents() > 0)

	for s.readContinue() {
		evt := s.queue.Extract()

		now := s.readNow()
		if evt.time < now {
			log.Panicf(
				"cannot dispatch an event in the past, event at %.10f, now %.10f",
				float64(evt.time), float64(now),
			)
		}
		s.writeNow(evt.time)

		s.countLock.Lock()
		s.numDispatched++
		s.countLock.Unlock()

		if err := evt.action(); err != nil {
			return fmt.Errorf("event at %.10f: %w", float64(evt.time), err)
		}

		if evt.appEvent {
			s.countLock.Lock()
			s.numAppEvents--
			remaining := s.numAppEvents
			s.countLock.Unlock()

			if remaining < 0 {
				log.Panic("negative pending application event count")
			}

			if remaining == 0 {
				s.writeContinue(false)
			}
		}
	}

	s.afterRun()

	return nil
}

// beforeRun turns a finite horizon into an ordinary event. The event carries
// the lowest priority so that, on a tie, user events at the horizon still
// dispatch before the forced termination.
func (s *Simulation) beforeRun() {
	if s.simulationLength > 0 {
		s.Schedule(NewEvent(s.simulationLength, PrioLowest, func() error {
			s.End()
			return nil
		}))
	}

	s.fire(SimEvent{Kind: KindStart, Sim: s})
}

func (s *Simulation) afterRun() {
	s.advanceState(StateRunning, StateEnded, "finish")

	s.fire(SimEvent{Kind: KindEnd, Sim: s})
}

// Done completes the lifecycle and fires the Done notification. Listeners
// that collect results read final state here.
func (s *Simulation) Done() {
	s.advanceState(StateEnded, StateDone, "Done")

	s.fire(SimEvent{Kind: KindDone, Sim: s})
}

// End requests cooperative termination. The run stops after the in-flight
// action returns; an action is never preempted. End may be called from
// event actions and from other goroutines.
func (s *Simulation) End() {
	s.writeContinue(false)
}

// Schedule assigns evt the next sequence number and inserts it into the
// event queue. Events may be scheduled after Init to seed initial work, and
// from inside actions while the simulation runs. An event can only be
// scheduled once.
func (s *Simulation) Schedule(evt *Event) {
	state := s.State()
	if state != StateInitialized && state != StateRunning {
		log.Panicf("cannot schedule an event in the %s state", state)
	}

	if evt.scheduled {
		log.Panic("event is already scheduled")
	}
	evt.scheduled = true

	now := s.readNow()
	if evt.time < now {
		log.Panicf(
			"scheduling an event earlier than current time, event at %.10f, now %.10f",
			float64(evt.time), float64(now),
		)
	}

	s.countLock.Lock()
	evt.seqNum = s.eventCounter
	s.eventCounter++
	if evt.appEvent {
		s.numAppEvents++
	}
	s.countLock.Unlock()

	s.queue.Insert(evt)
}

// ProduceResults stores the final clock value under "simTime" and fires the
// CollectResults notification carrying results, so that every listener can
// contribute entries before the call returns. The simulation keeps no
// reference to the map afterwards.
func (s *Simulation) ProduceResults(results map[string]any) {
	results["simTime"] = s.Now()

	s.fire(SimEvent{Kind: KindCollectResults, Sim: s, Results: results})
}

// Print fires a print notification of the given category. Without listeners
// the call has no effect.
func (s *Simulation) Print(category MsgCategory, message string) {
	if s.NumListeners() == 0 {
		return
	}

	s.fire(SimEvent{
		Kind:     KindPrint,
		Sim:      s,
		Category: category,
		Message:  message,
	})
}

// Printf formats its arguments and fires the result as a print notification.
func (s *Simulation) Printf(category MsgCategory, format string, args ...any) {
	if s.NumListeners() == 0 {
		return
	}

	s.Print(category, fmt.Sprintf(format, args...))
}

// ValueStorePut stores value under key in the simulation's extension store.
// Collaborators use the store to stash per-run data without the simulation
// knowing their types.
func (s *Simulation) ValueStorePut(key, value any) {
	if s.valueStore == nil {
		s.valueStore = make(map[any]any)
	}

	s.valueStore[key] = value
}

// ValueStoreGet returns the value stored under key. The second return value
// reports whether the key is present.
func (s *Simulation) ValueStoreGet(key any) (any, bool) {
	if s.valueStore == nil {
		return nil, false
	}

	value, ok := s.valueStore[key]

	return value, ok
}

// AddListener registers l to receive lifecycle, result-collection, and
// print notifications.
func (s *Simulation) AddListener(l observer.Listener[SimEvent]) {
	if s.notifier == nil {
		s.notifier = observer.NewNotifier[SimEvent]()
	}

	s.notifier.AddListener(l)
}

// RemoveListener removes l and reports whether it was registered.
func (s *Simulation) RemoveListener(l observer.Listener[SimEvent]) bool {
	if s.notifier == nil {
		return false
	}

	return s.notifier.RemoveListener(l)
}

// NumListeners returns the number of registered listeners.
func (s *Simulation) NumListeners() int {
	if s.notifier == nil {
		return 0
	}

	return s.notifier.NumListeners()
}

func (s *Simulation) fire(evt SimEvent) {
	if s.notifier == nil {
		return
	}

	s.notifier.Fire(evt)
}

// ID returns the unique ID of this run.
func (s *Simulation) ID() string {
	return s.id
}

// Name returns the human-readable label of the simulation. The name has no
// effect on scheduling.
func (s *Simulation) Name() string {
	return s.name
}

// Now returns the current simulation time. The clock only advances when an
// event is dispatched, to that event's time, and never changes mid-action.
func (s *Simulation) Now() VTimeInSec {
	return s.readNow()
}

// State returns the lifecycle state of the simulation.
func (s *Simulation) State() State {
	s.stateLock.RLock()
	state := s.state
	s.stateLock.RUnlock()

	return state
}

// SimulationLength returns the configured horizon. Zero means unbounded.
func (s *Simulation) SimulationLength() VTimeInSec {
	return s.simulationLength
}

// RandomFactory returns the random stream factory configured for this run,
// or nil if none was configured.
func (s *Simulation) RandomFactory() *random.Factory {
	return s.randFactory
}

// PendingEvents returns the number of scheduled-but-undispatched events,
// bookkeeping events included.
func (s *Simulation) PendingEvents() int {
	if s.queue == nil {
		return 0
	}

	return s.queue.Len()
}

// PendingAppEvents returns the number of scheduled-but-undispatched
// application events.
func (s *Simulation) PendingAppEvents() int {
	s.countLock.RLock()
	n := s.numAppEvents
	s.countLock.RUnlock()

	return n
}

// EventCount returns the number of events dispatched so far.
func (s *Simulation) EventCount() int64 {
	s.countLock.RLock()
	n := s.numDispatched
	s.countLock.RUnlock()

	return n
}

func (s *Simulation) advanceState(from, to State, op string) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	if s.state != from {
		log.Panicf("cannot %s a simulation in the %s state", op, s.state)
	}

	s.state = to
}

func (s *Simulation) readNow() VTimeInSec {
	s.timeLock.RLock()
	t := s.time
	s.timeLock.RUnlock()

	return t
}

func (s *Simulation) writeNow(t VTimeInSec) {
	s.timeLock.Lock()
	s.time = t
	s.timeLock.Unlock()
}

func (s *Simulation) readContinue() bool {
	s.continueLock.RLock()
	c := s.continueSim
	s.continueLock.RUnlock()

	return c
}

func (s *Simulation) writeContinue(c bool) {
	s.continueLock.Lock()
	s.continueSim = c
	s.continueLock.Unlock()
}
