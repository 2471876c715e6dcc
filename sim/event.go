package sim

import (
	"log"
	"math"
)

// VTimeInSec defines the time in the simulated space in the unit of second.
type VTimeInSec float64

// An Action is the work an event performs when it is dispatched. A non-nil
// error aborts the run that dispatched the event.
type Action func() error

// Scheduling priorities for events that share a time. A numerically lower
// priority dispatches first.
const (
	PrioHighest = math.MinInt32
	PrioHigher  = -1000000
	PrioHigh    = -1000
	PrioNormal  = 0
	PrioLow     = 1000
	PrioLower   = 1000000
	PrioLowest  = math.MaxInt32
)

// An Event is a one-shot unit of work scheduled at a point in simulated
// time. An event is immutable once scheduled, except for the sequence number
// the simulation assigns at schedule time, and is dispatched exactly once.
// Recurring behavior creates a fresh event for every occurrence.
type Event struct {
	time      VTimeInSec
	priority  int
	seqNum    int64
	appEvent  bool
	scheduled bool
	action    Action
}

// NewEvent creates an application event. Application events keep the
// simulation alive: a run continues while application events are pending.
func NewEvent(t VTimeInSec, priority int, action Action) *Event {
	if action == nil {
		log.Panic("event action must not be nil")
	}

	return &Event{
		time:     t,
		priority: priority,
		appEvent: true,
		action:   action,
	}
}

// NewInternalEvent creates a bookkeeping event. Internal events dispatch
// like application events but do not keep the simulation alive.
func NewInternalEvent(t VTimeInSec, priority int, action Action) *Event {
	e := NewEvent(t, priority, action)
	e.appEvent = false

	return e
}

// Time returns the time at which the event is going to happen.
func (e *Event) Time() VTimeInSec {
	return e.time
}

// Priority returns the scheduling priority of the event.
func (e *Event) Priority() int {
	return e.priority
}

// SeqNum returns the sequence number the simulation assigned to the event.
// It is only meaningful after the event has been scheduled.
func (e *Event) SeqNum() int64 {
	return e.seqNum
}

// IsAppEvent returns true if the event is an application event.
func (e *Event) IsAppEvent() bool {
	return e.appEvent
}

// Before reports whether e dispatches before other. Events are ordered by
// time, then priority, then sequence number, which makes the dispatch order
// a strict total order even when events share a timestamp.
func (e *Event) Before(other *Event) bool {
	if e.time != other.time {
		return e.time < other.time
	}

	if e.priority != other.priority {
		return e.priority < other.priority
	}

	return e.seqNum < other.seqNum
}
