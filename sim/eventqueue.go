package sim

import (
	"container/heap"
	"container/list"
	"log"
	"sync"
)

// EventQueue is a queue of events ordered by the (time, priority, sequence
// number) key. Extract and Peek panic on an empty queue; the simulation's
// own bookkeeping prevents that from happening during a run.
type EventQueue interface {
	Insert(evt *Event)
	Extract() *Event
	Len() int
	Peek() *Event
}

// A QueueFactory creates the event queue a simulation dispatches from. The
// factory is resolved once, when the simulation initializes.
type QueueFactory func() EventQueue

// EventHeap is the default EventQueue implementation, a binary min-heap. It
// is safe for concurrent use.
type EventHeap struct {
	sync.Mutex
	events eventHeap
}

// NewEventHeap creates and returns a new EventHeap.
func NewEventHeap() *EventHeap {
	q := new(EventHeap)
	q.events = make([]*Event, 0)
	heap.Init(&q.events)

	return q
}

// Insert adds an event to the queue.
func (q *EventHeap) Insert(evt *Event) {
	q.Lock()
	heap.Push(&q.events, evt)
	q.Unlock()
}

// Extract removes and returns the event with the smallest key.
func (q *EventHeap) Extract() *Event {
	q.Lock()
	if len(q.events) == 0 {
		q.Unlock()
		log.Panic("extracting from an empty event queue")
	}

	evt := heap.Pop(&q.events).(*Event)
	q.Unlock()

	return evt
}

// Len returns the number of events in the queue.
func (q *EventHeap) Len() int {
	q.Lock()
	l := q.events.Len()
	q.Unlock()

	return l
}

// Peek returns the event with the smallest key without removing it from the
// queue.
func (q *EventHeap) Peek() *Event {
	q.Lock()
	if len(q.events) == 0 {
		q.Unlock()
		log.Panic("peeking into an empty event queue")
	}

	evt := q.events[0]
	q.Unlock()

	return evt
}

type eventHeap []*Event

// Len returns the length of the event queue.
func (h eventHeap) Len() int {
	return len(h)
}

// Less determines the order between two events.
func (h eventHeap) Less(i, j int) bool {
	return h[i].Before(h[j])
}

// Swap changes the position of two events in the event queue.
func (h eventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

// Push adds an event into the event queue.
func (h *eventHeap) Push(x any) {
	event := x.(*Event)
	*h = append(*h, event)
}

// Pop removes and returns the next event to happen.
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	event := old[n-1]
	*h = old[0 : n-1]

	return event
}

// InsertionQueue is an EventQueue that is based on insertion sort.
type InsertionQueue struct {
	lock sync.RWMutex
	l    *list.List
}

// NewInsertionQueue returns a new InsertionQueue.
func NewInsertionQueue() *InsertionQueue {
	q := new(InsertionQueue)
	q.l = list.New()

	return q
}

// Insert adds an event to the queue, keeping the list sorted. Events with
// equal keys stay in insertion order.
func (q *InsertionQueue) Insert(evt *Event) {
	var ele *list.Element

	q.lock.RLock()
	for ele = q.l.Front(); ele != nil; ele = ele.Next() {
		if evt.Before(ele.Value.(*Event)) {
			break
		}
	}
	q.lock.RUnlock()

	q.lock.Lock()
	if ele != nil {
		q.l.InsertBefore(evt, ele)
	} else {
		q.l.PushBack(evt)
	}
	q.lock.Unlock()
}

// Extract returns the event with the smallest key, and removes it from the
// queue.
func (q *InsertionQueue) Extract() *Event {
	q.lock.Lock()
	front := q.l.Front()
	if front == nil {
		q.lock.Unlock()
		log.Panic("extracting from an empty event queue")
	}

	evt := q.l.Remove(front)
	q.lock.Unlock()

	return evt.(*Event)
}

// Len returns the number of events in the queue.
func (q *InsertionQueue) Len() int {
	q.lock.RLock()
	l := q.l.Len()
	q.lock.RUnlock()

	return l
}

// Peek returns the event at the front of the queue without removing it from
// the queue.
func (q *InsertionQueue) Peek() *Event {
	q.lock.RLock()
	front := q.l.Front()
	if front == nil {
		q.lock.RUnlock()
		log.Panic("peeking into an empty event queue")
	}

	evt := front.Value.(*Event)
	q.lock.RUnlock()

	return evt
}
