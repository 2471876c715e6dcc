// Package observer provides a synchronous publish-subscribe registry.
package observer

// A Listener receives the events a Notifier fires.
//
// Listener values are compared with == when they are removed, so listener
// implementations should use pointer receivers.
type Listener[E any] interface {
	Notify(evt E)
}

// A Notifier delivers events to registered listeners. Delivery is
// synchronous and in registration order, on the goroutine that calls Fire.
type Notifier[E any] struct {
	listeners []Listener[E]
}

// NewNotifier creates a Notifier with no listeners.
func NewNotifier[E any]() *Notifier[E] {
	return &Notifier[E]{}
}

// AddListener registers a listener. A listener added while a Fire call is in
// flight receives events from the next Fire call on.
func (n *Notifier[E]) AddListener(l Listener[E]) {
	n.listeners = append(n.listeners, l)
}

// RemoveListener removes the first listener that equals l and reports
// whether one was found. A removal during a Fire call takes effect for the
// next Fire call.
func (n *Notifier[E]) RemoveListener(l Listener[E]) bool {
	for i, registered := range n.listeners {
		if registered == l {
			remaining := make([]Listener[E], 0, len(n.listeners)-1)
			remaining = append(remaining, n.listeners[:i]...)
			remaining = append(remaining, n.listeners[i+1:]...)
			n.listeners = remaining

			return true
		}
	}

	return false
}

// NumListeners returns the number of registered listeners.
func (n *Notifier[E]) NumListeners() int {
	return len(n.listeners)
}

// Fire delivers evt to every registered listener in registration order. Each
// listener sees the same event value. Fire iterates over a snapshot of the
// registration list, so listeners may add or remove listeners while being
// notified.
func (n *Notifier[E]) Fire(evt E) {
	snapshot := n.listeners
	for _, l := range snapshot {
		l.Notify(evt)
	}
}

// Func wraps f in a Listener. The returned value is comparable, so it can
// later be removed with RemoveListener.
func Func[E any](f func(E)) Listener[E] {
	return &funcListener[E]{f: f}
}

type funcListener[E any] struct {
	f func(E)
}

func (l *funcListener[E]) Notify(evt E) {
	l.f(evt)
}
