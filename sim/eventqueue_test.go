package sim

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func queueOrderingSpecs(newQueue func() EventQueue) {
	var queue EventQueue

	BeforeEach(func() {
		queue = newQueue()
	})

	It("should extract in time order", func() {
		numEvents := 100
		for i := 0; i < numEvents; i++ {
			queue.Insert(&Event{
				time:   VTimeInSec(rand.Float64() / 1e8),
				seqNum: int64(i),
			})
		}

		now := VTimeInSec(-1)
		for i := 0; i < numEvents; i++ {
			evt := queue.Extract()
			Expect(evt.Time() >= now).To(BeTrue())
			now = evt.Time()
		}

		Expect(queue.Len()).To(Equal(0))
	})

	It("should break time ties by priority", func() {
		casual := &Event{time: 3, priority: 5, seqNum: 1}
		urgent := &Event{time: 3, priority: 1, seqNum: 2}
		queue.Insert(casual)
		queue.Insert(urgent)

		Expect(queue.Extract()).To(BeIdenticalTo(urgent))
		Expect(queue.Extract()).To(BeIdenticalTo(casual))
	})

	It("should break full ties in scheduling order", func() {
		events := make([]*Event, 10)
		for i := range events {
			events[i] = &Event{time: 3, priority: 5, seqNum: int64(i)}
		}

		for _, i := range rand.Perm(len(events)) {
			queue.Insert(events[i])
		}

		for _, want := range events {
			Expect(queue.Extract()).To(BeIdenticalTo(want))
		}
	})

	It("should peek without removing", func() {
		evt := &Event{time: 1}
		queue.Insert(evt)

		Expect(queue.Peek()).To(BeIdenticalTo(evt))
		Expect(queue.Len()).To(Equal(1))
	})

	It("should panic when extracting from an empty queue", func() {
		Expect(func() { queue.Extract() }).To(Panic())
	})

	It("should panic when peeking into an empty queue", func() {
		Expect(func() { queue.Peek() }).To(Panic())
	})
}

var _ = Describe("EventHeap", func() {
	queueOrderingSpecs(func() EventQueue { return NewEventHeap() })
})

var _ = Describe("InsertionQueue", func() {
	queueOrderingSpecs(func() EventQueue { return NewInsertionQueue() })
})
