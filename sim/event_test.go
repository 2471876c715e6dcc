package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event", func() {
	nop := func() error { return nil }

	It("should order events by time first", func() {
		early := &Event{time: 1, priority: PrioLowest, seqNum: 9}
		late := &Event{time: 2, priority: PrioHighest, seqNum: 1}

		Expect(early.Before(late)).To(BeTrue())
		Expect(late.Before(early)).To(BeFalse())
	})

	It("should order same-time events by priority", func() {
		urgent := &Event{time: 3, priority: 1, seqNum: 9}
		casual := &Event{time: 3, priority: 5, seqNum: 1}

		Expect(urgent.Before(casual)).To(BeTrue())
		Expect(casual.Before(urgent)).To(BeFalse())
	})

	It("should order fully tied events by sequence number", func() {
		first := &Event{time: 3, priority: 5, seqNum: 1}
		second := &Event{time: 3, priority: 5, seqNum: 2}

		Expect(first.Before(second)).To(BeTrue())
		Expect(second.Before(first)).To(BeFalse())
	})

	It("should mark events from NewEvent as application events", func() {
		evt := NewEvent(1, PrioNormal, nop)

		Expect(evt.IsAppEvent()).To(BeTrue())
		Expect(evt.Time()).To(Equal(VTimeInSec(1)))
		Expect(evt.Priority()).To(Equal(PrioNormal))
	})

	It("should mark events from NewInternalEvent as bookkeeping events", func() {
		evt := NewInternalEvent(1, PrioNormal, nop)

		Expect(evt.IsAppEvent()).To(BeFalse())
	})

	It("should panic on a nil action", func() {
		Expect(func() { NewEvent(1, PrioNormal, nil) }).To(Panic())
	})
})
