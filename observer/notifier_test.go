package observer

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type appendListener struct {
	name string
	log  *[]string
}

func (l *appendListener) Notify(evt string) {
	*l.log = append(*l.log, l.name+":"+evt)
}

var _ = Describe("Notifier", func() {
	var (
		notifier *Notifier[string]
		log      []string
	)

	BeforeEach(func() {
		notifier = NewNotifier[string]()
		log = nil
	})

	It("should deliver to listeners in registration order", func() {
		notifier.AddListener(&appendListener{name: "a", log: &log})
		notifier.AddListener(&appendListener{name: "b", log: &log})

		notifier.Fire("x")

		Expect(log).To(Equal([]string{"a:x", "b:x"}))
	})

	It("should not deliver to removed listeners", func() {
		a := &appendListener{name: "a", log: &log}
		b := &appendListener{name: "b", log: &log}
		notifier.AddListener(a)
		notifier.AddListener(b)

		Expect(notifier.RemoveListener(a)).To(BeTrue())
		notifier.Fire("x")

		Expect(log).To(Equal([]string{"b:x"}))
		Expect(notifier.NumListeners()).To(Equal(1))
	})

	It("should report removal of an unknown listener", func() {
		unknown := &appendListener{name: "u", log: &log}

		Expect(notifier.RemoveListener(unknown)).To(BeFalse())
	})

	It("should defer a removal during delivery to the next fire", func() {
		var self Listener[string]
		self = Func(func(evt string) {
			log = append(log, "self:"+evt)
			notifier.RemoveListener(self)
		})

		notifier.AddListener(self)
		notifier.AddListener(&appendListener{name: "after", log: &log})

		notifier.Fire("x")
		notifier.Fire("y")

		Expect(log).To(Equal([]string{"self:x", "after:x", "after:y"}))
	})

	It("should defer an addition during delivery to the next fire", func() {
		late := &appendListener{name: "late", log: &log}
		notifier.AddListener(Func(func(evt string) {
			log = append(log, "first:"+evt)
			if evt == "x" {
				notifier.AddListener(late)
			}
		}))

		notifier.Fire("x")
		notifier.Fire("y")

		Expect(log).To(Equal([]string{"first:x", "first:y", "late:y"}))
	})

	It("should allow removing a Func listener by its returned value", func() {
		l := Func(func(evt string) { log = append(log, evt) })
		notifier.AddListener(l)

		Expect(notifier.RemoveListener(l)).To(BeTrue())
		notifier.Fire("x")

		Expect(log).To(BeEmpty())
	})

	It("should do nothing when firing with no listeners", func() {
		Expect(func() { notifier.Fire("x") }).NotTo(Panic())
		Expect(notifier.NumListeners()).To(Equal(0))
	})
})
