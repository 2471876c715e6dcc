package sim

import (
	"errors"
	"math"
	"math/rand"

	gomock "go.uber.org/mock/gomock"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gmeasure"

	"github.com/sarchlab/kishu/observer"
	"github.com/sarchlab/kishu/random"
)

var _ = Describe("Simulation", func() {
	var s *Simulation

	nop := func() error { return nil }

	BeforeEach(func() {
		s = MakeBuilder().Build()
	})

	Describe("lifecycle", func() {
		It("should start in the Created state", func() {
			Expect(s.State()).To(Equal(StateCreated))
			Expect(s.Now()).To(Equal(VTimeInSec(0)))
			Expect(s.ID()).NotTo(BeEmpty())
		})

		It("should move through the states in order", func() {
			s.Init()
			Expect(s.State()).To(Equal(StateInitialized))

			s.Schedule(NewEvent(1, PrioNormal, nop))
			Expect(s.Run()).To(Succeed())
			Expect(s.State()).To(Equal(StateEnded))

			s.Done()
			Expect(s.State()).To(Equal(StateDone))
		})

		It("should panic when run before init", func() {
			Expect(func() { _ = s.Run() }).To(Panic())
		})

		It("should panic when initialized twice", func() {
			s.Init()
			Expect(s.Init).To(Panic())
		})

		It("should panic when done before run", func() {
			s.Init()
			Expect(s.Done).To(Panic())
		})

		It("should panic when scheduling before init", func() {
			Expect(func() {
				s.Schedule(NewEvent(1, PrioNormal, nop))
			}).To(Panic())
		})

		It("should panic when scheduling after the run ended", func() {
			s.Init()
			s.Schedule(NewEvent(1, PrioNormal, nop))
			Expect(s.Run()).To(Succeed())

			Expect(func() {
				s.Schedule(NewEvent(2, PrioNormal, nop))
			}).To(Panic())
		})

		It("should fire lifecycle notifications in order", func() {
			var kinds []SimEventKind
			s.AddListener(observer.Func(func(evt SimEvent) {
				kinds = append(kinds, evt.Kind)
			}))

			s.Init()
			s.Schedule(NewEvent(1, PrioNormal, nop))
			Expect(s.Run()).To(Succeed())
			s.Done()

			Expect(kinds).To(Equal([]SimEventKind{
				KindInit, KindStart, KindEnd, KindDone,
			}))
		})
	})

	Describe("dispatching", func() {
		It("should advance the clock in non-decreasing order", func() {
			s.Init()

			var times []VTimeInSec
			record := func() error {
				times = append(times, s.Now())
				return nil
			}
			s.Schedule(NewEvent(3, PrioNormal, record))
			s.Schedule(NewEvent(1, PrioNormal, record))
			s.Schedule(NewEvent(2, PrioNormal, record))

			Expect(s.Run()).To(Succeed())

			Expect(times).To(Equal([]VTimeInSec{1, 2, 3}))
			Expect(s.EventCount()).To(Equal(int64(3)))
		})

		It("should resolve time ties by priority, then scheduling order", func() {
			s.Init()

			var order []string
			visit := func(name string) Action {
				return func() error {
					order = append(order, name)
					return nil
				}
			}
			s.Schedule(NewEvent(3, 5, visit("A")))
			s.Schedule(NewEvent(3, 5, visit("B")))
			s.Schedule(NewEvent(3, 1, visit("C")))

			Expect(s.Run()).To(Succeed())

			Expect(order).To(Equal([]string{"C", "A", "B"}))
		})

		It("should terminate right after the last application event", func() {
			s.Init()

			dispatched := 0
			s.Schedule(NewEvent(1, PrioNormal, func() error {
				dispatched++
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(dispatched).To(Equal(1))
			Expect(s.PendingAppEvents()).To(Equal(0))
		})

		It("should dispatch events scheduled at the current time before exiting", func() {
			s.Init()

			var order []string
			s.Schedule(NewEvent(5, PrioNormal, func() error {
				order = append(order, "first")
				s.Schedule(NewEvent(s.Now(), PrioNormal, func() error {
					order = append(order, "second")
					return nil
				}))
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(order).To(Equal([]string{"first", "second"}))
			Expect(s.Now()).To(Equal(VTimeInSec(5)))
		})

		It("should not keep running for internal events alone", func() {
			s.Init()

			sampled := false
			s.Schedule(NewInternalEvent(1, PrioNormal, func() error {
				sampled = true
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(sampled).To(BeFalse())
			Expect(s.Now()).To(Equal(VTimeInSec(0)))
		})

		It("should dispatch internal events that precede application work", func() {
			s.Init()

			var order []string
			s.Schedule(NewInternalEvent(1, PrioNormal, func() error {
				order = append(order, "internal")
				return nil
			}))
			s.Schedule(NewEvent(2, PrioNormal, func() error {
				order = append(order, "app")
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(order).To(Equal([]string{"internal", "app"}))
		})

		It("should stop after the in-flight action when End is called", func() {
			s.Init()

			var order []string
			s.Schedule(NewEvent(1, PrioNormal, func() error {
				s.End()
				order = append(order, "stopping")
				return nil
			}))
			s.Schedule(NewEvent(2, PrioNormal, func() error {
				order = append(order, "late")
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(order).To(Equal([]string{"stopping"}))
			Expect(s.PendingEvents()).To(Equal(1))
		})

		It("should assign sequence numbers from the smallest representable value", func() {
			s.Init()

			first := NewEvent(1, PrioNormal, nop)
			second := NewEvent(1, PrioNormal, nop)
			s.Schedule(first)
			s.Schedule(second)

			Expect(first.SeqNum()).To(Equal(int64(math.MinInt64)))
			Expect(second.SeqNum()).To(Equal(int64(math.MinInt64 + 1)))
		})

		It("should refuse to schedule the same event twice", func() {
			s.Init()

			evt := NewEvent(1, PrioNormal, nop)
			s.Schedule(evt)

			Expect(func() { s.Schedule(evt) }).To(Panic())
		})

		It("should panic when an action schedules an event in the past", func() {
			s.Init()

			s.Schedule(NewEvent(5, PrioNormal, func() error {
				Expect(func() {
					s.Schedule(NewEvent(4, PrioNormal, nop))
				}).To(Panic())
				return nil
			}))

			Expect(s.Run()).To(Succeed())
		})
	})

	Describe("horizon", func() {
		BeforeEach(func() {
			s = MakeBuilder().WithSimulationLength(10).Build()
		})

		It("should advance an otherwise idle run to the horizon", func() {
			s.Init()

			Expect(s.Run()).To(Succeed())

			Expect(s.Now()).To(Equal(VTimeInSec(10)))
			Expect(s.State()).To(Equal(StateEnded))
		})

		It("should dispatch user events at the horizon before the forced end", func() {
			s.Init()

			var order []string
			s.Schedule(NewEvent(10, PrioNormal, func() error {
				order = append(order, "user")
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(order).To(Equal([]string{"user"}))
			Expect(s.Now()).To(Equal(VTimeInSec(10)))
		})

		It("should drop events beyond the horizon", func() {
			s.Init()

			beyond := false
			s.Schedule(NewEvent(100, PrioNormal, func() error {
				beyond = true
				return nil
			}))

			Expect(s.Run()).To(Succeed())

			Expect(beyond).To(BeFalse())
			Expect(s.Now()).To(Equal(VTimeInSec(10)))
		})
	})

	Describe("model errors", func() {
		It("should propagate an action error with the failing state preserved", func() {
			s.Init()

			modelErr := errors.New("station overflow")
			s.Schedule(NewEvent(1, PrioNormal, nop))
			s.Schedule(NewEvent(2, PrioNormal, func() error { return modelErr }))
			s.Schedule(NewEvent(3, PrioNormal, nop))

			err := s.Run()

			Expect(err).To(MatchError(modelErr))
			Expect(s.Now()).To(Equal(VTimeInSec(2)))
			Expect(s.PendingEvents()).To(Equal(1))
			Expect(s.State()).To(Equal(StateRunning))
		})
	})

	Describe("results", func() {
		It("should record the final time and collect listener entries", func() {
			s.AddListener(observer.Func(func(evt SimEvent) {
				if evt.Kind == KindCollectResults {
					evt.Results["count"] = 42
				}
			}))

			s.Init()
			s.Schedule(NewEvent(2, PrioNormal, nop))
			Expect(s.Run()).To(Succeed())
			s.Done()

			results := map[string]any{}
			s.ProduceResults(results)

			Expect(results).To(HaveKeyWithValue("simTime", VTimeInSec(2)))
			Expect(results).To(HaveKeyWithValue("count", 42))
		})
	})

	Describe("printing", func() {
		It("should do nothing without listeners", func() {
			s.Init()
			Expect(func() {
				s.Print(CategoryInfo, "nobody is listening")
			}).NotTo(Panic())
		})

		It("should deliver print notifications to listeners", func() {
			var got []SimEvent
			s.AddListener(observer.Func(func(evt SimEvent) {
				if evt.Kind == KindPrint {
					got = append(got, evt)
				}
			}))

			s.Init()
			s.Printf(CategoryWarn, "utilization at %d%%", 80)

			Expect(got).To(HaveLen(1))
			Expect(got[0].Category).To(Equal(CategoryWarn))
			Expect(got[0].Message).To(Equal("utilization at 80%"))
		})
	})

	Describe("value store", func() {
		It("should report absence for keys never stored", func() {
			_, ok := s.ValueStoreGet("missing")
			Expect(ok).To(BeFalse())
		})

		It("should round-trip stored values", func() {
			s.ValueStorePut("k", 7)

			v, ok := s.ValueStoreGet("k")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(7))
		})

		It("should not allocate the store before the first put", func() {
			Expect(s.valueStore).To(BeNil())

			_, _ = s.ValueStoreGet("k")
			Expect(s.valueStore).To(BeNil())

			s.ValueStorePut("k", 1)
			Expect(s.valueStore).NotTo(BeNil())
		})
	})

	Describe("listeners", func() {
		It("should report removal of registered listeners", func() {
			l := observer.Func(func(SimEvent) {})

			Expect(s.RemoveListener(l)).To(BeFalse())

			s.AddListener(l)
			Expect(s.NumListeners()).To(Equal(1))

			Expect(s.RemoveListener(l)).To(BeTrue())
			Expect(s.NumListeners()).To(Equal(0))
		})
	})

	Describe("queue selection", func() {
		var mockCtrl *gomock.Controller

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should dispatch through the queue the factory provides", func() {
			queue := NewMockEventQueue(mockCtrl)
			s := MakeBuilder().
				WithQueueFactory(func() EventQueue { return queue }).
				Build()

			evt := NewEvent(1, PrioNormal, nop)

			queue.EXPECT().Insert(evt)
			queue.EXPECT().Extract().Return(evt)

			s.Init()
			s.Schedule(evt)
			Expect(s.Run()).To(Succeed())
		})

		It("should panic when the factory returns no queue", func() {
			s := MakeBuilder().
				WithQueueFactory(func() EventQueue { return nil }).
				Build()

			Expect(s.Init).To(Panic())
		})
	})

	Describe("reproducibility", func() {
		It("should reproduce the clock trajectory for identical runs", func() {
			runOnce := func() []VTimeInSec {
				factory := random.NewFactory(42, random.SeedDerived)
				arrivals, err := factory.CreateStream("arrivals",
					random.StreamSpec{Kind: random.Exponential, Mean: 2})
				Expect(err).NotTo(HaveOccurred())

				run := MakeBuilder().WithRandomFactory(factory).Build()
				run.Init()

				var trace []VTimeInSec
				var arrive Action
				arrive = func() error {
					trace = append(trace, run.Now())
					if len(trace) < 50 {
						next := run.Now() + VTimeInSec(arrivals.Next())
						run.Schedule(NewEvent(next, PrioNormal, arrive))
					}
					return nil
				}
				run.Schedule(NewEvent(VTimeInSec(arrivals.Next()), PrioNormal, arrive))

				Expect(run.Run()).To(Succeed())
				return trace
			}

			Expect(runOnce()).To(Equal(runOnce()))
		})
	})

	It("measures dispatch throughput", func() {
		experiment := gmeasure.NewExperiment("Event Dispatch Throughput")
		AddReportEntry(experiment.Name, experiment)

		experiment.MeasureDuration("dispatch 100k events", func() {
			run := MakeBuilder().Build()
			run.Init()

			for i := 0; i < 100000; i++ {
				t := VTimeInSec(float64(rand.Uint64()%1000) * 0.001)
				run.Schedule(NewEvent(t, PrioNormal, nop))
			}

			Expect(run.Run()).To(Succeed())
		})
	})
})
