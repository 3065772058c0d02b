package sim

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/graphsim/internal/config"
	"github.com/san-kum/graphsim/internal/graph"
)

var _ = Describe("Manager lifecycle", func() {
	var (
		sched *StepScheduler
		m     *Manager
		rec   *recorder
		g     *graph.Graph
	)

	BeforeEach(func() {
		sched = NewStepScheduler()
		m = New(sched)
		rec = &recorder{}
		m.AddObserver(rec)
		g = graph.Chain(4)
	})

	AfterEach(func() {
		m.Close()
	})

	It("starts idle", func() {
		Expect(m.State()).To(Equal(Idle))
		Expect(m.Nodes()).To(BeEmpty())
	})

	DescribeTable("rejected transitions leave the state unchanged",
		func(setup func(), action func(), want State) {
			setup()
			flushes := len(rec.flushes)
			action()
			Expect(m.State()).To(Equal(want))
			Expect(rec.flushes).To(HaveLen(flushes))
		},
		Entry("pause while idle", func() {}, func() { m.Pause() }, Idle),
		Entry("resume while idle", func() {}, func() { m.Resume() }, Idle),
		Entry("stop while idle", func() {}, func() { m.Stop() }, Idle),
		Entry("pause while paused",
			func() { m.Start(g.Nodes, g.Edges, config.DefaultSimulation()); m.Pause() },
			func() { m.Pause() }, Paused),
		Entry("resume while running",
			func() { m.Start(g.Nodes, g.Edges, config.DefaultSimulation()) },
			func() { m.Resume() }, Running),
	)

	Context("when running", func() {
		BeforeEach(func() {
			m.Start(g.Nodes, g.Edges, config.DefaultSimulation())
		})

		It("pauses with an immediate flush", func() {
			sched.Drain(10)
			m.Pause()
			Expect(m.State()).To(Equal(Paused))
			Expect(sched.Pending()).To(BeFalse())
			Expect(rec.flushes).To(HaveLen(1))
			Expect(rec.flushes[0].Positions()).To(Equal(m.Positions()))
		})

		It("resumes at a moderate alpha", func() {
			m.Pause()
			m.Resume()
			Expect(m.State()).To(Equal(Running))
			Expect(m.Alpha()).To(Equal(AlphaResume))
			Expect(sched.Pending()).To(BeTrue())
		})

		It("stops but keeps the working set", func() {
			m.Stop()
			Expect(m.State()).To(Equal(Idle))
			Expect(m.Nodes()).To(HaveLen(4))
		})

		It("destroys everything", func() {
			m.Destroy()
			Expect(m.State()).To(Equal(Idle))
			Expect(m.Nodes()).To(BeEmpty())
			Expect(sched.Step()).To(BeFalse())
		})

		It("converges exactly once", func() {
			sched.Drain(1000)
			Expect(rec.ends).To(Equal(1))
			Expect(m.State()).To(Equal(Running))
			Expect(m.Ticking()).To(BeFalse())
		})
	})

	Context("with a real frame clock", func() {
		It("ticks until destroyed and then stays silent", func() {
			frames := NewFrameScheduler(time.Millisecond)
			live := New(frames)
			counter := &recorder{}
			live.AddObserver(counter)

			live.Start(g.Nodes, g.Edges, config.DefaultSimulation())
			Eventually(func() int { return live.TickCount() }).Should(BeNumerically(">", 3))

			live.Destroy()
			counter.mu.Lock()
			seen := counter.ticks
			counter.mu.Unlock()
			Consistently(func() int {
				counter.mu.Lock()
				defer counter.mu.Unlock()
				return counter.ticks
			}, 30*time.Millisecond).Should(Equal(seen))
		})
	})
})
