package vm

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/vmsim/sim"
)

var _ = Describe("Config", func() {
	It("should default to the 1 KB, 8 pages, 4 frames machine", func() {
		c := DefaultConfig()

		Expect(c.Validate()).To(Succeed())
		Expect(c.MaxAddress()).To(Equal(uint64(8191)))
		Expect(c.String()).To(Equal("page size 1024, 8 pages, 4 frames"))
	})

	DescribeTable("should reject invalid configurations",
		func(c Config) {
			Expect(c.Validate()).To(MatchError(ErrInvalidConfig))
		},
		Entry("zero page size", Config{PageSize: 0, NumPages: 8, NumFrames: 4}),
		Entry("zero pages", Config{PageSize: 1024, NumPages: 0, NumFrames: 4}),
		Entry("zero frames", Config{PageSize: 1024, NumPages: 8, NumFrames: 0}),
		Entry("overflowing pages",
			Config{PageSize: 1 << 40, NumPages: 1 << 30, NumFrames: 1}),
		Entry("overflowing frames",
			Config{PageSize: 1 << 40, NumPages: 1, NumFrames: math.MaxUint32}),
	)
})

var _ = Describe("Builder", func() {
	It("should build with defaults", func() {
		t := MakeBuilder().Build("VM")

		Expect(t.Name()).To(Equal("VM"))
		Expect(t.Config()).To(Equal(DefaultConfig()))
		Expect(t.NumHooks()).To(BeZero())
	})

	It("should build with the given geometry", func() {
		t := MakeBuilder().
			WithConfig(Config{PageSize: 4096, NumPages: 16, NumFrames: 2}).
			WithNumFrames(3).
			Build("VM")

		Expect(t.Config()).To(Equal(
			Config{PageSize: 4096, NumPages: 16, NumFrames: 3}))
		Expect(t.Snapshot().FrameTable).To(HaveLen(3))
	})

	It("should panic on an invalid geometry", func() {
		Expect(func() {
			MakeBuilder().WithPageSize(0).Build("VM")
		}).To(Panic())
	})

	It("should return an error from NewTranslator", func() {
		_, err := NewTranslator("VM", Config{})

		Expect(err).To(MatchError(ErrInvalidConfig))
	})

	It("should not share hooks between builders", func() {
		base := MakeBuilder().WithHook(sim.HookFunc(func(sim.HookCtx) {}))
		a := base.WithHook(sim.HookFunc(func(sim.HookCtx) {}))
		b := base.WithHook(sim.HookFunc(func(sim.HookCtx) {}))

		Expect(a.Build("A").NumHooks()).To(Equal(2))
		Expect(b.Build("B").NumHooks()).To(Equal(2))
		Expect(base.Build("Base").NumHooks()).To(Equal(1))
	})

	It("should use the given ID generator", func() {
		t := MakeBuilder().
			WithIDGenerator(sim.NewParallelIDGenerator()).
			Build("VM")

		a, _ := t.Translate(0)
		b, _ := t.Translate(0)

		Expect(a.ID).To(HaveLen(20))
		Expect(a.ID).NotTo(Equal(b.ID))
	})

	It("should keep independent translators apart", func() {
		a := MakeBuilder().Build("A")
		b := MakeBuilder().Build("B")

		_, _ = a.Translate(0)

		Expect(a.NextFreeFrame()).To(Equal(uint64(1)))
		Expect(b.NextFreeFrame()).To(BeZero())
		Expect(b.History()).To(BeEmpty())
	})
})
