package tlb

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
	"go.uber.org/mock/gomock"
)

func validEntry(frame int) vm.PageTableEntry {
	return vm.PageTableEntry{Frame: frame, Valid: true}
}

var _ = Describe("TLB", func() {
	var (
		mockCtrl    *gomock.Controller
		invalidator *MockInvalidator
		tlb         *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		invalidator = NewMockInvalidator(mockCtrl)

		tlb = MakeBuilder().
			WithCapacity(3).
			WithEvictionInvalidator(invalidator).
			Build("TLB")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should build with the default capacity", func() {
		t := MakeBuilder().Build("Default")

		Expect(t.Capacity()).To(Equal(DefaultCapacity))
		Expect(t.Name()).To(Equal("Default"))
		Expect(t.InvalidatesOnEvict()).To(BeFalse())
		Expect(tlb.InvalidatesOnEvict()).To(BeTrue())
	})

	It("should panic on non-positive capacity", func() {
		Expect(func() { MakeBuilder().WithCapacity(0).Build("TLB") }).
			To(Panic())
	})

	It("should miss on an empty TLB", func() {
		_, hit := tlb.Lookup(1)

		Expect(hit).To(BeFalse())
	})

	It("should hit after insertion", func() {
		tlb.Insert(4, validEntry(2))

		entry, hit := tlb.Lookup(4)

		Expect(hit).To(BeTrue())
		Expect(entry).To(Equal(validEntry(2)))
	})

	It("should not reorder on hit", func() {
		tlb.Insert(1, validEntry(0))
		tlb.Insert(2, validEntry(1))

		_, hit := tlb.Lookup(1)
		Expect(hit).To(BeTrue())

		Expect(tlb.Pages()).To(Equal([]vm.PageIndex{1, 2}))
	})

	It("should evict the earliest inserted entry when full", func() {
		for i := 0; i < 3; i++ {
			tlb.Insert(vm.PageIndex(10+i), validEntry(i))
		}

		invalidator.EXPECT().Invalidate(vm.PageIndex(10))

		tlb.Insert(13, validEntry(3))

		Expect(tlb.Len()).To(Equal(3))
		Expect(tlb.Pages()).To(Equal([]vm.PageIndex{11, 12, 13}))

		_, hit := tlb.Lookup(10)
		Expect(hit).To(BeFalse())
	})

	It("should never exceed its capacity", func() {
		invalidator.EXPECT().Invalidate(gomock.Any()).AnyTimes()

		for i := 0; i < 50; i++ {
			tlb.Insert(vm.PageIndex(i), validEntry(i))
			Expect(tlb.Len()).To(BeNumerically("<=", tlb.Capacity()))
		}

		Expect(tlb.Pages()).To(Equal([]vm.PageIndex{47, 48, 49}))
	})

	It("should not serve invalidated entries", func() {
		tlb.Insert(6, validEntry(1))

		tlb.PageInvalidated(6)

		_, hit := tlb.Lookup(6)
		Expect(hit).To(BeFalse())
		Expect(tlb.Len()).To(Equal(1))
	})

	It("should ignore invalidations of absent pages", func() {
		tlb.PageInvalidated(6)

		Expect(tlb.Len()).To(Equal(0))
	})

	It("should evict a stale record of the admitted page when it is the oldest", func() {
		tlb.Insert(1, validEntry(0))
		tlb.Insert(2, validEntry(1))
		tlb.Insert(3, validEntry(2))
		tlb.PageInvalidated(1)

		invalidator.EXPECT().Invalidate(vm.PageIndex(1))

		tlb.Insert(1, validEntry(5))

		Expect(tlb.Len()).To(Equal(3))
		Expect(tlb.Pages()).To(Equal([]vm.PageIndex{2, 3, 1}))

		_, hit := tlb.Lookup(1)
		Expect(hit).To(BeFalse())
	})

	It("should replace a stale record that survives the eviction", func() {
		tlb.Insert(1, validEntry(0))
		tlb.Insert(2, validEntry(1))
		tlb.Insert(3, validEntry(2))
		tlb.PageInvalidated(2)

		invalidator.EXPECT().Invalidate(vm.PageIndex(1))

		tlb.Insert(2, validEntry(5))

		Expect(tlb.Len()).To(Equal(2))
		Expect(tlb.Pages()).To(Equal([]vm.PageIndex{3, 2}))

		entry, hit := tlb.Lookup(2)
		Expect(hit).To(BeTrue())
		Expect(entry.Frame).To(Equal(5))
	})

	It("should replace a stale record without filling up", func() {
		tlb.Insert(1, validEntry(0))
		tlb.Insert(2, validEntry(1))
		tlb.PageInvalidated(1)

		tlb.Insert(1, validEntry(5))

		Expect(tlb.Pages()).To(Equal([]vm.PageIndex{2, 1}))

		entry, hit := tlb.Lookup(1)
		Expect(hit).To(BeTrue())
		Expect(entry.Frame).To(Equal(5))
	})

	It("should serve the admitted page when the evicted stale record is not invalidated", func() {
		t := MakeBuilder().WithCapacity(2).Build("TLB")
		t.Insert(1, validEntry(0))
		t.Insert(2, validEntry(1))
		t.PageInvalidated(1)

		t.Insert(1, validEntry(4))

		Expect(t.Pages()).To(Equal([]vm.PageIndex{2, 1}))

		entry, hit := t.Lookup(1)
		Expect(hit).To(BeTrue())
		Expect(entry.Frame).To(Equal(4))
	})

	It("should not invalidate when the policy is disabled", func() {
		t := MakeBuilder().WithCapacity(1).Build("TLB")

		t.Insert(1, validEntry(0))
		t.Insert(2, validEntry(1))

		Expect(t.Pages()).To(Equal([]vm.PageIndex{2}))
	})

	It("should invoke hooks on eviction", func() {
		var ctxs []sim.HookCtx
		tlb.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
			ctxs = append(ctxs, ctx)
		}))
		invalidator.EXPECT().Invalidate(vm.PageIndex(0))

		for i := 0; i < 4; i++ {
			tlb.Insert(vm.PageIndex(i), validEntry(i))
		}

		Expect(ctxs).To(HaveLen(1))
		Expect(ctxs[0].Pos).To(Equal(HookPosEvict))
		Expect(ctxs[0].Item).To(Equal(vm.PageIndex(0)))
		Expect(ctxs[0].Detail).To(Equal(vm.PageIndex(3)))
	})

	Context("with a mocked set", func() {
		var set *MockSet

		BeforeEach(func() {
			set = NewMockSet(mockCtrl)
			tlb.set = set
		})

		It("should treat an invalid record as a miss", func() {
			set.EXPECT().
				Lookup(vm.PageIndex(3)).
				Return(internal.Record{Page: 3, Frame: 1, Valid: false}, true)

			_, hit := tlb.Lookup(3)

			Expect(hit).To(BeFalse())
		})

		It("should evict before pushing when full", func() {
			record := internal.Record{Page: 9, Frame: 2, Valid: true}

			gomock.InOrder(
				set.EXPECT().Len().Return(3),
				set.EXPECT().
					Evict().
					Return(internal.Record{Page: 1, Valid: true}, true),
				invalidator.EXPECT().Invalidate(vm.PageIndex(1)),
				set.EXPECT().Remove(vm.PageIndex(9)).Return(false),
				set.EXPECT().Push(record),
			)

			tlb.Insert(9, validEntry(2))
		})
	})
})
