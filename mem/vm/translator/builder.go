package translator

import (
	"errors"
	"fmt"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frame"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/memory"
	"github.com/sarchlab/vmsim/sim"
)

// DefaultNumFrames is the number of physical frames unless configured
// otherwise.
const DefaultNumFrames = 256

// A Builder can build translators.
type Builder struct {
	numFrames               int
	policy                  frame.Policy
	tlbEnabled              bool
	tlbCapacity             int
	tlbEvictionInvalidation bool
	loader                  vm.PageLoader
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numFrames:               DefaultNumFrames,
		policy:                  frame.PolicyFIFO,
		tlbEnabled:              true,
		tlbCapacity:             tlb.DefaultCapacity,
		tlbEvictionInvalidation: true,
	}
}

// WithNumFrames sets the number of physical frames.
func (b Builder) WithNumFrames(n int) Builder {
	b.numFrames = n
	return b
}

// WithPolicy sets the frame replacement policy.
func (b Builder) WithPolicy(p frame.Policy) Builder {
	b.policy = p
	return b
}

// WithTLBEnabled turns the TLB on or off. When off, every translation walks
// the page table and counts as a TLB miss.
func (b Builder) WithTLBEnabled(enabled bool) Builder {
	b.tlbEnabled = enabled
	return b
}

// WithTLBCapacity sets the number of entries in the TLB.
func (b Builder) WithTLBCapacity(n int) Builder {
	b.tlbCapacity = n
	return b
}

// WithTLBEvictionInvalidation sets whether evicting an entry from the TLB
// also invalidates the page table entry of the evicted page.
func (b Builder) WithTLBEvictionInvalidation(enabled bool) Builder {
	b.tlbEvictionInvalidation = enabled
	return b
}

// WithBackingStore sets where pages are loaded from on page faults.
func (b Builder) WithBackingStore(loader vm.PageLoader) Builder {
	b.loader = loader
	return b
}

// Build creates a translator.
func (b Builder) Build(name string) (*Comp, error) {
	if b.loader == nil {
		return nil, errors.New("translator needs a backing store")
	}

	if b.numFrames < 0 {
		return nil, fmt.Errorf("invalid number of frames %d", b.numFrames)
	}

	if b.tlbEnabled && b.tlbCapacity <= 0 {
		return nil, fmt.Errorf("invalid TLB capacity %d", b.tlbCapacity)
	}

	victimFinder, err := frame.NewVictimFinder(b.policy)
	if err != nil {
		return nil, err
	}

	c := &Comp{
		HookableBase: sim.NewHookableBase(),
		name:         name,
	}

	c.memory = memory.NewStorage(b.numFrames, vm.PageSize)
	c.allocator = frame.NewAllocator(b.numFrames, victimFinder)
	c.pageTable = vm.NewPageTable(c.allocator, b.loader, c.memory, &c.logs)

	if b.tlbEnabled {
		tlbBuilder := tlb.MakeBuilder().WithCapacity(b.tlbCapacity)
		if b.tlbEvictionInvalidation {
			tlbBuilder = tlbBuilder.WithEvictionInvalidator(c.pageTable)
		}

		c.tlb = tlbBuilder.Build(name + ".TLB")
		c.pageTable.AddObserver(c.tlb)
	}

	return c, nil
}
