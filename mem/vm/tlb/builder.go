package tlb

import (
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
)

// DefaultCapacity is the number of records a TLB holds unless configured
// otherwise.
const DefaultCapacity = 5

// A Builder can build TLBs
type Builder struct {
	capacity    int
	invalidator Invalidator
}

// MakeBuilder returns a Builder
func MakeBuilder() Builder {
	return Builder{
		capacity: DefaultCapacity,
	}
}

// WithCapacity sets the number of records in a TLB.
func (b Builder) WithCapacity(n int) Builder {
	b.capacity = n
	return b
}

// WithEvictionInvalidator sets the component to invalidate whenever a record
// is evicted. Typically, this is the page table, so that a page evicted from
// the TLB must fault again on its next access. Use nil to disable.
func (b Builder) WithEvictionInvalidator(inv Invalidator) Builder {
	b.invalidator = inv
	return b
}

// Build creates a new TLB
func (b Builder) Build(name string) *Comp {
	if b.capacity <= 0 {
		panic("tlb capacity must be positive")
	}

	return &Comp{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		capacity:     b.capacity,
		set:          internal.NewSet(b.capacity),
		invalidator:  b.invalidator,
	}
}
