// Package tlb provides a translation lookaside buffer that caches page table
// entries and evicts them in FIFO order.
package tlb

import (
	"log/slog"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb/internal"
	"github.com/sarchlab/vmsim/sim"
)

// HookPosEvict marks that a record was evicted to make room for another.
// The hook item is the evicted page and the detail is the admitted page.
var HookPosEvict = &sim.HookPos{Name: "TLBEvict"}

// An Invalidator is told about the pages evicted from the TLB.
type Invalidator interface {
	Invalidate(page vm.PageIndex)
}

// Comp is a cache (TLB) that maintains some page information.
type Comp struct {
	*sim.HookableBase

	name        string
	capacity    int
	set         internal.Set
	invalidator Invalidator
}

// Name returns the name of the TLB.
func (c *Comp) Name() string {
	return c.name
}

// Capacity returns the maximum number of records.
func (c *Comp) Capacity() int {
	return c.capacity
}

// Len returns the number of records currently held.
func (c *Comp) Len() int {
	return c.set.Len()
}

// InvalidatesOnEvict tells if evictions are forwarded to an invalidator.
func (c *Comp) InvalidatesOnEvict() bool {
	return c.invalidator != nil
}

// Pages returns the cached pages from the earliest admitted to the latest.
func (c *Comp) Pages() []vm.PageIndex {
	records := c.set.Records()
	pages := make([]vm.PageIndex, len(records))

	for i, r := range records {
		pages[i] = r.Page
	}

	return pages
}

// Lookup returns the cached entry of a page. A record that is present but
// invalid is reported as a miss.
func (c *Comp) Lookup(page vm.PageIndex) (vm.PageTableEntry, bool) {
	r, found := c.set.Lookup(page)
	if !found || !r.Valid {
		return vm.PageTableEntry{}, false
	}

	return vm.PageTableEntry{Frame: r.Frame, Valid: true}, true
}

// Insert admits the entry of a page. If the TLB is full, the earliest
// admitted record is evicted first and, when an invalidator is set, the
// evicted page is invalidated too. A record of the same page that survives
// the eviction is replaced, so each page has at most one record.
func (c *Comp) Insert(page vm.PageIndex, entry vm.PageTableEntry) {
	if c.set.Len() >= c.capacity {
		victim, ok := c.evict(page)

		// The evicted record may be a stale one of the admitted page. Its
		// invalidation covers the entry being admitted as well.
		if ok && victim == page && c.invalidator != nil {
			entry.Valid = false
		}
	}

	c.set.Remove(page)

	c.set.Push(internal.Record{
		Page:  page,
		Frame: entry.Frame,
		Valid: entry.Valid,
	})
}

func (c *Comp) evict(incoming vm.PageIndex) (vm.PageIndex, bool) {
	victim, ok := c.set.Evict()
	if !ok {
		return 0, false
	}

	slog.Debug("tlb evicted",
		"tlb", c.name, "victim", victim.Page, "page", incoming)

	if c.invalidator != nil {
		c.invalidator.Invalidate(victim.Page)
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosEvict,
		Item:   victim.Page,
		Detail: incoming,
	})

	return victim.Page, true
}

// PageInvalidated marks the record of a page as invalid so that it is never
// served again.
func (c *Comp) PageInvalidated(page vm.PageIndex) {
	c.set.Invalidate(page)
}
