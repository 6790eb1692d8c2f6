// Package translator resolves logical addresses to bytes of physical memory
// through a TLB, a page table and a pool of frames.
package translator

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/frame"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/memory"
	"github.com/sarchlab/vmsim/sim"
	"github.com/sarchlab/vmsim/stats"
)

// HookPosTranslated marks that an address has been translated. The hook item
// is the logical address and the detail is the Record.
var HookPosTranslated = &sim.HookPos{Name: "Translated"}

// A Record describes how one address was translated.
type Record struct {
	Address      uint64
	Page         vm.PageIndex
	Offset       uint8
	Value        byte
	Frame        int
	TLBHit       bool
	PageWasValid bool
	Content      []byte
}

// HexDump returns the content of the resolved page as uppercase hex digits,
// two per byte.
func (r Record) HexDump() string {
	return fmt.Sprintf("%X", r.Content)
}

// Comp owns the whole simulation context: the page table, the frames, the
// TLB and the counters. Translate calls are serialized.
type Comp struct {
	*sim.HookableBase
	sync.Mutex

	name      string
	logs      stats.Logs
	memory    *memory.Storage
	allocator *frame.Allocator
	pageTable *vm.PageTable
	tlb       *tlb.Comp
}

// Name returns the name of the translator.
func (c *Comp) Name() string {
	return c.name
}

// AcceptHook registers a hook on the translator and on its page table and
// TLB, so that eviction events reach the same hook.
func (c *Comp) AcceptHook(hook sim.Hook) {
	c.HookableBase.AcceptHook(hook)
	c.pageTable.AcceptHook(hook)

	if c.tlb != nil {
		c.tlb.AcceptHook(hook)
	}
}

// PageTable returns the page table.
func (c *Comp) PageTable() *vm.PageTable {
	return c.pageTable
}

// TLB returns the TLB, or nil if the TLB is disabled.
func (c *Comp) TLB() *tlb.Comp {
	return c.tlb
}

// Allocator returns the frame allocator.
func (c *Comp) Allocator() *frame.Allocator {
	return c.allocator
}

// Stats returns a snapshot of the counters.
func (c *Comp) Stats() stats.Logs {
	c.Lock()
	defer c.Unlock()

	return c.logs
}

// Run translates the addresses in order. It stops at the first error.
func (c *Comp) Run(addrs []uint64) error {
	for _, addr := range addrs {
		_, err := c.Translate(addr)
		if err != nil {
			return err
		}
	}

	return nil
}

// Translate resolves one logical address and reads the byte it points to.
func (c *Comp) Translate(addr uint64) (Record, error) {
	c.Lock()
	defer c.Unlock()

	a := vm.Decode(addr)

	entry, hit := c.lookupTLB(a.Page)
	wasValid := true

	if hit {
		c.logs.RecordTLBHit()
	} else {
		c.logs.RecordTLBMiss()

		var err error

		entry, wasValid, err = c.pageTable.Lookup(a.Page)
		if err != nil {
			return Record{}, fmt.Errorf("translating address %d: %w", addr, err)
		}

		if c.tlb != nil {
			c.tlb.Insert(a.Page, entry)
		}
	}

	value, err := c.memory.Read(entry.Frame, a.Offset)
	if err != nil {
		return Record{}, fmt.Errorf("translating address %d: %w", addr, err)
	}

	content, err := c.memory.Frame(entry.Frame)
	if err != nil {
		return Record{}, fmt.Errorf("translating address %d: %w", addr, err)
	}

	c.logs.RecordTranslation()

	rec := Record{
		Address:      addr,
		Page:         a.Page,
		Offset:       a.Offset,
		Value:        value,
		Frame:        entry.Frame,
		TLBHit:       hit,
		PageWasValid: wasValid,
		Content:      content,
	}

	slog.Debug("translated",
		"address", addr, "page", a.Page, "frame", entry.Frame,
		"tlb_hit", hit, "page_was_valid", wasValid)

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    HookPosTranslated,
		Item:   addr,
		Detail: rec,
	})

	return rec, nil
}

func (c *Comp) lookupTLB(page vm.PageIndex) (vm.PageTableEntry, bool) {
	if c.tlb == nil {
		return vm.PageTableEntry{}, false
	}

	return c.tlb.Lookup(page)
}
