package vm

import (
	"fmt"
	"log/slog"

	"github.com/sarchlab/vmsim/sim"
)

// HookPosFrameEvict marks that a page took over a frame from another page.
// The hook item is the incoming page and the detail is the FrameAllocation.
var HookPosFrameEvict = &sim.HookPos{Name: "FrameEvict"}

// A PageTableEntry tells which frame holds a page. The frame is only
// meaningful when the entry is valid.
type PageTableEntry struct {
	Frame int
	Valid bool
}

// A FrameAllocation is the outcome of asking for a frame. When Evicted is
// set, Victim is the page that used to live in the frame.
type FrameAllocation struct {
	Frame   int
	Evicted bool
	Victim  PageIndex
}

// A FrameAllocator hands out physical frames to pages.
type FrameAllocator interface {
	Allocate(page PageIndex) (FrameAllocation, error)
}

// A PageLoader fetches the content of a page from persistent storage.
type PageLoader interface {
	LoadPage(page PageIndex) ([]byte, error)
}

// A FrameWriter installs page content into a physical frame.
type FrameWriter interface {
	WriteFrame(frame int, data []byte) error
}

// A FaultRecorder counts page faults.
type FaultRecorder interface {
	RecordFault()
}

// An InvalidationObserver is told whenever a page table entry stops being
// valid.
type InvalidationObserver interface {
	PageInvalidated(page PageIndex)
}

// A PageTable maps every page of the address space to a frame. It is the only
// place where page faults are raised.
type PageTable struct {
	*sim.HookableBase

	entries   [NumPages]PageTableEntry
	allocator FrameAllocator
	loader    PageLoader
	memory    FrameWriter
	faults    FaultRecorder
	observers []InvalidationObserver
}

// NewPageTable creates a PageTable with every entry unmapped.
func NewPageTable(
	allocator FrameAllocator,
	loader PageLoader,
	memory FrameWriter,
	faults FaultRecorder,
) *PageTable {
	pt := &PageTable{
		HookableBase: sim.NewHookableBase(),
		allocator:    allocator,
		loader:       loader,
		memory:       memory,
		faults:       faults,
	}

	for i := range pt.entries {
		pt.entries[i] = PageTableEntry{Frame: -1}
	}

	return pt
}

// AddObserver registers an observer that is notified on invalidations.
func (pt *PageTable) AddObserver(o InvalidationObserver) {
	pt.observers = append(pt.observers, o)
}

// Entry returns the current entry of a page.
func (pt *PageTable) Entry(page PageIndex) PageTableEntry {
	return pt.entries[page]
}

// ValidPages returns the pages that are currently mapped, in page order.
func (pt *PageTable) ValidPages() []PageIndex {
	pages := make([]PageIndex, 0)

	for i, e := range pt.entries {
		if e.Valid {
			pages = append(pages, PageIndex(i))
		}
	}

	return pages
}

// Lookup returns the entry of a page, faulting the page in if it is not
// mapped. The bool return value tells if the entry was already valid.
//
// On a fault the page is loaded before a frame is allocated, so neither the
// allocator nor the victim's entry changes when the load fails.
func (pt *PageTable) Lookup(page PageIndex) (PageTableEntry, bool, error) {
	entry := pt.entries[page]
	if entry.Valid {
		return entry, true, nil
	}

	pt.faults.RecordFault()

	// Loading has no side effects, so it goes first. A failed load leaves
	// the frames and the other entries untouched.
	data, err := pt.loader.LoadPage(page)
	if err != nil {
		return PageTableEntry{}, false, fmt.Errorf("page %d: %w", page, err)
	}

	alloc, err := pt.allocator.Allocate(page)
	if err != nil {
		return PageTableEntry{}, false, fmt.Errorf("page %d: %w", page, err)
	}

	if alloc.Evicted {
		slog.Debug("frame evicted",
			"frame", alloc.Frame, "victim", alloc.Victim, "page", page)

		// The victim may have faulted into another frame since it was
		// dropped by the TLB. Only the mapping to this frame goes away.
		if pt.entries[alloc.Victim].Frame == alloc.Frame {
			pt.Invalidate(alloc.Victim)
		}

		pt.InvokeHook(sim.HookCtx{
			Domain: pt,
			Pos:    HookPosFrameEvict,
			Item:   page,
			Detail: alloc,
		})
	}

	err = pt.memory.WriteFrame(alloc.Frame, data)
	if err != nil {
		return PageTableEntry{}, false, fmt.Errorf("page %d: %w", page, err)
	}

	entry = PageTableEntry{Frame: alloc.Frame, Valid: true}
	pt.entries[page] = entry

	slog.Debug("page fault resolved", "page", page, "frame", alloc.Frame)

	return entry, false, nil
}

// Invalidate marks the entry of a page as invalid. The frame number is kept
// so that traces can still tell where the page used to live.
func (pt *PageTable) Invalidate(page PageIndex) {
	pt.entries[page].Valid = false

	for _, o := range pt.observers {
		o.PageInvalidated(page)
	}
}
