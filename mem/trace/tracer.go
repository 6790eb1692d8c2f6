// Package trace provides tracers that record the translations performed by a
// translator.
package trace

import (
	"log"

	"github.com/rs/xid"
	"github.com/sarchlab/vmsim/datarecording"
	"github.com/sarchlab/vmsim/mem/vm"
	"github.com/sarchlab/vmsim/mem/vm/tlb"
	"github.com/sarchlab/vmsim/mem/vm/translator"
	"github.com/sarchlab/vmsim/sim"
)

// translationEntry represents a translation in the database
type translationEntry struct {
	ID           string `json:"id"`
	Seq          uint64 `json:"seq"`
	Address      uint64 `json:"address"`
	Page         uint64 `json:"page"`
	Offset       uint64 `json:"offset"`
	Value        uint64 `json:"value"`
	Frame        int64  `json:"frame"`
	TLBHit       bool   `json:"tlb_hit"`
	PageWasValid bool   `json:"page_was_valid"`
	Content      string `json:"content"`
}

// evictionEntry represents a frame or TLB eviction in the database
type evictionEntry struct {
	ID     string `json:"id"`
	Seq    uint64 `json:"seq"`
	Kind   string `json:"kind"`
	Page   uint64 `json:"page"`
	Victim uint64 `json:"victim"`
	Frame  int64  `json:"frame"`
}

// A tracer is a hook that prints one line per translation.
type tracer struct {
	sim.LogHookBase
}

// NewTracer creates a tracer that prints, for every translation, the page,
// the value read, the frame, the TLB hit flag, the page-was-valid flag and
// the page content in hex.
func NewTracer(logger *log.Logger) sim.Hook {
	return &tracer{LogHookBase: sim.LogHookBase{Logger: logger}}
}

// Func prints translations and ignores other hook positions.
func (t *tracer) Func(ctx sim.HookCtx) {
	if ctx.Pos != translator.HookPosTranslated {
		return
	}

	rec, ok := ctx.Detail.(translator.Record)
	if !ok {
		return
	}

	t.Printf("%d, %d, %d, %t, %t, %s\n",
		rec.Page,
		rec.Value,
		rec.Frame,
		rec.TLBHit,
		rec.PageWasValid,
		rec.HexDump(),
	)
}

// A dbTracer is a hook that records translations and evictions into a
// database using the data recorder.
type dbTracer struct {
	dataRecorder datarecording.DataRecorder
	seq          uint64
}

// NewDBTracer creates a database-based tracer.
func NewDBTracer(dataRecorder datarecording.DataRecorder) sim.Hook {
	t := &dbTracer{
		dataRecorder: dataRecorder,
	}

	t.dataRecorder.CreateTable("translations", translationEntry{})
	t.dataRecorder.CreateTable("evictions", evictionEntry{})

	return t
}

// Func records the event behind the hook context.
func (t *dbTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case translator.HookPosTranslated:
		t.recordTranslation(ctx)
	case vm.HookPosFrameEvict:
		t.recordFrameEviction(ctx)
	case tlb.HookPosEvict:
		t.recordTLBEviction(ctx)
	}
}

func (t *dbTracer) recordTranslation(ctx sim.HookCtx) {
	rec, ok := ctx.Detail.(translator.Record)
	if !ok {
		return
	}

	t.seq++

	t.dataRecorder.InsertData("translations", translationEntry{
		ID:           xid.New().String(),
		Seq:          t.seq,
		Address:      rec.Address,
		Page:         uint64(rec.Page),
		Offset:       uint64(rec.Offset),
		Value:        uint64(rec.Value),
		Frame:        int64(rec.Frame),
		TLBHit:       rec.TLBHit,
		PageWasValid: rec.PageWasValid,
		Content:      rec.HexDump(),
	})
}

func (t *dbTracer) recordFrameEviction(ctx sim.HookCtx) {
	page, ok := ctx.Item.(vm.PageIndex)
	if !ok {
		return
	}

	alloc, ok := ctx.Detail.(vm.FrameAllocation)
	if !ok {
		return
	}

	t.dataRecorder.InsertData("evictions", evictionEntry{
		ID:     xid.New().String(),
		Seq:    t.seq + 1,
		Kind:   "frame",
		Page:   uint64(page),
		Victim: uint64(alloc.Victim),
		Frame:  int64(alloc.Frame),
	})
}

func (t *dbTracer) recordTLBEviction(ctx sim.HookCtx) {
	victim, ok := ctx.Item.(vm.PageIndex)
	if !ok {
		return
	}

	page, ok := ctx.Detail.(vm.PageIndex)
	if !ok {
		return
	}

	t.dataRecorder.InsertData("evictions", evictionEntry{
		ID:     xid.New().String(),
		Seq:    t.seq + 1,
		Kind:   "tlb",
		Page:   uint64(page),
		Victim: uint64(victim),
		Frame:  -1,
	})
}
