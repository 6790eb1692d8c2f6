// Package frame manages the pool of physical frames.
package frame

import (
	"errors"
	"log/slog"

	"github.com/sarchlab/vmsim/mem/vm"
)

// ErrOutOfFrames is returned when no frame can be handed out.
var ErrOutOfFrames = errors.New("out of frames")

const free = -1

// An Allocator owns a fixed number of frames. Free frames are handed out
// first. Once all frames are occupied, the victim finder picks the frame to
// reuse.
type Allocator struct {
	residents    []int
	order        []int
	victimFinder VictimFinder
}

// NewAllocator creates an allocator with all frames free.
func NewAllocator(numFrames int, victimFinder VictimFinder) *Allocator {
	if numFrames < 0 {
		numFrames = 0
	}

	a := &Allocator{
		residents:    make([]int, numFrames),
		order:        make([]int, 0, numFrames),
		victimFinder: victimFinder,
	}

	for i := range a.residents {
		a.residents[i] = free
	}

	return a
}

// NumFrames returns the number of frames managed by the allocator.
func (a *Allocator) NumFrames() int {
	return len(a.residents)
}

// NumOccupied returns the number of frames that hold a page.
func (a *Allocator) NumOccupied() int {
	return len(a.order)
}

// ResidentPage returns the page that lives in a frame. The bool return value
// is false if the frame is free or out of range.
func (a *Allocator) ResidentPage(frame int) (vm.PageIndex, bool) {
	if frame < 0 || frame >= len(a.residents) {
		return 0, false
	}

	r := a.residents[frame]
	if r == free {
		return 0, false
	}

	return vm.PageIndex(r), true
}

// FillOrder returns the occupied frames from the earliest filled to the
// latest.
func (a *Allocator) FillOrder() []int {
	order := make([]int, len(a.order))
	copy(order, a.order)

	return order
}

// Allocate assigns a frame to the page. If all frames are occupied, a victim
// is evicted and reported in the returned allocation so that the caller can
// invalidate the page that used to live there.
func (a *Allocator) Allocate(page vm.PageIndex) (vm.FrameAllocation, error) {
	if len(a.residents) == 0 {
		return vm.FrameAllocation{}, ErrOutOfFrames
	}

	for f, r := range a.residents {
		if r == free {
			a.occupy(f, page)
			return vm.FrameAllocation{Frame: f}, nil
		}
	}

	victim, ok := a.victimFinder.FindVictim(a.order)
	if !ok || victim < 0 || victim >= len(a.residents) {
		return vm.FrameAllocation{}, ErrOutOfFrames
	}

	previous := vm.PageIndex(a.residents[victim])
	a.removeFromOrder(victim)
	a.occupy(victim, page)

	slog.Debug("frame reassigned",
		"frame", victim, "from", previous, "to", page)

	return vm.FrameAllocation{
		Frame:   victim,
		Evicted: true,
		Victim:  previous,
	}, nil
}

func (a *Allocator) occupy(frame int, page vm.PageIndex) {
	a.residents[frame] = int(page)
	a.order = append(a.order, frame)
}

func (a *Allocator) removeFromOrder(frame int) {
	for i, f := range a.order {
		if f == frame {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}
