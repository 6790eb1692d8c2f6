package trace

import (
	"sort"

	"github.com/sarchlab/vmsim/sim"
)

// CountingTracer counts how many times each hook position is triggered.
type CountingTracer struct {
	counts map[string]uint64
}

// NewCountingTracer creates a new CountingTracer.
func NewCountingTracer() *CountingTracer {
	return &CountingTracer{counts: make(map[string]uint64)}
}

// Func counts the hook position.
func (t *CountingTracer) Func(ctx sim.HookCtx) {
	if ctx.Pos == nil {
		return
	}

	t.counts[ctx.Pos.Name]++
}

// Count returns the number of times a hook position was triggered.
func (t *CountingTracer) Count(pos *sim.HookPos) uint64 {
	return t.counts[pos.Name]
}

// Names returns the names of the positions seen, sorted.
func (t *CountingTracer) Names() []string {
	names := make([]string, 0, len(t.counts))
	for n := range t.counts {
		names = append(names, n)
	}

	sort.Strings(names)

	return names
}
