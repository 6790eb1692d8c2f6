// Package stats tallies the counters of a translation run.
package stats

import "math"

// Logs holds the counters of a run. The counters only grow.
type Logs struct {
	Translated uint64 `json:"translated"`
	Faults     uint64 `json:"faults"`
	TLBHits    uint64 `json:"tlb_hits"`
	TLBMisses  uint64 `json:"tlb_misses"`
}

// RecordTranslation counts one translated address.
func (l *Logs) RecordTranslation() {
	l.Translated++
}

// RecordFault counts one page fault.
func (l *Logs) RecordFault() {
	l.Faults++
}

// RecordTLBHit counts one TLB hit.
func (l *Logs) RecordTLBHit() {
	l.TLBHits++
}

// RecordTLBMiss counts one TLB miss.
func (l *Logs) RecordTLBMiss() {
	l.TLBMisses++
}

// HitRate returns hits / (hits + misses) rounded to three decimals. The bool
// return value is false if there was no TLB lookup at all.
func (l Logs) HitRate() (float64, bool) {
	lookups := l.TLBHits + l.TLBMisses
	if lookups == 0 {
		return 0, false
	}

	rate := float64(l.TLBHits) / float64(lookups)

	return math.Round(rate*1000) / 1000, true
}
