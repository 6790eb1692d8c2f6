// Package report formats the end-of-run summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sarchlab/vmsim/stats"
)

// A Summary is the end-of-run view of the counters.
type Summary struct {
	Translated uint64   `json:"translated"`
	Faults     uint64   `json:"faults"`
	TLBHits    uint64   `json:"tlb_hits"`
	TLBMisses  uint64   `json:"tlb_misses"`
	HitRate    *float64 `json:"hit_rate"`
}

// NewSummary builds the summary of a set of counters. HitRate is nil when
// there was no TLB lookup.
func NewSummary(logs stats.Logs) Summary {
	s := Summary{
		Translated: logs.Translated,
		Faults:     logs.Faults,
		TLBHits:    logs.TLBHits,
		TLBMisses:  logs.TLBMisses,
	}

	rate, ok := logs.HitRate()
	if ok {
		s.HitRate = &rate
	}

	return s
}

// Print writes the summary as text.
func (s Summary) Print(w io.Writer) error {
	rate := "n/a"
	if s.HitRate != nil {
		rate = fmt.Sprintf("%.3f", *s.HitRate)
	}

	_, err := fmt.Fprintf(w,
		"Translated: %d\nPage faults: %d\nTLB hits: %d\nTLB misses: %d\n"+
			"TLB hit rate: %s\n",
		s.Translated, s.Faults, s.TLBHits, s.TLBMisses, rate)

	return err
}

// WriteJSON writes the summary as a JSON document.
func (s Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(s)
}
