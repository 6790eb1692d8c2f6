// Package internal provides the definition required for defining TLB.
package internal

import (
	"github.com/sarchlab/vmsim/mem/vm"
)

// A Record is one cached translation.
type Record struct {
	Page  vm.PageIndex
	Frame int
	Valid bool
}

// A Set holds a bounded number of records in the order they were admitted.
// Lookup, Push, Evict, Remove and Invalidate are the operations which we can
// perform on a set.
type Set interface {
	Lookup(page vm.PageIndex) (Record, bool)
	Push(r Record)
	Evict() (Record, bool)
	Remove(page vm.PageIndex) bool
	Invalidate(page vm.PageIndex) bool
	Len() int
	Records() []Record
}

// NewSet creates a new TLB set.
func NewSet(capacity int) Set {
	s := &SetImpl{}
	s.records = make([]Record, 0, capacity)

	return s
}

// SetImpl keeps the records in a single slice, from the earliest admitted to
// the latest. Presence, validity and order all live in that slice.
type SetImpl struct {
	records []Record
}

func (s *SetImpl) find(page vm.PageIndex) int {
	for i, r := range s.records {
		if r.Page == page {
			return i
		}
	}

	return -1
}

// Lookup returns the record of a page, valid or not.
func (s *SetImpl) Lookup(page vm.PageIndex) (Record, bool) {
	i := s.find(page)
	if i < 0 {
		return Record{}, false
	}

	return s.records[i], true
}

// Push admits a record at the back of the order.
func (s *SetImpl) Push(r Record) {
	s.records = append(s.records, r)
}

// Evict removes the earliest admitted record.
func (s *SetImpl) Evict() (Record, bool) {
	if len(s.records) == 0 {
		return Record{}, false
	}

	oldest := s.records[0]
	s.records = s.records[1:]

	return oldest, true
}

// Remove drops the record of a page. It reports whether there was one.
func (s *SetImpl) Remove(page vm.PageIndex) bool {
	i := s.find(page)
	if i < 0 {
		return false
	}

	s.records = append(s.records[:i], s.records[i+1:]...)

	return true
}

// Invalidate clears the valid flag of the record of a page, keeping its
// position.
func (s *SetImpl) Invalidate(page vm.PageIndex) bool {
	i := s.find(page)
	if i < 0 {
		return false
	}

	s.records[i].Valid = false

	return true
}

// Len returns the number of records held.
func (s *SetImpl) Len() int {
	return len(s.records)
}

// Records returns a copy of the records, from the earliest admitted to the
// latest.
func (s *SetImpl) Records() []Record {
	res := make([]Record, len(s.records))
	copy(res, s.records)

	return res
}
