package frame

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPolicy is returned when a replacement policy name is not
// supported.
var ErrUnknownPolicy = errors.New("unknown replacement policy")

// A Policy names a frame replacement policy.
type Policy string

// PolicyFIFO evicts the frame that was filled the earliest.
const PolicyFIFO Policy = "fifo"

// ParsePolicy converts a policy name into a Policy. Names are case
// insensitive.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case PolicyFIFO:
		return PolicyFIFO, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
}

// A VictimFinder decides which occupied frame should be evicted. The order
// slice lists the occupied frames from the earliest filled to the latest.
type VictimFinder interface {
	FindVictim(order []int) (frame int, ok bool)
}

// NewVictimFinder returns the victim finder that implements a policy.
func NewVictimFinder(p Policy) (VictimFinder, error) {
	switch p {
	case PolicyFIFO:
		return NewFIFOVictimFinder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, string(p))
	}
}

// FIFOVictimFinder evicts the frame that was filled the earliest.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed FIFO victim finder.
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return new(FIFOVictimFinder)
}

// FindVictim returns the first frame in the fill order.
func (f *FIFOVictimFinder) FindVictim(order []int) (int, bool) {
	if len(order) == 0 {
		return 0, false
	}

	return order[0], true
}
