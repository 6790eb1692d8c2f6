// Package vm provides the models for address translations
package vm

const (
	// NumSignificantBits is the number of low bits of a logical address that
	// take part in the translation.
	NumSignificantBits = 16

	// OffsetBits is the number of bits used by the in-page offset.
	OffsetBits = 8

	// PageSize is the number of bytes in a page and in a frame.
	PageSize = 1 << OffsetBits

	// NumPages is the number of entries in the page table.
	NumPages = 1 << (NumSignificantBits - OffsetBits)

	significantMask = (1 << NumSignificantBits) - 1
	offsetMask      = PageSize - 1
)

// PageIndex identifies a page of the simulated address space.
type PageIndex uint8

// An Address is a logical address split into its page index and offset.
type Address struct {
	Page   PageIndex
	Offset uint8
}

// Decode splits a logical address into the page index and the offset. Bits
// above the significant bits are dropped.
func Decode(addr uint64) Address {
	masked := addr & significantMask

	return Address{
		Page:   PageIndex(masked >> OffsetBits),
		Offset: uint8(masked & offsetMask),
	}
}
