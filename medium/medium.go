// Package medium implements the Medium Abstraction (MA): the three
// injected callbacks the store is built on (page read, page program,
// sector erase) plus the geometry numbers that describe the device they
// talk to. Everything here is a thin, validated wrapper around caller-
// supplied collaborators — it does not itself touch real hardware.
package medium

import "github.com/pkg/errors"

// Callbacks is the capability set an integrator supplies to talk to the
// physical (or simulated) flash device. addr is always absolute
// (Geometry.Base <= addr < Geometry.Base+Geometry.Length).
type Callbacks struct {
	// Read fully populates dst[0:n] from addr. No alignment constraint.
	Read func(addr uint32, dst []byte, n uint32) error
	// Program writes src[0:n] at addr. The caller (this package's
	// consumers) guarantees addr has been erased since its last program
	// and never crosses a sector boundary in one call, nor a page
	// boundary within one call.
	Program func(addr uint32, src []byte, n uint32) error
	// EraseSector resets the whole sector starting at addr (which must
	// be sector-aligned) back to the erase pattern.
	EraseSector func(addr uint32) error
}

// Geometry describes the medium's block structure: P page size, S sector
// size, A0 base address, M total length.
type Geometry struct {
	PageSize   uint32
	SectorSize uint32
	Base       uint32
	Length     uint32
}

// End returns the absolute address one past the last byte of the medium.
func (g Geometry) End() uint32 {
	return g.Base + g.Length
}

// Validate enforces spec.md §3's geometry constraints: S >= P, P | S,
// S | M, P > 0.
func (g Geometry) Validate() error {
	if g.PageSize == 0 {
		return errors.New("medium: page size must be nonzero")
	}
	if g.SectorSize < g.PageSize {
		return errors.New("medium: sector size must be >= page size")
	}
	if g.SectorSize%g.PageSize != 0 {
		return errors.New("medium: sector size must be a multiple of page size")
	}
	if g.Length == 0 {
		return errors.New("medium: total length must be nonzero")
	}
	if g.Length%g.SectorSize != 0 {
		return errors.New("medium: total length must be a multiple of sector size")
	}
	return nil
}

// Validate checks that every callback is set.
func (c Callbacks) Validate() error {
	if c.Read == nil || c.Program == nil || c.EraseSector == nil {
		return errors.New("medium: read, program and erase_sector callbacks must all be set")
	}
	return nil
}
