// Package simflash is an in-memory stand-in for a NOR-flash device,
// implementing medium.Callbacks. It serves the tests and the flashkvtool
// CLI, which loads and saves it as an image file; it is the Medium Abstraction's single
// test double, the way the teacher repository's lsm/block_manager backed
// its page cache with a real file but made every access go through one
// mutex-guarded chokepoint.
package simflash

import (
	"sync"

	"github.com/pkg/errors"

	"flashkv/medium"
)

// Disk is a byte-addressable in-memory flash simulator. The zero value is
// not usable; use New.
type Disk struct {
	mu         sync.Mutex
	data       []byte
	sectorSize uint32

	// Fault injection, toggled by tests to exercise spec.md §8's HW and
	// torn-write scenarios.
	FailRead        bool
	FailProgram     bool
	FailEraseSector bool
}

// New allocates a fully-erased Disk of the given length, with the given
// sector size (needed so EraseSector knows how much to reset).
func New(length, sectorSize uint32) *Disk {
	data := make([]byte, length)
	for i := range data {
		data[i] = 0xFF
	}
	return &Disk{data: data, sectorSize: sectorSize}
}

// Callbacks returns a medium.Callbacks bound to this Disk.
func (d *Disk) Callbacks() medium.Callbacks {
	return medium.Callbacks{
		Read:        d.read,
		Program:     d.program,
		EraseSector: d.eraseSector,
	}
}

func (d *Disk) read(addr uint32, dst []byte, n uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailRead {
		return errors.New("simflash: injected read failure")
	}
	if uint64(addr)+uint64(n) > uint64(len(d.data)) {
		return errors.Errorf("simflash: read out of range addr=%d n=%d len=%d", addr, n, len(d.data))
	}
	copy(dst, d.data[addr:addr+n])
	return nil
}

// program writes src[0:n] at addr. Like real NOR flash, a program call can
// only flip bits from 1 toward 0; it never resets a byte back to 0xFF.
func (d *Disk) program(addr uint32, src []byte, n uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailProgram {
		return errors.New("simflash: injected program failure")
	}
	if uint64(addr)+uint64(n) > uint64(len(d.data)) {
		return errors.Errorf("simflash: program out of range addr=%d n=%d len=%d", addr, n, len(d.data))
	}
	for i := uint32(0); i < n; i++ {
		d.data[addr+i] &= src[i]
	}
	return nil
}

func (d *Disk) eraseSector(addr uint32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.FailEraseSector {
		return errors.New("simflash: injected erase failure")
	}
	if uint64(addr)+uint64(d.sectorSize) > uint64(len(d.data)) {
		return errors.Errorf("simflash: erase out of range addr=%d sectorSize=%d len=%d", addr, d.sectorSize, len(d.data))
	}
	for i := uint32(0); i < d.sectorSize; i++ {
		d.data[addr+i] = 0xFF
	}
	return nil
}

// EraseSectorRange is a test helper: erase exactly one sector's worth of
// bytes starting at addr, bypassing fault injection. Tests use this to
// pre-erase geometry setup without going through Callbacks.
func (d *Disk) EraseSectorRange(addr, sectorSize uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := uint32(0); i < sectorSize; i++ {
		d.data[addr+i] = 0xFF
	}
}

// FlipBit simulates a 2-bit flip or other localized corruption at the
// given absolute offset, for power-loss / CRC-mismatch scenarios.
func (d *Disk) FlipBit(offset uint32, mask byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.data[offset] ^= mask
}

// Len reports the simulated disk's total size.
func (d *Disk) Len() uint32 {
	return uint32(len(d.data))
}

// FromImage wraps an existing byte slice (e.g. one loaded from a disk
// image file between flashkvtool invocations) as a Disk, instead of
// allocating a freshly-erased one. The slice is used directly, not
// copied.
func FromImage(data []byte, sectorSize uint32) *Disk {
	return &Disk{data: data, sectorSize: sectorSize}
}

// Image returns the simulator's backing bytes, for a caller to persist
// to disk between flashkvtool invocations.
func (d *Disk) Image() []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.data
}
