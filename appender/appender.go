// Package appender implements the Append Engine (AE): given a record, it
// finds the next free address honoring page alignment and wrap, builds
// the header, and writes header+payload through the page/sector program
// protocol - erasing each sector exactly once before its first use. This
// is the direct descendant of the teacher repository's lsm/wal.go
// (WriteRecord/writeToBlock/flushBlock), generalized from WAL's
// fixed-block fragmentation to the page/sector-bounded writer the
// original nvram_kv.c low-level NVRWrite performs.
package appender

import (
	"hash/crc32"

	"github.com/pkg/errors"

	"flashkv/header"
	"flashkv/medium"
)

// Result describes a completed append. All addresses are relative
// (0 <= addr < Geometry.Length), matching the cursor's addressing per
// spec.md §9's design note.
type Result struct {
	HeaderAddr   uint32
	PayloadCRC32 uint32
	// Wrapped is true when the append had to restart the log at address
	// 0 because the record would not otherwise fit before the medium's
	// end. The caller still wrote successfully; Wrapped is a soft status,
	// not an error.
	Wrapped bool
}

// Append writes a new record (id, payload) starting at or after addrHint
// (relative), honoring page alignment (always skipping ahead when a
// header would otherwise span a page boundary; additionally starting
// every record on a page boundary when pageAlign is set) and wrap-around.
// prevAddr is the back-link to embed in the header: the previous record's
// payload-start relative address, or 0 if this is the first record ever
// appended to this log.
func Append(g medium.Geometry, cb medium.Callbacks, scratch []byte, pageAlign bool, addrHint uint32, id uint64, prevAddr uint32, payload []byte) (Result, error) {
	addr := addrHint
	pageFilled := addr % g.PageSize
	pageRemain := g.PageSize - pageFilled
	if pageRemain < uint32(header.Size) || (pageAlign && pageFilled != 0) {
		addr += pageRemain
		pageFilled = 0
	}

	wrapped := false
	payloadLen := uint32(len(payload))
	if addr+uint32(header.Size)+payloadLen > g.Length {
		addr = 0
		pageFilled = 0
		wrapped = true
	}

	crc := crc32.ChecksumIEEE(payload)
	hdr := header.Emit(id, payloadLen, prevAddr, crc)

	if pageFilled+uint32(header.Size)+payloadLen <= g.PageSize {
		combined := buildCombined(scratch, hdr, payload)
		if err := writeSpan(g, cb, addr, combined); err != nil {
			return Result{}, err
		}
	} else {
		firstPayloadLen := g.PageSize - pageFilled - uint32(header.Size)
		firstChunk := buildCombined(scratch, hdr, payload[:firstPayloadLen])
		if err := writeSpan(g, cb, addr, firstChunk); err != nil {
			return Result{}, err
		}
		rest := payload[firstPayloadLen:]
		restAddr := addr + uint32(header.Size) + firstPayloadLen
		if err := writeSpan(g, cb, restAddr, rest); err != nil {
			return Result{}, err
		}
	}

	return Result{HeaderAddr: addr, PayloadCRC32: crc, Wrapped: wrapped}, nil
}

// buildCombined lays header immediately followed by payload into scratch,
// reusing its backing array instead of allocating a fresh buffer per
// append.
func buildCombined(scratch []byte, hdr []byte, payload []byte) []byte {
	need := len(hdr) + len(payload)
	if cap(scratch) < need {
		scratch = make([]byte, need)
	}
	buf := scratch[:need]
	copy(buf, hdr)
	copy(buf[len(hdr):], payload)
	return buf
}

// writeSpan is the low-level, sector- and page-bounded programmer: for
// every sector it touches it erases that sector exactly once before its
// first program call into it, except the sector already holding addr
// when addr is not sector-aligned (that sector is assumed to be the
// active tail, or pre-erased by a previous wrap, per spec.md §4.4 step 4
// and §9's wrap-around note). Within a sector it issues one program call
// per page-bounded chunk.
func writeSpan(g medium.Geometry, cb medium.Callbacks, addr uint32, data []byte) error {
	remain := uint32(len(data))
	if remain == 0 {
		return nil
	}
	offset := uint32(0)

	finishSector := addr%g.SectorSize != 0
	sectorRemain := g.SectorSize - addr%g.SectorSize
	pageRemain := g.PageSize - addr%g.PageSize

	for remain > 0 {
		if addr == g.Length {
			addr = 0
		}

		var sectorChunk uint32
		if remain > sectorRemain {
			sectorChunk = sectorRemain
			remain -= sectorRemain
			sectorRemain = g.SectorSize
		} else {
			sectorChunk = remain
			remain = 0
		}

		if finishSector {
			finishSector = false
		} else {
			if err := cb.EraseSector(g.Base + addr); err != nil {
				return errors.Wrap(err, "append: erase_sector")
			}
		}

		for sectorChunk > 0 {
			var pageChunk uint32
			if sectorChunk > pageRemain {
				pageChunk = pageRemain
				sectorChunk -= pageRemain
				pageRemain = g.PageSize
			} else {
				pageChunk = sectorChunk
				sectorChunk = 0
			}
			if err := cb.Program(g.Base+addr, data[offset:offset+pageChunk], pageChunk); err != nil {
				return errors.Wrap(err, "append: program")
			}
			offset += pageChunk
			addr += pageChunk
		}
	}
	return nil
}
