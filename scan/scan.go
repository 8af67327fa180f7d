// Package scan implements the Scan Engine (SE): given a start address, it
// walks the log forward one page at a time and classifies what it finds,
// the way lsm/wal's recovery loop walked WAL blocks classifying each
// fragment header in the teacher repository this module was adapted from.
package scan

import (
	"github.com/pkg/errors"

	"flashkv/header"
	"flashkv/medium"
)

// Kind classifies what ScanPage found at addr.
type Kind int

const (
	// Found means a valid header (and therefore a full record) starts
	// somewhere in the scanned page.
	Found Kind = iota
	// Empty means the whole scanned region read back as the erase
	// pattern.
	Empty
	// Corrupted means the region is neither a valid header nor fully
	// erased - a torn write or leftover garbage.
	Corrupted
	// EndOfMedium means addr is too close to the end of the medium for
	// a header to possibly fit.
	EndOfMedium
)

// Event is the result of one ScanPage call.
type Event struct {
	Kind Kind

	// The following are only meaningful when Kind == Found.
	AbsoluteStart uint32 // absolute address of the header
	Size          uint32 // header.Size + DataSize
	FileID        uint64
	PrevAddr      uint32
	PayloadCRC32  uint32
}

// ScanPage reads up to one page starting at the absolute address addr and
// searches it byte-by-byte for a valid header, per spec.md §4.3. Because
// a header never spans a page boundary (the append engine enforces this),
// confining the search to one freshly read page is always enough to find
// any header that starts within it.
func ScanPage(g medium.Geometry, cb medium.Callbacks, scratch []byte, addr uint32) (Event, error) {
	if addr+uint32(header.Size) > g.End() {
		return Event{Kind: EndOfMedium}, nil
	}

	remaining := g.End() - addr
	toRead := g.PageSize
	if remaining < toRead {
		toRead = remaining
	}
	if uint32(len(scratch)) < toRead {
		return Event{}, errors.Errorf("scan: scratch buffer too small: need %d, have %d", toRead, len(scratch))
	}
	buf := scratch[:toRead]
	if err := cb.Read(addr, buf, toRead); err != nil {
		return Event{}, errors.Wrap(err, "scan: read")
	}

	allErased := true
	for offset := uint32(0); offset+uint32(header.Size) <= toRead; offset++ {
		info, outcome := header.TryDecode(buf[offset:])
		switch outcome {
		case header.Valid:
			return Event{
				Kind:          Found,
				AbsoluteStart: addr + offset,
				Size:          uint32(header.Size) + info.DataSize,
				FileID:        info.FileID,
				PrevAddr:      info.PrevAddr,
				PayloadCRC32:  info.PayloadCRC32,
			}, nil
		case header.Empty:
			// This particular window is erased; keep scanning in case a
			// valid header starts a few bytes further in.
		default:
			allErased = false
		}
	}

	if allErased {
		return Event{Kind: Empty}, nil
	}
	return Event{Kind: Corrupted}, nil
}
