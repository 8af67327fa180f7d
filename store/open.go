package store

import (
	"flashkv/header"
	"flashkv/scan"
)

// OpenFlags select how Open picks its starting address and which record
// it settles on among everything it scans, per spec.md §4.5.2.
type OpenFlags uint32

const (
	// OptFromCurrentPos resumes scanning from the cursor's last position
	// instead of restarting from address 0 (or the binary-search midpoint
	// when OptBinarySearch is also set). Ignored while the cursor holds no
	// position: before anything has been written or found, after
	// MoveToStart, and after an Open that found nothing.
	OptFromCurrentPos OpenFlags = 1 << iota
	// OptBinarySearch starts at the medium's midpoint and halves its way
	// toward the front on every empty probe, instead of scanning linearly
	// from address 0. Used to find the tail of a mostly-full log quickly.
	OptBinarySearch
	// OptFirstMatch stops at the first record whose id equals the
	// requested one, rather than continuing to look for a later match.
	OptFirstMatch
	// OptAnyID treats every record as a match regardless of id; combined
	// with OptFirstMatch this opens the very first record encountered.
	OptAnyID
	// OptNearest keeps the record whose id is the largest one strictly
	// less than the requested id, even when a record with the exact id
	// also exists later in the scan.
	OptNearest
	// OptMaxID keeps scanning as long as ids are non-decreasing, settling
	// on the last (highest-id) record of an ascending run.
	OptMaxID
	// OptPrevious starts the scan at the back-link of the current cursor.
	OptPrevious
	// OptNext starts the scan at the tail of the current cursor (the
	// address a write would append at next).
	OptNext
	// OptBackward is a synonym for OptPrevious, carried over from an
	// earlier revision of the header that spelled the same flag two
	// different ways.
	OptBackward
)

// Open scans the log for a record matching id under the given policy
// flags, and positions the cursor on whatever it settles on. id is
// ignored under OptAnyID. emptyPageLimit bounds how many empty pages the
// scan tolerates before giving up and reporting NotFound; under
// OptBinarySearch every empty probe on the way toward address 0 counts
// against that bound too.
//
// On success it returns the opened record's payload size and a nil
// error. ErrEmpty is returned only under OptBinarySearch, when the probes
// reach address 0 without meeting a record before emptyPageLimit runs
// out. ErrNotFound means the scan completed without a match.
func (h *Handle) Open(id uint64, flags OpenFlags, emptyPageLimit uint32) (uint32, error) {
	if !h.ready() {
		return 0, ErrInit
	}

	end := h.geometry.Length
	useBinary := flags&OptBinarySearch != 0

	var start, half uint32
	resume := flags&OptFromCurrentPos != 0 && h.cur.addr != 0

	if !resume {
		if useBinary {
			half = h.geometry.Length / 2
			start = half
		} else {
			start = 0
		}
	} else {
		switch {
		case flags&(OptPrevious|OptBackward) != 0:
			prev, ok := h.PrevAddr()
			if !ok {
				h.tryToOpen = true
				h.cur = cursor{}
				return 0, ErrNotFound
			}
			start = prev
		case flags&OptNext != 0:
			start = h.GetNextAddr()
		default:
			start = h.GetCurrentAddr()
		}
	}

	h.tryToOpen = true
	h.cur = cursor{}

	var fileIDPrev, fileIDMax uint64
	var prevRecord cursor
	var emptyPages uint32
	haveSeenRecord := false
	exit := false

	for start < end && !exit {
		ev, err := scan.ScanPage(h.geometry, h.callbacks, h.scratch, h.geometry.Base+start)
		if err != nil {
			return 0, newError(KindHW, "scan", err)
		}

		switch ev.Kind {
		case scan.Found:
			relStart := ev.AbsoluteStart - h.geometry.Base
			payloadStart := relStart + uint32(header.Size)
			nextStart := relStart + ev.Size
			if h.flags&PageAlign != 0 {
				if filled := nextStart % h.geometry.PageSize; filled != 0 {
					nextStart += h.geometry.PageSize - filled
				}
			}

			thisRecord := cursor{
				found:        true,
				id:           ev.FileID,
				addr:         payloadStart,
				size:         ev.Size - uint32(header.Size),
				prevAddr:     ev.PrevAddr,
				payloadCRC32: ev.PayloadCRC32,
			}

			switch {
			case flags&OptNearest != 0:
				// NEAREST wants the largest id strictly less than the
				// requested one, never an exact match - so it's checked
				// ahead of the exact-id/AnyID branch, and marks the
				// previously-scanned record (fileIDPrev), not this one,
				// once this one's id reaches or passes the target.
				if ev.FileID >= id && haveSeenRecord && fileIDPrev < id {
					h.cur = prevRecord
					exit = true
				}
			case ev.FileID == id || flags&OptAnyID != 0:
				h.cur = thisRecord
				if flags&OptFirstMatch != 0 {
					exit = true
				}
			case flags&OptMaxID != 0:
				if !haveSeenRecord || ev.FileID >= fileIDMax {
					fileIDMax = ev.FileID
					h.cur = thisRecord
				} else {
					exit = true
				}
			}

			fileIDPrev = ev.FileID
			prevRecord = thisRecord
			haveSeenRecord = true
			start = nextStart

		case scan.Empty:
			if emptyPages < emptyPageLimit {
				emptyPages++
			} else {
				exit = true
			}

			if !haveSeenRecord {
				if useBinary {
					if half >= h.geometry.PageSize*2 {
						half /= 2
					}
					switch {
					case start >= half:
						start -= half
					case start == 0:
						return 0, ErrEmpty
					default:
						start = 0
					}
				} else {
					start += h.geometry.PageSize
				}
			} else {
				exit = true
			}

			if h.cur.found {
				exit = true
			}

		case scan.Corrupted:
			start += h.geometry.PageSize

		case scan.EndOfMedium:
			exit = true
		}
	}

	if h.cur.found {
		return h.cur.size, nil
	}
	return 0, ErrNotFound
}
