package store

import (
	"flashkv/appender"
	"flashkv/header"
)

// Write appends a new record carrying payload under id, then positions
// the cursor on it - so a Read immediately following a Write always
// succeeds without an intervening Open, per spec.md §4.5.3's immediate-
// read invariant. The previous cursor (if any) becomes the new record's
// back-link.
//
// A nil error means the write landed at the next free address. A
// non-nil error satisfying errors.Is(err, ErrEndOfMedium) means the
// write still succeeded, but had to wrap the log back to address 0 to
// fit - the same soft-failure shape io.EOF uses to mean "succeeded, and
// also here's a boundary you should know about".
func (h *Handle) Write(id uint64, payload []byte) error {
	if !h.ready() {
		return ErrInit
	}
	if len(payload) == 0 {
		return newError(KindArgument, "payload must be nonempty", nil)
	}
	return h.writeRecord(id, h.GetNextAddr(), payload)
}

// WritePart appends one chunk of a logically larger file. pos and
// fullSize describe this chunk's place within that larger whole so
// callers can validate a streamed sequence of parts client-side (pos +
// len(data) must not exceed fullSize); each part still becomes its own
// fully self-describing record on the medium, chained to whatever the
// cursor held before it exactly like Write. Reassembling the logical
// file from its parts - by walking the chain with OptPrevious - is the
// caller's responsibility; nothing in the on-disk header records pos or
// fullSize; nvram_kv.h declares NVRWriteFilePart's signature but its
// body was never part of the retrieved source, so this is this module's
// own reading of that declaration, not a port of existing C.
func (h *Handle) WritePart(id uint64, pos uint32, data []byte, fullSize uint32) error {
	if !h.ready() {
		return ErrInit
	}
	if len(data) == 0 {
		return newError(KindArgument, "data must be nonempty", nil)
	}
	if pos+uint32(len(data)) > fullSize {
		return newError(KindArgument, "pos+len(data) exceeds fullSize", nil)
	}
	return h.writeRecord(id, h.GetNextAddr(), data)
}

func (h *Handle) writeRecord(id uint64, addrHint uint32, payload []byte) error {
	prevAddr := uint32(0)
	if h.cur.found {
		prevAddr = h.cur.addr
	}

	res, err := appender.Append(h.geometry, h.callbacks, h.scratch, h.PageAligned(), addrHint, id, prevAddr, payload)
	if err != nil {
		return newError(KindHW, "write", err)
	}

	h.tryToOpen = true
	h.cur = cursor{
		found:        true,
		id:           id,
		addr:         res.HeaderAddr + uint32(header.Size),
		size:         uint32(len(payload)),
		prevAddr:     prevAddr,
		payloadCRC32: res.PayloadCRC32,
	}

	if res.Wrapped {
		return ErrEndOfMedium
	}
	return nil
}
