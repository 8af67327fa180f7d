package store

import "flashkv/header"

// GetCurrentAddr returns the relative address of the current record's
// header, or 0 if the cursor's payload-start address doesn't leave room
// for a header before it (including when nothing has been found yet).
func (h *Handle) GetCurrentAddr() uint32 {
	if h.cur.addr > uint32(header.Size) {
		return h.cur.addr - uint32(header.Size)
	}
	return 0
}

// GetNextAddr returns the relative address one past the current record -
// where the next record would be appended - page-aligned forward when
// PageAlign is set. Returns 0 if nothing has been found yet.
func (h *Handle) GetNextAddr() uint32 {
	if h.cur.addr == 0 {
		return 0
	}
	addr := h.cur.addr + h.cur.size
	if h.flags&PageAlign != 0 {
		if filled := addr % h.geometry.PageSize; filled != 0 {
			addr += h.geometry.PageSize - filled
		}
	}
	return addr
}

// PrevAddr returns the relative header address of the record the current
// one's back-link points to, and ok=true - or ok=false if the current
// record has no predecessor (PrevAddr == 0, the very first record ever
// appended to this log). This mirrors the C source's NVRGetPrevAddr,
// which used (uint32_t)-1 as its "no such address" sentinel; Go expresses
// the same distinction with an ok bool instead of a magic value.
func (h *Handle) PrevAddr() (uint32, bool) {
	if h.cur.prevAddr == 0 {
		return 0, false
	}
	return h.cur.prevAddr - uint32(header.Size), true
}

// MoveToStart clears the cursor without closing the handle (TryToOpen is
// left set), so a subsequent Open with FROM_CURRENT_POS re-scans from the
// beginning of the medium. The found id is deliberately left alone,
// matching the C source's NVRMoveToStart, which never touched
// FoundFileId.
func (h *Handle) MoveToStart() {
	h.cur.found = false
	h.cur.addr = 0
	h.cur.size = 0
}

// SearchForLastFile scans the whole log from the beginning for the
// highest id written, and reports both that id and the address the next
// Write would land at. This is nvram_kv.h's NVRSearchForLastFile; its
// body wasn't part of the retrieved source, so this implements it as a
// full linear OptMaxID scan plus GetNextAddr, which is exactly what its
// signature (lastId, nextAddr) implies. id is passed as 0 under the
// assumption that real file ids never legitimately collide with it; any
// record with id 0 would otherwise be taken by Open's exact-id branch,
// bypassing the max-id comparison.
func (h *Handle) SearchForLastFile(emptyPageLimit uint32) (lastID uint64, nextAddr uint32, err error) {
	if !h.ready() {
		return 0, 0, ErrInit
	}
	if _, err := h.Open(0, OptMaxID, emptyPageLimit); err != nil {
		return 0, 0, err
	}
	return h.cur.id, h.GetNextAddr(), nil
}
