package store

import (
	"hash/crc32"

	"github.com/pkg/errors"
)

// Read copies n bytes of the currently-opened record's payload, starting
// at the in-payload offset pos, into buf. A successful read of the full
// record (pos == 0 and n == the record's size) additionally verifies the
// payload against the CRC32 stored in its header, returning ErrCRC on
// mismatch; partial reads skip verification, since there's no way to
// check a CRC computed over bytes not being read.
func (h *Handle) Read(pos, n uint32, buf []byte) error {
	if !h.ready() {
		return ErrInit
	}
	if !h.cur.found {
		return ErrNotFound
	}
	if n == 0 {
		return newError(KindArgument, "n must be nonzero", nil)
	}
	if uint32(len(buf)) < n {
		return newError(KindArgument, "buf shorter than n", nil)
	}
	if pos+n > h.cur.size {
		return newError(KindArgument, "pos+n beyond the record's payload", nil)
	}

	addr := h.geometry.Base + h.cur.addr + pos
	if err := h.callbacks.Read(addr, buf[:n], n); err != nil {
		return newError(KindHW, "read", errors.Wrap(err, "store"))
	}

	if pos == 0 && n == h.cur.size {
		if crc32.ChecksumIEEE(buf[:n]) != h.cur.payloadCRC32 {
			return ErrCRC
		}
	}
	return nil
}
