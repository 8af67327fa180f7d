package medium

import "github.com/valyala/bytebufferpool"

// scratchPool pools page-sized scratch buffers across the handles a single
// process may open (one per medium file, for example), so a CLI process
// that juggles several stores doesn't carve out one permanent page-sized
// allocation per handle.
var scratchPool bytebufferpool.Pool

// PooledScratch borrows a zeroed, page-sized buffer from the shared pool.
// The returned release func must be called once the borrowing handle is
// done with it (typically on Close); it is not safe to keep using the
// slice afterwards.
func PooledScratch(pageSize uint32) (buf []byte, release func()) {
	bb := scratchPool.Get()
	bb.Set(make([]byte, pageSize))
	return bb.B, func() { scratchPool.Put(bb) }
}
