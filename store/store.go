// Package store implements the Store Facade (SF): the handle applications
// actually program against. It owns the geometry, the callbacks, the
// scratch buffer and the cursor, and combines the Scan Engine and Append
// Engine according to the caller's open-flags. Grounded in the shape of
// the teacher repository's lsm.go (a single struct owning every
// sub-component plus a mutex-free lifecycle of init -> operate -> close),
// adapted to the single-threaded, caller-synchronized model spec.md §5
// mandates for this component - there is deliberately no internal mutex
// here, unlike the teacher's LSM, BlockManager and caches: the spec
// requires operations on one handle never be invoked concurrently with
// each other, and leaves serialization to the integrator.
package store

import (
	"flashkv/internal/flashlog"
	"flashkv/medium"
)

// Flags are store-wide behaviors fixed at init_geometry time.
type Flags uint32

const (
	// PageAlign makes every new record start on a page boundary, and
	// makes scans advance to the next page boundary after each hit.
	PageAlign Flags = 1 << iota
)

// cursor mirrors the C source's FoundFileId/FoundFileAddr/FoundFileSize/
// FileAddrPrev/CRC32Temp/FileFound fields - "the record most recently
// positioned at by a search", per spec.md §3.
type cursor struct {
	found        bool
	id           uint64
	addr         uint32 // relative address of the record's payload start
	size         uint32 // payload size
	prevAddr     uint32 // back-link: previous record's payload-start address
	payloadCRC32 uint32
}

// Handle is one store instance. The zero value is not ready for use;
// construct one with New and call InitGeometry then InitCallbacks before
// any other operation.
type Handle struct {
	geometry medium.Geometry
	flags    Flags

	callbacks    medium.Callbacks
	callbacksSet bool

	scratch []byte

	geometryReady bool
	tryToOpen     bool
	cur           cursor

	log *flashlog.Logger
}

// New allocates an unready Handle. Callers must still invoke InitGeometry
// and InitCallbacks, per spec.md §4.5.1's two-step init gate.
func New() *Handle {
	return &Handle{log: flashlog.New("store")}
}

// ready reports whether both init steps have completed.
func (h *Handle) ready() bool {
	return h.geometryReady && h.callbacksSet
}

// InitGeometry validates and records the medium's geometry, feature flags
// and scratch buffer. scratch must be at least geometry.PageSize bytes;
// it is borrowed for the handle's lifetime, never copied or reallocated
// by this package.
func (h *Handle) InitGeometry(g medium.Geometry, scratch []byte, flags Flags) error {
	if err := g.Validate(); err != nil {
		return newError(KindInit, "invalid geometry", err)
	}
	if uint32(len(scratch)) < g.PageSize {
		return newError(KindInit, "scratch buffer smaller than one page", nil)
	}
	h.geometry = g
	h.scratch = scratch
	h.flags = flags
	h.cur = cursor{}
	h.tryToOpen = false
	h.geometryReady = true
	h.log.Debugf("geometry initialized: page=%d sector=%d base=%d length=%d flags=%d", g.PageSize, g.SectorSize, g.Base, g.Length, flags)
	return nil
}

// InitCallbacks records the three medium callbacks. Both InitGeometry and
// InitCallbacks must run, in either order, before any other operation is
// accepted.
func (h *Handle) InitCallbacks(cb medium.Callbacks) error {
	if err := cb.Validate(); err != nil {
		return newError(KindInit, "invalid callbacks", err)
	}
	h.callbacks = cb
	h.callbacksSet = true
	return nil
}

// GetFoundID returns the id of the record the cursor currently points at,
// or 0 if nothing has been found or written yet.
func (h *Handle) GetFoundID() uint64 {
	return h.cur.id
}

// PageAligned reports whether the PageAlign flag is set on this handle.
func (h *Handle) PageAligned() bool {
	return h.flags&PageAlign != 0
}

// Close clears TryToOpen and the found flag, per spec.md §4.5.5. The rest
// of the cursor (addr/size/prevAddr) is left alone, so a later Open with
// OptFromCurrentPos still resumes from this handle's current position;
// id is accepted to match the original operation's signature but does
// not affect behavior.
func (h *Handle) Close(id uint64) error {
	if !h.ready() {
		return ErrInit
	}
	h.tryToOpen = false
	h.cur.found = false
	return nil
}
