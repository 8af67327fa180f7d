package store

import "github.com/pkg/errors"

// EraseAll erases every sector of the medium and resets the cursor, as
// if the handle had just been freshly initialized over blank media.
// Sectors are erased in address order starting from the geometry's base;
// a failure partway through leaves the already-erased prefix erased and
// returns the callback's error wrapped as KindHW.
func (h *Handle) EraseAll() error {
	if !h.ready() {
		return ErrInit
	}
	for addr := h.geometry.Base; addr < h.geometry.End(); addr += h.geometry.SectorSize {
		if err := h.callbacks.EraseSector(addr); err != nil {
			return newError(KindHW, "erase_sector", errors.Wrap(err, "store"))
		}
	}
	h.cur = cursor{}
	h.tryToOpen = false
	return nil
}
