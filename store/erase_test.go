package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flashkv/scan"
)

func TestEraseAllResetsMediumAndCursor(t *testing.T) {
	h, disk := newReadyHandle(t)
	require.NoError(t, h.Write(1, []byte("data")))

	require.NoError(t, h.EraseAll())
	require.Equal(t, uint64(0), h.GetFoundID())

	ev, err := scan.ScanPage(h.geometry, disk.Callbacks(), h.scratch, h.geometry.Base)
	require.NoError(t, err)
	require.Equal(t, scan.Empty, ev.Kind)
}

func TestEraseAllRequiresInit(t *testing.T) {
	h := New()
	require.ErrorIs(t, h.EraseAll(), ErrInit)
}
