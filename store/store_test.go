package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"flashkv/internal/simflash"
	"flashkv/medium"
)

func testGeometry() medium.Geometry {
	return medium.Geometry{PageSize: 256, SectorSize: 4096, Base: 0, Length: 65536}
}

func newReadyHandle(t *testing.T) (*Handle, *simflash.Disk) {
	t.Helper()
	g := testGeometry()
	disk := simflash.New(g.Length, g.SectorSize)
	h := New()
	require.NoError(t, h.InitGeometry(g, make([]byte, g.PageSize), 0))
	require.NoError(t, h.InitCallbacks(disk.Callbacks()))
	return h, disk
}

func TestInitGeometryRejectsUndersizedScratch(t *testing.T) {
	h := New()
	g := testGeometry()
	err := h.InitGeometry(g, make([]byte, g.PageSize-1), 0)
	require.ErrorIs(t, err, ErrInit)
}

func TestOperationsRejectedBeforeInit(t *testing.T) {
	h := New()
	_, err := h.Open(1, OptAnyID|OptFirstMatch, 4)
	require.ErrorIs(t, err, ErrInit)

	err = h.Write(1, []byte("x"))
	require.ErrorIs(t, err, ErrInit)

	err = h.Read(0, 1, make([]byte, 1))
	require.ErrorIs(t, err, ErrInit)

	err = h.EraseAll()
	require.ErrorIs(t, err, ErrInit)
}

func TestOpenOnBlankMediumUnderBinarySearchReturnsEmpty(t *testing.T) {
	h, _ := newReadyHandle(t)
	// Eight empty probes (32768 down to 256) come before the probe at
	// address 0, so the empty-page limit must allow at least eight.
	_, err := h.Open(1, OptAnyID|OptFirstMatch|OptBinarySearch, 8)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestOpenOnBlankMediumLinearReturnsNotFound(t *testing.T) {
	h, _ := newReadyHandle(t)
	_, err := h.Open(1, OptAnyID|OptFirstMatch, 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCloseClearsFoundButKeepsCursorForResume(t *testing.T) {
	h, _ := newReadyHandle(t)
	require.NoError(t, h.Write(1, []byte("a")))
	require.NoError(t, h.Write(2, []byte("b")))

	addrBeforeClose := h.GetCurrentAddr()
	require.NoError(t, h.Close(2))

	require.ErrorIs(t, h.Read(0, 1, make([]byte, 1)), ErrNotFound)

	_, err := h.Open(0, OptFromCurrentPos|OptPrevious|OptAnyID|OptFirstMatch, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(1), h.GetFoundID())
	require.NotEqual(t, addrBeforeClose, h.GetCurrentAddr())
}

func TestCloseRejectedBeforeInit(t *testing.T) {
	h := New()
	require.ErrorIs(t, h.Close(1), ErrInit)
}
