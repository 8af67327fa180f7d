package scan

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/require"

	"flashkv/header"
	"flashkv/internal/simflash"
	"flashkv/medium"
)

func testGeometry() medium.Geometry {
	return medium.Geometry{PageSize: 256, SectorSize: 4096, Base: 0, Length: 65536}
}

func writeRecord(t *testing.T, disk *simflash.Disk, cb medium.Callbacks, addr uint32, id uint64, payload []byte, prev uint32) {
	t.Helper()
	buf := header.Emit(id, uint32(len(payload)), prev, crc32.ChecksumIEEE(payload))
	buf = append(buf, payload...)
	require.NoError(t, cb.Program(addr, buf, uint32(len(buf))))
}

func TestScanPageFindsValidRecord(t *testing.T) {
	g := testGeometry()
	disk := simflash.New(g.Length, g.SectorSize)
	cb := disk.Callbacks()
	writeRecord(t, disk, cb, 0, 0x42, []byte("HELLO"), 0)

	scratch := make([]byte, g.PageSize)
	ev, err := ScanPage(g, cb, scratch, 0)
	require.NoError(t, err)
	require.Equal(t, Found, ev.Kind)
	require.Equal(t, uint64(0x42), ev.FileID)
	require.Equal(t, uint32(0), ev.AbsoluteStart)
	require.Equal(t, uint32(header.Size)+5, ev.Size)
}

func TestScanPageReportsEmpty(t *testing.T) {
	g := testGeometry()
	disk := simflash.New(g.Length, g.SectorSize)
	cb := disk.Callbacks()

	scratch := make([]byte, g.PageSize)
	ev, err := ScanPage(g, cb, scratch, 0)
	require.NoError(t, err)
	require.Equal(t, Empty, ev.Kind)
}

func TestScanPageReportsCorruptedOnTornWrite(t *testing.T) {
	g := testGeometry()
	disk := simflash.New(g.Length, g.SectorSize)
	cb := disk.Callbacks()
	writeRecord(t, disk, cb, 0, 7, []byte{0xDE, 0xAD, 0xBE, 0xEF}, 0)
	// Corrupt the inverted FileId field: leaves neither a valid header
	// nor an all-erased region, simulating a torn write.
	disk.FlipBit(header.Size-24, 0x01)

	scratch := make([]byte, g.PageSize)
	ev, err := ScanPage(g, cb, scratch, 0)
	require.NoError(t, err)
	require.Equal(t, Corrupted, ev.Kind)
}

func TestScanPageReportsEndOfMedium(t *testing.T) {
	g := testGeometry()
	disk := simflash.New(g.Length, g.SectorSize)
	cb := disk.Callbacks()

	scratch := make([]byte, g.PageSize)
	ev, err := ScanPage(g, cb, scratch, g.Length-uint32(header.Size)+1)
	require.NoError(t, err)
	require.Equal(t, EndOfMedium, ev.Kind)
}

func TestScanPageRejectsZeroDataSize(t *testing.T) {
	g := testGeometry()
	disk := simflash.New(g.Length, g.SectorSize)
	cb := disk.Callbacks()
	buf := header.Emit(1, 1, 0, 0) // nonzero size at Emit time
	require.NoError(t, cb.Program(0, buf, uint32(len(buf))))
	// Flip DataSize down to zero directly on the medium without touching
	// DataSizeInv, which the recognition predicate must then reject.
	disk.FlipBit(dataSizeOffset(), 0x01)

	scratch := make([]byte, g.PageSize)
	ev, err := ScanPage(g, cb, scratch, 0)
	require.NoError(t, err)
	require.NotEqual(t, Found, ev.Kind)
}

func dataSizeOffset() uint32 {
	return uint32(header.Size) - 16
}
