// Package header implements the Header Codec (HC) component: the fixed-size
// record header that precedes every payload on the medium, and the
// recognition predicate that tells a valid header apart from an erased
// region or random flash contents.
package header

import (
	"bytes"
	"encoding/binary"
)

// Preamble is the fixed magic value that opens every header.
const Preamble uint32 = 0x1FACADE1

// ErasedByte is the value a NOR-flash cell reads back as after a sector
// erase.
const ErasedByte byte = 0xFF

// Field widths, in the order they appear on the medium.
const (
	preambleSize     = 4
	payloadCRCSize   = 4
	fileIDSize       = 8
	fileIDInvSize    = 8
	dataSizeSize     = 4
	dataSizeInvSize  = 4
	prevAddrSize     = 4
	prevAddrInvSize  = 4

	preambleStart    = 0
	payloadCRCStart  = preambleStart + preambleSize
	fileIDStart      = payloadCRCStart + payloadCRCSize
	fileIDInvStart   = fileIDStart + fileIDSize
	dataSizeStart    = fileIDInvStart + fileIDInvSize
	dataSizeInvStart = dataSizeStart + dataSizeSize
	prevAddrStart    = dataSizeInvStart + dataSizeInvSize
	prevAddrInvStart = prevAddrStart + prevAddrSize
)

// Size is the exact on-medium byte width of a header (40 bytes).
const Size = prevAddrInvStart + prevAddrInvSize

// erasedHeader is a Size-byte buffer of ErasedByte, used to recognize an
// empty region without allocating on every probe.
var erasedHeader = bytes.Repeat([]byte{ErasedByte}, Size)

// Info describes a header that TryDecode recognized as Valid.
type Info struct {
	FileID       uint64
	DataSize     uint32
	PrevAddr     uint32
	PayloadCRC32 uint32
}

// Outcome classifies what TryDecode found at a given offset.
type Outcome int

const (
	// NotAHeader means the recognition predicate failed on non-erased
	// bytes: neither a valid header nor the erase pattern.
	NotAHeader Outcome = iota
	// Empty means the inspected Size bytes are all ErasedByte.
	Empty
	// Valid means the recognition predicate of spec.md §3 held.
	Valid
)

// Emit serializes a header for a record with the given id, payload length,
// back-link and payload CRC. The returned slice is exactly Size bytes.
func Emit(id uint64, payloadLen uint32, prevAddr uint32, payloadCRC uint32) []byte {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint32(buf[preambleStart:], Preamble)
	binary.LittleEndian.PutUint32(buf[payloadCRCStart:], payloadCRC)
	binary.LittleEndian.PutUint64(buf[fileIDStart:], id)
	binary.LittleEndian.PutUint64(buf[fileIDInvStart:], ^id)
	binary.LittleEndian.PutUint32(buf[dataSizeStart:], payloadLen)
	binary.LittleEndian.PutUint32(buf[dataSizeInvStart:], ^payloadLen)
	binary.LittleEndian.PutUint32(buf[prevAddrStart:], prevAddr)
	binary.LittleEndian.PutUint32(buf[prevAddrInvStart:], ^prevAddr)
	return buf
}

// TryDecode inspects the first Size bytes of data against the recognition
// predicate of spec.md §3. data must be at least Size bytes long.
func TryDecode(data []byte) (Info, Outcome) {
	if len(data) < Size {
		return Info{}, NotAHeader
	}
	window := data[:Size]

	preamble := binary.LittleEndian.Uint32(window[preambleStart:])
	id := binary.LittleEndian.Uint64(window[fileIDStart:])
	idInv := binary.LittleEndian.Uint64(window[fileIDInvStart:])
	size := binary.LittleEndian.Uint32(window[dataSizeStart:])
	sizeInv := binary.LittleEndian.Uint32(window[dataSizeInvStart:])
	prev := binary.LittleEndian.Uint32(window[prevAddrStart:])
	prevInv := binary.LittleEndian.Uint32(window[prevAddrInvStart:])

	if preamble == Preamble && id == ^idInv && size != 0 && size == ^sizeInv && prev == ^prevInv {
		return Info{
			FileID:       id,
			DataSize:     size,
			PrevAddr:     prev,
			PayloadCRC32: binary.LittleEndian.Uint32(window[payloadCRCStart:]),
		}, Valid
	}

	if bytes.Equal(window, erasedHeader) {
		return Info{}, Empty
	}
	return Info{}, NotAHeader
}
