package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteThenOpenThenReadRoundTrip(t *testing.T) {
	h, _ := newReadyHandle(t)

	require.NoError(t, h.Write(10, []byte("first")))
	require.NoError(t, h.Write(20, []byte("second-record")))

	size, err := h.Open(20, OptFirstMatch, 4)
	require.NoError(t, err)
	require.Equal(t, uint32(len("second-record")), size)

	buf := make([]byte, size)
	require.NoError(t, h.Read(0, size, buf))
	require.Equal(t, "second-record", string(buf))
}

func TestWriteChainsBackLinkBetweenRecords(t *testing.T) {
	h, _ := newReadyHandle(t)

	require.NoError(t, h.Write(1, []byte("a")))
	firstAddr := h.GetCurrentAddr()

	require.NoError(t, h.Write(2, []byte("b")))

	prev, ok := h.PrevAddr()
	require.True(t, ok)
	require.Equal(t, firstAddr, prev)
}

func TestOpenFirstRecordHasNoPrevAddr(t *testing.T) {
	h, _ := newReadyHandle(t)
	require.NoError(t, h.Write(1, []byte("a")))

	_, ok := h.PrevAddr()
	require.False(t, ok)
}

func TestOpenAnyIDFirstMatchFindsFirstRecord(t *testing.T) {
	h, _ := newReadyHandle(t)
	require.NoError(t, h.Write(5, []byte("one")))
	require.NoError(t, h.Write(6, []byte("two")))

	_, err := h.Open(0, OptAnyID|OptFirstMatch, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(5), h.GetFoundID())
}

func TestOpenMaxIDFindsHighestAscendingID(t *testing.T) {
	h, _ := newReadyHandle(t)
	require.NoError(t, h.Write(1, []byte("a")))
	require.NoError(t, h.Write(2, []byte("b")))
	require.NoError(t, h.Write(3, []byte("c")))

	_, err := h.Open(0, OptMaxID, 4)
	require.NoError(t, err)
	require.Equal(t, uint64(3), h.GetFoundID())
}

func TestOpenUnknownIDReturnsNotFound(t *testing.T) {
	h, _ := newReadyHandle(t)
	require.NoError(t, h.Write(1, []byte("a")))

	_, err := h.Open(999, OptFirstMatch, 4)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestWriteRejectsEmptyPayload(t *testing.T) {
	h, _ := newReadyHandle(t)
	err := h.Write(1, nil)
	require.ErrorIs(t, err, ErrArgument)
}

func TestWritePartValidatesBounds(t *testing.T) {
	h, _ := newReadyHandle(t)
	err := h.WritePart(1, 10, []byte("xy"), 8)
	require.ErrorIs(t, err, ErrArgument)
}

func TestWritePartAppendsAChunk(t *testing.T) {
	h, _ := newReadyHandle(t)
	require.NoError(t, h.WritePart(1, 0, []byte("abcd"), 8))
	require.Equal(t, uint64(1), h.GetFoundID())
}
