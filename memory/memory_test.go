package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewIsZeroFilled(t *testing.T) {
	b := New()
	require.Equal(t, uint16(0), b.Read(0))
	require.Equal(t, uint16(0), b.Read(Size-1))
}

func TestReadWriteRoundTrip(t *testing.T) {
	b := New()
	b.Write(100, 0xBEEF)
	require.Equal(t, uint16(0xBEEF), b.Read(100))
	require.Equal(t, uint16(0), b.Read(101))
}

func TestNewFromImagePadsWithZero(t *testing.T) {
	b := NewFromImage([]uint16{1, 2, 3})
	require.Equal(t, uint16(1), b.Read(0))
	require.Equal(t, uint16(3), b.Read(2))
	require.Equal(t, uint16(0), b.Read(3))
}

func TestSnapshotIsACopy(t *testing.T) {
	b := New()
	b.Write(5, 42)
	snap := b.Snapshot()
	require.Equal(t, uint16(42), snap[5])

	b.Write(5, 99)
	require.Equal(t, uint16(42), snap[5], "snapshot must not alias live memory")
}
