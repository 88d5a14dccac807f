package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitOpsUint64(t *testing.T) {
	values := []uint64{0, 1, 0xFF, 0xDEADBEEF, ^uint64(0), 1 << 63}
	for _, v := range values {
		for b := uint(0); b < 64; b++ {
			set := SetBit(v, b)
			require.True(t, CheckBit(set, b))
			require.Equal(t, set, SetBit(set, b), "set must be idempotent")

			cleared := ClearBit(v, b)
			require.False(t, CheckBit(cleared, b))
			require.Equal(t, cleared, ClearBit(cleared, b), "clear must be idempotent")

			require.Equal(t, v, ToggleBit(ToggleBit(v, b), b))
		}
	}
}

func TestBitOpsNarrowWidths(t *testing.T) {
	t.Run("uint8", func(t *testing.T) {
		for b := uint(0); b < 8; b++ {
			require.True(t, CheckBit(SetBit(uint8(0), b), b))
			require.False(t, CheckBit(ClearBit(^uint8(0), b), b))
		}
	})
	t.Run("uint16", func(t *testing.T) {
		for b := uint(0); b < 16; b++ {
			require.True(t, CheckBit(SetBit(uint16(0), b), b))
			require.False(t, CheckBit(ClearBit(^uint16(0), b), b))
		}
	})
	t.Run("uint32", func(t *testing.T) {
		for b := uint(0); b < 32; b++ {
			require.True(t, CheckBit(SetBit(uint32(0), b), b))
			require.False(t, CheckBit(ClearBit(^uint32(0), b), b))
		}
	})
}

func TestExtractBits(t *testing.T) {
	require.Equal(t, uint32(0x3F), ExtractBits(uint32(0xFC000000), 26, 6))
	require.Equal(t, uint32(0x5), ExtractBits(uint32(0xA0_0000), 21, 5))
	require.Equal(t, uint64(0), ExtractBits(uint64(0xFFFF), 0, 0))
	require.Equal(t, uint64(0xFFFF), ExtractBits(uint64(0xFFFF), 0, 64))
	require.Equal(t, uint8(0x3), ExtractBits(uint8(0b0110_0000), 5, 2))
}

func TestClock(t *testing.T) {
	var c Clock
	require.Zero(t, c.Cycles())
	for i := 0; i < 10; i++ {
		c.Tick()
	}
	require.Equal(t, uint64(10), c.Cycles())
}
