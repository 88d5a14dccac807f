package periph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const timerBase = 0xE000_3000

func TestTimerCountsOnlyWhenEnabled(t *testing.T) {
	tm := NewTimer(timerBase, nil)

	tm.Tick()
	tm.Tick()
	v, _ := tm.Read(timerBase + TimerCounter)
	require.Zero(t, v)

	tm.Write(timerBase+TimerControl, TimerEnable)
	tm.Tick()
	tm.Tick()
	v, _ = tm.Read(timerBase + TimerCounter)
	require.Equal(t, uint64(2), v)
}

func TestTimerCounterIsReadOnly(t *testing.T) {
	tm := NewTimer(timerBase, nil)
	tm.Write(timerBase+TimerCounter, 999)
	v, _ := tm.Read(timerBase + TimerCounter)
	require.Zero(t, v)
}

func TestTimerCompareMatchRaisesIrq(t *testing.T) {
	pic := NewPIC(picBase)
	pic.Write(picBase+PicIrqEnable, 1<<IrqTimer)

	tm := NewTimer(timerBase, pic)
	tm.Write(timerBase+TimerCompare, 3)
	tm.Write(timerBase+TimerControl, TimerEnable|TimerIrqEn)

	tm.Tick()
	tm.Tick()
	require.False(t, pic.Pending())
	tm.Tick()
	require.True(t, pic.Pending())
}

func TestTimerAutoReset(t *testing.T) {
	tm := NewTimer(timerBase, nil)
	tm.Write(timerBase+TimerCompare, 2)
	tm.Write(timerBase+TimerControl, TimerEnable|TimerAutoReset)

	tm.Tick()
	tm.Tick() // match, resets
	v, _ := tm.Read(timerBase + TimerCounter)
	require.Zero(t, v)

	tm.Tick()
	v, _ = tm.Read(timerBase + TimerCounter)
	require.Equal(t, uint64(1), v, "counting resumes after reset")
}

func TestTimerWithoutAutoResetRunsPast(t *testing.T) {
	tm := NewTimer(timerBase, nil)
	tm.Write(timerBase+TimerCompare, 2)
	tm.Write(timerBase+TimerControl, TimerEnable)

	for i := 0; i < 5; i++ {
		tm.Tick()
	}
	v, _ := tm.Read(timerBase + TimerCounter)
	require.Equal(t, uint64(5), v)
}
