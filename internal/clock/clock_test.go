package clock

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestElapsedAcrossWrap(t *testing.T) {
	t.Parallel()

	since := uint32(math.MaxUint32 - 499)
	now := since + 1500 // wraps
	require.Less(t, now, since)
	require.Equal(t, uint32(1500), Elapsed(now, since))
	require.Equal(t, uint32(0), Elapsed(since, since))
}

func TestFakeAdvance(t *testing.T) {
	t.Parallel()

	f := NewFake(WallTime{Hour: 23, Minute: 59, Second: 59}, 100)
	for i := 0; i < 99; i++ {
		f.Advance(10)
	}
	require.Equal(t, WallTime{Hour: 23, Minute: 59, Second: 59}, f.Wall)

	f.Advance(10)
	require.Equal(t, WallTime{}, f.Wall)
	require.Equal(t, uint32(1100), f.Ticks())

	f.Unavailable = true
	_, ok := f.Now()
	require.False(t, ok)
}

func TestSystemOffsetAndAvailability(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 22, 30, 15, 0, time.UTC)
	s := NewSystem(2 * time.Hour)
	s.origin = base
	s.now = func() time.Time { return base.Add(1500 * time.Millisecond) }

	w, ok := s.Now()
	require.True(t, ok)
	require.Equal(t, WallTime{Hour: 0, Minute: 30, Second: 16}, w)
	require.Equal(t, uint32(1500), s.Ticks())

	s.now = func() time.Time { return time.Date(1970, 1, 1, 0, 0, 5, 0, time.UTC) }
	_, ok = s.Now()
	require.False(t, ok)
}

func TestWallTimeString(t *testing.T) {
	t.Parallel()

	w := WallTime{Hour: 7, Minute: 5, Second: 9}
	require.Equal(t, "07:05:09", w.String())
	require.Equal(t, 425, w.MinuteOfDay())
}
