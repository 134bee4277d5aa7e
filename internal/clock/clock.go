// Package clock provides the two time sources the control core needs: a
// wall clock for alarm matching and a wrapping millisecond tick counter for
// interval arithmetic.
package clock

import (
	"fmt"
	"time"
)

// WallTime is a local time of day.
type WallTime struct {
	Hour   int
	Minute int
	Second int
}

// MinuteOfDay returns minutes since midnight.
func (w WallTime) MinuteOfDay() int {
	return w.Hour*60 + w.Minute
}

// SecondOfDay returns seconds since midnight.
func (w WallTime) SecondOfDay() int {
	return w.MinuteOfDay()*60 + w.Second
}

func (w WallTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", w.Hour, w.Minute, w.Second)
}

// Source supplies wall time and ticks.
type Source interface {
	// Now returns the wall time; ok is false when the RTC is unavailable.
	Now() (t WallTime, ok bool)
	// Ticks returns milliseconds since an arbitrary origin, wrapping at 2^32.
	Ticks() uint32
}

// Elapsed returns the milliseconds from since to now, correct across a
// single wrap of the counter.
func Elapsed(now, since uint32) uint32 {
	return now - since
}

// System reads the host clock shifted by a fixed UTC offset.
type System struct {
	offset time.Duration
	origin time.Time
	now    func() time.Time
}

// NewSystem returns a System clock. The tick origin is the construction time.
func NewSystem(utcOffset time.Duration) *System {
	return &System{offset: utcOffset, origin: time.Now(), now: time.Now}
}

// Now implements Source. The host clock is treated as unavailable until it
// has been set past 2020, which is how an unsynchronised board reports.
func (s *System) Now() (WallTime, bool) {
	t := s.now().UTC()
	if t.Year() < 2020 {
		return WallTime{}, false
	}
	t = t.Add(s.offset)
	return WallTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, true
}

// Ticks implements Source.
func (s *System) Ticks() uint32 {
	return uint32(s.now().Sub(s.origin).Milliseconds())
}
