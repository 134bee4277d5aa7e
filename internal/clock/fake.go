package clock

// Fake is a manually driven Source for tests.
type Fake struct {
	Wall        WallTime
	Unavailable bool
	Tick        uint32

	subMs int
}

// NewFake returns a Fake at the given wall time and tick.
func NewFake(w WallTime, tick uint32) *Fake {
	return &Fake{Wall: w, Tick: tick}
}

// Now implements Source.
func (f *Fake) Now() (WallTime, bool) {
	if f.Unavailable {
		return WallTime{}, false
	}
	return f.Wall, true
}

// Ticks implements Source.
func (f *Fake) Ticks() uint32 {
	return f.Tick
}

// Advance moves both the tick counter and the wall clock forward by ms.
func (f *Fake) Advance(ms uint32) {
	f.Tick += ms
	total := f.subMs + int(ms)
	f.subMs = total % 1000
	sec := (f.Wall.SecondOfDay() + total/1000) % (24 * 3600)
	f.Wall = WallTime{Hour: sec / 3600, Minute: sec / 60 % 60, Second: sec % 60}
}
