package gpio

import "errors"

// FakeReader is a test double that returns scripted button samples.
type FakeReader struct {
	// Samples contains scripted button states to return.
	// Each call to Read() consumes the next sample.
	Samples []Buttons

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples []Buttons) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeReader) Read() (Buttons, error) {
	if f.ReadError != nil {
		return Buttons{}, f.ReadError
	}

	if len(f.Samples) == 0 {
		return Buttons{}, errors.New("no samples configured")
	}

	i := f.index
	if i >= len(f.Samples) {
		i = len(f.Samples) - 1
	} else {
		f.index++
	}
	sample := f.Samples[i]

	return sample, nil
}

// Push appends samples to the script. They are returned next even if the
// earlier samples were exhausted.
func (f *FakeReader) Push(samples ...Buttons) {
	f.Samples = append(f.Samples, samples...)
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// Reset resets the reader to the beginning of samples.
func (f *FakeReader) Reset() {
	f.index = 0
	f.Closed = false
}

// FakeLED records every Set call.
type FakeLED struct {
	On      bool
	History []bool
	Closed  bool

	// SetError, if set, will be returned by Set()
	SetError error
}

// Set records the new state.
func (l *FakeLED) Set(on bool) error {
	if l.SetError != nil {
		return l.SetError
	}
	l.On = on
	l.History = append(l.History, on)
	return nil
}

// Close marks the LED as closed and off.
func (l *FakeLED) Close() error {
	l.On = false
	l.Closed = true
	return nil
}
