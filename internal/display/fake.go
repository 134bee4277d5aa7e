package display

// Fake records every frame it is shown.
type Fake struct {
	Frames []Frame
	Closed bool

	// ShowError, if set, is returned by Show after recording the frame.
	ShowError error
}

// Show implements Display.
func (f *Fake) Show(fr Frame) error {
	f.Frames = append(f.Frames, fr)
	return f.ShowError
}

// Close implements Display.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}

// Last returns the most recent frame, or an empty one.
func (f *Fake) Last() Frame {
	if len(f.Frames) == 0 {
		return Frame{}
	}
	return f.Frames[len(f.Frames)-1]
}
