package input

// Fake is a scripted Input and Prompter for tests. Set the fields before
// Tick; moves and presses are consumed by the first reader.
type Fake struct {
	X, Y     int
	Pressed  bool
	Blocked  bool
	Polls    int
	LastPoll uint32

	// Answers are returned by Prompt in order. Once exhausted Prompt
	// reports a cancel.
	Answers []string
	Titles  []string
}

// Poll implements Input.
func (f *Fake) Poll(now uint32) {
	f.Polls++
	f.LastPoll = now
}

// CanMove implements Input.
func (f *Fake) CanMove() bool {
	return !f.Blocked
}

// AxisX implements Input.
func (f *Fake) AxisX() int {
	if f.Blocked {
		return 0
	}
	v := f.X
	f.X = 0
	return v
}

// AxisY implements Input.
func (f *Fake) AxisY() int {
	if f.Blocked {
		return 0
	}
	v := f.Y
	f.Y = 0
	return v
}

// SelectPressed implements Input.
func (f *Fake) SelectPressed() bool {
	v := f.Pressed
	f.Pressed = false
	return v
}

// Prompt implements Prompter.
func (f *Fake) Prompt(title string) (string, bool) {
	f.Titles = append(f.Titles, title)
	if len(f.Answers) == 0 {
		return "", false
	}
	a := f.Answers[0]
	f.Answers = f.Answers[1:]
	if a == "" {
		return "", false
	}
	return a, true
}
