// Package gpio provides button and LED access with hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Buttons is one sample of the five input buttons, true = pressed.
type Buttons struct {
	Up     bool
	Down   bool
	Left   bool
	Right  bool
	Select bool
}

// Any reports whether any button is pressed.
func (b Buttons) Any() bool {
	return b.Up || b.Down || b.Left || b.Right || b.Select
}

// Reader reads the button states.
type Reader interface {
	// Read returns the logical button states. Buttons are wired active low
	// to ground; the implementation inverts so that pressed = true.
	Read() (Buttons, error)

	// Close releases GPIO resources.
	Close() error
}

// LED drives the alert LED.
type LED interface {
	Set(on bool) error
	Close() error
}

// Pins are BCM line offsets.
type Pins struct {
	Up, Down, Left, Right, Select int
	LED                           int
}
