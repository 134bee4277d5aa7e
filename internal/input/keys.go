// Package input turns raw button samples into the navigation gestures the
// state machine consumes: axis moves with a repeat cooldown and an
// edge-triggered select press.
package input

import (
	"github.com/sweeney/chronodesk/internal/gpio"
)

// Defaults.
const (
	DefaultDebounceMs    uint32 = 20
	DefaultRepeatDelayMs uint32 = 200
)

// Input is the navigation surface of the device.
type Input interface {
	// Poll samples the hardware. Call exactly once per loop tick.
	Poll(now uint32)
	// CanMove reports whether the repeat cooldown has elapsed.
	CanMove() bool
	// AxisX returns -1 (left), 1 (right) or 0. A non-zero result consumes
	// the move and restarts the cooldown.
	AxisX() int
	// AxisY returns -1 (up), 1 (down) or 0, consuming like AxisX.
	AxisY() int
	// SelectPressed reports a new press of the select button, once per press.
	SelectPressed() bool
}

// Keys implements Input on a gpio.Reader.
type Keys struct {
	reader   gpio.Reader
	debounce uint32
	repeat   uint32

	up, down, left, right, sel channel

	now        uint32
	lastMove   uint32
	moved      bool
	selPending bool
	lastErr    error
}

// NewKeys wraps r. Zero durations select the defaults.
func NewKeys(r gpio.Reader, debounceMs, repeatDelayMs uint32) *Keys {
	if debounceMs == 0 {
		debounceMs = DefaultDebounceMs
	}
	if repeatDelayMs == 0 {
		repeatDelayMs = DefaultRepeatDelayMs
	}
	return &Keys{reader: r, debounce: debounceMs, repeat: repeatDelayMs}
}

// Poll implements Input. A failed read leaves the previous state in place;
// the error is available from Err.
func (k *Keys) Poll(now uint32) {
	k.now = now

	b, err := k.reader.Read()
	k.lastErr = err
	if err != nil {
		return
	}

	k.up.process(b.Up, now, k.debounce)
	k.down.process(b.Down, now, k.debounce)
	k.left.process(b.Left, now, k.debounce)
	k.right.process(b.Right, now, k.debounce)
	if k.sel.process(b.Select, now, k.debounce) && k.sel.stable {
		k.selPending = true
	}

	// releasing every direction re-arms immediate movement
	if !k.up.stable && !k.down.stable && !k.left.stable && !k.right.stable {
		k.moved = false
	}
}

// Err returns the error of the last Poll.
func (k *Keys) Err() error {
	return k.lastErr
}

// Held returns the debounced button states.
func (k *Keys) Held() gpio.Buttons {
	return gpio.Buttons{
		Up:     k.up.stable,
		Down:   k.down.stable,
		Left:   k.left.stable,
		Right:  k.right.stable,
		Select: k.sel.stable,
	}
}

// CanMove implements Input.
func (k *Keys) CanMove() bool {
	return !k.moved || k.now-k.lastMove >= k.repeat
}

// AxisX implements Input.
func (k *Keys) AxisX() int {
	return k.consume(axis(k.left.stable, k.right.stable))
}

// AxisY implements Input.
func (k *Keys) AxisY() int {
	return k.consume(axis(k.up.stable, k.down.stable))
}

func (k *Keys) consume(v int) int {
	if v == 0 || !k.CanMove() {
		return 0
	}
	k.moved = true
	k.lastMove = k.now
	return v
}

// SelectPressed implements Input.
func (k *Keys) SelectPressed() bool {
	if k.selPending {
		k.selPending = false
		return true
	}
	return false
}

func axis(neg, pos bool) int {
	switch {
	case neg && !pos:
		return -1
	case pos && !neg:
		return 1
	default:
		return 0
	}
}

// channel debounces a single button.
type channel struct {
	stable       bool
	pending      bool
	hasPending   bool
	pendingSince uint32
}

// process feeds one raw sample and reports whether the stable state changed.
// A button starts released, so no baseline period is needed.
func (c *channel) process(raw bool, now, debounce uint32) bool {
	if raw == c.stable {
		c.hasPending = false
		return false
	}

	if !c.hasPending || c.pending != raw {
		c.pending = raw
		c.hasPending = true
		c.pendingSince = now
		if debounce > 0 {
			return false
		}
	}

	if now-c.pendingSince >= debounce {
		c.stable = raw
		c.hasPending = false
		return true
	}
	return false
}
