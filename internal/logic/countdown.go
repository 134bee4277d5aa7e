package logic

import "github.com/sweeney/chronodesk/internal/model"

// CountdownState is the lifecycle state of a Countdown.
type CountdownState string

const (
	CountdownSetup    CountdownState = "SETUP"
	CountdownRunning  CountdownState = "RUNNING"
	CountdownFinished CountdownState = "FINISHED"
)

// Setup ranges of the single countdown.
const (
	MaxCountdownMinutes = 99
	MaxCountdownSeconds = 59
)

// Countdown is a single timer of up to 99:59.
type Countdown struct {
	notifier Notifier
	volume   int

	minutes int
	seconds int
	sound   int

	state     CountdownState
	paused    bool
	startTick uint32
	pausedAt  uint32
	duration  uint32 // seconds
	remaining uint32 // seconds
}

// NewCountdown creates a countdown in Setup at 00:00 with sound track 1.
func NewCountdown(n Notifier, volume int) *Countdown {
	c := &Countdown{notifier: n, volume: volume}
	c.resetSetup()
	return c
}

func (c *Countdown) resetSetup() {
	c.minutes = 0
	c.seconds = 0
	c.sound = model.MinSoundTrack
	c.state = CountdownSetup
	c.paused = false
	c.duration = 0
	c.remaining = 0
}

// SetVolume changes the volume used for the finish alert.
func (c *Countdown) SetVolume(v int) {
	c.volume = v
}

// Configure sets the setup values, clamping each to its range.
func (c *Countdown) Configure(minutes, seconds, sound int) {
	c.minutes = clampInt(minutes, 0, MaxCountdownMinutes)
	c.seconds = clampInt(seconds, 0, MaxCountdownSeconds)
	c.sound = clampInt(sound, model.MinSoundTrack, model.MaxSoundTrack)
}

// AdjustMinutes moves the minutes field by delta, wrapping 99 <-> 0.
func (c *Countdown) AdjustMinutes(delta int) {
	c.minutes = model.WrapAdd(c.minutes, delta, 0, MaxCountdownMinutes)
}

// AdjustSeconds moves the seconds field by delta, wrapping 59 <-> 0.
func (c *Countdown) AdjustSeconds(delta int) {
	c.seconds = model.WrapAdd(c.seconds, delta, 0, MaxCountdownSeconds)
}

// AdjustSound moves the sound track by delta, wrapping 50 <-> 1.
func (c *Countdown) AdjustSound(delta int) {
	c.sound = model.WrapAdd(c.sound, delta, model.MinSoundTrack, model.MaxSoundTrack)
}

// Setup returns the configured minutes, seconds and sound track.
func (c *Countdown) Setup() (minutes, seconds, sound int) {
	return c.minutes, c.seconds, c.sound
}

// Start begins counting down from the configured duration.
// It refuses (returns false) when the duration is zero or the countdown is
// already running.
func (c *Countdown) Start(now uint32) bool {
	if c.state == CountdownRunning {
		return false
	}
	d := uint32(c.minutes*60 + c.seconds)
	if d == 0 {
		return false
	}
	c.duration = d
	c.remaining = d
	c.startTick = now
	c.paused = false
	c.state = CountdownRunning
	return true
}

// Tick updates the remaining time. The returned slice holds the finished
// event the first time the countdown reaches zero and is empty otherwise.
func (c *Countdown) Tick(now uint32) []Event {
	if c.state != CountdownRunning || c.paused {
		return nil
	}

	elapsed := elapsedMs(now, c.startTick) / 1000
	if elapsed >= c.duration {
		c.remaining = 0
	} else {
		c.remaining = c.duration - elapsed
	}

	if c.remaining > 0 {
		return nil
	}

	c.state = CountdownFinished
	c.notifier.LocalAlert(c.sound, c.volume)
	return []Event{{Type: EventCountdownFinished, Ticks: now, SoundTrack: c.sound}}
}

// Pause freezes the countdown. No-op unless running and not paused.
func (c *Countdown) Pause(now uint32) {
	if c.state != CountdownRunning || c.paused {
		return
	}
	c.paused = true
	c.pausedAt = now
}

// Resume continues a paused countdown from where it stopped. The start
// anchor moves forward by the paused interval, so paused time never counts.
func (c *Countdown) Resume(now uint32) {
	if c.state != CountdownRunning || !c.paused {
		return
	}
	c.startTick += elapsedMs(now, c.pausedAt)
	c.paused = false
}

// TogglePause pauses a running countdown or resumes a paused one.
func (c *Countdown) TogglePause(now uint32) {
	if c.paused {
		c.Resume(now)
	} else {
		c.Pause(now)
	}
}

// Reset returns to Setup with default values and silences any alert.
func (c *Countdown) Reset() {
	c.resetSetup()
	c.notifier.StopAlert()
}

// State returns the lifecycle state.
func (c *Countdown) State() CountdownState { return c.state }

// Running reports whether the countdown is running (paused or not).
func (c *Countdown) Running() bool { return c.state == CountdownRunning }

// Paused reports whether a running countdown is paused.
func (c *Countdown) Paused() bool { return c.paused }

// Remaining returns whole seconds left.
func (c *Countdown) Remaining() uint32 { return c.remaining }

// Duration returns the total seconds of the current run.
func (c *Countdown) Duration() uint32 { return c.duration }

// Progress returns 0..100. A zero duration reports 0.
func (c *Countdown) Progress() int {
	return progressPercent(c.duration, c.remaining)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
