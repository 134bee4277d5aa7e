package logic

import (
	"fmt"

	"github.com/sweeney/chronodesk/internal/model"
)

// SequenceState is the lifecycle state of a Sequence.
type SequenceState string

const (
	SequenceSelecting     SequenceState = "SELECTING"
	SequenceRunning       SequenceState = "RUNNING"
	SequenceTransitioning SequenceState = "TRANSITIONING"
	SequenceFinished      SequenceState = "FINISHED"
)

// Sequence runs the phases of a CustomTimer back to back.
type Sequence struct {
	notifier Notifier
	volume   int

	timers   []model.CustomTimer
	selected int

	state      SequenceState
	current    model.CustomTimer
	phase      int
	paused     bool
	startTick  uint32
	pausedAt   uint32
	holdStart  uint32
	remaining  uint32
	phaseTotal uint32
}

// NewSequence creates an engine owning a copy of timers.
func NewSequence(n Notifier, volume int, timers []model.CustomTimer) *Sequence {
	s := &Sequence{notifier: n, volume: volume, state: SequenceSelecting}
	s.SetTimers(timers)
	return s
}

// SetVolume changes the volume used for phase and routine alerts.
func (s *Sequence) SetVolume(v int) {
	s.volume = v
}

// SetTimers replaces the working timer list. The selection is clamped.
func (s *Sequence) SetTimers(timers []model.CustomTimer) {
	s.timers = model.CloneTimers(timers)
	s.clampSelection()
}

// Timers returns a copy of the working timer list.
func (s *Sequence) Timers() []model.CustomTimer {
	return model.CloneTimers(s.timers)
}

// Count returns the number of timers.
func (s *Sequence) Count() int {
	return len(s.timers)
}

// RemoveTimer deletes the timer at i. The selection keeps pointing at the
// same timer when possible and is clamped otherwise.
func (s *Sequence) RemoveTimer(i int) bool {
	if i < 0 || i >= len(s.timers) {
		return false
	}
	s.timers = append(s.timers[:i], s.timers[i+1:]...)
	if i < s.selected {
		s.selected--
	}
	s.clampSelection()
	return true
}

func (s *Sequence) clampSelection() {
	if s.selected >= len(s.timers) {
		s.selected = len(s.timers) - 1
	}
	if s.selected < 0 {
		s.selected = 0
	}
}

// Selected returns the selected index; it is 0 for an empty list.
func (s *Sequence) Selected() int {
	return s.selected
}

// Select sets the selection, clamped to the list.
func (s *Sequence) Select(i int) {
	s.selected = i
	s.clampSelection()
}

// SelectNext moves the selection forward cyclically.
func (s *Sequence) SelectNext() {
	if len(s.timers) == 0 {
		return
	}
	s.selected = (s.selected + 1) % len(s.timers)
}

// SelectPrev moves the selection backward cyclically.
func (s *Sequence) SelectPrev() {
	if len(s.timers) == 0 {
		return
	}
	s.selected = (s.selected - 1 + len(s.timers)) % len(s.timers)
}

// Start runs the selected timer from its first phase. It refuses (returns
// false) when there is nothing schedulable to run.
func (s *Sequence) Start(now uint32) bool {
	if s.state == SequenceRunning || s.state == SequenceTransitioning {
		return false
	}
	if len(s.timers) == 0 || !s.timers[s.selected].Schedulable() {
		return false
	}
	s.current = s.timers[s.selected].Clone()
	s.paused = false
	s.state = SequenceRunning
	s.beginPhase(0, now)
	return true
}

func (s *Sequence) beginPhase(i int, now uint32) {
	s.phase = i
	s.phaseTotal = s.current.Phases[i].DurationSeconds
	s.remaining = s.phaseTotal
	s.startTick = now
}

// Tick advances the running sequence. It returns a phase-complete event for
// each finished phase and a sequence-finished event after the last one.
func (s *Sequence) Tick(now uint32) []Event {
	switch s.state {
	case SequenceTransitioning:
		if elapsedMs(now, s.holdStart) >= TransitionHoldMs {
			s.state = SequenceRunning
			s.beginPhase(s.phase+1, now)
		}
		return nil
	case SequenceRunning:
	default:
		return nil
	}
	if s.paused {
		return nil
	}

	elapsed := elapsedMs(now, s.startTick) / 1000
	if elapsed >= s.phaseTotal {
		s.remaining = 0
	} else {
		s.remaining = s.phaseTotal - elapsed
	}
	if s.remaining > 0 {
		return nil
	}

	p := s.current.Phases[s.phase]
	count := len(s.current.Phases)
	if p.SoundTrack > 0 {
		s.notifier.LocalAlert(p.SoundTrack, s.volume)
	}
	if len(p.NotifyTargets) > 0 {
		s.notifier.RemoteNotify(
			fmt.Sprintf(PushPhaseTitleFormat, p.Name),
			fmt.Sprintf(PushPhaseMessageFormat, p.Name, s.phase+1, count, s.current.Name),
			p.NotifyTargets,
		)
	}

	events := []Event{{
		Type:       EventPhaseComplete,
		Ticks:      now,
		Timer:      s.current.Name,
		Phase:      p.Name,
		PhaseIndex: s.phase,
		PhaseCount: count,
		SoundTrack: p.SoundTrack,
	}}

	if s.phase+1 < count {
		s.state = SequenceTransitioning
		s.holdStart = now
		return events
	}

	s.state = SequenceFinished
	s.notifier.LocalAlert(RoutineCompleteTrack, s.volume)
	return append(events, Event{
		Type:       EventSequenceFinished,
		Ticks:      now,
		Timer:      s.current.Name,
		PhaseIndex: s.phase,
		PhaseCount: count,
		SoundTrack: RoutineCompleteTrack,
	})
}

// Pause freezes the current phase. Ignored while transitioning.
func (s *Sequence) Pause(now uint32) {
	if s.state != SequenceRunning || s.paused {
		return
	}
	s.paused = true
	s.pausedAt = now
}

// Resume continues the current phase from where it was paused.
func (s *Sequence) Resume(now uint32) {
	if s.state != SequenceRunning || !s.paused {
		return
	}
	s.startTick += elapsedMs(now, s.pausedAt)
	s.paused = false
}

// TogglePause pauses or resumes the current phase.
func (s *Sequence) TogglePause(now uint32) {
	if s.paused {
		s.Resume(now)
	} else {
		s.Pause(now)
	}
}

// Reset returns to Selecting and silences any alert. The selection is kept.
func (s *Sequence) Reset() {
	s.state = SequenceSelecting
	s.current = model.CustomTimer{}
	s.phase = 0
	s.paused = false
	s.remaining = 0
	s.phaseTotal = 0
	s.notifier.StopAlert()
}

// State returns the lifecycle state.
func (s *Sequence) State() SequenceState { return s.state }

// Running reports whether a sequence is in progress, including the hold
// between phases.
func (s *Sequence) Running() bool {
	return s.state == SequenceRunning || s.state == SequenceTransitioning
}

// Paused reports whether the current phase is paused.
func (s *Sequence) Paused() bool { return s.paused }

// Current returns the timer being run.
func (s *Sequence) Current() model.CustomTimer { return s.current }

// PhaseIndex returns the index of the current phase.
func (s *Sequence) PhaseIndex() int { return s.phase }

// PhaseCount returns the number of phases in the running timer.
func (s *Sequence) PhaseCount() int { return len(s.current.Phases) }

// PhaseName returns the current phase name, or "" when nothing runs.
func (s *Sequence) PhaseName() string {
	if s.phase < len(s.current.Phases) {
		return s.current.Phases[s.phase].Name
	}
	return ""
}

// NextPhaseName returns the name of the phase after the current one.
func (s *Sequence) NextPhaseName() string {
	if s.phase+1 < len(s.current.Phases) {
		return s.current.Phases[s.phase+1].Name
	}
	return ""
}

// Remaining returns whole seconds left in the current phase.
func (s *Sequence) Remaining() uint32 { return s.remaining }

// Progress returns 0..100 for the current phase.
func (s *Sequence) Progress() int {
	return progressPercent(s.phaseTotal, s.remaining)
}
