// Package logic contains the timing engines of the device: the single
// countdown, the phase sequence runner and the alarm registry.
// This package has NO hardware or OS dependencies and never sleeps.
// Time is always injected: ticks are uint32 milliseconds that wrap at 2^32,
// wall time is a clock.WallTime.
package logic

// EventType identifies an engine event.
type EventType string

const (
	EventCountdownFinished EventType = "COUNTDOWN_FINISHED"
	EventPhaseComplete     EventType = "PHASE_COMPLETE"
	EventSequenceFinished  EventType = "SEQUENCE_FINISHED"
	EventAlarmRinging      EventType = "ALARM_RINGING"
)

// Event is emitted by an engine when something happened that the rest of
// the device may want to react to or publish.
type Event struct {
	Type  EventType
	Ticks uint32

	// Sequence events.
	Timer      string
	Phase      string
	PhaseIndex int
	PhaseCount int

	// Alarm events.
	AlarmIndex int
	Hour       int
	Minute     int

	SoundTrack int
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	CountdownsFinished int
	PhasesCompleted    int
	SequencesFinished  int
	AlarmsRung         int
}

// Add counts events.
func (c *EventCounts) Add(events []Event) {
	for _, e := range events {
		switch e.Type {
		case EventCountdownFinished:
			c.CountdownsFinished++
		case EventPhaseComplete:
			c.PhasesCompleted++
		case EventSequenceFinished:
			c.SequencesFinished++
		case EventAlarmRinging:
			c.AlarmsRung++
		}
	}
}

// Notifier receives the side effects the engines trigger.
type Notifier interface {
	// LocalAlert starts the audio clip and LED flashing, replacing any
	// alert already in progress.
	LocalAlert(track, volume int)
	// StopAlert silences the local alert. Safe to call when idle.
	StopAlert()
	// RemoteNotify pushes a message to the accounts at the given indices.
	RemoteNotify(title, message string, targets []int)
	// NotifyAll pushes a message to every account.
	NotifyAll(title, message string)
}

// Fixed alert parameters.
const (
	// RoutineCompleteTrack is the clip played when a whole sequence ends.
	RoutineCompleteTrack = 2
	// TransitionHoldMs is how long the sequence engine shows a phase
	// change before starting the next phase.
	TransitionHoldMs uint32 = 2000
	// AlarmScanIntervalMs is the minimum spacing of alarm evaluations.
	AlarmScanIntervalMs uint32 = 1000
)

// Push notification texts.
const (
	PushTitle              = "Chrono-Cubo"
	PushAlarmTitle         = "Chrono-Cubo Alarm"
	PushAlarmMessage       = "Time to wake up!"
	PushCountdownMessage   = "Your single timer is complete!"
	PushSequenceMessage    = "Your multi-phase routine has finished!"
	PushPhaseTitleFormat   = "Phase complete: %s"
	PushPhaseMessageFormat = "%s finished (%d/%d) in %s"
)

func elapsedMs(now, since uint32) uint32 {
	return now - since
}

func progressPercent(durationSec, remainingSec uint32) int {
	if durationSec == 0 {
		return 0
	}
	if remainingSec > durationSec {
		return 0
	}
	return int(uint64(durationSec-remainingSec) * 100 / uint64(durationSec))
}
