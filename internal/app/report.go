package app

// Report is a read-only snapshot of the machine for the status page.
type Report struct {
	State    State `json:"state"`
	Previous State `json:"previous"`

	Countdown CountdownReport `json:"countdown"`
	Sequence  SequenceReport  `json:"sequence"`
	Alarms    AlarmReport     `json:"alarms"`

	Timers   int `json:"timers"`
	Accounts int `json:"accounts"`
}

type CountdownReport struct {
	State     string `json:"state"`
	Remaining uint32 `json:"remaining_s"`
	Paused    bool   `json:"paused"`
}

type SequenceReport struct {
	State      string `json:"state"`
	Timer      string `json:"timer,omitempty"`
	Phase      string `json:"phase,omitempty"`
	PhaseNo    int    `json:"phase_no,omitempty"`
	PhaseCount int    `json:"phase_count,omitempty"`
	Remaining  uint32 `json:"remaining_s"`
	Paused     bool   `json:"paused"`
}

type AlarmReport struct {
	Count   int    `json:"count"`
	Ringing bool   `json:"ringing"`
	Next    string `json:"next"`
}

// Report returns the current snapshot. It must be called from the loop
// goroutine.
func (m *Machine) Report() Report {
	r := Report{
		State:    m.state,
		Previous: m.previous,
		Countdown: CountdownReport{
			State:     string(m.countdown.State()),
			Remaining: m.countdown.Remaining(),
			Paused:    m.countdown.Paused(),
		},
		Sequence: SequenceReport{
			State:     string(m.sequence.State()),
			Remaining: m.sequence.Remaining(),
			Paused:    m.sequence.Paused(),
		},
		Alarms: AlarmReport{
			Count:   m.alarms.Count(),
			Ringing: m.alarms.Ringing(),
			Next:    m.nextAlarmLine(),
		},
		Timers:   m.sequence.Count(),
		Accounts: len(m.notifier.Accounts()),
	}

	if m.sequence.Running() {
		r.Sequence.Timer = m.sequence.Current().Name
		r.Sequence.Phase = m.sequence.PhaseName()
		r.Sequence.PhaseNo = m.sequence.PhaseIndex() + 1
		r.Sequence.PhaseCount = m.sequence.PhaseCount()
	}

	return r
}
