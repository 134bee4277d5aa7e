package app

import (
	"github.com/sweeney/chronodesk/internal/clock"
	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/logic"
	"github.com/sweeney/chronodesk/internal/model"
)

type menuItem struct {
	label  string
	target State
}

var mainMenu = []menuItem{
	{"Single Timer", StateCountdownSetup},
	{"Multi-Phase Timer", StateSequenceSelect},
	{"Alarms", StateAlarmList},
	{"Settings", StateSettings},
	{"Time Display", StateClock},
}

var settingsMenu = []menuItem{
	{"Manage Timers", StateTimerList},
	{"Manage Accounts", StateAccountList},
	{"Device Info", StateDeviceInfo},
	{"Back to Main", StateMainMenu},
}

// Countdown setup rows.
const (
	cdMinutes = iota
	cdSeconds
	cdSound
	cdBack
	cdFields
)

// Alarm setup rows.
const (
	alHour = iota
	alMinute
	alSound
	alBack
	alFields
)

// Alarm defaults for a new entry.
const (
	defaultAlarmHour   = 7
	defaultAlarmMinute = 30
	defaultAlarmSound  = 3
)

func (m *Machine) handleMainMenu() {
	_, dy := m.axes()
	if dy != 0 {
		m.mainSel = model.WrapAdd(m.mainSel, dy, 0, len(mainMenu)-1)
		m.dirty = true
		m.transitionTo(StateMainMenu)
	}

	if m.in.SelectPressed() {
		m.transitionTo(mainMenu[m.mainSel].target)
		return
	}

	if !m.countdown.Running() && !m.sequence.Running() &&
		clock.Elapsed(m.now, m.enteredAt) >= IdleTimeoutMs {
		m.transitionTo(StateClock)
	}
}

func (m *Machine) handleClock() {
	if m.in.SelectPressed() {
		m.transitionTo(StateMainMenu)
	}
}

func (m *Machine) handleSettings() {
	_, dy := m.axes()
	m.navigate(dy, len(settingsMenu))
	if m.in.SelectPressed() {
		m.transitionTo(settingsMenu[m.screen.sel].target)
	}
}

func (m *Machine) handleDeviceInfo() {
	dx, _ := m.axes()
	if m.in.SelectPressed() || dx < 0 {
		m.transitionTo(StateSettings)
	}
}

func (m *Machine) handleCountdownSetup() {
	dx, dy := m.axes()
	m.navigate(dy, cdFields)
	if dx != 0 {
		switch m.screen.sel {
		case cdMinutes:
			m.countdown.AdjustMinutes(dx)
		case cdSeconds:
			m.countdown.AdjustSeconds(dx)
		case cdSound:
			m.countdown.AdjustSound(dx)
		}
		m.screen.notice = ""
		m.dirty = true
	}

	if !m.in.SelectPressed() {
		return
	}
	if m.screen.sel == cdBack {
		m.transitionTo(StateMainMenu)
		return
	}
	if m.countdown.Start(m.now) {
		mins, secs, _ := m.countdown.Setup()
		logger.InfoKV(m.ctx, "countdown started", "minutes", mins, "seconds", secs)
		m.transitionTo(StateCountdownRunning)
		return
	}
	m.screen.notice = "Set a duration"
	m.dirty = true
}

func (m *Machine) handleCountdownRunning() []logic.Event {
	events := m.countdown.Tick(m.now)
	if len(events) > 0 {
		logger.InfoKV(m.ctx, "countdown finished")
		m.notifier.NotifyAll(logic.PushTitle, logic.PushCountdownMessage)
		m.transitionTo(StateCountdownFinished)
		return events
	}

	if dx, _ := m.axes(); dx != 0 {
		m.countdown.TogglePause(m.now)
		m.dirty = true
	}
	if m.in.SelectPressed() {
		m.countdown.Reset()
		m.transitionTo(StateMainMenu)
	}
	return nil
}

func (m *Machine) handleCountdownFinished() {
	if m.in.SelectPressed() {
		m.countdown.Reset()
		m.transitionTo(StateMainMenu)
	}
}

func (m *Machine) handleSequenceSelect() {
	dx, dy := m.axes()
	switch {
	case dy > 0:
		m.sequence.SelectNext()
		m.screen.notice = ""
		m.dirty = true
	case dy < 0:
		m.sequence.SelectPrev()
		m.screen.notice = ""
		m.dirty = true
	case dx < 0:
		m.transitionTo(StateMainMenu)
		return
	}

	if !m.in.SelectPressed() {
		return
	}
	if m.sequence.Count() == 0 {
		m.transitionTo(StateMainMenu)
		return
	}
	if m.sequence.Start(m.now) {
		logger.InfoKV(m.ctx, "sequence started", "timer", m.sequence.Current().Name)
		m.transitionTo(StateSequenceRunning)
		return
	}
	m.screen.notice = "No phases"
	m.dirty = true
}

func (m *Machine) handleSequenceRunning() []logic.Event {
	events := m.sequence.Tick(m.now)
	for _, e := range events {
		switch e.Type {
		case logic.EventPhaseComplete:
			logger.InfoKV(m.ctx, "phase complete", "timer", e.Timer, "phase", e.Phase)
		case logic.EventSequenceFinished:
			logger.InfoKV(m.ctx, "sequence finished", "timer", e.Timer)
			m.notifier.NotifyAll(logic.PushTitle, logic.PushSequenceMessage)
			m.transitionTo(StateSequenceFinished)
			return events
		}
	}
	if len(events) > 0 {
		m.dirty = true
	}

	if dx, _ := m.axes(); dx != 0 {
		m.sequence.TogglePause(m.now)
		m.dirty = true
	}
	if m.in.SelectPressed() {
		m.sequence.Reset()
		m.transitionTo(StateMainMenu)
	}
	return events
}

func (m *Machine) handleSequenceFinished() {
	if m.in.SelectPressed() {
		m.sequence.Reset()
		m.transitionTo(StateMainMenu)
	}
}

// Alarm list rows: "+ Add Alarm", one per alarm, "All On", "All Off",
// "< Back".
func (m *Machine) handleAlarmList() {
	n := m.alarms.Count()
	dx, dy := m.axes()
	m.navigate(dy, n+4)

	sel := m.screen.sel
	isAlarm := sel >= 1 && sel <= n

	if dx != 0 && isAlarm {
		i := sel - 1
		a := m.alarms.All()[i]
		m.askConfirm("Delete alarm "+a.String()+"?", StateAlarmList, func() {
			m.alarms.Remove(i)
			m.saveAlarms()
			logger.InfoKV(m.ctx, "alarm deleted", "alarm", a.String())
		})
		return
	}

	if !m.in.SelectPressed() {
		return
	}
	switch {
	case sel == 0:
		m.transitionTo(StateAlarmSetup)
	case isAlarm:
		i := sel - 1
		m.alarms.SetAlarmEnabled(i, !m.alarms.All()[i].Enabled)
		m.saveAlarms()
		m.dirty = true
	case sel == n+1:
		m.alarms.SetEnabled(true)
		m.saveAlarms()
		m.dirty = true
	case sel == n+2:
		m.alarms.SetEnabled(false)
		m.saveAlarms()
		m.dirty = true
	default:
		m.transitionTo(StateMainMenu)
	}
}

func (m *Machine) handleAlarmSetup() {
	dx, dy := m.axes()
	m.navigate(dy, alFields)
	if dx != 0 {
		a := &m.alarmDraft
		switch m.screen.sel {
		case alHour:
			a.Hour = model.WrapAdd(a.Hour, dx, 0, model.MaxHour)
		case alMinute:
			a.Minute = model.WrapAdd(a.Minute, dx, 0, model.MaxMinute)
		case alSound:
			a.SoundTrack = model.WrapAdd(a.SoundTrack, dx, model.MinSoundTrack, model.MaxSoundTrack)
		}
		m.dirty = true
	}

	if !m.in.SelectPressed() {
		return
	}
	if m.screen.sel != alBack {
		a := m.alarmDraft
		if m.alarms.Add(a) {
			m.saveAlarms()
			logger.InfoKV(m.ctx, "alarm added", "alarm", a.String(), "sound", a.SoundTrack)
		}
	}
	m.transitionTo(StateAlarmList)
}

func (m *Machine) handleAlarmRinging() {
	if m.in.SelectPressed() || !m.alarms.Ringing() {
		m.alarms.Acknowledge()
		back := m.ringReturn
		if back == "" || back == StateAlarmRinging || back == StateAccountCreate {
			back = StateMainMenu
		}
		m.ringReturn = ""
		m.transitionTo(back)
	}
}
