package app

import (
	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/model"
)

// DefaultTimerName is used when the name prompt is cancelled.
const DefaultTimerName = "New Timer"

// Phase editor fields.
const (
	peName = iota
	peHours
	peMinutes
	peSeconds
	peSound
	peNotify
	peSave
	peCancel
	peFields
)

// New phase defaults.
const (
	defaultPhaseName     = "Phase"
	defaultPhaseDuration = 60
	defaultPhaseSound    = 1
)

// askConfirm moves to the confirmation screen. action runs on yes; either
// answer returns to back.
func (m *Machine) askConfirm(prompt string, back State, action func()) {
	m.confirm = confirmation{prompt: prompt, action: action, back: back}
	m.transitionTo(StateConfirm)
}

func (m *Machine) handleConfirm() {
	dx, _ := m.axes()
	switch {
	case m.in.SelectPressed():
		if m.confirm.action != nil {
			m.confirm.action()
		}
	case dx != 0:
	default:
		return
	}
	back := m.confirm.back
	m.confirm = confirmation{}
	if back == "" {
		back = StateMainMenu
	}
	m.transitionTo(back)
}

// Timer list rows: "+ Create New", one per timer, "< Back".
func (m *Machine) handleTimerList() {
	timers := m.sequence.Timers()
	n := len(timers)
	dx, dy := m.axes()
	m.navigate(dy, n+2)

	sel := m.screen.sel
	isTimer := sel >= 1 && sel <= n

	if dx != 0 && isTimer {
		i := sel - 1
		name := timers[i].Name
		m.askConfirm("Delete "+name+"?", StateTimerList, func() {
			m.sequence.RemoveTimer(i)
			m.saveTimers(m.sequence.Timers())
			logger.InfoKV(m.ctx, "timer deleted", "timer", name)
		})
		return
	}

	if !m.in.SelectPressed() {
		return
	}
	switch {
	case sel == 0:
		m.render()
		name, ok := m.prompt("Timer Name")
		if !ok {
			name = DefaultTimerName
		}
		m.edit = editSession{timer: model.CustomTimer{Name: name}, index: -1, phase: -1}
		m.transitionTo(StatePhaseList)
	case isTimer:
		i := sel - 1
		m.edit = editSession{timer: timers[i].Clone(), index: i, phase: -1}
		m.transitionTo(StatePhaseList)
	default:
		m.transitionTo(StateSettings)
	}
}

// Phase list rows: "+ Add Phase", one per phase, "Save & Exit", "< Back".
// X on a phase deletes it without confirmation.
func (m *Machine) handlePhaseList() {
	phases := m.edit.timer.Phases
	n := len(phases)
	dx, dy := m.axes()
	m.navigate(dy, n+3)

	sel := m.screen.sel
	isPhase := sel >= 1 && sel <= n

	if dx != 0 && isPhase {
		i := sel - 1
		m.edit.timer.Phases = append(phases[:i], phases[i+1:]...)
		if m.screen.sel > 0 {
			m.screen.sel--
		}
		m.dirty = true
		return
	}

	if !m.in.SelectPressed() {
		return
	}
	switch {
	case sel == 0:
		m.edit.phase = -1
		m.edit.field = peName
		m.edit.draftLoaded = false
		m.transitionTo(StatePhaseEditor)
	case isPhase:
		m.edit.phase = sel - 1
		m.edit.field = peName
		m.edit.draftLoaded = false
		m.transitionTo(StatePhaseEditor)
	case sel == n+1:
		m.saveEditedTimer()
		m.transitionTo(StateTimerList)
	default:
		m.transitionTo(StateTimerList)
	}
}

func (m *Machine) saveEditedTimer() {
	t := m.edit.timer.Clone()
	for i := range t.Phases {
		t.Phases[i].Normalize()
	}

	timers := m.sequence.Timers()
	if m.edit.index >= 0 && m.edit.index < len(timers) {
		timers[m.edit.index] = t
	} else {
		timers = append(timers, t)
	}
	m.saveTimers(timers)
	logger.InfoKV(m.ctx, "timer saved", "timer", t.Name, "phases", len(t.Phases))
}

// loadDraft fills the phase editor from the edited phase, or with defaults
// for a new one. A draft already in progress is kept.
func (m *Machine) loadDraft() {
	if m.edit.draftLoaded {
		return
	}
	if i := m.edit.phase; i >= 0 && i < len(m.edit.timer.Phases) {
		m.edit.draft = m.edit.timer.Phases[i].Clone()
	} else {
		m.edit.draft = model.TimerPhase{
			Name:            defaultPhaseName,
			DurationSeconds: defaultPhaseDuration,
			SoundTrack:      defaultPhaseSound,
		}
	}
	m.edit.draftLoaded = true
}

func (m *Machine) handlePhaseEditor() {
	d := &m.edit.draft
	dx, dy := m.axes()
	if dy != 0 {
		m.edit.field = model.WrapAdd(m.edit.field, dy, 0, peFields-1)
		m.dirty = true
	}
	if dx != 0 {
		h, mi, s := splitHMS(d.DurationSeconds)
		switch m.edit.field {
		case peHours:
			h = model.WrapAdd(h, dx, 0, 23)
		case peMinutes:
			mi = model.WrapAdd(mi, dx, 0, 59)
		case peSeconds:
			s = model.WrapAdd(s, dx, 0, 59)
		case peSound:
			d.SoundTrack = model.WrapAdd(d.SoundTrack, dx, model.MinSoundTrack, model.MaxSoundTrack)
		}
		d.DurationSeconds = uint32(h*3600 + mi*60 + s)
		m.dirty = true
	}

	if !m.in.SelectPressed() {
		return
	}
	switch m.edit.field {
	case peName:
		m.render()
		if name, ok := m.prompt("Phase Name"); ok {
			d.Name = name
		}
		m.dirty = true
	case peNotify:
		m.transitionTo(StateNotifyPicker)
	case peCancel:
		m.edit.draftLoaded = false
		m.transitionTo(StatePhaseList)
	default:
		p := d.Clone()
		p.Normalize()
		if i := m.edit.phase; i >= 0 && i < len(m.edit.timer.Phases) {
			m.edit.timer.Phases[i] = p
		} else {
			m.edit.timer.Phases = append(m.edit.timer.Phases, p)
		}
		m.edit.draftLoaded = false
		m.transitionTo(StatePhaseList)
	}
}

// Target picker rows: one per account, "< Done".
func (m *Machine) handleNotifyPicker() {
	n := len(m.notifier.Accounts())
	dx, dy := m.axes()
	m.navigate(dy, n+1)

	if dx < 0 {
		m.transitionTo(StatePhaseEditor)
		return
	}
	if !m.in.SelectPressed() {
		return
	}
	if m.screen.sel < n {
		m.edit.draft.ToggleTarget(m.screen.sel)
		m.dirty = true
		return
	}
	m.transitionTo(StatePhaseEditor)
}

// Account list rows: "+ Add New", one per account, "< Back".
func (m *Machine) handleAccountList() {
	accounts := m.notifier.Accounts()
	n := len(accounts)
	_, dy := m.axes()
	m.navigate(dy, n+2)

	if !m.in.SelectPressed() {
		return
	}
	sel := m.screen.sel
	switch {
	case sel == 0:
		m.transitionTo(StateAccountCreate)
	case sel <= n:
		i := sel - 1
		name := accounts[i].Name
		m.askConfirm("Delete "+name+"?", StateAccountList, func() {
			m.deleteAccount(i)
			logger.InfoKV(m.ctx, "account deleted", "account", name)
		})
	default:
		m.transitionTo(StateSettings)
	}
}

// deleteAccount removes the account at i and renumbers the phase targets
// that pointed past it.
func (m *Machine) deleteAccount(i int) {
	accounts := m.notifier.Accounts()
	if i < 0 || i >= len(accounts) {
		return
	}
	accounts = append(accounts[:i], accounts[i+1:]...)
	m.saveAccounts(accounts)

	timers := m.sequence.Timers()
	if model.RenumberTargets(timers, i) {
		m.saveTimers(timers)
	}
}

// handleAccountCreate prompts for the name and key on entry. Both are
// required; a cancel at either prompt discards the account.
func (m *Machine) handleAccountCreate() {
	m.render()

	name, ok := m.prompt("Account Name")
	if ok {
		var key string
		if key, ok = m.prompt("Account Key"); ok {
			acc := model.PushAccount{Name: name, Key: key}
			if acc.Valid() {
				m.saveAccounts(append(m.notifier.Accounts(), acc))
				logger.InfoKV(m.ctx, "account added", "account", name)
			}
		}
	}
	m.transitionTo(StateAccountList)
}

func splitHMS(total uint32) (h, m, s int) {
	t := int(total)
	return t / 3600, t % 3600 / 60, t % 60
}
