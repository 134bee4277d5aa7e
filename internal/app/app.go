// Package app is the screen state machine of the device. It owns the three
// timing engines, routes input to the active screen and decides which screen
// comes next.
//
// Everything runs on the caller's goroutine, one Tick per loop iteration.
// Only the text prompt blocks; every other wait, including delete
// confirmations and the hold between phases, is a state.
package app

import (
	"context"

	"github.com/sweeney/chronodesk/internal/clock"
	"github.com/sweeney/chronodesk/internal/display"
	"github.com/sweeney/chronodesk/internal/input"
	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/logic"
	"github.com/sweeney/chronodesk/internal/model"
	"github.com/sweeney/chronodesk/internal/store"
)

// State identifies a screen.
type State string

const (
	StateMainMenu          State = "MAIN_MENU"
	StateClock             State = "CLOCK"
	StateCountdownSetup    State = "COUNTDOWN_SETUP"
	StateCountdownRunning  State = "COUNTDOWN_RUNNING"
	StateCountdownFinished State = "COUNTDOWN_FINISHED"
	StateSequenceSelect    State = "SEQUENCE_SELECT"
	StateSequenceRunning   State = "SEQUENCE_RUNNING"
	StateSequenceFinished  State = "SEQUENCE_FINISHED"
	StateAlarmList         State = "ALARM_LIST"
	StateAlarmSetup        State = "ALARM_SETUP"
	StateAlarmRinging      State = "ALARM_RINGING"
	StateSettings          State = "SETTINGS"
	StateTimerList         State = "TIMER_LIST"
	StatePhaseList         State = "PHASE_LIST"
	StatePhaseEditor       State = "PHASE_EDITOR"
	StateNotifyPicker      State = "NOTIFY_PICKER"
	StateAccountList       State = "ACCOUNT_LIST"
	StateAccountCreate     State = "ACCOUNT_CREATE"
	StateConfirm           State = "CONFIRM"
	StateDeviceInfo        State = "DEVICE_INFO"
)

// IdleTimeoutMs is how long the main menu waits before showing the clock.
const IdleTimeoutMs uint32 = 5000

// Redraw cadences of the screens that change without input.
const (
	runningRedrawMs uint32 = 200
	clockRedrawMs   uint32 = 250
	ringingRedrawMs uint32 = 500
)

// Dispatcher is the notification side of the device as the machine sees
// it: the engine alert entry points plus the LED cadence and account list.
type Dispatcher interface {
	logic.Notifier
	Poll(now uint32)
	SetAccounts(accounts []model.PushAccount)
	Accounts() []model.PushAccount
}

// Config holds the collaborators of a Machine.
type Config struct {
	Clock    clock.Source
	Input    input.Input
	Prompter input.Prompter // may be nil; prompts then count as cancelled
	Display  display.Display
	Notifier Dispatcher
	Store    *store.Store
	Volume   int
	// DeviceURL is shown as text and QR code on the device info screen.
	DeviceURL string
}

// screenCtx is the per-state scratch space. It is zeroed on every
// transition to a different state.
type screenCtx struct {
	sel    int
	notice string
}

// editSession is the timer being edited. It spans the phase list, the phase
// editor and the target picker.
type editSession struct {
	timer model.CustomTimer
	index int // -1 for a new timer

	phase       int // -1 for a new phase
	field       int
	draft       model.TimerPhase
	draftLoaded bool
}

// confirmation is a pending yes/no question.
type confirmation struct {
	prompt string
	action func()
	back   State
}

// Machine is the application state machine.
type Machine struct {
	ctx       context.Context
	clock     clock.Source
	in        input.Input
	prompter  input.Prompter
	disp      display.Display
	notifier  Dispatcher
	store     *store.Store
	deviceURL string

	countdown *logic.Countdown
	sequence  *logic.Sequence
	alarms    *logic.AlarmRegistry

	state      State
	previous   State
	enteredAt  uint32
	ringReturn State
	screen     screenCtx
	mainSel    int
	edit       editSession
	alarmDraft model.Alarm
	confirm    confirmation

	now    uint32
	wall   clock.WallTime
	wallOK bool

	dirty    bool
	lastDraw uint32
}

// New builds the machine and loads the saved collections into the engines.
// Preset timers are saved on first start.
func New(ctx context.Context, cfg Config) *Machine {
	ctx = logger.WithName(ctx, "app")

	m := &Machine{
		ctx:       ctx,
		clock:     cfg.Clock,
		in:        cfg.Input,
		prompter:  cfg.Prompter,
		disp:      cfg.Display,
		notifier:  cfg.Notifier,
		store:     cfg.Store,
		deviceURL: cfg.DeviceURL,
	}

	timers, seeded := cfg.Store.LoadTimers(ctx)
	if seeded {
		if err := cfg.Store.SaveTimers(ctx, timers); err != nil {
			logger.WarnKV(ctx, "save preset timers", "error", err)
		}
	}
	m.countdown = logic.NewCountdown(cfg.Notifier, cfg.Volume)
	m.sequence = logic.NewSequence(cfg.Notifier, cfg.Volume, timers)
	m.alarms = logic.NewAlarmRegistry(cfg.Notifier, cfg.Volume)
	m.alarms.Load(cfg.Store.LoadAlarms(ctx))
	cfg.Notifier.SetAccounts(cfg.Store.LoadAccounts(ctx))

	logger.InfoKV(ctx, "loaded",
		"timers", m.sequence.Count(),
		"alarms", m.alarms.Count(),
		"accounts", len(cfg.Notifier.Accounts()),
		"seeded", seeded)

	m.now = cfg.Clock.Ticks()
	m.state = StateMainMenu
	m.previous = StateMainMenu
	m.enteredAt = m.now
	m.dirty = true

	return m
}

// Tick runs one iteration: input, alarm scan, the current screen, redraw
// and the LED cadence. It returns the engine events of this iteration.
func (m *Machine) Tick() []logic.Event {
	m.now = m.clock.Ticks()
	m.wall, m.wallOK = m.clock.Now()
	m.in.Poll(m.now)

	var events []logic.Event
	if ev := m.alarms.Tick(m.wall, m.wallOK, m.now); len(ev) > 0 {
		events = append(events, ev...)
		a := ev[0]
		logger.InfoKV(m.ctx, "alarm ringing", "alarm", model.Alarm{Hour: a.Hour, Minute: a.Minute}.String())
		if m.state != StateAlarmRinging {
			m.ringReturn = m.state
			m.transitionTo(StateAlarmRinging)
		} else {
			m.dirty = true
		}
	}
	for _, a := range m.alarms.Missed() {
		logger.WarnKV(m.ctx, "alarm skipped, loop was blocked across its minute", "alarm", a.String())
	}

	events = append(events, m.handle()...)
	m.redraw()
	m.notifier.Poll(m.now)

	return events
}

func (m *Machine) handle() []logic.Event {
	switch m.state {
	case StateMainMenu:
		m.handleMainMenu()
	case StateClock:
		m.handleClock()
	case StateCountdownSetup:
		m.handleCountdownSetup()
	case StateCountdownRunning:
		return m.handleCountdownRunning()
	case StateCountdownFinished:
		m.handleCountdownFinished()
	case StateSequenceSelect:
		m.handleSequenceSelect()
	case StateSequenceRunning:
		return m.handleSequenceRunning()
	case StateSequenceFinished:
		m.handleSequenceFinished()
	case StateAlarmList:
		m.handleAlarmList()
	case StateAlarmSetup:
		m.handleAlarmSetup()
	case StateAlarmRinging:
		m.handleAlarmRinging()
	case StateSettings:
		m.handleSettings()
	case StateTimerList:
		m.handleTimerList()
	case StatePhaseList:
		m.handlePhaseList()
	case StatePhaseEditor:
		m.handlePhaseEditor()
	case StateNotifyPicker:
		m.handleNotifyPicker()
	case StateAccountList:
		m.handleAccountList()
	case StateAccountCreate:
		m.handleAccountCreate()
	case StateConfirm:
		m.handleConfirm()
	case StateDeviceInfo:
		m.handleDeviceInfo()
	default:
		m.transitionTo(StateMainMenu)
	}
	return nil
}

// transitionTo records the previous state, stamps the entry tick and resets
// the screen context. Moving to the current state only re-stamps the tick.
func (m *Machine) transitionTo(s State) {
	m.enteredAt = m.now
	if s == m.state {
		return
	}
	logger.DebugKV(m.ctx, "transition", "from", m.state, "to", s)
	m.previous = m.state
	m.state = s
	m.screen = screenCtx{}
	m.dirty = true
	m.enter()
}

// enter prepares the screen context of the new state.
func (m *Machine) enter() {
	switch m.state {
	case StateAlarmSetup:
		if m.previous == StateAlarmRinging {
			return
		}
		m.alarmDraft = model.Alarm{
			Hour:       defaultAlarmHour,
			Minute:     defaultAlarmMinute,
			Enabled:    true,
			SoundTrack: defaultAlarmSound,
		}
	case StatePhaseEditor:
		m.loadDraft()
	}
}

// axes reads at most one gesture per tick: a vertical move, or failing
// that a horizontal one.
func (m *Machine) axes() (dx, dy int) {
	if !m.in.CanMove() {
		return 0, 0
	}
	if dy = m.in.AxisY(); dy != 0 {
		return 0, dy
	}
	return m.in.AxisX(), 0
}

// navigate moves the selection over n rows, wrapping at both ends.
func (m *Machine) navigate(dy, n int) {
	if dy == 0 || n <= 0 {
		return
	}
	m.screen.sel = model.WrapAdd(m.screen.sel, dy, 0, n-1)
	m.dirty = true
}

// prompt blocks the loop. An alarm minute that passes meanwhile does not ring;
// the next alarm scan logs it as skipped.
func (m *Machine) prompt(title string) (string, bool) {
	if m.prompter == nil {
		return "", false
	}
	return m.prompter.Prompt(title)
}

func (m *Machine) redraw() {
	cadence := redrawCadence(m.state)
	if !m.dirty && (cadence == 0 || clock.Elapsed(m.now, m.lastDraw) < cadence) {
		return
	}
	m.render()
}

func (m *Machine) render() {
	if err := m.disp.Show(m.frame()); err != nil {
		logger.DebugKV(m.ctx, "show frame", "state", m.state, "error", err)
	}
	m.dirty = false
	m.lastDraw = m.now
}

func redrawCadence(s State) uint32 {
	switch s {
	case StateCountdownRunning, StateSequenceRunning:
		return runningRedrawMs
	case StateClock, StateMainMenu, StateAlarmList:
		return clockRedrawMs
	case StateAlarmRinging, StateCountdownFinished, StateSequenceFinished:
		return ringingRedrawMs
	}
	return 0
}

// State returns the current screen.
func (m *Machine) State() State {
	return m.state
}

// Previous returns the screen before the current one.
func (m *Machine) Previous() State {
	return m.previous
}

func (m *Machine) saveAlarms() {
	if err := m.store.SaveAlarms(m.ctx, m.alarms.All()); err != nil {
		logger.WarnKV(m.ctx, "save alarms", "error", err)
	}
}

// saveTimers persists timers and hands them to the sequence engine.
func (m *Machine) saveTimers(timers []model.CustomTimer) {
	if err := m.store.SaveTimers(m.ctx, timers); err != nil {
		logger.WarnKV(m.ctx, "save timers", "error", err)
	}
	m.sequence.SetTimers(timers)
}

func (m *Machine) saveAccounts(accounts []model.PushAccount) {
	if err := m.store.SaveAccounts(m.ctx, accounts); err != nil {
		logger.WarnKV(m.ctx, "save accounts", "error", err)
	}
	m.notifier.SetAccounts(accounts)
}
