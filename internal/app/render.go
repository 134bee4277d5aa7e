package app

import (
	"fmt"

	"github.com/sweeney/chronodesk/internal/display"
	"github.com/sweeney/chronodesk/internal/logic"
)

const (
	rowTop     = 16
	rowHeight  = 10
	rowsShown  = 4
	footerY    = 56
	headerRule = 10
)

func (m *Machine) frame() display.Frame {
	var f display.Frame

	switch m.state {
	case StateMainMenu:
		labels := make([]string, len(mainMenu))
		for i, it := range mainMenu {
			labels[i] = it.label
		}
		title := "Chrono-Cubo"
		if m.wallOK {
			title = fmt.Sprintf("Chrono-Cubo  %02d:%02d", m.wall.Hour, m.wall.Minute)
		}
		drawList(&f, title, labels, m.mainSel, "Y:Move Btn:Select")

	case StateClock:
		m.drawClock(&f)

	case StateCountdownSetup:
		mins, secs, sound := m.countdown.Setup()
		drawList(&f, "Single Timer", []string{
			fmt.Sprintf("Minutes: %02d", mins),
			fmt.Sprintf("Seconds: %02d", secs),
			fmt.Sprintf("Sound: Track %d", sound),
			"< Back",
		}, m.screen.sel, footerOr(m.screen.notice, "Y:Field X:+- Btn:Go"))

	case StateCountdownRunning:
		f.Centered(0, 1, "Single Timer")
		f.Rule(headerRule)
		f.Centered(20, 2, formatMinutes(m.countdown.Remaining()))
		f.Progress(4, 42, 120, 8, m.countdown.Progress())
		f.Text(0, footerY, 1, pausedFooter(m.countdown.Paused()))

	case StateCountdownFinished:
		f.Centered(0, 1, "Single Timer")
		f.Rule(headerRule)
		f.Centered(24, 2, "DONE!")
		f.Text(0, footerY, 1, "Btn:Stop")

	case StateSequenceSelect:
		m.drawSequenceSelect(&f)

	case StateSequenceRunning:
		m.drawSequenceRunning(&f)

	case StateSequenceFinished:
		f.Centered(0, 1, m.sequence.Current().Name)
		f.Rule(headerRule)
		f.Centered(20, 1, "Routine complete")
		f.Centered(34, 2, "DONE!")
		f.Text(0, footerY, 1, "Btn:Stop")

	case StateAlarmList:
		m.drawAlarmList(&f)

	case StateAlarmSetup:
		a := m.alarmDraft
		drawList(&f, "New Alarm", []string{
			fmt.Sprintf("Hour: %02d", a.Hour),
			fmt.Sprintf("Minute: %02d", a.Minute),
			fmt.Sprintf("Sound: Track %d", a.SoundTrack),
			"< Back",
		}, m.screen.sel, "Y:Field X:+- Btn:Save")

	case StateAlarmRinging:
		f.Centered(0, 1, "ALARM")
		f.Rule(headerRule)
		if a, ok := m.alarms.Active(); ok {
			f.Centered(20, 2, a.String())
		}
		f.Centered(40, 1, "Time to wake up!")
		f.Text(0, footerY, 1, "Btn:Dismiss")

	case StateSettings:
		labels := make([]string, len(settingsMenu))
		for i, it := range settingsMenu {
			labels[i] = it.label
		}
		drawList(&f, "Settings", labels, m.screen.sel, "Y:Move Btn:Select")

	case StateTimerList:
		rows := []string{"+ Create New"}
		for _, t := range m.sequence.Timers() {
			rows = append(rows, t.Name)
		}
		rows = append(rows, "< Back")
		drawList(&f, "Timers", rows, m.screen.sel, "Y:Move X:Del Btn:Edit")

	case StatePhaseList:
		rows := []string{"+ Add Phase"}
		for i, p := range m.edit.timer.Phases {
			rows = append(rows, fmt.Sprintf("%d. %s", i+1, p.Name))
		}
		rows = append(rows, "Save & Exit", "< Back")
		drawList(&f, "Edit: "+m.edit.timer.Name, rows, m.screen.sel, "Y:Move X:Del Btn:Select")

	case StatePhaseEditor:
		m.drawPhaseEditor(&f)

	case StateNotifyPicker:
		var rows []string
		for i, a := range m.notifier.Accounts() {
			mark := "[ ]"
			if m.edit.draft.HasTarget(i) {
				mark = "[x]"
			}
			rows = append(rows, mark+" "+a.Name)
		}
		rows = append(rows, "< Done")
		drawList(&f, "Notify", rows, m.screen.sel, "Y:Move Btn:Toggle")

	case StateAccountList:
		rows := []string{"+ Add New"}
		for _, a := range m.notifier.Accounts() {
			rows = append(rows, a.Name)
		}
		rows = append(rows, "< Back")
		drawList(&f, "Alertzy Accounts", rows, m.screen.sel, "Y:Move Btn:Select")

	case StateAccountCreate:
		f.Text(0, 0, 1, "New Alertzy Account")
		f.Rule(headerRule)
		f.Text(0, 20, 1, "Enter name and key")
		f.Text(0, 30, 1, "on the console")

	case StateConfirm:
		f.Text(0, 20, 1, m.confirm.prompt)
		f.Text(0, footerY, 1, "Btn:Yes X:No")

	case StateDeviceInfo:
		m.drawDeviceInfo(&f)
	}

	return f
}

// drawList renders a title, a scrolling window of rows with the selected
// one highlighted, and a footer.
func drawList(f *display.Frame, title string, rows []string, sel int, footer string) {
	f.Text(0, 0, 1, title)
	f.Rule(headerRule)

	first := 0
	if sel >= rowsShown {
		first = sel - rowsShown + 1
	}
	for i := first; i < len(rows) && i < first+rowsShown; i++ {
		y := rowTop + (i-first)*rowHeight
		label := "  " + rows[i]
		if i == sel {
			f.FillRect(0, y-1, display.Width, rowHeight)
			label = "> " + rows[i]
		}
		f.Text(2, y, 1, label)
	}

	f.Text(0, footerY, 1, footer)
}

func (m *Machine) drawClock(f *display.Frame) {
	if !m.wallOK {
		f.Centered(20, 2, "--:--")
		f.Centered(44, 1, "Clock not set")
		return
	}
	f.Centered(12, 2, fmt.Sprintf("%02d:%02d", m.wall.Hour, m.wall.Minute))
	f.Centered(32, 1, fmt.Sprintf(":%02d", m.wall.Second))
	f.Centered(footerY, 1, m.nextAlarmLine())
}

func (m *Machine) nextAlarmLine() string {
	if !m.wallOK {
		return "Clock not set"
	}
	i, mins, ok := m.alarms.Next(m.wall)
	if !ok {
		return "No alarms enabled"
	}
	a := m.alarms.All()[i]
	return fmt.Sprintf("Next %s in %dh%02dm", a.String(), mins/60, mins%60)
}

func (m *Machine) drawSequenceSelect(f *display.Frame) {
	timers := m.sequence.Timers()
	if len(timers) == 0 {
		f.Text(0, 0, 1, "Multi-Phase Timer")
		f.Rule(headerRule)
		f.Text(0, 20, 1, "No timers")
		f.Text(0, footerY, 1, "Btn:Back")
		return
	}

	rows := make([]string, len(timers))
	for i, t := range timers {
		rows[i] = fmt.Sprintf("%s (%d)", t.Name, len(t.Phases))
	}
	drawList(f, "Multi-Phase Timer", rows, m.sequence.Selected(), footerOr(m.screen.notice, "Y:Move X<:Back Btn:Go"))
}

func (m *Machine) drawSequenceRunning(f *display.Frame) {
	s := m.sequence
	f.Text(0, 0, 1, s.Current().Name)
	f.Text(92, 0, 1, fmt.Sprintf("%d/%d", s.PhaseIndex()+1, s.PhaseCount()))
	f.Rule(headerRule)

	if s.State() == logic.SequenceTransitioning {
		f.Centered(16, 1, s.PhaseName()+" done")
		f.Centered(30, 1, "Next:")
		f.Centered(42, 1, s.NextPhaseName())
		return
	}

	f.Centered(14, 1, s.PhaseName())
	f.Centered(26, 2, formatDuration(s.Remaining()))
	f.Progress(4, 44, 120, 8, s.Progress())
	f.Text(0, footerY, 1, pausedFooter(s.Paused()))
}

func (m *Machine) drawAlarmList(f *display.Frame) {
	alarms := m.alarms.All()
	rows := []string{"+ Add Alarm"}
	for _, a := range alarms {
		state := "off"
		if a.Enabled {
			state = "on"
		}
		rows = append(rows, fmt.Sprintf("%s %-3s T%d", a.String(), state, a.SoundTrack))
	}
	rows = append(rows, "All On", "All Off", "< Back")
	drawList(f, m.nextAlarmLine(), rows, m.screen.sel, "Btn:Toggle X:Del")
}

func (m *Machine) drawPhaseEditor(f *display.Frame) {
	d := m.edit.draft
	h, mi, s := splitHMS(d.DurationSeconds)

	targets := "none"
	if n := len(d.NotifyTargets); n > 0 {
		targets = fmt.Sprintf("%d account(s)", n)
	}

	rows := []string{
		"Name: " + d.Name,
		fmt.Sprintf("Hours: %02d", h),
		fmt.Sprintf("Minutes: %02d", mi),
		fmt.Sprintf("Seconds: %02d", s),
		fmt.Sprintf("Sound: Track %d", d.SoundTrack),
		"Notify: " + targets,
		"Save",
		"Cancel",
	}
	drawList(f, "Phase Editor", rows, m.edit.field, "Y:Field X:+- Btn:Edit")
}

func (m *Machine) drawDeviceInfo(f *display.Frame) {
	if m.deviceURL == "" {
		f.Text(0, 0, 1, "Device Info")
		f.Rule(headerRule)
		f.Text(0, 20, 1, "No network")
		return
	}

	qr, err := display.QR(m.deviceURL)
	if err != nil {
		f.Text(0, 0, 1, "Device Info")
		f.Text(0, 20, 1, m.deviceURL)
		return
	}
	qr.X = 0
	f.Add(qr)
	f.Text(qr.Width+4, 0, 1, "Status")
	f.Text(qr.Width+4, 20, 1, m.deviceURL)
}

// formatMinutes renders MM:SS with total minutes, matching the countdown setup
// range of 0..99 minutes.
func formatMinutes(sec uint32) string {
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

// formatDuration switches to H:MM:SS from one hour up; phases may run longer
// than the countdown range.
func formatDuration(sec uint32) string {
	if sec >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", sec/3600, sec%3600/60, sec%60)
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}

func pausedFooter(paused bool) string {
	if paused {
		return "PAUSED X:Resume Btn:Stop"
	}
	return "X:Pause Btn:Stop"
}

func footerOr(notice, footer string) string {
	if notice != "" {
		return notice
	}
	return footer
}
