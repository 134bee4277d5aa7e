package logic

import (
	"github.com/sweeney/chronodesk/internal/clock"
	"github.com/sweeney/chronodesk/internal/model"
)

const (
	minutesPerDay = 24 * 60
	secondsPerDay = minutesPerDay * 60
)

// AlarmRegistry holds the daily alarms and decides when one rings.
type AlarmRegistry struct {
	notifier Notifier
	volume   int

	alarms []model.Alarm

	ringing     bool
	active      int
	lastChecked int // second of day of the last evaluation, -1 before the first
	missed      []model.Alarm
}

// NewAlarmRegistry creates an empty registry.
func NewAlarmRegistry(n Notifier, volume int) *AlarmRegistry {
	return &AlarmRegistry{notifier: n, volume: volume, active: -1, lastChecked: -1}
}

// SetVolume changes the volume used when an alarm rings.
func (r *AlarmRegistry) SetVolume(v int) {
	r.volume = v
}

// Load replaces the alarm list. Entries are clamped and later duplicates of
// an (hour, minute) are dropped.
func (r *AlarmRegistry) Load(alarms []model.Alarm) {
	r.alarms = nil
	r.ringing = false
	r.active = -1
	for _, a := range alarms {
		r.Add(a)
	}
}

// Add appends an alarm unless one already exists at the same hour and
// minute, in which case the registry is left unchanged and false returned.
func (r *AlarmRegistry) Add(a model.Alarm) bool {
	a.Clamp()
	if r.Find(a.Hour, a.Minute) >= 0 {
		return false
	}
	r.alarms = append(r.alarms, a)
	return true
}

// Find returns the index of the alarm at hour:minute, or -1.
func (r *AlarmRegistry) Find(hour, minute int) int {
	for i, a := range r.alarms {
		if a.Hour == hour && a.Minute == minute {
			return i
		}
	}
	return -1
}

// Remove deletes the alarm at i. Removing the ringing alarm stops it.
func (r *AlarmRegistry) Remove(i int) bool {
	if i < 0 || i >= len(r.alarms) {
		return false
	}
	r.alarms = append(r.alarms[:i], r.alarms[i+1:]...)
	switch {
	case i == r.active:
		r.Acknowledge()
	case i < r.active:
		r.active--
	}
	return true
}

// SetEnabled enables or disables every alarm.
func (r *AlarmRegistry) SetEnabled(enabled bool) {
	for i := range r.alarms {
		r.alarms[i].Enabled = enabled
	}
}

// SetAlarmEnabled enables or disables the alarm at i.
func (r *AlarmRegistry) SetAlarmEnabled(i int, enabled bool) bool {
	if i < 0 || i >= len(r.alarms) {
		return false
	}
	r.alarms[i].Enabled = enabled
	return true
}

// All returns a copy of the alarms in list order.
func (r *AlarmRegistry) All() []model.Alarm {
	if r.alarms == nil {
		return nil
	}
	return append([]model.Alarm(nil), r.alarms...)
}

// Count returns the number of alarms.
func (r *AlarmRegistry) Count() int {
	return len(r.alarms)
}

// AnyEnabled reports whether at least one alarm is enabled.
func (r *AlarmRegistry) AnyEnabled() bool {
	for _, a := range r.alarms {
		if a.Enabled {
			return true
		}
	}
	return false
}

// Tick evaluates the alarms against the wall clock. Evaluation happens at
// most once per distinct wall-clock second; ok=false (no RTC) skips it.
// The first enabled alarm in list order matching hour:minute:00 rings.
func (r *AlarmRegistry) Tick(now clock.WallTime, ok bool, ticks uint32) []Event {
	if !ok {
		return nil
	}
	sec := now.SecondOfDay()
	if sec == r.lastChecked {
		return nil
	}
	if r.lastChecked >= 0 {
		r.collectMissed(r.lastChecked, sec)
	}
	r.lastChecked = sec
	if len(r.alarms) == 0 || now.Second != 0 {
		return nil
	}

	for i, a := range r.alarms {
		if !a.Enabled || a.Hour != now.Hour || a.Minute != now.Minute {
			continue
		}
		r.ringing = true
		r.active = i
		r.notifier.LocalAlert(a.SoundTrack, r.volume)
		r.notifier.NotifyAll(PushAlarmTitle, PushAlarmMessage)
		return []Event{{
			Type:       EventAlarmRinging,
			Ticks:      ticks,
			AlarmIndex: i,
			Hour:       a.Hour,
			Minute:     a.Minute,
			SoundTrack: a.SoundTrack,
		}}
	}
	return nil
}

// collectMissed records enabled alarms whose hh:mm:00 fell strictly between
// two evaluations more than a second apart.
func (r *AlarmRegistry) collectMissed(prev, cur int) {
	gap := ((cur-prev)%secondsPerDay + secondsPerDay) % secondsPerDay
	if gap <= 1 {
		return
	}
	for _, a := range r.alarms {
		if !a.Enabled {
			continue
		}
		d := ((a.Key()*60-prev)%secondsPerDay + secondsPerDay) % secondsPerDay
		if d > 0 && d < gap {
			r.missed = append(r.missed, a)
		}
	}
}

// Missed returns and clears the alarms skipped because evaluations were
// too far apart, for example while a blocking prompt held the loop.
func (r *AlarmRegistry) Missed() []model.Alarm {
	out := r.missed
	r.missed = nil
	return out
}

// Acknowledge silences a ringing alarm. The alarm stays enabled for the
// next day. Safe no-op when nothing rings.
func (r *AlarmRegistry) Acknowledge() {
	if !r.ringing {
		return
	}
	r.ringing = false
	r.active = -1
	r.notifier.StopAlert()
}

// Ringing reports whether an alarm awaits acknowledgement.
func (r *AlarmRegistry) Ringing() bool { return r.ringing }

// Active returns the ringing alarm and true, or false when none rings.
func (r *AlarmRegistry) Active() (model.Alarm, bool) {
	if !r.ringing || r.active < 0 || r.active >= len(r.alarms) {
		return model.Alarm{}, false
	}
	return r.alarms[r.active], true
}

// Next returns the index of the nearest upcoming enabled alarm and the
// minutes until it rings, measured on a 24h circle. An alarm at the current
// minute is 0 minutes away. Ties go to the earlier list entry.
func (r *AlarmRegistry) Next(now clock.WallTime) (index, minutes int, ok bool) {
	cur := now.MinuteOfDay()
	index = -1
	for i, a := range r.alarms {
		if !a.Enabled {
			continue
		}
		delta := ((a.Key()-cur)%minutesPerDay + minutesPerDay) % minutesPerDay
		if index < 0 || delta < minutes {
			index, minutes = i, delta
		}
	}
	return index, minutes, index >= 0
}
