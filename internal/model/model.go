// Package model defines the persisted records of the device: timers and
// their phases, alarms, and push accounts.
package model

import "fmt"

// Editor ranges.
const (
	MinSoundTrack = 1
	MaxSoundTrack = 50
	MaxHour       = 23
	MaxMinute     = 59
)

// TimerPhase is one step of a CustomTimer.
type TimerPhase struct {
	Name            string `json:"name" yaml:"name"`
	DurationSeconds uint32 `json:"duration_seconds" yaml:"duration_seconds"`
	// SoundTrack 0 means the phase ends silently.
	SoundTrack int `json:"sound_track" yaml:"sound_track"`
	// NotifyTargets are indices into the push account list.
	NotifyTargets []int `json:"alertzy_key_indices" yaml:"alertzy_key_indices"`
}

// CustomTimer is an ordered list of phases run back to back.
type CustomTimer struct {
	Name   string       `json:"name" yaml:"name"`
	Phases []TimerPhase `json:"phases" yaml:"phases"`
}

// Alarm rings daily at Hour:Minute.
type Alarm struct {
	Hour       int  `json:"hour" yaml:"hour"`
	Minute     int  `json:"minute" yaml:"minute"`
	Enabled    bool `json:"enabled" yaml:"enabled"`
	SoundTrack int  `json:"sound_track" yaml:"sound_track"`
}

// PushAccount is a named Alertzy account key.
type PushAccount struct {
	Name string `json:"name" yaml:"name"`
	Key  string `json:"key" yaml:"key"`
}

// Schedulable reports whether the timer can be started.
func (t CustomTimer) Schedulable() bool {
	return len(t.Phases) > 0
}

// TotalSeconds sums the phase durations.
func (t CustomTimer) TotalSeconds() uint64 {
	var total uint64
	for _, p := range t.Phases {
		total += uint64(p.DurationSeconds)
	}
	return total
}

// Clone returns a deep copy.
func (t CustomTimer) Clone() CustomTimer {
	out := CustomTimer{Name: t.Name}
	if t.Phases != nil {
		out.Phases = make([]TimerPhase, len(t.Phases))
		for i, p := range t.Phases {
			out.Phases[i] = p.Clone()
		}
	}
	return out
}

// Clone returns a deep copy.
func (p TimerPhase) Clone() TimerPhase {
	out := p
	if p.NotifyTargets != nil {
		out.NotifyTargets = append([]int(nil), p.NotifyTargets...)
	}
	return out
}

// HasTarget reports whether account index idx is notified by this phase.
func (p TimerPhase) HasTarget(idx int) bool {
	for _, t := range p.NotifyTargets {
		if t == idx {
			return true
		}
	}
	return false
}

// ToggleTarget adds idx to the targets or removes it if present.
func (p *TimerPhase) ToggleTarget(idx int) {
	for i, t := range p.NotifyTargets {
		if t == idx {
			p.NotifyTargets = append(p.NotifyTargets[:i], p.NotifyTargets[i+1:]...)
			return
		}
	}
	p.NotifyTargets = append(p.NotifyTargets, idx)
}

// Normalize clamps a phase for saving: durations below one second become one
// second and sound tracks are kept in range.
func (p *TimerPhase) Normalize() {
	if p.DurationSeconds == 0 {
		p.DurationSeconds = 1
	}
	if p.SoundTrack < 0 {
		p.SoundTrack = 0
	}
	if p.SoundTrack > MaxSoundTrack {
		p.SoundTrack = MaxSoundTrack
	}
}

// Key is the (hour, minute) identity of an alarm.
func (a Alarm) Key() int {
	return a.Hour*60 + a.Minute
}

func (a Alarm) String() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Clamp keeps hour, minute and sound inside their editor ranges.
func (a *Alarm) Clamp() {
	a.Hour = clamp(a.Hour, 0, MaxHour)
	a.Minute = clamp(a.Minute, 0, MaxMinute)
	a.SoundTrack = clamp(a.SoundTrack, MinSoundTrack, MaxSoundTrack)
}

// Valid reports whether the account can receive pushes.
func (a PushAccount) Valid() bool {
	return a.Key != ""
}

// CloneTimers deep-copies a timer list.
func CloneTimers(in []CustomTimer) []CustomTimer {
	if in == nil {
		return nil
	}
	out := make([]CustomTimer, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

// RenumberTargets fixes phase targets after the account at deleted was
// removed: references to it are dropped and higher indices shift down by one.
// It reports whether any timer changed.
func RenumberTargets(timers []CustomTimer, deleted int) bool {
	changed := false
	for ti := range timers {
		for pi := range timers[ti].Phases {
			p := &timers[ti].Phases[pi]
			if len(p.NotifyTargets) == 0 {
				continue
			}
			kept := p.NotifyTargets[:0]
			for _, idx := range p.NotifyTargets {
				switch {
				case idx == deleted:
					changed = true
				case idx > deleted:
					kept = append(kept, idx-1)
					changed = true
				default:
					kept = append(kept, idx)
				}
			}
			p.NotifyTargets = kept
		}
	}
	return changed
}

// WrapAdd adds delta to v and wraps the result into [lo, hi].
func WrapAdd(v, delta, lo, hi int) int {
	span := hi - lo + 1
	n := (v - lo + delta) % span
	if n < 0 {
		n += span
	}
	return lo + n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
