// Package status provides a thread-safe status tracker for the device.
// It is written by the run loop and read by the HTTP handlers and the MQTT
// system events.
package status

import (
	"slices"
	"sync"
	"time"

	"github.com/sweeney/chronodesk/internal/app"
	"github.com/sweeney/chronodesk/internal/logic"
	"github.com/sweeney/chronodesk/internal/notify"
)

// NetworkInfo is the address the device is reachable at.
type NetworkInfo struct {
	Hostname string
	IP       string
}

// Config contains device configuration for display.
type Config struct {
	PollMs      int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
	Storage     string
	DeviceURL   string
}

// Snapshot is a point-in-time view of device state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Device        app.Report
	Screen        []string
	Counts        logic.EventCounts
	Notify        notify.Stats
	Ready         bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the device started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable device state behind an RWMutex. Every change that
// is visible to readers bumps a version, so streams can skip unchanged
// snapshots.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	version uint64
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// change applies fn under the write lock and bumps the version when fn
// reports a difference.
func (t *Tracker) change(fn func(s *Snapshot) bool) {
	t.mu.Lock()
	if fn(&t.snap) {
		t.version++
	}
	t.mu.Unlock()
}

// Update records the machine report, the screen text and the counters.
// Called from runLoop on every tick.
func (t *Tracker) Update(report app.Report, screen []string, counts logic.EventCounts, stats notify.Stats) {
	t.change(func(s *Snapshot) bool {
		same := s.Ready && s.Device == report && s.Counts == counts &&
			s.Notify == stats && slices.Equal(s.Screen, screen)
		if same {
			return false
		}
		s.Device = report
		s.Screen = slices.Clone(screen)
		s.Counts = counts
		s.Notify = stats
		s.Ready = true
		return true
	})
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.change(func(s *Snapshot) bool {
		if s.MQTTConnected == connected {
			return false
		}
		s.MQTTConnected = connected
		return true
	})
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.change(func(s *Snapshot) bool {
		s.Network = info
		return true
	})
}

// Version increases whenever the tracked state changes.
func (t *Tracker) Version() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.version
}

// Snapshot returns a point-in-time copy of the device state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Screen = slices.Clone(t.snap.Screen)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
