package logic

import "time"

// HeartbeatData is the periodic liveness report of the device.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

// Heartbeat counts engine events and decides when a heartbeat is due.
type Heartbeat struct {
	startTime     time.Time
	lastHeartbeat time.Time
	counts        EventCounts
}

// NewHeartbeat starts counting uptime at startTime.
func NewHeartbeat(startTime time.Time) *Heartbeat {
	return &Heartbeat{startTime: startTime, lastHeartbeat: startTime}
}

// Record adds events to the counters.
func (h *Heartbeat) Record(events []Event) {
	h.counts.Add(events)
}

// Counts returns the counters so far.
func (h *Heartbeat) Counts() EventCounts {
	return h.counts
}

// Check returns heartbeat data if interval has elapsed since the last
// heartbeat (or startup). Returns nil if the interval has not elapsed or
// interval is <= 0 (disabled).
func (h *Heartbeat) Check(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(h.lastHeartbeat) < interval {
		return nil
	}

	h.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(h.startTime),
		Counts:    h.counts,
	}
}
