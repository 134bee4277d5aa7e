package logic

import (
	"testing"
	"time"
)

func TestHeartbeatInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(start)

	if hb := h.Check(start.Add(59*time.Minute), time.Hour); hb != nil {
		t.Error("heartbeat before interval elapsed")
	}

	h.Record([]Event{{Type: EventCountdownFinished}, {Type: EventAlarmRinging}, {Type: EventPhaseComplete}})

	hb := h.Check(start.Add(time.Hour), time.Hour)
	if hb == nil {
		t.Fatal("expected heartbeat at interval")
	}
	if hb.Uptime != time.Hour {
		t.Errorf("expected uptime 1h, got %v", hb.Uptime)
	}
	want := EventCounts{CountdownsFinished: 1, PhasesCompleted: 1, AlarmsRung: 1}
	if hb.Counts != want {
		t.Errorf("expected counts %+v, got %+v", want, hb.Counts)
	}

	if hb := h.Check(start.Add(90*time.Minute), time.Hour); hb != nil {
		t.Error("heartbeat should restart its interval")
	}
}

func TestHeartbeatDisabled(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	h := NewHeartbeat(start)

	if hb := h.Check(start.Add(24*time.Hour), 0); hb != nil {
		t.Error("zero interval should disable heartbeats")
	}
	if hb := h.Check(start.Add(24*time.Hour), -time.Second); hb != nil {
		t.Error("negative interval should disable heartbeats")
	}
}
