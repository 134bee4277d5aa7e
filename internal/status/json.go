package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/chronodesk/internal/app"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Device        app.Report   `json:"device"`
	Screen        []string     `json:"screen"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Notify        NotifyJSON   `json:"notify"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	CountdownsFinished int `json:"countdowns_finished"`
	PhasesCompleted    int `json:"phases_completed"`
	SequencesFinished  int `json:"sequences_finished"`
	AlarmsRung         int `json:"alarms_rung"`
}

// NotifyJSON is the JSON representation of dispatcher counters.
type NotifyJSON struct {
	Alerts        int64 `json:"alerts"`
	PushesSent    int64 `json:"pushes_sent"`
	PushesFailed  int64 `json:"pushes_failed"`
	PushesDropped int64 `json:"pushes_dropped"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Hostname string `json:"hostname"`
	IP       string `json:"ip"`
}

// ConfigJSON is the JSON representation of device config.
type ConfigJSON struct {
	PollMs      int64  `json:"poll_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
	Storage     string `json:"storage"`
	DeviceURL   string `json:"device_url,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	screen := snap.Screen
	if screen == nil {
		screen = []string{}
	}

	inner := StatusInner{
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Device:        snap.Device,
		Screen:        screen,
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			CountdownsFinished: snap.Counts.CountdownsFinished,
			PhasesCompleted:    snap.Counts.PhasesCompleted,
			SequencesFinished:  snap.Counts.SequencesFinished,
			AlarmsRung:         snap.Counts.AlarmsRung,
		},
		Notify: NotifyJSON{
			Alerts:        snap.Notify.Alerts,
			PushesSent:    snap.Notify.PushesSent,
			PushesFailed:  snap.Notify.PushesFailed,
			PushesDropped: snap.Notify.PushesDropped,
		},
		Config: ConfigJSON{
			PollMs:      snap.Config.PollMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
			Storage:     snap.Config.Storage,
			DeviceURL:   snap.Config.DeviceURL,
		},
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Hostname: snap.Network.Hostname,
			IP:       snap.Network.IP,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
