// Package mqtt publishes device events to an MQTT broker, with a fake for
// testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/chronodesk/internal/logic"
)

// Topic is the MQTT topic for engine events.
const Topic = "chronodesk/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "chronodesk/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends an engine event that happened at the given wall time.
	// Errors are reported but must never stop the device.
	Publish(event logic.Event, at time.Time) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event: STARTUP, SHUTDOWN, HEARTBEAT or
// RECONNECTED.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown only, e.g. "SIGTERM"
	RawPayload []byte // pre-formatted payload; FormatSystemPayload returns it as is
	Retained   bool
}

// Payload is the MQTT message for an engine event.
type Payload struct {
	Chronodesk EventPayload `json:"chronodesk"`
}

// EventPayload contains the engine event details.
type EventPayload struct {
	ID         string `json:"id"`
	Timestamp  string `json:"timestamp"`
	Event      string `json:"event"`
	Timer      string `json:"timer,omitempty"`
	Phase      string `json:"phase,omitempty"`
	PhaseNo    int    `json:"phase_no,omitempty"`
	PhaseCount int    `json:"phase_count,omitempty"`
	Alarm      string `json:"alarm,omitempty"`
	SoundTrack int    `json:"sound_track,omitempty"`
}

// newID generates message IDs. Replaced in tests.
var newID = uuid.NewString

// FormatPayload creates the JSON payload for an engine event.
func FormatPayload(event logic.Event, at time.Time) ([]byte, error) {
	p := EventPayload{
		ID:         newID(),
		Timestamp:  at.UTC().Format(time.RFC3339),
		Event:      string(event.Type),
		Timer:      event.Timer,
		Phase:      event.Phase,
		PhaseCount: event.PhaseCount,
		SoundTrack: event.SoundTrack,
	}

	switch event.Type {
	case logic.EventPhaseComplete, logic.EventSequenceFinished:
		p.PhaseNo = event.PhaseIndex + 1
	case logic.EventAlarmRinging:
		p.Alarm = fmt.Sprintf("%02d:%02d", event.Hour, event.Minute)
	}

	return json.Marshal(Payload{Chronodesk: p})
}

// SystemPayload is the payload for simple system events (LWT, RECONNECTED)
// that carry no status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
