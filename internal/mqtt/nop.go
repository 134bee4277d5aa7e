package mqtt

import (
	"time"

	"github.com/sweeney/chronodesk/internal/logic"
)

// Nop is the Publisher used when no broker is configured.
type Nop struct{}

// Publish discards the event.
func (Nop) Publish(logic.Event, time.Time) error { return nil }

// PublishSystem discards the event.
func (Nop) PublishSystem(SystemEvent) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// IsConnected is always false.
func (Nop) IsConnected() bool { return false }
