package mqtt

import (
	"sync"
	"time"

	"github.com/sweeney/chronodesk/internal/logic"
)

// FakePublisher records what would have reached the broker. Recording is
// guarded so a run loop goroutine may publish while a test waits; read the
// exported slices only after that goroutine is done.
type FakePublisher struct {
	mu sync.Mutex

	// Events and Payloads hold the accepted engine events and their JSON.
	Events   []logic.Event
	Payloads [][]byte

	// SystemEvents and SystemPayloads hold the accepted lifecycle events.
	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// PublishError and PublishSystemError reject the respective calls;
	// rejected messages are counted in Failed and not recorded.
	PublishError       error
	PublishSystemError error
	Failed             int

	Closed    bool
	Connected bool
}

// NewFakePublisher creates an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// Publish implements Publisher.
func (f *FakePublisher) Publish(event logic.Event, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishError != nil {
		f.Failed++
		return f.PublishError
	}
	payload, err := FormatPayload(event, at)
	if err != nil {
		return err
	}
	f.Events = append(f.Events, event)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem implements Publisher.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		f.Failed++
		return f.PublishSystemError
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// System returns the recorded lifecycle events with the given name.
func (f *FakePublisher) System(name string) []SystemEvent {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []SystemEvent
	for _, e := range f.SystemEvents {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

// Close implements Publisher.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected implements ConnectionStatus.
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset forgets every recording and flag.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Events, f.Payloads = nil, nil
	f.SystemEvents, f.SystemPayloads = nil, nil
	f.Failed = 0
	f.Closed, f.Connected = false, false
}
