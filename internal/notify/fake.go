package notify

import (
	"context"
	"sync"
)

// FakeSender records sends. It is safe for use from the push worker.
type FakeSender struct {
	mu    sync.Mutex
	sends []Sent

	// Err, if set, is returned by every Send.
	Err error
	// Block, if non-nil, makes Send wait until it is closed.
	Block chan struct{}
	// Done receives one value per completed Send when non-nil.
	Done chan struct{}
}

// Sent is one recorded Send.
type Sent struct {
	AccountKey string
	Title      string
	Message    string
}

// Send implements Sender.
func (f *FakeSender) Send(_ context.Context, accountKey, title, message string) error {
	if f.Block != nil {
		<-f.Block
	}
	f.mu.Lock()
	f.sends = append(f.sends, Sent{AccountKey: accountKey, Title: title, Message: message})
	err := f.Err
	f.mu.Unlock()
	if f.Done != nil {
		f.Done <- struct{}{}
	}
	return err
}

// Sends returns a copy of the recorded sends.
func (f *FakeSender) Sends() []Sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Sent(nil), f.sends...)
}
