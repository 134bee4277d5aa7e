// Package notify delivers alerts: the local channel (audio clip plus a
// flashing LED) and the remote channel (Alertzy push messages).
//
// The Dispatcher is driven from the control loop and never blocks it.
// Push messages are handed to a single background worker through a bounded
// queue; when the queue is full the message is dropped.
package notify

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sweeney/chronodesk/internal/audio"
	"github.com/sweeney/chronodesk/internal/clock"
	"github.com/sweeney/chronodesk/internal/gpio"
	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/model"
)

const (
	// FlashIntervalMs is the LED half-period while alerting.
	FlashIntervalMs uint32 = 250

	defaultQueueSize = 8
)

type push struct {
	key     string
	title   string
	message string
}

// Stats counts dispatcher activity since startup.
type Stats struct {
	Alerts        int64
	PushesSent    int64
	PushesFailed  int64
	PushesDropped int64
}

// Options configures a Dispatcher. Zero values select the defaults.
type Options struct {
	// QueueSize bounds the number of pending push messages.
	QueueSize int
	// Online reports network connectivity. Nil means always online.
	Online func() bool
}

// Dispatcher implements logic.Notifier.
type Dispatcher struct {
	ctx    context.Context
	player audio.Player
	led    gpio.LED
	clock  clock.Source
	sender Sender
	online func() bool

	audioOK    bool
	alerting   bool
	ledOn      bool
	lastToggle uint32

	accounts []model.PushAccount

	queue chan push
	wg    sync.WaitGroup
	once  sync.Once

	alerts  atomic.Int64
	sent    atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

// NewDispatcher creates a dispatcher and starts its push worker. player and
// led may be nil when the hardware is absent; sender may be nil to disable
// the remote channel.
func NewDispatcher(ctx context.Context, player audio.Player, led gpio.LED, src clock.Source, sender Sender, opts Options) *Dispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.Online == nil {
		opts.Online = func() bool { return true }
	}
	if player == nil {
		player = audio.Nop{}
	}

	d := &Dispatcher{
		ctx:     logger.WithName(ctx, "notify"),
		player:  player,
		led:     led,
		clock:   src,
		sender:  sender,
		online:  opts.Online,
		audioOK: true,
		queue:   make(chan push, opts.QueueSize),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

// LocalAlert starts playing track and flashing the LED. An alert already in
// progress is replaced. Audio failures disable audio for the rest of the run;
// the LED still flashes.
func (d *Dispatcher) LocalAlert(track, volume int) {
	volume = clampVolume(volume)
	d.alerts.Add(1)

	if d.audioOK {
		if err := d.player.Play(track, volume); err != nil {
			d.audioOK = false
			logger.WarnKV(d.ctx, "audio unavailable, alerts are LED only", "track", track, "error", err)
		}
	}

	d.alerting = true
	d.lastToggle = d.clock.Ticks()
	d.setLED(true)
	logger.InfoKV(d.ctx, "local alert", "track", track, "volume", volume)
}

// StopAlert silences the clip and switches the LED off. Idempotent.
func (d *Dispatcher) StopAlert() {
	if d.alerting && d.audioOK {
		if err := d.player.Stop(); err != nil {
			logger.WarnKV(d.ctx, "stop audio", "error", err)
		}
	}
	d.alerting = false
	d.setLED(false)
}

// Alerting reports whether a local alert is active.
func (d *Dispatcher) Alerting() bool {
	return d.alerting
}

// AudioAvailable reports whether the audio output still works.
func (d *Dispatcher) AudioAvailable() bool {
	return d.audioOK
}

// Poll advances the LED flash cycle. Call once per loop tick.
func (d *Dispatcher) Poll(now uint32) {
	if !d.alerting {
		return
	}
	if clock.Elapsed(now, d.lastToggle) >= FlashIntervalMs {
		d.lastToggle = now
		d.setLED(!d.ledOn)
	}
}

func (d *Dispatcher) setLED(on bool) {
	d.ledOn = on
	if d.led == nil {
		return
	}
	if err := d.led.Set(on); err != nil {
		logger.DebugKV(d.ctx, "set LED", "error", err)
	}
}

// SetAccounts replaces the push account list.
func (d *Dispatcher) SetAccounts(accounts []model.PushAccount) {
	d.accounts = append([]model.PushAccount(nil), accounts...)
}

// Accounts returns a copy of the push account list.
func (d *Dispatcher) Accounts() []model.PushAccount {
	return append([]model.PushAccount(nil), d.accounts...)
}

// RemoteNotify queues one push to the combined keys of the accounts at
// targets. Nothing is sent when offline, when there are no accounts or when
// no target has a valid key.
func (d *Dispatcher) RemoteNotify(title, message string, targets []int) {
	if d.sender == nil || len(d.accounts) == 0 || !d.online() {
		return
	}
	key := CombineKeys(d.accounts, targets)
	if key == "" {
		return
	}

	select {
	case d.queue <- push{key: key, title: title, message: message}:
	default:
		d.dropped.Add(1)
		logger.WarnKV(d.ctx, "push queue full, message dropped", "title", title)
	}
}

// NotifyAll queues one push to every account.
func (d *Dispatcher) NotifyAll(title, message string) {
	targets := make([]int, len(d.accounts))
	for i := range targets {
		targets[i] = i
	}
	d.RemoteNotify(title, message, targets)
}

// Stats returns the activity counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Alerts:        d.alerts.Load(),
		PushesSent:    d.sent.Load(),
		PushesFailed:  d.failed.Load(),
		PushesDropped: d.dropped.Load(),
	}
}

// Close stops the push worker after it has drained the queue, and silences
// any local alert.
func (d *Dispatcher) Close() {
	d.StopAlert()
	d.once.Do(func() { close(d.queue) })
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for p := range d.queue {
		if err := d.sender.Send(d.ctx, p.key, p.title, p.message); err != nil {
			d.failed.Add(1)
			logger.WarnKV(d.ctx, "push failed", "title", p.title, "error", err)
			continue
		}
		d.sent.Add(1)
		logger.DebugKV(d.ctx, "push sent", "title", p.title)
	}
}

func clampVolume(v int) int {
	if v < 0 {
		return 0
	}
	if v > audio.MaxVolume {
		return audio.MaxVolume
	}
	return v
}
