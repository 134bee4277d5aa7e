package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/chronodesk/internal/logger"
	"github.com/sweeney/chronodesk/internal/logic"
)

// DefaultBufferSize is the number of messages kept while the broker is
// unreachable.
const DefaultBufferSize = 64

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	BufferSize int
}

// RealPublisher publishes to an actual MQTT broker. It never blocks the
// caller on the network: while disconnected, messages wait in an outbox
// that is flushed when the connection comes up.
type RealPublisher struct {
	ctx    context.Context
	client paho.Client

	mu        sync.Mutex
	connected bool
	out       *outbox
}

// NewRealPublisher creates a publisher and starts connecting in the
// background. The broker does not need to be reachable yet.
func NewRealPublisher(ctx context.Context, o Options) (*RealPublisher, error) {
	if o.Broker == "" {
		return nil, fmt.Errorf("mqtt: broker is required")
	}
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultBufferSize
	}

	ctx = logger.WithKV(logger.WithName(ctx, "mqtt"), "broker", o.Broker)
	p := &RealPublisher{
		ctx: ctx,
		out: newOutbox(ctx, o.BufferSize),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()

	return p, nil
}

func (p *RealPublisher) onConnect(paho.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.connected = true
	pending := p.out.flush()
	logger.InfoKV(p.ctx, "connected", "queued", len(pending), "lost", p.out.lost)

	for _, m := range pending {
		p.send(m)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.connected = false
	p.mu.Unlock()
	logger.WarnKV(p.ctx, "connection lost", "error", err)
}

// IsConnected implements ConnectionStatus.
func (p *RealPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Publish sends an engine event with QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Event, at time.Time) error {
	payload, err := FormatPayload(event, at)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	p.enqueue(bufferedMsg{topic: Topic, payload: payload})
	return nil
}

// PublishSystem sends a system event with QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	p.enqueue(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
	return nil
}

func (p *RealPublisher) enqueue(m bufferedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		p.out.add(m)
		return
	}
	p.send(m)
}

// send must be called with mu held.
func (p *RealPublisher) send(m bufferedMsg) {
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			logger.WarnKV(p.ctx, "publish timeout", "topic", m.topic)
			return
		}
		if err := token.Error(); err != nil {
			logger.WarnKV(p.ctx, "publish failed", "topic", m.topic, "error", err)
		}
	}()
}

// Close disconnects from the broker, allowing in-flight messages a second
// to complete.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
