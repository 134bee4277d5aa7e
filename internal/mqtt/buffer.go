package mqtt

import (
	"context"

	"github.com/sweeney/chronodesk/internal/logger"
)

// bufferedMsg is a serialized message waiting for the broker.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox queues messages while the broker is unreachable, in publish order.
//
// A retained message supersedes an earlier retained one on the same topic,
// since the broker would only keep the last. When the queue is full the
// oldest non-retained message goes first, so a queued SHUTDOWN survives a
// burst of engine events.
//
// The publisher guards it with its mutex.
type outbox struct {
	ctx   context.Context
	limit int
	queue []bufferedMsg

	lost   int  // messages dropped since creation
	warned bool // overflow logged since the last flush
}

func newOutbox(ctx context.Context, limit int) *outbox {
	if limit < 1 {
		limit = 1
	}
	return &outbox{ctx: ctx, limit: limit}
}

func (o *outbox) add(m bufferedMsg) {
	if m.retained {
		for i, q := range o.queue {
			if q.retained && q.topic == m.topic {
				o.queue = append(o.queue[:i], o.queue[i+1:]...)
				break
			}
		}
	}

	if len(o.queue) >= o.limit {
		o.evict()
	}
	o.queue = append(o.queue, m)
}

// evict drops the oldest non-retained message, or the oldest message when
// every queued one is retained.
func (o *outbox) evict() {
	victim := 0
	for i, q := range o.queue {
		if !q.retained {
			victim = i
			break
		}
	}
	o.queue = append(o.queue[:victim], o.queue[victim+1:]...)
	o.lost++

	if !o.warned {
		logger.WarnKV(o.ctx, "outbox full, dropping messages", "limit", o.limit)
		o.warned = true
	}
}

// flush empties the queue and returns its messages in publish order.
func (o *outbox) flush() []bufferedMsg {
	if len(o.queue) == 0 {
		return nil
	}
	out := o.queue
	o.queue = nil
	o.warned = false
	return out
}

func (o *outbox) size() int {
	return len(o.queue)
}
