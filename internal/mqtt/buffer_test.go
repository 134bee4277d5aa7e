package mqtt

import (
	"context"
	"testing"
)

func msg(topic string, b byte) bufferedMsg {
	return bufferedMsg{topic: topic, payload: []byte{b}}
}

func payloads(msgs []bufferedMsg) []byte {
	out := make([]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload[0]
	}
	return out
}

func TestOutboxEmptyFlush(t *testing.T) {
	o := newOutbox(context.Background(), 10)
	if got := o.flush(); got != nil {
		t.Errorf("expected nil from empty flush, got %d items", len(got))
	}
}

func TestOutboxKeepsPublishOrder(t *testing.T) {
	o := newOutbox(context.Background(), 10)
	for i := 0; i < 5; i++ {
		o.add(msg(Topic, byte(i)))
	}
	if o.size() != 5 {
		t.Fatalf("size: got %d, want 5", o.size())
	}

	got := o.flush()
	if string(payloads(got)) != string([]byte{0, 1, 2, 3, 4}) {
		t.Errorf("order: got %v", payloads(got))
	}
	if o.size() != 0 || o.flush() != nil {
		t.Error("expected outbox empty after flush")
	}
}

func TestOutboxDropsOldestEvent(t *testing.T) {
	o := newOutbox(context.Background(), 3)
	for i := 0; i < 5; i++ {
		o.add(msg(Topic, byte(i)))
	}

	if got := payloads(o.flush()); string(got) != string([]byte{2, 3, 4}) {
		t.Errorf("expected the newest 3, got %v", got)
	}
	if o.lost != 2 {
		t.Errorf("lost: got %d, want 2", o.lost)
	}
}

func TestOutboxRetainedSurvivesEventBurst(t *testing.T) {
	o := newOutbox(context.Background(), 3)
	shutdown := bufferedMsg{topic: TopicSystem, payload: []byte{9}, qos: 1, retained: true}
	o.add(shutdown)
	for i := 0; i < 4; i++ {
		o.add(msg(Topic, byte(i)))
	}

	got := o.flush()
	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}
	if !got[0].retained || got[0].payload[0] != 9 {
		t.Errorf("expected the retained message first, got %+v", got[0])
	}
	if got[1].payload[0] != 2 || got[2].payload[0] != 3 {
		t.Errorf("expected events 2 and 3, got %v", payloads(got[1:]))
	}
}

func TestOutboxRetainedSupersedes(t *testing.T) {
	o := newOutbox(context.Background(), 10)
	o.add(bufferedMsg{topic: TopicSystem, payload: []byte{1}, qos: 1, retained: true})
	o.add(msg(Topic, 2))
	o.add(bufferedMsg{topic: TopicSystem, payload: []byte{3}, qos: 1, retained: true})

	got := o.flush()
	if string(payloads(got)) != string([]byte{2, 3}) {
		t.Errorf("expected the earlier retained message replaced, got %v", payloads(got))
	}
	if o.lost != 0 {
		t.Errorf("superseding is not a loss, lost=%d", o.lost)
	}
}

func TestOutboxAllRetainedEvictsOldest(t *testing.T) {
	o := newOutbox(context.Background(), 2)
	o.add(bufferedMsg{topic: "a", payload: []byte{1}, retained: true})
	o.add(bufferedMsg{topic: "b", payload: []byte{2}, retained: true})
	o.add(bufferedMsg{topic: "c", payload: []byte{3}, retained: true})

	if got := payloads(o.flush()); string(got) != string([]byte{2, 3}) {
		t.Errorf("got %v, want [2 3]", got)
	}
}

func TestOutboxPreservesFields(t *testing.T) {
	o := newOutbox(context.Background(), 10)
	o.add(bufferedMsg{
		topic:    "chronodesk/test",
		payload:  []byte(`{"test":true}`),
		qos:      1,
		retained: true,
	})

	got := o.flush()
	if len(got) != 1 {
		t.Fatalf("expected 1 item, got %d", len(got))
	}
	if got[0].topic != "chronodesk/test" || string(got[0].payload) != `{"test":true}` {
		t.Errorf("unexpected message: %+v", got[0])
	}
	if got[0].qos != 1 || !got[0].retained {
		t.Errorf("qos/retained lost: %+v", got[0])
	}
}

func TestOutboxWarnFlagResetsOnFlush(t *testing.T) {
	o := newOutbox(context.Background(), 1)
	o.add(msg(Topic, 1))
	o.add(msg(Topic, 2))
	if !o.warned {
		t.Error("expected overflow to be flagged")
	}

	o.flush()
	if o.warned {
		t.Error("expected flag cleared by flush")
	}
}

func TestOutboxMinimumLimit(t *testing.T) {
	o := newOutbox(context.Background(), 0)
	o.add(msg("a", 1))
	o.add(msg("b", 2))

	got := o.flush()
	if len(got) != 1 || got[0].topic != "b" {
		t.Errorf("expected only the newest message, got %+v", got)
	}
}
