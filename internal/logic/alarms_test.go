package logic

import (
	"testing"

	"github.com/sweeney/chronodesk/internal/clock"
	"github.com/sweeney/chronodesk/internal/model"
)

func wall(h, m, s int) clock.WallTime {
	return clock.WallTime{Hour: h, Minute: m, Second: s}
}

func TestAlarmAddRejectsDuplicate(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 25)
	if !r.Add(model.Alarm{Hour: 7, Minute: 30, Enabled: true, SoundTrack: 3}) {
		t.Fatal("first add refused")
	}
	before := r.All()

	if r.Add(model.Alarm{Hour: 7, Minute: 30, Enabled: false, SoundTrack: 9}) {
		t.Error("duplicate add should be refused")
	}
	after := r.All()
	if len(after) != 1 || after[0] != before[0] {
		t.Errorf("registry changed by duplicate add: %v -> %v", before, after)
	}
}

func TestAlarmLoadDropsDuplicates(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 25)
	r.Load([]model.Alarm{
		{Hour: 6, Minute: 0, SoundTrack: 1},
		{Hour: 6, Minute: 0, SoundTrack: 2},
		{Hour: 30, Minute: 0, SoundTrack: 1},
	})
	got := r.All()
	if len(got) != 2 {
		t.Fatalf("expected 2 alarms, got %v", got)
	}
	if got[0].SoundTrack != 1 || got[1].Hour != 23 {
		t.Errorf("unexpected load result %v", got)
	}
}

func TestAlarmRingsOnceAtSecondZero(t *testing.T) {
	n := &FakeNotifier{}
	r := NewAlarmRegistry(n, 18)
	r.Load([]model.Alarm{{Hour: 7, Minute: 30, Enabled: true, SoundTrack: 3}})

	if ev := r.Tick(wall(7, 29, 59), true, 0); ev != nil {
		t.Fatalf("rang early: %v", ev)
	}

	ev := r.Tick(wall(7, 30, 0), true, 100)
	if len(ev) != 1 || ev[0].Type != EventAlarmRinging || ev[0].AlarmIndex != 0 {
		t.Fatalf("expected ringing event, got %v", ev)
	}
	if !r.Ringing() {
		t.Error("expected ringing")
	}
	if len(n.Local) != 1 || n.Local[0] != (LocalCall{Track: 3, Volume: 18}) {
		t.Errorf("expected local alert track 3, got %v", n.Local)
	}
	if len(n.Remote) != 1 || !n.Remote[0].All || n.Remote[0].Title != PushAlarmTitle {
		t.Errorf("expected push to all accounts, got %+v", n.Remote)
	}

	// same second again: throttled
	if ev := r.Tick(wall(7, 30, 0), true, 150); ev != nil {
		t.Errorf("same second evaluated twice: %v", ev)
	}
	// later in the minute: no second match
	r.Acknowledge()
	if ev := r.Tick(wall(7, 30, 1), true, 1100); ev != nil {
		t.Errorf("rang again at :01: %v", ev)
	}
	if len(n.Local) != 1 {
		t.Errorf("expected a single local alert, got %d", len(n.Local))
	}
}

func TestAlarmFirstMatchInListOrder(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 25)
	r.Load([]model.Alarm{
		{Hour: 8, Minute: 0, Enabled: false, SoundTrack: 1},
		{Hour: 9, Minute: 0, Enabled: true, SoundTrack: 2},
	})
	if ev := r.Tick(wall(8, 0, 0), true, 0); ev != nil {
		t.Errorf("disabled alarm rang: %v", ev)
	}
	ev := r.Tick(wall(9, 0, 0), true, 0)
	if len(ev) != 1 || ev[0].AlarmIndex != 1 {
		t.Errorf("expected alarm 1 to ring, got %v", ev)
	}
	a, ok := r.Active()
	if !ok || a.Hour != 9 {
		t.Errorf("expected active 09:00, got %v %v", a, ok)
	}
}

func TestAlarmNoRTC(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 25)
	r.Add(model.Alarm{Hour: 0, Minute: 0, Enabled: true, SoundTrack: 1})
	if ev := r.Tick(clock.WallTime{}, false, 0); ev != nil {
		t.Errorf("alarm matched without RTC: %v", ev)
	}
}

func TestAlarmAcknowledgeIdempotent(t *testing.T) {
	n := &FakeNotifier{}
	r := NewAlarmRegistry(n, 25)
	r.Acknowledge()
	if n.Stops != 0 {
		t.Errorf("acknowledge while idle touched the notifier")
	}

	r.Add(model.Alarm{Hour: 6, Minute: 15, Enabled: true, SoundTrack: 1})
	r.Tick(wall(6, 15, 0), true, 0)
	r.Acknowledge()
	r.Acknowledge()
	if r.Ringing() || n.Stops != 1 {
		t.Errorf("expected one stop, got ringing=%v stops=%d", r.Ringing(), n.Stops)
	}
	if !r.All()[0].Enabled {
		t.Error("acknowledged alarm should stay enabled")
	}
}

func TestAlarmNextWrapsAtMidnight(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 25)
	r.Load([]model.Alarm{
		{Hour: 12, Minute: 0, Enabled: true, SoundTrack: 1},
		{Hour: 0, Minute: 5, Enabled: true, SoundTrack: 1},
	})

	idx, mins, ok := r.Next(wall(23, 58, 30))
	if !ok || idx != 1 || mins != 7 {
		t.Errorf("expected alarm 1 in 7 minutes, got %d in %d (%v)", idx, mins, ok)
	}

	idx, mins, _ = r.Next(wall(0, 6, 0))
	if idx != 0 || mins != 714 {
		t.Errorf("expected alarm 0 in 714 minutes, got %d in %d", idx, mins)
	}

	r.SetEnabled(false)
	if _, _, ok := r.Next(wall(1, 0, 0)); ok {
		t.Error("expected no next alarm when all disabled")
	}
}

func TestAlarmRemoveAdjustsActive(t *testing.T) {
	n := &FakeNotifier{}
	r := NewAlarmRegistry(n, 25)
	r.Load([]model.Alarm{
		{Hour: 5, Minute: 0, Enabled: true, SoundTrack: 1},
		{Hour: 6, Minute: 0, Enabled: true, SoundTrack: 1},
	})
	r.Tick(wall(6, 0, 0), true, 0)

	r.Remove(0)
	a, ok := r.Active()
	if !ok || a.Hour != 6 {
		t.Errorf("active alarm lost after removing an earlier one: %v %v", a, ok)
	}

	r.Remove(0)
	if r.Ringing() || n.Alerting {
		t.Error("removing the ringing alarm should silence it")
	}
	if r.Remove(3) {
		t.Error("remove out of range should fail")
	}
}

func TestAlarmSetAlarmEnabled(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 25)
	r.Add(model.Alarm{Hour: 1, Minute: 1, SoundTrack: 1})
	if r.AnyEnabled() {
		t.Fatal("new alarm should follow its Enabled field")
	}
	r.SetAlarmEnabled(0, true)
	if !r.AnyEnabled() {
		t.Error("expected enabled")
	}
	r.SetEnabled(false)
	if r.AnyEnabled() {
		t.Error("bulk disable failed")
	}
}

func TestAlarmMissedAcrossGap(t *testing.T) {
	n := &FakeNotifier{}
	r := NewAlarmRegistry(n, 18)
	r.Load([]model.Alarm{
		{Hour: 7, Minute: 30, Enabled: true, SoundTrack: 3},
		{Hour: 7, Minute: 31, Enabled: false, SoundTrack: 3},
	})

	r.Tick(wall(7, 29, 50), true, 0)
	if ev := r.Tick(wall(7, 31, 20), true, 90000); ev != nil {
		t.Fatalf("expected no ringing after the gap, got %v", ev)
	}
	if r.Ringing() || len(n.Local) != 0 {
		t.Error("a skipped alarm must not ring late")
	}

	missed := r.Missed()
	if len(missed) != 1 || missed[0].Hour != 7 || missed[0].Minute != 30 {
		t.Fatalf("expected 07:30 reported as missed, got %v", missed)
	}
	if again := r.Missed(); again != nil {
		t.Errorf("Missed should clear, got %v", again)
	}
}

func TestAlarmNotMissedWhenScannedOnTime(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 18)
	r.Load([]model.Alarm{{Hour: 7, Minute: 30, Enabled: true, SoundTrack: 3}})

	r.Tick(wall(7, 29, 58), true, 0)
	r.Tick(wall(7, 29, 59), true, 1000)
	if ev := r.Tick(wall(7, 30, 0), true, 2000); len(ev) != 1 {
		t.Fatalf("expected ringing, got %v", ev)
	}
	if missed := r.Missed(); missed != nil {
		t.Errorf("nothing was skipped, got %v", missed)
	}
}

func TestAlarmMissedAcrossMidnight(t *testing.T) {
	r := NewAlarmRegistry(&FakeNotifier{}, 18)
	r.Load([]model.Alarm{{Hour: 0, Minute: 0, Enabled: true, SoundTrack: 1}})

	r.Tick(wall(23, 59, 58), true, 0)
	r.Tick(wall(0, 0, 3), true, 5000)
	if missed := r.Missed(); len(missed) != 1 {
		t.Errorf("expected midnight alarm missed, got %v", missed)
	}
}
