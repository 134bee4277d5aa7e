package logic

import (
	"testing"

	"github.com/sweeney/chronodesk/internal/model"
)

func testTimers() []model.CustomTimer {
	return []model.CustomTimer{
		{Name: "Tea", Phases: []model.TimerPhase{
			{Name: "Boil", DurationSeconds: 3, SoundTrack: 4},
			{Name: "Steep", DurationSeconds: 2, SoundTrack: 5, NotifyTargets: []int{1}},
			{Name: "Cool", DurationSeconds: 1},
		}},
		{Name: "Empty"},
		{Name: "Single", Phases: []model.TimerPhase{{Name: "Only", DurationSeconds: 1, SoundTrack: 9}}},
	}
}

// runToEnd ticks every 100ms until the sequence leaves the running states.
func runToEnd(t *testing.T, s *Sequence, start uint32) []Event {
	t.Helper()
	var events []Event
	now := start
	for i := 0; i < 10_000 && s.Running(); i++ {
		now += 100
		events = append(events, s.Tick(now)...)
	}
	if s.Running() {
		t.Fatal("sequence did not finish")
	}
	return events
}

func TestSequenceRunsAllPhasesInOrder(t *testing.T) {
	n := &FakeNotifier{}
	s := NewSequence(n, 22, testTimers())

	if !s.Start(1000) {
		t.Fatal("start refused")
	}
	events := runToEnd(t, s, 1000)

	wantTypes := []EventType{EventPhaseComplete, EventPhaseComplete, EventPhaseComplete, EventSequenceFinished}
	if len(events) != len(wantTypes) {
		t.Fatalf("expected %d events, got %d: %+v", len(wantTypes), len(events), events)
	}
	for i, e := range events {
		if e.Type != wantTypes[i] {
			t.Errorf("event %d: expected %s, got %s", i, wantTypes[i], e.Type)
		}
	}
	for i, name := range []string{"Boil", "Steep", "Cool"} {
		if events[i].Phase != name || events[i].PhaseIndex != i || events[i].PhaseCount != 3 {
			t.Errorf("event %d: expected phase %s %d/3, got %+v", i, name, i, events[i])
		}
	}

	// phase 3 has no sound, so two phase alerts plus the routine alert
	want := []LocalCall{{4, 22}, {5, 22}, {RoutineCompleteTrack, 22}}
	if len(n.Local) != len(want) {
		t.Fatalf("expected local alerts %v, got %v", want, n.Local)
	}
	for i := range want {
		if n.Local[i] != want[i] {
			t.Errorf("local alert %d: expected %v, got %v", i, want[i], n.Local[i])
		}
	}

	if len(n.Remote) != 1 || n.Remote[0].Targets[0] != 1 {
		t.Errorf("expected one push to account 1, got %+v", n.Remote)
	}
	if s.State() != SequenceFinished {
		t.Errorf("expected FINISHED, got %s", s.State())
	}
}

func TestSequenceNPhaseAlerts(t *testing.T) {
	for n := 1; n <= 5; n++ {
		phases := make([]model.TimerPhase, n)
		for i := range phases {
			phases[i] = model.TimerPhase{Name: "p", DurationSeconds: uint32(i + 1), SoundTrack: 10 + i}
		}
		fn := &FakeNotifier{}
		s := NewSequence(fn, 25, []model.CustomTimer{{Name: "t", Phases: phases}})
		s.Start(0)
		runToEnd(t, s, 0)

		if len(fn.Local) != n+1 {
			t.Fatalf("%d phases: expected %d local alerts, got %d", n, n+1, len(fn.Local))
		}
		for i := 0; i < n; i++ {
			if fn.Local[i].Track != 10+i {
				t.Errorf("%d phases: alert %d expected track %d, got %d", n, i, 10+i, fn.Local[i].Track)
			}
		}
		if fn.Local[n].Track != RoutineCompleteTrack {
			t.Errorf("%d phases: last alert should be routine track, got %d", n, fn.Local[n].Track)
		}
	}
}

func TestSequenceTickAfterFinishedDoesNothing(t *testing.T) {
	n := &FakeNotifier{}
	s := NewSequence(n, 25, testTimers())
	s.Select(2)
	s.Start(0)
	runToEnd(t, s, 0)

	alerts := len(n.Local)
	for now := uint32(10_000); now < 20_000; now += 500 {
		if ev := s.Tick(now); ev != nil {
			t.Fatalf("tick after finished emitted %v", ev)
		}
	}
	if len(n.Local) != alerts {
		t.Errorf("alerts re-fired after finish: %d -> %d", alerts, len(n.Local))
	}
}

func TestSequenceTransitionHold(t *testing.T) {
	s := NewSequence(&FakeNotifier{}, 25, testTimers())
	s.Start(0)

	s.Tick(3000) // Boil done
	if s.State() != SequenceTransitioning {
		t.Fatalf("expected TRANSITIONING, got %s", s.State())
	}
	if s.NextPhaseName() != "Steep" {
		t.Errorf("expected next phase Steep, got %q", s.NextPhaseName())
	}

	s.Tick(4999)
	if s.State() != SequenceTransitioning {
		t.Fatalf("hold ended early")
	}

	s.Tick(5000)
	if s.State() != SequenceRunning || s.PhaseIndex() != 1 {
		t.Fatalf("expected running phase 1, got %s phase %d", s.State(), s.PhaseIndex())
	}
	if s.Remaining() != 2 {
		t.Errorf("expected 2s remaining in new phase, got %d", s.Remaining())
	}

	// the new phase is anchored at the end of the hold
	s.Tick(6999)
	if s.PhaseIndex() != 1 || s.State() != SequenceRunning {
		t.Errorf("phase 1 ended early")
	}
}

func TestSequenceStartRefused(t *testing.T) {
	s := NewSequence(&FakeNotifier{}, 25, nil)
	if s.Start(0) {
		t.Error("start with no timers should be refused")
	}

	s.SetTimers(testTimers())
	s.Select(1)
	if s.Start(0) {
		t.Error("start of a timer with no phases should be refused")
	}
	if s.State() != SequenceSelecting {
		t.Errorf("expected SELECTING, got %s", s.State())
	}
}

func TestSequenceSelectionCycles(t *testing.T) {
	s := NewSequence(&FakeNotifier{}, 25, testTimers())
	s.SelectPrev()
	if s.Selected() != 2 {
		t.Errorf("expected wrap to 2, got %d", s.Selected())
	}
	s.SelectNext()
	if s.Selected() != 0 {
		t.Errorf("expected wrap to 0, got %d", s.Selected())
	}

	empty := NewSequence(&FakeNotifier{}, 25, nil)
	empty.SelectNext()
	empty.SelectPrev()
	if empty.Selected() != 0 {
		t.Errorf("empty list selection moved to %d", empty.Selected())
	}
}

func TestSequenceRemoveKeepsSelectionValid(t *testing.T) {
	s := NewSequence(&FakeNotifier{}, 25, testTimers())
	s.Select(2)

	// removing an earlier timer keeps pointing at "Single"
	s.RemoveTimer(0)
	if s.Selected() != 1 || s.Timers()[s.Selected()].Name != "Single" {
		t.Errorf("expected selection on Single, got %d", s.Selected())
	}

	// removing the selected last timer clamps
	s.RemoveTimer(1)
	if s.Selected() != 0 {
		t.Errorf("expected clamp to 0, got %d", s.Selected())
	}

	s.RemoveTimer(0)
	if s.Count() != 0 || s.Selected() != 0 {
		t.Errorf("expected empty list at 0, got %d items sel %d", s.Count(), s.Selected())
	}
	if s.RemoveTimer(0) {
		t.Error("remove on empty list should fail")
	}
}

func TestSequenceOwnsCopy(t *testing.T) {
	timers := testTimers()
	s := NewSequence(&FakeNotifier{}, 25, timers)
	timers[0].Phases[0].Name = "mutated"

	if s.Timers()[0].Phases[0].Name != "Boil" {
		t.Error("engine shares phases with the caller")
	}
}

func TestSequencePauseResume(t *testing.T) {
	s := NewSequence(&FakeNotifier{}, 25, testTimers())
	s.Start(0)
	s.Tick(1000)
	s.Pause(1000)
	s.Tick(60_000)
	s.Resume(60_000)
	s.Tick(60_000)
	if s.Remaining() != 2 || s.PhaseIndex() != 0 {
		t.Errorf("expected phase 0 with 2s left, got phase %d %ds", s.PhaseIndex(), s.Remaining())
	}
}
