package main

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/Jep4/diabete-random-generate/internal/exchange"
	"github.com/Jep4/diabete-random-generate/internal/nutrition"
)

func countingSampler(n *atomic.Int32) func() exchange.Meal {
	return func() exchange.Meal {
		n.Add(1)
		return exchange.Meal{ID: "m"}
	}
}

func referenceInput() nutrition.Input {
	return nutrition.Input{Age: "45", Height: "170", Weight: "70", Sex: "male", Activity: "sedentary"}
}

func TestSession_RestartFiresOnce(t *testing.T) {
	fc := &fakeClock{}
	st := newSessionStore(time.Hour, fc.newGate)
	defer st.closeAll()
	s, _ := st.get("")

	var samples atomic.Int32
	in := referenceInput()
	s.generate(&in, 2, countingSampler(&samples))
	first := fc.last(t)
	first.tick(t)

	s.generate(nil, 2, countingSampler(&samples))
	second := fc.last(t)
	if first == second {
		t.Fatal("restart did not create a new ticker")
	}
	eventually(t, first.isStopped, "superseded ticker not stopped")

	if v := s.view(false); v.Gate.Remaining != 2 || v.Meal != nil {
		t.Errorf("after restart: remaining=%d meal=%v", v.Gate.Remaining, v.Meal != nil)
	}

	second.tick(t)
	second.tick(t)
	eventually(t, func() bool { return s.view(false).Meal != nil }, "meal never set")
	time.Sleep(10 * time.Millisecond)
	if n := samples.Load(); n != 1 {
		t.Errorf("sampled %d times, want 1", n)
	}
}

func TestSession_GenerateClearsOldMeal(t *testing.T) {
	fc := &fakeClock{}
	st := newSessionStore(time.Hour, fc.newGate)
	defer st.closeAll()
	s, _ := st.get("")

	var samples atomic.Int32
	s.generate(nil, 0, countingSampler(&samples))
	eventually(t, func() bool { return s.view(false).Meal != nil }, "meal never set")

	s.generate(nil, 3, countingSampler(&samples))
	v := s.view(false)
	if v.Meal != nil || v.ShowMeal() {
		t.Error("previous meal visible during a new countdown")
	}
}

func TestSession_NoticeIsOneShot(t *testing.T) {
	st := newSessionStore(time.Hour, nil)
	defer st.closeAll()
	s, _ := st.get("")

	if err := s.calculate(nutrition.Input{Height: "170", Weight: "70", Sex: "male"}); err == nil {
		t.Fatal("expected a validation error")
	}
	if v := s.view(false); v.Notice == "" {
		t.Fatal("notice not set")
	}
	if v := s.view(true); v.Notice != nutrition.MissingFieldsNotice {
		t.Errorf("notice = %q", v.Notice)
	}
	if v := s.view(true); v.Notice != "" {
		t.Errorf("notice shown twice: %q", v.Notice)
	}

	s.calculate(nutrition.Input{Height: "170", Weight: "70", Sex: "male"})
	s.calculate(referenceInput())
	if v := s.view(true); v.Notice != "" || v.Result == nil || v.Result.Calories != 1851 {
		t.Errorf("successful calculation should clear the notice: %+v", v)
	}
}

func TestSessionStore_ExpiryStopsCountdown(t *testing.T) {
	fc := &fakeClock{}
	st := newSessionStore(time.Minute, fc.newGate)
	defer st.closeAll()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	idle, _ := st.get("")
	idle.generate(nil, 5, countingSampler(new(atomic.Int32)))
	ft := fc.last(t)

	now = now.Add(30 * time.Second)
	active, _ := st.get("")

	now = now.Add(45 * time.Second)
	if got, created := st.get(active.id); created || got != active {
		t.Fatal("active session was not found")
	}
	if n := st.sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
	eventually(t, ft.isStopped, "expired session's countdown not stopped")
	if st.len() != 1 {
		t.Errorf("%d live sessions, want 1", st.len())
	}

	now = now.Add(2 * time.Minute)
	if got, created := st.get(active.id); !created || got == active {
		t.Error("expired session was reused")
	}
}

func TestSessionStore_RemoveIsIdempotent(t *testing.T) {
	st := newSessionStore(time.Hour, nil)
	s, _ := st.get("")
	if !st.remove(s.id) {
		t.Fatal("remove of a live session returned false")
	}
	if st.remove(s.id) {
		t.Error("second remove returned true")
	}
	if st.remove("unknown") {
		t.Error("remove of an unknown id returned true")
	}
}
