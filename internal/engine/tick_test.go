package engine

import (
	"testing"
	"time"
)

func TestEngineRunsAndStops(t *testing.T) {
	eng := NewEngine(time.Millisecond, 0)
	eng.SetSpeed(16)

	ticks := make(chan uint64, 64)
	eng.OnTick = func(tick uint64) {
		select {
		case ticks <- tick:
		default:
		}
	}

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	// Wait for at least three ticks.
	var last uint64
	deadline := time.After(2 * time.Second)
	for last < 3 {
		select {
		case last = <-ticks:
		case <-deadline:
			t.Fatalf("engine never reached tick 3")
		}
	}

	eng.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("engine did not stop")
	}
	if eng.Running() {
		t.Fatalf("engine still marked running")
	}
}

func TestEngineCountsSlowTicks(t *testing.T) {
	eng := NewEngine(time.Millisecond, 1)
	eng.SetSpeed(16)

	var calls int
	eng.OnTick = func(uint64) {
		calls++
		time.Sleep(3 * time.Millisecond)
		if calls >= 3 {
			eng.Stop()
		}
	}

	eng.Run()
	if eng.SlowTicks() < 3 {
		t.Fatalf("expected at least 3 slow ticks, got %d", eng.SlowTicks())
	}
}

// Counters must be readable, and speed adjustable, from other goroutines
// while the loop runs. Run with -race.
func TestEngineCountersConcurrentAccess(t *testing.T) {
	eng := NewEngine(time.Millisecond, 0)
	eng.SetSpeed(16)
	eng.OnTick = func(uint64) {}

	done := make(chan struct{})
	go func() {
		eng.Run()
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for eng.Tick() < 3 {
		_ = eng.SlowTicks()
		_ = eng.Running()
		eng.SetSpeed(32)
		if time.Now().After(deadline) {
			t.Fatalf("engine never reached tick 3")
		}
		time.Sleep(time.Millisecond)
	}

	eng.Stop()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("engine did not stop")
	}
	if eng.Tick() < 3 {
		t.Fatalf("tick counter regressed: %d", eng.Tick())
	}
}
