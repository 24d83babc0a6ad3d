package engine

import (
	"log/slog"
	"math"
	"sync/atomic"
	"time"
)

// Engine drives the simulation forward in wall-clock time. Each tick it
// calls OnTick, then sleeps out the remainder of the interval scaled by
// the speed multiplier. Ticks that blow past the budget are counted,
// never skipped. Counters and speed are atomic so HTTP handlers can read
// and adjust them while Run is looping.
type Engine struct {
	Interval time.Duration // base tick interval

	OnTick func(tick uint64)

	tick      atomic.Uint64
	slowTicks atomic.Uint64
	running   atomic.Bool
	speedBits atomic.Uint64 // Float64bits of the speed multiplier

	budget time.Duration
	stop   chan struct{}
}

// NewEngine creates an engine at real-time speed with the given tick
// interval and slow-tick budget.
func NewEngine(interval time.Duration, budgetMS int) *Engine {
	e := &Engine{
		Interval: interval,
		budget:   time.Duration(budgetMS) * time.Millisecond,
		stop:     make(chan struct{}),
	}
	e.SetSpeed(1.0)
	return e
}

// Tick returns the monotonic tick counter. Never resets.
func (e *Engine) Tick() uint64 { return e.tick.Load() }

// SlowTicks returns the count of ticks whose work exceeded the budget.
func (e *Engine) SlowTicks() uint64 { return e.slowTicks.Load() }

// Running reports whether the tick loop is active.
func (e *Engine) Running() bool { return e.running.Load() }

// Speed returns the current speed multiplier. 1.0 = real-time, 0 = paused.
func (e *Engine) Speed() float64 { return math.Float64frombits(e.speedBits.Load()) }

// SetSpeed changes the speed multiplier. Takes effect on the next tick.
func (e *Engine) SetSpeed(speed float64) { e.speedBits.Store(math.Float64bits(speed)) }

// Run starts the tick loop. Blocks until Stop is called.
func (e *Engine) Run() {
	e.running.Store(true)
	slog.Info("engine started", "tick", e.Tick(), "interval", e.Interval, "speed", e.Speed())

	for {
		select {
		case <-e.stop:
			e.running.Store(false)
			slog.Info("engine stopped", "tick", e.Tick(), "slow_ticks", e.SlowTicks())
			return
		default:
		}

		speed := e.Speed()
		if speed <= 0 {
			// Paused.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		tick := e.tick.Add(1)
		if e.OnTick != nil {
			e.OnTick(tick)
		}
		elapsed := time.Since(start)

		if e.budget > 0 && elapsed > e.budget {
			e.slowTicks.Add(1)
			slog.Warn("slow tick", "tick", tick, "elapsed", elapsed, "budget", e.budget)
		}

		target := time.Duration(float64(e.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}
}

// Stop halts the tick loop. Safe to call once.
func (e *Engine) Stop() {
	close(e.stop)
}
