// Population dynamics — probabilistic growth and decline driven by food
// supply, with a deterministic decline guarantee under total exhaustion.
package engine

import (
	"fmt"
	"math"

	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// Trend is the derived population direction. It is never stored — always
// recomputed from the history ring.
type Trend uint8

const (
	TrendStable Trend = iota
	TrendGrowing
	TrendDeclining
)

// String returns a human-readable trend name.
func (t Trend) String() string {
	switch t {
	case TrendGrowing:
		return "growing"
	case TrendDeclining:
		return "declining"
	default:
		return "stable"
	}
}

// TrendOf derives the population trend from the last three history entries:
// strictly increasing means growing, strictly decreasing means declining,
// anything else (including fewer than two points) is stable.
func TrendOf(history []int) Trend {
	if len(history) < 2 {
		return TrendStable
	}
	window := history
	if len(window) > 3 {
		window = window[len(window)-3:]
	}

	increasing, decreasing := true, true
	for i := 1; i < len(window); i++ {
		if window[i] <= window[i-1] {
			increasing = false
		}
		if window[i] >= window[i-1] {
			decreasing = false
		}
	}
	switch {
	case increasing:
		return TrendGrowing
	case decreasing:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// EventProbability maps a per-second event rate and a tick size to the
// probability of at least one event in the tick. Pure, so tests can verify
// the mapping without touching randomness.
func EventProbability(rate, dt float64) float64 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math.Exp(-rate*dt)
}

// UpdatePopulation runs one population tick. Decline and growth are
// mutually exclusive; decline takes priority. Population never drops below
// 1 and never exceeds the configured cap.
func (s *Simulation) UpdatePopulation(v *village.Village, dt float64) {
	s.sanitize(v)

	eco := &v.Economy
	foodStatus := eco.Status[world.ResourceFood]
	stock := eco.Stock.Food
	prod := eco.Production.Food
	cons := eco.Consumption.Food

	exhausted := foodStatus == village.StatusCritical && stock <= 0 && prod <= 0
	starving := foodStatus == village.StatusCritical && prod < s.cfg.DeclineProductionRatio*cons

	switch {
	case exhausted || starving:
		if exhausted {
			v.StarvationTicks++
		}
		decrement := s.rng.Float() < EventProbability(s.cfg.DeclineRate, dt)
		// Sustained complete exhaustion must decline within a bounded number
		// of ticks, not merely probabilistically.
		if exhausted && v.StarvationTicks >= s.cfg.StarvationGraceTicks {
			decrement = true
		}
		if decrement && v.Population > 1 {
			v.Population--
			v.StarvationTicks = 0
			s.EmitEvent(Event{
				Tick:        s.LastTick,
				Description: fmt.Sprintf("famine thins %s to %d souls", v.Name, v.Population),
				Category:    "population",
			})
		}

	case s.growthPossible(v, dt):
		v.StarvationTicks = 0
		if s.rng.Float() < EventProbability(s.cfg.GrowthRate, dt) {
			v.Population++
			s.EmitEvent(Event{
				Tick:        s.LastTick,
				Description: fmt.Sprintf("%s grows to %d souls", v.Name, v.Population),
				Category:    "population",
			})
		}

	default:
		v.StarvationTicks = 0
	}

	v.RecordPopulation(s.cfg.HistoryLimit)
	s.sanitize(v)
}

// growthPossible gates population increase: below the cap, food stock covers
// the forward-looking buffer after the next tick's draw, production covers
// near-future consumption, and food is not critical.
func (s *Simulation) growthPossible(v *village.Village, dt float64) bool {
	if v.Population >= s.cfg.PopulationCap {
		return false
	}
	if v.Economy.Status[world.ResourceFood] == village.StatusCritical {
		return false
	}
	stock := v.Economy.Stock.Food
	prod := v.Economy.Production.Food
	cons := v.Economy.Consumption.Food

	if stock-cons*dt < cons*s.cfg.GrowthBufferTicks {
		return false
	}
	if prod < cons*s.cfg.GrowthProductionFactor {
		return false
	}
	return true
}
