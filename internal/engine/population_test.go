package engine

import (
	"math"
	"testing"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

func TestTrendOf(t *testing.T) {
	cases := []struct {
		name    string
		history []int
		want    Trend
	}{
		{"empty", nil, TrendStable},
		{"single point", []int{5}, TrendStable},
		{"strictly increasing", []int{3, 4, 5}, TrendGrowing},
		{"strictly decreasing", []int{5, 4, 3}, TrendDeclining},
		{"flat", []int{4, 4, 4}, TrendStable},
		{"mixed", []int{3, 5, 4}, TrendStable},
		{"plateau then rise", []int{4, 4, 5}, TrendStable},
		{"only last window counts", []int{9, 8, 3, 4, 5}, TrendGrowing},
		{"two points up", []int{3, 4}, TrendGrowing},
		{"two points down", []int{4, 3}, TrendDeclining},
	}
	for _, tc := range cases {
		if got := TrendOf(tc.history); got != tc.want {
			t.Errorf("%s: TrendOf(%v) = %v, want %v", tc.name, tc.history, got, tc.want)
		}
	}
}

func TestEventProbability(t *testing.T) {
	if got := EventProbability(0, 1); got != 0 {
		t.Fatalf("zero rate should give 0, got %g", got)
	}
	if got := EventProbability(0.05, 0); got != 0 {
		t.Fatalf("zero dt should give 0, got %g", got)
	}
	if got := EventProbability(-1, 1); got != 0 {
		t.Fatalf("negative rate should give 0, got %g", got)
	}

	p1 := EventProbability(0.05, 1)
	p10 := EventProbability(0.05, 10)
	if p1 <= 0 || p1 >= 1 || p10 <= 0 || p10 >= 1 {
		t.Fatalf("probabilities out of (0, 1): %g, %g", p1, p10)
	}
	if p10 <= p1 {
		t.Fatalf("longer ticks should raise the probability: %g vs %g", p1, p10)
	}
	// 1 - exp(-0.05) for a unit tick.
	if want := 1 - math.Exp(-0.05); math.Abs(p1-want) > 1e-12 {
		t.Fatalf("expected %g, got %g", want, p1)
	}
}

// starve puts a village into complete food exhaustion: critical status, no
// stock, no production, positive consumption.
func starve(v *village.Village) {
	v.Storage = village.Store{}
	v.SyncStock()
	v.Economy.Production = village.Store{}
	v.Economy.Consumption = village.Store{Food: 5}
	v.Economy.Status[world.ResourceFood] = village.StatusCritical
}

func TestExhaustionDeclinesWithinGrace(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 10, cfg)
	// Draws always above the decline probability, so only the grace
	// guarantee can shrink the population.
	sim := newTestSim([]*village.Village{v}, 0.99)

	for tick := 1; tick <= cfg.StarvationGraceTicks; tick++ {
		starve(v)
		sim.UpdatePopulation(v, cfg.TickSeconds)
		if tick < cfg.StarvationGraceTicks && v.Population != 10 {
			t.Fatalf("population declined at tick %d, before the grace bound", tick)
		}
	}
	if v.Population != 9 {
		t.Fatalf("expected forced decline to 9 after %d ticks, got %d",
			cfg.StarvationGraceTicks, v.Population)
	}
	if v.StarvationTicks != 0 {
		t.Fatalf("expected starvation counter reset after decline, got %d", v.StarvationTicks)
	}
}

func TestDeclineCanFireProbabilistically(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 10, cfg)
	// A draw of 0 is always below the decline probability.
	sim := newTestSim([]*village.Village{v}, 0.0)

	starve(v)
	sim.UpdatePopulation(v, cfg.TickSeconds)
	if v.Population != 9 {
		t.Fatalf("expected immediate probabilistic decline, got %d", v.Population)
	}
}

func TestPopulationNeverBelowOne(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 1, cfg)
	sim := newTestSim([]*village.Village{v}, 0.0)

	for i := 0; i < 20; i++ {
		starve(v)
		sim.UpdatePopulation(v, cfg.TickSeconds)
	}
	if v.Population != 1 {
		t.Fatalf("population fell below the floor: %d", v.Population)
	}
}

func TestGrowthRequiresBufferAndProduction(t *testing.T) {
	cfg := config.Default()
	sim := newTestSim(nil, 0.0) // draws always succeed

	prosper := func(v *village.Village) {
		v.Storage = village.Store{Food: 150}
		v.SyncStock()
		v.Economy.Production = village.Store{Food: 10}
		v.Economy.Consumption = village.Store{Food: 5}
		v.Economy.Status = village.BalancedStatus()
	}

	v := testVillage("Oakford", 8, 8, 10, cfg)
	prosper(v)
	if !sim.growthPossible(v, cfg.TickSeconds) {
		t.Fatalf("expected growth possible for a prosperous village")
	}

	// Thin stock: below the forward-looking buffer.
	prosper(v)
	v.Storage.Food = cfg.GrowthBufferTicks*v.Economy.Consumption.Food - 1
	v.SyncStock()
	if sim.growthPossible(v, cfg.TickSeconds) {
		t.Fatalf("growth allowed without the stock buffer")
	}

	// Production below consumption.
	prosper(v)
	v.Economy.Production.Food = 4
	if sim.growthPossible(v, cfg.TickSeconds) {
		t.Fatalf("growth allowed below the production threshold")
	}

	// At the cap.
	prosper(v)
	v.Population = cfg.PopulationCap
	if sim.growthPossible(v, cfg.TickSeconds) {
		t.Fatalf("growth allowed at the population cap")
	}

	// Critical food.
	prosper(v)
	v.Population = 10
	v.Economy.Status[world.ResourceFood] = village.StatusCritical
	if sim.growthPossible(v, cfg.TickSeconds) {
		t.Fatalf("growth allowed with critical food")
	}
}

func TestGrowthIncrementsPopulation(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 10, cfg)
	v.Storage = village.Store{Food: 150}
	v.SyncStock()
	sim := newTestSim([]*village.Village{v}, 0.0)
	v.Economy.Production = village.Store{Food: 10}
	v.Economy.Consumption = village.Store{Food: 5}

	sim.UpdatePopulation(v, cfg.TickSeconds)
	if v.Population != 11 {
		t.Fatalf("expected growth to 11, got %d", v.Population)
	}
	if len(v.History) != 1 || v.History[0] != 11 {
		t.Fatalf("expected history entry 11, got %v", v.History)
	}
}
