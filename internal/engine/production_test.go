package engine

import (
	"testing"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/entropy"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

func TestComputeProductionZeroWhenNothingAvailable(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 50, cfg)
	sim := newTestSim([]*village.Village{v})

	got := sim.computeProduction(v, map[world.ResourceType]float64{})
	for _, r := range world.ResourceTypes {
		if rate := got.Get(r); rate != 0 {
			t.Fatalf("expected zero %s production, got %g", world.ResourceName(r), rate)
		}
	}
}

func TestComputeProductionMonotonicInAvailability(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 50, cfg)
	sim := newTestSim([]*village.Village{v})

	low := sim.computeProduction(v, map[world.ResourceType]float64{world.ResourceFood: 100})
	high := sim.computeProduction(v, map[world.ResourceType]float64{world.ResourceFood: 500})
	if high.Food < low.Food {
		t.Fatalf("production fell as availability rose: %g -> %g", low.Food, high.Food)
	}
	if low.Food <= 0 {
		t.Fatalf("expected positive production from positive availability, got %g", low.Food)
	}
}

func TestComputeProductionMonotonicInPopulation(t *testing.T) {
	cfg := config.Default()
	available := map[world.ResourceType]float64{world.ResourceFood: 300}
	sim := newTestSim(nil)

	prev := 0.0
	for _, pop := range []int{1, 10, 100, 500} {
		v := testVillage("Oakford", 8, 8, pop, cfg)
		got := sim.computeProduction(v, available).Food
		if got < prev {
			t.Fatalf("production fell as population rose at pop %d: %g -> %g", pop, prev, got)
		}
		prev = got
	}
}

func TestComputeConsumptionZeroPopulation(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 0, cfg)
	sim := newTestSim([]*village.Village{v})

	got := sim.computeConsumption(v, 0)
	for _, r := range world.ResourceTypes {
		if rate := got.Get(r); rate != 0 {
			t.Fatalf("expected zero %s consumption at zero population, got %g", world.ResourceName(r), rate)
		}
	}
}

func TestConsumptionEconomiesOfScale(t *testing.T) {
	cfg := config.Default()
	sim := newTestSim(nil)

	small := testVillage("Small", 8, 8, 10, cfg)
	big := testVillage("Big", 8, 8, 400, cfg)

	smallRate := sim.computeConsumption(small, small.Population).Food / float64(small.Population)
	bigRate := sim.computeConsumption(big, big.Population).Food / float64(big.Population)

	if bigRate >= smallRate {
		t.Fatalf("expected per-capita consumption to shrink with scale: small %g, big %g", smallRate, bigRate)
	}
	if bigRate < cfg.FoodPerCapita*cfg.ConsumptionScaleMin {
		t.Fatalf("per-capita consumption %g fell below the scale floor %g",
			bigRate, cfg.FoodPerCapita*cfg.ConsumptionScaleMin)
	}
}

func TestUpdateVillageEconomyHarvestsAndStores(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 10, cfg)
	sim := newTestSim([]*village.Village{v})

	before := 0.0
	tiles := sim.Grid.TilesWithin(v.X, v.Y, v.CollectionRadius)
	for _, tile := range tiles {
		before += tile.Resources[world.ResourceFood]
	}

	sim.UpdateVillageEconomy(v, cfg.TickSeconds)

	after := 0.0
	for _, tile := range tiles {
		after += tile.Resources[world.ResourceFood]
	}
	if after >= before {
		t.Fatalf("expected terrain depletion: %g -> %g", before, after)
	}
	if v.Storage.Food <= 0 {
		t.Fatalf("expected harvested food in storage, got %g", v.Storage.Food)
	}
	if v.Economy.Stock != v.Storage {
		t.Fatalf("stock mirror diverged after economy tick")
	}
}

func TestUpdateVillageEconomyRespectsCapacity(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 10, cfg)
	v.Storage.Food = cfg.BaseStorageCapacity // already full
	v.SyncStock()
	sim := newTestSim([]*village.Village{v})

	sim.UpdateVillageEconomy(v, cfg.TickSeconds)

	if v.Storage.Food > v.Economy.StockCapacity {
		t.Fatalf("storage %g exceeded capacity %g", v.Storage.Food, v.Economy.StockCapacity)
	}
}

func TestUpdateVillageEconomyConsumptionCappedAtStock(t *testing.T) {
	cfg := config.Default()
	// A barren world: nothing to harvest, so consumption draws down stock only.
	grid := world.NewGrid(8, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			grid.Set(world.NewTile(x, y, world.TerrainWater, nil))
		}
	}
	v := testVillage("Oakford", 4, 4, 100, cfg)
	v.Storage.Food = 1 // far less than one tick of consumption
	v.SyncStock()
	sim := NewSimulation(cfg, grid, []*village.Village{v}, &entropy.Fixed{Values: []float64{0.99}})

	sim.UpdateVillageEconomy(v, cfg.TickSeconds)

	if v.Storage.Food < 0 {
		t.Fatalf("storage went negative: %g", v.Storage.Food)
	}
	if v.Economy.Status[world.ResourceFood] != village.StatusCritical {
		t.Fatalf("expected critical food status with zero production, got %v",
			v.Economy.Status[world.ResourceFood])
	}
}
