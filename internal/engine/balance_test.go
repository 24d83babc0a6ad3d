package engine

import (
	"math"
	"testing"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

func TestClassifyByRatio(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		name       string
		prod, cons float64
		want       village.Category
	}{
		{"deep deficit", 0.2, 1, village.StatusCritical},
		{"just below critical", 0.29, 1, village.StatusCritical},
		{"shortage", 0.5, 1, village.StatusShortage},
		{"balanced", 1.0, 1, village.StatusBalanced},
		{"upper balanced edge", 1.2, 1, village.StatusBalanced},
		{"surplus", 1.3, 1, village.StatusSurplus},
	}
	for _, tc := range cases {
		if got := Classify(cfg, tc.prod, tc.cons, 50); got != tc.want {
			t.Errorf("%s: Classify(%g/%g) = %v, want %v", tc.name, tc.prod, tc.cons, got, tc.want)
		}
	}
}

func TestClassifyMonotonicInProduction(t *testing.T) {
	cfg := config.Default()
	prev := village.StatusCritical
	for prod := 0.0; prod <= 3.0; prod += 0.05 {
		got := Classify(cfg, prod, 1, 50)
		if got < prev {
			t.Fatalf("classification regressed at prod %g: %v -> %v", prod, prev, got)
		}
		prev = got
	}
}

func TestClassifyZeroConsumptionUsesStockBands(t *testing.T) {
	cfg := config.Default()
	cases := []struct {
		stock float64
		want  village.Category
	}{
		{0, village.StatusCritical},
		{9.9, village.StatusCritical},
		{10, village.StatusBalanced},
		{99, village.StatusBalanced},
		{100, village.StatusSurplus},
		{5000, village.StatusSurplus},
	}
	for _, tc := range cases {
		if got := Classify(cfg, 0, 0, tc.stock); got != tc.want {
			t.Errorf("stock %g: got %v, want %v", tc.stock, got, tc.want)
		}
	}
}

func TestEvaluateVillageBalance(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Oakford", 8, 8, 10, cfg)
	v.Storage = village.Store{Food: 60, Wood: 200}
	v.SyncStock()
	v.Economy.Production = village.Store{Food: 3}
	v.Economy.Consumption = village.Store{Food: 2}
	sim := newTestSim([]*village.Village{v})

	vb := sim.EvaluateVillageBalance(v)
	if vb.Name != "Oakford" || len(vb.Balances) != len(world.ResourceTypes) {
		t.Fatalf("unexpected balance sheet: %+v", vb)
	}

	for _, rb := range vb.Balances {
		switch rb.Resource {
		case world.ResourceFood:
			if rb.Status != village.StatusSurplus {
				t.Fatalf("expected food surplus, got %v", rb.Status)
			}
			if rb.Net != 1 {
				t.Fatalf("expected net 1, got %g", rb.Net)
			}
			if rb.StockDays != 30 {
				t.Fatalf("expected 30 stock days, got %g", rb.StockDays)
			}
		case world.ResourceWood:
			if !math.IsInf(rb.StockDays, 1) {
				t.Fatalf("expected infinite stock days without consumption, got %g", rb.StockDays)
			}
		}
	}
}

func TestCompareVillageBalancesBucketsEveryVillage(t *testing.T) {
	cfg := config.Default()
	rich := testVillage("Rich", 2, 2, 10, cfg)
	rich.Economy.Production = village.Store{Food: 10}
	rich.Economy.Consumption = village.Store{Food: 2}
	poor := testVillage("Poor", 10, 10, 10, cfg)
	poor.Economy.Production = village.Store{Food: 0.1}
	poor.Economy.Consumption = village.Store{Food: 2}
	sim := newTestSim([]*village.Village{rich, poor})

	buckets := sim.CompareVillageBalances()
	if len(buckets) != len(world.ResourceTypes) {
		t.Fatalf("expected one bucket set per resource, got %d", len(buckets))
	}
	for _, b := range buckets {
		if b.Resource != world.ResourceFood {
			continue
		}
		surplus := b.Villages[village.StatusSurplus]
		if len(surplus) != 1 || surplus[0].ID != rich.ID.String() {
			t.Fatalf("expected Rich in surplus, got %v", surplus)
		}
		if got := surplus[0].Net; got != 8 {
			t.Fatalf("Rich net = %g, want 8", got)
		}
		if got := surplus[0].StockDays; got != rich.Economy.Stock.Food/2 {
			t.Fatalf("Rich stock days = %g, want %g", got, rich.Economy.Stock.Food/2)
		}
		critical := b.Villages[village.StatusCritical]
		if len(critical) != 1 || critical[0].ID != poor.ID.String() {
			t.Fatalf("expected Poor in critical, got %v", critical)
		}
		if got := critical[0].Net; math.Abs(got-(-1.9)) > 1e-12 {
			t.Fatalf("Poor net = %g, want -1.9", got)
		}
	}
}

func TestFindSuppliers(t *testing.T) {
	cfg := config.Default()
	needy := testVillage("Needy", 0, 0, 10, cfg)

	near := testVillage("Near", 3, 0, 10, cfg)
	near.Storage = village.Store{Food: 150}
	near.SyncStock()

	far := testVillage("Far", 12, 0, 10, cfg)
	far.Storage = village.Store{Food: 200}
	far.SyncStock()

	// Surplus status but everything held back by the reserve.
	hoarder := testVillage("Hoarder", 5, 0, 10, cfg)
	hoarder.Storage = village.Store{Food: 5}
	hoarder.SyncStock()
	hoarder.Economy.Production = village.Store{Food: 10}
	hoarder.Economy.Consumption = village.Store{Food: 2}

	balanced := testVillage("Balanced", 6, 0, 10, cfg)
	balanced.Economy.Production = village.Store{Food: 2}
	balanced.Economy.Consumption = village.Store{Food: 2}

	sim := newTestSim([]*village.Village{needy, near, far, hoarder, balanced})

	got := sim.FindSuppliers(needy, world.ResourceFood, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 suppliers, got %d: %+v", len(got), got)
	}
	// Far has more spare capacity (200 vs 150), so it sorts first despite
	// the distance.
	if got[0].Name != "Far" || got[1].Name != "Near" {
		t.Fatalf("unexpected supplier order: %q, %q", got[0].Name, got[1].Name)
	}
	if got[0].Capacity != 200 || got[1].Capacity != 150 {
		t.Fatalf("unexpected capacities: %g, %g", got[0].Capacity, got[1].Capacity)
	}

	// A distance ceiling drops Far (12 tiles away) but keeps Near.
	got = sim.FindSuppliers(needy, world.ResourceFood, 5)
	if len(got) != 1 || got[0].Name != "Near" {
		t.Fatalf("expected only Near within distance 5, got %+v", got)
	}
}

func TestFindSuppliersTieBreaksOnDistance(t *testing.T) {
	cfg := config.Default()
	needy := testVillage("Needy", 0, 0, 10, cfg)

	near := testVillage("Near", 2, 0, 10, cfg)
	near.Storage = village.Store{Food: 150}
	near.SyncStock()
	far := testVillage("Far", 9, 0, 10, cfg)
	far.Storage = village.Store{Food: 150}
	far.SyncStock()

	sim := newTestSim([]*village.Village{needy, far, near})

	got := sim.FindSuppliers(needy, world.ResourceFood, 0)
	if len(got) != 2 || got[0].Name != "Near" {
		t.Fatalf("expected the closer village first on equal capacity, got %+v", got)
	}
}

func TestFindSuppliersExcludesRequester(t *testing.T) {
	cfg := config.Default()
	v := testVillage("Lonely", 0, 0, 10, cfg)
	v.Storage = village.Store{Food: 500}
	v.SyncStock()
	sim := newTestSim([]*village.Village{v})

	if got := sim.FindSuppliers(v, world.ResourceFood, 0); len(got) != 0 {
		t.Fatalf("village supplied itself: %+v", got)
	}
}
