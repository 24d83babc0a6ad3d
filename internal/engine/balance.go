// Balance — supply/demand classification, per-village and cross-village
// balance evaluation, and supplier search.
package engine

import (
	"encoding/json"
	"math"
	"sort"

	"github.com/sablemoor/villagesim/internal/config"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// Classify buckets a single resource by its production/consumption ratio.
// Villages that consume nothing are bucketed by standing stock instead,
// so a dormant village with empty stores still reads as critical.
func Classify(cfg config.Config, production, consumption, stock float64) village.Category {
	if consumption <= 0 {
		switch {
		case stock < cfg.CriticalStockBand:
			return village.StatusCritical
		case stock < cfg.SurplusStockBand:
			return village.StatusBalanced
		default:
			return village.StatusSurplus
		}
	}
	ratio := production / consumption
	switch {
	case ratio < cfg.CriticalRatio:
		return village.StatusCritical
	case ratio < cfg.ShortageRatio:
		return village.StatusShortage
	case ratio <= cfg.SurplusRatio:
		return village.StatusBalanced
	default:
		return village.StatusSurplus
	}
}

// reclassify refreshes the per-resource status map from current economy
// figures.
func (s *Simulation) reclassify(v *village.Village) {
	for _, r := range world.ResourceTypes {
		v.Economy.Status[r] = Classify(s.cfg,
			v.Economy.Production.Get(r),
			v.Economy.Consumption.Get(r),
			v.Economy.Stock.Get(r))
	}
}

// ResourceBalance is the evaluated position of one village in one resource.
type ResourceBalance struct {
	Resource  world.ResourceType `json:"-"`
	Status    village.Category   `json:"-"`
	Net       float64            `json:"net"` // production - consumption, per tick-second
	StockDays float64            `json:"-"`   // ticks of consumption covered by stock; +Inf when nothing is consumed
}

// MarshalJSON renders names instead of enum values and omits stock-days when
// nothing is consumed, since JSON cannot carry Inf.
func (b ResourceBalance) MarshalJSON() ([]byte, error) {
	out := struct {
		Resource  string   `json:"resource"`
		Status    string   `json:"status"`
		Net       float64  `json:"net"`
		StockDays *float64 `json:"stock_days,omitempty"`
	}{
		Resource: world.ResourceName(b.Resource),
		Status:   b.Status.String(),
		Net:      b.Net,
	}
	if !math.IsInf(b.StockDays, 0) && !math.IsNaN(b.StockDays) {
		d := b.StockDays
		out.StockDays = &d
	}
	return json.Marshal(out)
}

// VillageBalance is the full evaluated position of one village.
type VillageBalance struct {
	VillageID string            `json:"village_id"`
	Name      string            `json:"name"`
	Balances  []ResourceBalance `json:"balances"`
}

// EvaluateVillageBalance computes the balance sheet for one village from
// its last-updated economy figures. It does not mutate the village.
func (s *Simulation) EvaluateVillageBalance(v *village.Village) VillageBalance {
	vb := VillageBalance{
		VillageID: v.ID.String(),
		Name:      v.Name,
		Balances:  make([]ResourceBalance, 0, len(world.ResourceTypes)),
	}
	for _, r := range world.ResourceTypes {
		prod := v.Economy.Production.Get(r)
		cons := v.Economy.Consumption.Get(r)
		stock := v.Economy.Stock.Get(r)
		days := math.Inf(1)
		if cons > 0 {
			days = stock / cons
		}
		vb.Balances = append(vb.Balances, ResourceBalance{
			Resource:  r,
			Status:    Classify(s.cfg, prod, cons, stock),
			Net:       prod - cons,
			StockDays: days,
		})
	}
	return vb
}

// BucketEntry is one village's position for the bucketed resource,
// carrying the ranking figures alongside its identity.
type BucketEntry struct {
	ID        string  `json:"-"`
	Name      string  `json:"-"`
	Net       float64 `json:"-"` // production - consumption
	StockDays float64 `json:"-"` // +Inf when nothing is consumed
}

// MarshalJSON omits stock-days when nothing is consumed, since JSON
// cannot carry Inf.
func (e BucketEntry) MarshalJSON() ([]byte, error) {
	out := struct {
		ID        string   `json:"village_id"`
		Name      string   `json:"name"`
		Net       float64  `json:"net"`
		StockDays *float64 `json:"stock_days,omitempty"`
	}{ID: e.ID, Name: e.Name, Net: e.Net}
	if !math.IsInf(e.StockDays, 0) && !math.IsNaN(e.StockDays) {
		d := e.StockDays
		out.StockDays = &d
	}
	return json.Marshal(out)
}

// BalanceBuckets groups villages by status for one resource.
type BalanceBuckets struct {
	Resource world.ResourceType                 `json:"resource"`
	Villages map[village.Category][]BucketEntry `json:"villages"`
}

// CompareVillageBalances buckets every village by status per resource,
// giving a world-level view of where each resource is short or surplus.
// Each entry carries the village's net balance and stock coverage.
func (s *Simulation) CompareVillageBalances() []BalanceBuckets {
	out := make([]BalanceBuckets, 0, len(world.ResourceTypes))
	for _, r := range world.ResourceTypes {
		b := BalanceBuckets{Resource: r, Villages: make(map[village.Category][]BucketEntry)}
		for _, v := range s.Villages {
			prod := v.Economy.Production.Get(r)
			cons := v.Economy.Consumption.Get(r)
			stock := v.Economy.Stock.Get(r)
			days := math.Inf(1)
			if cons > 0 {
				days = stock / cons
			}
			st := Classify(s.cfg, prod, cons, stock)
			b.Villages[st] = append(b.Villages[st], BucketEntry{
				ID:        v.ID.String(),
				Name:      v.Name,
				Net:       prod - cons,
				StockDays: days,
			})
		}
		out = append(out, b)
	}
	return out
}

// Supplier is a surplus village able to spare stock of one resource.
type Supplier struct {
	Village  *village.Village `json:"-"`
	ID       string           `json:"village_id"`
	Name     string           `json:"name"`
	Capacity float64          `json:"capacity"`
	Distance float64          `json:"distance"`
}

// FindSuppliers returns villages in surplus of the given resource within
// maxDistance of the requester, able to spare stock beyond a reserve of
// SupplierReserveTicks ticks of their own consumption. maxDistance <= 0
// means unbounded. Results are sorted by spare capacity descending, with
// proximity to the requester breaking ties. The requester itself is never
// a supplier.
func (s *Simulation) FindSuppliers(requester *village.Village, r world.ResourceType, maxDistance float64) []Supplier {
	var out []Supplier
	for _, v := range s.Villages {
		if v.ID == requester.ID {
			continue
		}
		dist := requester.DistanceTo(v)
		if maxDistance > 0 && dist > maxDistance {
			continue
		}
		st := Classify(s.cfg,
			v.Economy.Production.Get(r),
			v.Economy.Consumption.Get(r),
			v.Economy.Stock.Get(r))
		if st != village.StatusSurplus {
			continue
		}
		reserve := v.Economy.Consumption.Get(r) * s.cfg.SupplierReserveTicks
		capacity := v.Economy.Stock.Get(r) - reserve
		if capacity <= 0 {
			continue
		}
		out = append(out, Supplier{
			Village:  v,
			ID:       v.ID.String(),
			Name:     v.Name,
			Capacity: capacity,
			Distance: dist,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Capacity != out[j].Capacity {
			return out[i].Capacity > out[j].Capacity
		}
		return out[i].Distance < out[j].Distance
	})
	return out
}
