// Interventions — operator adjustments applied from outside the tick loop.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// SetTileResource overrides the standing stock of one resource on one tile.
// The amount is clamped to [0, ceiling] and the recovery timer resets, so
// regrowth treats the override like a fresh harvest.
func (s *Simulation) SetTileResource(x, y int, r world.ResourceType, amount float64) (string, error) {
	t := s.Grid.Get(x, y)
	if t == nil {
		return "", fmt.Errorf("tile (%d, %d) out of bounds", x, y)
	}

	t.SetResource(r, amount, s.Clock)
	desc := fmt.Sprintf("the %s at (%d, %d) is replenished to %.0f",
		world.ResourceName(r), x, y, t.Resources[r])

	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "intervention",
	})
	slog.Info("tile intervention", "x", x, "y", y,
		"resource", world.ResourceName(r), "amount", t.Resources[r])
	return desc, nil
}

// GrantStock adds stock to a village's storage, clamped to capacity. Useful
// for relief shipments when a village is critical.
func (s *Simulation) GrantStock(id uuid.UUID, r world.ResourceType, amount float64) (string, error) {
	v, ok := s.VillageIndex[id]
	if !ok {
		return "", fmt.Errorf("village %s not found", id)
	}
	if amount < 0 {
		return "", fmt.Errorf("negative amount %g", amount)
	}

	cur := v.Storage.Get(r) + amount
	if cur > v.Economy.StockCapacity {
		cur = v.Economy.StockCapacity
	}
	v.Storage.Set(r, cur)
	v.SyncStock()
	s.reclassify(v)
	s.sanitize(v)

	desc := fmt.Sprintf("a caravan delivers %s to %s (stores now %.0f)",
		world.ResourceName(r), v.Name, cur)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "intervention",
	})
	slog.Info("stock intervention", "village", v.Name,
		"resource", world.ResourceName(r), "stock", cur)
	return desc, nil
}

// RestoreVillage resets a village's economy to defaults on operator request,
// the same recovery path the integrity layer uses.
func (s *Simulation) RestoreVillage(id uuid.UUID) (string, error) {
	v, ok := s.VillageIndex[id]
	if !ok {
		return "", fmt.Errorf("village %s not found", id)
	}

	s.integ.ResetEconomy(v)
	s.Stats.EconomyResets++

	desc := fmt.Sprintf("the economy of %s is restored to a clean slate", v.Name)
	s.EmitEvent(Event{
		Tick:        s.LastTick,
		Description: desc,
		Category:    "intervention",
	})
	slog.Info("restore intervention", "village", v.Name)
	return desc, nil
}

// FindVillageByName returns the first village with the given name, or nil.
func (s *Simulation) FindVillageByName(name string) *village.Village {
	for _, v := range s.Villages {
		if v.Name == name {
			return v
		}
	}
	return nil
}
