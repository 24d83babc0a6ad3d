// Package api serves the simulation state over HTTP. GET endpoints are
// public, read-only observation; POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sablemoor/villagesim/internal/diag"
	"github.com/sablemoor/villagesim/internal/engine"
	"github.com/sablemoor/villagesim/internal/village"
	"github.com/sablemoor/villagesim/internal/world"
)

// Server serves village and world state over HTTP. Mu must be the same
// mutex the tick loop holds while stepping, so reads see consistent state.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Journal  *diag.Journal // optional
	Mu       *sync.Mutex
	Port     int
	AdminKey string // bearer token for POST endpoints; empty disables them
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	limiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.locked(s.handleStatus))
	mux.HandleFunc("/api/v1/villages", s.locked(s.handleVillages))
	mux.HandleFunc("/api/v1/village/", s.locked(s.handleVillageDetail))
	mux.HandleFunc("/api/v1/balances", s.locked(s.handleBalances))
	mux.HandleFunc("/api/v1/suppliers", s.locked(s.handleSuppliers))
	mux.HandleFunc("/api/v1/events", s.locked(s.handleEvents))
	mux.HandleFunc("/api/v1/errors", s.locked(s.handleErrors))
	mux.HandleFunc("/api/v1/map", s.locked(s.handleMap))

	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.locked(s.handleSpeed)))
	mux.HandleFunc("/api/v1/intervention", limiter.Middleware(s.adminOnly(s.locked(s.handleIntervention))))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("http api starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("http server error", "error", err)
		}
	}()
}

// locked serializes a handler against the tick loop.
func (s *Server) locked(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Mu != nil {
			s.Mu.Lock()
			defer s.Mu.Unlock()
		}
		next(w, r)
	}
}

// adminOnly requires a bearer token on POST. GET passes through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no VILLAGESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"tick":               s.Sim.CurrentTick(),
		"clock":              s.Sim.Clock,
		"speed":              s.Eng.Speed(),
		"running":            s.Eng.Running(),
		"slow_ticks":         s.Eng.SlowTicks(),
		"villages":           len(s.Sim.Villages),
		"total_population":   s.Sim.Stats.TotalPopulation,
		"total_buildings":    s.Sim.Stats.TotalBuildings,
		"queued_buildings":   s.Sim.Stats.QueuedBuildings,
		"critical_villages":  s.Sim.Stats.CriticalVillages,
		"integrity_errors":   s.Sim.Stats.IntegrityErrors,
		"calculation_errors": s.Sim.Stats.CalculationErrors,
		"economy_resets":     s.Sim.Stats.EconomyResets,
	})
}

func (s *Server) handleVillages(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		ID         string  `json:"id"`
		Name       string  `json:"name"`
		X          float64 `json:"x"`
		Y          float64 `json:"y"`
		Population int     `json:"population"`
		Buildings  int     `json:"buildings"`
		Trend      string  `json:"trend"`
		FoodStatus string  `json:"food_status"`
	}
	out := make([]summary, 0, len(s.Sim.Villages))
	for _, v := range s.Sim.Villages {
		out = append(out, summary{
			ID:         v.ID.String(),
			Name:       v.Name,
			X:          v.X,
			Y:          v.Y,
			Population: v.Population,
			Buildings:  v.Economy.Buildings.Count,
			Trend:      engine.TrendOf(v.History).String(),
			FoodStatus: v.Economy.Status[world.ResourceFood].String(),
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleVillageDetail(w http.ResponseWriter, r *http.Request) {
	v := s.villageFromPath(w, r, "/api/v1/village/")
	if v == nil {
		return
	}
	writeJSON(w, map[string]any{
		"village": v,
		"trend":   engine.TrendOf(v.History).String(),
		"balance": s.Sim.EvaluateVillageBalance(v),
	})
}

func (s *Server) handleBalances(w http.ResponseWriter, r *http.Request) {
	type bucketEntry struct {
		Resource string                          `json:"resource"`
		Villages map[string][]engine.BucketEntry `json:"villages"`
	}
	buckets := s.Sim.CompareVillageBalances()
	out := make([]bucketEntry, 0, len(buckets))
	for _, b := range buckets {
		entry := bucketEntry{
			Resource: world.ResourceName(b.Resource),
			Villages: make(map[string][]engine.BucketEntry, len(b.Villages)),
		}
		for cat, ids := range b.Villages {
			entry.Villages[cat.String()] = ids
		}
		out = append(out, entry)
	}
	writeJSON(w, out)
}

func (s *Server) handleSuppliers(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.URL.Query().Get("village"))
	if err != nil {
		http.Error(w, "invalid or missing village id", http.StatusBadRequest)
		return
	}
	v, ok := s.Sim.VillageIndex[id]
	if !ok {
		http.Error(w, "village not found", http.StatusNotFound)
		return
	}
	res, ok := resourceFromName(r.URL.Query().Get("resource"))
	if !ok {
		http.Error(w, "unknown resource", http.StatusBadRequest)
		return
	}
	maxDist := 0.0
	if q := r.URL.Query().Get("max_distance"); q != "" {
		d, err := strconv.ParseFloat(q, 64)
		if err != nil || d < 0 {
			http.Error(w, "invalid max_distance", http.StatusBadRequest)
			return
		}
		maxDist = d
	}
	writeJSON(w, s.Sim.FindSuppliers(v, res, maxDist))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	events := s.Sim.Events
	if len(events) > limit {
		events = events[len(events)-limit:]
	}
	writeJSON(w, events)
}

func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	if vid := r.URL.Query().Get("village"); vid != "" {
		writeJSON(w, map[string]any{
			"entries": s.Sim.Errors.ForVillage(vid),
		})
		return
	}
	writeJSON(w, map[string]any{
		"stats":   s.Sim.Errors.Stats(),
		"entries": s.Sim.Errors.All(),
	})
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	type tileEntry struct {
		X         int                `json:"x"`
		Y         int                `json:"y"`
		Terrain   string             `json:"terrain"`
		Resources map[string]float64 `json:"resources,omitempty"`
	}
	g := s.Sim.Grid
	tiles := make([]tileEntry, 0, g.TileCount())
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			t := g.Get(x, y)
			entry := tileEntry{X: x, Y: y, Terrain: world.TerrainName(t.Type)}
			for _, res := range world.ResourceTypes {
				if t.Resources[res] > 0 {
					if entry.Resources == nil {
						entry.Resources = make(map[string]float64, 3)
					}
					entry.Resources[world.ResourceName(res)] = t.Resources[res]
				}
			}
			tiles = append(tiles, entry)
		}
	}
	writeJSON(w, map[string]any{
		"width":  g.Width,
		"height": g.Height,
		"tiles":  tiles,
	})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, map[string]any{"speed": s.Eng.Speed()})
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}
	if req.Speed < 0 || req.Speed > 64 {
		http.Error(w, "speed outside [0, 64]", http.StatusBadRequest)
		return
	}
	s.Eng.SetSpeed(req.Speed)
	slog.Info("speed changed", "speed", req.Speed)
	writeJSON(w, map[string]any{"speed": s.Eng.Speed()})
}

func (s *Server) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Action   string  `json:"action"` // "set_tile", "grant_stock", "restore"
		X        int     `json:"x"`
		Y        int     `json:"y"`
		Village  string  `json:"village"`
		Resource string  `json:"resource"`
		Amount   float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request body", http.StatusBadRequest)
		return
	}

	var (
		desc string
		err  error
	)
	switch req.Action {
	case "set_tile":
		res, ok := resourceFromName(req.Resource)
		if !ok {
			http.Error(w, "unknown resource", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.SetTileResource(req.X, req.Y, res, req.Amount)
	case "grant_stock":
		id, perr := uuid.Parse(req.Village)
		if perr != nil {
			http.Error(w, "invalid village id", http.StatusBadRequest)
			return
		}
		res, ok := resourceFromName(req.Resource)
		if !ok {
			http.Error(w, "unknown resource", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.GrantStock(id, res, req.Amount)
	case "restore":
		id, perr := uuid.Parse(req.Village)
		if perr != nil {
			http.Error(w, "invalid village id", http.StatusBadRequest)
			return
		}
		desc, err = s.Sim.RestoreVillage(id)
	default:
		http.Error(w, "unknown action", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"result": desc})
}

func (s *Server) villageFromPath(w http.ResponseWriter, r *http.Request, prefix string) *village.Village {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	id, err := uuid.Parse(raw)
	if err != nil {
		http.Error(w, "invalid village id", http.StatusBadRequest)
		return nil
	}
	v, ok := s.Sim.VillageIndex[id]
	if !ok {
		http.Error(w, "village not found", http.StatusNotFound)
		return nil
	}
	return v
}

func resourceFromName(name string) (world.ResourceType, bool) {
	for _, r := range world.ResourceTypes {
		if world.ResourceName(r) == name {
			return r, true
		}
	}
	return 0, false
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}
