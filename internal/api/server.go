// Package api provides the HTTP API for observing the realm economy.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/talgya/crownlands/internal/economy"
	"github.com/talgya/crownlands/internal/engine"
	"github.com/talgya/crownlands/internal/persistence"
)

// Server serves the economy state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	DB       *persistence.DB
	Hub      *Hub
	Port     int
	RunID    string
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()

	// Public endpoints (GET, read-only).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/economy", s.handleEconomy)
	mux.HandleFunc("/api/v1/prices", s.handlePrices)
	mux.HandleFunc("/api/v1/realms", s.handleRealms)
	mux.HandleFunc("/api/v1/realm/", s.handleRealmDetail)
	mux.HandleFunc("/api/v1/provinces", s.handleProvinces)
	mux.HandleFunc("/api/v1/counties", s.handleCounties)
	mux.HandleFunc("/api/v1/facilities", s.handleFacilities)
	mux.HandleFunc("/api/v1/snapshots/latest", s.handleLatestSnapshot)
	mux.HandleFunc("/api/v1/snapshots/history", s.handleSnapshotHistory)

	// WebSocket stream of daily snapshots.
	if s.Hub != nil {
		mux.HandleFunc("/api/v1/stream", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(s.Hub, w, r)
		})
	}

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no CROWNSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":     "Crownlands",
		"run_id":   s.RunID,
		"day":      s.Sim.State.Day,
		"sim_date": engine.SimDate(s.Sim.State.Day),
		"speed":    s.Eng.Speed,
		"running":  s.Eng.Running,
		"realms":   len(s.Sim.State.Realms),
		"counties": len(s.Sim.State.Counties),
	}
	if snap, ok := s.Sim.LatestSnapshot(); ok {
		status["population"] = snap.TotalPopulation
		status["avg_satisfaction"] = snap.AvgBasicSatisfaction
		status["starving_counties"] = snap.StarvingCounties
	}
	writeJSON(w, status)
}

func (s *Server) handleEconomy(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Sim.LatestSnapshot()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	st := s.Sim.State
	type priceEntry struct {
		Good      string  `json:"good"`
		Price     float64 `json:"price"`
		BasePrice float64 `json:"basePrice"`
		Ratio     float64 `json:"ratio"`
	}
	result := make([]priceEntry, 0, economy.GoodCount)
	for g := 0; g < economy.GoodCount; g++ {
		def := st.Catalog.Goods[g]
		if !def.Tradeable {
			continue
		}
		ratio := 0.0
		if def.BasePrice > 0 {
			ratio = st.Prices[g] / def.BasePrice
		}
		result = append(result, priceEntry{
			Good:      economy.Good(g).Name(),
			Price:     st.Prices[g],
			BasePrice: def.BasePrice,
			Ratio:     ratio,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleRealms(w http.ResponseWriter, r *http.Request) {
	type realmSummary struct {
		ID         int     `json:"id"`
		Provinces  int     `json:"provinces"`
		Population float64 `json:"population"`
		Treasury   float64 `json:"treasury"`
		Minted     float64 `json:"crownsMinted"`
		Imports    float64 `json:"tradeImports"`
		Exports    float64 `json:"tradeExports"`
	}

	st := s.Sim.State
	result := make([]realmSummary, 0, len(st.Realms))
	for i := range st.Realms {
		rm := &st.Realms[i]
		pop := 0.0
		for _, p := range s.Sim.Map.ProvincesOf(rm.ID) {
			for _, c := range s.Sim.Map.CountiesOf(p) {
				pop += st.Counties[c].Population
			}
		}
		imports, exports := 0.0, 0.0
		for g := 0; g < economy.GoodCount; g++ {
			imports += rm.TradeImports[g]
			exports += rm.TradeExports[g]
		}
		result = append(result, realmSummary{
			ID:         rm.ID,
			Provinces:  len(s.Sim.Map.ProvincesOf(rm.ID)),
			Population: pop,
			Treasury:   rm.Treasury,
			Minted:     rm.CrownsMinted,
			Imports:    imports,
			Exports:    exports,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleRealmDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 {
		http.Error(w, "missing realm id", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil || id < 0 || id >= len(s.Sim.State.Realms) {
		http.Error(w, "invalid realm id", http.StatusBadRequest)
		return
	}

	st := s.Sim.State
	rm := &st.Realms[id]

	type stockEntry struct {
		Good    string  `json:"good"`
		Amount  float64 `json:"amount"`
		Imports float64 `json:"imports"`
		Exports float64 `json:"exports"`
	}
	var stock []stockEntry
	for g := 0; g < economy.GoodCount; g++ {
		if rm.Stockpile[g] == 0 && rm.TradeImports[g] == 0 && rm.TradeExports[g] == 0 {
			continue
		}
		stock = append(stock, stockEntry{
			Good:    economy.Good(g).Name(),
			Amount:  rm.Stockpile[g],
			Imports: rm.TradeImports[g],
			Exports: rm.TradeExports[g],
		})
	}

	writeJSON(w, map[string]any{
		"id":                id,
		"treasury":          rm.Treasury,
		"gold_minted":       rm.GoldMinted,
		"silver_minted":     rm.SilverMinted,
		"crowns_minted":     rm.CrownsMinted,
		"tax_collected":     rm.MonetaryTaxCollected,
		"admin_cost":        rm.AdminCrownsCost,
		"trade_spending":    rm.TradeSpending,
		"trade_revenue":     rm.TradeRevenue,
		"tariffs_collected": rm.TradeTariffsCollected,
		"provinces":         s.Sim.Map.ProvincesOf(id),
		"stockpile":         stock,
	})
}

func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	type provinceSummary struct {
		ID           int     `json:"id"`
		RealmID      int     `json:"realmId"`
		Counties     int     `json:"counties"`
		Treasury     float64 `json:"treasury"`
		TollsToday   float64 `json:"tradeTolls"`
		GranarySpent float64 `json:"granaryCrownsCost"`
	}

	st := s.Sim.State
	result := make([]provinceSummary, 0, len(st.Provinces))
	for i := range st.Provinces {
		p := &st.Provinces[i]
		result = append(result, provinceSummary{
			ID:           p.ID,
			RealmID:      s.Sim.Map.ProvinceRealm[p.ID],
			Counties:     len(s.Sim.Map.CountiesOf(p.ID)),
			Treasury:     p.Treasury,
			TollsToday:   p.TradeTollsCollected,
			GranarySpent: p.GranaryCrownsCost,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleCounties(w http.ResponseWriter, r *http.Request) {
	type countySummary struct {
		ID           int     `json:"id"`
		ProvinceID   int     `json:"provinceId"`
		Population   float64 `json:"population"`
		Satisfaction float64 `json:"basicSatisfaction"`
		Workers      float64 `json:"facilityWorkers"`
	}

	st := s.Sim.State
	result := make([]countySummary, 0, len(st.Counties))
	for i := range st.Counties {
		c := &st.Counties[i]
		result = append(result, countySummary{
			ID:           c.ID,
			ProvinceID:   s.Sim.Map.ProvinceOf(c.ID),
			Population:   c.Population,
			Satisfaction: c.BasicSatisfaction,
			Workers:      c.FacilityWorkers,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleFacilities(w http.ResponseWriter, r *http.Request) {
	type facilitySummary struct {
		ID       int     `json:"id"`
		Type     string  `json:"type"`
		CountyID int     `json:"countyId"`
		Workers  float64 `json:"workers"`
		Required float64 `json:"laborRequired"`
		Output   string  `json:"output"`
		Active   bool    `json:"active"`
	}

	st := s.Sim.State
	result := make([]facilitySummary, 0, len(st.Facilities))
	for i := range st.Facilities {
		f := &st.Facilities[i]
		def := &st.Defs[f.TypeID]
		result = append(result, facilitySummary{
			ID:       f.ID,
			Type:     def.Name,
			CountyID: f.CountyID,
			Workers:  f.AssignedWorkers,
			Required: def.LaborRequired(),
			Output:   def.OutputGood.Name(),
			Active:   f.IsActive,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleLatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Sim.LatestSnapshot()
	if !ok {
		http.Error(w, "no snapshot yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleSnapshotHistory(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 1000 {
			limit = v
		}
	}

	snaps, err := s.DB.RecentSnapshots(limit)
	if err != nil {
		slog.Error("snapshot history query failed", "error", err)
		writeJSON(w, []economy.EconomySnapshot{})
		return
	}
	writeJSON(w, snaps)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
