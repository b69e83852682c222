// Package api serves the world state over HTTP and streams per-tick
// snapshots over websockets. GET endpoints are public (read-only
// observation); POST endpoints require a bearer token.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/firecomputer/hegemon/internal/engine"
)

// Server exposes the simulation state.
type Server struct {
	Sim      *engine.Simulation
	Eng      *engine.Engine
	Hub      *Hub
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	wsLimiter := NewRateLimiter(30, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshot)
	mux.HandleFunc("/api/v1/countries", s.handleCountries)
	mux.HandleFunc("/api/v1/country/", s.handleCountryDetail)
	mux.HandleFunc("/api/v1/provinces", s.handleProvinces)
	mux.HandleFunc("/api/v1/battles", s.handleBattles)

	// Websocket snapshot stream.
	if s.Hub != nil {
		mux.HandleFunc("/ws", RateLimitMiddleware(wsLimiter, s.Hub.serveWs))
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
// Set CORS_ORIGINS to a comma-separated list of allowed origins.
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

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HEGEMON_ADMIN_KEY set)", http.StatusForbidden)
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
	snap := s.Sim.Snapshot()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}

	active := 0
	for _, c := range snap.Countries {
		if c.Active {
			active++
		}
	}

	status := map[string]any{
		"name":             "Hegemon",
		"tick":             snap.Tick,
		"sim_time":         engine.SimTime(snap.Tick, s.Sim.Cfg.TicksPerSecond),
		"speed":            s.Eng.Speed,
		"running":          s.Eng.Running,
		"provinces":        len(snap.Provinces),
		"countries":        len(snap.Countries),
		"active_countries": active,
		"armies":           len(snap.Armies),
		"battles":          len(snap.Battles),
	}
	writeJSON(w, status)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Countries)
}

func (s *Server) handleCountryDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing country id", http.StatusBadRequest)
		return
	}
	id, err := strconv.Atoi(parts[4])
	if err != nil {
		http.Error(w, "invalid country id", http.StatusBadRequest)
		return
	}

	snap := s.Sim.Snapshot()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}

	var country *engine.CountryView
	for i := range snap.Countries {
		if snap.Countries[i].ID == id {
			country = &snap.Countries[i]
			break
		}
	}
	if country == nil {
		http.Error(w, "country not found", http.StatusNotFound)
		return
	}

	var provinces []engine.ProvinceView
	for _, p := range snap.Provinces {
		if p.Owner == id {
			provinces = append(provinces, p)
		}
	}
	var armies []engine.ArmyView
	for _, a := range snap.Armies {
		if a.Owner == id {
			armies = append(armies, a)
		}
	}

	writeJSON(w, map[string]any{
		"country":   country,
		"provinces": provinces,
		"armies":    armies,
	})
}

func (s *Server) handleProvinces(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}

	provinces := snap.Provinces
	if owner := r.URL.Query().Get("owner"); owner != "" {
		id, err := strconv.Atoi(owner)
		if err != nil {
			http.Error(w, "invalid owner id", http.StatusBadRequest)
			return
		}
		var filtered []engine.ProvinceView
		for _, p := range provinces {
			if p.Owner == id {
				filtered = append(filtered, p)
			}
		}
		provinces = filtered
	}
	writeJSON(w, provinces)
}

func (s *Server) handleBattles(w http.ResponseWriter, r *http.Request) {
	snap := s.Sim.Snapshot()
	if snap == nil {
		http.Error(w, "simulation not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Battles)
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
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed must be 0-100", http.StatusBadRequest)
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
