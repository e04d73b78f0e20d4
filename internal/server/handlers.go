package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "darwin-trader",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	live := s.controller.Live()

	tradeCount := 0
	if count, err := s.ledger.CountAll(); err == nil {
		tradeCount = count
	} else {
		s.log.Error().Err(err).Msg("Failed to count ledger trades")
	}

	response := map[string]interface{}{
		"status":           "running",
		"mode":             live.Mode,
		"uptime_seconds":   int(time.Since(s.startedAt).Seconds()),
		"pairs_evaluated":  len(live.Darwin.Scores),
		"trades_recorded":  tradeCount,
		"trades_evaluated": live.Darwin.TotalTradesEvaluated,
		"system_health":    live.Darwin.SystemHealthScore,
		"last_rebalance":   live.Darwin.LastRebalance,
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
