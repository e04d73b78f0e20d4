package overlay

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers exposes the live overlay state to the dashboard and triggers
// manual rebalances
type Handlers struct {
	controller *Controller
	log        zerolog.Logger
}

// NewHandlers creates overlay module handlers
func NewHandlers(controller *Controller, log zerolog.Logger) *Handlers {
	return &Handlers{
		controller: controller,
		log:        log.With().Str("module", "overlay_handlers").Logger(),
	}
}

// Routes mounts the module's endpoints
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/state", h.HandleLiveState)
	r.Get("/agents", h.HandleAgents)
	r.Get("/sessions", h.HandleSessions)
	r.Get("/coalitions", h.HandleCoalitions)
	r.Get("/indicators", h.HandleIndicators)
	r.Get("/reactions", h.HandleReactions)
	r.Get("/warnings", h.HandleWarnings)
	r.Post("/rebalance", h.HandleRebalance)
	r.Post("/reset", h.HandleReset)
}

// HandleLiveState handles GET /api/overlay/state
func (h *Handlers) HandleLiveState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live())
}

// HandleAgents handles GET /api/overlay/agents
func (h *Handlers) HandleAgents(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live().Agents)
}

// HandleSessions handles GET /api/overlay/sessions
func (h *Handlers) HandleSessions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live().Sessions)
}

// HandleCoalitions handles GET /api/overlay/coalitions
func (h *Handlers) HandleCoalitions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live().Coalitions)
}

// HandleIndicators handles GET /api/overlay/indicators
func (h *Handlers) HandleIndicators(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live().Indicators)
}

// HandleReactions handles GET /api/overlay/reactions
func (h *Handlers) HandleReactions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live().Reactions)
}

// HandleWarnings handles GET /api/overlay/warnings
func (h *Handlers) HandleWarnings(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.controller.Live().Warnings)
}

// HandleRebalance handles POST /api/overlay/rebalance - manual full recompute
func (h *Handlers) HandleRebalance(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.RebalanceFromSource(); err != nil {
		h.log.Error().Err(err).Msg("Manual rebalance failed")
		h.writeError(w, "Rebalance failed, overlay degraded to fallback governance", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, h.controller.Live())
}

// HandleReset handles POST /api/overlay/reset
func (h *Handlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	h.controller.Reset()
	h.writeJSON(w, h.controller.Live())
}

func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	h.writeJSON(w, map[string]string{"error": message})
}
