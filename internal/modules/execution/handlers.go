package execution

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/internal/modules/overlay"
)

// Handlers exposes the decision resolver to the execution collaborator
type Handlers struct {
	resolver   *Resolver
	controller *overlay.Controller
	log        zerolog.Logger
}

// NewHandlers creates execution module handlers
func NewHandlers(resolver *Resolver, controller *overlay.Controller, log zerolog.Logger) *Handlers {
	return &Handlers{
		resolver:   resolver,
		controller: controller,
		log:        log.With().Str("module", "execution_handlers").Logger(),
	}
}

// Routes mounts the module's endpoints
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/decide", h.HandleDecide)
}

// DecideRequest describes one candidate trade
type DecideRequest struct {
	Pair    string `json:"pair"`
	AgentID string `json:"agent_id"`
	Session string `json:"session"`
}

// HandleDecide handles POST /api/execution/decide
func (h *Handlers) HandleDecide(w http.ResponseWriter, r *http.Request) {
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode decide request")
		h.writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Pair == "" {
		h.writeError(w, "Pair is required", http.StatusBadRequest)
		return
	}

	decision := h.resolver.Decide(h.controller.Live(), req.Pair, req.AgentID, req.Session)
	h.writeJSON(w, decision)
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
