package darwin

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers provides the read-only dashboard surface over the Darwinism
// state plus the engine configuration endpoints
type Handlers struct {
	store  *Store
	config *ConfigStore
	log    zerolog.Logger
}

// NewHandlers creates darwin module handlers
func NewHandlers(store *Store, config *ConfigStore, log zerolog.Logger) *Handlers {
	return &Handlers{
		store:  store,
		config: config,
		log:    log.With().Str("module", "darwin_handlers").Logger(),
	}
}

// Routes mounts the module's endpoints
func (h *Handlers) Routes(r chi.Router) {
	r.Get("/state", h.HandleState)
	r.Get("/scores", h.HandleScores)
	r.Get("/scores/{pair}", h.HandlePairScore)
	r.Get("/transitions", h.HandleTransitions)
	r.Get("/triggers", h.HandleTriggers)
	r.Get("/distribution", h.HandleDistribution)
	r.Get("/config", h.HandleGetConfig)
	r.Put("/config", h.HandleSetConfig)
	r.Post("/config/reset", h.HandleResetConfig)
}

// HandleState handles GET /api/darwin/state
func (h *Handlers) HandleState(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.store.Snapshot())
}

// HandleScores handles GET /api/darwin/scores - pairs in ranking order
func (h *Handlers) HandleScores(w http.ResponseWriter, r *http.Request) {
	state := h.store.Snapshot()
	scores := make([]PairSurvivorshipScore, 0, len(state.Ranking))
	for _, pair := range state.Ranking {
		scores = append(scores, state.Scores[pair])
	}
	h.writeJSON(w, scores)
}

// HandlePairScore handles GET /api/darwin/scores/{pair}
func (h *Handlers) HandlePairScore(w http.ResponseWriter, r *http.Request) {
	pair := chi.URLParam(r, "pair")
	score, ok := h.store.Snapshot().Score(pair)
	if !ok {
		h.writeError(w, "Pair not evaluated", http.StatusNotFound)
		return
	}
	h.writeJSON(w, score)
}

// HandleTransitions handles GET /api/darwin/transitions
func (h *Handlers) HandleTransitions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.store.Snapshot().Transitions)
}

// HandleTriggers handles GET /api/darwin/triggers
func (h *Handlers) HandleTriggers(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.store.Snapshot().Triggers)
}

// HandleDistribution handles GET /api/darwin/distribution
func (h *Handlers) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.store.Snapshot().CapitalDistribution)
}

// HandleGetConfig handles GET /api/darwin/config
func (h *Handlers) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.config.Get())
}

// HandleSetConfig handles PUT /api/darwin/config
func (h *Handlers) HandleSetConfig(w http.ResponseWriter, r *http.Request) {
	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode engine config")
		h.writeError(w, "Invalid config body", http.StatusBadRequest)
		return
	}
	h.config.Set(cfg)
	h.writeJSON(w, h.config.Get())
}

// HandleResetConfig handles POST /api/darwin/config/reset
func (h *Handlers) HandleResetConfig(w http.ResponseWriter, r *http.Request) {
	h.config.Reset()
	h.writeJSON(w, h.config.Get())
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
