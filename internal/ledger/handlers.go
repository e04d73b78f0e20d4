package ledger

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/internal/modules/overlay"
)

// Handlers accepts closed trades from the upstream producer and feeds the
// overlay's epoch counter
type Handlers struct {
	repo       *Repository
	controller *overlay.Controller
	log        zerolog.Logger
}

// NewHandlers creates ledger handlers
func NewHandlers(repo *Repository, controller *overlay.Controller, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:       repo,
		controller: controller,
		log:        log.With().Str("module", "ledger_handlers").Logger(),
	}
}

// Routes mounts the module's endpoints
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/trades", h.HandleTradeClose)
	r.Get("/trades", h.HandleListTrades)
}

// HandleTradeClose handles POST /api/ledger/trades - records a closed
// trade and advances the rebalance epoch counter
func (h *Handlers) HandleTradeClose(w http.ResponseWriter, r *http.Request) {
	var trade darwin.TradeRecord
	if err := json.NewDecoder(r.Body).Decode(&trade); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode trade")
		h.writeError(w, "Invalid trade body", http.StatusBadRequest)
		return
	}

	if trade.Pair == "" {
		h.writeError(w, "Pair is required", http.StatusBadRequest)
		return
	}
	if trade.ExecutedAt.IsZero() {
		trade.ExecutedAt = time.Now()
	}

	if err := h.repo.Create(trade); err != nil {
		h.log.Error().Err(err).Msg("Failed to record trade")
		h.writeError(w, "Failed to record trade", http.StatusInternalServerError)
		return
	}

	h.controller.OnTradeClose()

	w.WriteHeader(http.StatusCreated)
	h.writeJSON(w, trade)
}

// HandleListTrades handles GET /api/ledger/trades
func (h *Handlers) HandleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.repo.AllTrades()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load trades")
		h.writeError(w, "Failed to load trades", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, trades)
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
