package overlay

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

// TradeSource supplies the trade batches a rebalance consumes. The ledger
// repository implements it; tests provide in-memory fixtures.
type TradeSource interface {
	TradesByPair() (map[string][]darwin.TradeRecord, error)
	AllTrades() ([]darwin.TradeRecord, error)
}

// Controller owns the live overlay state and the rebalance lifecycle.
// Rebalances are serialized by the controller's own mutex (single-writer
// discipline); readers take whole snapshots and never observe a partial
// update. Any failure during a recompute degrades the overlay to
// FALLBACK_GOVERNANCE - trading continues on neutral multipliers rather
// than crashing or serving corrupt state.
type Controller struct {
	store  *darwin.Store
	config *darwin.ConfigStore
	source TradeSource
	log    zerolog.Logger

	agents     *AgentScorer
	sessions   *SessionAuthorityComputer
	coalitions *CoalitionComputer
	indicators *IndicatorWeightComputer
	reactor    *SafetyReactor
	advisor    *SlopeAdvisor

	rebalanceMu sync.Mutex // Serializes recomputes

	mu           sync.RWMutex // Guards live, tradeCounter, epoch
	live         LiveState
	tradeCounter int
	epoch        int
}

// NewController creates an overlay controller with empty live state
func NewController(store *darwin.Store, config *darwin.ConfigStore, source TradeSource, liveIndicators LiveIndicatorSource, log zerolog.Logger) *Controller {
	if liveIndicators == nil {
		liveIndicators = NewDriftSource()
	}
	return &Controller{
		store:      store,
		config:     config,
		source:     source,
		log:        log.With().Str("module", "overlay_controller").Logger(),
		agents:     NewAgentScorer(),
		sessions:   NewSessionAuthorityComputer(),
		coalitions: NewCoalitionComputer(),
		indicators: NewIndicatorWeightComputer(liveIndicators),
		reactor:    NewSafetyReactor(),
		advisor:    NewSlopeAdvisor(),
		live:       EmptyLiveState(),
	}
}

// Live returns the current overlay snapshot
func (c *Controller) Live() LiveState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.live
}

// Mode returns the current operating mode
func (c *Controller) Mode() Mode {
	return c.Live().Mode
}

// Reset discards all overlay and Darwinism state and re-arms ACTIVE mode
func (c *Controller) Reset() {
	c.store.Reset()
	c.mu.Lock()
	c.live = EmptyLiveState()
	c.tradeCounter = 0
	c.epoch = 0
	c.mu.Unlock()
	c.log.Info().Msg("Overlay state reset")
}

// Rebalance runs a full recompute over the given trade batches and swaps
// in the new snapshot. Never propagates a failure: any error or panic
// leaves the previous snapshot standing with mode = FALLBACK_GOVERNANCE.
func (c *Controller) Rebalance(tradesByPair map[string][]darwin.TradeRecord, allTrades []darwin.TradeRecord) {
	c.rebalanceMu.Lock()
	defer c.rebalanceMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("Rebalance panicked, degrading to fallback governance")
			c.degrade()
		}
	}()

	cfg := c.config.Get()

	c.mu.RLock()
	epoch := c.epoch + 1
	counter := c.tradeCounter
	c.mu.RUnlock()

	state := c.store.Evaluate(tradesByPair)

	next := LiveState{
		Darwin:       state,
		Agents:       c.agents.Calculate(allTrades, state.Scores, cfg.Agents),
		Sessions:     c.sessions.Calculate(state.Scores, cfg.MinSessionWeight),
		Coalitions:   c.coalitions.Calculate(state.Scores),
		Indicators:   c.indicators.Calculate(state.Scores, state.Ranking, epoch),
		Reactions:    c.reactor.Calculate(state),
		Warnings:     c.advisor.Calculate(state),
		TradeCounter: counter,
		Mode:         ModeActive,
		ComputedAt:   time.Now(),
	}

	c.mu.Lock()
	c.live = next
	c.epoch = epoch
	c.mu.Unlock()

	c.log.Info().
		Int("epoch", epoch).
		Int("agents", len(next.Agents)).
		Int("reactions", len(next.Reactions)).
		Msg("Live overlay recomputed")
}

// RebalanceFromSource pulls trade batches from the ledger and rebalances.
// Source failures degrade to fallback governance like any other failure.
func (c *Controller) RebalanceFromSource() error {
	tradesByPair, err := c.source.TradesByPair()
	if err == nil {
		var allTrades []darwin.TradeRecord
		allTrades, err = c.source.AllTrades()
		if err == nil {
			c.Rebalance(tradesByPair, allTrades)
			return nil
		}
	}

	c.log.Error().Err(err).Msg("Trade source unavailable, degrading to fallback governance")
	c.degrade()
	return fmt.Errorf("rebalance aborted: %w", err)
}

// OnTradeClose registers a closed trade and triggers a full rebalance once
// per configured epoch. The response is epoch-based, not per-trade: a
// decision may be served with data up to one epoch stale.
func (c *Controller) OnTradeClose() {
	c.mu.Lock()
	c.tradeCounter++
	counter := c.tradeCounter
	c.mu.Unlock()

	epochSize := c.config.Get().RebalanceEpoch
	if epochSize <= 0 || counter%epochSize != 0 {
		return
	}

	c.log.Debug().Int("trades", counter).Msg("Epoch boundary reached, rebalancing")
	if err := c.RebalanceFromSource(); err != nil {
		// Already degraded; nothing more to do
		return
	}
}

// degrade switches the overlay to FALLBACK_GOVERNANCE while keeping the
// last good snapshot readable for the dashboard
func (c *Controller) degrade() {
	c.mu.Lock()
	c.live.Mode = ModeFallbackGovernance
	c.mu.Unlock()
}
