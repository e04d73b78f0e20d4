package execution

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/internal/modules/overlay"
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// maxFinalMultiplier caps the composed allocation product
const maxFinalMultiplier = 2.0

// Decision is the per-trade allocation verdict
type Decision struct {
	Pair                    string   `json:"pair"`
	AgentID                 string   `json:"agent_id"`
	Session                 string   `json:"session"`
	TradePermitted          bool     `json:"trade_permitted"`
	FinalPositionMultiplier float64  `json:"final_position_multiplier"`
	PairMultiplier          float64  `json:"pair_multiplier"`
	AgentMultiplier         float64  `json:"agent_multiplier"`
	SessionMultiplier       float64  `json:"session_multiplier"`
	CoalitionMultiplier     float64  `json:"coalition_multiplier"`
	BlockReasons            []string `json:"block_reasons,omitempty"`
	Fallback                bool     `json:"fallback"` // True when served by the fail-open path
	DecidedAt               time.Time `json:"decided_at"`
}

// Resolver composes the overlay's multipliers into one per-trade decision.
// It is a pure function of the snapshot it is handed plus its three
// inputs; the snapshot is an explicit parameter so callers control
// staleness rather than racing a hidden global.
type Resolver struct {
	config *darwin.ConfigStore
	log    zerolog.Logger
}

// NewResolver creates an execution decision resolver
func NewResolver(config *darwin.ConfigStore, log zerolog.Logger) *Resolver {
	return &Resolver{
		config: config,
		log:    log.With().Str("module", "execution_resolver").Logger(),
	}
}

// Decide resolves the allocation for one candidate trade against a live
// snapshot. Disabled engine or FALLBACK_GOVERNANCE returns the neutral
// fail-open decision immediately: all multipliers 1.0, trade permitted.
func (r *Resolver) Decide(state overlay.LiveState, pair, agentID, session string) Decision {
	decision := Decision{
		Pair:      pair,
		AgentID:   agentID,
		Session:   session,
		DecidedAt: time.Now(),
	}

	if !r.config.Get().Enabled || state.Mode == overlay.ModeFallbackGovernance {
		decision.TradePermitted = true
		decision.Fallback = true
		decision.FinalPositionMultiplier = 1.0
		decision.PairMultiplier = 1.0
		decision.AgentMultiplier = 1.0
		decision.SessionMultiplier = 1.0
		decision.CoalitionMultiplier = 1.0
		return decision
	}

	decision.PairMultiplier = r.pairLeg(state, pair, &decision)
	decision.AgentMultiplier = r.agentLeg(state, pair, agentID, &decision)
	decision.SessionMultiplier = r.sessionLeg(state, pair, session, &decision)
	decision.CoalitionMultiplier = r.coalitionLeg(state, pair, &decision)

	product := decision.PairMultiplier *
		decision.AgentMultiplier *
		decision.SessionMultiplier *
		decision.CoalitionMultiplier
	decision.FinalPositionMultiplier = formulas.Round2(formulas.Clamp(product, 0, maxFinalMultiplier))
	decision.TradePermitted = len(decision.BlockReasons) == 0 && decision.FinalPositionMultiplier > 0

	r.log.Debug().
		Str("pair", pair).
		Str("agent", agentID).
		Str("session", session).
		Bool("permitted", decision.TradePermitted).
		Float64("multiplier", decision.FinalPositionMultiplier).
		Msg("Execution decision resolved")

	return decision
}

// pairLeg is the pair's tier multiplier, multiplicatively reduced by every
// active safety-reaction capital cut on that pair. A pair the engine has
// never scored resolves to neutral.
func (r *Resolver) pairLeg(state overlay.LiveState, pair string, decision *Decision) float64 {
	score, ok := state.Darwin.Score(pair)
	if !ok {
		return 1.0
	}

	if score.Tier == darwin.TierExtinction {
		decision.Block("Pair is in EXTINCTION tier")
		return 0
	}

	leg := score.Multiplier
	for _, reaction := range state.PairReactions(pair) {
		leg *= 1 - reaction.CapitalReduction
	}
	return leg
}

// agentLeg is the agent's authority multiplier, zeroed when the agent is
// disabled or a drawdown reaction restricts the pair to its top agent
func (r *Resolver) agentLeg(state overlay.LiveState, pair, agentID string, decision *Decision) float64 {
	for _, reaction := range state.PairReactions(pair) {
		if reaction.RestrictToTopAgent {
			if top := state.TopAgent(); top != "" && top != agentID {
				decision.Block(fmt.Sprintf("Pair restricted to top agent %s", top))
				return 0
			}
		}
	}

	authority, ok := state.Agents[agentID]
	if !ok {
		return 1.0 // Unknown agent: no authority data yet, stay neutral
	}

	if authority.Role == overlay.RoleDisabled {
		decision.Block(fmt.Sprintf("Agent %s is disabled", agentID))
		return 0
	}

	return authority.CapitalMultiplier
}

// sessionLeg is the (session, pair) position-size multiplier, zeroed when
// the session is disabled for the pair
func (r *Resolver) sessionLeg(state overlay.LiveState, pair, session string, decision *Decision) float64 {
	authority, ok := state.Sessions[overlay.SessionKey(session, pair)]
	if !ok {
		return 1.0 // No dominance data for this cell yet
	}

	if !authority.Enabled {
		decision.Block(fmt.Sprintf("Session %s disabled for %s: %s", session, pair, authority.Reasoning))
		return 0
	}

	return authority.PositionSizeMultiplier
}

// coalitionLeg is the pair's coalition authority multiplier: zero when
// coalitions are blocked, capped at 1.0 while a freeze reaction is active
func (r *Resolver) coalitionLeg(state overlay.LiveState, pair string, decision *Decision) float64 {
	reinforcement, ok := state.Coalitions[pair]
	if !ok {
		return 1.0
	}

	if reinforcement.Permission == overlay.CoalitionBlocked {
		decision.Block(fmt.Sprintf("Coalition trading blocked on %s, harm rate %.0f%%", pair, reinforcement.HarmRate*100))
		return 0
	}

	leg := reinforcement.AuthorityMultiplier
	if state.CoalitionsFrozen() && leg > 1.0 {
		leg = 1.0
	}
	return leg
}

// Block appends a human-readable veto reason
func (d *Decision) Block(reason string) {
	d.BlockReasons = append(d.BlockReasons, reason)
}
