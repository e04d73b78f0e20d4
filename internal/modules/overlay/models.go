package overlay

import (
	"time"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
)

// Mode is the overlay's operating mode. FALLBACK_GOVERNANCE serves
// neutral decisions after a failed rebalance - fail open, never closed.
type Mode string

const (
	ModeActive             Mode = "ACTIVE"
	ModeFallbackGovernance Mode = "FALLBACK_GOVERNANCE"
)

// AgentRole is an agent's execution permission level
type AgentRole string

const (
	RoleFullTrade        AgentRole = "FULL_TRADE"
	RoleConfirmationOnly AgentRole = "CONFIRMATION_ONLY"
	RoleDisabled         AgentRole = "DISABLED"
)

// AgentAuthority is an agent's derived standing across the book
type AgentAuthority struct {
	AgentID           string             `json:"agent_id"`
	Score             float64            `json:"score"` // 0-100
	Role              AgentRole          `json:"role"`
	CapitalMultiplier float64            `json:"capital_multiplier"`
	PairAuthority     map[string]float64 `json:"pair_authority"` // Per-pair blended authority, 0-100
	ExpectancySlope   float64            `json:"expectancy_slope"`
	TradeCount        int                `json:"trade_count"`
	Reasoning         string             `json:"reasoning"`
}

// SessionAuthority is the derived permission for one (session, pair) cell
type SessionAuthority struct {
	Session                string  `json:"session"`
	Pair                   string  `json:"pair"`
	Weight                 float64 `json:"weight"`
	PositionSizeMultiplier float64 `json:"position_size_multiplier"`
	Enabled                bool    `json:"enabled"`
	Reasoning              string  `json:"reasoning"`
}

// CoalitionPermission grades how much coordinated trading is allowed
type CoalitionPermission string

const (
	CoalitionBoosted CoalitionPermission = "BOOSTED"
	CoalitionNeutral CoalitionPermission = "NEUTRAL"
	CoalitionReduced CoalitionPermission = "REDUCED"
	CoalitionBlocked CoalitionPermission = "BLOCKED"
)

// CoalitionReinforcement is the per-pair coalition verdict
type CoalitionReinforcement struct {
	Pair                string              `json:"pair"`
	DeltaExpectancy     float64             `json:"delta_expectancy"`
	HarmRate            float64             `json:"harm_rate"`
	Permission          CoalitionPermission `json:"permission"`
	AuthorityMultiplier float64             `json:"authority_multiplier"`
}

// IndicatorStatus grades an indicator's usability
type IndicatorStatus string

const (
	IndicatorActive     IndicatorStatus = "ACTIVE"
	IndicatorDowngraded IndicatorStatus = "DOWNGRADED"
	IndicatorDisabled   IndicatorStatus = "DISABLED"
)

// IndicatorTrend is the direction an indicator's reliability is moving
type IndicatorTrend string

const (
	TrendImproving IndicatorTrend = "IMPROVING"
	TrendStable    IndicatorTrend = "STABLE"
	TrendDeclining IndicatorTrend = "DECLINING"
)

// IndicatorWeight blends backtest survivorship with live telemetry
type IndicatorWeight struct {
	Indicator       string          `json:"indicator"`
	BacktestScore   float64         `json:"backtest_score"`
	LiveScore       float64         `json:"live_score"`
	CompositeWeight float64         `json:"composite_weight"`
	Trend           IndicatorTrend  `json:"trend"`
	Status          IndicatorStatus `json:"status"`
}

// SafetyReaction pairs an active trigger with its mitigating action
type SafetyReaction struct {
	Trigger             darwin.SafetyTrigger `json:"trigger"`
	Action              string               `json:"action"`
	CapitalReduction    float64              `json:"capital_reduction"` // Fraction of capital cut, 0-1
	FreezeCoalitions    bool                 `json:"freeze_coalitions"`
	RestrictToTopAgent  bool                 `json:"restrict_to_top_agent"`
}

// SlopeDirection labels an expectancy slope warning
type SlopeDirection string

const (
	SlopeRising  SlopeDirection = "RISING"
	SlopeHolding SlopeDirection = "HOLDING"
	SlopeFalling SlopeDirection = "FALLING"
)

// SlopeWarning is a per-pair expectancy trend advisory
type SlopeWarning struct {
	Pair       string         `json:"pair"`
	Slope      float64        `json:"slope"`
	Direction  SlopeDirection `json:"direction"`
	Suggestion string         `json:"suggestion"`
	Confidence float64        `json:"confidence"` // 0-90
}

// LiveState is the complete execution overlay: the Darwinism snapshot plus
// every derived authority collection. Fully replaced on each rebalance.
type LiveState struct {
	Darwin       darwin.State                      `json:"darwin"`
	Agents       map[string]AgentAuthority         `json:"agents"`
	Sessions     map[string]SessionAuthority       `json:"sessions"` // Keyed session|pair
	Coalitions   map[string]CoalitionReinforcement `json:"coalitions"`
	Indicators   map[string]IndicatorWeight        `json:"indicators"`
	Reactions    []SafetyReaction                  `json:"reactions"`
	Warnings     []SlopeWarning                    `json:"warnings"`
	TradeCounter int                               `json:"trade_counter"`
	Mode         Mode                              `json:"mode"`
	ComputedAt   time.Time                         `json:"computed_at"`
}

// SessionKey builds the map key for a (session, pair) authority cell
func SessionKey(session, pair string) string {
	return session + "|" + pair
}

// EmptyLiveState returns the process-start state: no data, ACTIVE mode
func EmptyLiveState() LiveState {
	return LiveState{
		Darwin: darwin.State{
			Scores:              map[string]darwin.PairSurvivorshipScore{},
			CapitalDistribution: map[string]float64{},
		},
		Agents:     map[string]AgentAuthority{},
		Sessions:   map[string]SessionAuthority{},
		Coalitions: map[string]CoalitionReinforcement{},
		Indicators: map[string]IndicatorWeight{},
		Mode:       ModeActive,
	}
}

// TopAgent returns the highest-scoring FULL_TRADE agent, empty when none
func (ls LiveState) TopAgent() string {
	best := ""
	bestScore := -1.0
	for id, agent := range ls.Agents {
		if agent.Role != RoleFullTrade {
			continue
		}
		if agent.Score > bestScore || (agent.Score == bestScore && id < best) {
			best = id
			bestScore = agent.Score
		}
	}
	return best
}

// PairReactions returns the safety reactions targeting one pair
func (ls LiveState) PairReactions(pair string) []SafetyReaction {
	var out []SafetyReaction
	for _, reaction := range ls.Reactions {
		if reaction.Trigger.Pair == pair {
			out = append(out, reaction)
		}
	}
	return out
}

// CoalitionsFrozen reports whether any active reaction freezes coalitions
func (ls LiveState) CoalitionsFrozen() bool {
	for _, reaction := range ls.Reactions {
		if reaction.FreezeCoalitions {
			return true
		}
	}
	return false
}
