package darwin

import (
	"fmt"
	"strings"
	"time"
)

// Tier represents a pair's discrete survivorship classification
type Tier string

const (
	TierAlpha      Tier = "ALPHA"
	TierBeta       Tier = "BETA"
	TierGamma      Tier = "GAMMA"
	TierExtinction Tier = "EXTINCTION"
)

// IsValid checks if the tier is a known classification
func (t Tier) IsValid() bool {
	switch t {
	case TierAlpha, TierBeta, TierGamma, TierExtinction:
		return true
	}
	return false
}

// Rank returns the tier's ordinal position, higher is better
func (t Tier) Rank() int {
	switch t {
	case TierAlpha:
		return 3
	case TierBeta:
		return 2
	case TierGamma:
		return 1
	default:
		return 0
	}
}

// Demoted returns the tier one level below, EXTINCTION stays EXTINCTION
func (t Tier) Demoted() Tier {
	switch t {
	case TierAlpha:
		return TierBeta
	case TierBeta:
		return TierGamma
	case TierGamma:
		return TierExtinction
	default:
		return TierExtinction
	}
}

// TierFromString creates a Tier from string (case-insensitive)
func TierFromString(value string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(value)))
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tier: %s", value)
	}
	return t, nil
}

// TradeRecord is a closed trade outcome produced by the upstream ledger.
// Immutable once recorded; the engine never mutates or validates it.
type TradeRecord struct {
	Pair       string    `json:"pair"`
	Pips       float64   `json:"pips"` // Signed P&L in pips
	Session    string    `json:"session"`
	AgentID    string    `json:"agent_id"`
	SpreadPips float64   `json:"spread_pips"`
	ExecutedAt time.Time `json:"executed_at"`
	Coalition  []string  `json:"coalition,omitempty"`  // Agents jointly responsible, empty for solo trades
	Indicators []string  `json:"indicators,omitempty"` // Technical indicator tags present at entry
}

// IsWin returns true for a positive-P&L trade
func (t TradeRecord) IsWin() bool {
	return t.Pips > 0
}

// HasCoalition returns true when the trade was made jointly by multiple agents
func (t TradeRecord) HasCoalition() bool {
	return len(t.Coalition) > 0
}

// RollingWindowMetrics holds point statistics over the most recent N trades
// of a pair. Recomputed on every evaluation pass, never stored historically.
type RollingWindowMetrics struct {
	WindowSize         int     `json:"window_size"`
	TradeCount         int     `json:"trade_count"`
	Expectancy         float64 `json:"expectancy"`
	ExpectancySlope    float64 `json:"expectancy_slope"`
	ProfitFactor       float64 `json:"profit_factor"`
	WinRate            float64 `json:"win_rate"`
	MaxDrawdown        float64 `json:"max_drawdown"`
	DrawdownDensity    float64 `json:"drawdown_density"`
	ExpectancyVariance float64 `json:"expectancy_variance"`
	FrictionDrag       float64 `json:"friction_drag"`
	AveragePips        float64 `json:"average_pips"`
}

// WindowSet bundles the three standard rolling windows (20/50/100)
type WindowSet struct {
	Short RollingWindowMetrics `json:"short"`
	Mid   RollingWindowMetrics `json:"mid"`
	Long  RollingWindowMetrics `json:"long"`
}

// SessionApproval represents a session's trading permission level
type SessionApproval string

const (
	SessionSuppressed SessionApproval = "suppressed"
	SessionRestricted SessionApproval = "restricted"
	SessionFull       SessionApproval = "full"
)

// SessionDominance scores one trading session's behavior for a pair
type SessionDominance struct {
	Session            string          `json:"session"`
	TradeCount         int             `json:"trade_count"`
	ExpectancySlope    float64         `json:"expectancy_slope"`
	SpreadStability    float64         `json:"spread_stability"`
	CoalitionDensity   float64         `json:"coalition_density"`
	OutcomeConsistency float64         `json:"outcome_consistency"`
	CompositeScore     float64         `json:"composite_score"`
	Approval           SessionApproval `json:"approval"`
}

// CoalitionSynergy compares jointly-made trades against solo trades
type CoalitionSynergy struct {
	PairedTrades    int     `json:"paired_trades"`
	SoloTrades      int     `json:"solo_trades"`
	DeltaExpectancy float64 `json:"delta_expectancy"` // Paired mean minus solo mean, in pips
	HarmRate        float64 `json:"harm_rate"`        // Fraction of paired trades that lost
	SynergyStrength float64 `json:"synergy_strength"` // 0-100, 50 is neutral
}

// IndicatorSurvivorship is win-rate-derived reliability for one indicator tag
type IndicatorSurvivorship struct {
	Indicator         string  `json:"indicator"`
	SampleCount       int     `json:"sample_count"`
	SurvivorshipScore float64 `json:"survivorship_score"` // 0-100
	StabilityWeight   float64 `json:"stability_weight"`   // Informational: 1.1 / 1.0 / 0.85
}

// ScoreComponents are the sub-scores feeding the overall survivorship score
type ScoreComponents struct {
	FrictionAdjustedExpectancy float64 `json:"friction_adjusted_expectancy"`
	StabilityTrend             float64 `json:"stability_trend"`
	CoalitionSynergy           float64 `json:"coalition_synergy"`
	IndicatorAlignment         float64 `json:"indicator_alignment"`
	SessionDominance           float64 `json:"session_dominance"`
	FrictionPenalty            float64 `json:"friction_penalty"`
}

// PairSurvivorshipScore is the full evaluation result for one pair.
// Invariant: Tier == EXTINCTION implies Multiplier == 0.
type PairSurvivorshipScore struct {
	Pair         string                  `json:"pair"`
	OverallScore float64                 `json:"overall_score"` // 0-100
	Components   ScoreComponents         `json:"components"`
	Windows      WindowSet               `json:"windows"`
	Tier         Tier                    `json:"tier"`
	Multiplier   float64                 `json:"multiplier"`
	Sessions     []SessionDominance      `json:"sessions"`
	Coalition    CoalitionSynergy        `json:"coalition"`
	Indicators   []IndicatorSurvivorship `json:"indicators"`
	EvaluatedAt  time.Time               `json:"evaluated_at"`
}

// TriggerType identifies the rule that detected risk degradation
type TriggerType string

const (
	TriggerProfitFactorLow   TriggerType = "PF_LOW"
	TriggerExpSlopeNegative  TriggerType = "EXP_SLOPE_NEG"
	TriggerDrawdownSpike     TriggerType = "DD_SPIKE"
	TriggerCoalitionCollapse TriggerType = "COALITION_COLLAPSE"
)

// SafetyTrigger records one fired safety rule
type SafetyTrigger struct {
	ID        string      `json:"id"`
	Type      TriggerType `json:"type"`
	Pair      string      `json:"pair"`
	Observed  float64     `json:"observed"`
	Threshold float64     `json:"threshold"`
	FiredAt   time.Time   `json:"fired_at"`
}

// TierTransitionEvent records a pair moving between tiers
type TierTransitionEvent struct {
	ID         string    `json:"id"`
	Pair       string    `json:"pair"`
	FromTier   Tier      `json:"from_tier"`
	ToTier     Tier      `json:"to_tier"`
	Reason     string    `json:"reason"`
	Score      float64   `json:"score"`
	OccurredAt time.Time `json:"occurred_at"`
}

// State is the complete Darwinism snapshot after an evaluation pass.
// Fully replaced on each rebalance; readers never see a partial update.
type State struct {
	Scores               map[string]PairSurvivorshipScore `json:"scores"`
	Ranking              []string                         `json:"ranking"` // Pairs by overall score, descending
	Transitions          []TierTransitionEvent            `json:"transitions"`
	Triggers             []SafetyTrigger                  `json:"triggers"`
	CapitalDistribution  map[string]float64               `json:"capital_distribution"` // Pair -> percentage, sums to 100
	LastRebalance        time.Time                        `json:"last_rebalance"`
	TotalTradesEvaluated int                              `json:"total_trades_evaluated"`
	SystemHealthScore    float64                          `json:"system_health_score"` // Mean score of non-extinct pairs
}

// Score returns the evaluation for a pair, if present
func (s State) Score(pair string) (PairSurvivorshipScore, bool) {
	score, ok := s.Scores[pair]
	return score, ok
}

// ActiveTriggers returns the triggers fired for a pair in the latest pass
func (s State) ActiveTriggers(pair string) []SafetyTrigger {
	var out []SafetyTrigger
	for _, trig := range s.Triggers {
		if trig.Pair == pair && !trig.FiredAt.Before(s.LastRebalance) {
			out = append(out, trig)
		}
	}
	return out
}
