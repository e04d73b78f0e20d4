package darwin

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/pkg/formulas"
)

// Assembler combines window, coalition, indicator and session analysis
// into one 0-100 survivorship score per pair, classifies the tier, applies
// safety-triggered demotion and derives the capital multiplier.
type Assembler struct {
	windows    *WindowCalculator
	coalitions *CoalitionScorer
	indicators *IndicatorScorer
	sessions   *SessionScorer
	governor   *SafetyGovernor
	log        zerolog.Logger
}

// NewAssembler creates a survivorship score assembler
func NewAssembler(log zerolog.Logger) *Assembler {
	return &Assembler{
		windows:    NewWindowCalculator(),
		coalitions: NewCoalitionScorer(),
		indicators: NewIndicatorScorer(),
		sessions:   NewSessionScorer(),
		governor:   NewSafetyGovernor(),
		log:        log.With().Str("module", "darwin_assembler").Logger(),
	}
}

// Evaluation is the result of one assembler pass over a pair
type Evaluation struct {
	Score      PairSurvivorshipScore
	Triggers   []SafetyTrigger
	Transition *TierTransitionEvent // nil when the tier did not change
}

// EvaluatePair scores one pair from its ordered trade history. prevTier is
// the pair's tier in the previous snapshot, used as transition context;
// pass TierExtinction for a pair never seen before.
func (a *Assembler) EvaluatePair(pair string, trades []TradeRecord, prevTier Tier, cfg Config, now time.Time) Evaluation {
	windows := a.windows.CalculateSet(trades, cfg)
	coalition := a.coalitions.Calculate(trades)
	indicators := a.indicators.Calculate(trades)
	sessions := a.sessions.Calculate(trades)

	weightedExpectancy := cfg.WindowWeights.Short*windows.Short.Expectancy +
		cfg.WindowWeights.Mid*windows.Mid.Expectancy +
		cfg.WindowWeights.Long*windows.Long.Expectancy
	frictionAdjusted := weightedExpectancy - windows.Mid.FrictionDrag

	expectancyScore := formulas.Clamp(50+10*frictionAdjusted, 0, 100)
	stabilityTrend := formulas.Clamp(100-80*windows.Long.DrawdownDensity-2*windows.Long.ExpectancyVariance, 0, 100)
	indicatorAlignment := indicatorAlignment(indicators)
	sessionDominance := meanSessionScore(sessions)
	frictionPenalty := formulas.Clamp(5*windows.Mid.FrictionDrag, 0, 20)

	overall := expectancyScore*cfg.ComponentWeights.Expectancy +
		stabilityTrend*cfg.ComponentWeights.Stability +
		coalition.SynergyStrength*cfg.ComponentWeights.Coalition +
		indicatorAlignment*cfg.ComponentWeights.Indicator +
		sessionDominance*cfg.ComponentWeights.Session
	overall = formulas.Round2(formulas.Clamp(overall-frictionPenalty, 0, 100))

	tier := classifyTier(overall, cfg.Tiers)

	triggers := a.governor.Check(pair, windows.Mid, coalition, cfg.Safety, now)
	if len(triggers) > 0 && (tier == TierAlpha || tier == TierBeta) {
		demoted := tier.Demoted()
		a.log.Warn().
			Str("pair", pair).
			Str("from", string(tier)).
			Str("to", string(demoted)).
			Int("triggers", len(triggers)).
			Msg("Safety demotion applied")
		tier = demoted
	}

	score := PairSurvivorshipScore{
		Pair:         pair,
		OverallScore: overall,
		Components: ScoreComponents{
			FrictionAdjustedExpectancy: formulas.Round2(frictionAdjusted),
			StabilityTrend:             formulas.Round2(stabilityTrend),
			CoalitionSynergy:           coalition.SynergyStrength,
			IndicatorAlignment:         formulas.Round2(indicatorAlignment),
			SessionDominance:           formulas.Round2(sessionDominance),
			FrictionPenalty:            formulas.Round2(frictionPenalty),
		},
		Windows:     windows,
		Tier:        tier,
		Multiplier:  tierMultiplier(overall, tier, cfg),
		Sessions:    sessions,
		Coalition:   coalition,
		Indicators:  indicators,
		EvaluatedAt: now,
	}

	eval := Evaluation{Score: score, Triggers: triggers}
	if prevTier != tier {
		eval.Transition = &TierTransitionEvent{
			ID:         uuid.New().String(),
			Pair:       pair,
			FromTier:   prevTier,
			ToTier:     tier,
			Reason:     transitionReason(prevTier, tier, triggers),
			Score:      overall,
			OccurredAt: now,
		}
	}

	return eval
}

// indicatorAlignment is the mean survivorship of qualifying indicators,
// neutral 50 when none qualify
func indicatorAlignment(indicators []IndicatorSurvivorship) float64 {
	if len(indicators) == 0 {
		return 50
	}
	total := 0.0
	for _, ind := range indicators {
		total += ind.SurvivorshipScore
	}
	return total / float64(len(indicators))
}

func meanSessionScore(sessions []SessionDominance) float64 {
	if len(sessions) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range sessions {
		total += s.CompositeScore
	}
	return total / float64(len(sessions))
}

func classifyTier(score float64, thresholds TierThresholds) Tier {
	switch {
	case score >= thresholds.AlphaMin:
		return TierAlpha
	case score >= thresholds.BetaMin:
		return TierBeta
	case score >= thresholds.GammaMin:
		return TierGamma
	default:
		return TierExtinction
	}
}

// tierMultiplier maps the score's position inside its tier band onto the
// tier's configured multiplier range. EXTINCTION is always 0.
func tierMultiplier(score float64, tier Tier, cfg Config) float64 {
	if tier == TierExtinction {
		return 0
	}

	var lower, upper float64
	switch tier {
	case TierAlpha:
		lower, upper = cfg.Tiers.AlphaMin, 100
	case TierBeta:
		lower, upper = cfg.Tiers.BetaMin, cfg.Tiers.AlphaMin
	case TierGamma:
		lower, upper = cfg.Tiers.GammaMin, cfg.Tiers.BetaMin
	}

	// Equal adjacent thresholds would divide by zero; clamp the span so a
	// degenerate config resolves to the top of the band instead of crashing
	span := upper - lower
	if span < 1e-9 {
		span = 1e-9
	}
	position := formulas.Clamp((score-lower)/span, 0, 1)

	band := cfg.Multipliers.ForTier(tier)
	return formulas.Round2(band.Min + position*(band.Max-band.Min))
}

// transitionReason names the fired triggers when safety forced the move,
// otherwise labels the direction of the score change
func transitionReason(from, to Tier, triggers []SafetyTrigger) string {
	if len(triggers) > 0 {
		names := make([]string, len(triggers))
		for i, trig := range triggers {
			names[i] = string(trig.Type)
		}
		return strings.Join(names, ", ")
	}
	if to.Rank() > from.Rank() {
		return "Score improvement"
	}
	return "Score degradation"
}
