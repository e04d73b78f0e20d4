package darwin

import (
	"sort"

	"github.com/aristath/darwin-trader/pkg/formulas"
)

// Session composite thresholds: below suppressedBelow trading in the
// session is suppressed, below restrictedBelow it is restricted.
const (
	sessionSuppressedBelow = 30.0
	sessionRestrictedBelow = 55.0
)

// SessionScorer scores each trading session's directional, volatility and
// consistency behavior for a pair
type SessionScorer struct{}

// NewSessionScorer creates a new session dominance scorer
func NewSessionScorer() *SessionScorer {
	return &SessionScorer{}
}

// Calculate groups a pair's trades by session and scores each subset.
// Results are sorted by session name for stable output.
func (ss *SessionScorer) Calculate(trades []TradeRecord) []SessionDominance {
	bySession := make(map[string][]TradeRecord)
	for _, trade := range trades {
		bySession[trade.Session] = append(bySession[trade.Session], trade)
	}

	var dominances []SessionDominance
	for session, subset := range bySession {
		dominances = append(dominances, ss.scoreSession(session, subset))
	}

	sort.Slice(dominances, func(i, j int) bool {
		return dominances[i].Session < dominances[j].Session
	})

	return dominances
}

func (ss *SessionScorer) scoreSession(session string, trades []TradeRecord) SessionDominance {
	pips := make([]float64, len(trades))
	spreads := make([]float64, len(trades))
	wins := 0
	withCoalition := 0

	for i, trade := range trades {
		pips[i] = trade.Pips
		spreads[i] = trade.SpreadPips
		if trade.IsWin() {
			wins++
		}
		if trade.HasCoalition() {
			withCoalition++
		}
	}

	slope := formulas.SplitTrend(pips)
	spreadStability := formulas.Clamp(100-100*formulas.Variance(spreads), 0, 100)
	coalitionDensity := float64(withCoalition) / float64(len(trades))

	// Thin samples get a neutral consistency default rather than an
	// overconfident win rate
	outcomeConsistency := 50.0
	if len(trades) > 5 {
		outcomeConsistency = float64(wins) / float64(len(trades)) * 100
	}

	composite := 0.2*spreadStability + 20*coalitionDensity + 0.3*outcomeConsistency
	if slope > 0 {
		composite += 30
	}
	composite = formulas.Clamp(composite, 0, 100)

	return SessionDominance{
		Session:            session,
		TradeCount:         len(trades),
		ExpectancySlope:    formulas.Round2(slope),
		SpreadStability:    formulas.Round2(spreadStability),
		CoalitionDensity:   formulas.Round2(coalitionDensity),
		OutcomeConsistency: formulas.Round2(outcomeConsistency),
		CompositeScore:     formulas.Round2(composite),
		Approval:           approvalFor(composite),
	}
}

func approvalFor(composite float64) SessionApproval {
	switch {
	case composite < sessionSuppressedBelow:
		return SessionSuppressed
	case composite < sessionRestrictedBelow:
		return SessionRestricted
	default:
		return SessionFull
	}
}
