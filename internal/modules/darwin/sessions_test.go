package darwin

import (
	"testing"
)

func sessionTrades(session string, pips []float64, spreads []float64) []TradeRecord {
	trades := make([]TradeRecord, len(pips))
	for i := range pips {
		trades[i] = TradeRecord{Pair: "EURUSD", Session: session, Pips: pips[i], SpreadPips: spreads[i]}
	}
	return trades
}

func TestSessionScorer_NeutralConsistencyForThinSamples(t *testing.T) {
	// 2 trades: improving slope (+30), zero spread variance (+20),
	// no coalitions (+0), neutral 50 consistency (+15) = 65
	trades := sessionTrades("london", []float64{1, 2}, []float64{0.5, 0.5})
	dominances := NewSessionScorer().Calculate(trades)

	if len(dominances) != 1 {
		t.Fatalf("Expected one session, got %d", len(dominances))
	}
	d := dominances[0]
	if d.OutcomeConsistency != 50 {
		t.Errorf("OutcomeConsistency = %v, want neutral 50 for 2 trades", d.OutcomeConsistency)
	}
	if d.CompositeScore != 65 {
		t.Errorf("CompositeScore = %v, want 65", d.CompositeScore)
	}
	if d.Approval != SessionFull {
		t.Errorf("Approval = %v, want full", d.Approval)
	}
}

func TestSessionScorer_SuppressedSession(t *testing.T) {
	// Degrading slope (no +30), wild spread variance (stability 0),
	// no coalitions, neutral 50 consistency (+15) = 15
	trades := sessionTrades("asia", []float64{2, 1}, []float64{0, 3})
	dominances := NewSessionScorer().Calculate(trades)

	d := dominances[0]
	if d.SpreadStability != 0 {
		t.Errorf("SpreadStability = %v, want 0", d.SpreadStability)
	}
	if d.CompositeScore != 15 {
		t.Errorf("CompositeScore = %v, want 15", d.CompositeScore)
	}
	if d.Approval != SessionSuppressed {
		t.Errorf("Approval = %v, want suppressed", d.Approval)
	}
}

func TestSessionScorer_RealConsistencyAboveFiveTrades(t *testing.T) {
	// 6 trades, 3 wins: consistency 50 comes from the actual win rate now
	trades := sessionTrades("newyork",
		[]float64{1, -1, 1, -1, 1, -1},
		[]float64{0.2, 0.2, 0.2, 0.2, 0.2, 0.2})
	d := NewSessionScorer().Calculate(trades)[0]

	if d.OutcomeConsistency != 50 {
		t.Errorf("OutcomeConsistency = %v, want 50 from win rate", d.OutcomeConsistency)
	}
	if d.TradeCount != 6 {
		t.Errorf("TradeCount = %d, want 6", d.TradeCount)
	}
}

func TestSessionScorer_SplitsBySession(t *testing.T) {
	trades := append(
		sessionTrades("asia", []float64{1}, []float64{0.1}),
		sessionTrades("london", []float64{2}, []float64{0.1})...,
	)
	dominances := NewSessionScorer().Calculate(trades)

	if len(dominances) != 2 {
		t.Fatalf("Expected two sessions, got %d", len(dominances))
	}
	if dominances[0].Session != "asia" || dominances[1].Session != "london" {
		t.Errorf("Expected sorted sessions, got %s, %s", dominances[0].Session, dominances[1].Session)
	}
}
