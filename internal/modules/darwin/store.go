package darwin

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/darwin-trader/pkg/formulas"
)

// Store holds the latest Darwinism snapshot. Writers replace the whole
// snapshot under the mutex; readers always see either the old or the new
// complete state, never a mix. Rebalances are expected to come from a
// single writer (the overlay controller).
type Store struct {
	mu          sync.RWMutex
	state       State
	transitions *Ring[TierTransitionEvent]
	triggers    *Ring[SafetyTrigger]

	assembler *Assembler
	config    *ConfigStore
	log       zerolog.Logger
}

// NewStore creates a Darwinism state store with empty state
func NewStore(config *ConfigStore, log zerolog.Logger) *Store {
	cap := config.Get().HistoryCap
	return &Store{
		state:       emptyState(),
		transitions: NewRing[TierTransitionEvent](cap),
		triggers:    NewRing[SafetyTrigger](cap),
		assembler:   NewAssembler(log),
		config:      config,
		log:         log.With().Str("module", "darwin_store").Logger(),
	}
}

func emptyState() State {
	return State{
		Scores:              map[string]PairSurvivorshipScore{},
		CapitalDistribution: map[string]float64{},
	}
}

// Snapshot returns the current state. The map values are never mutated
// after publication, so sharing them is safe.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Reset discards all scores and history
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = emptyState()
	s.transitions.Reset()
	s.triggers.Reset()
	s.log.Info().Msg("Darwinism state reset")
}

// Evaluate runs a full scoring pass over every pair's trade batch and
// atomically replaces the stored snapshot. Each pair's previous tier from
// the current snapshot is the transition context, so calling twice with
// identical inputs yields an identical snapshot (minus timestamps).
func (s *Store) Evaluate(tradesByPair map[string][]TradeRecord) State {
	cfg := s.config.Get()
	now := time.Now()

	prev := s.Snapshot()

	var newTransitions []TierTransitionEvent
	var newTriggers []SafetyTrigger
	scores := make(map[string]PairSurvivorshipScore, len(tradesByPair))
	totalTrades := 0

	for pair, trades := range tradesByPair {
		prevTier := TierExtinction
		if prevScore, ok := prev.Scores[pair]; ok {
			prevTier = prevScore.Tier
		}

		eval := s.assembler.EvaluatePair(pair, trades, prevTier, cfg, now)
		scores[pair] = eval.Score
		newTriggers = append(newTriggers, eval.Triggers...)
		if eval.Transition != nil {
			newTransitions = append(newTransitions, *eval.Transition)
		}
		totalTrades += len(trades)
	}

	ranking := rankPairs(scores)

	next := State{
		Scores:               scores,
		Ranking:              ranking,
		CapitalDistribution:  capitalDistribution(scores),
		LastRebalance:        now,
		TotalTradesEvaluated: totalTrades,
		SystemHealthScore:    systemHealth(scores),
	}

	s.mu.Lock()
	s.transitions.PushAll(newTransitions)
	s.triggers.PushAll(newTriggers)
	next.Transitions = s.transitions.Items()
	next.Triggers = s.triggers.Items()
	s.state = next
	s.mu.Unlock()

	s.log.Info().
		Int("pairs", len(scores)).
		Int("trades", totalTrades).
		Int("transitions", len(newTransitions)).
		Int("triggers", len(newTriggers)).
		Float64("health", next.SystemHealthScore).
		Msg("Darwinism state rebalanced")

	return next
}

// rankPairs orders pairs by overall score descending, name ascending on ties
func rankPairs(scores map[string]PairSurvivorshipScore) []string {
	ranking := make([]string, 0, len(scores))
	for pair := range scores {
		ranking = append(ranking, pair)
	}
	sort.Slice(ranking, func(i, j int) bool {
		si, sj := scores[ranking[i]], scores[ranking[j]]
		if si.OverallScore != sj.OverallScore {
			return si.OverallScore > sj.OverallScore
		}
		return ranking[i] < ranking[j]
	})
	return ranking
}

// capitalDistribution normalizes multipliers into percentages summing to
// 100 across non-extinct pairs; all zeros when every multiplier is zero
func capitalDistribution(scores map[string]PairSurvivorshipScore) map[string]float64 {
	distribution := make(map[string]float64, len(scores))

	totalMultiplier := 0.0
	for _, score := range scores {
		totalMultiplier += score.Multiplier
	}

	for pair, score := range scores {
		if totalMultiplier == 0 {
			distribution[pair] = 0
			continue
		}
		distribution[pair] = formulas.Round2(100 * score.Multiplier / totalMultiplier)
	}

	return distribution
}

// systemHealth is the mean overall score of non-extinct pairs, 0 when
// every pair is extinct
func systemHealth(scores map[string]PairSurvivorshipScore) float64 {
	total := 0.0
	count := 0
	for _, score := range scores {
		if score.Tier == TierExtinction {
			continue
		}
		total += score.OverallScore
		count++
	}
	if count == 0 {
		return 0
	}
	return formulas.Round2(total / float64(count))
}
