package overlay

import (
	"fmt"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// AgentScorer derives per-agent execution authority from raw trade
// outcomes and the latest pair scores
type AgentScorer struct{}

// NewAgentScorer creates a new agent authority scorer
func NewAgentScorer() *AgentScorer {
	return &AgentScorer{}
}

// Calculate computes authority for every agent seen in the trade list
func (as *AgentScorer) Calculate(trades []darwin.TradeRecord, scores map[string]darwin.PairSurvivorshipScore, thresholds darwin.AgentThresholds) map[string]AgentAuthority {
	byAgent := make(map[string][]darwin.TradeRecord)
	for _, trade := range trades {
		byAgent[trade.AgentID] = append(byAgent[trade.AgentID], trade)
	}

	authorities := make(map[string]AgentAuthority, len(byAgent))
	for agentID, agentTrades := range byAgent {
		authorities[agentID] = as.scoreAgent(agentID, agentTrades, scores, thresholds)
	}
	return authorities
}

func (as *AgentScorer) scoreAgent(agentID string, trades []darwin.TradeRecord, scores map[string]darwin.PairSurvivorshipScore, thresholds darwin.AgentThresholds) AgentAuthority {
	if len(trades) < thresholds.MinTrades {
		return AgentAuthority{
			AgentID:       agentID,
			Score:         0,
			Role:          RoleDisabled,
			PairAuthority: map[string]float64{},
			TradeCount:    len(trades),
			Reasoning:     fmt.Sprintf("Only %d trades recorded, below the %d-trade minimum", len(trades), thresholds.MinTrades),
		}
	}

	pips := make([]float64, len(trades))
	grossProfit := 0.0
	grossLoss := 0.0
	wins := 0
	totalPips := 0.0

	for i, trade := range trades {
		pips[i] = trade.Pips
		totalPips += trade.Pips
		if trade.Pips > 0 {
			grossProfit += trade.Pips
			wins++
		} else {
			grossLoss += -trade.Pips
		}
	}

	winRate := float64(wins) / float64(len(trades))
	slope := formulas.SplitTrend(pips)

	pf := 0.0
	if grossLoss > 0 {
		pf = grossProfit / grossLoss
	} else if grossProfit > 0 {
		pf = 3 // Capped contribution below, so the sentinel can stay small
	}

	// Profitability bonus is flat; win rate carries the most weight; the
	// profit factor contribution is capped so one lucky streak cannot
	// dominate; improving trend and sample depth add smaller bonuses.
	score := winRate * 40
	if totalPips > 0 {
		score += 20
	}
	score += formulas.Clamp(pf, 0, 3) / 3 * 20
	if slope > 0 {
		score += 10
	}
	score += formulas.Clamp(float64(len(trades)), 0, 50) / 50 * 10
	score = formulas.Round2(formulas.Clamp(score, 0, 100))

	role, multiplier := classifyRole(score, thresholds)

	return AgentAuthority{
		AgentID:           agentID,
		Score:             score,
		Role:              role,
		CapitalMultiplier: multiplier,
		PairAuthority:     pairAuthorities(trades, score, scores),
		ExpectancySlope:   formulas.Round2(slope),
		TradeCount:        len(trades),
		Reasoning: fmt.Sprintf("%d trades, %.0f%% win rate, %.2f profit factor, %s trend",
			len(trades), winRate*100, pf, trendWord(slope)),
	}
}

func classifyRole(score float64, thresholds darwin.AgentThresholds) (AgentRole, float64) {
	switch {
	case score < thresholds.MinAuthority:
		return RoleDisabled, 0
	case score < thresholds.ConfirmationOnly:
		return RoleConfirmationOnly, 0.5
	default:
		return RoleFullTrade, 1.0
	}
}

// pairAuthorities blends agent standing with each traded pair's
// survivorship: half the agent score, 30% the pair score, plus a flat
// bonus when the pair's mid-window expectancy is positive
func pairAuthorities(trades []darwin.TradeRecord, agentScore float64, scores map[string]darwin.PairSurvivorshipScore) map[string]float64 {
	seen := make(map[string]bool)
	authority := make(map[string]float64)

	for _, trade := range trades {
		if seen[trade.Pair] {
			continue
		}
		seen[trade.Pair] = true

		pairScore := 0.0
		expectancyBonus := 0.0
		if score, ok := scores[trade.Pair]; ok {
			pairScore = score.OverallScore
			if score.Windows.Mid.Expectancy > 0 {
				expectancyBonus = 20
			}
		}

		authority[trade.Pair] = formulas.Round2(0.5*agentScore + 0.3*pairScore + expectancyBonus)
	}

	return authority
}

func trendWord(slope float64) string {
	switch {
	case slope > 0:
		return "improving"
	case slope < 0:
		return "degrading"
	default:
		return "flat"
	}
}
