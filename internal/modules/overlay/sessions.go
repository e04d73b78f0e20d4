package overlay

import (
	"fmt"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/pkg/formulas"
)

// SessionAuthorityComputer turns per-pair session dominance into
// (session, pair) execution permissions
type SessionAuthorityComputer struct{}

// NewSessionAuthorityComputer creates a new session authority computer
func NewSessionAuthorityComputer() *SessionAuthorityComputer {
	return &SessionAuthorityComputer{}
}

// Calculate derives authority for every (session, pair) cell present in
// the latest pair scores
func (sc *SessionAuthorityComputer) Calculate(scores map[string]darwin.PairSurvivorshipScore, minWeight float64) map[string]SessionAuthority {
	authorities := make(map[string]SessionAuthority)

	for pair, score := range scores {
		for _, session := range score.Sessions {
			weight := formulas.Round3(session.CompositeScore / 100 * score.OverallScore / 100)
			enabled := weight >= minWeight && session.Approval != darwin.SessionSuppressed

			multiplier := 0.0
			reason := fmt.Sprintf("Weight %.2f below %.2f minimum", weight, minWeight)
			if session.Approval == darwin.SessionSuppressed {
				reason = "Session suppressed by dominance score"
			}
			if enabled {
				multiplier = formulas.Clamp(2*weight, 0.3, 1.5)
				reason = fmt.Sprintf("Session composite %.0f on a %.0f-scored pair", session.CompositeScore, score.OverallScore)
			}

			authorities[SessionKey(session.Session, pair)] = SessionAuthority{
				Session:                session.Session,
				Pair:                   pair,
				Weight:                 weight,
				PositionSizeMultiplier: formulas.Round2(multiplier),
				Enabled:                enabled,
				Reasoning:              reason,
			}
		}
	}

	return authorities
}
