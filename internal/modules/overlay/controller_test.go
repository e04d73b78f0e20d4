package overlay

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/darwin-trader/internal/modules/darwin"
	"github.com/aristath/darwin-trader/pkg/logger"
)

// memorySource is an in-memory TradeSource for controller tests
type memorySource struct {
	trades []darwin.TradeRecord
	err    error
	pulls  int
}

func (ms *memorySource) TradesByPair() (map[string][]darwin.TradeRecord, error) {
	ms.pulls++
	if ms.err != nil {
		return nil, ms.err
	}
	byPair := make(map[string][]darwin.TradeRecord)
	for _, trade := range ms.trades {
		byPair[trade.Pair] = append(byPair[trade.Pair], trade)
	}
	return byPair, nil
}

func (ms *memorySource) AllTrades() ([]darwin.TradeRecord, error) {
	if ms.err != nil {
		return nil, ms.err
	}
	return ms.trades, nil
}

func controllerFixture(t *testing.T, source TradeSource) *Controller {
	t.Helper()
	config := darwin.NewConfigStore(logger.Nop())
	store := darwin.NewStore(config, logger.Nop())
	return NewController(store, config, source, &StubSource{}, logger.Nop())
}

func fixtureTrades(pair string, count int) []darwin.TradeRecord {
	base := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	trades := make([]darwin.TradeRecord, count)
	for i := range trades {
		pips := 2.0
		if i%5 == 4 {
			pips = -1.0
		}
		trades[i] = darwin.TradeRecord{
			Pair:       pair,
			Pips:       pips,
			Session:    "london",
			AgentID:    "agent-1",
			SpreadPips: 0.4,
			ExecutedAt: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return trades
}

func TestController_RebalancePopulatesLiveState(t *testing.T) {
	source := &memorySource{trades: fixtureTrades("EURUSD", 30)}
	controller := controllerFixture(t, source)

	require.NoError(t, controller.RebalanceFromSource())

	live := controller.Live()
	assert.Equal(t, ModeActive, live.Mode)
	assert.Contains(t, live.Darwin.Scores, "EURUSD")
	assert.Contains(t, live.Agents, "agent-1")
	assert.Contains(t, live.Sessions, SessionKey("london", "EURUSD"))
	assert.Contains(t, live.Coalitions, "EURUSD")
	assert.False(t, live.ComputedAt.IsZero())
}

func TestController_SourceFailureDegradesToFallback(t *testing.T) {
	source := &memorySource{err: errors.New("ledger unavailable")}
	controller := controllerFixture(t, source)

	err := controller.RebalanceFromSource()
	require.Error(t, err)
	assert.Equal(t, ModeFallbackGovernance, controller.Mode())
}

func TestController_FallbackKeepsLastSnapshot(t *testing.T) {
	source := &memorySource{trades: fixtureTrades("EURUSD", 30)}
	controller := controllerFixture(t, source)
	require.NoError(t, controller.RebalanceFromSource())

	source.err = errors.New("ledger unavailable")
	require.Error(t, controller.RebalanceFromSource())

	live := controller.Live()
	assert.Equal(t, ModeFallbackGovernance, live.Mode)
	assert.Contains(t, live.Darwin.Scores, "EURUSD", "last good scores stay readable")
}

func TestController_RecoversAfterSourceReturns(t *testing.T) {
	source := &memorySource{err: errors.New("ledger unavailable")}
	controller := controllerFixture(t, source)
	require.Error(t, controller.RebalanceFromSource())

	source.err = nil
	source.trades = fixtureTrades("EURUSD", 30)
	require.NoError(t, controller.RebalanceFromSource())
	assert.Equal(t, ModeActive, controller.Mode())
}

func TestController_OnTradeCloseFiresAtEpochBoundary(t *testing.T) {
	source := &memorySource{trades: fixtureTrades("EURUSD", 30)}
	config := darwin.NewConfigStore(logger.Nop())
	cfg := config.Get()
	cfg.RebalanceEpoch = 3
	config.Set(cfg)
	store := darwin.NewStore(config, logger.Nop())
	controller := NewController(store, config, source, &StubSource{}, logger.Nop())

	controller.OnTradeClose()
	controller.OnTradeClose()
	assert.Equal(t, 0, source.pulls, "no rebalance inside the epoch")

	controller.OnTradeClose()
	assert.Equal(t, 1, source.pulls, "rebalance fires on the epoch boundary")
	assert.Equal(t, ModeActive, controller.Mode())

	controller.OnTradeClose()
	controller.OnTradeClose()
	assert.Equal(t, 1, source.pulls)
	controller.OnTradeClose()
	assert.Equal(t, 2, source.pulls)
}

func TestController_ResetClearsEverything(t *testing.T) {
	source := &memorySource{trades: fixtureTrades("EURUSD", 30)}
	controller := controllerFixture(t, source)
	require.NoError(t, controller.RebalanceFromSource())

	controller.Reset()

	live := controller.Live()
	assert.Equal(t, ModeActive, live.Mode)
	assert.Empty(t, live.Darwin.Scores)
	assert.Empty(t, live.Agents)
	assert.Zero(t, live.TradeCounter)
}
