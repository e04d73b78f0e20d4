package darwin

import (
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// WindowWeights blend the three rolling windows into one expectancy figure.
// Documented to sum to 1.0 but not enforced; see ConfigStore.warnWeights.
type WindowWeights struct {
	Short float64 `yaml:"short" json:"short"`
	Mid   float64 `yaml:"mid" json:"mid"`
	Long  float64 `yaml:"long" json:"long"`
}

// ComponentWeights blend the five sub-scores into the overall score
type ComponentWeights struct {
	Expectancy float64 `yaml:"expectancy" json:"expectancy"`
	Stability  float64 `yaml:"stability" json:"stability"`
	Coalition  float64 `yaml:"coalition" json:"coalition"`
	Indicator  float64 `yaml:"indicator" json:"indicator"`
	Session    float64 `yaml:"session" json:"session"`
}

// TierThresholds are the minimum overall scores per tier.
// Anything below GammaMin is EXTINCTION.
type TierThresholds struct {
	AlphaMin float64 `yaml:"alpha_min" json:"alpha_min"`
	BetaMin  float64 `yaml:"beta_min" json:"beta_min"`
	GammaMin float64 `yaml:"gamma_min" json:"gamma_min"`
}

// MultiplierRange is the capital multiplier band for one tier
type MultiplierRange struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// MultiplierRanges holds the per-tier capital bands. EXTINCTION is always 0.
type MultiplierRanges struct {
	Alpha MultiplierRange `yaml:"alpha" json:"alpha"`
	Beta  MultiplierRange `yaml:"beta" json:"beta"`
	Gamma MultiplierRange `yaml:"gamma" json:"gamma"`
}

// ForTier returns the configured band for a tier
func (m MultiplierRanges) ForTier(t Tier) MultiplierRange {
	switch t {
	case TierAlpha:
		return m.Alpha
	case TierBeta:
		return m.Beta
	case TierGamma:
		return m.Gamma
	default:
		return MultiplierRange{}
	}
}

// SafetyThresholds tune the safety governor's four checks
type SafetyThresholds struct {
	MinProfitFactor     float64 `yaml:"min_profit_factor" json:"min_profit_factor"`
	MaxDrawdownDensity  float64 `yaml:"max_drawdown_density" json:"max_drawdown_density"`
	MinCoalitionSynergy float64 `yaml:"min_coalition_synergy" json:"min_coalition_synergy"`
	MinPairedTrades     int     `yaml:"min_paired_trades" json:"min_paired_trades"`
}

// AgentThresholds tune agent authority classification
type AgentThresholds struct {
	MinTrades        int     `yaml:"min_trades" json:"min_trades"`                 // Below this an agent is DISABLED outright
	MinAuthority     float64 `yaml:"min_authority" json:"min_authority"`           // Below this score: DISABLED
	ConfirmationOnly float64 `yaml:"confirmation_only" json:"confirmation_only"`   // Below this score: CONFIRMATION_ONLY
}

// Config is the full engine tuning surface. Plain data, safe to copy.
type Config struct {
	Enabled bool `yaml:"enabled" json:"enabled"`

	WindowShort int `yaml:"window_short" json:"window_short"`
	WindowMid   int `yaml:"window_mid" json:"window_mid"`
	WindowLong  int `yaml:"window_long" json:"window_long"`

	WindowWeights    WindowWeights    `yaml:"window_weights" json:"window_weights"`
	ComponentWeights ComponentWeights `yaml:"component_weights" json:"component_weights"`
	Tiers            TierThresholds   `yaml:"tiers" json:"tiers"`
	Multipliers      MultiplierRanges `yaml:"multipliers" json:"multipliers"`
	Safety           SafetyThresholds `yaml:"safety" json:"safety"`
	Agents           AgentThresholds  `yaml:"agents" json:"agents"`

	MinSessionWeight float64 `yaml:"min_session_weight" json:"min_session_weight"`
	RebalanceEpoch   int     `yaml:"rebalance_epoch" json:"rebalance_epoch"` // Trades between automatic rebalances
	HistoryCap       int     `yaml:"history_cap" json:"history_cap"`         // Ring capacity for transitions and triggers
}

// DefaultConfig returns the engine's stock tuning
func DefaultConfig() Config {
	return Config{
		Enabled:     true,
		WindowShort: 20,
		WindowMid:   50,
		WindowLong:  100,
		WindowWeights: WindowWeights{
			Short: 0.5,
			Mid:   0.3,
			Long:  0.2,
		},
		ComponentWeights: ComponentWeights{
			Expectancy: 0.35,
			Stability:  0.20,
			Coalition:  0.15,
			Indicator:  0.15,
			Session:    0.15,
		},
		Tiers: TierThresholds{
			AlphaMin: 75,
			BetaMin:  55,
			GammaMin: 35,
		},
		Multipliers: MultiplierRanges{
			Alpha: MultiplierRange{Min: 1.2, Max: 1.5},
			Beta:  MultiplierRange{Min: 0.8, Max: 1.2},
			Gamma: MultiplierRange{Min: 0.3, Max: 0.8},
		},
		Safety: SafetyThresholds{
			MinProfitFactor:     1.1,
			MaxDrawdownDensity:  0.6,
			MinCoalitionSynergy: 30,
			MinPairedTrades:     10,
		},
		Agents: AgentThresholds{
			MinTrades:        5,
			MinAuthority:     40,
			ConfirmationOnly: 60,
		},
		MinSessionWeight: 0.3,
		RebalanceEpoch:   20,
		HistoryCap:       200,
	}
}

// ConfigStore owns the live engine configuration. Injected into the
// controller rather than read as a package-level variable so tests can
// run independent instances side by side.
type ConfigStore struct {
	mu       sync.RWMutex
	current  Config
	defaults Config
	log      zerolog.Logger
}

// NewConfigStore creates a config store seeded with defaults
func NewConfigStore(log zerolog.Logger) *ConfigStore {
	defaults := DefaultConfig()
	return &ConfigStore{
		current:  defaults,
		defaults: defaults,
		log:      log.With().Str("module", "darwin_config").Logger(),
	}
}

// Get returns a copy of the current configuration
func (cs *ConfigStore) Get() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.current
}

// Set replaces the current configuration
func (cs *ConfigStore) Set(cfg Config) {
	cs.warnWeights(cfg)
	cs.mu.Lock()
	cs.current = cfg
	cs.mu.Unlock()
	cs.log.Info().Msg("Engine configuration updated")
}

// Reset restores the stock tuning
func (cs *ConfigStore) Reset() {
	cs.mu.Lock()
	cs.current = cs.defaults
	cs.mu.Unlock()
	cs.log.Info().Msg("Engine configuration reset to defaults")
}

// LoadOverrides applies a partial YAML override file on top of the current
// configuration. Missing file is not an error - the defaults stand.
func (cs *ConfigStore) LoadOverrides(path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cs.log.Debug().Str("path", path).Msg("No engine override file, using defaults")
			return nil
		}
		return fmt.Errorf("failed to read engine overrides: %w", err)
	}

	cfg := cs.Get()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse engine overrides: %w", err)
	}

	cs.Set(cfg)
	cs.log.Info().Str("path", path).Msg("Engine overrides loaded")
	return nil
}

// warnWeights logs when component weights drift away from summing to 1.0.
// Un-normalized weights are supported (scores simply scale), so this is a
// warning rather than an error.
func (cs *ConfigStore) warnWeights(cfg Config) {
	sum := cfg.ComponentWeights.Expectancy +
		cfg.ComponentWeights.Stability +
		cfg.ComponentWeights.Coalition +
		cfg.ComponentWeights.Indicator +
		cfg.ComponentWeights.Session
	if math.Abs(sum-1.0) > 0.001 {
		cs.log.Warn().
			Float64("sum", sum).
			Msg("Component weights do not sum to 1.0, scores will scale accordingly")
	}
}
