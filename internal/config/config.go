// Package config loads and validates the tunable constants that drive the
// mule-detection pipeline: the cycle length band, the smurfing window, the
// shell-chain hop/degree bounds, the velocity and merchant thresholds, the
// scoring deltas, and the centrality cutoff fraction.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the full set of tunables described in spec section 6.
type Config struct {
	Cycle      CycleConfig      `mapstructure:"cycle"`
	Smurfing   SmurfingConfig   `mapstructure:"smurfing"`
	Shell      ShellConfig      `mapstructure:"shell"`
	Velocity   VelocityConfig   `mapstructure:"velocity"`
	Merchant   MerchantConfig   `mapstructure:"merchant"`
	Scoring    ScoringConfig    `mapstructure:"scoring"`
	Centrality CentralityConfig `mapstructure:"centrality"`
	RingIDPrefix string         `mapstructure:"ring_id_prefix"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// CycleConfig bounds simple-cycle length.
type CycleConfig struct {
	MinLength int `mapstructure:"min_length"`
	MaxLength int `mapstructure:"max_length"`
}

// SmurfingConfig bounds the temporal fan-in/fan-out sliding window.
type SmurfingConfig struct {
	Window           time.Duration `mapstructure:"window"`
	MinDistinctPartners int        `mapstructure:"min_distinct_partners"`
}

// ShellConfig bounds layered-shell chain enumeration.
type ShellConfig struct {
	MinHops           int `mapstructure:"min_hops"`
	MaxHops           int `mapstructure:"max_hops"`
	MaxInteriorDegree int `mapstructure:"max_interior_degree"`
}

// VelocityConfig bounds the velocity-burst auxiliary signal.
type VelocityConfig struct {
	Window          time.Duration `mapstructure:"window"`
	MinTransactions int           `mapstructure:"min_transactions"`
}

// MerchantConfig bounds the merchant-legitimacy auxiliary signal.
type MerchantConfig struct {
	MinLifetime        time.Duration `mapstructure:"min_lifetime"`
	MaxAmountCV         float64      `mapstructure:"max_amount_cv"`
	MaxInterArrivalCV   float64      `mapstructure:"max_inter_arrival_cv"`
}

// ScoringConfig holds the pattern deltas and the clamp bounds.
type ScoringConfig struct {
	CycleDelta         float64 `mapstructure:"cycle_delta"`
	SmurfingDelta      float64 `mapstructure:"smurfing_delta"`
	LayeredShellDelta  float64 `mapstructure:"layered_shell_delta"`
	VelocityDelta      float64 `mapstructure:"velocity_delta"`
	CentralityDelta    float64 `mapstructure:"centrality_delta"`
	MerchantDelta      float64 `mapstructure:"merchant_delta"`
	ClampMin           float64 `mapstructure:"clamp_min"`
	ClampMax           float64 `mapstructure:"clamp_max"`
}

// CentralityConfig bounds the degree-centrality auxiliary signal.
type CentralityConfig struct {
	TopFraction float64 `mapstructure:"top_fraction"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HybridDelta returns the pattern delta for a hybrid ring: the max of the
// three component deltas, per spec section 4.6.
func (s ScoringConfig) HybridDelta() float64 {
	delta := s.CycleDelta
	if s.SmurfingDelta > delta {
		delta = s.SmurfingDelta
	}
	if s.LayeredShellDelta > delta {
		delta = s.LayeredShellDelta
	}
	return delta
}

// Load reads configuration from environment variables and optional config
// files, applying the spec's default tunables first.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/mule-detection-engine")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("MULE_DETECTION")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns the spec's baked-in tunables without touching viper or
// the environment — used by tests and by any host that wants the spec's
// reference configuration verbatim.
func Default() Config {
	return Config{
		Cycle:    CycleConfig{MinLength: 3, MaxLength: 5},
		Smurfing: SmurfingConfig{Window: 72 * time.Hour, MinDistinctPartners: 10},
		Shell:    ShellConfig{MinHops: 3, MaxHops: 5, MaxInteriorDegree: 3},
		Velocity: VelocityConfig{Window: 24 * time.Hour, MinTransactions: 10},
		Merchant: MerchantConfig{
			MinLifetime:       30 * 24 * time.Hour,
			MaxAmountCV:       0.3,
			MaxInterArrivalCV: 0.5,
		},
		Scoring: ScoringConfig{
			CycleDelta:        40.0,
			SmurfingDelta:     30.0,
			LayeredShellDelta: 25.0,
			VelocityDelta:     20.0,
			CentralityDelta:   10.0,
			MerchantDelta:     -25.0,
			ClampMin:          0.0,
			ClampMax:          100.0,
		},
		Centrality:   CentralityConfig{TopFraction: 0.05},
		RingIDPrefix: "RING",
		Logging:      LoggingConfig{Level: "info", Format: "json"},
	}
}

func setDefaults() {
	d := Default()

	viper.SetDefault("cycle.min_length", d.Cycle.MinLength)
	viper.SetDefault("cycle.max_length", d.Cycle.MaxLength)

	viper.SetDefault("smurfing.window", d.Smurfing.Window.String())
	viper.SetDefault("smurfing.min_distinct_partners", d.Smurfing.MinDistinctPartners)

	viper.SetDefault("shell.min_hops", d.Shell.MinHops)
	viper.SetDefault("shell.max_hops", d.Shell.MaxHops)
	viper.SetDefault("shell.max_interior_degree", d.Shell.MaxInteriorDegree)

	viper.SetDefault("velocity.window", d.Velocity.Window.String())
	viper.SetDefault("velocity.min_transactions", d.Velocity.MinTransactions)

	viper.SetDefault("merchant.min_lifetime", d.Merchant.MinLifetime.String())
	viper.SetDefault("merchant.max_amount_cv", d.Merchant.MaxAmountCV)
	viper.SetDefault("merchant.max_inter_arrival_cv", d.Merchant.MaxInterArrivalCV)

	viper.SetDefault("scoring.cycle_delta", d.Scoring.CycleDelta)
	viper.SetDefault("scoring.smurfing_delta", d.Scoring.SmurfingDelta)
	viper.SetDefault("scoring.layered_shell_delta", d.Scoring.LayeredShellDelta)
	viper.SetDefault("scoring.velocity_delta", d.Scoring.VelocityDelta)
	viper.SetDefault("scoring.centrality_delta", d.Scoring.CentralityDelta)
	viper.SetDefault("scoring.merchant_delta", d.Scoring.MerchantDelta)
	viper.SetDefault("scoring.clamp_min", d.Scoring.ClampMin)
	viper.SetDefault("scoring.clamp_max", d.Scoring.ClampMax)

	viper.SetDefault("centrality.top_fraction", d.Centrality.TopFraction)

	viper.SetDefault("ring_id_prefix", d.RingIDPrefix)

	viper.SetDefault("logging.level", d.Logging.Level)
	viper.SetDefault("logging.format", d.Logging.Format)
}

func validateConfig(cfg *Config) error {
	if cfg.Cycle.MinLength <= 0 || cfg.Cycle.MaxLength < cfg.Cycle.MinLength {
		return fmt.Errorf("invalid cycle length band [%d, %d]", cfg.Cycle.MinLength, cfg.Cycle.MaxLength)
	}

	if cfg.Smurfing.Window <= 0 {
		return fmt.Errorf("smurfing window must be positive")
	}
	if cfg.Smurfing.MinDistinctPartners <= 0 {
		return fmt.Errorf("smurfing min_distinct_partners must be positive")
	}

	if cfg.Shell.MinHops <= 0 || cfg.Shell.MaxHops < cfg.Shell.MinHops {
		return fmt.Errorf("invalid shell hop band [%d, %d]", cfg.Shell.MinHops, cfg.Shell.MaxHops)
	}
	if cfg.Shell.MaxInteriorDegree <= 0 {
		return fmt.Errorf("shell max_interior_degree must be positive")
	}

	if cfg.Velocity.Window <= 0 {
		return fmt.Errorf("velocity window must be positive")
	}
	if cfg.Velocity.MinTransactions <= 0 {
		return fmt.Errorf("velocity min_transactions must be positive")
	}

	if cfg.Merchant.MinLifetime <= 0 {
		return fmt.Errorf("merchant min_lifetime must be positive")
	}
	if cfg.Merchant.MaxAmountCV < 0 || cfg.Merchant.MaxInterArrivalCV < 0 {
		return fmt.Errorf("merchant CV thresholds must be non-negative")
	}

	if cfg.Scoring.ClampMin < 0 || cfg.Scoring.ClampMax <= cfg.Scoring.ClampMin {
		return fmt.Errorf("invalid score clamp band [%.1f, %.1f]", cfg.Scoring.ClampMin, cfg.Scoring.ClampMax)
	}

	if cfg.Centrality.TopFraction <= 0 || cfg.Centrality.TopFraction > 1 {
		return fmt.Errorf("centrality top_fraction must be in (0, 1]")
	}

	if cfg.RingIDPrefix == "" {
		return fmt.Errorf("ring_id_prefix is required")
	}

	return nil
}
