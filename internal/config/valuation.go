package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	RateConventionFraction = "fraction"
	RateConventionPercent  = "percent"
)

// ValuationConfig holds the tunables of the valuation engine.
// DefaultRate is always a fraction of 1.
type ValuationConfig struct {
	DefaultRate    float64 `mapstructure:"defaultRate"`
	RateConvention string  `mapstructure:"rateConvention"`
}

func DefaultValuationConfig() ValuationConfig {
	return ValuationConfig{
		DefaultRate:    0.20,
		RateConvention: RateConventionFraction,
	}
}

type ValuationConfigHolder struct {
	current atomic.Value // holds ValuationConfig
}

// NewStaticValuationConfigHolder wraps a fixed config, used by tests and tools.
func NewStaticValuationConfigHolder(cfg ValuationConfig) (*ValuationConfigHolder, error) {
	cfg = normalizeValuationConfig(cfg)
	if err := validateValuationConfig(cfg); err != nil {
		return nil, err
	}
	holder := &ValuationConfigHolder{}
	holder.current.Store(cfg)
	return holder, nil
}

func NewValuationConfigHolder(log *zap.Logger) (*ValuationConfigHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("valuation.config")

	v := viper.New()

	v.SetConfigName("valuation")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/docflow/config") // Volume-mounted config
	v.AddConfigPath("/etc/docflow")            // System config
	v.AddConfigPath(".")                       // Current directory (dev mode)

	v.SetEnvPrefix("DOCFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultValuationConfig()
	v.SetDefault("valuation.defaultRate", defaults.DefaultRate)
	v.SetDefault("valuation.rateConvention", defaults.RateConvention)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		fileLoaded = false
	}

	var cfg ValuationConfig
	if err := v.UnmarshalKey("valuation", &cfg); err != nil {
		return nil, err
	}
	cfg = normalizeValuationConfig(cfg)
	if err := validateValuationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ValuationConfigHolder{}
	holder.current.Store(cfg)

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated ValuationConfig
			if err := v.UnmarshalKey("valuation", &updated); err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			updated = normalizeValuationConfig(updated)
			if err := validateValuationConfig(updated); err != nil {
				log.Warn("invalid config ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("reloaded", zap.String("file", e.Name),
				zap.Float64("default_rate", updated.DefaultRate),
				zap.String("rate_convention", updated.RateConvention),
			)
		})
	}

	return holder, nil
}

func (h *ValuationConfigHolder) Get() ValuationConfig {
	return h.current.Load().(ValuationConfig)
}

func normalizeValuationConfig(cfg ValuationConfig) ValuationConfig {
	cfg.RateConvention = strings.ToLower(strings.TrimSpace(cfg.RateConvention))
	if cfg.RateConvention == "" {
		cfg.RateConvention = RateConventionFraction
	}
	return cfg
}

func validateValuationConfig(cfg ValuationConfig) error {
	if math.IsNaN(cfg.DefaultRate) || cfg.DefaultRate < 0 || cfg.DefaultRate > 1 {
		return fmt.Errorf("valuation.defaultRate must be a fraction in [0,1], got %v", cfg.DefaultRate)
	}
	switch cfg.RateConvention {
	case RateConventionFraction, RateConventionPercent:
	default:
		return errors.New("valuation.rateConvention must be fraction or percent")
	}
	return nil
}
