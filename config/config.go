// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/campuspay/billing-engine/billing"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"billing-engine"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Path string `envconfig:"DB_PATH" default:"billing.db"`
	}

	Server struct {
		ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
		IdleTimeout  time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	}

	// Registrar policy figures for newly created accounts. Defaults are
	// the canonical current-term values.
	Billing struct {
		OpeningBalance    string `envconfig:"OPENING_BALANCE" default:"23813"`
		PrelimRequirement string `envconfig:"PRELIM_REQUIREMENT" default:"6830"`
		MidtermMultiplier string `envconfig:"MIDTERM_MULTIPLIER" default:"0.6666"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}

// Policy builds the billing policy from the configured figures.
func (c *Config) Policy() (billing.Policy, error) {
	policy := billing.DefaultPolicy()

	opening, err := decimal.NewFromString(c.Billing.OpeningBalance)
	if err != nil {
		return policy, fmt.Errorf("invalid OPENING_BALANCE %q: %w", c.Billing.OpeningBalance, err)
	}
	prelim, err := decimal.NewFromString(c.Billing.PrelimRequirement)
	if err != nil {
		return policy, fmt.Errorf("invalid PRELIM_REQUIREMENT %q: %w", c.Billing.PrelimRequirement, err)
	}
	mult, err := decimal.NewFromString(c.Billing.MidtermMultiplier)
	if err != nil {
		return policy, fmt.Errorf("invalid MIDTERM_MULTIPLIER %q: %w", c.Billing.MidtermMultiplier, err)
	}

	policy.OpeningBalance = billing.Amount{Value: opening}
	policy.PrelimRequirement = billing.Amount{Value: prelim}
	policy.MidtermMultiplier = mult
	return policy, nil
}
