package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/billing-engine/billing"
	"github.com/campuspay/billing-engine/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "billing.db", cfg.DB.Path)
	assert.Equal(t, "23813", cfg.Billing.OpeningBalance)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("OPENING_BALANCE", "30000")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "30000", cfg.Billing.OpeningBalance)
}

func TestConfig_Policy(t *testing.T) {
	t.Setenv("OPENING_BALANCE", "25000")
	t.Setenv("MIDTERM_MULTIPLIER", "0.7")
	cfg, err := config.Load()
	require.NoError(t, err)

	policy, err := cfg.Policy()
	require.NoError(t, err)

	assert.True(t, policy.OpeningBalance.Equal(billing.NewAmount(25000)))
	assert.Equal(t, "0.7", policy.MidtermMultiplier.String())
	// Untouched figures keep their defaults.
	assert.True(t, policy.PrelimRequirement.Equal(billing.NewAmount(6830)))
}

func TestConfig_Policy_InvalidFigure(t *testing.T) {
	t.Setenv("OPENING_BALANCE", "lots")
	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = cfg.Policy()
	assert.Error(t, err)
}
