package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigIsSane(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "0.0.0.0", cfg.HTTP.Host)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 25, cfg.Fee.TradingFeeBps)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Dev)
}

func TestLoadWithoutConfigFileReturnsDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
