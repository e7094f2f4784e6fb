package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MHEWS_TELEGRAM_TOKEN", "test-token")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.Telegram.Token)
	assert.Equal(t, "both", cfg.Weather.DefaultMode)
	assert.Equal(t, 3.0, cfg.Weather.PrecipCorrectionDivisor)
	assert.Equal(t, 60, cfg.Scheduler.SeismicInterval)
	assert.Equal(t, 300, cfg.Scheduler.NowcastInterval)
	assert.Equal(t, 3600, cfg.Scheduler.WeatherInterval)
	assert.Equal(t, "0.0.0.0:8080", cfg.ServerAddress())
	assert.Contains(t, cfg.Sources.SeismicURL, "autogempa.json")
	assert.NotEmpty(t, cfg.Weather.DefaultKeywords)
	assert.NotEmpty(t, cfg.Weather.DefaultLocations)
}

func TestLoadFromFile(t *testing.T) {
	content := `
telegram:
  token: file-token
weather:
  default_mode: windy
  precip_correction_divisor: 4
scheduler:
  seismic_interval: 30
server:
  port: 9090
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.Telegram.Token)
	assert.Equal(t, "windy", cfg.Weather.DefaultMode)
	assert.Equal(t, 4.0, cfg.Weather.PrecipCorrectionDivisor)
	assert.Equal(t, 30, cfg.Scheduler.SeismicInterval)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("MHEWS_TELEGRAM_TOKEN", "")
	_, err := Load("")
	assert.ErrorContains(t, err, "telegram token")
}

func TestValidateRejectsBadMode(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "x"},
		Weather:  WeatherConfig{DefaultMode: "satellite", PrecipCorrectionDivisor: 3},
	}
	assert.ErrorContains(t, cfg.Validate(), "invalid weather mode")
}

func TestValidateRejectsBadDivisor(t *testing.T) {
	cfg := &Config{
		Telegram: TelegramConfig{Token: "x"},
		Weather:  WeatherConfig{DefaultMode: "both", PrecipCorrectionDivisor: 0},
	}
	assert.ErrorContains(t, cfg.Validate(), "divisor")
}
