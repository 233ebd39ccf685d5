package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "supply")
	t.Setenv("DB_NAME", "supplyconnect")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, PredictorModeMock, cfg.Predictor.Mode)
	assert.Equal(t, 1500*time.Millisecond, cfg.Predictor.MockDelay)
	assert.Equal(t, 5, cfg.Predictor.TopN)
	assert.Equal(t, ".csv", cfg.Upload.Accept)
	assert.Equal(t, 6, cfg.Workbench.Slots)
	assert.Equal(t, []string{"localhost:3000", "127.0.0.1:3000"}, cfg.CORSAllowedHosts)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
}

func TestLoad_MissingDatabase(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("DB_USER", "")
	t.Setenv("DB_NAME", "")
	t.Setenv("JWT_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_HOST")
}

func TestLoad_InvalidPredictorMode(t *testing.T) {
	setRequired(t)
	t.Setenv("PREDICTOR_MODE", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREDICTOR_MODE")
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequired(t)
	t.Setenv("PREDICTOR_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PREDICTOR_TIMEOUT")
}

func TestLoad_CustomSlotsAndAccept(t *testing.T) {
	setRequired(t)
	t.Setenv("WORKBENCH_SLOTS", "8")
	t.Setenv("UPLOAD_ACCEPT", ".csv, text/csv")
	t.Setenv("PREDICTOR_MODE", "LOCAL")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workbench.Slots)
	assert.Equal(t, ".csv, text/csv", cfg.Upload.Accept)
	assert.Equal(t, PredictorModeLocal, cfg.Predictor.Mode)
}
