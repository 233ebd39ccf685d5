package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/GTDGit/supplyconnect/internal/config"
)

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(&appconfig.DatabaseConfig{
		Host: "db", Port: "5432", User: "supply", Password: "p@ss word", Name: "supplyconnect", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://supply:p%40ss+word@db:5432/supplyconnect?sslmode=disable", dsn)
}

func TestBackoff_Capped(t *testing.T) {
	assert.Equal(t, 500*time.Millisecond, backoff(1))
	assert.Equal(t, time.Second, backoff(2))
	assert.Equal(t, 4*time.Second, backoff(4))
	assert.Equal(t, 5*time.Second, backoff(5))
}

func TestConnect_NilConfig(t *testing.T) {
	_, err := Connect(context.Background(), nil)
	require.Error(t, err)
}

func TestConnect_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Connect(ctx, &appconfig.DatabaseConfig{Host: "127.0.0.1", Port: "1", User: "x", Name: "x", SSLMode: "disable"})
	require.Error(t, err)
}
