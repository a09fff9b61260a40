package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/deyirman-ledger/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StorePostgres, cfg.Ledger.Store)
	assert.Equal(t, 5, cfg.Ledger.SequenceMaxRetries)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.False(t, cfg.DB.AutoMigrate)
	assert.Equal(t, int32(10), cfg.DB.MaxConns)
	assert.Equal(t, 30*time.Second, cfg.DB.StatementTimeout)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("LEDGER_STORE", "MEMORY")
	t.Setenv("LEDGER_SEQUENCE_MAX_RETRIES", "9")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("HTTP_PORT", "3000")
	t.Setenv("JWT_ISSUER", "identidad")
	t.Setenv("DB_STATEMENT_TIMEOUT", "5s")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Ledger.Store)
	assert.Equal(t, 9, cfg.Ledger.SequenceMaxRetries)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, 3000, cfg.HTTP.Port)
	assert.Equal(t, "identidad", cfg.JWT.Issuer)
	assert.Equal(t, 5*time.Second, cfg.DB.StatementTimeout)
}

func TestLoad_ValoresInvalidos_RetornaError(t *testing.T) {
	t.Run("store desconocido", func(t *testing.T) {
		t.Setenv("LEDGER_STORE", "sqlite")
		_, err := config.Load()
		assert.Error(t, err)
	})
	t.Run("reintentos en cero", func(t *testing.T) {
		t.Setenv("LEDGER_SEQUENCE_MAX_RETRIES", "0")
		_, err := config.Load()
		assert.Error(t, err)
	})
}

func TestDBConfig_ConnectionString(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "molino", Password: "p@ss:word", DBName: "deyirman", SSLMode: "disable"}
	assert.Equal(t, "postgres://molino:p%40ss%3Aword@db:5432/deyirman?sslmode=disable", db.ConnectionString())

	db.DatabaseURL = "postgresql://otro@host/db"
	assert.Equal(t, "postgresql://otro@host/db", db.ConnectionString())
}
