package postgres

import (
	"testing"
	"time"

	"order-webhook-service/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurePool(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:             "localhost",
		Port:             5432,
		User:             "testuser",
		Password:         "testpass",
		DBName:           "storefront",
		SSLMode:          "disable",
		MaxConns:         20,
		MinConns:         5,
		ConnMaxLifetime:  30 * time.Minute,
		StatementTimeout: 5 * time.Second,
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	require.NoError(t, err)
	configurePool(poolCfg, cfg)

	assert.Equal(t, int32(20), poolCfg.MaxConns)
	assert.Equal(t, int32(5), poolCfg.MinConns)
	assert.Equal(t, 30*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "storefront", poolCfg.ConnConfig.Database)
	assert.Equal(t, "order-webhook-service", poolCfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "5000", poolCfg.ConnConfig.RuntimeParams["statement_timeout"])
}

func TestConfigurePool_KeepsDriverDefaults(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", Port: 5432, User: "u", DBName: "d", SSLMode: "disable", MinConns: 500}

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	require.NoError(t, err)
	defaultMax := poolCfg.MaxConns
	configurePool(poolCfg, cfg)

	assert.Equal(t, defaultMax, poolCfg.MaxConns)
	assert.Zero(t, poolCfg.MinConns, "min above max is ignored")
	assert.NotContains(t, poolCfg.ConnConfig.RuntimeParams, "statement_timeout")
}

func TestMigrate_BadSource(t *testing.T) {
	err := Migrate("file:///definitely/not/here", "postgres://u:p@127.0.0.1:1/d?sslmode=disable", nopLogger())
	assert.Error(t, err)
}
