package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/produccion-api/pkg/config"
)

func TestParseAccounts(t *testing.T) {
	accounts, err := config.ParseAccounts(" admin:admin:$2a$10$abc , victor:victor:$2a$10$def ")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, config.Account{Login: "admin", Role: "admin", PasswordHash: "$2a$10$abc"}, accounts[0])
	assert.Equal(t, "victor", accounts[1].Login)

	empty, err := config.ParseAccounts("")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = config.ParseAccounts("admin:admin")
	assert.Error(t, err)
	_, err = config.ParseAccounts("admin::hash")
	assert.Error(t, err)
}

func TestLoad_ValoresPorDefectoYEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("STORE_TIMEOUT_MS", "250")
	t.Setenv("TRACKER_MAX_ATTEMPTS", "4")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("DB_MIGRATE", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, 250*time.Millisecond, cfg.Store.Timeout)
	assert.Equal(t, 4, cfg.Tracker.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, cfg.Tracker.Backoff)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, "stock.adjusted", cfg.Kafka.Topic)
	assert.False(t, cfg.DB.Migrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "produccion", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/produccion?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
