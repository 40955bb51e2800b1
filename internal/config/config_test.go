package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnv sets the given variables and unsets every other one read by fromEnv.
func setEnv(t *testing.T, env map[string]string) {
	t.Helper()
	for _, key := range []string{"APP_ENV", "PROD_ORIGINS", "HTTP_ADDR", "STORE_BACKEND", "DB_DSN", "DB_MAX_CONNS", "BCRYPT_COST", "MAX_PAGE_SIZE"} {
		v, ok := env[key]
		t.Setenv(key, v)
		if !ok {
			require.NoError(t, os.Unsetenv(key))
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("Memory Defaults", func(t *testing.T) {
		setEnv(t, map[string]string{"STORE_BACKEND": StoreMemory})

		cfg, err := fromEnv()
		require.NoError(t, err)
		assert.False(t, cfg.IsProduction)
		assert.Equal(t, ":8080", cfg.HTTPAddr)
		assert.Equal(t, StoreMemory, cfg.StoreBackend)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, 100, cfg.MaxPageSize)
	})

	t.Run("Postgres", func(t *testing.T) {
		setEnv(t, map[string]string{
			"STORE_BACKEND": StorePostgres,
			"DB_DSN":        "postgres://localhost/users",
			"DB_MAX_CONNS":  "8",
			"MAX_PAGE_SIZE": "50",
		})

		cfg, err := fromEnv()
		require.NoError(t, err)
		assert.Equal(t, "postgres://localhost/users", cfg.DBDSN)
		assert.Equal(t, 8, cfg.DBMaxConns)
		assert.Equal(t, 50, cfg.MaxPageSize)
	})

	invalid := map[string]map[string]string{
		"Missing DSN":          {"STORE_BACKEND": StorePostgres},
		"Unknown Backend":      {"STORE_BACKEND": "redis"},
		"Prod Without Origins": {"STORE_BACKEND": StoreMemory, "APP_ENV": PROD_STRING},
		"Bad Cost":             {"STORE_BACKEND": StoreMemory, "BCRYPT_COST": "high"},
		"Negative Page Size":   {"STORE_BACKEND": StoreMemory, "MAX_PAGE_SIZE": "-1"},
	}
	for name, env := range invalid {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			_, err := fromEnv()
			assert.Error(t, err)
		})
	}
}
