package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("JWT_TTL_HOURS", "2")

	cfg := Load()

	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "50.00", cfg.Store.FreeShippingThreshold)
	assert.Equal(t, 10, cfg.Store.LowStockThreshold)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "Not/AZone"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "UTC"
	assert.Equal(t, "UTC", cfg.Location().String())
}

func TestGetEnv(t *testing.T) {
	key := "TEST_ENV_VAR"
	os.Setenv(key, "value")
	defer os.Unsetenv(key)

	assert.Equal(t, "value", getEnv(key, "default"))
	assert.Equal(t, "default", getEnv("NON_EXISTENT", "default"))
}

func TestGetEnvBool(t *testing.T) {
	const key = "TEST_BOOL_VAR"
	for _, tc := range []struct {
		val  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"false", true, false},
		{"1", false, true},
		{"invalid", true, true},
		{"", true, true},
	} {
		t.Setenv(key, tc.val)
		assert.Equal(t, tc.want, getEnvBool(key, tc.def), "value %q", tc.val)
	}
}

func TestGetEnvInt(t *testing.T) {
	const key = "TEST_INT_VAR"
	for val, want := range map[string]int{"123": 123, "-4": -4, "invalid": 10, "": 10} {
		t.Setenv(key, val)
		assert.Equal(t, want, getEnvInt(key, 10), "value %q", val)
	}
}

func TestGetEnvList(t *testing.T) {
	key := "TEST_LIST_VAR"
	def := []string{"a"}

	t.Setenv(key, " , ,")
	assert.Equal(t, def, getEnvList(key, def))

	t.Setenv(key, "x,y")
	assert.Equal(t, []string{"x", "y"}, getEnvList(key, def))
}
