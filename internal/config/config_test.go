package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STORE_DRIVER", "CANCEL_THRESHOLD", "CANCEL_WINDOW_HOURS", "KAFKA_BROKERS", "ACCESS_TOKEN_TTL"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, 3, cfg.CancelThreshold)
	assert.Equal(t, 24*time.Hour, cfg.CancelWindow)
	assert.Equal(t, 20*time.Minute, cfg.AccessTokenTTL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("CANCEL_THRESHOLD", "5")
	t.Setenv("CANCEL_WINDOW_HOURS", "12")
	t.Setenv("CODE_MAX_ATTEMPTS", "-1")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("LOG_PRETTY", "true")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("STAFF_EMAIL", "Canteen@College.edu")

	cfg := FromEnv()
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, 5, cfg.CancelThreshold)
	assert.Equal(t, 12*time.Hour, cfg.CancelWindow)
	assert.Equal(t, 10, cfg.CodeMaxAttempts)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.Equal(t, "canteen@college.edu", cfg.StaffEmail)
}
