package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("ADMIN_QR_TOKEN", "")
	t.Setenv("NOTIFIER_NAME", "")
	t.Setenv("SERVICE_NAME", "")

	cfg := Load()
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.LowStockThreshold)
	assert.Empty(t, cfg.AdminQRToken, "no baked-in admin token")
	assert.Equal(t, "htx-notifier", cfg.NotifierName)
	assert.Equal(t, "htx-sale-api", cfg.ServiceName)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("NOTIFIER_WORKERS", "x")
	t.Setenv("ADMIN_QR_TOKEN", "qr-secret")
	t.Setenv("NOTIFIER_NAME", "notifier-eu")

	cfg := Load()
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.NotifierWorkers, "bad ints fall back")
	assert.Equal(t, "qr-secret", cfg.AdminQRToken)
	assert.Equal(t, "notifier-eu", cfg.NotifierName)
}
