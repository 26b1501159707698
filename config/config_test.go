package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(p, []byte(`
database:
  host: "localhost"
  port: 5432
  username: "u"
  password: "p"
  name: "db"
kafka:
  host: "localhost"
  port: 9092
  quote_submitted_topic_name: "quote.submitted"
  quote_decided_topic_name: "quote.decided"
  quote_expired_topic_name: "quote.expired"
redis:
  host: "localhost"
  port: 6379
quotedesk:
  http_addr: ":8080"
  kafka_consumer_group: "quote-api"
  price_cache_ttl_seconds: 600
  pricing_mode: "bench"
  pricing_base_url: "http://localhost:9100"
  pricing_rate_limit_per_minute: 90
  sweeper_poll_interval_seconds: 30
  sweeper_batch_size: 200
`), 0o600))

	cfg, err := LoadConfig(p)
	require.NoError(t, err)
	require.Equal(t, "u", cfg.Database.Username)
	require.Equal(t, "quote.submitted", cfg.Kafka.QuoteSubmittedTopicName)
	require.Equal(t, "quote.decided", cfg.Kafka.QuoteDecidedTopicName)
	require.Equal(t, 6379, cfg.Redis.Port)
	require.Equal(t, ":8080", cfg.QuoteDesk.HTTPAddr)
	require.Equal(t, "bench", cfg.QuoteDesk.PricingMode)
	require.Equal(t, 90, cfg.QuoteDesk.PricingRateLimitPerMinute)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
