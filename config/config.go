package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Redis     RedisConfig     `yaml:"redis"`
	QuoteDesk QuoteDeskConfig `yaml:"quotedesk"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

type KafkaConfig struct {
	Host                    string `yaml:"host"`
	Port                    int    `yaml:"port"`
	QuoteSubmittedTopicName string `yaml:"quote_submitted_topic_name"`
	QuoteDecidedTopicName   string `yaml:"quote_decided_topic_name"`
	QuoteExpiredTopicName   string `yaml:"quote_expired_topic_name"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type QuoteDeskConfig struct {
	HTTPAddr           string `yaml:"http_addr"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group"`

	PriceCacheTTLSeconds int `yaml:"price_cache_ttl_seconds"`

	// Pricing benchmark service. Mode "bench" uses the HTTP client; anything
	// else falls back to the deterministic local fake.
	PricingMode               string `yaml:"pricing_mode"`
	PricingBaseURL            string `yaml:"pricing_base_url"`
	PricingAPIKey             string `yaml:"pricing_api_key"`
	PricingRateLimitPerMinute int    `yaml:"pricing_rate_limit_per_minute"`

	SweeperPollIntervalSeconds int    `yaml:"sweeper_poll_interval_seconds"`
	SweeperBatchSize           int    `yaml:"sweeper_batch_size"`
	SweeperHTTPAddr            string `yaml:"sweeper_http_addr"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	return &config, nil
}
