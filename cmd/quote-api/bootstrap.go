package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BearBump/QuoteDesk/config"
	"github.com/BearBump/QuoteDesk/internal/broker/kafka"
	"github.com/BearBump/QuoteDesk/internal/cache/rediscache"
	"github.com/BearBump/QuoteDesk/internal/integrations/pricing"
	"github.com/BearBump/QuoteDesk/internal/integrations/pricing/benchhttp"
	"github.com/BearBump/QuoteDesk/internal/integrations/pricing/fake"
	"github.com/BearBump/QuoteDesk/internal/services/evaluation"
	"github.com/BearBump/QuoteDesk/internal/storage/pgmarket"
)

type quoteAPIApp struct {
	ctx      context.Context
	cancel   context.CancelFunc
	opts     quoteAPIOpts
	svc      *evaluation.Service
	consumer *kafka.Consumer
	producer *kafka.Producer
	closeDB  func()
}

func mustBootstrapQuoteAPI() *quoteAPIApp {
	cfgPath := os.Getenv("configPath")
	if cfgPath == "" {
		panic("configPath env var is required")
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	httpAddr := cfg.QuoteDesk.HTTPAddr
	if httpAddr == "" {
		httpAddr = ":8080"
	}
	consumerGroup := cfg.QuoteDesk.KafkaConsumerGroup
	if consumerGroup == "" {
		consumerGroup = "quote-api"
	}
	submittedTopic := cfg.Kafka.QuoteSubmittedTopicName
	if submittedTopic == "" {
		submittedTopic = "quote.submitted"
	}
	decidedTopic := cfg.Kafka.QuoteDecidedTopicName
	if decidedTopic == "" {
		decidedTopic = "quote.decided"
	}
	cacheTTL := time.Duration(cfg.QuoteDesk.PriceCacheTTLSeconds) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Minute
	}
	rateLimit := int64(cfg.QuoteDesk.PricingRateLimitPerMinute)
	if rateLimit <= 0 {
		rateLimit = 120
	}

	sslMode := cfg.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
	st := mustOpenPostgresWithRetry(connString, 60*time.Second)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	rc := rediscache.New(redisAddr)
	rl := rediscache.NewRateLimiter(redisAddr)

	var pc pricing.Client
	if cfg.QuoteDesk.PricingMode == "bench" {
		pc = benchhttp.New(cfg.QuoteDesk.PricingBaseURL, cfg.QuoteDesk.PricingAPIKey)
	} else {
		pc = fake.New()
	}

	brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
	producer := kafka.NewProducer(brokers)
	consumer := kafka.NewConsumer(brokers, submittedTopic, consumerGroup)

	svc := evaluation.New(st, pc).
		WithCache(rc, cacheTTL).
		WithRateLimiter(rl, rateLimit).
		WithProducer(producer, decidedTopic)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	return &quoteAPIApp{
		ctx:    ctx,
		cancel: cancel,
		opts: quoteAPIOpts{
			httpAddr:      httpAddr,
			topic:         submittedTopic,
			consumerGroup: consumerGroup,
		},
		svc:      svc,
		consumer: consumer,
		producer: producer,
		closeDB:  st.Close,
	}
}

func mustOpenPostgresWithRetry(connString string, wait time.Duration) *pgmarket.Storage {
	deadline := time.Now().Add(wait)
	var lastErr error
	for time.Now().Before(deadline) {
		st, err := pgmarket.New(connString)
		if err == nil {
			return st
		}
		lastErr = err
		time.Sleep(1 * time.Second)
	}
	panic(fmt.Sprintf("postgres is not ready after %s: %v", wait, lastErr))
}

func (a *quoteAPIApp) Close() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.consumer != nil {
		_ = a.consumer.Close()
	}
	if a.producer != nil {
		_ = a.producer.Close()
	}
	if a.closeDB != nil {
		a.closeDB()
	}
}

func (a *quoteAPIApp) Run() error {
	return runQuoteAPI(a.ctx, a.opts, a.svc, a.consumer)
}
