package main

import (
	"context"
	"fmt"
	"time"

	"github.com/BearBump/QuoteDesk/config"
	"github.com/BearBump/QuoteDesk/internal/broker/kafka"
	"github.com/BearBump/QuoteDesk/internal/services/sweeper"
	"github.com/BearBump/QuoteDesk/internal/storage/pgmarket"
)

type sweeperFactories struct {
	newStorage  func(cfg *config.Config) (repo sweeper.Repository, closeFn func(), err error)
	newProducer func(cfg *config.Config) sweeper.Producer
}

func defaultSweeperFactories() sweeperFactories {
	return sweeperFactories{
		newStorage: func(cfg *config.Config) (sweeper.Repository, func(), error) {
			sslMode := cfg.Database.SSLMode
			if sslMode == "" {
				sslMode = "disable"
			}
			connString := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
				cfg.Database.Username, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName, sslMode)
			st, err := pgmarket.New(connString)
			if err != nil {
				return nil, nil, err
			}
			return st, st.Close, nil
		},
		newProducer: func(cfg *config.Config) sweeper.Producer {
			brokers := []string{fmt.Sprintf("%s:%d", cfg.Kafka.Host, cfg.Kafka.Port)}
			return kafka.NewProducer(brokers)
		},
	}
}

func buildSweeper(cfg *config.Config, f sweeperFactories) (*sweeper.Sweeper, func(), error) {
	topic := cfg.Kafka.QuoteExpiredTopicName
	if topic == "" {
		topic = "quote.expired"
	}

	pollInterval := time.Duration(cfg.QuoteDesk.SweeperPollIntervalSeconds) * time.Second
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	batchSize := cfg.QuoteDesk.SweeperBatchSize
	if batchSize <= 0 {
		batchSize = 200
	}

	repo, closeFn, err := f.newStorage(cfg)
	if err != nil {
		return nil, nil, err
	}

	producer := f.newProducer(cfg)

	s := sweeper.New(repo, producer, topic).
		WithSettings(pollInterval, batchSize)
	return s, closeFn, nil
}

func RunQuoteSweeper(ctx context.Context, cfg *config.Config, f sweeperFactories) error {
	s, closeFn, err := buildSweeper(cfg, f)
	if err != nil {
		return err
	}
	if closeFn != nil {
		defer closeFn()
	}
	return s.Run(ctx)
}
