package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/BearBump/QuoteDesk/internal/api/quotes_api"
	"github.com/BearBump/QuoteDesk/internal/broker/messages"
	"github.com/BearBump/QuoteDesk/internal/services/evaluation"
)

type quoteAPIOpts struct {
	httpAddr string

	topic         string
	consumerGroup string

	onListen func(httpAddr string)
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler func(key, value []byte) error) error
}

func runQuoteAPI(ctx context.Context, opts quoteAPIOpts, svc *evaluation.Service, consumer kafkaConsumer) error {
	api := quotes_api.New(svc)

	httpLis, err := net.Listen("tcp", opts.httpAddr)
	if err != nil {
		return err
	}

	if opts.onListen != nil {
		opts.onListen(httpLis.Addr().String())
	}

	httpErr := make(chan error, 1)
	go func() {
		httpErr <- runHTTPServer(ctx, httpLis, api)
	}()

	go func() {
		slog.Info("kafka consumer started", "topic", opts.topic, "group", opts.consumerGroup)
		_ = consumer.Consume(ctx, func(_key, value []byte) error {
			var m messages.QuoteSubmitted
			if err := json.Unmarshal(value, &m); err != nil {
				return err
			}
			res, err := svc.Evaluate(ctx, m.QuoteID)
			if err != nil {
				return err
			}
			if res == nil {
				slog.Info("quote not actionable", "quote_id", m.QuoteID)
			}
			return nil
		})
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-httpErr:
		return err
	}
}

func runHTTPServer(ctx context.Context, lis net.Listener, api *quotes_api.QuotesAPI) error {
	srv := &http.Server{Handler: api.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("HTTP server listening", "addr", lis.Addr().String())
	return srv.Serve(lis)
}
