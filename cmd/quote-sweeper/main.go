package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/BearBump/QuoteDesk/config"
)

func main() {
	cfg, err := config.LoadConfig(os.Getenv("configPath"))
	if err != nil {
		panic(fmt.Sprintf("ошибка парсинга конфига, %v", err))
	}

	s, closeFn, err := buildSweeper(cfg, defaultSweeperFactories())
	if err != nil {
		panic(err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go func() {
		err := runSweeperHTTPServer(ctx, sweeperHTTPOpts{
			httpAddr: cfg.QuoteDesk.SweeperHTTPAddr,
			sweeper:  s,
			cfg:      cfg,
		})
		if err != nil && err != http.ErrServerClosed {
			slog.Error("sweeper ops server", "error", err.Error())
		}
	}()

	if err := s.Run(ctx); err != nil && err != context.Canceled {
		panic(err)
	}
}
