// Command sekumarket boots the permissioned security-token exchange: it
// wires Ledger, Registry, OrderBook, and Incentive into a Venue, starts the
// admin/ops HTTP surface, and serves Prometheus metrics. Gin has no
// built-in graceful shutdown, so on signal this just logs and exits.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/RedRedRyan/NairobiBlockExchange/api"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/config"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/obslog"
	"github.com/RedRedRyan/NairobiBlockExchange/internal/venue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := obslog.NewLogger(cfg.Dev)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	owner := uuid.New()
	v := venue.New(owner, logger)
	logger.Info("venue deployed", zap.String("owner", owner.String()), zap.String("usdt_asset", v.USDT.String()))

	if err := v.Book.SetTradingFeeBps(int64(cfg.Fee.TradingFeeBps)); err != nil {
		logger.Fatal("invalid trading fee configuration", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		metrics := obslog.NewMetrics(reg)
		metrics.Observe(v.Bus.Subscribe(1024))
	}

	server := api.NewServer(v, logger, reg)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("admin/ops HTTP surface listening", zap.String("addr", addr))
		if err := server.Run(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Fatal("http server failed", zap.Error(err))
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}
}
