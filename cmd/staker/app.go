package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui"
	"github.com/rovshanmuradov/afsui-staker/internal/blockchain/sui/transaction"
	"github.com/rovshanmuradov/afsui-staker/internal/config"
	"github.com/rovshanmuradov/afsui-staker/internal/events"
	"github.com/rovshanmuradov/afsui-staker/internal/history"
	"github.com/rovshanmuradov/afsui-staker/internal/logger"
	"github.com/rovshanmuradov/afsui-staker/internal/price"
	"github.com/rovshanmuradov/afsui-staker/internal/protocol/aftermath"
	"github.com/rovshanmuradov/afsui-staker/internal/staking"
	"github.com/rovshanmuradov/afsui-staker/internal/wallet"
)

const (
	logBufferSize   = 500
	shutdownTimeout = 5 * time.Second
)

// app owns every long-lived component and closes them in reverse order.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	logs    *logger.LogBuffer
	bus     *events.Bus
	journal *history.Journal
	summary history.Format // empty disables the exit summary
	metrics *http.Server
	wallet  *wallet.Wallet
	service *staking.Service
	feed    *price.Feed
	prices  *price.Monitor
}

func newApp(configPath string, interactive bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a := &app{cfg: cfg}

	logCfg := logger.DefaultConfig()
	logCfg.LogFile = cfg.LogFile
	logCfg.Debug = cfg.DebugLogging
	if interactive {
		a.logs = logger.NewLogBuffer(logBufferSize)
		logCfg.Console = false
		logCfg.Buffer = a.logs
	}
	if a.logger, err = logger.New(logCfg); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	if cfg.KeystorePath != "" {
		wallets, err := wallet.LoadWallets(cfg.KeystorePath)
		if err != nil {
			return nil, err
		}
		if a.wallet, err = wallet.SelectWallet(wallets, cfg.AccountAddress); err != nil {
			return nil, err
		}
	}

	chain, err := sui.NewClient(cfg.RPCList, cfg.RequestTimeoutDuration(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sui client: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	executor := transaction.NewExecutor(a.wallet, chain, a.logger,
		transaction.Config{FallbackTimeout: cfg.FallbackTimeoutDuration()},
		transaction.WithMetrics(transaction.NewMetrics(registry)))

	a.bus = events.NewBus(a.logger, events.DefaultBufferSize)
	a.journal = history.NewJournal(history.DefaultMaxRecords, a.logger)
	a.journal.Subscribe(a.bus)

	a.service = staking.NewService(
		aftermath.NewClient(cfg.ProtocolAPIURL, cfg.RequestTimeoutDuration(), a.logger),
		chain,
		executor,
		a.logger,
		staking.Config{
			ValidatorAddress: cfg.ValidatorAddress,
			RefreshInterval:  cfg.InfoRefreshInterval(),
		},
		staking.WithPublisher(a.bus),
	)

	a.feed = price.NewFeed(cfg.PriceAPIURL, cfg.RequestTimeoutDuration(), a.logger)
	a.prices = price.NewMonitor(a.feed, cfg.PriceRefreshInterval(), a.logger, a.bus)

	if cfg.MetricsAddr != "" {
		a.serveMetrics(registry)
	}

	a.logger.Info("Staker initialized",
		zap.String("network", cfg.Network),
		zap.Strings("rpc", cfg.RPCList),
		zap.String("validator", cfg.ValidatorAddress),
		zap.Bool("wallet", a.wallet != nil))
	return a, nil
}

func (a *app) serveMetrics(registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	a.metrics = &http.Server{
		Addr:              a.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()
	a.logger.Info("Serving metrics", zap.String("addr", a.cfg.MetricsAddr))
}

// connect attaches the keystore account to the staking service.
func (a *app) connect(ctx context.Context) error {
	if a.wallet == nil {
		return a.cfg.RequireKeystore()
	}
	return a.service.Connect(ctx, a.wallet.Account())
}

// printSummary writes the stakes of this run once the bus has drained.
func (a *app) printSummary() {
	if a.summary == "" || a.journal.Statistics().Total == 0 {
		return
	}
	fmt.Println()
	err := history.Export(os.Stdout, a.journal.Recent(0), history.ExportOptions{Format: a.summary})
	if err != nil {
		a.logger.Warn("Failed to print session summary", zap.Error(err))
	}
}

func (a *app) Close() {
	a.prices.Stop()
	a.service.Close()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.bus.Shutdown(ctx); err != nil {
		a.logger.Warn("Event bus shutdown incomplete", zap.Error(err))
	}
	a.printSummary()
	if a.metrics != nil {
		_ = a.metrics.Shutdown(ctx)
	}
	_ = logger.Sync(a.logger)
}
