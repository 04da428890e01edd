package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/pricestream/relay/internal/config"
	"github.com/pricestream/relay/internal/feed"
	"github.com/pricestream/relay/internal/hub"
	"github.com/pricestream/relay/internal/metrics"
	"github.com/pricestream/relay/internal/model"
	"github.com/pricestream/relay/internal/resolve"
	"github.com/pricestream/relay/internal/server"
	"github.com/pricestream/relay/internal/source"
	"github.com/pricestream/relay/internal/state"
	"github.com/pricestream/relay/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/relayd.example.yaml", "path to config file")
	flag.Parse()

	// Boot logger until the configured level is known
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	logger.Info("starting relayd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		"addr", cfg.Server.Addr,
		"symbols", cfg.Feed.Symbols,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Shared state
	m := metrics.New()
	table := state.NewTable()
	queue := state.NewQueue[model.PricePoint](cfg.Feed.BufferSize)

	// Downstream fan-out
	h := hub.New(logger, m)
	broadcaster := hub.NewBroadcaster(queue, h, logger)

	// Price resolution chain
	coingecko := source.NewCoinGecko(source.CoinGeckoConfig{
		BaseURL:   cfg.Resolver.Primary.URL,
		APIKey:    cfg.Resolver.Primary.APIKey,
		Timeout:   cfg.Resolver.Primary.Timeout,
		RateLimit: cfg.Resolver.Primary.RateLimit,
	}, logger)
	binance := source.NewBinanceREST(source.BinanceRESTConfig{
		BaseURL: cfg.Resolver.Secondary.URL,
		Timeout: cfg.Resolver.Secondary.Timeout,
	}, logger)
	resolver := resolve.New(table, resolve.NewCache(cfg.Resolver.CacheTTL), coingecko, binance,
		resolve.Config{
			DefaultSymbols: cfg.Resolver.DefaultSymbols,
			RetryWait:      cfg.Resolver.Primary.RetryWait,
		}, logger, m)

	// Upstream listeners
	feedSvc := feed.NewService(feed.Config{
		URL:           cfg.Feed.URL,
		Symbols:       cfg.Feed.Symbols,
		ReconnectBase: cfg.Feed.ReconnectBase,
		ReconnectMax:  cfg.Feed.ReconnectMax,
		PingTimeout:   cfg.Feed.PingTimeout,
		WriteTimeout:  cfg.Feed.WriteTimeout,
		BufferSize:    cfg.Feed.BufferSize,
	}, table, queue, logger, m)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MetricsPath:     cfg.Metrics.Path,
	}, server.Deps{
		Table:    table,
		Queue:    queue,
		Hub:      h,
		Resolver: resolver,
		Feed:     feedSvc,
		Metrics:  m.Handler(),
	}, logger)

	if err := feedSvc.Start(ctx); err != nil {
		logger.Error("failed to start feed service", "error", err)
		os.Exit(1)
	}
	if err := broadcaster.Start(); err != nil {
		logger.Error("failed to start broadcaster", "error", err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	logger.Info("relayd running", "addr", cfg.Server.Addr)

	// Wait for shutdown
	<-gctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := feedSvc.Stop(shutdownCtx); err != nil {
		logger.Warn("feed service stop", "error", err)
	}

	// Closing the queue lets the broadcaster drain and exit
	queue.Close()
	if err := broadcaster.Stop(shutdownCtx); err != nil {
		logger.Warn("broadcaster stop", "error", err)
	}

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("relayd stopped")
}
