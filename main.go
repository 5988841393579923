package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/hydrotrack-bot/server/internal/config"
	"github.com/hydrotrack-bot/server/internal/tracker/dialogue"
	"github.com/hydrotrack-bot/server/internal/tracker/metrics"
	"github.com/hydrotrack-bot/server/internal/tracker/model"
	"github.com/hydrotrack-bot/server/internal/tracker/nutrition"
	"github.com/hydrotrack-bot/server/internal/tracker/router"
	"github.com/hydrotrack-bot/server/internal/tracker/store"
	"github.com/hydrotrack-bot/server/internal/transport/console"
	"github.com/hydrotrack-bot/server/internal/transport/telegram"
	logx "github.com/hydrotrack-bot/server/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var envWarning error
	cfg, err := config.Load(func(err error) { envWarning = err })
	if err != nil {
		logx.Init()
		logx.Fatal().Err(err).Msg("failed to load config")
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Environment, Level: cfg.LogLevel})
	if envWarning != nil {
		logx.Warn().Err(envWarning).Msg("could not load .env file")
	}

	if err := run(ctx, cfg); err != nil {
		logx.Fatal().Err(err).Msg("bot stopped with error")
	}
	logx.Info().Msg("bot stopped")
}

func run(ctx context.Context, cfg config.AppConfig) error {
	// ====================================================
	// Nutrition lookup: Open Food Facts, cached in Redis when configured
	var lookup model.NutritionLookup = nutrition.NewOpenFoodFacts(cfg.Nutrition, nil)
	if cfg.Redis.Enabled() {
		rdb, err := cfg.Redis.New(ctx)
		if err != nil {
			logx.Warn().Err(err).Msg("redis unavailable, nutrition cache disabled")
		} else {
			defer closeRedis(rdb)
			logx.Info().Msg("connected to redis")
			lookup = nutrition.NewCached(lookup, rdb, cfg.Nutrition.CacheTTL)
		}
	}
	lookup = nutrition.NewDeduplicated(lookup)

	// ====================================================
	// Tracker core
	st := store.New()
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	r, err := router.New(router.Config{
		Store:         st,
		Engine:        dialogue.NewEngine(st),
		Lookup:        lookup,
		Metrics:       m,
		LookupTimeout: cfg.Nutrition.Timeout,
	})
	if err != nil {
		return err
	}

	// ====================================================
	// Transports
	var transport func(context.Context) error
	switch cfg.Transport {
	case config.TransportConsole:
		transport = console.New(os.Stdin, os.Stdout, cfg.Console, r).Run
	default:
		bot, err := telegram.NewBot(cfg.Telegram, r)
		if err != nil {
			return err
		}
		transport = bot.Run
	}

	// The transport ending (console "quit") shuts the metrics server down too.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return transport(gctx)
	})

	if cfg.Metrics.Enabled {
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux(), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			logx.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func closeRedis(rdb *goredis.Client) {
	if err := rdb.Close(); err != nil {
		logx.Warn().Err(err).Msg("failed to close redis")
	}
}
