// Command syncd keeps a set of Challonge tournaments mirrored in memory and
// serves the cached graph over HTTP.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sandai/challonge/src/app/challonge"
	"github.com/sandai/challonge/src/infra/asset"
	"github.com/sandai/challonge/src/infra/config"
	"github.com/sandai/challonge/src/infra/transport"
)

func main() {
	configPath := flag.String("config", os.Getenv("SYNCD_CONFIG"), "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := newLogger(cfg.Syncd.LogFile)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	baseCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	client := transport.New(cfg.Challonge.Username, cfg.Challonge.APIKey,
		transport.WithBaseURL(cfg.Challonge.BaseURL),
		transport.WithTimeout(cfg.Challonge.Timeout),
		transport.WithLogger(logger.Named("transport")),
		transport.WithRegisterer(prometheus.DefaultRegisterer),
	)

	assets, err := newAssetSource(baseCtx, cfg)
	if err != nil {
		logger.Fatal("failed to configure asset storage", zap.Error(err))
	}

	account, err := challonge.Connect(baseCtx, client,
		challonge.WithLogger(logger.Named("challonge")),
		challonge.WithAssetSource(assets),
	)
	if err != nil {
		logger.Fatal("failed to connect to challonge", zap.Error(err))
	}

	syncer := NewSyncer(account, cfg.Syncd.Tournaments, logger.Named("sync"), prometheus.DefaultRegisterer)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("failed to create scheduler", zap.Error(err))
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(cfg.Syncd.RefreshInterval),
		gocron.NewTask(func() {
			if err := syncer.Refresh(baseCtx); err != nil {
				logger.Warn("refresh incomplete", zap.Error(err))
			}
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Fatal("failed to schedule refresh", zap.Error(err))
	}
	scheduler.Start()
	defer func() { _ = scheduler.Shutdown() }()

	server := NewServer(ServerConfig{
		Logger:     logger,
		Account:    account,
		Syncer:     syncer,
		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,
	})

	httpServer := &http.Server{
		Addr:         cfg.Syncd.HTTPAddress,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("syncd listening",
			zap.String("addr", cfg.Syncd.HTTPAddress),
			zap.Strings("tournaments", cfg.Syncd.Tournaments),
			zap.Duration("refresh_interval", cfg.Syncd.RefreshInterval),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-baseCtx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newLogger writes JSON logs to stderr, or to a rotated file when path is set.
func newLogger(path string) (*zap.Logger, error) {
	if path == "" {
		return zap.NewProduction()
	}
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	})
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), writer, zap.InfoLevel)
	return zap.New(core, zap.AddCaller()), nil
}

// newAssetSource reads plain paths from disk and r2:// or s3:// references
// from R2 when configured.
func newAssetSource(ctx context.Context, cfg *config.Config) (challonge.AssetSource, error) {
	router := asset.NewRouter(asset.Local{Root: cfg.Syncd.AssetRoot})
	if !cfg.R2.Enabled() {
		return router, nil
	}
	store, err := asset.NewR2(ctx, asset.R2Config{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		Bucket:          cfg.R2.Bucket,
	})
	if err != nil {
		return nil, err
	}
	return router.Handle("r2", store).Handle("s3", store), nil
}
