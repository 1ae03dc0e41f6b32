package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	s3mirror "cartographer/internal/adapter/blob/s3"
	"cartographer/internal/adapter/files/local"
	httpadapter "cartographer/internal/adapter/http"
	metricsinmem "cartographer/internal/adapter/metrics/inmemory"
	metricsmulti "cartographer/internal/adapter/metrics/multi"
	metricsprom "cartographer/internal/adapter/metrics/prom"
	"cartographer/internal/adapter/overlay/painter"
	"cartographer/internal/adapter/position/tshock"
	"cartographer/internal/adapter/renderer/command"
	gormrepo "cartographer/internal/adapter/repo/gorm"
	memoryrepo "cartographer/internal/adapter/repo/memory"
	sqliterepo "cartographer/internal/adapter/repo/sqlite"
	"cartographer/internal/adapter/watch/fswatch"
	"cartographer/internal/app/basemap"
	"cartographer/internal/app/overlay"
	"cartographer/internal/app/ports"
	"cartographer/internal/app/serve"
	"cartographer/internal/app/status"
	"cartographer/internal/config"
	"cartographer/internal/domain/artifact"
	"cartographer/internal/platform/logging"
	"cartographer/internal/platform/supervisor"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	positionTimeout = 5 * time.Second
	watchMaxIdle    = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env is normal; real environment variables still apply.
	_ = godotenv.Load()

	cfg, err := config.Load(args, os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartographer: %v\n", err)
		return 1
	}

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "cartographer: init logger: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	store := local.NewStore()
	paths, err := resolvePaths(store, cfg)
	if err != nil {
		logger.Error("invalid world save, exiting", zap.Error(err))
		return 1
	}
	if err := os.MkdirAll(filepath.Dir(paths.Overlay), 0o755); err != nil {
		logger.Error("create output directory", zap.Error(err))
		return 1
	}
	logger.Info("artifact paths",
		zap.String("world_save", paths.WorldSave),
		zap.String("base_map", paths.BaseMap),
		zap.String("overlay", paths.Overlay),
		zap.String("served", paths.Served))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, closeHistory, err := buildHistory(ctx, cfg)
	if err != nil {
		logger.Error("open run history", zap.String("driver", cfg.HistoryDriver), zap.Error(err))
		return 1
	}
	defer closeHistory()

	kpi := metricsinmem.NewRecorder()
	prom := metricsprom.NewRecorder()
	metrics := metricsmulti.Metrics{kpi, prom}

	mirror, err := buildMirror(ctx, cfg)
	if err != nil {
		logger.Error("configure snapshot mirror", zap.Error(err))
		return 1
	}

	positions, err := tshock.New(cfg.RemoteURL(), cfg.Token, positionTimeout)
	if err != nil {
		logger.Error("configure position source", zap.Error(err))
		return 1
	}

	refresher := &basemap.Refresher{
		Paths:  paths,
		Config: artifact.DefaultRenderConfig(paths),
		Store:  store,
		Renderer: command.Renderer{
			Command: cfg.RendererCmd,
			Args:    cfg.RendererArgs,
			Timeout: cfg.RendererTimeout,
			Logger:  logger.Named("renderer"),
		},
		History:  history,
		Metrics:  metrics,
		Logger:   logger.Named("basemap"),
		Backoff:  cfg.RetryBackoff,
		IdleWait: cfg.IdleWait,
	}
	if cfg.Watch {
		waiter, err := fswatch.NewWaiter(paths.WorldSave, cfg.WatchSettle, logger.Named("watch"))
		if err != nil {
			logger.Warn("world save watch unavailable, polling instead", zap.Error(err))
		} else {
			defer func() { _ = waiter.Close() }()
			refresher.Waiter = waiter
			refresher.IdleWait = watchMaxIdle
		}
	}

	publisher := &overlay.Publisher{
		Paths: paths,
		Store: store,
		Renderer: painter.Painter{
			BaseMap:   paths.BaseMap,
			Output:    paths.Overlay,
			Positions: positions,
			TileScale: cfg.TileScale,
		},
		Mirror:   mirror,
		History:  history,
		Metrics:  metrics,
		Logger:   logger.Named("overlay"),
		Interval: cfg.PollInterval,
	}

	tree := supervisor.New(logger.Named("supervisor"), supervisor.DefaultConfig())
	tree.Add(supervisor.Loop{Name: "basemap-refresher", Run: refresher.Run})
	tree.Add(supervisor.Loop{Name: "overlay-publisher", Run: publisher.Run})
	treeDone := tree.ServeBackground(ctx)

	h := httpadapter.Handler{
		ServeUC: serve.UseCase{Store: store, Path: paths.Served, Metrics: metrics},
		StatusUC: status.UseCase{
			Paths:   paths,
			Store:   store,
			History: history,
			Metrics: kpi,
		},
		Ops:     cfg.OpsRoutes,
		Metrics: metricsHandler(cfg, prom),
	}
	s := server.New(server.WithHostPorts(cfg.Listen), server.WithExitWaitTime(shutdownTimeout))
	h.RegisterRoutes(s)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			logger.Warn("map server shutdown", zap.Error(err))
		}
	}()

	logger.Info("map server listening", zap.String("addr", cfg.Listen), zap.Bool("ops_routes", cfg.OpsRoutes))
	if err := s.Run(); err != nil && ctx.Err() == nil {
		logger.Error("map server stopped", zap.Error(err))
		stop()
		<-treeDone
		return 1
	}
	stop()
	<-treeDone
	return 0
}

// resolvePaths validates the world save before anything starts.
func resolvePaths(store ports.ArtifactStore, cfg config.Config) (artifact.Paths, error) {
	paths, err := artifact.DerivePaths(cfg.WorldSave, cfg.Output)
	if err != nil {
		return artifact.Paths{}, err
	}
	st, err := store.Stat(paths.WorldSave)
	if err != nil {
		return artifact.Paths{}, err
	}
	if !st.Exists {
		return artifact.Paths{}, fmt.Errorf("%w: %s", artifact.ErrWorldSaveMissing, paths.WorldSave)
	}
	return paths, nil
}

func buildHistory(ctx context.Context, cfg config.Config) (ports.RunHistoryRepository, func(), error) {
	switch cfg.HistoryDriver {
	case config.HistorySQLite:
		repo, err := sqliterepo.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() { _ = repo.Close() }, nil
	case config.HistoryPostgres:
		db, err := gormrepo.OpenPostgres(ctx, cfg.DBDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := gormrepo.ApplyMigrations(ctx, db, gormrepo.Migrations()); err != nil {
			return nil, nil, err
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return gormrepo.NewRunHistoryRepo(db), closeDB, nil
	default:
		return memoryrepo.NewRunHistoryRepo(memoryrepo.NewStore()), func() {}, nil
	}
}

func buildMirror(ctx context.Context, cfg config.Config) (ports.SnapshotMirror, error) {
	if !cfg.Mirror.Enabled() {
		return nil, nil
	}
	return s3mirror.New(ctx, s3mirror.Config{
		Region:          cfg.Mirror.Region,
		Bucket:          cfg.Mirror.Bucket,
		Key:             cfg.Mirror.Key,
		Endpoint:        cfg.Mirror.Endpoint,
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		PathStyle:       cfg.Mirror.PathStyle,
	})
}

func metricsHandler(cfg config.Config, prom *metricsprom.Recorder) http.Handler {
	if !cfg.OpsRoutes {
		return nil
	}
	return prom.Handler()
}
