package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/config"
	dbRedis "github.com/kailas-cloud/searchgate/internal/db/redis"
	"github.com/kailas-cloud/searchgate/internal/db/sqlite"
	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/domain/indexable"
	domweighting "github.com/kailas-cloud/searchgate/internal/domain/weighting"
	"github.com/kailas-cloud/searchgate/internal/features"
	logpkg "github.com/kailas-cloud/searchgate/internal/logger"
	"github.com/kailas-cloud/searchgate/internal/metrics"
	commentrepo "github.com/kailas-cloud/searchgate/internal/repository/comment"
	"github.com/kailas-cloud/searchgate/internal/repository/commentindex"
	featurerepo "github.com/kailas-cloud/searchgate/internal/repository/feature"
	weightingrepo "github.com/kailas-cloud/searchgate/internal/repository/weighting"
	chiTransport "github.com/kailas-cloud/searchgate/internal/transport/chi"
	commentsuc "github.com/kailas-cloud/searchgate/internal/usecase/comments"
	featureuc "github.com/kailas-cloud/searchgate/internal/usecase/feature"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	weightinguc "github.com/kailas-cloud/searchgate/internal/usecase/weighting"
	"github.com/kailas-cloud/searchgate/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchgate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("build_date", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("features_on_by_default", cfg.EnabledFeatures()),
	)

	// Settings store: feature flags and weighting
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:      cfg.Database.Addrs,
		Username:   cfg.Database.Username,
		Password:   cfg.Database.Password,
		DB:         cfg.Database.DB,
		Standalone: cfg.Database.Standalone,
	})
	if err != nil {
		logger.Fatal("Failed to create settings store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Settings store not ready", zap.Error(err))
	}
	logger.Info("Connected to settings store")

	// Default comment store and search-backed index
	commentDB, err := sqlite.Open(ctx, cfg.Comments.DBPath)
	if err != nil {
		logger.Fatal("Failed to open comment store", zap.Error(err), zap.String("path", cfg.Comments.DBPath))
	}
	defer func() { _ = commentDB.Close() }()
	commentRepo := commentrepo.New(commentDB)

	index, err := commentindex.Open(cfg.Comments.IndexPath)
	if err != nil {
		logger.Fatal("Failed to open comment index", zap.Error(err), zap.String("path", cfg.Comments.IndexPath))
	}
	defer func() { _ = index.Close() }()

	// Indexables and features
	registry := indexable.NewRegistry()
	if err := registry.Register(indexable.NewStatic(indexable.SlugPost, cfg.Indexables.PostTypes...)); err != nil {
		logger.Fatal("Failed to register post indexable", zap.Error(err))
	}

	commentsFeature := features.NewComments(cfg.Indexables.CommentTypes)
	featureSvc, err := featureuc.New(
		featurerepo.New(store, cfg.Storage.KeyPrefix),
		features.Builtin(commentsFeature),
		cfg.Features,
	)
	if err != nil {
		logger.Fatal("Failed to create feature service", zap.Error(err))
	}
	if err := featureSvc.SetupActive(ctx, registry); err != nil {
		logger.Fatal("Failed to set up features", zap.Error(err))
	}

	// Use case services
	commentSvc := commentsuc.New(index, commentRepo, featureSvc, registry, cfg.Site.URL, nil)

	if on, _ := featureSvc.IsEnabled(ctx, features.SlugComments); on {
		n, err := commentSvc.Reindex(ctx)
		if err != nil {
			logger.Fatal("Failed to build comment index", zap.Error(err))
		}
		logger.Info("Comment index built", zap.Int("comments", n))
	}

	initial := domweighting.Settings{MetaMode: domweighting.MetaMode(cfg.Weighting.MetaMode)}
	weightingSvc := weightinguc.New(
		weightingrepo.New(store, cfg.Storage.KeyPrefix),
		cfg.Weighting.Catalog(),
		initial,
	)

	healthSvc := healthuc.New(store, commentRepo, index)

	onActivate := map[string]chiTransport.ActivateHook{
		features.SlugComments: func(ctx context.Context) error {
			if err := commentsFeature.Setup(registry); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
				return fmt.Errorf("set up comments: %w", err)
			}
			n, err := commentSvc.Reindex(ctx)
			if err != nil {
				return fmt.Errorf("reindex comments: %w", err)
			}
			logpkg.FromContext(ctx).Info("Comment index rebuilt", zap.Int("comments", n))
			return nil
		},
	}

	server := chiTransport.NewServer(
		commentSvc, featureSvc, weightingSvc, healthSvc,
		chiTransport.Integration{Admin: cfg.Integration.Admin, AJAX: cfg.Integration.AJAX},
		onActivate, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", chiTransport.HeaderOrigin, "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}).Handler)
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	if cfg.Comments.RateLimit > 0 {
		server.WithRateLimiter(chiTransport.NewRateLimiter(cfg.Comments.RateLimit, cfg.Comments.Burst))
	}
	r.Handle("/metrics", promhttp.Handler())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
