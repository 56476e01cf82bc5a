package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"item-catalog-service/internal/api"
	"item-catalog-service/internal/config"
	"item-catalog-service/internal/dataset"
	"item-catalog-service/internal/logger"
	"item-catalog-service/internal/metrics"
	"item-catalog-service/internal/store"
)

func runServer(cfg *config.Config, appLogger *logger.Logger) error {
	appLogger.Infow("starting service", "app_env", cfg.AppEnv, "log_level", cfg.LogLevel)

	// --- Dataset ---
	gen := dataset.NewGenerator(cfg.Dataset.GenerateSeed)
	datasetPath := dataset.NewResolver(cfg.Dataset, gen, appLogger).Resolve(context.Background())
	appLogger.Infow("dataset resolved", "path", datasetPath, "lookup", cfg.Lookup())

	appMetrics := metrics.New()
	itemStore := store.NewFileStore(datasetPath, cfg.Lookup(),
		store.WithLogger(appLogger),
		store.WithSizeObserver(appMetrics),
	)

	// --- HTTP ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(httpRouter, appLogger, appMetrics)
	httpRouter.Handle("/metrics", appMetrics.Handler())
	api.NewHTTPHandler(itemStore, appLogger).RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	serverErrors := make(chan error, 2)
	go func() {
		appLogger.Infow("HTTP server listening", "port", cfg.HttpServer.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- fmt.Errorf("http server: %w", err)
		}
	}()

	// --- gRPC ---
	var grpcServer *grpc.Server
	if cfg.GrpcServer.Enabled {
		grpcServer = setupGRPCServer(appLogger, api.NewGRPCHandler(itemStore, appLogger))
		grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
		if err != nil {
			return fmt.Errorf("listen for gRPC on port %s: %w", cfg.GrpcServer.Port, err)
		}
		go func() {
			appLogger.Infow("gRPC server listening", "port", cfg.GrpcServer.Port)
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serverErrors <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// --- Graceful Shutdown ---
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		appLogger.Infow("received signal, starting graceful shutdown", "signal", sig.String())
	case runErr = <-serverErrors:
		appLogger.Errorw("server failed, shutting down", "error", runErr)
	}

	shutdown(appLogger, httpServer, grpcServer)
	return runErr
}

func setupBaseMiddleware(router *chi.Mux, appLogger *logger.Logger, appMetrics *metrics.Metrics) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(appLogger))
	router.Use(appMetrics.Middleware)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
}

func setupGRPCServer(appLogger *logger.Logger, handler *api.GRPCHandler) *grpc.Server {
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(api.UnaryLoggingInterceptor(appLogger)))

	api.RegisterItemCatalogServer(s, handler)
	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	reflection.Register(s)
	appLogger.Infow("gRPC services registered", "service", api.ItemCatalogServiceName)
	return s
}

func shutdown(appLogger *logger.Logger, httpServer *http.Server, grpcServer *grpc.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stoppedGrpc := make(chan struct{})
	go func() {
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warnw("HTTP server graceful shutdown failed", "error", err)
	} else {
		appLogger.Infow("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		appLogger.Infow("gRPC server stopped")
	case <-shutdownCtx.Done():
		appLogger.Warnw("gRPC graceful shutdown timed out, forcing stop", "error", shutdownCtx.Err())
		if grpcServer != nil {
			grpcServer.Stop()
		}
	}
	appLogger.Infow("graceful shutdown completed")
}
