package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/store-manager/internal/adapter/handler"
	"github.com/rl1809/store-manager/internal/adapter/storage"
	"github.com/rl1809/store-manager/internal/config"
	"github.com/rl1809/store-manager/internal/core/service"
	"github.com/rl1809/store-manager/internal/currency"
	"github.com/rl1809/store-manager/internal/logging"
	"github.com/rl1809/store-manager/internal/port"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration file")
	flag.Parse()

	cfg, loaded, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if !loaded {
		logger.Info("config file not found, using defaults", zap.String("path", *configPath))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, closeRepo, err := openRepository(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.String("driver", string(cfg.Storage.Driver)), zap.Error(err))
	}
	defer closeRepo()

	store, err := service.NewStoreService(ctx, repo, service.WithLogger(logger))
	if err != nil {
		logger.Fatal("failed to load store", zap.Error(err))
	}
	logger.Info("store ready", zap.String("balance", currency.Format(store.Balance(), cfg.Currency)))

	// Initialize gRPC server
	grpcServer := handler.NewGRPCServer(handler.NewGRPCHandler(store), logger.Named("grpc"))

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.Fatal("failed to listen", zap.String("addr", cfg.GRPCAddr), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC server error", zap.Error(err))
		}
	}()

	// Initialize HTTP server
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler.NewHTTPHandler(store, logger.Named("http")).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", zap.Error(err))
	}
	logger.Info("HTTP server stopped")

	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}

// openRepository builds the snapshot backend named by cfg.Driver. The returned
// func releases any connection it opened.
func openRepository(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (port.SnapshotRepository, func(), error) {
	switch cfg.Driver {
	case config.DriverFile:
		fs := storage.NewFileStore(cfg.Path)
		logger.Info("using file storage", zap.String("path", fs.Path()))
		return fs, func() {}, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr), zap.String("key", cfg.RedisKey))
		return storage.NewRedisStore(rdb, cfg.RedisKey), func() { _ = rdb.Close() }, nil

	case config.DriverMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping mysql: %w", err)
		}
		ms := storage.NewMySQLStore(db)
		if err := ms.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("connected to mysql")
		return ms, func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
