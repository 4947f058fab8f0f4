package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory_ledger/config"
	"inventory_ledger/internal/delivery"
	grpcDelivery "inventory_ledger/internal/delivery/grpc"
	"inventory_ledger/internal/domain"
	"inventory_ledger/internal/export"
	"inventory_ledger/internal/export/s3sink"
	"inventory_ledger/internal/metrics"
	"inventory_ledger/internal/repository"
	"inventory_ledger/internal/usecase"
	"inventory_ledger/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
)

type stores struct {
	categories domain.CategoryRepository
	products   domain.ProductRepository
	closer     func() error
}

func openStores(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		defer cancel()
		database, err := db.Connect(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if cfg.EnsureSchema {
			if err := db.EnsureSchema(connectCtx, database); err != nil {
				database.Close()
				return nil, err
			}
			logger.Info("Database schema ensured.")
		}
		return &stores{
			categories: repository.NewPostgresCategoryRepository(database, cfg.StoreTimeout, logger),
			products:   repository.NewPostgresProductRepository(database, cfg.StoreTimeout, logger),
			closer:     database.Close,
		}, nil
	case config.DriverREST:
		client := repository.NewRESTClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StoreTimeout, logger)
		return &stores{categories: client.Categories(), products: client.Products()}, nil
	default:
		logger.Warn("Using in-memory store, data is lost on restart")
		store := repository.NewMemoryStore(logger)
		return &stores{categories: store.Categories(), products: store.Products()}, nil
	}
}

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(logger)
	if err != nil {
		logger.Fatalf("FATAL: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("Unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}
	logger.Info("Starting Inventory Ledger...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Store ---
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("FATAL: Failed to open %s store: %v", cfg.StoreDriver, err)
	}
	if st.closer != nil {
		defer st.closer()
	}
	logger.Infof("Store %q initialized.", cfg.StoreDriver)

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(registry)
	if err != nil {
		logger.Fatalf("FATAL: Failed to register metrics: %v", err)
	}

	// --- Export archive ---
	var sink export.Sink
	if cfg.Export.Enabled() {
		archive, err := s3sink.New(ctx, s3sink.Config{
			Bucket:          cfg.Export.Bucket,
			Region:          cfg.Export.Region,
			Endpoint:        cfg.Export.Endpoint,
			PathStyle:       cfg.Export.PathStyle,
			AccessKeyID:     cfg.Export.AccessKeyID,
			SecretAccessKey: cfg.Export.SecretAccessKey,
		}, logger)
		if err != nil {
			logger.Fatalf("FATAL: Failed to configure export archive: %v", err)
		}
		sink = archive
		logger.Infof("Export archive enabled: bucket=%s", cfg.Export.Bucket)
	}

	// --- Use cases ---
	categoryUseCase := usecase.NewCategoryUseCase(st.categories, logger)
	productUseCase := usecase.NewProductUseCase(st.products, st.categories, logger)
	stockUseCase := usecase.NewStockUseCase(st.products, usecase.StockOptions{
		MaxTries:      cfg.AdjustMaxTries,
		RetryInterval: cfg.AdjustRetryInterval,
	}, m, logger)
	reportUseCase := usecase.NewReportUseCase(st.products, st.categories, sink, usecase.ReportOptions{
		DefaultThreshold: cfg.LowStockThreshold,
		ArchivePrefix:    cfg.Export.Prefix,
	}, m, logger)
	logger.Info("Use cases initialized.")

	// --- gRPC server ---
	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("FATAL: Failed to listen on gRPC port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcDelivery.UnaryServerInterceptor(logger, m)))
	grpcDelivery.RegisterInventoryServer(grpcServer, grpcDelivery.NewInventoryHandler(
		categoryUseCase, productUseCase, stockUseCase, reportUseCase, logger,
	))
	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil {
			logger.Errorf("gRPC server stopped: %v", err)
		}
	}()

	// --- HTTP server ---
	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(delivery.RouterConfig{
		Categories: categoryUseCase,
		Products:   productUseCase,
		Stock:      stockUseCase,
		Reports:    reportUseCase,
		Metrics:    m,
		Gatherer:   registry,
		Logger:     logger,
	})
	srv := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting HTTP server on port %s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP shutdown error: %v", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Inventory Ledger stopped.")
}
