package main

import (
	"context"
	"log"
	"net"
	"os/signal"
	"syscall"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/simaogato/portfolio-backend/internal/adapter/grpc"
	"github.com/simaogato/portfolio-backend/internal/adapter/httpapi"
	"github.com/simaogato/portfolio-backend/internal/adapter/marketdata"
	"github.com/simaogato/portfolio-backend/internal/adapter/repository/memory"
	"github.com/simaogato/portfolio-backend/internal/config"
	"github.com/simaogato/portfolio-backend/internal/logger"
	"github.com/simaogato/portfolio-backend/internal/usecase/portfolio"
	"github.com/simaogato/portfolio-backend/internal/usecase/pricecache"
	"github.com/simaogato/portfolio-backend/internal/usecase/refresher"
	"github.com/simaogato/portfolio-backend/internal/usecase/seeder"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	logger.SetLevel(cfg.Log.Level)

	// 2. Market data and price cache
	client := marketdata.NewClient(cfg.MarketData.BaseURL, cfg.MarketData.Range, cfg.MarketData.Interval, cfg.MarketData.Timeout)
	prices := pricecache.NewPriceCache(client, cfg.MarketData.RefreshPeriod)

	// 3. Initialize Repositories (in memory)
	positionRepo := memory.NewPositionRepository()
	bucketRepo := memory.NewBucketRepository()

	// 4. Initialize Services (Use Cases)
	portfolioService := portfolio.NewPortfolioService(positionRepo, bucketRepo, prices)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Seed configured buckets
	if err := seeder.NewBucketSeeder(bucketRepo, cfg.SeedBuckets).Seed(ctx); err != nil {
		log.Fatalf("Failed to seed buckets: %v", err)
	}

	// 5. Background price refresher
	var refresh *refresher.Refresher
	if cfg.Refresher.Enabled {
		refresh = refresher.NewRefresher(positionRepo, prices, cfg.Refresher.Concurrency, cfg.MarketData.Timeout)
		if err := refresh.Register(cfg.Refresher.Schedule); err != nil {
			log.Fatalf("Failed to schedule refresher: %v", err)
		}
		refresh.Start()
	}

	// 6. Start gRPC Server
	grpcServer := grpclib.NewServer(
		grpclib.ChainUnaryInterceptor(
			grpcadapter.LoggingInterceptor(),
			grpcadapter.DeadlineInterceptor(cfg.Server.RequestTimeout),
		),
	)
	grpcadapter.RegisterPortfolioServiceServer(grpcServer, grpcadapter.NewServer(portfolioService))
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr())
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", cfg.GRPCAddr(), err)
	}

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GRPCAddr())
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("Failed to serve gRPC server: %v", err)
		}
	}()

	// 7. Start HTTP Server
	httpServer := httpapi.NewServer(cfg.HTTPAddr(), portfolioService, cfg.Server.RequestTimeout)
	httpDone := make(chan struct{})
	go func() {
		defer close(httpDone)
		if err := httpServer.Start(ctx); err != nil {
			logger.Errorf("HTTP server failed: %v", err)
			stop()
		}
	}()

	// Graceful shutdown
	waitForShutdown(ctx, grpcServer, refresh)
	<-httpDone
	logger.Infof("HTTP server stopped")
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the servers.
// The HTTP server stops on its own once ctx is done.
func waitForShutdown(ctx context.Context, grpcServer *grpclib.Server, refresh *refresher.Refresher) {
	<-ctx.Done()
	logger.Infof("Shutting down gracefully...")

	if refresh != nil {
		refresh.Stop()
	}
	grpcServer.GracefulStop()
	logger.Infof("gRPC server stopped")
}
