package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/codyseavey/pricewatch/web/internal/api"
	"github.com/codyseavey/pricewatch/web/internal/api/handlers"
	"github.com/codyseavey/pricewatch/web/internal/client"
	"github.com/codyseavey/pricewatch/web/internal/config"
	"github.com/codyseavey/pricewatch/web/internal/logger"
	"github.com/codyseavey/pricewatch/web/internal/queries"
	"github.com/codyseavey/pricewatch/web/internal/query"
	"github.com/codyseavey/pricewatch/web/internal/services"
)

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLog, err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Environment,
		ServiceName: "pricewatch-web",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLog.Sync() }()

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	baseURL, err := cfg.API.ResolvedBaseURL()
	if err != nil {
		zapLog.Fatal("Invalid API base URL", zap.Error(err))
	}
	loc, err := cfg.Display.Location()
	if err != nil {
		zapLog.Fatal("Invalid display timezone", zap.Error(err))
	}

	// Price API client and the typed services over it
	apiClient := client.New(baseURL)
	productService := services.NewProductService(apiClient)
	priceService := services.NewPriceService(apiClient)
	dashboardService := services.NewDashboardService(apiClient)

	// One query cache for the whole process
	cache := query.NewClient(query.Config{
		StaleTime:  cfg.Query.StaleTime,
		GCTime:     cfg.Query.GCTime,
		Retry:      cfg.Query.Retry,
		RetryDelay: cfg.Query.RetryDelay,
		MaxEntries: cfg.Query.MaxEntries,
	})
	productQueries := queries.NewProducts(cache, productService)
	priceQueries := queries.NewPrices(cache, priceService)
	dashboardQueries := queries.NewDashboard(cache, dashboardService, cfg.Query.SummaryRefetchInterval)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), zapLog))
	defer cancel()

	// Keep the dashboard summary fresh in background with panic recovery
	go func() {
		for {
			func() {
				defer func() {
					if r := recover(); r != nil {
						zapLog.Error("PANIC in summary poller - restarting in 30 seconds", zap.Any("panic", r))
					}
				}()
				dashboardQueries.StartRefresh(ctx)
			}()

			select {
			case <-ctx.Done():
				return // Graceful shutdown
			case <-time.After(30 * time.Second):
				zapLog.Info("Summary poller restarting after panic recovery")
			}
		}
	}()

	router, err := api.SetupRouter(cfg, zapLog, productQueries, priceQueries, dashboardQueries, handlers.Display{
		Location:    loc,
		RecentLimit: cfg.Display.RecentLimit,
	})
	if err != nil {
		zapLog.Fatal("Failed to set up router", zap.Error(err))
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLog.Info("Starting server",
			zap.String("port", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("api_base_url", baseURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("Shutting down server...")

	// Cancel the context to stop the summary poller
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLog.Info("Server exited")
}
