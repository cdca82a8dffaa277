package api

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/codyseavey/pricewatch/web/internal/api/handlers"
	"github.com/codyseavey/pricewatch/web/internal/config"
	"github.com/codyseavey/pricewatch/web/internal/logger"
	"github.com/codyseavey/pricewatch/web/internal/metrics"
	"github.com/codyseavey/pricewatch/web/internal/queries"
	"github.com/codyseavey/pricewatch/web/internal/views"
)

func SetupRouter(cfg *config.Config, log *zap.Logger, products *queries.Products, prices *queries.Prices, dashboard *queries.Dashboard, display handlers.Display) (*gin.Engine, error) {
	router := gin.New()

	router.Use(logger.Middleware(log))
	router.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.FromGin(c).Error("panic recovered", zap.Any("error", err), zap.Stack("stack"))
		c.AbortWithStatus(http.StatusInternalServerError)
	}))
	router.Use(metrics.Middleware())

	// CORS configuration - allow origins from config or use defaults
	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "HX-Request", "HX-Target", "HX-Current-URL", logger.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{logger.RequestIDHeader}
	corsConfig.AllowCredentials = false
	router.Use(cors.New(corsConfig))

	tmpl, err := views.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(products, prices, dashboard, display)
	productHandler := handlers.NewProductHandler(products, prices, display)

	// Ops endpoints stay outside the rate limit
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.StaticFS("/static", http.FS(views.Static()))

	ui := router.Group("", RateLimit(cfg.RateLimit))
	{
		ui.GET("/", dashboardHandler.Page)
		ui.POST("/theme", handlers.ToggleTheme)

		productRoutes := ui.Group("/products")
		{
			productRoutes.GET("", productHandler.Page)
			productRoutes.POST("", productHandler.Create)
			productRoutes.POST("/:id/edit", productHandler.Update)
			productRoutes.POST("/:id/delete", productHandler.Delete)
		}
	}

	// Fragments are requested by the pages themselves, one per lazy widget
	// and card, so they are not counted against the client's limit.
	fragments := router.Group("/fragments")
	{
		fragments.GET("/summary", dashboardHandler.SummaryFragment)
		fragments.GET("/price-chart", dashboardHandler.PriceChartFragment)
		fragments.GET("/alerts", dashboardHandler.AlertsFragment)
		fragments.GET("/recent", dashboardHandler.RecentFragment)
		fragments.GET("/products", productHandler.GridFragment)
		fragments.GET("/products/:id/sparkline", productHandler.SparklineFragment)
	}

	return router, nil
}
