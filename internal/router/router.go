package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "billrecon/docs"
	"billrecon/internal/handler"
	"billrecon/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	log *zap.Logger,
	corsOrigins []string,
	extractionH *handler.ExtractionHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(corsOrigins))

	// Info and health checks
	r.GET("/", healthH.Info)
	r.GET("/health", healthH.Health)
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Unversioned extraction endpoint
	r.POST("/extract-bill-data", extractionH.Extract)

	v1 := r.Group("/api/v1")
	v1.POST("/extract-bill-data", extractionH.Extract)
	v1.POST("/extract-bill-data/export", extractionH.Export)
	v1.POST("/reconcile", extractionH.Reconcile)
	v1.GET("/extractions", extractionH.ListRecent)

	return r
}
