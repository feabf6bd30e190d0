package server

import (
	"log/slog"
	"net/http"

	"harvest-planner/internal/controller"
	"harvest-planner/internal/middleware"
	"harvest-planner/internal/repository"
	"harvest-planner/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// NewRouter wires repository, service and controllers onto a gin engine.
// A nil metrics gets a fresh registry.
func NewRouter(db *gorm.DB, logger *slog.Logger, metrics *middleware.Metrics) *gin.Engine {
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}
	repo := repository.NewFarmRepository(db)
	harvestService := service.NewHarvestService(repo, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.StructuredLogging(logger, metrics))

	r.GET("/healthz", healthHandler(db))
	r.GET("/metrics", metrics.Handler)

	v1 := r.Group("/v1")
	controller.NewHarvestController(harvestService, logger).Register(v1)
	controller.NewRecordsController(repo, logger).Register(v1)

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
