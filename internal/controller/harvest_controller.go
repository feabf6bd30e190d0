package controller

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"harvest-planner/internal/harvest"
	"harvest-planner/internal/service"

	"github.com/gin-gonic/gin"
)

// HarvestController handles harvest forecast HTTP requests
type HarvestController struct {
	harvestService service.HarvestService
	logger         *slog.Logger
}

// NewHarvestController creates a new harvest controller
func NewHarvestController(harvestService service.HarvestService, logger *slog.Logger) *HarvestController {
	return &HarvestController{
		harvestService: harvestService,
		logger:         logger,
	}
}

// Register mounts the harvest routes on a router group
func (c *HarvestController) Register(rg *gin.RouterGroup) {
	rg.GET("/dashboard", c.GetDashboard)
	h := rg.Group("/harvest")
	{
		h.GET("/forecast", c.GetForecast)
		h.GET("/series", c.GetSeries)
		h.GET("/export", c.Export)
	}
}

// queryFromRequest reads q and month. Neither is validated: a malformed
// month simply matches no rows.
func queryFromRequest(ctx *gin.Context) harvest.Query {
	return harvest.Query{
		Text:  ctx.Query("q"),
		Month: ctx.Query("month"),
	}
}

// GetForecast handles GET /v1/harvest/forecast
// Query parameters:
//   - q (optional): substring of farmer name/code, plot name, variety or status
//   - month (optional): exact YYYY-MM harvest month
func (c *HarvestController) GetForecast(ctx *gin.Context) {
	startTime := time.Now()
	q := queryFromRequest(ctx)

	forecast, err := c.harvestService.Forecast(ctx.Request.Context(), q)
	if err != nil {
		c.internalError(ctx, "failed to build forecast", err, q, startTime)
		return
	}

	c.logger.Info("forecast request completed",
		"q", q.Text,
		"month", q.Month,
		"rows", len(forecast.Rows),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.JSON(http.StatusOK, forecast)
}

// GetSeries handles GET /v1/harvest/series and returns [{month, tons}]
func (c *HarvestController) GetSeries(ctx *gin.Context) {
	startTime := time.Now()
	q := queryFromRequest(ctx)

	series, err := c.harvestService.Series(ctx.Request.Context(), q)
	if err != nil {
		c.internalError(ctx, "failed to build series", err, q, startTime)
		return
	}

	c.logger.Info("series request completed",
		"q", q.Text,
		"month", q.Month,
		"data_points", len(series),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.JSON(http.StatusOK, series)
}

// GetDashboard handles GET /v1/dashboard
func (c *HarvestController) GetDashboard(ctx *gin.Context) {
	startTime := time.Now()

	dashboard, err := c.harvestService.Dashboard(ctx.Request.Context())
	if err != nil {
		c.internalError(ctx, "failed to build dashboard", err, harvest.Query{}, startTime)
		return
	}

	c.logger.Info("dashboard request completed",
		"plantings", dashboard.Plantings,
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.JSON(http.StatusOK, dashboard)
}

// Export handles GET /v1/harvest/export
// Query parameters:
//   - q, month: as for the forecast
//   - format (optional): csv (default) or xlsx
func (c *HarvestController) Export(ctx *gin.Context) {
	startTime := time.Now()
	q := queryFromRequest(ctx)
	format := ctx.DefaultQuery("format", service.FormatCSV)

	contentType, ok := exportContentTypes[format]
	if !ok {
		c.logger.Warn("invalid export format", "format", format)
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid format",
			"message": "format must be one of: csv, xlsx",
		})
		return
	}

	// buffer so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := c.harvestService.Export(ctx.Request.Context(), &buf, q, format); err != nil {
		if errors.Is(err, service.ErrUnknownFormat) {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid format",
				"message": err.Error(),
			})
			return
		}
		c.internalError(ctx, "failed to export forecast", err, q, startTime)
		return
	}

	c.logger.Info("export request completed",
		"q", q.Text,
		"month", q.Month,
		"format", format,
		"bytes", buf.Len(),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="harvest_plan.%s"`, format))
	ctx.Data(http.StatusOK, contentType, buf.Bytes())
}

var exportContentTypes = map[string]string{
	service.FormatCSV:  "text/csv; charset=utf-8",
	service.FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

func (c *HarvestController) internalError(ctx *gin.Context, msg string, err error, q harvest.Query, startTime time.Time) {
	c.logger.Error(msg,
		"q", q.Text,
		"month", q.Month,
		"error", err.Error(),
		"latency_ms", time.Since(startTime).Milliseconds(),
	)
	_ = ctx.Error(err)
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": "Failed to retrieve harvest data",
	})
}
