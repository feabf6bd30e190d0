package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"harvest-planner/internal/harvest"
	"harvest-planner/internal/model"
	"harvest-planner/internal/repository"

	"github.com/gin-gonic/gin"
)

// RecordsController exposes farmer, plot and planting records. These
// endpoints pass straight through to the repository.
type RecordsController struct {
	repo   repository.FarmRepository
	logger *slog.Logger
}

// NewRecordsController creates a new records controller
func NewRecordsController(repo repository.FarmRepository, logger *slog.Logger) *RecordsController {
	return &RecordsController{repo: repo, logger: logger}
}

// Register mounts the record routes on a router group
func (c *RecordsController) Register(rg *gin.RouterGroup) {
	farmers := rg.Group("/farmers")
	{
		farmers.GET("", c.ListFarmers)
		farmers.POST("", c.CreateFarmer)
		farmers.GET("/:id", c.GetFarmer)
		farmers.PUT("/:id", c.UpdateFarmer)
		farmers.DELETE("/:id", c.DeleteFarmer)
	}
	plots := rg.Group("/plots")
	{
		plots.GET("", c.ListPlots)
		plots.POST("", c.CreatePlot)
		plots.GET("/:id", c.GetPlot)
		plots.PUT("/:id", c.UpdatePlot)
		plots.DELETE("/:id", c.DeletePlot)
	}
	plantings := rg.Group("/plantings")
	{
		plantings.GET("", c.ListPlantings)
		plantings.POST("", c.CreatePlanting)
		plantings.GET("/:id", c.GetPlanting)
		plantings.PUT("/:id", c.UpdatePlanting)
		plantings.DELETE("/:id", c.DeletePlanting)
	}
}

type farmerRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Village  string `json:"village"`
	District string `json:"district"`
	Province string `json:"province"`
}

// applyTo copies the request onto f; an empty code keeps the current one
func (r farmerRequest) applyTo(f *model.Farmer) {
	if code := strings.TrimSpace(r.Code); code != "" {
		f.Code = code
	}
	f.Name = strings.TrimSpace(r.Name)
	f.Phone = r.Phone
	f.Village = r.Village
	f.District = r.District
	f.Province = r.Province
}

type plotRequest struct {
	FarmerID     uint     `json:"farmer_id" binding:"required"`
	PlotName     string   `json:"plot_name" binding:"required"`
	AreaRai      *float64 `json:"area_rai" binding:"required,gte=0"`
	LocationHint string   `json:"location_hint"`
}

func (r plotRequest) applyTo(p *model.Plot) {
	p.FarmerID = r.FarmerID
	p.PlotName = strings.TrimSpace(r.PlotName)
	p.AreaRai = *r.AreaRai
	p.LocationHint = r.LocationHint
}

type plantingRequest struct {
	PlotID         uint     `json:"plot_id" binding:"required"`
	Crop           string   `json:"crop"`
	Variety        string   `json:"variety"`
	PlantDate      string   `json:"plant_date" binding:"required"`
	DaysToHarvest  *int     `json:"days_to_harvest" binding:"omitempty,gte=0"`
	YieldTonPerRai *float64 `json:"yield_ton_per_rai" binding:"omitempty,gte=0"`
	Status         string   `json:"status"`
	Notes          string   `json:"notes"`
}

// applyTo copies the request onto p. Omitted days/yield keep p's values,
// so callers seed p with defaults on create.
func (r plantingRequest) applyTo(p *model.Planting) error {
	plantDate, err := time.Parse(harvest.DateLayout, r.PlantDate)
	if err != nil {
		return fmt.Errorf("plant_date must be YYYY-MM-DD: %w", err)
	}
	p.PlotID = r.PlotID
	p.Crop = r.Crop
	p.Variety = r.Variety
	p.PlantDate = plantDate
	if r.DaysToHarvest != nil {
		p.DaysToHarvest = *r.DaysToHarvest
	}
	if r.YieldTonPerRai != nil {
		p.YieldTonPerRai = *r.YieldTonPerRai
	}
	if r.Status != "" {
		p.Status = r.Status
	}
	p.Notes = r.Notes
	return nil
}

func newPlanting() *model.Planting {
	return &model.Planting{
		DaysToHarvest:  model.DefaultDaysToHarvest,
		YieldTonPerRai: model.DefaultYieldTonPerRai,
	}
}

// ListFarmers handles GET /v1/farmers
func (c *RecordsController) ListFarmers(ctx *gin.Context) {
	list(ctx, c, c.repo.ListFarmers)
}

// GetFarmer handles GET /v1/farmers/:id
func (c *RecordsController) GetFarmer(ctx *gin.Context) {
	get(ctx, c, c.repo.GetFarmer)
}

// CreateFarmer handles POST /v1/farmers. A missing code is generated from the id.
func (c *RecordsController) CreateFarmer(ctx *gin.Context) {
	var req farmerRequest
	if !c.bind(ctx, &req) {
		return
	}
	f := &model.Farmer{}
	req.applyTo(f)
	if err := c.repo.CreateFarmer(ctx.Request.Context(), f); err != nil {
		c.repoError(ctx, "create farmer", err)
		return
	}
	ctx.JSON(http.StatusCreated, f)
}

// UpdateFarmer handles PUT /v1/farmers/:id
func (c *RecordsController) UpdateFarmer(ctx *gin.Context) {
	id, ok := c.parseID(ctx)
	if !ok {
		return
	}
	var req farmerRequest
	if !c.bind(ctx, &req) {
		return
	}
	f, err := c.repo.GetFarmer(ctx.Request.Context(), id)
	if err != nil {
		c.repoError(ctx, "get farmer", err)
		return
	}
	req.applyTo(f)
	if err := c.repo.UpdateFarmer(ctx.Request.Context(), f); err != nil {
		c.repoError(ctx, "update farmer", err)
		return
	}
	ctx.JSON(http.StatusOK, f)
}

// DeleteFarmer handles DELETE /v1/farmers/:id. The farmer's plots are kept
// and show up in forecasts without a farmer.
func (c *RecordsController) DeleteFarmer(ctx *gin.Context) {
	remove(ctx, c, c.repo.DeleteFarmer)
}

// ListPlots handles GET /v1/plots
func (c *RecordsController) ListPlots(ctx *gin.Context) {
	list(ctx, c, c.repo.ListPlots)
}

// GetPlot handles GET /v1/plots/:id
func (c *RecordsController) GetPlot(ctx *gin.Context) {
	get(ctx, c, c.repo.GetPlot)
}

// CreatePlot handles POST /v1/plots
func (c *RecordsController) CreatePlot(ctx *gin.Context) {
	var req plotRequest
	if !c.bind(ctx, &req) || !c.requireFarmer(ctx, req.FarmerID) {
		return
	}
	p := &model.Plot{}
	req.applyTo(p)
	if err := c.repo.CreatePlot(ctx.Request.Context(), p); err != nil {
		c.repoError(ctx, "create plot", err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

// UpdatePlot handles PUT /v1/plots/:id
func (c *RecordsController) UpdatePlot(ctx *gin.Context) {
	id, ok := c.parseID(ctx)
	if !ok {
		return
	}
	var req plotRequest
	if !c.bind(ctx, &req) || !c.requireFarmer(ctx, req.FarmerID) {
		return
	}
	p, err := c.repo.GetPlot(ctx.Request.Context(), id)
	if err != nil {
		c.repoError(ctx, "get plot", err)
		return
	}
	req.applyTo(p)
	if err := c.repo.UpdatePlot(ctx.Request.Context(), p); err != nil {
		c.repoError(ctx, "update plot", err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// DeletePlot handles DELETE /v1/plots/:id
func (c *RecordsController) DeletePlot(ctx *gin.Context) {
	remove(ctx, c, c.repo.DeletePlot)
}

// ListPlantings handles GET /v1/plantings
func (c *RecordsController) ListPlantings(ctx *gin.Context) {
	list(ctx, c, c.repo.ListPlantings)
}

// GetPlanting handles GET /v1/plantings/:id
func (c *RecordsController) GetPlanting(ctx *gin.Context) {
	get(ctx, c, c.repo.GetPlanting)
}

// CreatePlanting handles POST /v1/plantings. days_to_harvest defaults to
// 120 and yield_ton_per_rai to 1.5 when omitted.
func (c *RecordsController) CreatePlanting(ctx *gin.Context) {
	var req plantingRequest
	if !c.bind(ctx, &req) || !c.requirePlot(ctx, req.PlotID) {
		return
	}
	p := newPlanting()
	if err := req.applyTo(p); err != nil {
		c.badRequest(ctx, "Invalid plant_date", err)
		return
	}
	if err := c.repo.CreatePlanting(ctx.Request.Context(), p); err != nil {
		c.repoError(ctx, "create planting", err)
		return
	}
	ctx.JSON(http.StatusCreated, p)
}

// UpdatePlanting handles PUT /v1/plantings/:id. The harvest date follows
// any change to plant_date or days_to_harvest since it is never stored.
func (c *RecordsController) UpdatePlanting(ctx *gin.Context) {
	id, ok := c.parseID(ctx)
	if !ok {
		return
	}
	var req plantingRequest
	if !c.bind(ctx, &req) || !c.requirePlot(ctx, req.PlotID) {
		return
	}
	p, err := c.repo.GetPlanting(ctx.Request.Context(), id)
	if err != nil {
		c.repoError(ctx, "get planting", err)
		return
	}
	if err := req.applyTo(p); err != nil {
		c.badRequest(ctx, "Invalid plant_date", err)
		return
	}
	if err := c.repo.UpdatePlanting(ctx.Request.Context(), p); err != nil {
		c.repoError(ctx, "update planting", err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// DeletePlanting handles DELETE /v1/plantings/:id
func (c *RecordsController) DeletePlanting(ctx *gin.Context) {
	remove(ctx, c, c.repo.DeletePlanting)
}

func list[T any](ctx *gin.Context, c *RecordsController, fetch func(context.Context) ([]T, error)) {
	out, err := fetch(ctx.Request.Context())
	if err != nil {
		c.repoError(ctx, "list records", err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

func get[T any](ctx *gin.Context, c *RecordsController, fetch func(context.Context, uint) (*T, error)) {
	id, ok := c.parseID(ctx)
	if !ok {
		return
	}
	out, err := fetch(ctx.Request.Context(), id)
	if err != nil {
		c.repoError(ctx, "get record", err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}

func remove(ctx *gin.Context, c *RecordsController, del func(context.Context, uint) error) {
	id, ok := c.parseID(ctx)
	if !ok {
		return
	}
	if err := del(ctx.Request.Context(), id); err != nil {
		c.repoError(ctx, "delete record", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *RecordsController) parseID(ctx *gin.Context) (uint, bool) {
	idStr := ctx.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		c.logger.Warn("invalid id", "id", idStr, "path", ctx.FullPath(), "error", err.Error())
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid id",
			"message": "id must be a valid unsigned integer",
		})
		return 0, false
	}
	return uint(id), true
}

func (c *RecordsController) bind(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		c.badRequest(ctx, "Invalid request body", err)
		return false
	}
	return true
}

func (c *RecordsController) requireFarmer(ctx *gin.Context, id uint) bool {
	if _, err := c.repo.GetFarmer(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.badRequest(ctx, "Unknown farmer", err)
		} else {
			c.repoError(ctx, "get farmer", err)
		}
		return false
	}
	return true
}

func (c *RecordsController) requirePlot(ctx *gin.Context, id uint) bool {
	if _, err := c.repo.GetPlot(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.badRequest(ctx, "Unknown plot", err)
		} else {
			c.repoError(ctx, "get plot", err)
		}
		return false
	}
	return true
}

func (c *RecordsController) badRequest(ctx *gin.Context, title string, err error) {
	c.logger.Warn("rejected record request",
		"path", ctx.FullPath(),
		"reason", title,
		"error", err.Error(),
	)
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   title,
		"message": err.Error(),
	})
}

func (c *RecordsController) repoError(ctx *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
		return
	case errors.Is(err, repository.ErrConflict):
		c.logger.Warn("conflicting record", "op", op, "path", ctx.FullPath(), "error", err.Error())
		ctx.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"message": err.Error(),
		})
		return
	case errors.Is(err, model.ErrReservedCode):
		c.badRequest(ctx, "Reserved farmer code", err)
		return
	}
	c.logger.Error("repository operation failed",
		"op", op,
		"path", ctx.FullPath(),
		"error", err.Error(),
	)
	_ = ctx.Error(err)
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": fmt.Sprintf("Failed to %s", op),
	})
}
