package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"harvest-planner/internal/config"
	"harvest-planner/internal/database"
	"harvest-planner/internal/model"
	"harvest-planner/internal/repository"
	"harvest-planner/internal/service"

	"github.com/gin-gonic/gin"
	"log/slog"
)

// setupRecordsRouter wires records and harvest routes over an in-memory database
func setupRecordsRouter(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, slog.Default())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	repo := repository.NewFarmRepository(db)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/v1")
	NewRecordsController(repo, slog.Default()).Register(v1)
	NewHarvestController(service.NewHarvestService(repo, slog.Default()), slog.Default()).Register(v1)
	return r
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecords_CreateAndForecast(t *testing.T) {
	router := setupRecordsRouter(t)

	w := doJSON(t, router, "POST", "/v1/farmers", gin.H{"name": "Somchai Kaewkla", "phone": "0812345678"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create farmer: expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var farmer model.Farmer
	if err := json.Unmarshal(w.Body.Bytes(), &farmer); err != nil {
		t.Fatalf("Failed to unmarshal farmer: %v", err)
	}
	if farmer.Code != "F0001" {
		t.Errorf("Expected generated code F0001, got %q", farmer.Code)
	}

	w = doJSON(t, router, "POST", "/v1/plots", gin.H{"farmer_id": farmer.ID, "plot_name": "North Field", "area_rai": 2.0})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plot: expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var plot model.Plot
	if err := json.Unmarshal(w.Body.Bytes(), &plot); err != nil {
		t.Fatalf("Failed to unmarshal plot: %v", err)
	}

	// days_to_harvest and yield_ton_per_rai fall back to 120 and 1.5
	w = doJSON(t, router, "POST", "/v1/plantings", gin.H{"plot_id": plot.ID, "variety": "KK3", "plant_date": "2024-01-10"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create planting: expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	var planting model.Planting
	if err := json.Unmarshal(w.Body.Bytes(), &planting); err != nil {
		t.Fatalf("Failed to unmarshal planting: %v", err)
	}
	if planting.DaysToHarvest != 120 || planting.YieldTonPerRai != 1.5 || planting.Status != model.DefaultStatus {
		t.Errorf("Expected planting defaults, got %+v", planting)
	}

	w = doJSON(t, router, "GET", "/v1/harvest/series", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("series: expected %d, got %d", http.StatusOK, w.Code)
	}
	if got := w.Body.String(); got != `[{"month":"2024-05","tons":3}]` {
		t.Errorf("Unexpected series %s", got)
	}

	w = doJSON(t, router, "GET", "/v1/harvest/export", nil)
	expected := "month,farmer_code,farmer_name,plot_name,area_rai,variety,plant_date,harvest_date,expected_tons,status\n" +
		"2024-05,F0001,Somchai Kaewkla,North Field,2,KK3,2024-01-10,2024-05-09,3.000,planted\n"
	if w.Body.String() != expected {
		t.Errorf("Unexpected export:\n%s", w.Body.String())
	}
}

func TestRecords_DeletedFarmerStillForecast(t *testing.T) {
	router := setupRecordsRouter(t)

	doJSON(t, router, "POST", "/v1/farmers", gin.H{"name": "Malee"})
	doJSON(t, router, "POST", "/v1/plots", gin.H{"farmer_id": 1, "plot_name": "River Bend", "area_rai": 0.5})
	doJSON(t, router, "POST", "/v1/plantings", gin.H{"plot_id": 1, "plant_date": "2024-02-01", "days_to_harvest": 100, "yield_ton_per_rai": 2.5})

	if w := doJSON(t, router, "DELETE", "/v1/farmers/1", nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete farmer: expected %d, got %d", http.StatusNoContent, w.Code)
	}

	w := doJSON(t, router, "GET", "/v1/harvest/forecast", nil)
	var resp service.ForecastResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to unmarshal forecast: %v", err)
	}
	if len(resp.Rows) != 1 {
		t.Fatalf("Expected the orphaned planting to remain, got %d rows", len(resp.Rows))
	}
	if resp.Rows[0].FarmerName != "" || resp.Rows[0].PlotName != "River Bend" || resp.Rows[0].ExpectedTons != 1.25 {
		t.Errorf("Unexpected orphan row %+v", resp.Rows[0])
	}
}

func TestRecords_UpdatePlantingMovesHarvestMonth(t *testing.T) {
	router := setupRecordsRouter(t)

	doJSON(t, router, "POST", "/v1/farmers", gin.H{"name": "Somchai"})
	doJSON(t, router, "POST", "/v1/plots", gin.H{"farmer_id": 1, "plot_name": "North", "area_rai": 2.0})
	doJSON(t, router, "POST", "/v1/plantings", gin.H{"plot_id": 1, "plant_date": "2024-01-10"})

	w := doJSON(t, router, "PUT", "/v1/plantings/1", gin.H{"plot_id": 1, "plant_date": "2024-01-10", "days_to_harvest": 150})
	if w.Code != http.StatusOK {
		t.Fatalf("update planting: expected %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	w = doJSON(t, router, "GET", "/v1/harvest/series", nil)
	if got := w.Body.String(); got != `[{"month":"2024-06","tons":3}]` {
		t.Errorf("Unexpected series after update %s", got)
	}
}

func TestRecords_Validation(t *testing.T) {
	router := setupRecordsRouter(t)
	doJSON(t, router, "POST", "/v1/farmers", gin.H{"name": "Somchai"})

	tests := []struct {
		name     string
		method   string
		path     string
		body     interface{}
		expected int
	}{
		{name: "farmer without name", method: "POST", path: "/v1/farmers", body: gin.H{"phone": "1"}, expected: http.StatusBadRequest},
		{name: "plot for unknown farmer", method: "POST", path: "/v1/plots", body: gin.H{"farmer_id": 9, "plot_name": "x", "area_rai": 1}, expected: http.StatusBadRequest},
		{name: "plot with negative area", method: "POST", path: "/v1/plots", body: gin.H{"farmer_id": 1, "plot_name": "x", "area_rai": -1}, expected: http.StatusBadRequest},
		{name: "plot without area", method: "POST", path: "/v1/plots", body: gin.H{"farmer_id": 1, "plot_name": "x"}, expected: http.StatusBadRequest},
		{name: "planting for unknown plot", method: "POST", path: "/v1/plantings", body: gin.H{"plot_id": 5, "plant_date": "2024-01-01"}, expected: http.StatusBadRequest},
		{name: "invalid id", method: "GET", path: "/v1/farmers/abc", expected: http.StatusBadRequest},
		{name: "missing farmer", method: "GET", path: "/v1/farmers/99", expected: http.StatusNotFound},
		{name: "delete missing plot", method: "DELETE", path: "/v1/plots/99", expected: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, tt.method, tt.path, tt.body)
			if w.Code != tt.expected {
				t.Errorf("Expected status code %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestRecords_FarmerCodeErrors(t *testing.T) {
	router := setupRecordsRouter(t)
	doJSON(t, router, "POST", "/v1/farmers", gin.H{"name": "Somchai", "code": "KK-01"})

	tests := []struct {
		name     string
		body     interface{}
		expected int
	}{
		{name: "generated shape", body: gin.H{"name": "Malee", "code": "F0002"}, expected: http.StatusBadRequest},
		{name: "duplicate code", body: gin.H{"name": "Malee", "code": "KK-01"}, expected: http.StatusConflict},
		{name: "generated after rejection", body: gin.H{"name": "Malee"}, expected: http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/v1/farmers", tt.body)
			if w.Code != tt.expected {
				t.Errorf("Expected status code %d, got %d: %s", tt.expected, w.Code, w.Body.String())
			}
		})
	}
}

func TestRecords_InvalidPlantDate(t *testing.T) {
	router := setupRecordsRouter(t)
	doJSON(t, router, "POST", "/v1/farmers", gin.H{"name": "Somchai"})
	doJSON(t, router, "POST", "/v1/plots", gin.H{"farmer_id": 1, "plot_name": "North", "area_rai": 2.0})

	w := doJSON(t, router, "POST", "/v1/plantings", gin.H{"plot_id": 1, "plant_date": "10/01/2024"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status code %d, got %d", http.StatusBadRequest, w.Code)
	}
}
