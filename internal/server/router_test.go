package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"harvest-planner/internal/config"
	"harvest-planner/internal/database"
	"harvest-planner/internal/middleware"

	"github.com/gin-gonic/gin"
	"log/slog"
)

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, slog.Default())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	router := NewRouter(db, slog.Default(), middleware.NewMetrics())

	tests := []struct {
		path     string
		expected int
	}{
		{path: "/healthz", expected: http.StatusOK},
		{path: "/metrics", expected: http.StatusOK},
		{path: "/v1/dashboard", expected: http.StatusOK},
		{path: "/v1/harvest/forecast", expected: http.StatusOK},
		{path: "/v1/harvest/series?month=2024-06", expected: http.StatusOK},
		{path: "/v1/harvest/export", expected: http.StatusOK},
		{path: "/v1/farmers", expected: http.StatusOK},
		{path: "/v1/plots", expected: http.StatusOK},
		{path: "/v1/plantings", expected: http.StatusOK},
		{path: "/v1/unknown", expected: http.StatusNotFound},
	}
	for _, tt := range tests {
		req, _ := http.NewRequest("GET", tt.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != tt.expected {
			t.Errorf("%s: expected status code %d, got %d", tt.path, tt.expected, w.Code)
		}
	}
}

func TestNewRouter_NilMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: ":memory:"}, slog.Default())
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	router := NewRouter(db, slog.Default(), nil)

	for _, path := range []string{"/healthz", "/metrics"} {
		req, _ := http.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("%s: expected status code %d, got %d", path, http.StatusOK, w.Code)
		}
	}
}
