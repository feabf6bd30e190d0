package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics holds in-memory request counters keyed by route
type Metrics struct {
	mu         sync.RWMutex
	total      uint64
	errors     uint64
	byEndpoint map[string]*EndpointStats
}

// EndpointStats are the counters of one method + route pair
type EndpointStats struct {
	Requests     uint64 `json:"requests"`
	Errors       uint64 `json:"errors"`
	TotalLatency int64  `json:"total_latency_ms"`
	MaxLatency   int64  `json:"max_latency_ms"`
}

// MetricsSnapshot is a point-in-time copy of Metrics
type MetricsSnapshot struct {
	TotalRequests uint64                   `json:"total_requests"`
	TotalErrors   uint64                   `json:"total_errors"`
	ByEndpoint    map[string]EndpointStats `json:"requests_by_endpoint"`
}

// NewMetrics creates an empty metrics registry
func NewMetrics() *Metrics {
	return &Metrics{byEndpoint: make(map[string]*EndpointStats)}
}

// Record counts one finished request; 5xx responses count as errors
func (m *Metrics) Record(endpoint string, status int, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	s, ok := m.byEndpoint[endpoint]
	if !ok {
		s = &EndpointStats{}
		m.byEndpoint[endpoint] = s
	}
	s.Requests++
	ms := latency.Milliseconds()
	s.TotalLatency += ms
	if ms > s.MaxLatency {
		s.MaxLatency = ms
	}
	if status >= http.StatusInternalServerError {
		m.errors++
		s.Errors++
	}
}

// Snapshot returns a copy of the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := MetricsSnapshot{
		TotalRequests: m.total,
		TotalErrors:   m.errors,
		ByEndpoint:    make(map[string]EndpointStats, len(m.byEndpoint)),
	}
	for k, v := range m.byEndpoint {
		out.ByEndpoint[k] = *v
	}
	return out
}

// Handler serves the current metrics as JSON
func (m *Metrics) Handler(c *gin.Context) {
	c.JSON(http.StatusOK, m.Snapshot())
}
