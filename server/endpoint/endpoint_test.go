package endpoint

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/component"
)

func serve(t *testing.T, path string, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET(path, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	return rr
}

func TestHealthAggregation(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []component.HealthStatus
		wantStatus string
		wantCode   int
	}{
		{"no components", nil, "healthy", http.StatusOK},
		{"all healthy", []component.HealthStatus{component.StatusHealthy}, "healthy", http.StatusOK},
		{"degraded", []component.HealthStatus{component.StatusHealthy, component.StatusDegraded}, "degraded", http.StatusOK},
		{"unhealthy", []component.HealthStatus{component.StatusDegraded, component.StatusUnhealthy}, "unhealthy", http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := func(context.Context) []component.Health {
				out := make([]component.Health, 0, len(tt.statuses))
				for _, s := range tt.statuses {
					out = append(out, component.Health{Name: "c", Status: s})
				}
				return out
			}
			rr := serve(t, "/health", Health("voxscribe", checker))
			if rr.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var resp HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.Service != "voxscribe" {
				t.Errorf("expected %s for voxscribe, got %+v", tt.wantStatus, resp)
			}
		})
	}
}

func TestReadinessNotReady(t *testing.T) {
	checker := func(context.Context) []component.Health {
		return []component.Health{{Name: "redis", Status: component.StatusUnhealthy}}
	}
	if rr := serve(t, "/ready", Readiness("voxscribe", checker)); rr.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rr.Code)
	}
}

func TestInfoAndVersion(t *testing.T) {
	rr := serve(t, "/info", Info("voxscribe"))
	var info map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info["service"] != "voxscribe" || info["version"] == nil || info["uptime"] == nil {
		t.Errorf("unexpected info body %v", info)
	}

	rr = serve(t, "/version", Version())
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
