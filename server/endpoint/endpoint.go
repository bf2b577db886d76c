package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/version"
)

// HealthChecker returns health for the registered components.
type HealthChecker func(ctx context.Context) []component.Health

var startTime = time.Now()

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status     string             `json:"status"`
	Service    string             `json:"service"`
	Timestamp  string             `json:"timestamp"`
	Components []component.Health `json:"components,omitempty"`
}

// Health aggregates component health. Any unhealthy component makes the
// service unhealthy (503); any degraded one makes it degraded (200).
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := HealthResponse{Status: "healthy", Service: serviceName, Timestamp: now()}
		if checker != nil {
			resp.Components = checker(c.Request.Context())
			resp.Status = aggregate(resp.Components)
		}
		code := http.StatusOK
		if resp.Status == "unhealthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, resp)
	}
}

func aggregate(components []component.Health) string {
	status := "healthy"
	for _, ch := range components {
		switch ch.Status {
		case component.StatusUnhealthy:
			return "unhealthy"
		case component.StatusDegraded:
			status = "degraded"
		}
	}
	return status
}

// Readiness answers 503 until every component is healthy or degraded.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ready", http.StatusOK
		if checker != nil && aggregate(checker(c.Request.Context())) == "unhealthy" {
			status, code = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{"status": status, "service": serviceName, "timestamp": now()})
	}
}

// Liveness confirms the process can serve HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "alive", "service": serviceName, "timestamp": now()})
	}
}

// InfoResponse is returned by /info.
type InfoResponse struct {
	Service string `json:"service"`
	*version.Info
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// Info reports build information and uptime. It never includes config.
func Info(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, InfoResponse{
			Service:   serviceName,
			Info:      version.GetVersionInfo(),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Timestamp: now(),
		})
	}
}

// Version reports build version information.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, version.GetVersionInfo())
	}
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }
