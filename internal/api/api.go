// Package api exposes the dashboard pipeline over HTTP.
//
// The package is split across api.go (handler struct, routing), handler.go
// (request handlers), middleware.go (request id, logging, CORS), and dto.go
// (JSON shapes).
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"ChipPulse/internal/collector"
	"ChipPulse/internal/model"
	"ChipPulse/internal/pipeline"
	"ChipPulse/internal/refresh"
)

const (
	DefaultTimeout      = 60 * time.Second
	ServiceName         = "chip-pulse"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// SnapshotRunner runs one dashboard computation.
type SnapshotRunner interface {
	Run(ctx context.Context, req pipeline.Request) (*model.Snapshot, error)
}

// Handler serves the dashboard API using the Gin framework.
type Handler struct {
	runner   SnapshotRunner
	holder   *refresh.Service
	profiles collector.ProfileFetcher
	defaults pipeline.Request
}

// NewHandler creates an API handler. defaults supplies the basket used when
// a request omits tickers, period, or interval.
func NewHandler(runner SnapshotRunner, holder *refresh.Service, profiles collector.ProfileFetcher, defaults pipeline.Request) *Handler {
	return &Handler{
		runner:   runner,
		holder:   holder,
		profiles: profiles,
		defaults: defaults,
	}
}

// SetupRoutes configures all API routes.
func (h *Handler) SetupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/dashboard", h.Dashboard)
		v1.GET("/snapshot", h.Snapshot)
		v1.GET("/tickers", h.Tickers)
		v1.GET("/company/:symbol", h.Company)
	}
	router.GET("/health", h.HealthCheck)

	return router
}
