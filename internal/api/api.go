// Package api exposes bar lookups over HTTP.
package api

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	glog "github.com/goliatone/go-logger/glog"

	"TopstepSentinel/internal/model"
	"TopstepSentinel/internal/recorder"
)

const (
	DefaultTimeout      = 60 * time.Second
	ServiceName         = "topstep-sentinel"
	ServiceVersion      = "1.0.0"
	RequestIDContextKey = "request_id"
	RequestIDHeaderKey  = "X-Request-ID"
)

// SnapshotService looks up the latest closed daily bar of a symbol root.
type SnapshotService interface {
	Snapshot(ctx context.Context, symbol string, live bool) (*model.Snapshot, error)
}

// BarStore returns previously recorded bars.
type BarStore interface {
	LatestBar(symbol string) (*recorder.BarRecord, error)
}

// Handler serves the HTTP API.
type Handler struct {
	service SnapshotService
	store   BarStore
	logger  glog.Logger
}

// NewHandler creates a Handler. A nil store disables the stored-bar route.
func NewHandler(service SnapshotService, store BarStore, logger glog.Logger) *Handler {
	if logger == nil {
		logger = glog.Nop()
	}
	return &Handler{service: service, store: store, logger: logger}
}

// Routes configures all API routes.
func (h *Handler) Routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggerMiddleware(h.logger))
	router.Use(gin.Recovery())

	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	v1.GET("/bars/:symbol/latest", h.LatestBar)
	if h.store != nil {
		v1.GET("/bars/:symbol/stored", h.StoredBar)
	}
	return router
}
