package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"TopstepSentinel/internal/model"
	"TopstepSentinel/internal/topstep"
)

type barResponse struct {
	Symbol     string     `json:"symbol"`
	ContractID string     `json:"contract_id"`
	Live       bool       `json:"live"`
	FetchedAt  *time.Time `json:"fetched_at,omitempty"`
	Bar        model.Bar  `json:"bar"`
}

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   ServiceVersion,
	})
}

// LatestBar handles GET /api/v1/bars/:symbol/latest?live=bool.
func (h *Handler) LatestBar(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	live := false
	if raw := c.Query("live"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(c, http.StatusBadRequest, "live must be a boolean", "")
			return
		}
		live = v
	}

	snap, err := h.service.Snapshot(ctx, symbol, live)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if snap.ContractID == "" {
		h.respondError(c, http.StatusNotFound, "no active contract for "+symbol, "NO_CONTRACT")
		return
	}
	if !snap.Found() {
		h.respondError(c, http.StatusNotFound, "no closed daily bar for "+snap.ContractID, "NO_BAR")
		return
	}

	fetchedAt := snap.FetchedAt
	c.JSON(http.StatusOK, barResponse{
		Symbol:     symbol,
		ContractID: snap.ContractID,
		Live:       live,
		FetchedAt:  &fetchedAt,
		Bar:        *snap.Bar,
	})
}

// StoredBar handles GET /api/v1/bars/:symbol/stored.
func (h *Handler) StoredBar(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	rec, err := h.store.LatestBar(symbol)
	if err != nil {
		h.handleError(c, err)
		return
	}
	if rec == nil {
		h.respondError(c, http.StatusNotFound, "no stored bar for "+symbol, "NO_BAR")
		return
	}
	c.JSON(http.StatusOK, barResponse{
		Symbol:     rec.Symbol,
		ContractID: rec.ContractID,
		Live:       rec.Live,
		Bar:        rec.Bar,
	})
}

// statusFor maps a lookup error to an HTTP status.
func statusFor(err error) int {
	switch {
	case topstep.IsBadInput(err):
		return http.StatusBadRequest
	case topstep.IsAuthError(err):
		return http.StatusUnauthorized
	case topstep.IsTransportError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := statusFor(err)
	h.logger.Error("API error",
		"request_id", c.GetString(RequestIDContextKey),
		"path", c.Request.URL.Path,
		"status", status,
		"error", err,
	)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	h.respondError(c, status, message, topstep.TextCode(err))
}

func (h *Handler) respondError(c *gin.Context, status int, message, code string) {
	c.JSON(status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: c.GetString(RequestIDContextKey),
	})
}
