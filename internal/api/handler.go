package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"ChipPulse/internal/model"
)

// Dashboard handles GET /api/v1/dashboard. It runs the full pipeline for
// the requested parameters and publishes the result as the latest snapshot.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	req := h.defaults

	if v := c.Query("period"); v != "" {
		period, err := model.ParsePeriod(v)
		if err != nil {
			h.handleError(c, err, http.StatusBadRequest, err.Error())
			return
		}
		req.Period = period
	}
	if v := c.Query("interval"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			h.handleError(c, err, http.StatusBadRequest, "interval must be an integer day count")
			return
		}
		req.IntervalDays = days
	}
	// An absent tickers parameter means the configured basket; an explicitly
	// empty one is an invalid request and gets rejected by the pipeline.
	if v, ok := c.GetQuery("tickers"); ok {
		req.Tickers = splitTickers(v)
	}

	seq := h.holder.Begin()
	snap, err := h.runner.Run(ctx, req)
	if err != nil {
		h.handleError(c, err, statusForError(err), err.Error())
		return
	}
	h.holder.Publish(seq, snap, req)

	c.JSON(http.StatusOK, toSnapshotDTO(snap))
}

// Snapshot handles GET /api/v1/snapshot, serving the last published result.
func (h *Handler) Snapshot(c *gin.Context) {
	snap := h.holder.Latest()
	if snap == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no snapshot published yet"})
		return
	}
	c.JSON(http.StatusOK, toSnapshotDTO(snap))
}

// Tickers handles GET /api/v1/tickers, describing the configured basket.
func (h *Handler) Tickers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"tickers":        h.defaults.Tickers,
		"default_period": string(h.defaults.Period),
		"interval_days":  h.defaults.IntervalDays,
	})
}

// Company handles GET /api/v1/company/:symbol.
func (h *Handler) Company(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultTimeout)
	defer cancel()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		h.handleError(c, model.ErrInvalidInput, http.StatusBadRequest, "symbol is required")
		return
	}
	if h.profiles == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "company profiles not available"})
		return
	}

	profile, err := h.profiles.FetchCompanyProfile(ctx, symbol)
	if err != nil {
		h.handleError(c, err, http.StatusBadGateway, "company profile unavailable")
		return
	}
	c.JSON(http.StatusOK, toCompanyDTO(profile))
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"service":   ServiceName,
		"version":   ServiceVersion,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrDataUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleError logs the error and sends the HTTP response.
func (h *Handler) handleError(c *gin.Context, err error, statusCode int, userMessage string) {
	requestID := c.GetString(RequestIDContextKey)
	if requestID == "" {
		requestID = "unknown"
	}

	log.Printf("[ERROR] %s %s: %v (status=%d request_id=%s)",
		c.Request.Method, c.Request.URL.Path, err, statusCode, requestID)

	c.JSON(statusCode, gin.H{
		"error":      userMessage,
		"request_id": requestID,
	})
}

func splitTickers(v string) []string {
	var tickers []string
	for _, part := range strings.Split(v, ",") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" {
			continue
		}
		tickers = append(tickers, t)
	}
	return tickers
}
