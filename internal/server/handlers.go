package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taxadvisor/internal/explain"
	"taxadvisor/internal/ingest"
	"taxadvisor/internal/logger"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusInfo is what the health endpoint reports about the deployment.
type StatusInfo struct {
	GenerationConfigured   bool   `json:"generationConfigured"`
	RetrievalEndpoint      string `json:"retrievalEndpoint"`
	NotificationConfigured bool   `json:"notificationConfigured"`
}

// HealthResponse is the health endpoint payload.
type HealthResponse struct {
	Status string     `json:"status"`
	Info   StatusInfo `json:"info"`
}

// IngestRequest selects what to ingest: a directory or explicit paths.
type IngestRequest struct {
	Dir   string   `json:"dir,omitempty"`
	Paths []string `json:"paths,omitempty"`
}

// Handler carries the injected services used by the HTTP layer.
type Handler struct {
	orchestrator   *explain.Orchestrator
	ingester       *ingest.Service
	status         StatusInfo
	requestTimeout time.Duration
}

func NewHandler(orchestrator *explain.Orchestrator, ingester *ingest.Service, status StatusInfo, requestTimeout time.Duration) *Handler {
	if requestTimeout <= 0 {
		requestTimeout = 90 * time.Second
	}
	return &Handler{
		orchestrator:   orchestrator,
		ingester:       ingester,
		status:         status,
		requestTimeout: requestTimeout,
	}
}

// Explain handles POST /api/explain.
func (h *Handler) Explain(c *gin.Context) {
	var req explain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "malformed request body", err)
		return
	}

	// The deadline bounds the whole pipeline, including the generation
	// retry/fallback chain.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.requestTimeout)
	defer cancel()

	resp, err := h.orchestrator.Explain(ctx, req)
	if err != nil {
		var verr *explain.ValidationError
		if errors.As(err, &verr) {
			sendError(c, http.StatusBadRequest, verr.Error(), err)
			return
		}
		sendError(c, http.StatusInternalServerError, "internal error", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Info: h.status})
}

// Ingest handles POST /api/ingest. Unlike retrieval during explain,
// ingestion failures are surfaced loudly.
func (h *Handler) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "malformed request body", err)
		return
	}
	if req.Dir == "" && len(req.Paths) == 0 {
		sendError(c, http.StatusBadRequest, "dir or paths is required", nil)
		return
	}

	var (
		res *ingest.Result
		err error
	)
	if req.Dir != "" {
		res, err = h.ingester.IngestDir(c.Request.Context(), req.Dir)
	} else {
		res, err = h.ingester.IngestPaths(c.Request.Context(), req.Paths)
	}
	if err != nil {
		sendError(c, http.StatusBadGateway, "ingestion failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// sendError combines logging and the JSON error response.
func sendError(c *gin.Context, statusCode int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
	)
	c.JSON(statusCode, ErrorResponse{Error: message})
}
