package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appmol "github.com/turtacn/KeyIP-Substructure/internal/application/molecule"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/prometheus"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// SubstructureHandler serves the match, screen and anchor endpoints.
type SubstructureHandler struct {
	svc     appmol.Service
	logger  logging.Logger
	metrics *prometheus.AppMetrics
}

// NewSubstructureHandler creates a new SubstructureHandler.  metrics may be nil.
func NewSubstructureHandler(svc appmol.Service, logger logging.Logger, metrics *prometheus.AppMetrics) *SubstructureHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SubstructureHandler{svc: svc, logger: logger, metrics: metrics}
}

// RegisterRoutes mounts the endpoints on g.
func (h *SubstructureHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/match", h.Match)
	g.POST("/screen", h.Screen)
	g.POST("/anchors", h.Anchors)
}

// Match handles POST /api/v1/substructure/match.
func (h *SubstructureHandler) Match(c *gin.Context) {
	var req mtypes.MatchRequestDTO
	if err := bindJSON(c, &req); err != nil {
		writeAppError(c, h.logger, h.metrics, err)
		return
	}
	res, err := h.svc.Match(c.Request.Context(), &req)
	if err != nil {
		writeAppError(c, h.logger, h.metrics, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Screen handles POST /api/v1/substructure/screen.
func (h *SubstructureHandler) Screen(c *gin.Context) {
	var req mtypes.ScreenRequestDTO
	if err := bindJSON(c, &req); err != nil {
		writeAppError(c, h.logger, h.metrics, err)
		return
	}
	res, err := h.svc.Screen(c.Request.Context(), &req)
	if err != nil {
		writeAppError(c, h.logger, h.metrics, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Anchors handles POST /api/v1/substructure/anchors.
func (h *SubstructureHandler) Anchors(c *gin.Context) {
	var req mtypes.AnchorRequestDTO
	if err := bindJSON(c, &req); err != nil {
		writeAppError(c, h.logger, h.metrics, err)
		return
	}
	res, err := h.svc.Anchors(c.Request.Context(), &req)
	if err != nil {
		writeAppError(c, h.logger, h.metrics, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
