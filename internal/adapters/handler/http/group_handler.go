package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/matteoferri/habitlens-engine/internal/core/services"
)

type GroupHandler struct {
	svc *services.AnalyticsService
}

func NewGroupHandler(svc *services.AnalyticsService) *GroupHandler {
	return &GroupHandler{svc: svc}
}

func (h *GroupHandler) RegisterRoutes(router *gin.RouterGroup) {
	groups := router.Group("/groups/:groupID")
	{
		groups.GET("/dynamics", h.Dynamics)
		groups.GET("/dynamics/latest", h.LatestDynamics)
		groups.GET("/completions", h.Completions)
		groups.GET("/challenge", h.Challenge)
	}
}

func (h *GroupHandler) Dynamics(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	result, err := h.svc.GroupDynamics(c.Request.Context(), c.Param("groupID"), start, end)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// LatestDynamics reads the last computed metrics from the derived cache
// instead of recomputing, so dashboards can poll cheaply between worker runs.
func (h *GroupHandler) LatestDynamics(c *gin.Context) {
	result, err := h.svc.LatestGroupMetrics(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *GroupHandler) Completions(c *gin.Context) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	result, err := h.svc.GroupCompletions(c.Request.Context(), c.Param("groupID"), start, end)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *GroupHandler) Challenge(c *gin.Context) {
	spec, err := h.svc.ProposeChallenge(c.Request.Context(), c.Param("groupID"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, spec)
}
