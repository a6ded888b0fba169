package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matteoferri/habitlens-engine/internal/core/domain"
	"github.com/matteoferri/habitlens-engine/internal/core/services"
)

const (
	defaultRangeDays = 30
	maxRangeDays     = 366
	maxForecastDays  = 90
)

type AnalyticsHandler struct {
	svc *services.AnalyticsService
}

func NewAnalyticsHandler(svc *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	habits := router.Group("/analytics/habits/:habitID")
	{
		habits.GET("/summary", h.Summary)
		habits.GET("/timing", h.Timing)
		habits.GET("/forecast", h.Forecast)
		habits.GET("/anomalies", h.Anomalies)
		habits.GET("/formation", h.Formation)
	}
	router.GET("/analytics/correlations", h.Correlate)
}

// parseDateRange reads start_date/end_date query params (YYYY-MM-DD),
// defaulting to the trailing 30 days. Malformed ranges abort the request
// before any computation runs.
func parseDateRange(c *gin.Context) (time.Time, time.Time, bool) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(defaultRangeDays - 1))
	var err error

	if s := c.Query("end_date"); s != "" {
		end, err = time.Parse(domain.DateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, expected YYYY-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		start = end.AddDate(0, 0, -(defaultRangeDays - 1))
	}
	if s := c.Query("start_date"); s != "" {
		start, err = time.Parse(domain.DateLayout, s)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, expected YYYY-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
	}

	if start.After(end) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_date cannot be after end_date"})
		return time.Time{}, time.Time{}, false
	}
	// inclusive day count: a diff of maxRangeDays already spans one day too many
	if end.Sub(start).Hours()/24 >= maxRangeDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date range too large, max 1 year allowed"})
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

func requireUserID(c *gin.Context) (string, bool) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing user id header"})
		return "", false
	}
	return userID, true
}

func (h *AnalyticsHandler) Summary(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	overview, err := h.svc.HabitSummary(c.Request.Context(), userID, c.Param("habitID"), start, end)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

func (h *AnalyticsHandler) Timing(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	result, err := h.svc.Timing(c.Request.Context(), userID, c.Param("habitID"), start, end)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AnalyticsHandler) Forecast(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	days := 7
	if s := c.Query("days"); s != "" {
		parsed, err := strconv.Atoi(s)
		if err != nil || parsed <= 0 || parsed > maxForecastDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 90"})
			return
		}
		days = parsed
	}

	forecast, err := h.svc.Forecast(c.Request.Context(), userID, c.Param("habitID"), days)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, forecast)
}

func (h *AnalyticsHandler) Anomalies(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	anomalies, err := h.svc.Anomalies(c.Request.Context(), userID, c.Param("habitID"), start, end)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"anomalies": anomalies})
}

func (h *AnalyticsHandler) Formation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	prediction, err := h.svc.Formation(c.Request.Context(), userID, c.Param("habitID"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, prediction)
}

func (h *AnalyticsHandler) Correlate(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	habit1 := c.Query("habit1")
	habit2 := c.Query("habit2")
	if habit1 == "" || habit2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "habit1 and habit2 are required"})
		return
	}

	start, end, ok := parseDateRange(c)
	if !ok {
		return
	}

	result, err := h.svc.Correlate(c.Request.Context(), userID, habit1, habit2, start, end)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDateRange) ||
		errors.Is(err, domain.ErrSameHabit) ||
		errors.Is(err, domain.ErrInvalidForecastDays):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrMetricsNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no metrics computed yet"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)

		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
