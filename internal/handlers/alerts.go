package handlers

import (
	"net/http"
	"strconv"
	"time"

	"smart_ems/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 100

	errAlertNotFound    = "alert not found"
	errSeverityInvalid  = "invalid 'severity'; use info, warning, critical or emergency"
	errLimitInvalid     = "invalid 'limit'; use a positive integer"
	errRetentionInvalid = "invalid 'retention_hours'; use a non-negative number"
	statusAcknowledged  = "acknowledged"
	statusResolved      = "resolved"
)

// EvaluateRequest is the payload of POST /api/v1/alerts/evaluate.
type EvaluateRequest struct {
	Readings    []models.Reading          `json:"readings" binding:"required"`
	Diagnostics []models.DiagnosticResult `json:"diagnostics,omitempty"`
}

// @Summary      List active alerts
// @Tags         alerts
// @Produce      json
// @Param        severity  query  string  false  "Only alerts of this severity"  Enums(info,warning,critical,emergency)
// @Success      200  {object}  map[string]interface{}  "count, alerts"
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/alerts [get]
func (h *Handler) listAlerts(c *gin.Context) {
	var alerts []models.Alert
	if qs := c.Query("severity"); qs != "" {
		sev, err := models.ParseSeverity(qs)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errSeverityInvalid})
			return
		}
		alerts = h.services.Alerts.BySeverity(sev)
	} else {
		alerts = h.services.Alerts.Active()
	}
	respondAlerts(c, alerts)
}

// @Summary      Active alerts by priority
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, alerts"
// @Router       /api/v1/alerts/prioritized [get]
func (h *Handler) prioritizedAlerts(c *gin.Context) {
	respondAlerts(c, h.services.Alerts.Prioritize())
}

// @Summary      Alert summary
// @Tags         alerts
// @Produce      json
// @Success      200  {object}  alerting.Summary
// @Router       /api/v1/alerts/summary [get]
func (h *Handler) alertSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Alerts.Summary())
}

// @Summary      Alert history
// @Description  Alerts as they were when raised, oldest first.
// @Tags         alerts
// @Produce      json
// @Param        limit  query  int  false  "Most recent alerts to return"  default(100)
// @Success      200  {object}  map[string]interface{}  "count, alerts"
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/alerts/history [get]
func (h *Handler) alertHistory(c *gin.Context) {
	limit := defaultHistoryLimit
	if qs := c.Query("limit"); qs != "" {
		v, err := strconv.Atoi(qs)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errLimitInvalid})
			return
		}
		limit = v
	}
	respondAlerts(c, h.services.Alerts.History(limit))
}

// @Summary      Get alert
// @Tags         alerts
// @Produce      json
// @Param        id   path      string  true  "Alert id"
// @Success      200  {object}  models.Alert
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/alerts/{id} [get]
func (h *Handler) getAlert(c *gin.Context) {
	a, ok := h.services.Alerts.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": errAlertNotFound})
		return
	}
	c.JSON(http.StatusOK, a)
}

// @Summary      Evaluate readings against the alert rules
// @Tags         alerts
// @Accept       json
// @Produce      json
// @Param        body  body   EvaluateRequest  true  "Readings and optional diagnostics"
// @Success      200   {object}  map[string]interface{}  "count, alerts"
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/alerts/evaluate [post]
func (h *Handler) evaluateAlerts(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	respondAlerts(c, h.services.Alerts.Evaluate(c.Request.Context(), req.Readings, req.Diagnostics))
}

// @Summary      Acknowledge alert
// @Tags         alerts
// @Produce      json
// @Param        id   path      string  true  "Alert id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/alerts/{id}/acknowledge [post]
func (h *Handler) acknowledgeAlert(c *gin.Context) {
	id := c.Param("id")
	if !h.services.Alerts.Acknowledge(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": errAlertNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusAcknowledged, "id": id})
}

// @Summary      Resolve alert
// @Tags         alerts
// @Produce      json
// @Param        id   path      string  true  "Alert id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/alerts/{id}/resolve [post]
func (h *Handler) resolveAlert(c *gin.Context) {
	id := c.Param("id")
	if !h.services.Alerts.Resolve(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": errAlertNotFound})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusResolved, "id": id})
}

// @Summary      Purge old resolved alerts
// @Tags         alerts
// @Produce      json
// @Param        retention_hours  query  number  false  "Keep alerts resolved within this many hours"  default(24)
// @Success      200  {object}  map[string]interface{}  "count, alerts"
// @Failure      400  {object}  map[string]string
// @Router       /api/v1/alerts/cleanup [post]
func (h *Handler) cleanupAlerts(c *gin.Context) {
	retention := h.retention
	if qs := c.Query("retention_hours"); qs != "" {
		v, err := strconv.ParseFloat(qs, 64)
		if err != nil || v < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": errRetentionInvalid})
			return
		}
		retention = time.Duration(v * float64(time.Hour))
	}
	respondAlerts(c, h.services.Alerts.Cleanup(c.Request.Context(), retention))
}

func respondAlerts(c *gin.Context, alerts []models.Alert) {
	if alerts == nil {
		alerts = []models.Alert{}
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(alerts),
		"alerts": alerts,
	})
}
