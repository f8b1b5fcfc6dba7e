package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"smart_ems/internal/diagnostics"
	"smart_ems/internal/models"
	"smart_ems/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK = "ok"

	errTick            = "failed to run pipeline tick"
	errNoDiagnostics   = "no recent diagnostics"
	errHealthSummary   = "failed to summarize health"
	errExport          = "failed to export history"
	errInvalidBodyPref = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// DiagnoseRequest is the optional payload of POST /api/v1/diagnostics.
type DiagnoseRequest struct {
	// Readings to diagnose. When omitted the latest reading of every device is used.
	Readings []models.Reading `json:"readings"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Run one pipeline tick
// @Description  Reads telemetry, diagnoses it and evaluates alerts once, outside the periodic loop.
// @Tags         pipeline
// @Produce      json
// @Success      200  {object}  models.TickResult
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/tick [post]
func (h *Handler) tick(c *gin.Context) {
	res, err := h.services.Pipeline.Tick(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errTick, "pipeline_tick_failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Diagnose readings
// @Tags         diagnostics
// @Accept       json
// @Produce      json
// @Param        body  body   DiagnoseRequest  false  "Readings to diagnose"
// @Success      200   {object}  map[string]interface{}  "count, results"
// @Failure      400   {object}  map[string]string
// @Router       /api/v1/diagnostics [post]
func (h *Handler) diagnose(c *gin.Context) {
	var req DiagnoseRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	readings := req.Readings
	if len(readings) == 0 {
		readings = h.services.Monitoring.LatestReadings()
	}
	results := h.services.Pipeline.DiagnoseAll(c.Request.Context(), readings)
	c.JSON(http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}

// @Summary      Fleet health summary
// @Description  Averages diagnostic results of the last five minutes per component.
// @Tags         diagnostics
// @Produce      json
// @Success      200  {object}  diagnostics.Summary
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/diagnostics/summary [get]
func (h *Handler) healthSummary(c *gin.Context) {
	sum, err := h.services.Monitoring.HealthSummary()
	switch {
	case errors.Is(err, diagnostics.ErrNoDiagnostics), errors.Is(err, diagnostics.ErrNoRecentDiagnostics):
		c.JSON(http.StatusNotFound, gin.H{"error": errNoDiagnostics})
		return
	case err != nil:
		h.logAndJSONError(c, http.StatusInternalServerError, errHealthSummary, "health_summary_failed", err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// @Summary      Export recent history
// @Description  json carries the last 100 readings and alerts; csv carries readings only.
// @Tags         pipeline
// @Produce      json
// @Produce      text/csv
// @Param        format  query  string  false  "Export format"  Enums(json,csv)  default(json)
// @Success      200     {string}  string
// @Failure      400     {object}  map[string]string
// @Failure      500     {object}  map[string]string
// @Router       /api/v1/export [get]
func (h *Handler) export(c *gin.Context) {
	format := strings.ToLower(strings.TrimSpace(c.DefaultQuery("format", "json")))
	body, err := h.services.Exporter.Export(format)
	if err != nil {
		if errors.Is(err, service.ErrUnsupportedFormat) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errExport, "export_failed", err, "format", format)
		return
	}
	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", "attachment; filename=ems_export."+format)
	c.Data(http.StatusOK, contentType, body)
}
