package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      List devices
// @Tags         devices
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, devices"
// @Router       /api/v1/devices [get]
func (h *Handler) listDevices(c *gin.Context) {
	devices := h.services.Monitoring.Devices()
	c.JSON(http.StatusOK, gin.H{
		"count":   len(devices),
		"devices": devices,
	})
}

// @Summary      Device summary
// @Description  Counts per device class and the health of readings from the last minute.
// @Tags         devices
// @Produce      json
// @Success      200  {object}  service.DeviceSummary
// @Router       /api/v1/devices/summary [get]
func (h *Handler) deviceSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.DeviceSummary())
}

// @Summary      Latest reading of a device
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Device id"  example(BAT_001)
// @Success      200  {object}  models.Reading
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id}/latest [get]
func (h *Handler) latestReading(c *gin.Context) {
	r, ok := h.services.Monitoring.LatestReading(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reading for device"})
		return
	}
	c.JSON(http.StatusOK, r)
}
