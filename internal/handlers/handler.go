package handlers

import (
	"time"

	"smart_ems/internal/logger"
	"smart_ems/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services  *service.Service
	log       *logger.Logger
	retention time.Duration
}

// Option customizes a Handler.
type Option func(*Handler)

// WithRetention sets the cleanup retention used when a request names none.
func WithRetention(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.retention = d
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, retention: service.DefaultRetention}
	for _, o := range opts {
		o(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)

	h.registerAPIRoutes(router)

	// live dashboard feed on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerDeviceRoutes(api)
		h.registerPipelineRoutes(api)
		h.registerAlertRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	devices := api.Group("/devices")
	{
		devices.GET("", h.listDevices)
		devices.GET("/summary", h.deviceSummary)
		devices.GET("/:id/latest", h.latestReading)
	}
}

func (h *Handler) registerPipelineRoutes(api *gin.RouterGroup) {
	api.POST("/tick", h.tick)
	api.POST("/diagnostics", h.diagnose)
	api.GET("/diagnostics/summary", h.healthSummary)
	api.GET("/export", h.export)
}

func (h *Handler) registerAlertRoutes(api *gin.RouterGroup) {
	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.listAlerts)
		alerts.GET("/prioritized", h.prioritizedAlerts)
		alerts.GET("/summary", h.alertSummary)
		alerts.GET("/history", h.alertHistory)
		alerts.GET("/:id", h.getAlert)
		// Body example: {"readings":[...],"diagnostics":[...]}
		alerts.POST("/evaluate", h.evaluateAlerts)
		alerts.POST("/cleanup", h.cleanupAlerts)
		alerts.POST("/:id/acknowledge", h.acknowledgeAlert)
		alerts.POST("/:id/resolve", h.resolveAlert)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
