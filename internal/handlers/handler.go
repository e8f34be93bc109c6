package handlers

import (
	"net/http"
	"time"

	"greenhouse_control/internal/config"
	"greenhouse_control/internal/logger"
	"greenhouse_control/internal/metrics"
	"greenhouse_control/internal/service"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	limiter  *rateLimiter
	proxies  []string
}

// NewHandler constructs a new HTTP handler with dependencies. A nil log discards output.
// Forwarding headers are only honoured from the proxies listed in httpCfg.
func NewHandler(services *service.Service, log *logger.Logger, limits config.RateLimitConfig, httpCfg config.HTTPConfig) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		services: services,
		log:      log,
		limiter:  newRateLimiter(limits.Requests, limits.Window),
		proxies:  httpCfg.TrustedProxies,
	}
}

// newEngine returns a bare router whose ClientIP only trusts the configured proxies.
// The rate limiter keys on ClientIP, so an unlisted client cannot pick its own key.
func (h *Handler) newEngine() *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(h.proxies); err != nil {
		h.log.Errorw("invalid trusted proxies; ignoring forwarding headers", "err", err, "proxies", h.proxies)
		_ = router.SetTrustedProxies(nil)
	}
	return router
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := h.newEngine()
	router.Use(securityHeaders)
	router.Use(ginzap.Ginzap(h.log.Zap(), time.RFC3339, true))
	router.Use(ginzap.CustomRecoveryWithZap(h.log.Zap(), true, h.recovered))
	router.Use(observeRequests)

	router.GET("/health", h.health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.registerAPIRoutes(router)

	router.NoRoute(h.notFound)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api", h.rateLimit, h.tokenAuth)
	{
		api.GET("/status", h.getStatus)
		api.GET("/sensors", h.getSensors)

		api.GET("/actuators", h.listActuators)
		// Body example: {"state":"ON"}
		api.POST("/actuators/:name", h.setActuator)

		api.GET("/culture/phase", h.getPhase)
		// Body example: {"phase":"floraison"}
		api.POST("/culture/phase", h.setPhase)

		// Body example: {"target":"climat","state":true}
		api.POST("/override", h.applyOverride)

		api.GET("/logs", h.getLogs)
		api.GET("/ws", h.wsConnect)
	}
}

// recovered answers a panicking request with the usual error envelope.
func (h *Handler) recovered(c *gin.Context, _ any) {
	abortWithError(c, http.StatusInternalServerError, msgInternal)
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Timestamp: timestamp()})
}
