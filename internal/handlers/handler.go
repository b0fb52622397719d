package handlers

import (
	"github.com/Deratheone/Signal-Hunt/internal/logger"
	"github.com/Deratheone/Signal-Hunt/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints
	h.registerAPIRoutes(router)

	// Minimal WebSocket connection (HTTP upgrade) on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	// Read-only game views stay public: the radar display client has no
	// credentials and only ever observes.
	public := r.Group("/api/v1")
	{
		public.GET("/radar", h.getRadar)
		public.GET("/score", h.getScore)
		public.GET("/export", h.exportReport)
	}

	// Operator endpoints require a bearer token.
	protected := r.Group("/api/v1", h.operatorIdMiddleware)
	{
		h.registerGameRoutes(protected)
		h.registerLogRoutes(protected)
	}
}

func (h *Handler) registerGameRoutes(api *gin.RouterGroup) {
	game := api.Group("/game")
	{
		game.POST("/reset", h.resetGame)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
