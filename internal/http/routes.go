package http

import (
	"asobibox/internal/config"
	"asobibox/internal/http/handlers"
	"asobibox/internal/http/middleware"
	"asobibox/internal/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the websocket endpoint, health probes and the
// read-only admin API onto the engine.
func RegisterRoutes(r *gin.Engine, hub *ws.Hub, cfg *config.Config, version string) {
	healthHandler := handlers.NewHealthHandler(version)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	// Game connections; rate-limited per IP so one client cannot churn
	// through room codes.
	r.GET("/ws", middleware.RedisRateLimit(cfg.WSRateLimit, cfg.WSRateWindow), ws.Handle(hub, cfg.AllowedOrigin))

	// Admin read surface. Token-guarded, rate-limited, strictly read-only.
	adminHandler := handlers.NewAdminHandler(hub.Manager())
	admin := r.Group("/admin/api")
	admin.Use(middleware.RedisRateLimit(cfg.AdminRateLimit, cfg.AdminRateWindow))
	admin.Use(middleware.AdminJWT())
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/rooms", adminHandler.Rooms)
		admin.GET("/rooms/:code", adminHandler.Room)
	}
}
