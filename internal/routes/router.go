package routes

import (
	"latencyviz/internal/controllers"
	"latencyviz/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configure the global middleware chain
type SecurityOptions struct {
	AllowedOrigins []string
	AllowedIPs     []string
	RateLimit      float64
	RateBurst      int
}

// Controllers bundles everything the router dispatches to
type Controllers struct {
	Latency    *controllers.LatencyController
	Simulation *controllers.SimulationController
	Status     *controllers.StatusController
	WebSocket  *controllers.WebSocketController
}

// NewRouter builds the engine with middleware and every route group
func NewRouter(opts SecurityOptions, ctl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.CORSMiddleware(opts.AllowedOrigins))
	r.Use(middleware.IPWhitelistMiddleware(middleware.NewIPWhitelist(opts.AllowedIPs)))
	r.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter(opts.RateLimit, opts.RateBurst)))

	RegisterLatencyRoutes(r, ctl.Latency, ctl.Simulation, middleware.NewControlRateLimiter())
	RegisterMonitorRoutes(r, ctl.Status)
	RegisterAuthRoutes(r, ctl.WebSocket)
	return r
}
