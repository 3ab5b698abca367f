package routes

import (
	"latencyviz/internal/controllers"
	"latencyviz/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterLatencyRoutes registers the snapshot, filter, history and
// simulation endpoints under /api
func RegisterLatencyRoutes(r *gin.Engine, lc *controllers.LatencyController, sc *controllers.SimulationController, control *middleware.RateLimiter) {
	api := r.Group("/api")
	{
		api.GET("/nodes", lc.GetNodes)
		api.GET("/nodes.geojson", lc.GetNodesGeoJSON)
		api.GET("/regions", lc.GetRegions)
		api.GET("/connections", lc.GetConnections)
		api.GET("/pairs", lc.GetPairs)
		api.GET("/history", lc.GetPairHistory)
		api.GET("/summary", lc.GetSummary)
		api.GET("/filters", lc.GetFilters)
		api.PATCH("/filters", middleware.RateLimitMiddleware(control), lc.PatchFilters)
		api.GET("/export.csv", lc.ExportCSV)
	}

	simulation := api.Group("/simulation")
	{
		simulation.GET("", sc.GetSimulation)
		simulation.POST("/start", middleware.RateLimitMiddleware(control), sc.StartSimulation)
		simulation.POST("/stop", middleware.RateLimitMiddleware(control), sc.StopSimulation)
		simulation.POST("/tick", middleware.RateLimitMiddleware(control), sc.TickSimulation)
	}
}
