package routes

import (
	"latencyviz/internal/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterMonitorRoutes registers runtime status and Prometheus scraping
func RegisterMonitorRoutes(r *gin.Engine, sc *controllers.StatusController) {
	r.GET("/status", sc.GetStatus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
