package routes

import (
	"latencyviz/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes registers WebSocket routes only.
// Token generation must be done via CLI (no HTTP endpoints).
func RegisterAuthRoutes(r *gin.Engine, wc *controllers.WebSocketController) {
	// WebSocket endpoint for live snapshots
	r.GET("/ws", wc.HandleWebSocket)
}
