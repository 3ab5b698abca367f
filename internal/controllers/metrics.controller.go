package controllers

import (
	"latencyviz/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusController reports on the running simulator
type StatusController struct {
	cache     *services.RuntimeCache
	scheduler *services.Scheduler
	hub       *services.WebSocketHub
}

func NewStatusController(cache *services.RuntimeCache, scheduler *services.Scheduler, hub *services.WebSocketHub) *StatusController {
	return &StatusController{cache: cache, scheduler: scheduler, hub: hub}
}

// GetStatus returns process, simulation and client status
func (sc *StatusController) GetStatus(c *gin.Context) {
	runtime, err := sc.cache.Get()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"runtime":    runtime,
		"simulation": sc.scheduler.Status(),
		"ws_clients": sc.hub.ClientCount(),
	})
}
