package controllers

import (
	"latencyviz/internal/middleware"
	"latencyviz/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SimulationController exposes the scheduler lifecycle
type SimulationController struct {
	scheduler *services.Scheduler
	logger    *middleware.SecurityLogger
}

func NewSimulationController(scheduler *services.Scheduler, logger *middleware.SecurityLogger) *SimulationController {
	return &SimulationController{scheduler: scheduler, logger: logger}
}

// GetSimulation returns the scheduler status
func (sc *SimulationController) GetSimulation(c *gin.Context) {
	c.JSON(http.StatusOK, sc.scheduler.Status())
}

// StartSimulation starts ticking. Starting a running scheduler is a no-op.
func (sc *SimulationController) StartSimulation(c *gin.Context) {
	sc.logger.LogSimulationControl(c.ClientIP(), "start")
	changed := sc.scheduler.Start()
	c.JSON(http.StatusOK, gin.H{
		"changed":    changed,
		"simulation": sc.scheduler.Status(),
	})
}

// StopSimulation stops ticking once any in-flight tick has finished
func (sc *SimulationController) StopSimulation(c *gin.Context) {
	sc.logger.LogSimulationControl(c.ClientIP(), "stop")
	changed := sc.scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{
		"changed":    changed,
		"simulation": sc.scheduler.Status(),
	})
}

// TickSimulation runs one tick right away
func (sc *SimulationController) TickSimulation(c *gin.Context) {
	sc.logger.LogSimulationControl(c.ClientIP(), "tick")
	committed := sc.scheduler.Tick()
	c.JSON(http.StatusOK, gin.H{
		"committed":  committed,
		"simulation": sc.scheduler.Status(),
	})
}
