package controllers

import (
	"errors"
	"latencyviz/internal/models"
	"latencyviz/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPairHistory returns a pair's series inside the requested lookback
// Query params: pair=from::to, range=1h|24h|7d|30d (default: active filter)
func (lc *LatencyController) GetPairHistory(c *gin.Context) {
	pair := c.Query("pair")
	r := models.TimeRange(c.DefaultQuery("range", string(lc.store.Filters().TimeRange)))

	points, err := services.PairHistory(lc.store.History(), pair, r, lc.now())
	if errors.Is(err, services.ErrUnknownPair) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pair must be formatted as from::to"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pair":  pair,
		"range": r,
		"data":  points,
	})
}
