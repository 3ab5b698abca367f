package controllers

import (
	"bytes"
	"io"
	"latencyviz/internal/dataset"
	"latencyviz/internal/models"
	"latencyviz/internal/services"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// maxFiltersBody caps PATCH /api/filters payloads
const maxFiltersBody = 16 << 10

// LatencyController serves the filtered snapshot views
type LatencyController struct {
	store *services.SnapshotStore
	now   func() time.Time
}

func NewLatencyController(store *services.SnapshotStore) *LatencyController {
	return &LatencyController{
		store: store,
		now:   time.Now,
	}
}

// GetNodes returns the visible nodes
func (lc *LatencyController) GetNodes(c *gin.Context) {
	view := lc.store.Read()
	c.JSON(http.StatusOK, services.VisibleNodes(view.Nodes, view.Filters))
}

// GetNodesGeoJSON returns the visible nodes as a FeatureCollection
func (lc *LatencyController) GetNodesGeoJSON(c *gin.Context) {
	view := lc.store.Read()
	c.JSON(http.StatusOK, dataset.NodesFeatureCollection(services.VisibleNodes(view.Nodes, view.Filters)))
}

// GetRegions returns the cloud-region markers of enabled providers
func (lc *LatencyController) GetRegions(c *gin.Context) {
	view := lc.store.Read()
	c.JSON(http.StatusOK, dataset.RegionsFeatureCollection(services.VisibleRegions(view.Regions, view.Filters)))
}

// GetConnections returns the visible samples of the current snapshot
func (lc *LatencyController) GetConnections(c *gin.Context) {
	view := lc.store.Read()
	c.JSON(http.StatusOK, gin.H{
		"connections": services.VisibleSamples(view.Connections, view.Nodes, view.Filters),
		"lastUpdate":  view.LastUpdate,
	})
}

// GetPairs lists the pair keys of the current snapshot, plus every key
// that has recorded history
func (lc *LatencyController) GetPairs(c *gin.Context) {
	view := lc.store.Read()
	c.JSON(http.StatusOK, gin.H{
		"pairs":   services.Pairs(view.Connections),
		"history": view.History.Keys(),
	})
}

// GetSummary returns the dashboard overview
func (lc *LatencyController) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, services.BuildSnapshot(lc.store.Read()).Summary)
}

// GetFilters returns the active filters
func (lc *LatencyController) GetFilters(c *gin.Context) {
	c.JSON(http.StatusOK, lc.store.Filters())
}

// PatchFilters merges the given fields into the active filters
func (lc *LatencyController) PatchFilters(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFiltersBody+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}
	if len(body) > maxFiltersBody {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "filters body too large"})
		return
	}

	var patch models.FiltersPatch
	if err := patch.UnmarshalJSON(body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if patch.IsEmpty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no filter fields given"})
		return
	}
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, lc.store.SetFilters(patch))
}

// ExportCSV downloads every connection of the current snapshot.
// ?visible=1 restricts the rows to what the active filters show.
func (lc *LatencyController) ExportCSV(c *gin.Context) {
	view := lc.store.Read()
	samples := view.Connections
	if visible, _ := strconv.ParseBool(c.Query("visible")); visible {
		samples = services.VisibleSamples(view.Connections, view.Nodes, view.Filters)
	}

	var buf bytes.Buffer
	if err := services.WriteConnectionsCSV(&buf, samples); err != nil {
		log.Printf("[HTTP] CSV export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+services.ExportFileName(lc.now())+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
