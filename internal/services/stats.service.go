package services

import (
	"latencyviz/internal/models"
	"math"
	"sort"
	"time"
)

// Latency band names and upper bounds
const (
	BandLow    = "low"
	BandMedium = "medium"
	BandHigh   = "high"

	LowBandMaxMs    = 50.0
	MediumBandMaxMs = 100.0
)

// Band classifies a latency for display colouring
func Band(latencyMs float64) string {
	switch {
	case latencyMs < LowBandMaxMs:
		return BandLow
	case latencyMs <= MediumBandMaxMs:
		return BandMedium
	default:
		return BandHigh
	}
}

// Summarize computes the dashboard overview of samples
func Summarize(samples []models.LatencySample, nodeCount int, lastUpdate time.Time) models.Summary {
	sum := models.Summary{
		Connections: len(samples),
		Nodes:       nodeCount,
		Bands:       map[string]int{BandLow: 0, BandMedium: 0, BandHigh: 0},
		LastUpdate:  lastUpdate,
	}
	if len(samples) == 0 {
		return sum
	}

	values := make([]float64, 0, len(samples))
	total := 0.0
	for _, s := range samples {
		values = append(values, s.LatencyMs)
		total += s.LatencyMs
		sum.Bands[Band(s.LatencyMs)]++
	}
	sort.Float64s(values)

	sum.AvgMs = total / float64(len(values))
	sum.AvgRoundMs = int(math.Round(sum.AvgMs))
	sum.MinMs = values[0]
	sum.MaxMs = values[len(values)-1]
	sum.P95Ms = percentile(values, 95)
	return sum
}

// percentile uses the nearest-rank method on sorted values
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
