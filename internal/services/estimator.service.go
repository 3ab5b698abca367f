package services

import (
	"math"
	"math/rand/v2"
	"sync"
)

const (
	// KmPerMs converts distance into the base latency term
	KmPerMs = 200.0
	// MaxJitterMs bounds the uniform jitter, exclusive
	MaxJitterMs = 20.0
	// MinLatencyMs is the floor applied to every estimate
	MinLatencyMs = 5.0
)

// RandomSource yields uniform values in [0, 1)
type RandomSource interface {
	Float64() float64
}

// LatencyEstimator turns a distance into a synthetic latency
type LatencyEstimator struct {
	mu  sync.Mutex
	rnd RandomSource
}

// NewLatencyEstimator uses rnd for jitter. A nil source falls back to the
// process-wide generator.
func NewLatencyEstimator(rnd RandomSource) *LatencyEstimator {
	return &LatencyEstimator{rnd: rnd}
}

// NewSeededEstimator returns an estimator whose jitter sequence is fixed by seed
func NewSeededEstimator(seed uint64) *LatencyEstimator {
	return NewLatencyEstimator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Estimate returns max(MinLatencyMs, km/KmPerMs + jitter) with jitter in [0, MaxJitterMs)
func (e *LatencyEstimator) Estimate(km float64) float64 {
	base := km / KmPerMs
	jitter := e.unit() * MaxJitterMs
	return math.Max(MinLatencyMs, base+jitter)
}

func (e *LatencyEstimator) unit() float64 {
	if e == nil || e.rnd == nil {
		return rand.Float64()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rnd.Float64()
}
