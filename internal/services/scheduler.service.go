package services

import (
	"context"
	"fmt"
	"latencyviz/internal/models"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultTickInterval is the simulation cadence
const DefaultTickInterval = 5 * time.Second

// HistorySpreadMs is the display band drawn around each history average
const HistorySpreadMs = 5.0

// HistoryPolicy decides when ticks write to history
type HistoryPolicy string

const (
	// HistoryAlways appends on every tick; the per-key cap bounds memory
	HistoryAlways HistoryPolicy = "always"
	// HistoryHistoricalOnly appends only while the view mode is historical
	HistoryHistoricalOnly HistoryPolicy = "historical"
)

// ParseHistoryPolicy validates a configured policy name
func ParseHistoryPolicy(s string) (HistoryPolicy, error) {
	switch HistoryPolicy(s) {
	case HistoryAlways, HistoryHistoricalOnly:
		return HistoryPolicy(s), nil
	case "":
		return HistoryAlways, nil
	default:
		return "", fmt.Errorf("unknown history policy %q", s)
	}
}

// SchedulerOptions tune a Scheduler. Zero values pick the defaults.
type SchedulerOptions struct {
	Interval  time.Duration
	Policy    HistoryPolicy
	Estimator *LatencyEstimator
	Now       func() time.Time
}

// Scheduler periodically generates pairwise latency samples into a store.
// Stop is graceful: a tick already running finishes, and nothing is written
// once Stop has returned.
type Scheduler struct {
	store     *SnapshotStore
	estimator *LatencyEstimator
	interval  time.Duration
	policy    HistoryPolicy
	now       func() time.Time

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	tickMu sync.Mutex
	ticks  atomic.Uint64
}

// NewScheduler creates a stopped scheduler writing into store
func NewScheduler(store *SnapshotStore, opts SchedulerOptions) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultTickInterval
	}
	if opts.Policy == "" {
		opts.Policy = HistoryAlways
	}
	if opts.Estimator == nil {
		opts.Estimator = NewLatencyEstimator(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Scheduler{
		store:     store,
		estimator: opts.Estimator,
		interval:  opts.Interval,
		policy:    opts.Policy,
		now:       opts.Now,
	}
}

// Start begins ticking. It returns false and does nothing if already running.
func (s *Scheduler) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done

	go s.loop(ctx, done)

	log.Printf("[SIM] Scheduler started (interval: %v, history: %s)", s.interval, s.policy)
	return true
}

// Stop cancels the timer and waits for an in-flight tick to finish.
// It returns false if the scheduler was not running.
func (s *Scheduler) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return false
	}
	s.cancel()
	<-s.done
	s.running = false
	s.cancel = nil
	s.done = nil

	log.Println("[SIM] Scheduler stopped")
	return true
}

// Running reports whether the timer is active
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks returns how many ticks have committed a snapshot
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}

// Status summarizes the scheduler for the API
func (s *Scheduler) Status() models.SimulationStatus {
	return models.SimulationStatus{
		Running:       s.Running(),
		Interval:      s.interval.String(),
		HistoryPolicy: string(s.policy),
		Ticks:         s.Ticks(),
		LastUpdate:    s.store.Read().LastUpdate,

		HistoryCapacity: s.store.History().Capacity(),
	}
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick runs one simulation cycle synchronously. With no nodes loaded it
// writes nothing and returns false.
func (s *Scheduler) Tick() bool {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	started := time.Now()

	// One atomic read; a concurrent SetNodes can't be seen half-applied.
	nodes := s.store.Nodes()
	if len(nodes) == 0 {
		ticksSkippedTotal.Inc()
		return false
	}

	at := s.now()
	samples := GenerateSamples(nodes, s.estimator, at)

	var entries []HistoryEntry
	if s.policy == HistoryAlways || s.store.Filters().ViewMode == models.ViewHistorical {
		entries = HistoryEntries(samples)
	}

	s.store.CommitTick(samples, entries, at)
	s.ticks.Add(1)

	ticksTotal.Inc()
	tickDuration.Observe(time.Since(started).Seconds())
	snapshotSamples.Set(float64(len(samples)))
	historySeries.Set(float64(s.store.History().Len()))
	return true
}

// GenerateSamples produces one sample per unordered pair (i < j), keeping
// the node order for direction. Latencies are rounded to whole milliseconds.
func GenerateSamples(nodes []models.Node, estimator *LatencyEstimator, at time.Time) []models.LatencySample {
	if len(nodes) < 2 {
		return []models.LatencySample{}
	}
	samples := make([]models.LatencySample, 0, len(nodes)*(len(nodes)-1)/2)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			a, b := nodes[i], nodes[j]
			km := Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
			samples = append(samples, models.LatencySample{
				FromID:    a.ID,
				ToID:      b.ID,
				LatencyMs: math.Round(estimator.Estimate(km)),
				Timestamp: at,
			})
		}
	}
	return samples
}

// HistoryEntries derives the history point for each sample
func HistoryEntries(samples []models.LatencySample) []HistoryEntry {
	entries := make([]HistoryEntry, 0, len(samples))
	for _, smp := range samples {
		entries = append(entries, HistoryEntry{
			Key: smp.Key(),
			Point: models.HistoryPoint{
				T:   smp.Timestamp,
				Min: smp.LatencyMs - HistorySpreadMs,
				Max: smp.LatencyMs + HistorySpreadMs,
				Avg: smp.LatencyMs,
			},
		})
	}
	return entries
}
