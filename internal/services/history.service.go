package services

import (
	"latencyviz/internal/models"
	"sort"
	"sync"
	"time"
)

// DefaultHistoryCapacity keeps ~50 minutes of points at a 5s tick
const DefaultHistoryCapacity = 600

// HistoryStore keeps a capped, time-ordered series per pair key
type HistoryStore struct {
	mu       sync.RWMutex
	series   map[string][]models.HistoryPoint
	capacity int
}

// HistoryEntry is one pending append, used for whole-tick batches
type HistoryEntry struct {
	Key   string
	Point models.HistoryPoint
}

// NewHistoryStore creates a store that keeps at most capacity points per key
func NewHistoryStore(capacity int) *HistoryStore {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryStore{
		series:   make(map[string][]models.HistoryPoint),
		capacity: capacity,
	}
}

// Capacity returns the per-key point cap
func (h *HistoryStore) Capacity() int {
	return h.capacity
}

// Append adds point to the series for key, dropping the oldest points
// once the cap is exceeded
func (h *HistoryStore) Append(key string, point models.HistoryPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.appendLocked(key, point)
}

// AppendBatch applies every entry under a single lock
func (h *HistoryStore) AppendBatch(entries []HistoryEntry) {
	if len(entries) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range entries {
		h.appendLocked(e.Key, e.Point)
	}
}

func (h *HistoryStore) appendLocked(key string, point models.HistoryPoint) {
	s := append(h.series[key], point)
	if over := len(s) - h.capacity; over > 0 {
		// Copy down instead of reslicing so the backing array doesn't grow forever.
		s = append(s[:0], s[over:]...)
	}
	h.series[key] = s
}

// Get returns a copy of the series for key. Unknown keys yield an empty slice.
func (h *HistoryStore) Get(key string) []models.HistoryPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := h.series[key]
	out := make([]models.HistoryPoint, len(s))
	copy(out, s)
	return out
}

// Since returns the points for key with T at or after cutoff
func (h *HistoryStore) Since(key string, cutoff time.Time) []models.HistoryPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	filtered := []models.HistoryPoint{}
	for _, p := range h.series[key] {
		if !p.T.Before(cutoff) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Window returns the points for key inside the lookback of r, measured from now.
// Unknown ranges yield an empty slice.
func (h *HistoryStore) Window(key string, r models.TimeRange, now time.Time) []models.HistoryPoint {
	lookback, ok := r.Lookback()
	if !ok {
		return []models.HistoryPoint{}
	}
	return h.Since(key, now.Add(-lookback))
}

// Keys lists every key with at least one point, sorted
func (h *HistoryStore) Keys() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	keys := make([]string, 0, len(h.series))
	for k := range h.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of tracked series
func (h *HistoryStore) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.series)
}
