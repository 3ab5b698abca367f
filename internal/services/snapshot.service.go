package services

import (
	"latencyviz/internal/models"
	"sync"
	"time"
)

// EventKind names the mutation that produced an Event
type EventKind string

const (
	EventNodes    EventKind = "nodes"
	EventRegions  EventKind = "regions"
	EventSnapshot EventKind = "snapshot"
	EventFilters  EventKind = "filters"
	EventTick     EventKind = "tick"
)

// Event is delivered to subscribers after every store mutation
type Event struct {
	Kind EventKind
	At   time.Time
}

// SnapshotView is a consistent read of the store. Slices are shared with the
// store and must be treated as read-only; the store only ever replaces them.
type SnapshotView struct {
	Nodes       []models.Node
	Regions     []models.CloudRegion
	Connections []models.LatencySample
	Filters     models.Filters
	History     *HistoryStore
	LastUpdate  time.Time
}

// SnapshotStore is the shared state between the simulation and its readers
type SnapshotStore struct {
	mu          sync.RWMutex
	nodes       []models.Node
	regions     []models.CloudRegion
	connections []models.LatencySample
	filters     models.Filters
	lastUpdate  time.Time
	history     *HistoryStore

	subMu       sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
}

// NewSnapshotStore creates an empty store backed by history.
// A nil history gets a store with the default capacity.
func NewSnapshotStore(history *HistoryStore) *SnapshotStore {
	if history == nil {
		history = NewHistoryStore(DefaultHistoryCapacity)
	}
	return &SnapshotStore{
		nodes:       []models.Node{},
		regions:     []models.CloudRegion{},
		connections: []models.LatencySample{},
		filters:     models.DefaultFilters(),
		history:     history,
		subscribers: make(map[int]chan Event),
	}
}

// History returns the backing history store
func (s *SnapshotStore) History() *HistoryStore {
	return s.history
}

// SetNodes replaces the whole node set
func (s *SnapshotStore) SetNodes(nodes []models.Node) {
	next := append([]models.Node{}, nodes...)

	s.mu.Lock()
	s.nodes = next
	s.mu.Unlock()

	s.notify(EventNodes)
}

// SetRegions replaces the cloud-region markers
func (s *SnapshotStore) SetRegions(regions []models.CloudRegion) {
	next := append([]models.CloudRegion{}, regions...)

	s.mu.Lock()
	s.regions = next
	s.mu.Unlock()

	s.notify(EventRegions)
}

// SetSnapshot replaces the current connections. Samples from earlier ticks
// don't survive.
func (s *SnapshotStore) SetSnapshot(samples []models.LatencySample) {
	next := append([]models.LatencySample{}, samples...)

	s.mu.Lock()
	s.connections = next
	s.mu.Unlock()

	s.notify(EventSnapshot)
}

// SetLastUpdate records when the data was last refreshed
func (s *SnapshotStore) SetLastUpdate(t time.Time) {
	s.mu.Lock()
	s.lastUpdate = t
	s.mu.Unlock()

	s.notify(EventTick)
}

// SetFilters merges patch into the current filters and returns the result.
// The read-modify-write happens under the lock, so concurrent patches to
// different fields never clobber each other.
func (s *SnapshotStore) SetFilters(patch models.FiltersPatch) models.Filters {
	s.mu.Lock()
	s.filters = patch.Apply(s.filters)
	out := s.filters.Clone()
	s.mu.Unlock()

	s.notify(EventFilters)
	return out
}

// Filters returns a copy of the active filters
func (s *SnapshotStore) Filters() models.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// Nodes returns the current node set in one atomic read
func (s *SnapshotStore) Nodes() []models.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes
}

// Read returns the current view
func (s *SnapshotStore) Read() SnapshotView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return SnapshotView{
		Nodes:       s.nodes,
		Regions:     s.regions,
		Connections: s.connections,
		Filters:     s.filters.Clone(),
		History:     s.history,
		LastUpdate:  s.lastUpdate,
	}
}

// CommitTick publishes one tick: the snapshot replacement, the history
// appends and the timestamp. Readers going through Read see either all of
// it or none of it, and the snapshot is in place before any history point.
func (s *SnapshotStore) CommitTick(samples []models.LatencySample, entries []HistoryEntry, at time.Time) {
	next := append([]models.LatencySample{}, samples...)

	s.mu.Lock()
	s.connections = next
	s.history.AppendBatch(entries)
	s.lastUpdate = at
	s.mu.Unlock()

	s.notify(EventTick)
}

// Subscribe returns a channel of store events and a cancel func.
// Delivery is best-effort: a full buffer drops the event for that subscriber.
func (s *SnapshotStore) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *SnapshotStore) notify(kind EventKind) {
	ev := Event{Kind: kind, At: time.Now()}

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Subscriber is behind, skip
		}
	}
}
