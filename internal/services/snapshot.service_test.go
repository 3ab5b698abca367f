package services

import (
	"fmt"
	"latencyviz/internal/models"
	"sync"
	"testing"
	"time"
)

func TestSnapshotStore_PartialFilterMerge(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore(nil)
	r := [2]float64{10, 120}
	s.SetFilters(models.FiltersPatch{
		Providers:    map[models.Provider]bool{models.ProviderAWS: true, models.ProviderGCP: false, models.ProviderAzure: true},
		LatencyRange: &r,
	})

	search := "x"
	s.SetFilters(models.FiltersPatch{Search: &search})
	tr := models.Range24h
	got := s.SetFilters(models.FiltersPatch{TimeRange: &tr})

	if got.Search != "x" || got.TimeRange != models.Range24h {
		t.Fatalf("patched fields: %+v", got)
	}
	if got.LatencyRange != r {
		t.Fatalf("latencyRange=%v", got.LatencyRange)
	}
	if got.Providers[models.ProviderGCP] || !got.Providers[models.ProviderAWS] {
		t.Fatalf("providers=%v", got.Providers)
	}
}

func TestSnapshotStore_SetSnapshotReplaces(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore(nil)
	s.SetSnapshot([]models.LatencySample{{FromID: "a", ToID: "b"}, {FromID: "a", ToID: "c"}})
	s.SetSnapshot([]models.LatencySample{{FromID: "b", ToID: "c"}})

	view := s.Read()
	if len(view.Connections) != 1 || view.Connections[0].Key() != "b::c" {
		t.Fatalf("connections=%v", view.Connections)
	}
}

func TestSnapshotStore_CommitTickAndSubscribe(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore(NewHistoryStore(5))
	events, cancel := s.Subscribe(4)
	defer cancel()

	at := time.Unix(1_700_000_000, 0).UTC()
	samples := []models.LatencySample{{FromID: "a", ToID: "b", LatencyMs: 40, Timestamp: at}}
	s.CommitTick(samples, HistoryEntries(samples), at)

	select {
	case ev := <-events:
		if ev.Kind != EventTick {
			t.Fatalf("kind=%s", ev.Kind)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event")
	}

	view := s.Read()
	if !view.LastUpdate.Equal(at) || len(view.Connections) != 1 {
		t.Fatalf("view=%+v", view)
	}
	pts := view.History.Get("a::b")
	if len(pts) != 1 || pts[0].Min != 35 || pts[0].Max != 45 {
		t.Fatalf("history=%v", pts)
	}
}

func TestSnapshotStore_CancelClosesChannel(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore(nil)
	events, cancel := s.Subscribe(1)
	cancel()
	cancel()

	if _, ok := <-events; ok {
		t.Fatalf("channel still open")
	}
	s.SetNodes(nil)
}

func TestSnapshotStore_ConcurrentPartialFilters(t *testing.T) {
	t.Parallel()

	s := NewSnapshotStore(nil)
	r := [2]float64{5, 150}
	s.SetFilters(models.FiltersPatch{LatencyRange: &r})

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			search := fmt.Sprintf("s%d", i)
			s.SetFilters(models.FiltersPatch{Search: &search})
		}
	}()
	go func() {
		defer wg.Done()
		ranges := []models.TimeRange{models.Range24h, models.Range7d}
		for i := 0; i < rounds; i++ {
			tr := ranges[i%2]
			s.SetFilters(models.FiltersPatch{TimeRange: &tr})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s.SetFilters(models.FiltersPatch{Providers: map[models.Provider]bool{models.ProviderGCP: i%2 == 1}})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			s.SetFilters(models.FiltersPatch{Providers: map[models.Provider]bool{models.ProviderAzure: i%2 == 1}})
		}
	}()
	wg.Wait()

	got := s.Filters()
	if got.Search != fmt.Sprintf("s%d", rounds-1) {
		t.Fatalf("search=%q", got.Search)
	}
	if got.TimeRange != models.Range7d {
		t.Fatalf("timeRange=%q", got.TimeRange)
	}
	if got.LatencyRange != r {
		t.Fatalf("latencyRange=%v", got.LatencyRange)
	}
	if !got.Providers[models.ProviderAWS] || !got.Providers[models.ProviderGCP] || !got.Providers[models.ProviderAzure] {
		t.Fatalf("providers=%v", got.Providers)
	}
}
