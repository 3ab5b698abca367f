package services

import (
	"latencyviz/internal/models"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func triangleNodes() []models.Node {
	return []models.Node{
		{ID: "A", Exchange: models.ExchangeBinance, Provider: models.ProviderAWS, Region: "a", Lat: 0, Lon: 0},
		{ID: "B", Exchange: models.ExchangeOKX, Provider: models.ProviderGCP, Region: "b", Lat: 0, Lon: 90},
		{ID: "C", Exchange: models.ExchangeKraken, Provider: models.ProviderAzure, Region: "c", Lat: 0, Lon: 180},
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// steppingClock advances one second per call
func steppingClock(start time.Time) func() time.Time {
	var n atomic.Int64
	return func() time.Time {
		return start.Add(time.Duration(n.Add(1)) * time.Second)
	}
}

func TestScheduler_TickPairsEachNodeOnce(t *testing.T) {
	t.Parallel()

	at := time.Unix(1_700_000_000, 0).UTC()
	store := NewSnapshotStore(nil)
	store.SetNodes(triangleNodes())
	sched := NewScheduler(store, SchedulerOptions{Estimator: NewSeededEstimator(1), Now: fixedClock(at)})

	if !sched.Tick() {
		t.Fatalf("tick skipped")
	}

	view := store.Read()
	if len(view.Connections) != 3 {
		t.Fatalf("connections=%d", len(view.Connections))
	}
	want := []string{"A::B", "A::C", "B::C"}
	for i, s := range view.Connections {
		if s.Key() != want[i] {
			t.Fatalf("sample %d key=%s want=%s", i, s.Key(), want[i])
		}
		if s.LatencyMs < MinLatencyMs {
			t.Fatalf("sample %d latency=%v", i, s.LatencyMs)
		}
		if !s.Timestamp.Equal(at) {
			t.Fatalf("sample %d timestamp=%v", i, s.Timestamp)
		}
	}
	if !view.LastUpdate.Equal(at) {
		t.Fatalf("lastUpdate=%v", view.LastUpdate)
	}
	if view.History.Len() != 3 {
		t.Fatalf("history series=%d", view.History.Len())
	}
	if sched.Ticks() != 1 {
		t.Fatalf("ticks=%d", sched.Ticks())
	}
}

func TestScheduler_ZeroNodesSkips(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(nil)
	sched := NewScheduler(store, SchedulerOptions{})

	if sched.Tick() {
		t.Fatalf("tick should be skipped")
	}
	view := store.Read()
	if view.Connections == nil || len(view.Connections) != 0 {
		t.Fatalf("connections=%#v", view.Connections)
	}
	if !view.LastUpdate.IsZero() {
		t.Fatalf("lastUpdate=%v", view.LastUpdate)
	}
}

func TestScheduler_SingleNodeUpdatesTimestamp(t *testing.T) {
	t.Parallel()

	at := time.Unix(1_700_000_000, 0).UTC()
	store := NewSnapshotStore(nil)
	store.SetNodes(triangleNodes()[:1])
	sched := NewScheduler(store, SchedulerOptions{Now: fixedClock(at)})

	sched.Tick()
	view := store.Read()
	if len(view.Connections) != 0 || !view.LastUpdate.Equal(at) {
		t.Fatalf("view=%+v", view)
	}
}

func TestScheduler_HistoricalPolicy(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(nil)
	store.SetNodes(triangleNodes())
	sched := NewScheduler(store, SchedulerOptions{Policy: HistoryHistoricalOnly})

	sched.Tick()
	if n := store.History().Len(); n != 0 {
		t.Fatalf("realtime tick wrote %d series", n)
	}

	mode := models.ViewHistorical
	store.SetFilters(models.FiltersPatch{ViewMode: &mode})
	sched.Tick()
	if n := store.History().Len(); n != 3 {
		t.Fatalf("historical tick wrote %d series", n)
	}
}

func TestScheduler_StartStopIdempotent(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(nil)
	store.SetNodes(triangleNodes())
	sched := NewScheduler(store, SchedulerOptions{Interval: 5 * time.Millisecond})

	if !sched.Start() || sched.Start() {
		t.Fatalf("start should succeed once")
	}
	if !sched.Stop() || sched.Stop() {
		t.Fatalf("stop should succeed once")
	}
	if sched.Running() {
		t.Fatalf("still running")
	}

	before := sched.Ticks()
	if !sched.Start() {
		t.Fatalf("restart failed")
	}
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for sched.Ticks() == before {
		if time.Now().After(deadline) {
			t.Fatalf("no tick after restart")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestScheduler_NoWritesAfterStop(t *testing.T) {
	t.Parallel()

	store := NewSnapshotStore(nil)
	store.SetNodes(triangleNodes())
	sched := NewScheduler(store, SchedulerOptions{Interval: time.Millisecond})

	sched.Start()
	time.Sleep(20 * time.Millisecond)
	sched.Stop()

	ticks := sched.Ticks()
	last := store.Read().LastUpdate
	time.Sleep(20 * time.Millisecond)
	if sched.Ticks() != ticks || !store.Read().LastUpdate.Equal(last) {
		t.Fatalf("store mutated after Stop")
	}
}

func TestParseHistoryPolicy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    HistoryPolicy
		wantErr bool
	}{
		{"", HistoryAlways, false},
		{"always", HistoryAlways, false},
		{"historical", HistoryHistoricalOnly, false},
		{"sometimes", "", true},
	}
	for _, tc := range cases {
		got, err := ParseHistoryPolicy(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Fatalf("%q: got=%q err=%v", tc.in, got, err)
		}
	}
}

func TestScheduler_ReadersNeverSeeHistoryAheadOfSnapshot(t *testing.T) {
	t.Parallel()

	const ticks = 200
	store := NewSnapshotStore(NewHistoryStore(ticks))
	store.SetNodes(triangleNodes())
	sched := NewScheduler(store, SchedulerOptions{
		Estimator: NewSeededEstimator(3),
		Now:       steppingClock(time.Unix(1_700_000_000, 0).UTC()),
	})

	var done atomic.Bool
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !done.Load() {
				// History first: anything it holds must already be published.
				points := store.History().Get("A::B")
				view := store.Read()
				if n := len(points); n > 0 && points[n-1].T.After(view.LastUpdate) {
					t.Errorf("history point %v ahead of lastUpdate %v", points[n-1].T, view.LastUpdate)
					return
				}
				for _, smp := range view.Connections {
					if !smp.Timestamp.Equal(view.LastUpdate) {
						t.Errorf("sample %s at %v, lastUpdate %v", smp.Key(), smp.Timestamp, view.LastUpdate)
						return
					}
				}
				if len(view.Connections) > 0 {
					after := view.History.Get("A::B")
					if len(after) == 0 || after[len(after)-1].T.Before(view.LastUpdate) {
						t.Errorf("snapshot at %v visible without its history", view.LastUpdate)
						return
					}
				}
			}
		}()
	}

	var tickers sync.WaitGroup
	for w := 0; w < 2; w++ {
		tickers.Add(1)
		go func() {
			defer tickers.Done()
			for i := 0; i < ticks/2; i++ {
				sched.Tick()
			}
		}()
	}
	tickers.Wait()
	done.Store(true)
	wg.Wait()

	if sched.Ticks() != ticks {
		t.Fatalf("ticks=%d", sched.Ticks())
	}
	if n := len(store.History().Get("A::B")); n != ticks {
		t.Fatalf("history points=%d", n)
	}
}

func TestScheduler_NodeSwapDuringTicks(t *testing.T) {
	t.Parallel()

	three := triangleNodes()
	four := append(triangleNodes(), models.Node{
		ID: "D", Exchange: models.ExchangeBybit, Provider: models.ProviderAWS, Region: "d", Lat: 45, Lon: 45,
	})

	store := NewSnapshotStore(nil)
	store.SetNodes(three)
	sched := NewScheduler(store, SchedulerOptions{Estimator: NewSeededEstimator(4)})

	var done atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; !done.Load(); i++ {
			if i%2 == 0 {
				store.SetNodes(four)
			} else {
				store.SetNodes(three)
			}
		}
	}()

	for i := 0; i < 300; i++ {
		sched.Tick()
		conns := store.Read().Connections
		withD := 0
		for _, smp := range conns {
			if strings.Contains(smp.Key(), "D") {
				withD++
			}
		}
		switch {
		case len(conns) == 3 && withD == 0:
		case len(conns) == 6 && withD == 3:
		default:
			done.Store(true)
			wg.Wait()
			t.Fatalf("tick %d: %d samples, %d touching D", i, len(conns), withD)
		}
	}
	done.Store(true)
	wg.Wait()
}
