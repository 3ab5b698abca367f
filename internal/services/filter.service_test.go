package services

import (
	"errors"
	"latencyviz/internal/models"
	"testing"
	"time"
)

func TestNodeVisible(t *testing.T) {
	t.Parallel()

	node := models.Node{ID: "bn-tokyo", Exchange: models.ExchangeBinance, Provider: models.ProviderAWS, Region: "Tokyo"}

	cases := []struct {
		name  string
		patch models.FiltersPatch
		want  bool
	}{
		{"defaults", models.FiltersPatch{}, true},
		{"provider off", models.FiltersPatch{Providers: map[models.Provider]bool{models.ProviderAWS: false}}, false},
		{"unknown provider keeps others", models.FiltersPatch{Providers: map[models.Provider]bool{"IBM": true}}, true},
		{"exchange allowed", models.FiltersPatch{SetExchanges: true, Exchanges: []models.Exchange{models.ExchangeBinance}}, true},
		{"exchange excluded", models.FiltersPatch{SetExchanges: true, Exchanges: []models.Exchange{models.ExchangeOKX}}, false},
		{"empty allow-list", models.FiltersPatch{SetExchanges: true, Exchanges: []models.Exchange{}}, false},
		{"search region", models.FiltersPatch{Search: ptr("tokyo")}, true},
		{"search across fields", models.FiltersPatch{Search: ptr("NANCE TOK")}, true},
		{"search miss", models.FiltersPatch{Search: ptr("london")}, false},
	}
	for _, tc := range cases {
		f := tc.patch.Apply(models.DefaultFilters())
		if got := NodeVisible(node, f); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestVisibleSamples(t *testing.T) {
	t.Parallel()

	nodes := []models.Node{
		{ID: "a", Exchange: models.ExchangeBinance, Provider: models.ProviderAWS, Region: "x"},
		{ID: "b", Exchange: models.ExchangeOKX, Provider: models.ProviderGCP, Region: "y"},
		{ID: "c", Exchange: models.ExchangeKraken, Provider: models.ProviderAzure, Region: "z"},
	}
	samples := []models.LatencySample{
		{FromID: "a", ToID: "b", LatencyMs: 30},
		{FromID: "a", ToID: "c", LatencyMs: 300},
		{FromID: "b", ToID: "c", LatencyMs: 80},
		{FromID: "a", ToID: "gone", LatencyMs: 10},
	}

	f := models.DefaultFilters()
	got := VisibleSamples(samples, nodes, f)
	if len(got) != 2 || got[0].Key() != "a::b" || got[1].Key() != "b::c" {
		t.Fatalf("default: %v", got)
	}

	f.Providers[models.ProviderGCP] = false
	got = VisibleSamples(samples, nodes, f)
	if len(got) != 0 {
		t.Fatalf("gcp hidden: %v", got)
	}

	f = models.DefaultFilters()
	f.LatencyRange = [2]float64{50, 400}
	got = VisibleSamples(samples, nodes, f)
	if len(got) != 2 || got[0].Key() != "a::c" {
		t.Fatalf("range: %v", got)
	}
}

func TestPairs_KeepsOrder(t *testing.T) {
	t.Parallel()

	samples := []models.LatencySample{
		{FromID: "b", ToID: "c"},
		{FromID: "a", ToID: "b"},
		{FromID: "b", ToID: "c"},
	}
	got := Pairs(samples)
	if len(got) != 2 || got[0] != "b::c" || got[1] != "a::b" {
		t.Fatalf("pairs=%v", got)
	}
}

func TestPairHistory(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0).UTC()
	h := NewHistoryStore(10)
	h.Append("a::b", models.HistoryPoint{T: now.Add(-time.Minute)})

	if _, err := PairHistory(h, "ab", models.Range1h, now); !errors.Is(err, ErrUnknownPair) {
		t.Fatalf("err=%v", err)
	}
	pts, err := PairHistory(h, "a::b", models.Range1h, now)
	if err != nil || len(pts) != 1 {
		t.Fatalf("pts=%v err=%v", pts, err)
	}
	pts, err = PairHistory(h, "a::b", "forever", now)
	if err != nil || len(pts) != 0 {
		t.Fatalf("unknown range pts=%v err=%v", pts, err)
	}
}

func ptr[T any](v T) *T { return &v }
