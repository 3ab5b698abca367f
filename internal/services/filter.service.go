package services

import (
	"errors"
	"latencyviz/internal/models"
	"slices"
	"strings"
	"time"
)

// ErrUnknownPair is returned for history requests on a malformed pair key
var ErrUnknownPair = errors.New("unknown pair")

// NodeVisible reports whether node passes the provider, exchange and search filters
func NodeVisible(node models.Node, f models.Filters) bool {
	if !f.Providers[node.Provider] {
		return false
	}
	if f.Exchanges != nil && !slices.Contains(f.Exchanges, node.Exchange) {
		return false
	}
	if f.Search == "" {
		return true
	}
	label := strings.ToLower(string(node.Exchange) + " " + node.Region)
	return strings.Contains(label, strings.ToLower(f.Search))
}

// VisibleNodes returns the nodes that pass f, in input order
func VisibleNodes(nodes []models.Node, f models.Filters) []models.Node {
	visible := []models.Node{}
	for _, n := range nodes {
		if NodeVisible(n, f) {
			visible = append(visible, n)
		}
	}
	return visible
}

// VisibleRegions returns the region markers of enabled providers
func VisibleRegions(regions []models.CloudRegion, f models.Filters) []models.CloudRegion {
	visible := []models.CloudRegion{}
	for _, r := range regions {
		if f.Providers[r.Provider] {
			visible = append(visible, r)
		}
	}
	return visible
}

// VisibleSamples returns the samples inside the latency range whose two
// endpoints are both known and visible
func VisibleSamples(samples []models.LatencySample, nodes []models.Node, f models.Filters) []models.LatencySample {
	visible := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if NodeVisible(n, f) {
			visible[n.ID] = true
		}
	}

	lo, hi := f.LatencyRange[0], f.LatencyRange[1]
	out := []models.LatencySample{}
	for _, s := range samples {
		if s.LatencyMs < lo || s.LatencyMs > hi {
			continue
		}
		if !visible[s.FromID] || !visible[s.ToID] {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Pairs lists the pair keys of samples in snapshot order, without duplicates
func Pairs(samples []models.LatencySample) []string {
	seen := make(map[string]struct{}, len(samples))
	keys := make([]string, 0, len(samples))
	for _, s := range samples {
		k := s.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// PairHistory returns the series for key inside the lookback of r.
// An unknown range yields an empty series, a malformed key ErrUnknownPair.
func PairHistory(h *HistoryStore, key string, r models.TimeRange, now time.Time) ([]models.HistoryPoint, error) {
	if _, _, ok := models.ParsePairKey(key); !ok {
		return nil, ErrUnknownPair
	}
	return h.Window(key, r, now), nil
}
