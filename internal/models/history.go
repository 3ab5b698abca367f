package models

import (
	"strings"
	"time"
)

// PairSeparator joins the two node ids of a history key
const PairSeparator = "::"

// LatencySample is one synthetic measurement between two nodes
type LatencySample struct {
	FromID    string    `json:"fromId"`
	ToID      string    `json:"toId"`
	LatencyMs float64   `json:"latencyMs"`
	Timestamp time.Time `json:"timestamp"`
}

// Key returns the history key for the sample's pair
func (s LatencySample) Key() string {
	return PairKey(s.FromID, s.ToID)
}

// HistoryPoint is one charted point of a pair's series
type HistoryPoint struct {
	T   time.Time `json:"t"`
	Min float64   `json:"min"`
	Max float64   `json:"max"`
	Avg float64   `json:"avg"`
}

// PairKey builds the canonical "from::to" key. Direction is kept as given.
func PairKey(fromID, toID string) string {
	return fromID + PairSeparator + toID
}

// ParsePairKey splits a key built by PairKey
func ParsePairKey(key string) (fromID, toID string, ok bool) {
	fromID, toID, ok = strings.Cut(key, PairSeparator)
	if !ok || fromID == "" || toID == "" {
		return "", "", false
	}
	return fromID, toID, true
}
