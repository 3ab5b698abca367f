package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxSearchLength bounds the free-text search filter in bytes
const MaxSearchLength = 128

// ErrInvalidSearch is returned for an over-long search or one with control characters
var ErrInvalidSearch = errors.New("invalid search")

// ViewMode selects between live arcs and charted history
type ViewMode string

const (
	ViewRealtime   ViewMode = "realtime"
	ViewHistorical ViewMode = "historical"
)

// TimeRange is the lookback window applied to history charts
type TimeRange string

const (
	Range1h  TimeRange = "1h"
	Range24h TimeRange = "24h"
	Range7d  TimeRange = "7d"
	Range30d TimeRange = "30d"
)

// Lookback returns the window for a known range
func (r TimeRange) Lookback() (time.Duration, bool) {
	switch r {
	case Range1h:
		return time.Hour, true
	case Range24h:
		return 24 * time.Hour, true
	case Range7d:
		return 7 * 24 * time.Hour, true
	case Range30d:
		return 30 * 24 * time.Hour, true
	default:
		return 0, false
	}
}

// Filters decide what readers see. They never change stored data.
type Filters struct {
	Providers    map[Provider]bool `json:"providers"`
	Exchanges    []Exchange        `json:"exchanges"` // nil means every exchange
	LatencyRange [2]float64        `json:"latencyRange"`
	ViewMode     ViewMode          `json:"viewMode"`
	Search       string            `json:"search"`
	TimeRange    TimeRange         `json:"timeRange"`
}

// DefaultFilters shows everything up to 250ms in realtime mode
func DefaultFilters() Filters {
	providers := make(map[Provider]bool, len(Providers))
	for _, p := range Providers {
		providers[p] = true
	}
	return Filters{
		Providers:    providers,
		Exchanges:    nil,
		LatencyRange: [2]float64{0, 250},
		ViewMode:     ViewRealtime,
		Search:       "",
		TimeRange:    Range1h,
	}
}

// Clone returns a deep copy so callers can't reach into the store's maps
func (f Filters) Clone() Filters {
	out := f
	if f.Providers != nil {
		out.Providers = make(map[Provider]bool, len(f.Providers))
		for k, v := range f.Providers {
			out.Providers[k] = v
		}
	}
	if f.Exchanges != nil {
		out.Exchanges = append([]Exchange{}, f.Exchanges...)
	}
	return out
}

// FiltersPatch carries only the fields a control changed.
// SetExchanges distinguishes "clear the allow-list" from "leave it alone".
type FiltersPatch struct {
	Providers    map[Provider]bool
	SetExchanges bool
	Exchanges    []Exchange
	LatencyRange *[2]float64
	ViewMode     *ViewMode
	Search       *string
	TimeRange    *TimeRange
}

// Apply shallow-merges the patch into f and returns the result. Providers
// merge per key, so toggling one provider leaves the others as they were.
func (p FiltersPatch) Apply(f Filters) Filters {
	out := f.Clone()
	if p.Providers != nil {
		if out.Providers == nil {
			out.Providers = make(map[Provider]bool, len(p.Providers))
		}
		for k, v := range p.Providers {
			out.Providers[k] = v
		}
	}
	if p.SetExchanges {
		if p.Exchanges == nil {
			out.Exchanges = nil
		} else {
			out.Exchanges = append([]Exchange{}, p.Exchanges...)
		}
	}
	if p.LatencyRange != nil {
		out.LatencyRange = *p.LatencyRange
	}
	if p.ViewMode != nil {
		out.ViewMode = *p.ViewMode
	}
	if p.Search != nil {
		out.Search = *p.Search
	}
	if p.TimeRange != nil {
		out.TimeRange = *p.TimeRange
	}
	return out
}

// IsEmpty reports whether the patch changes nothing
func (p FiltersPatch) IsEmpty() bool {
	return p.Providers == nil && !p.SetExchanges && p.LatencyRange == nil &&
		p.ViewMode == nil && p.Search == nil && p.TimeRange == nil
}

// Validate checks the fields that reach string matching
func (p FiltersPatch) Validate() error {
	if p.Search == nil {
		return nil
	}
	search := *p.Search
	if len(search) > MaxSearchLength || !utf8.ValidString(search) {
		return ErrInvalidSearch
	}
	for _, r := range search {
		if r < 0x20 || r == 0x7f {
			return ErrInvalidSearch
		}
	}
	return nil
}

// UnmarshalJSON records which keys were present, so that a JSON null for
// "exchanges" clears the allow-list while a missing key keeps it.
func (p *FiltersPatch) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = FiltersPatch{}
	for key, value := range raw {
		if key != "exchanges" && string(value) == "null" {
			continue
		}
		var err error
		switch key {
		case "providers":
			err = json.Unmarshal(value, &p.Providers)
		case "exchanges":
			p.SetExchanges = true
			err = json.Unmarshal(value, &p.Exchanges)
		case "latencyRange":
			var r [2]float64
			err = json.Unmarshal(value, &r)
			p.LatencyRange = &r
		case "viewMode":
			var v ViewMode
			err = json.Unmarshal(value, &v)
			p.ViewMode = &v
		case "search":
			var s string
			err = json.Unmarshal(value, &s)
			p.Search = &s
		case "timeRange":
			var r TimeRange
			err = json.Unmarshal(value, &r)
			p.TimeRange = &r
		default:
			return fmt.Errorf("unknown filter field %q", key)
		}
		if err != nil {
			return fmt.Errorf("filter field %q: %w", key, err)
		}
	}
	return nil
}
