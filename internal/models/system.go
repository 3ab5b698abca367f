package models

import "time"

// RuntimeStatus describes the simulator process and its host
type RuntimeStatus struct {
	PID               int32     `json:"pid"`
	CPUPercent        float64   `json:"cpu_percent"`
	RSSMB             float64   `json:"rss_mb"`
	Threads           int32     `json:"threads"`
	Goroutines        int       `json:"goroutines"`
	HostCores         int       `json:"host_cores"`
	HostMemoryPercent float64   `json:"host_memory_percent"`
	HostMemoryTotalGB float64   `json:"host_memory_total_gb"`
	Uptime            string    `json:"uptime"`
	CollectedAt       time.Time `json:"collected_at"`
}

// SimulationStatus reports the scheduler state
type SimulationStatus struct {
	Running       bool      `json:"running"`
	Interval      string    `json:"interval"`
	HistoryPolicy string    `json:"history_policy"`
	Ticks         uint64    `json:"ticks"`
	LastUpdate    time.Time `json:"last_update"`
	// HistoryCapacity is the per-pair ring size
	HistoryCapacity int `json:"history_capacity"`
}

// Summary is the dashboard overview of the whole snapshot. The Visible
// counts report what the current filters let through.
type Summary struct {
	Connections        int            `json:"connections"`
	Nodes              int            `json:"nodes"`
	VisibleConnections int            `json:"visible_connections"`
	VisibleNodes       int            `json:"visible_nodes"`
	AvgMs       float64        `json:"avg_ms"`
	AvgRoundMs  int            `json:"avg_round_ms"`
	MinMs       float64        `json:"min_ms"`
	MaxMs       float64        `json:"max_ms"`
	P95Ms       float64        `json:"p95_ms"`
	Bands       map[string]int `json:"bands"`
	LastUpdate  time.Time      `json:"last_update"`
}
