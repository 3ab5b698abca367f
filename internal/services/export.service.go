package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"latencyviz/internal/models"
	"strconv"
	"time"
)

// ExportTimeLayout is ISO-8601 in UTC with millisecond precision
const ExportTimeLayout = "2006-01-02T15:04:05.000Z"

var csvHeader = []string{"fromId", "toId", "latencyMs", "timestamp"}

// WriteConnectionsCSV writes one row per sample after the header
func WriteConnectionsCSV(w io.Writer, samples []models.LatencySample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range samples {
		row := []string{
			s.FromID,
			s.ToID,
			strconv.FormatFloat(s.LatencyMs, 'f', -1, 64),
			s.Timestamp.UTC().Format(ExportTimeLayout),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", s.Key(), err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFileName names a connections export taken at t
func ExportFileName(t time.Time) string {
	return fmt.Sprintf("latency-connections-%d.csv", t.UnixMilli())
}
