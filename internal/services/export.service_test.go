package services

import (
	"bytes"
	"latencyviz/internal/models"
	"strings"
	"testing"
	"time"
)

func TestWriteConnectionsCSV(t *testing.T) {
	t.Parallel()

	samples := []models.LatencySample{
		{FromID: "a", ToID: "b", LatencyMs: 42, Timestamp: time.UnixMilli(1_700_000_000_123)},
		{FromID: "b", ToID: "c", LatencyMs: 87.5, Timestamp: time.UnixMilli(1_700_000_005_007)},
	}

	var buf bytes.Buffer
	if err := WriteConnectionsCSV(&buf, samples); err != nil {
		t.Fatalf("WriteConnectionsCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines=%d\n%s", len(lines), buf.String())
	}
	want := []string{
		"fromId,toId,latencyMs,timestamp",
		"a,b,42,2023-11-14T22:13:20.123Z",
		"b,c,87.5,2023-11-14T22:13:25.007Z",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d=%q want=%q", i, lines[i], want[i])
		}
	}

	for i, line := range lines[1:] {
		ts := line[strings.LastIndex(line, ",")+1:]
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			t.Fatalf("row %d timestamp: %v", i, err)
		}
		if parsed.UnixMilli() != samples[i].Timestamp.UnixMilli() {
			t.Fatalf("row %d millis=%d", i, parsed.UnixMilli())
		}
	}
}

func TestExportFileName(t *testing.T) {
	t.Parallel()

	got := ExportFileName(time.UnixMilli(1_700_000_000_123))
	if got != "latency-connections-1700000000123.csv" {
		t.Fatalf("name=%s", got)
	}
}
