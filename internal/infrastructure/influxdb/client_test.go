package influxdb

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/config"
)

func TestConnect_Disabled(t *testing.T) {
	client, err := Connect(config.InfluxDBConfig{Enabled: false})
	if !errors.Is(err, ErrDisabled) {
		t.Fatalf("Connect() error = %v, want ErrDisabled", err)
	}
	if client != nil {
		t.Error("Connect() returned a client while disabled")
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if c.IsConnected() {
		t.Error("nil client reports connected")
	}
	c.WriteCompileStats(RunStats{ProjectID: 1})
	c.Flush()
	if err := c.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestHealthCheck_NotConnected(t *testing.T) {
	c := &Client{}
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name          string
		cfg           config.InfluxDBConfig
		wantBatch     uint
		wantFlushMsec uint
	}{
		{"configured", config.InfluxDBConfig{BatchSize: 500, FlushInterval: 2}, 500, 2000},
		{"unset", config.InfluxDBConfig{}, defaultBatchSize, defaultFlushInterval * millisecondsPerSecond},
		{"negative", config.InfluxDBConfig{BatchSize: -1, FlushInterval: -5}, defaultBatchSize, defaultFlushInterval * millisecondsPerSecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := clientOptions(tt.cfg)
			if opts.BatchSize() != tt.wantBatch {
				t.Errorf("BatchSize() = %d, want %d", opts.BatchSize(), tt.wantBatch)
			}
			if opts.FlushInterval() != tt.wantFlushMsec {
				t.Errorf("FlushInterval() = %d, want %d", opts.FlushInterval(), tt.wantFlushMsec)
			}
		})
	}
}

func TestCompilePoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p := compilePoint(RunStats{
		ProjectID: 42,
		Direction: "export",
		Format:    "roehn",
		Circuits:  5,
		Modules:   4,
		Links:     4,
		Keypads:   1,
		Scenes:    1,
		Skipped:   2,
		Duration:  1500 * time.Millisecond,
		At:        at,
	})

	if p.Name() != MeasurementCompileRuns {
		t.Errorf("measurement = %q", p.Name())
	}
	if !p.Time().Equal(at) {
		t.Errorf("time = %v, want %v", p.Time(), at)
	}

	tags := make(map[string]string)
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	wantTags := map[string]string{"project_id": "42", "direction": "export", "format": "roehn"}
	for k, v := range wantTags {
		if tags[k] != v {
			t.Errorf("tag %s = %q, want %q", k, tags[k], v)
		}
	}

	fields := make(map[string]string)
	for _, f := range p.FieldList() {
		fields[f.Key] = fmt.Sprint(f.Value)
	}
	wantFields := map[string]string{"circuits": "5", "skipped": "2", "duration_ms": "1500"}
	for k, v := range wantFields {
		if fields[k] != v {
			t.Errorf("field %s = %q, want %q", k, fields[k], v)
		}
	}
}

func TestCompilePoint_DefaultsTime(t *testing.T) {
	before := time.Now()
	p := compilePoint(RunStats{ProjectID: 1, Direction: "import", Format: "snapshot"})
	if p.Time().Before(before) {
		t.Errorf("time = %v, want now", p.Time())
	}
}
