package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementCompileRuns holds one point per finished export or import.
const MeasurementCompileRuns = "compile_runs"

// RunStats summarises one export or import of a project.
type RunStats struct {
	ProjectID int64
	// Direction is "export" or "import".
	Direction string
	// Format is "roehn" or "snapshot".
	Format   string
	Circuits int
	Modules  int
	Links    int
	Keypads  int
	Scenes   int
	Skipped  int
	Duration time.Duration
	At       time.Time
}

// WriteCompileStats records a run in the compile_runs measurement.
// It does nothing when the client is not connected.
func (c *Client) WriteCompileStats(s RunStats) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(compilePoint(s))
}

func compilePoint(s RunStats) *write.Point {
	at := s.At
	if at.IsZero() {
		at = time.Now()
	}
	return write.NewPoint(
		MeasurementCompileRuns,
		map[string]string{
			"project_id": strconv.FormatInt(s.ProjectID, 10),
			"direction":  s.Direction,
			"format":     s.Format,
		},
		map[string]interface{}{
			"circuits":    s.Circuits,
			"modules":     s.Modules,
			"links":       s.Links,
			"keypads":     s.Keypads,
			"scenes":      s.Scenes,
			"skipped":     s.Skipped,
			"duration_ms": s.Duration.Milliseconds(),
		},
		at,
	)
}
