// Telemetry structs with greptime tags
package telemetry

import (
	"os"
	"time"
)

// SensorReading represents one node reading for a single tick.
type SensorReading struct {
	PipelineID  string    `json:"pipeline_id"` // TAG
	NodeID      string    `json:"node_id"`     // TAG
	Name        string    `json:"name"`        // FIELD
	Location    string    `json:"location"`    // FIELD
	Lat         float64   `json:"lat"`         // FIELD
	Lon         float64   `json:"lon"`         // FIELD
	Pressure    float64   `json:"pressure"`    // FIELD, bar
	Flow        float64   `json:"flow"`        // FIELD, m3/h
	Temperature float64   `json:"temperature"` // FIELD, Celsius
	Vibration   float64   `json:"vibration"`   // FIELD, mm/s
	Acoustic    float64   `json:"acoustic"`    // FIELD, dB
	Corrosion   float64   `json:"corrosion"`   // FIELD, mm/y
	Status      string    `json:"status"`      // FIELD
	Timestamp   time.Time `json:"ts"`          // TIME INDEX
}

// TelemetryTableName holds the table name used when writing to GreptimeDB.
// It defaults to "pipeline_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "pipeline_telemetry"
}()

func (SensorReading) TableName() string {
	return TelemetryTableName
}

// NodeState holds runtime state for one sensor node: the previous tick's
// smoothed values, which the smoothing filter folds the next targets into.
type NodeState struct {
	ID          string
	Name        string
	Location    string
	Lat         float64
	Lon         float64
	Pressure    float64
	Flow        float64
	Temperature float64
	Vibration   float64
	Acoustic    float64
	Corrosion   float64
	Status      string

	primed bool
}

// HistoryEntry is a timestamped sample of the reference node's metrics,
// recorded once per active tick for trend display.
type HistoryEntry struct {
	NodeID      string    `json:"node_id"`
	Pressure    float64   `json:"pressure"`
	Flow        float64   `json:"flow"`
	Temperature float64   `json:"temperature"`
	Vibration   float64   `json:"vibration"`
	Acoustic    float64   `json:"acoustic"`
	Corrosion   float64   `json:"corrosion"`
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"ts"`
}

// Node status constants.
const (
	StatusNormal   = "normal"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)
