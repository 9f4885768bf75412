// Writer implementation printing telemetry to STDOUT
package sim

import (
	"encoding/json"
	"fmt"

	"pipeops-sim/internal/telemetry"
)

// StdoutWriter prints sensor readings to STDOUT as JSONL.
type StdoutWriter struct{}

// Write outputs a single reading.
func (w *StdoutWriter) Write(row telemetry.SensorReading) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteBatch outputs multiple readings.
func (w *StdoutWriter) WriteBatch(rows []telemetry.SensorReading) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}
