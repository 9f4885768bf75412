package sim

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"pipeops-sim/internal/telemetry"
)

// Replayer re-emits a recorded telemetry log through a writer, pacing rows by
// the gaps between their recorded timestamps. Speed scales the pacing: 2 plays
// back twice as fast, 0 or less disables pacing entirely.
type Replayer struct {
	Writer TelemetryWriter
	Speed  float64

	sleep func(time.Duration)
}

// Replay streams sensor readings from r to the writer.
func (rp *Replayer) Replay(r io.Reader) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row telemetry.SensorReading
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("replay: decode reading: %w", err)
		}
		rp.pace(prev, row.Timestamp)
		if err := rp.Writer.Write(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayHistory streams trend history samples from r. Writers without history
// support skip the stream entirely.
func (rp *Replayer) ReplayHistory(r io.Reader) error {
	hw, ok := rp.Writer.(historyWriter)
	if !ok {
		return nil
	}
	dec := json.NewDecoder(r)
	for {
		var entry telemetry.HistoryEntry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("replay: decode history sample: %w", err)
		}
		if err := hw.WriteHistory(entry); err != nil {
			return err
		}
	}
}

func (rp *Replayer) pace(prev, cur time.Time) {
	if prev.IsZero() || rp.Speed <= 0 {
		return
	}
	diff := cur.Sub(prev)
	if rp.Speed != 1 {
		diff = time.Duration(float64(diff) / rp.Speed)
	}
	if diff <= 0 {
		return
	}
	if rp.sleep != nil {
		rp.sleep(diff)
		return
	}
	time.Sleep(diff)
}

// ReplayLogFile replays the telemetry log at path. A companion history log at
// path+".history", as produced by FileWriter, is replayed afterwards when
// present.
func ReplayLogFile(path string, writer TelemetryWriter, speed float64) error {
	rp := &Replayer{Writer: writer, Speed: speed}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := rp.Replay(f); err != nil {
		return err
	}

	hf, err := os.Open(path + ".history")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer hf.Close()
	return rp.ReplayHistory(hf)
}
