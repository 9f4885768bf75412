// ColorStdoutWriter prints human-friendly, colorized telemetry to STDOUT.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"pipeops-sim/internal/config"
	"pipeops-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

func colorWhite() string { return "\x1b[37m" }

func statusColor(status string) string {
	switch status {
	case telemetry.StatusCritical:
		return colorRed
	case telemetry.StatusWarning:
		return colorYellow
	default:
		return colorGreen
	}
}

// ColorStdoutWriter prints sensor readings using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintln(w.out, "Pipeline Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Pipeline ID:\t%s\n", w.cfg.PipelineID)
	fmt.Fprintf(tw, "Nodes:\t%d\n", len(w.cfg.Nodes))
	fmt.Fprintf(tw, "Tick Interval:\t%s\n", w.cfg.TickInterval.Std())
	fmt.Fprintf(tw, "Startup Delay:\t%s\n", w.cfg.StartupDelay.Std())
	fmt.Fprintf(tw, "History Capacity:\t%d\n", w.cfg.HistoryCapacity)
	tw.Flush()

	fmt.Fprintln(w.out, "\nNodes:")
	tw = tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tName\tLocation\n")
	for _, n := range w.cfg.Nodes {
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\n", colorBlue, n.ID, colorReset, n.Name, n.Location)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// Write outputs a single reading in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.SensorReading) error {
	w.once.Do(w.printOverview)

	sc := statusColor(row.Status)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%spipeline=%s%s ", colorBlue, row.PipelineID, colorReset)
	fmt.Fprintf(w.out, "%snode=%s%s ", colorWhite(), row.NodeID, colorReset)
	fmt.Fprintf(w.out, "%spressure=%.2f%s ", colorGreen, row.Pressure, colorReset)
	fmt.Fprintf(w.out, "%sflow=%.1f%s ", colorYellow, row.Flow, colorReset)
	fmt.Fprintf(w.out, "%stemp=%.1f%s ", colorMagenta, row.Temperature, colorReset)
	fmt.Fprintf(w.out, "%svib=%.2f%s ", colorCyan, row.Vibration, colorReset)
	fmt.Fprintf(w.out, "%sacoustic=%.1f%s ", colorBlue, row.Acoustic, colorReset)
	fmt.Fprintf(w.out, "%scorrosion=%.4f%s ", colorGray, row.Corrosion, colorReset)
	fmt.Fprintf(w.out, "%sstatus=%s%s", sc, row.Status, colorReset)
	fmt.Fprintln(w.out)
	return nil
}

// WriteBatch outputs multiple readings.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.SensorReading) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}
