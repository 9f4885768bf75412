package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pipeops-sim/internal/config"
	"pipeops-sim/internal/sim"
)

var (
	replayInput     string
	replaySpeed     float64
	replayPrintOnly bool
	replayConfig    string
	replaySchema    string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a telemetry log file",
	Long:  "replay feeds sensor readings from a JSONL log back into the configured sinks or STDOUT.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}
		var cfg *config.SimulationConfig
		if replayConfig != "" {
			loaded, err := config.Load(replayConfig, replaySchema)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		writer, cleanup, err := newTelemetryWriter(cfg, replayPrintOnly)
		if err != nil {
			return err
		}
		defer cleanup()
		return sim.ReplayLogFile(replayInput, writer, replaySpeed)
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to sinks")
	replayCmd.Flags().StringVar(&replayConfig, "config", "", "Optional configuration YAML for the console overview")
	replayCmd.Flags().StringVar(&replaySchema, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	replayCmd.MarkFlagRequired("input") //nolint:errcheck
}
