package main

import (
	"context"
	"os"

	"golang.org/x/term"

	"pipeops-sim/internal/config"
	"pipeops-sim/internal/sim"
)

// newWriters sets up telemetry writers based on flags and env vars. It
// returns the writer and a cleanup function to close any resources.
func newWriters(cfg *config.SimulationConfig, printOnly bool, logFile string, tui *sim.TUIWriter) (sim.TelemetryWriter, func(), error) {
	cleanup := func() {}

	writers, closers, err := baseWriters(cfg, printOnly, tui)
	if err != nil {
		return nil, nil, err
	}

	if logFile != "" {
		fw, err := sim.NewFileWriter(logFile, logFile+".history")
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, fw)
		closers = append(closers, func() { fw.Close() })
	}

	if len(closers) > 0 {
		cleanup = func() {
			for _, c := range closers {
				c()
			}
		}
	}
	if len(writers) == 1 {
		return writers[0], cleanup, nil
	}
	return sim.NewMultiWriter(writers...), cleanup, nil
}

// baseWriters chooses the primary writers from the TUI flag, printOnly flag,
// and sink env vars.
func baseWriters(cfg *config.SimulationConfig, printOnly bool, tui *sim.TUIWriter) ([]sim.TelemetryWriter, []func(), error) {
	if tui != nil {
		return []sim.TelemetryWriter{tui}, nil, nil
	}

	greptimeEndpoint := os.Getenv("GREPTIMEDB_ENDPOINT")
	postgresURL := os.Getenv("DATABASE_URL")
	if printOnly || (greptimeEndpoint == "" && postgresURL == "") {
		return []sim.TelemetryWriter{consoleWriter(cfg)}, nil, nil
	}

	var writers []sim.TelemetryWriter
	var closers []func()
	if greptimeEndpoint != "" {
		w, err := sim.NewGreptimeDBWriter(greptimeEndpoint, greptimeDatabase())
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, w)
	}
	if postgresURL != "" {
		w, err := sim.NewPostgresWriter(context.Background(), postgresURL)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, w)
		closers = append(closers, w.Close)
	}
	return writers, closers, nil
}

// consoleWriter prefers the colorized format on a terminal and falls back to
// JSONL when output is piped.
func consoleWriter(cfg *config.SimulationConfig) sim.TelemetryWriter {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return sim.NewColorStdoutWriter(cfg)
	}
	return &sim.StdoutWriter{}
}

func greptimeDatabase() string {
	if db := os.Getenv("GREPTIMEDB_DATABASE"); db != "" {
		return db
	}
	return "public"
}

// newTelemetryWriter creates a replay writer without file export or TUI.
func newTelemetryWriter(cfg *config.SimulationConfig, printOnly bool) (sim.TelemetryWriter, func(), error) {
	return newWriters(cfg, printOnly, "", nil)
}
