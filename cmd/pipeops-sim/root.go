package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pipeops-sim",
	Short: "Pipeline telemetry simulation toolkit",
	Long:  "PipeOps-Sim provides a real-time pipeline telemetry engine and replay utilities.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Optional .env for sink endpoints and credentials.
	_ = godotenv.Load()

	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
}
