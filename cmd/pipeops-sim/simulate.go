package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pipeops-sim/internal/admin"
	"pipeops-sim/internal/config"
	"pipeops-sim/internal/health"
	"pipeops-sim/internal/logging"
	"pipeops-sim/internal/scenario"
	"pipeops-sim/internal/sim"
	"pipeops-sim/internal/topology"
	"pipeops-sim/internal/ws"
)

var (
	simPrintOnly  bool
	simConfigPath string
	simSchemaPath string
	simLogFile    string
	simTUI        bool
	simScenario   string
	simAutoResume bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time pipeline telemetry engine",
	Long:  "simulate starts the cascade engine, emitting per-node sensor readings and serving the control API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}
		if err := applyEnvOverrides(cfg); err != nil {
			return err
		}

		log := logging.New()
		ctx, cancel := context.WithCancel(logging.NewContext(context.Background(), log))
		defer cancel()

		pipe, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		store := health.NewStore(log)

		var tui *sim.TUIWriter
		if simTUI {
			tui = sim.NewTUIWriter(cfg)
		}
		writer, cleanup, err := newWriters(cfg, simPrintOnly, simLogFile, tui)
		if err != nil {
			return err
		}
		defer cleanup()

		simulator := sim.NewSimulator(cfg, pipe, store, writer, nil, nil)
		ctrl := simulator.Controller()

		if tui != nil {
			tui.SetPauseFunc(func() {
				ctrl.Pause()
				tui.SetRunState(ctrl.State())
			})
			tui.SetResumeFunc(func() {
				tui.SetRunState(sim.StateStarting)
				if err := ctrl.Resume(ctx); err != nil && !errors.Is(err, sim.ErrResumeInterrupted) {
					log.Error("resume failed", "err", err)
				}
				tui.SetRunState(ctrl.State())
			})
			defer tui.Close()
		}

		startFeedSources(ctx, cfg, store, log)

		if simScenario != "" {
			player, err := newScenarioPlayer(simScenario, store, log)
			if err != nil {
				return err
			}
			go func() {
				if err := player.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("scenario player stopped", "err", err)
				}
			}()
		}

		hub := ws.New(simulator)
		go hub.Run(ctx)

		srv := admin.NewServer(simulator, hub)
		go func() {
			log.Info("admin API listening", "addr", cfg.AdminAddr)
			if err := srv.Start(cfg.AdminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server failed", "err", err)
				cancel()
			}
		}()

		if simAutoResume || cfg.AutoResume {
			go func() {
				if err := ctrl.Resume(ctx); err != nil && !errors.Is(err, sim.ErrResumeInterrupted) {
					log.Error("auto-resume failed", "err", err)
				}
				if tui != nil {
					tui.SetRunState(ctrl.State())
				}
			}()
		}

		go simulator.Run(ctx)

		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-sigs:
		case <-ctx.Done():
		}

		cancel()
		// Give feed sources and the hub a moment to close connections.
		time.Sleep(100 * time.Millisecond)
		log.Info("pipeline simulation stopped")
		return nil
	},
}

// applyEnvOverrides lets deployment env vars override the YAML config.
func applyEnvOverrides(cfg *config.SimulationConfig) error {
	if id := os.Getenv("PIPELINE_ID"); id != "" {
		cfg.PipelineID = id
	}
	if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
		d, err := time.ParseDuration(envTick)
		if err != nil {
			return fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		cfg.TickInterval = config.Duration(d)
	}
	if broker := os.Getenv("MQTT_BROKER_URL"); broker != "" {
		if cfg.Feed.MQTT == nil {
			cfg.Feed.MQTT = &config.MQTTFeed{Topic: "pipeops/health", ClientID: "pipeops-sim"}
		}
		cfg.Feed.MQTT.BrokerURL = broker
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		if cfg.Feed.Kafka == nil {
			cfg.Feed.Kafka = &config.KafkaFeed{Topic: "pipeops.health", GroupID: "pipeops-sim"}
		}
		cfg.Feed.Kafka.Brokers = strings.Split(brokers, ",")
	}
	return nil
}

func buildPipeline(cfg *config.SimulationConfig) (*topology.Pipeline, error) {
	nodes := make([]topology.Node, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		nodes = append(nodes, topology.Node{
			ID:       n.ID,
			Name:     n.Name,
			Location: n.Location,
			Lat:      n.Lat,
			Lon:      n.Lon,
		})
	}
	return topology.New(cfg.PipelineID, nodes)
}

// startFeedSources launches the configured health feed consumers.
func startFeedSources(ctx context.Context, cfg *config.SimulationConfig, store *health.Store, log *slog.Logger) {
	if cfg.Feed.File != "" {
		go func() {
			if err := store.WatchFile(ctx, cfg.Feed.File); err != nil {
				log.Error("health file watcher failed", "path", cfg.Feed.File, "err", err)
			}
		}()
	}
	if m := cfg.Feed.MQTT; m != nil {
		src := &health.MQTTSource{BrokerURL: m.BrokerURL, Topic: m.Topic, ClientID: m.ClientID, Store: store}
		go func() {
			if err := src.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("mqtt feed failed", "broker", m.BrokerURL, "err", err)
			}
		}()
	}
	if k := cfg.Feed.Kafka; k != nil {
		src := &health.KafkaSource{Brokers: k.Brokers, Topic: k.Topic, GroupID: k.GroupID, Store: store}
		go func() {
			if err := src.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("kafka feed failed", "brokers", k.Brokers, "err", err)
			}
		}()
	}
}

// newScenarioPlayer resolves a built-in scenario name or a YAML path.
func newScenarioPlayer(nameOrPath string, store *health.Store, log *slog.Logger) (*scenario.Player, error) {
	if sc, ok := scenario.BuiltIn()[nameOrPath]; ok {
		return scenario.NewPlayer(&sc, store, log, nil), nil
	}
	sc, err := scenario.Load(nameOrPath)
	if err != nil {
		return nil, fmt.Errorf("scenario %q is not built-in and could not be loaded: %w", nameOrPath, err)
	}
	return scenario.NewPlayer(sc, store, log, nil), nil
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to sinks")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry/history logs (JSONL)")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Render telemetry in an interactive terminal dashboard")
	simulateCmd.Flags().StringVar(&simScenario, "scenario", "", "Built-in scenario name or YAML path driving the health feed")
	simulateCmd.Flags().BoolVar(&simAutoResume, "auto-resume", false, "Resume the engine on startup instead of waiting for the control API")
}
