// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration for YAML fields like "2s" or "500ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// NodeConfig defines one sensor node on the pipeline.
type NodeConfig struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	Location string  `yaml:"location"`
	Lat      float64 `yaml:"lat"`
	Lon      float64 `yaml:"lon"`
}

// MQTTFeed configures the MQTT health feed source.
type MQTTFeed struct {
	BrokerURL string `yaml:"broker_url"`
	Topic     string `yaml:"topic"`
	ClientID  string `yaml:"client_id"`
}

// KafkaFeed configures the Kafka health feed source.
type KafkaFeed struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// FeedConfig selects which health feed sources run alongside the engine.
// All sources are optional; the HTTP ingest endpoint is always available.
type FeedConfig struct {
	File  string     `yaml:"file,omitempty"`
	MQTT  *MQTTFeed  `yaml:"mqtt,omitempty"`
	Kafka *KafkaFeed `yaml:"kafka,omitempty"`
}

// SimulationConfig is the root configuration for the pipeline and engine.
type SimulationConfig struct {
	PipelineID      string       `yaml:"pipeline_id"`
	Nodes           []NodeConfig `yaml:"nodes"`
	TickInterval    Duration     `yaml:"tick_interval"`
	StartupDelay    Duration     `yaml:"startup_delay"`
	HistoryCapacity int          `yaml:"history_capacity"`
	AutoResume      bool         `yaml:"auto_resume"`
	Feed            FeedConfig   `yaml:"feed"`
	AdminAddr       string       `yaml:"admin_addr"`
}

// Load loads YAML config, validates it against a CUE schema, and applies
// defaults. Topology violations surface here as fatal startup errors.
func Load(configPath, cueSchemaPath string) (*SimulationConfig, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg SimulationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *SimulationConfig) applyDefaults() {
	if c.TickInterval <= 0 {
		c.TickInterval = Duration(time.Second)
	}
	if c.StartupDelay <= 0 {
		c.StartupDelay = Duration(6 * time.Second)
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = 30
	}
	if c.AdminAddr == "" {
		c.AdminAddr = ":8080"
	}
}

// Validate checks the structural contract the engine cannot start without.
func (c *SimulationConfig) Validate() error {
	if c.PipelineID == "" {
		return fmt.Errorf("config: pipeline_id is required")
	}
	if len(c.Nodes) < 2 {
		return fmt.Errorf("config: at least 2 nodes required, got %d", len(c.Nodes))
	}
	seen := make(map[string]struct{}, len(c.Nodes))
	for i, n := range c.Nodes {
		if n.ID == "" {
			return fmt.Errorf("config: node %d has empty id", i)
		}
		if _, dup := seen[n.ID]; dup {
			return fmt.Errorf("config: duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}
