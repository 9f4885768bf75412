// CUE-backed schema validation for the simulation config.
package config

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"
)

// ValidateWithCue unifies the simulation YAML with the CUE schema and reports
// any constraint violation. Schema failures are startup-time errors; Load
// treats them as fatal.
func ValidateWithCue(configFile, cueFile string) error {
	schemaBytes, err := os.ReadFile(cueFile)
	if err != nil {
		return fmt.Errorf("config: read CUE schema %s: %w", cueFile, err)
	}
	yamlBytes, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", configFile, err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaBytes)
	if schema.Err() != nil {
		return fmt.Errorf("config: compile CUE schema %s: %w", cueFile, schema.Err())
	}
	yamlFile, err := yaml.Extract(configFile, yamlBytes)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", configFile, err)
	}
	doc := ctx.BuildFile(yamlFile)
	if doc.Err() != nil {
		return fmt.Errorf("config: parse %s: %w", configFile, doc.Err())
	}

	unified := doc.Unify(schema)
	if unified.Err() != nil {
		return fmt.Errorf("config: %s violates schema: %w", configFile, unified.Err())
	}
	if err := unified.Validate(); err != nil {
		return fmt.Errorf("config: %s violates schema: %w", configFile, err)
	}
	return nil
}
