// Package config defines the tunable constants of the matcher and loads
// them from an optional YAML file. Every constant the matching algorithm
// depends on lives here so a run is reproducible from its config alone.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v2"
)

// Config holds all tunables of the matching pipeline.
type Config struct {
	// OpcodeWeight is the weight of opcode-sequence similarity in the
	// star score. OpcodeWeight and DegreeWeight must sum to 1.
	OpcodeWeight float64 `yaml:"opcode-weight"`
	// DegreeWeight is the weight of in/out-degree similarity in the
	// star score.
	DegreeWeight float64 `yaml:"degree-weight"`
	// MinScore is the minimum star score at which a candidate pair is
	// confirmed. Pairs scoring below it stay unmatched.
	MinScore float64 `yaml:"min-score"`
	// MatchCallers also propagates through caller edges, not only
	// callee edges.
	MatchCallers bool `yaml:"match-callers"`
	// ScoreCacheSize is the number of vertex-pair scores kept in the
	// comparator's LRU cache.
	ScoreCacheSize int `yaml:"score-cache-size"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		OpcodeWeight:   0.8,
		DegreeWeight:   0.2,
		MinScore:       0.35,
		MatchCallers:   true,
		ScoreCacheSize: 1 << 16,
	}
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.OpcodeWeight < 0 || c.OpcodeWeight > 1 {
		return fmt.Errorf("config: opcode-weight %v outside [0,1]", c.OpcodeWeight)
	}
	if c.DegreeWeight < 0 || c.DegreeWeight > 1 {
		return fmt.Errorf("config: degree-weight %v outside [0,1]", c.DegreeWeight)
	}
	if math.Abs(c.OpcodeWeight+c.DegreeWeight-1) > 1e-9 {
		return fmt.Errorf("config: opcode-weight + degree-weight = %v, want 1",
			c.OpcodeWeight+c.DegreeWeight)
	}
	if c.MinScore < 0 || c.MinScore > 1 {
		return fmt.Errorf("config: min-score %v outside [0,1]", c.MinScore)
	}
	if c.ScoreCacheSize <= 0 {
		return fmt.Errorf("config: score-cache-size must be positive, got %d", c.ScoreCacheSize)
	}
	return nil
}

// Load reads a YAML config file and overlays it on the defaults.
// Fields absent from the file keep their default values.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}
