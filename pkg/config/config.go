// Package config loads application settings and scenario documents.
package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"dcf_valuation/pkg/core/assumption"
	"dcf_valuation/pkg/core/reverse"
	"dcf_valuation/pkg/core/sensitivity"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables read by Load.
const (
	EnvConfigPath  = "DCF_CONFIG"
	EnvAddr        = "DCF_ADDR"
	EnvParallelism = "DCF_PARALLELISM"
)

// DefaultPath is used when neither a path nor DCF_CONFIG is given.
const DefaultPath = "config/dcf.yaml"

type Config struct {
	Server      ServerConfig        `yaml:"server"`
	Parallelism int                 `yaml:"parallelism"`
	SearchRange reverse.SearchRange `yaml:"search_range"`

	// Perturbation grids keyed by variable name.
	SensitivityGrids        map[string][]float64 `yaml:"sensitivity_grids"`
	ReverseSensitivityGrids map[string][]float64 `yaml:"reverse_sensitivity_grids"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Server:      ServerConfig{Addr: ":8080"},
		Parallelism: 1,
		SearchRange: reverse.DefaultSearchRange(),
		SensitivityGrids: map[string][]float64{
			"discount_rate":        {-0.20, -0.10, 0, 0.10, 0.20},
			"terminal_growth_rate": {-0.50, -0.25, 0, 0.25, 0.50},
		},
		ReverseSensitivityGrids: map[string][]float64{
			"discount_rate":        {-0.20, -0.10, 0, 0.10, 0.20},
			"terminal_growth_rate": {-0.50, -0.25, 0, 0.25, 0.50},
		},
	}
}

// LoadDotEnv reads a .env file into the process environment if one exists.
func LoadDotEnv(files ...string) error {
	for _, f := range append([]string{".env"}, files...) {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the config file at path, or DCF_CONFIG, or DefaultPath. A
// missing DefaultPath yields the defaults; a missing explicit path is an
// error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
		explicit = false
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if addr := os.Getenv(EnvAddr); addr != "" {
		c.Server.Addr = addr
	}
	if p := os.Getenv(EnvParallelism); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvParallelism, err)
		}
		c.Parallelism = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	d := Default()
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Parallelism < 1 {
		c.Parallelism = d.Parallelism
	}
	if c.SearchRange == (reverse.SearchRange{}) {
		c.SearchRange = d.SearchRange
	}
	if len(c.SensitivityGrids) == 0 {
		c.SensitivityGrids = d.SensitivityGrids
	}
	if len(c.ReverseSensitivityGrids) == 0 {
		c.ReverseSensitivityGrids = d.ReverseSensitivityGrids
	}
}

// Validate checks that every grid names a known variable and that the
// search range is usable.
func (c Config) Validate() error {
	if _, err := c.SearchRange.Len(); err != nil {
		return fmt.Errorf("search_range: %w", err)
	}
	if _, err := c.SensitivitySpecs(); err != nil {
		return err
	}
	if _, err := c.ReverseSensitivitySpecs(); err != nil {
		return err
	}
	return nil
}

// SensitivitySpecs converts the forward grids into runner specs, ordered by variable.
func (c Config) SensitivitySpecs() ([]sensitivity.Spec, error) {
	specs := make([]sensitivity.Spec, 0, len(c.SensitivityGrids))
	for name, grid := range c.SensitivityGrids {
		f, err := assumption.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("sensitivity_grids: %w", err)
		}
		specs = append(specs, sensitivity.Spec{Variable: f, Perturbations: grid})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Variable < specs[j].Variable })
	return specs, nil
}

// ReverseSensitivitySpecs converts the reverse grids into runner specs, ordered by variable.
func (c Config) ReverseSensitivitySpecs() ([]reverse.Spec, error) {
	specs := make([]reverse.Spec, 0, len(c.ReverseSensitivityGrids))
	for name, grid := range c.ReverseSensitivityGrids {
		f, err := reverse.ParseQueryField(name)
		if err != nil {
			return nil, fmt.Errorf("reverse_sensitivity_grids: %w", err)
		}
		specs = append(specs, reverse.Spec{Variable: f, Perturbations: grid})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Variable < specs[j].Variable })
	return specs, nil
}
