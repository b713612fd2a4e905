// Package config holds the reasonctl driver's YAML-configurable settings:
// prover budgets, the oracle endpoint, persistence location, and logging.
//
// Grounded on internal/config/config.go's Config/DefaultConfig/Load/Save
// shape (nested per-concern sub-structs, a DefaultConfig constructor, YAML
// load with environment-variable overrides, YAML save), trimmed to the
// sections this domain actually has — there is no LLM provider, shard, or
// embedding-engine concern here, so those sub-structs have no counterpart.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the reasonctl driver's full configuration.
type Config struct {
	Workspace   string            `yaml:"workspace"`
	Provers     ProverConfig      `yaml:"provers"`
	Oracle      OracleConfig      `yaml:"oracle"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ProverConfig controls the per-goal prover budget (spec.md 5: each
// prover call in a portfolio attempt is bounded).
type ProverConfig struct {
	// BudgetPerProver is a duration string (e.g. "10s"), the ceiling
	// internal/kernel.Config.ProverBudget applies to every prover call.
	BudgetPerProver string `yaml:"budget_per_prover"`
	// Z3Path is the z3 binary path or name used by the SMT adapter's
	// os/exec.CommandContext invocation. Empty defaults to "z3" on PATH.
	Z3Path string `yaml:"z3_path"`
}

// OracleConfig mirrors internal/provers.OracleConfig's externally
// configurable fields.
type OracleConfig struct {
	Endpoint    string `yaml:"endpoint"`
	HTTPTimeout string `yaml:"http_timeout"`
	CacheTTL    string `yaml:"cache_ttl"`
}

// PersistenceConfig controls where the kernel's state artifact lives.
type PersistenceConfig struct {
	// Path is the kernel state file. Empty defaults to
	// "<Workspace>/.reasonkernel/kernel_state.json" (see PersistencePath).
	Path string `yaml:"path"`
}

// LoggingConfig controls reasonctl's logging.
type LoggingConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the configuration used when no config file is
// present, matching the defaults baked into internal/provers and
// internal/kernel so an unconfigured reasonctl still behaves per
// spec.md's stated defaults (10s prover budget, 1h oracle cache TTL,
// 5s oracle HTTP timeout).
func DefaultConfig() *Config {
	return &Config{
		Workspace: ".",
		Provers: ProverConfig{
			BudgetPerProver: "10s",
			Z3Path:          "z3",
		},
		Oracle: OracleConfig{
			Endpoint:    "http://localhost:5000/oracle",
			HTTPTimeout: "5s",
			CacheTTL:    "1h",
		},
		Persistence: PersistenceConfig{
			Path: "",
		},
		Logging: LoggingConfig{
			Verbose: false,
		},
	}
}

// Load reads configuration from a YAML file, falling back to
// DefaultConfig when the file doesn't exist — matching
// internal/config.Load's "missing file is not an error" behavior — and
// applying environment-variable overrides afterward either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to path as YAML, creating parent
// directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets the oracle endpoint, the z3 binary path and the
// workspace directory be set without editing the config file, matching
// internal/config's environment-override convention (CODENERD_DB,
// OLLAMA_ENDPOINT, etc.) adapted to this domain.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REASONKERNEL_ORACLE_ENDPOINT"); v != "" {
		c.Oracle.Endpoint = v
	}
	if v := os.Getenv("REASONKERNEL_Z3_PATH"); v != "" {
		c.Provers.Z3Path = v
	}
	if v := os.Getenv("REASONKERNEL_WORKSPACE"); v != "" {
		c.Workspace = v
	}
}

// ProverBudget parses Provers.BudgetPerProver, falling back to 10s
// (spec.md 5's stated default) on a malformed duration string, matching
// internal/config's GetLLMTimeout-style parse-with-fallback helpers.
func (c *Config) ProverBudget() time.Duration {
	d, err := time.ParseDuration(c.Provers.BudgetPerProver)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// OracleHTTPTimeout parses Oracle.HTTPTimeout, falling back to 5s.
func (c *Config) OracleHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.Oracle.HTTPTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// OracleCacheTTL parses Oracle.CacheTTL, falling back to 1h.
func (c *Config) OracleCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Oracle.CacheTTL)
	if err != nil {
		return time.Hour
	}
	return d
}

// PersistencePath returns the configured state-file path, or the
// conventional default under Workspace when unset.
func (c *Config) PersistencePath() string {
	if c.Persistence.Path != "" {
		return c.Persistence.Path
	}
	return filepath.Join(c.Workspace, ".reasonkernel", "kernel_state.json")
}
