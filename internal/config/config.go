// Package config loads the imagemgmt configuration file.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Workflow engines.
const (
	EngineSync        = "sync"
	EngineGoWorkflows = "goworkflows"
	EngineDBOS        = "dbos"
)

// Config is the complete imagemgmt configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Workflow WorkflowConfig `yaml:"workflow"`
	Dispatch DispatchConfig `yaml:"dispatch"`
}

// DatabaseConfig holds the SQLite store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "text", "json"
}

// WorkflowConfig selects and configures the dispatch workflow engine.
type WorkflowConfig struct {
	Engine string `yaml:"engine"`
	// BackendPath is the go-workflows SQLite backend file. Empty means
	// in memory.
	BackendPath string `yaml:"backend_path"`
	// DatabaseURL is the Postgres URL of the DBOS system database.
	DatabaseURL string        `yaml:"database_url"`
	AppName     string        `yaml:"app_name"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DispatchConfig holds flow dispatch settings.
type DispatchConfig struct {
	// DeterministicRampup keys rampup draws by flow name.
	DeterministicRampup bool `yaml:"deterministic_rampup"`
	// PrefetchProxyUsers maps job types to users whose credentials are
	// needed whenever the job type is present in a flow.
	PrefetchProxyUsers map[string][]string `yaml:"prefetch_proxy_users"`
	// Concurrency bounds how many flows are resolved at once.
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "imagemgmt.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Workflow: WorkflowConfig{
			Engine:  EngineSync,
			AppName: "imagemgmt",
			Timeout: 30 * time.Second,
		},
		Dispatch: DispatchConfig{
			Concurrency: 8,
		},
	}
}

// Load reads configuration from a YAML file. Environment variables in the
// file are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration over the defaults and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	data = []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format %q is not one of text, json", c.Log.Format)
	}

	switch c.Workflow.Engine {
	case EngineSync, EngineGoWorkflows:
	case EngineDBOS:
		if c.Workflow.DatabaseURL == "" {
			return fmt.Errorf("workflow.database_url is required for the %s engine", EngineDBOS)
		}
	default:
		return fmt.Errorf("workflow.engine %q is not one of %s, %s, %s",
			c.Workflow.Engine, EngineSync, EngineGoWorkflows, EngineDBOS)
	}
	if c.Workflow.Timeout < 0 {
		return fmt.Errorf("workflow.timeout must not be negative")
	}

	if c.Dispatch.Concurrency <= 0 {
		c.Dispatch.Concurrency = 8
	}
	for jobType, users := range c.Dispatch.PrefetchProxyUsers {
		if jobType == "" || strings.ContainsAny(jobType, ",;") {
			return fmt.Errorf("dispatch.prefetch_proxy_users: invalid job type %q", jobType)
		}
		for _, u := range users {
			if u == "" || strings.ContainsAny(u, ",;") {
				return fmt.Errorf("dispatch.prefetch_proxy_users[%s]: invalid user %q", jobType, u)
			}
		}
	}

	return nil
}

// PrefetchMapping renders the prefetch proxy users in the
// "jobtype,user;jobtype,user" form understood by the dispatch workflow.
func (d DispatchConfig) PrefetchMapping() string {
	jobTypes := make([]string, 0, len(d.PrefetchProxyUsers))
	for jt := range d.PrefetchProxyUsers {
		jobTypes = append(jobTypes, jt)
	}
	sort.Strings(jobTypes)

	var pairs []string
	for _, jt := range jobTypes {
		for _, u := range d.PrefetchProxyUsers[jt] {
			pairs = append(pairs, jt+","+u)
		}
	}
	return strings.Join(pairs, ";")
}
