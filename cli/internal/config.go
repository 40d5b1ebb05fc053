package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/devilmonastery/biniq/internal/client"
	"github.com/devilmonastery/biniq/internal/pkg/textutil"
)

const (
	envConfigPath = "BINIQ_CONFIG"
	envBaseURL    = "BINIQ_BASE_URL"
	envStateDir   = "BINIQ_STATE_DIR"
)

// Context represents a named configuration context (like kubectl contexts)
type Context struct {
	API struct {
		BaseURL string        `yaml:"base-url"`
		Timeout time.Duration `yaml:"timeout"`
		// RequestsPerSecond enables client-side rate limiting when > 0
		RequestsPerSecond float64 `yaml:"requests-per-second,omitempty"`
		Burst             int     `yaml:"burst,omitempty"`
		// Retries enables retrying idempotent requests on gateway errors when > 0
		Retries uint64 `yaml:"retries,omitempty"`
	} `yaml:"api"`
	Rendering struct {
		Theme string `yaml:"theme"`
		// Timezone is an IANA name for displayed timestamps; empty means local time
		Timezone string `yaml:"timezone,omitempty"`
	} `yaml:"rendering"`
}

// Config represents the CLI configuration with multiple contexts
type Config struct {
	CurrentContext string              `yaml:"current-context"`
	Contexts       map[string]*Context `yaml:"contexts"`
}

// NewContext returns a context for baseURL with default settings
func NewContext(baseURL string) *Context {
	ctx := &Context{}
	ctx.API.BaseURL = baseURL
	ctx.API.Timeout = client.DefaultTimeout
	ctx.Rendering.Theme = "auto"
	return ctx
}

// DefaultConfig returns the default configuration with "prod" and "dev" contexts
func DefaultConfig() *Config {
	return &Config{
		CurrentContext: "prod",
		Contexts: map[string]*Context{
			"prod": NewContext(client.DefaultBaseURL),
			"dev":  NewContext("http://localhost:5000"),
		},
	}
}

// GetCurrentContext returns the current active context
func (c *Config) GetCurrentContext() (*Context, error) {
	return c.GetContext(c.CurrentContext)
}

// GetContext returns a context by name, with BINIQ_BASE_URL applied when set
func (c *Config) GetContext(name string) (*Context, error) {
	if name == "" {
		return nil, fmt.Errorf("no current context set")
	}

	ctx, ok := c.Contexts[name]
	if !ok {
		return nil, fmt.Errorf("context %q not found", name)
	}

	resolved := *ctx
	if override := os.Getenv(envBaseURL); override != "" {
		resolved.API.BaseURL = override
	}
	if resolved.API.Timeout <= 0 {
		resolved.API.Timeout = client.DefaultTimeout
	}
	if resolved.Rendering.Theme == "" {
		resolved.Rendering.Theme = "auto"
	}
	return &resolved, nil
}

// SetCurrentContext sets the current active context
func (c *Config) SetCurrentContext(name string) error {
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	c.CurrentContext = name
	return nil
}

// AddContext adds or updates a context
func (c *Config) AddContext(name string, ctx *Context) {
	if c.Contexts == nil {
		c.Contexts = make(map[string]*Context)
	}
	c.Contexts[name] = ctx
}

// DeleteContext removes a context
func (c *Config) DeleteContext(name string) error {
	if name == c.CurrentContext {
		return fmt.Errorf("cannot delete current context %q", name)
	}
	if _, ok := c.Contexts[name]; !ok {
		return fmt.Errorf("context %q does not exist", name)
	}
	delete(c.Contexts, name)
	return nil
}

// ContextNames returns the context names in sorted order
func (c *Config) ContextNames() []string {
	names := make([]string, 0, len(c.Contexts))
	for name := range c.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetConfigPath returns the path to the config file ($BINIQ_CONFIG or ~/.biniq)
func GetConfigPath() (string, error) {
	if path := os.Getenv(envConfigPath); path != "" {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".biniq"), nil
}

// LoadConfig loads configuration from the config file, creating it with defaults if missing
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFrom(configPath)
}

// LoadConfigFrom loads configuration from path. Environment variables in the file are expanded.
func LoadConfigFrom(configPath string) (*Config, error) {
	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := DefaultConfig()
		if err := SaveConfigTo(configPath, defaultConfig); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultConfig, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Ensure we have a valid current context
	if config.CurrentContext == "" && len(config.Contexts) > 0 {
		config.CurrentContext = config.ContextNames()[0]
	}

	return &config, nil
}

// SaveConfig saves configuration to the config file
func SaveConfig(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(configPath, config)
}

// SaveConfigTo saves configuration to path
func SaveConfigTo(configPath string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// StatePath returns the local state file for a context
// ($BINIQ_STATE_DIR or ~/.config/biniq, file state-<slug>-<hash>.json).
// The hash is of the raw name, so names with the same slug ("Prod", "prod") get separate files.
func StatePath(contextName string) (string, error) {
	dir := os.Getenv(envStateDir)
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(homeDir, ".config", "biniq")
	}
	name := fmt.Sprintf("state-%s-%08x.json", textutil.Slug(contextName), uint32(xxhash.Sum64String(contextName)))
	return filepath.Join(dir, name), nil
}
