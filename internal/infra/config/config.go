package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	LLM    LLMConfig   `yaml:"llm"`
	Tools  ToolsConfig `yaml:"tools"`
	State  StateConfig `yaml:"state"`
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
	MCP    MCPConfig   `yaml:"mcp"`
}

// LLMConfig holds LLM client settings.
type LLMConfig struct {
	// Provider selects the backend; matched case-insensitively. Default "ollama".
	Provider       string               `yaml:"provider"`
	Ollama         OllamaConfig         `yaml:"ollama"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// OllamaConfig holds settings for the Ollama backend.
type OllamaConfig struct {
	Host        string        `yaml:"host"`
	Model       string        `yaml:"model"`
	AuthToken   string        `yaml:"auth_token,omitempty"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	RespTimeout time.Duration `yaml:"resp_timeout"`
}

// CircuitBreakerConfig holds circuit breaker settings for LLM providers.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// ToolsConfig holds tool registry settings.
type ToolsConfig struct {
	// RateLimit caps tool executions per second when > 0.
	RateLimit int `yaml:"rate_limit"`
	// LLMTool registers the llm_complete built-in when true.
	LLMTool bool `yaml:"llm_tool"`
}

// StateConfig holds state store settings.
type StateConfig struct {
	// Persist enables the sqlite-backed store; otherwise state is in-memory.
	Persist bool   `yaml:"persist"`
	Path    string `yaml:"path"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// MCPConfig holds MCP server identity and external server connections.
type MCPConfig struct {
	ServerName    string      `yaml:"server_name"`
	ServerVersion string      `yaml:"server_version"`
	Servers       []MCPServer `yaml:"servers,omitempty"`
}

// MCPServer describes an external MCP server whose tools are bridged
// into the local registry.
type MCPServer struct {
	Name      string            `yaml:"name"`
	Transport string            `yaml:"transport"` // "stdio" or "http"
	Command   string            `yaml:"command,omitempty"`
	Args      []string          `yaml:"args,omitempty"`
	URL       string            `yaml:"url,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider: "ollama",
			Ollama: OllamaConfig{
				Host:        "http://localhost:11434",
				Model:       "llama3.2",
				ConnTimeout: 5 * time.Second,
				RespTimeout: 300 * time.Second,
			},
		},
		State: StateConfig{
			Path: ".devforge/state.db",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		MCP: MCPConfig{
			ServerName:    "devforge",
			ServerVersion: Version,
		},
	}
}

// Load reads a YAML config file and applies env var overrides.
// A missing file is not an error; defaults plus env apply.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			return cfg, Validate(cfg)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)
	return cfg, Validate(cfg)
}

// ApplyEnvOverrides maps environment variables onto config fields.
// LLM_PROVIDER, OLLAMA_HOST and OLLAMA_MODEL follow the documented CLI
// contract; DEVFORGE_* variables cover the ambient settings.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.LLM.Ollama.Host = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		cfg.LLM.Ollama.Model = v
	}
	if v := os.Getenv("OLLAMA_AUTH_TOKEN"); v != "" {
		cfg.LLM.Ollama.AuthToken = v
	}
	if v := os.Getenv("DEVFORGE_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("DEVFORGE_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("DEVFORGE_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("DEVFORGE_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("DEVFORGE_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("DEVFORGE_STATE_PERSIST"); v == "true" {
		cfg.State.Persist = true
	}
	if v := os.Getenv("DEVFORGE_STATE_PATH"); v != "" {
		cfg.State.Path = v
	}
}

// Validate checks config invariants that would otherwise surface late.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.LLM.Provider) == "" {
		return fmt.Errorf("llm.provider must not be empty")
	}
	if cfg.State.Persist && cfg.State.Path == "" {
		return fmt.Errorf("state.path required when state.persist is enabled")
	}
	for _, srv := range cfg.MCP.Servers {
		switch srv.Transport {
		case "stdio":
			if srv.Command == "" {
				return fmt.Errorf("mcp server %q: command required for stdio transport", srv.Name)
			}
		case "http":
			if srv.URL == "" {
				return fmt.Errorf("mcp server %q: url required for http transport", srv.Name)
			}
		default:
			return fmt.Errorf("mcp server %q: unsupported transport %q", srv.Name, srv.Transport)
		}
	}
	return nil
}
