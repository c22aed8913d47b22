package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.Ollama.Host)
	assert.Equal(t, "llama3.2", cfg.LLM.Ollama.Model)
	assert.Equal(t, "stderr", cfg.Logger.Output)
	assert.Equal(t, "devforge", cfg.MCP.ServerName)
	assert.NotEmpty(t, cfg.MCP.ServerVersion)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
llm:
  provider: ollama
  ollama:
    host: http://ollama.internal:11434
    model: qwen2.5-coder
  circuit_breaker:
    enabled: true
    max_failures: 3
tools:
  rate_limit: 30
  llm_tool: true
state:
  persist: true
  path: /tmp/devforge-state.db
logger:
  level: debug
  format: json
mcp:
  server_name: devforge-ci
  servers:
    - name: docs
      transport: stdio
      command: docs-mcp
      args: ["--root", "."]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://ollama.internal:11434", cfg.LLM.Ollama.Host)
	assert.Equal(t, "qwen2.5-coder", cfg.LLM.Ollama.Model)
	// Unset timeouts keep their defaults.
	assert.Equal(t, 300*time.Second, cfg.LLM.Ollama.RespTimeout)
	assert.True(t, cfg.LLM.CircuitBreaker.Enabled)
	assert.Equal(t, uint32(3), cfg.LLM.CircuitBreaker.MaxFailures)
	assert.Equal(t, 30, cfg.Tools.RateLimit)
	assert.True(t, cfg.State.Persist)
	assert.Equal(t, "devforge-ci", cfg.MCP.ServerName)
	require.Len(t, cfg.MCP.Servers, 1)
	assert.Equal(t, "docs", cfg.MCP.Servers[0].Name)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Ollama")
	t.Setenv("OLLAMA_HOST", "http://127.0.0.1:9999")
	t.Setenv("OLLAMA_MODEL", "llama3.1")
	t.Setenv("DEVFORGE_LOGGER_LEVEL", "warn")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	assert.Equal(t, "Ollama", cfg.LLM.Provider) // case resolved by the LLM client
	assert.Equal(t, "http://127.0.0.1:9999", cfg.LLM.Ollama.Host)
	assert.Equal(t, "llama3.1", cfg.LLM.Ollama.Model)
	assert.Equal(t, "warn", cfg.Logger.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults ok", func(*Config) {}, ""},
		{
			"empty provider",
			func(c *Config) { c.LLM.Provider = " " },
			"llm.provider",
		},
		{
			"persist without path",
			func(c *Config) { c.State.Persist = true; c.State.Path = "" },
			"state.path",
		},
		{
			"stdio server missing command",
			func(c *Config) {
				c.MCP.Servers = []MCPServer{{Name: "x", Transport: "stdio"}}
			},
			"command required",
		},
		{
			"unsupported transport",
			func(c *Config) {
				c.MCP.Servers = []MCPServer{{Name: "x", Transport: "ws", URL: "ws://x"}}
			},
			"unsupported transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
