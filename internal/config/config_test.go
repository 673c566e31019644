package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "incidentparse", cfg.Name)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.LLM.Model)
	assert.Equal(t, 200, cfg.LLM.MaxTokens)
	assert.InDelta(t, 0.1, cfg.LLM.Temperature, 0.001)
	assert.Empty(t, cfg.LLM.APIKey, "no credential baked into defaults")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().LLM.Model, cfg.LLM.Model)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "incidentparse.yaml")
	data := []byte("llm:\n  model: llama-3.3-70b-versatile\n  timeout: 30s\nserver:\n  addr: \":9090\"\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLM.Model)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.LLM.TimeoutDuration())
	// Untouched fields keep defaults.
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.LLM.BaseURL)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "incidentparse.yaml")
	data := []byte("llm:\n  api_key: from-file\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	t.Setenv(EnvAPIKey, "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.LLM.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "incidentparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [not a mapping"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestTimeoutDuration_Fallbacks(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{"empty", "", 60 * time.Second},
		{"malformed", "sixty seconds", 60 * time.Second},
		{"negative", "-5s", 60 * time.Second},
		{"valid", "90s", 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := LLMConfig{Timeout: tt.timeout}
			assert.Equal(t, tt.want, l.TimeoutDuration())
		})
	}
}
