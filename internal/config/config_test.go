package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "tfidf", cfg.Embedder.Type)
	assert.Equal(t, "memory", cfg.VectorStore.Type)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, 2, cfg.Generator.MaxAttempts)
	assert.Equal(t, 10, cfg.Generator.DefaultRetrySecs)
	assert.NotEmpty(t, cfg.Generator.Models)
}

func TestLoadAppliesDefaultsToPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9090"
embedder:
  type: openai
  openai:
    model: my-embedding-model
vector_store:
  type: qdrant
  qdrant:
    url: http://localhost:6333
generator:
  models: ["model-a", "model-b"]
notify:
  webhook_url: https://hooks.example.com/tax
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 90, cfg.Server.RequestTimeoutSecs)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Embedder.OpenAI.BaseURL)
	assert.Equal(t, "OPENAI_API_KEY", cfg.Embedder.OpenAI.APIKeyEnv)
	assert.Equal(t, "my-embedding-model", cfg.Embedder.OpenAI.Model)
	assert.Equal(t, "tax_documents", cfg.VectorStore.Qdrant.Collection)
	assert.Equal(t, []string{"model-a", "model-b"}, cfg.Generator.Models)
	assert.Equal(t, "GEMINI_API_KEY", cfg.Generator.APIKeyEnv)
	assert.Equal(t, "https://hooks.example.com/tax", cfg.Notify.WebhookURL)
	assert.Equal(t, 5, cfg.Notify.TimeoutSecs)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := defaultConfig()
	cfg.Server.Addr = ":7070"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", loaded.Server.Addr)
	assert.Equal(t, cfg.Generator.Models, loaded.Generator.Models)
}
