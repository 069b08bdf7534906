package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreCreatesDefaults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	cfg := store.Config()
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "http://localhost:11434", cfg.LLM.BaseURL)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.True(t, cfg.Retrieval.UseDocuments)
	assert.False(t, cfg.Retrieval.UseWeb)

	// The file was written so the user has something to edit.
	_, err = os.Stat(filepath.Join(dir, "config.toml"))
	assert.NoError(t, err)
}

func TestLoadExistingFileKeepsDefaultsForAbsentFields(t *testing.T) {
	dir := t.TempDir()
	content := `
[web_search]
api_key = "secret"
endpoint = "https://search.example.com"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	cfg := store.Config()
	assert.Equal(t, "secret", cfg.WebSearch.APIKey)
	assert.Equal(t, "https://search.example.com", cfg.WebSearch.Endpoint)
	assert.Equal(t, "llama3.2", cfg.LLM.Model, "absent sections keep defaults")
	assert.Equal(t, 5, cfg.Retrieval.Limit)
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	cfg := store.Config()
	cfg.LLM.Model = "qwen2:7b"
	require.NoError(t, store.Save(cfg))

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, "qwen2:7b", reopened.Config().LLM.Model)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	changed := make(chan Config, 1)
	store.OnChange(func(cfg Config) {
		select {
		case changed <- cfg:
		default:
		}
	})
	require.NoError(t, store.Watch())

	content := `
[llm]
model = "mistral"
`
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	select {
	case cfg := <-changed:
		assert.Equal(t, "mistral", cfg.LLM.Model)
	case <-time.After(3 * time.Second):
		t.Fatal("config change was not observed")
	}

	assert.Equal(t, "mistral", store.Config().LLM.Model)
}

func TestCloseIsIdempotent(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Watch())
	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
}
