package file

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Path(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestDefaultDataDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}
	dir, err := DefaultDataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".veritas"), dir)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("pipeline.escalation_threshold", 0.7))
	require.NoError(t, store.Set("pipeline.request_timeout", "90s"))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[pipeline]")
	assert.Contains(t, content, "[llm]")
	assert.False(t, strings.Contains(content, `"pipeline.`), "keys are not quoted dotted strings")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("pipeline.escalation_threshold", 0.7))
	require.NoError(t, store.Set("candidates.k", 12))
	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("scorer.enabled", true))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 0.7, reopened.GetFloat("pipeline.escalation_threshold"))
	assert.Equal(t, 12, reopened.GetInt("candidates.k"))
	assert.Equal(t, 12.0, reopened.GetFloat("candidates.k"))
	assert.Equal(t, "openai", reopened.GetString("embedding.provider"))
	assert.True(t, reopened.GetBool("scorer.enabled"))
}

func TestConfigStore_HandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[pipeline]
escalation_threshold = 1
request_timeout = "3m"

[verifier]
concurrency = 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 1.0, store.GetFloat("pipeline.escalation_threshold"))
	assert.Equal(t, "3m", store.GetString("pipeline.request_timeout"))
	assert.Equal(t, 2, store.GetInt("verifier.concurrency"))
}

func TestConfigStore_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[broken"), 0600))
	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_WrongTypes(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))

	assert.Zero(t, store.GetInt("llm.model"))
	assert.Zero(t, store.GetFloat("llm.model"))
	assert.False(t, store.GetBool("llm.model"))
	assert.Empty(t, store.GetString("missing"))
}

func TestNestKeys_Conflict(t *testing.T) {
	_, err := nestKeys(map[string]any{"a": 1, "a.b": 2})
	assert.Error(t, err)

	nested, err := nestKeys(map[string]any{"a.b.c": 1, "a.d": 2})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": map[string]any{"c": 1}, "d": 2}}, nested)
}
