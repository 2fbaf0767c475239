package cli

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range corpusCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.ElementsMatch(t, []string{"list", "add", "rebuild"}, names)
}

func TestCorpusListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "corpus", "list", "--kind", "ai")
	require.NoError(t, err)
	assert.Contains(t, out, "Corpus ai:")
	assert.Contains(t, out, "thesis.pdf")
	assert.Contains(t, out, "Texts: 2  Embeddings: no")
	assert.Contains(t, out, "Total: 1 entries")
}

func TestCorpusListCmd_Empty(t *testing.T) {
	ts := newTestServices()
	ts.corpus.entries = nil
	cleanup := ts.install()
	defer cleanup()

	out, err := execute(t, "corpus", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "The plagiarism corpus is empty.")
}

func TestCorpusListCmd_UnknownKind(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "corpus", "list", "--kind", "spam")
	assert.Error(t, err)
}

func TestCorpusAddCmd(t *testing.T) {
	ts := newTestServices()
	cleanup := ts.install()
	defer cleanup()

	a := writeTestFile(t, "a.txt", "first document")
	b := writeTestFile(t, "b.md", "second document")

	out, err := execute(t, "corpus", "add", a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.md"}, ts.corpus.added)
	assert.Contains(t, out, "added as a.txt (1 texts)")
}

func TestCorpusAddCmd_ReportsFailures(t *testing.T) {
	ts := newTestServices()
	cleanup := ts.install()
	defer cleanup()

	good := writeTestFile(t, "a.txt", "document")
	missing := filepath.Join(t.TempDir(), "missing.txt")

	out, err := execute(t, "corpus", "add", good, missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 documents not added")
	assert.Contains(t, out, "missing.txt")
	assert.Equal(t, []string{"a.txt"}, ts.corpus.added)
}

func TestCorpusAddCmd_RequiresArgs(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "corpus", "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestCorpusRebuildCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "corpus", "rebuild", "--kind", "novelty")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 stored documents to the novelty corpus.")
}

func TestCorpusRebuildCmd_Error(t *testing.T) {
	ts := newTestServices()
	ts.corpus.err = errors.New("blob store offline")
	cleanup := ts.install()
	defer cleanup()

	_, err := execute(t, "corpus", "rebuild")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blob store offline")
}

func TestCorpusCmd_NoService(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	corpusService = nil

	_, err := execute(t, "corpus", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "corpus service not configured")
}
