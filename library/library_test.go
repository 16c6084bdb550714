package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func writeTestFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	return path
}

func TestAddAndList(t *testing.T) {
	l := openTestLibrary(t)

	first, err := l.Add(writeTestFile(t, "attention.pdf"), "ml", "transformers")
	require.NoError(t, err)
	second, err := l.Add(writeTestFile(t, "bert.pdf"), "ml")
	require.NoError(t, err)

	docs, err := l.Documents()
	require.NoError(t, err)
	require.Len(t, docs, 2)

	// Ordered by added-at.
	assert.Equal(t, first.ID, docs[0].ID)
	assert.Equal(t, second.ID, docs[1].ID)
	assert.Equal(t, "attention.pdf", docs[0].Name)
	assert.Equal(t, []string{"ml", "transformers"}, docs[0].Tags)

	// The file was copied into the library directory.
	_, err = os.Stat(docs[0].Path)
	assert.NoError(t, err)
}

func TestSelectUnknownID(t *testing.T) {
	l := openTestLibrary(t)

	_, err := l.Select("missing")
	assert.Error(t, err)
}

func TestRemoveDeletesRowTagsAndFile(t *testing.T) {
	l := openTestLibrary(t)

	doc, err := l.Add(writeTestFile(t, "gone.pdf"), "temp")
	require.NoError(t, err)

	require.NoError(t, l.Remove(doc.ID))

	docs, err := l.Documents()
	require.NoError(t, err)
	assert.Empty(t, docs)

	tags, err := l.AllTags()
	require.NoError(t, err)
	assert.Empty(t, tags)

	_, err = os.Stat(doc.Path)
	assert.True(t, os.IsNotExist(err))
}

func TestAllTagsDeduplicates(t *testing.T) {
	l := openTestLibrary(t)

	_, err := l.Add(writeTestFile(t, "a.pdf"), "ml", "nlp")
	require.NoError(t, err)
	_, err = l.Add(writeTestFile(t, "b.pdf"), "ml")
	require.NoError(t, err)

	tags, err := l.AllTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"ml", "nlp"}, tags)
}

func TestAddMissingSourceFile(t *testing.T) {
	l := openTestLibrary(t)

	_, err := l.Add(filepath.Join(t.TempDir(), "does-not-exist.pdf"))
	assert.Error(t, err)

	docs, err := l.Documents()
	require.NoError(t, err)
	assert.Empty(t, docs, "failed add must not leave a record behind")
}
