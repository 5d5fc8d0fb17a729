package docparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirTxt(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "faq.txt"), []byte("How do I pay?\nWith a card."), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "blank.txt"), []byte("   \n\t\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte{0x89, 0x50}, 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "deep.txt"), []byte("should not be read"), 0o644))

	docs, err := LoadDir(dir)
	require.NoError(t, err)

	// Blank files, unsupported extensions and subdirectories are skipped.
	require.Len(t, docs, 1)
	assert.Equal(t, "faq.txt", docs[0].Source)
	assert.Equal(t, "How do I pay?\nWith a card.", docs[0].Text)
}

func TestLoadDirMissing(t *testing.T) {
	docs, err := LoadDir(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadDirOnFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	require.NoError(t, os.WriteFile(file, []byte("text"), 0o644))

	docs, err := LoadDir(file)
	assert.NoError(t, err)
	assert.Empty(t, docs)
}
