package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "import", "mars.csv"), "a;b;c")
	writeFile(t, filepath.Join(root, "import", "avril.CSV"), "d;e;f")
	writeFile(t, filepath.Join(root, "import", "notes.txt"), "ignore me")
	writeFile(t, filepath.Join(root, "import", "processed", "fevrier.csv"), "done")

	files, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, files, 2, "only pending csv files")

	names := []string{files[0].Name, files[1].Name}
	assert.ElementsMatch(t, []string{"mars.csv", "avril.CSV"}, names)
	for _, f := range files {
		assert.Positive(t, f.Size)
		_, err := os.Stat(f.Path)
		assert.NoError(t, err)
	}
}

func TestScan_MissingDir(t *testing.T) {
	files, err := Scan(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkProcessed(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "import", "mars.csv"), "a;b;c")

	require.NoError(t, MarkProcessed(root, "mars.csv"))

	_, err := os.Stat(filepath.Join(root, "import", "mars.csv"))
	assert.True(t, os.IsNotExist(err))
	moved, err := os.ReadFile(filepath.Join(root, "import", "processed", "mars.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a;b;c", string(moved))

	// A second pass has nothing left to pick up.
	files, err := Scan(root)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMarkProcessed_Missing(t *testing.T) {
	require.Error(t, MarkProcessed(t.TempDir(), "ghost.csv"))
}
