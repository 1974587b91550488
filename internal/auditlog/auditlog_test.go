package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRead(t *testing.T) {
	root := t.TempDir()
	ts := time.Date(2025, 3, 31, 9, 30, 0, 0, time.UTC)

	require.NoError(t, Append(root, Entry{
		Timestamp:  ts,
		AccountID:  "acct-1",
		Action:     "import",
		SourceFile: "mars.csv",
		Inserted:   42,
		Updated:    3,
	}))
	require.NoError(t, Append(root, Entry{
		Timestamp: ts.Add(time.Hour),
		AccountID: "acct-1",
		Action:    "reanalyze",
		Updated:   7,
		DryRun:    true,
	}))

	entries, err := Read(root)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	first := entries[0]
	assert.True(t, first.Timestamp.Equal(ts))
	assert.Equal(t, "acct-1", first.AccountID)
	assert.Equal(t, "import", first.Action)
	assert.Equal(t, "mars.csv", first.SourceFile)
	assert.Equal(t, 42, first.Inserted)
	assert.Equal(t, 3, first.Updated)
	assert.False(t, first.DryRun)

	second := entries[1]
	assert.Equal(t, "reanalyze", second.Action)
	assert.Empty(t, second.SourceFile)
	assert.True(t, second.DryRun)
}

func TestAppend_WritesHeaderOnce(t *testing.T) {
	root := t.TempDir()
	e := Entry{Timestamp: time.Now().UTC(), AccountID: "a", Action: "import"}
	require.NoError(t, Append(root, e))
	require.NoError(t, Append(root, e))

	raw, err := os.ReadFile(filepath.Join(root, "logs", "import-log.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), Header))
}

func TestRead_Missing(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnmarshalEntry_BadRow(t *testing.T) {
	_, err := UnmarshalEntry([]string{"not-a-time", "a", "import", "", "1", "0", ""})
	require.Error(t, err)

	_, err = UnmarshalEntry([]string{"short"})
	require.Error(t, err)
}
