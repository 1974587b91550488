package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "2025-01", Key(2025, 1))
	assert.Equal(t, "2025-12", Key(2025, 12))
}

func TestFromDate(t *testing.T) {
	d := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-03", FromDate(d))
}

func TestParse(t *testing.T) {
	year, month, err := Parse("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)
	assert.Equal(t, 3, month)
}

func TestParse_Invalid(t *testing.T) {
	for _, key := range []string{"2025", "2025-13", "2025-00", "abcd-01", ""} {
		_, _, err := Parse(key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestInYear(t *testing.T) {
	assert.True(t, InYear("2025-07", 2025))
	assert.False(t, InYear("2024-07", 2025))
}
