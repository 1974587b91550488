// Package period handles "YYYY-MM" period keys, the monthly bucket a
// transaction belongs to.
package period

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Key formats a period key like "2025-01".
func Key(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// FromDate returns the period key of a date.
func FromDate(t time.Time) string {
	return t.Format("2006-01")
}

// Parse splits "2025-01" into year and month.
func Parse(key string) (year, month int, err error) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid period key: %q", key)
	}

	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid year in period key %q: %w", key, err)
	}

	month, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month in period key %q: %w", key, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("month out of range in period key %q", key)
	}

	return year, month, nil
}

// InYear reports whether a period key falls in the given year.
func InYear(key string, year int) bool {
	return strings.HasPrefix(key, fmt.Sprintf("%04d-", year))
}
