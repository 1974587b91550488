// Package fingerprint derives the stable content hash that identifies
// a transaction across repeated statement imports.
package fingerprint

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/releve-dev/releve/internal/textnorm"
)

const dateFormat = "2006-01-02"

// Make hashes the identifying fields of a statement row. Missing
// optional fields (details, IBAN) contribute an empty string at a fixed
// position, so field alignment never shifts. Two rows that differ only
// in accents or whitespace hash identically; a one-cent amount change
// or a label edit produces a different digest.
func Make(bank string, dateOperation time.Time, amount decimal.Decimal, label, details, accountIBAN string) string {
	parts := []string{
		bank,
		dateOperation.Format(dateFormat),
		roundCents(amount).StringFixed(2),
		textnorm.Normalize(label + " " + details),
		accountIBAN,
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// roundCents rounds to whole cents with exact half-cents going toward
// positive infinity: -25.905 rounds to -25.90, 25.905 to 25.91.
func roundCents(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(decimal.New(5, -1)).Floor().Shift(-2)
}
