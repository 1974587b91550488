package fingerprint

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

var opDate = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

func TestMake_Stable(t *testing.T) {
	a := Make("SG", opDate, dec("-25.90"), "CARTE X1234 05/10 AMAZON EU", "", "FR7630003000114567890123456")
	b := Make("SG", opDate, dec("-25.90"), "CARTE X1234 05/10 AMAZON EU", "", "FR7630003000114567890123456")
	assert.Equal(t, a, b)
	assert.Len(t, a, 40)
}

func TestMake_TimeOfDayIgnored(t *testing.T) {
	noon := time.Date(2025, 3, 14, 12, 30, 45, 0, time.UTC)
	a := Make("SG", opDate, dec("-10.00"), "PRLV EDF", "", "")
	b := Make("SG", noon, dec("-10.00"), "PRLV EDF", "", "")
	assert.Equal(t, a, b)
}

func TestMake_NormalizationInvariance(t *testing.T) {
	a := Make("SG", opDate, dec("-42.00"), "Prélèvement  EDF", "", "")
	b := Make("SG", opDate, dec("-42.00"), "PRELEVEMENT EDF", "", "")
	assert.Equal(t, a, b)
}

func TestMake_OneCentChanges(t *testing.T) {
	a := Make("SG", opDate, dec("-25.90"), "CARTE AMAZON", "", "")
	b := Make("SG", opDate, dec("-25.91"), "CARTE AMAZON", "", "")
	assert.NotEqual(t, a, b)
}

func TestMake_LabelEditChanges(t *testing.T) {
	a := Make("SG", opDate, dec("-25.90"), "CARTE AMAZON", "", "")
	b := Make("SG", opDate, dec("-25.90"), "CARTE AMAZON EU", "", "")
	assert.NotEqual(t, a, b)
}

func TestMake_MissingOptionalsKeepPosition(t *testing.T) {
	// An empty details field must not collapse field positions: a row
	// with details "X" differs from one whose label happens to end in X.
	a := Make("SG", opDate, dec("-5.00"), "VIR RECU", "X", "")
	b := Make("SG", opDate, dec("-5.00"), "VIR RECU X", "", "")
	// Label+details are normalized together, so these are the same text.
	assert.Equal(t, a, b)

	c := Make("SG", opDate, dec("-5.00"), "VIR RECU", "", "FRXX")
	assert.NotEqual(t, a, c)
}

func TestMake_AmountRounding(t *testing.T) {
	a := Make("SG", opDate, dec("-25.9"), "CARTE AMAZON", "", "")
	b := Make("SG", opDate, dec("-25.90"), "CARTE AMAZON", "", "")
	assert.Equal(t, a, b)

	c := Make("SG", opDate, dec("-25.904"), "CARTE AMAZON", "", "")
	assert.Equal(t, a, c, "sub-cent noise rounds away")
}

func TestMake_HalfCentRoundsTowardPositive(t *testing.T) {
	a := Make("SG", opDate, dec("-25.905"), "CARTE AMAZON", "", "")
	b := Make("SG", opDate, dec("-25.90"), "CARTE AMAZON", "", "")
	assert.Equal(t, a, b, "negative half-cent rounds up to -25.90")

	c := Make("SG", opDate, dec("25.905"), "CARTE AMAZON", "", "")
	d := Make("SG", opDate, dec("25.91"), "CARTE AMAZON", "", "")
	assert.Equal(t, c, d, "positive half-cent rounds up to 25.91")
}
