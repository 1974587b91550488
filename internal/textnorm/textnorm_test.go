package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_Diacritics(t *testing.T) {
	assert.Equal(t, "PRELEVEMENT RECU", Normalize("Prélèvement reçu"))
	assert.Equal(t, "ARRETE DE COMPTE", Normalize("Arrêté de compte"))
}

func TestNormalize_Whitespace(t *testing.T) {
	assert.Equal(t, "VIR RECU DE: EDF", Normalize("  VIR   RECU\tDE: EDF "))
}

func TestNormalize_EuroSign(t *testing.T) {
	assert.Equal(t, "RETRAIT DAB 50 E", Normalize("retrait dab 50 €"))
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Prélèvement   EDF  août",
		"CARTE X1234 05/10 CAFÉ DU THÉÂTRE",
		"",
		"déjà normalisé",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_Empty(t *testing.T) {
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "", Normalize("   "))
}
