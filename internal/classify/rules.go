package classify

import "github.com/releve-dev/releve/internal/model"

// typeRule is one keyword predicate of the operation-type cascade.
// Rules are evaluated in declared order and the first match wins, so
// a label containing both "PRLV" and "CARTE" resolves to PRLV.
type typeRule struct {
	op   model.OperationType
	any  []string // at least one must be present
	none []string // none may be present
}

var typeRules = []typeRule{
	{op: model.OpPrelevement, any: []string{"PRLV", "PRELEVEMENT"}},
	{op: model.OpVirement, any: []string{"VIR", "VIREMENT", "INST RE", "PERM"}},
	{op: model.OpFraisBancaires, any: []string{
		"FRAIS PAIEMENT", "PAIEMENT HORS ZONE", "OPTION TRANQUILLIT",
		"COTISATION JAZZ", "INTERETS DEBITEURS", "ARRETE",
	}},
	{op: model.OpPaiementCB, any: []string{"CARTE"}, none: []string{"RETRAIT DAB"}},
	{op: model.OpRetrait, any: []string{"RETRAIT DAB"}},
	{op: model.OpCheque, any: []string{"CHEQUE"}},
}

// feeRule maps a bank-fee keyword to a fixed entity name. Fee labels
// carry no extractable counterparty, so the entity is descriptive text.
type feeRule struct {
	keyword string
	entity  string
}

var feeRules = []feeRule{
	{"FRAIS PAIEMENT HORS ZONE EURO", "Frais paiement international"},
	{"FRAIS", "Frais bancaires"},
	{"COTISATION JAZZ", "Cotisation Jazz (SG)"},
	{"OPTION TRANQUILLITE", "Option Tranquillité (SG)"},
	{"INTERETS", "Intérêts débiteurs"},
	{"ARRETE", "Arrêté de compte"},
}

// brand maps a well-known keyword to a canonical display name. Checked
// by substring in declared order; order matters when a label could
// contain several keywords.
type brand struct {
	keyword string
	name    string
}

var knownBrands = []brand{
	{"ORANGE", "Orange"},
	{"EDF", "EDF"},
	{"AMAZON", "Amazon"},
	{"FNAC", "Fnac"},
	{"DGFIP", "DGFIP (Impôts)"},
	{"SFR", "SFR"},
	{"FREE", "Free"},
	{"SNCF", "SNCF"},
	{"AIRBNB", "Airbnb"},
	{"GOOGLE", "Google"},
	{"APPLE", "Apple"},
	{"PAYPAL", "PayPal"},
	{"CARREFOUR", "Carrefour"},
	{"LECLERC", "Leclerc"},
	{"LIDL", "Lidl"},
	{"UBER", "Uber"},
	{"META", "Meta (Facebook)"},
	{"NETFLIX", "Netflix"},
	{"O2SWITCH", "O2SWITCH.FR"},
	{"KOALA", "KOALA.SH"},
}

// override collapses known noisy entity variants onto one canonical
// string, checked by substring against the upper-cased cleaned entity.
type override struct {
	contains string
	entity   string
}

var entityOverrides = []override{
	{"ALPTIS ASSURANCES ALPTIS ASSURANCES", "ALPTIS ASSURANCES"},
	{"IMPOT PAS", "DGFIP (Prélèvement à la source)"},
	{"ORANGE SA", "ORANGE"},
	{"TOTAL LA JAILLE", "TOTAL"},
}
