// Package classify infers the operation type and counterparty name of
// a transaction from its noisy free-text bank label. Classification is
// advisory: an unparseable label degrades to (AUTRE, "") and never
// returns an error.
package classify

import (
	"regexp"
	"strings"

	"github.com/releve-dev/releve/internal/model"
	"github.com/releve-dev/releve/internal/textnorm"
)

// Classifier holds the compiled rule cascade. Build one with New and
// reuse it; the rule tables are immutable configuration data.
type Classifier struct {
	virRecu        *regexp.Regexp
	virEmis        *regexp.Regexp
	pourMarker     *regexp.Regexp
	captureDe      *regexp.Regexp
	capturePour    *regexp.Regexp
	capturePourTel *regexp.Regexp
	cardRun        *regexp.Regexp
	captureCard    *regexp.Regexp
	pourCpteDe     *regexp.Regexp
	captureCpte    *regexp.Regexp
	capturePrlvDe  *regexp.Regexp
	genericDe      *regexp.Regexp

	datePair   *regexp.Regexp
	longDigits *regexp.Regexp
	couple     *regexp.Regexp
	civility   *regexp.Regexp
	spaces     *regexp.Regexp
	leadPunct  *regexp.Regexp
}

// New compiles the classifier rule cascade.
func New() *Classifier {
	return &Classifier{
		// Transfers: received captures after "DE:", sent after "POUR:".
		virRecu:        regexp.MustCompile(`VIR\s+(?:RECU|INST\s+RE)`),
		virEmis:        regexp.MustCompile(`VIR\s+(?:INSTANTANE|EUROPEEN|PERM)`),
		pourMarker:     regexp.MustCompile(`POUR[:\s]+`),
		captureDe:      regexp.MustCompile(`DE[:\s]+([A-Z0-9\s.'-]+?)(?:\s+(?:DATE|MOTIF|REF|ID|EUR)|$)`),
		capturePour:    regexp.MustCompile(`POUR[:\s]+([A-Z0-9\s.'-]+?)(?:\s+(?:BQ|CPT|REF|DATE)|$)`),
		capturePourTel: regexp.MustCompile(`POUR[:\s]+([A-Z0-9\s.'-]+?)(?:\s+(?:BQ|CPT|DATE)|$)`),

		// Card payments: collapse repeated "CARTE X#### dd/mm" masked
		// runs, then take the merchant text right after "CARTE".
		cardRun:     regexp.MustCompile(`(?:CARTE\s+X\d{4}\s+\d{2}/\d{2}\s*)+`),
		captureCard: regexp.MustCompile(`CARTE\s+([A-Z0-9*.'\-\s]+?)(?:\s+\d{2,}|USD|EUR|COMMERCE|IOPD|ILID|$)`),

		// Direct debits: "POUR CPTE DE:" beneficiary, else plain "DE:".
		pourCpteDe:    regexp.MustCompile(`POUR\s+CPTE\s+DE[:\s]+`),
		captureCpte:   regexp.MustCompile(`POUR\s+CPTE\s+DE[:\s]+([A-Z0-9\s.'-]+?)(?:\s+(?:ID|MOTIF|ICS|REF|EUR)|$)`),
		capturePrlvDe: regexp.MustCompile(`DE[:\s]+([A-Z0-9\s.'-]+?)(?:\s+(?:ID|MOTIF|ICS|REF|EUR)|$)`),

		// Last-resort "DE: ..." capture, any type.
		genericDe: regexp.MustCompile(`DE[:\s]+([A-Z0-9\s-]+?)(?:\s(?:MOTIF|REF|ID|EUR|FR|IOPD)|$)`),

		datePair:   regexp.MustCompile(`\b\d{2}\s\d{2}\b`),
		longDigits: regexp.MustCompile(`\b\d{4,}\b`),
		couple:     regexp.MustCompile(`(?i)\bM(?:R|ONSIEUR)?\.?\s+ET\s+MME\.?`),
		civility:   regexp.MustCompile(`(?i)\b(?:M\.?|MME\.?|MLE\.?|MONSIEUR|MADAME|MR|MM)\b[\s` + " " + `]*`),
		spaces:     regexp.MustCompile(`\s{2,}`),
		leadPunct:  regexp.MustCompile(`^[-–.]+`),
	}
}

// Classify maps a raw label to its operation type and counterparty
// name. The entity is "" when no counterparty can be extracted (always
// the case for cash withdrawals).
func (c *Classifier) Classify(label string) (model.OperationType, string) {
	l := textnorm.Normalize(label)

	op := detectType(l)
	if op == model.OpRetrait {
		return op, ""
	}

	entity := c.extractEntity(op, l)

	if entity == "" {
		for _, b := range knownBrands {
			if strings.Contains(l, b.keyword) {
				entity = b.name
				break
			}
		}
	}

	if entity == "" {
		if m := c.genericDe.FindStringSubmatch(l); m != nil {
			e := strings.TrimSpace(m[1])
			if len(e) > 3 && !strings.Contains(e, "BRED") {
				entity = e
			}
		}
	}

	if entity != "" {
		entity = c.cleanup(entity)
	}
	if entity != "" {
		entity = applyOverrides(entity)
	}
	return op, entity
}

func detectType(l string) model.OperationType {
	for _, r := range typeRules {
		if matchRule(l, r) {
			return r.op
		}
	}
	return model.OpAutre
}

func matchRule(l string, r typeRule) bool {
	for _, kw := range r.none {
		if strings.Contains(l, kw) {
			return false
		}
	}
	for _, kw := range r.any {
		if strings.Contains(l, kw) {
			return true
		}
	}
	return false
}

func (c *Classifier) extractEntity(op model.OperationType, l string) string {
	switch op {
	case model.OpVirement:
		if c.virRecu.MatchString(l) {
			if m := c.captureDe.FindStringSubmatch(l); m != nil {
				return strings.TrimSpace(m[1])
			}
		} else if c.virEmis.MatchString(l) && c.pourMarker.MatchString(l) {
			if m := c.capturePour.FindStringSubmatch(l); m != nil {
				return strings.TrimSpace(m[1])
			}
		} else if strings.Contains(l, "LOGITEL") && c.pourMarker.MatchString(l) {
			// Phone-banking transfers use the same "POUR:" form.
			if m := c.capturePourTel.FindStringSubmatch(l); m != nil {
				return strings.TrimSpace(m[1])
			}
		}

	case model.OpPaiementCB:
		cleaned := c.cardRun.ReplaceAllString(l, "CARTE ")
		if m := c.captureCard.FindStringSubmatch(cleaned); m != nil {
			e := strings.TrimSpace(m[1])
			e = c.spaces.ReplaceAllString(e, " ")
			e = strings.TrimLeft(e, "*-")
			e = strings.TrimSuffix(e, ".")
			return strings.TrimSpace(e)
		}

	case model.OpPrelevement:
		if c.pourCpteDe.MatchString(l) {
			if m := c.captureCpte.FindStringSubmatch(l); m != nil {
				return strings.TrimSpace(m[1])
			}
		} else if m := c.capturePrlvDe.FindStringSubmatch(l); m != nil {
			return strings.TrimSpace(m[1])
		}

	case model.OpFraisBancaires, model.OpAutre:
		// Fee labels also surface under the default type, e.g. a
		// refund line mentioning FRAIS without a fee type keyword.
		for _, f := range feeRules {
			if strings.Contains(l, f.keyword) {
				return f.entity
			}
		}
	}
	return ""
}

// cleanup strips date-like tokens, long numeric runs, civility titles
// and leading punctuation from an extracted entity.
func (c *Classifier) cleanup(entity string) string {
	e := c.datePair.ReplaceAllString(entity, "")
	e = c.longDigits.ReplaceAllString(e, "")
	e = c.couple.ReplaceAllString(e, "")
	e = c.civility.ReplaceAllString(e, "")
	e = c.spaces.ReplaceAllString(e, " ")
	e = strings.TrimSpace(e)
	e = c.leadPunct.ReplaceAllString(e, "")
	return strings.TrimSpace(e)
}

func applyOverrides(entity string) string {
	upper := strings.ToUpper(strings.TrimSpace(entity))
	for _, o := range entityOverrides {
		if strings.Contains(upper, o.contains) {
			return o.entity
		}
	}
	return entity
}
