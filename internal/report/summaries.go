package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/releve-dev/releve/internal/alias"
	"github.com/releve-dev/releve/internal/model"
	"github.com/releve-dev/releve/internal/period"
)

// MonthSummary is the per-period debit/credit/balance line.
type MonthSummary struct {
	Month   string
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// Monthly groups transactions by period key, ordered ascending.
func Monthly(txns []model.Transaction) []MonthSummary {
	byMonth := make(map[string]MonthSummary)
	for _, tx := range txns {
		m := byMonth[tx.YearMonth]
		m.Month = tx.YearMonth
		m.Debit = m.Debit.Add(tx.Debit)
		m.Credit = m.Credit.Add(tx.Credit)
		m.Balance = m.Balance.Add(tx.Amount)
		byMonth[tx.YearMonth] = m
	}

	out := make([]MonthSummary, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Summary sums a transaction set.
type Summary struct {
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Balance decimal.Decimal
}

// Summarize totals debit, credit and net balance.
func Summarize(txns []model.Transaction) Summary {
	var s Summary
	for _, tx := range txns {
		s.Debit = s.Debit.Add(tx.Debit)
		s.Credit = s.Credit.Add(tx.Credit)
		s.Balance = s.Balance.Add(tx.Amount)
	}
	return s
}

// TypeSummary is the per-operation-type roll-up line.
type TypeSummary struct {
	Type   model.OperationType
	Totals Totals
}

// ByType groups transactions by operation type, sorted by debit
// descending. Transactions never classified report as AUTRE.
func ByType(txns []model.Transaction) []TypeSummary {
	byType := make(map[model.OperationType]Totals)
	for _, tx := range txns {
		op := tx.TypeOperation
		if op == "" {
			op = model.OpAutre
		}
		byType[op] = byType[op].Add(tx)
	}

	out := make([]TypeSummary, 0, len(byType))
	for op, t := range byType {
		out = append(out, TypeSummary{Type: op, Totals: t})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Totals.Debit.Equal(out[j].Totals.Debit) {
			return out[i].Totals.Debit.GreaterThan(out[j].Totals.Debit)
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// EntitySummary is the per-principal roll-up line. Aliases list the
// display names of entities resolving to this principal.
type EntitySummary struct {
	EntityID string
	Name     string
	Totals   Totals
	Aliases  []string
}

// EntityReport carries principal totals plus the count of transactions
// that have no entity at all.
type EntityReport struct {
	Entities []EntitySummary
	Missing  int
}

// ByEntity attributes transaction totals to principal entities via the
// alias graph. Principals with no transactions are dropped; output is
// sorted by debit descending.
func ByEntity(txns []model.Transaction, entities []model.Entity) EntityReport {
	resolver := alias.NewResolver(entities)
	entityByID := make(map[string]model.Entity, len(entities))
	for _, e := range entities {
		entityByID[e.ID] = e
	}

	totals := make(map[string]Totals)
	missing := 0
	for _, tx := range txns {
		if tx.EntityID == "" {
			missing++
			continue
		}
		principalID, _ := resolver.Principal(tx.EntityID)
		totals[principalID] = totals[principalID].Add(tx)
	}

	var out []EntitySummary
	for _, e := range entities {
		if e.AliasOfID != "" {
			continue
		}
		t, ok := totals[e.ID]
		if !ok || t.Count == 0 {
			continue
		}

		var aliases []string
		for _, a := range entities {
			if a.AliasOfID == e.ID {
				aliases = append(aliases, a.Label())
			}
		}
		sort.Strings(aliases)
		out = append(out, EntitySummary{
			EntityID: e.ID,
			Name:     e.Label(),
			Totals:   t,
			Aliases:  aliases,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Totals.Debit.Equal(out[j].Totals.Debit) {
			return out[i].Totals.Debit.GreaterThan(out[j].Totals.Debit)
		}
		return out[i].Name < out[j].Name
	})
	return EntityReport{Entities: out, Missing: missing}
}

// Stats reports classification coverage of a transaction set.
type Stats struct {
	Total         int
	WithEntity    int
	WithoutEntity int
	WithType      int
	WithoutType   int
	Coverage      float64 // percentage of transactions with an entity
}

// Coverage computes classification coverage.
func Coverage(txns []model.Transaction) Stats {
	s := Stats{Total: len(txns)}
	for _, tx := range txns {
		if tx.EntityID != "" {
			s.WithEntity++
		}
		if tx.TypeOperation != "" {
			s.WithType++
		}
	}
	s.WithoutEntity = s.Total - s.WithEntity
	s.WithoutType = s.Total - s.WithType
	if s.Total > 0 {
		s.Coverage = float64(s.WithEntity) / float64(s.Total) * 100
	}
	return s
}

// FilterPeriod keeps transactions of one period key, or of one year
// when month is zero.
func FilterPeriod(txns []model.Transaction, year, month int) []model.Transaction {
	if year == 0 {
		return txns
	}
	var out []model.Transaction
	for _, tx := range txns {
		if month != 0 {
			if tx.YearMonth == period.Key(year, month) {
				out = append(out, tx)
			}
		} else if period.InYear(tx.YearMonth, year) {
			out = append(out, tx)
		}
	}
	return out
}
