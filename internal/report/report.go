// Package report rolls persisted transactions up into reporting
// structures: a hierarchical category tree, per-principal entity
// totals, per-type and per-month summaries. All reports are read-only
// over snapshots of store data.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/releve-dev/releve/internal/alias"
	"github.com/releve-dev/releve/internal/model"
)

// UncategorizedID is the reserved id of the synthetic bucket holding
// transactions with no entity or whose principal has no category.
const UncategorizedID = "uncategorized"

// UncategorizedName is the display name of the synthetic bucket.
const UncategorizedName = "Non catégorisée"

// Totals is the accumulator for report sums. Its zero value is the
// additive identity.
type Totals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
	Count  int
}

// Add accumulates one transaction.
func (t Totals) Add(tx model.Transaction) Totals {
	return Totals{
		Debit:  t.Debit.Add(tx.Debit),
		Credit: t.Credit.Add(tx.Credit),
		Count:  t.Count + 1,
	}
}

// Plus merges two accumulators.
func (t Totals) Plus(o Totals) Totals {
	return Totals{
		Debit:  t.Debit.Add(o.Debit),
		Credit: t.Credit.Add(o.Credit),
		Count:  t.Count + o.Count,
	}
}

// CategoryNode is one node of the category report forest. Totals cover
// the node's own transactions plus all descendants'.
type CategoryNode struct {
	ID       string
	Name     string
	Totals   Totals
	Children []*CategoryNode
}

// ByCategory rolls transaction sums up the category tree. Each
// transaction is attributed to its entity's principal (following alias
// links); the principal's category receives the transaction's own
// totals, and every ancestor of that category receives them too.
// Transactions with no entity, an unresolvable alias chain, or a
// principal without a category land in the uncategorized bucket, which
// is appended as a synthetic root only when non-empty.
func ByCategory(txns []model.Transaction, entities []model.Entity, categories []model.Category) []*CategoryNode {
	resolver := alias.NewResolver(entities)
	entityByID := make(map[string]model.Entity, len(entities))
	for _, e := range entities {
		entityByID[e.ID] = e
	}
	categoryByID := make(map[string]model.Category, len(categories))
	for _, c := range categories {
		categoryByID[c.ID] = c
	}

	own := make(map[string]Totals, len(categories))
	var uncategorized Totals

	for _, tx := range txns {
		catID := ""
		if tx.EntityID != "" {
			principalID, _ := resolver.Principal(tx.EntityID)
			if e, ok := entityByID[principalID]; ok {
				catID = e.CategoryID
			}
		}
		if _, known := categoryByID[catID]; catID == "" || !known {
			uncategorized = uncategorized.Add(tx)
			continue
		}
		own[catID] = own[catID].Add(tx)
	}

	// Propagate each category's own totals to every ancestor, so a
	// parent's totals equal its own plus all descendants'. The walk is
	// bounded by the category count in case a parent link is corrupt.
	agg := make(map[string]Totals, len(categories))
	for id, t := range own {
		agg[id] = agg[id].Plus(t)
	}
	for id, t := range own {
		c := categoryByID[id]
		for steps := 0; c.ParentID != "" && steps < len(categories); steps++ {
			parent, ok := categoryByID[c.ParentID]
			if !ok {
				break
			}
			agg[parent.ID] = agg[parent.ID].Plus(t)
			c = parent
		}
	}

	nodes := make(map[string]*CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &CategoryNode{ID: c.ID, Name: c.Name, Totals: agg[c.ID]}
	}

	var roots []*CategoryNode
	for _, c := range categories {
		node := nodes[c.ID]
		if parent, ok := nodes[c.ParentID]; ok && c.ParentID != c.ID {
			parent.Children = append(parent.Children, node)
		} else {
			roots = append(roots, node)
		}
	}

	sortNodes(roots)
	if uncategorized.Count > 0 {
		roots = append(roots, &CategoryNode{
			ID:     UncategorizedID,
			Name:   UncategorizedName,
			Totals: uncategorized,
		})
	}
	return roots
}

func sortNodes(nodes []*CategoryNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	for _, n := range nodes {
		sortNodes(n.Children)
	}
}
