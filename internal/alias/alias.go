// Package alias resolves the merchant-alias graph: entities may
// declare themselves an alias of another entity, and report totals are
// attributed to the terminal (principal) entity of the chain.
package alias

import "github.com/releve-dev/releve/internal/model"

// Resolver walks alias-of links over an immutable entity snapshot.
type Resolver struct {
	aliasOf map[string]string
}

// NewResolver indexes the alias links of an entity snapshot.
func NewResolver(entities []model.Entity) *Resolver {
	aliasOf := make(map[string]string, len(entities))
	for _, e := range entities {
		if e.AliasOfID != "" && e.AliasOfID != e.ID {
			aliasOf[e.ID] = e.AliasOfID
		}
	}
	return &Resolver{aliasOf: aliasOf}
}

// Principal follows alias links from id to the terminal entity. The
// second result is false when the stored graph contains a cycle; the
// resolver then fails closed and returns the original id unresolved,
// leaving the anomaly for out-of-band repair.
func (r *Resolver) Principal(id string) (string, bool) {
	current := id
	visited := map[string]bool{current: true}
	for {
		next, ok := r.aliasOf[current]
		if !ok {
			return current, true
		}
		if visited[next] {
			return id, false
		}
		visited[next] = true
		current = next
	}
}

// Diff compares the currently attached alias set against a requested
// set and returns the ids to attach and detach. Order of the inputs is
// preserved in the outputs.
func Diff(current, requested []string) (attach, detach []string) {
	currentSet := make(map[string]bool, len(current))
	for _, id := range current {
		currentSet[id] = true
	}
	requestedSet := make(map[string]bool, len(requested))
	for _, id := range requested {
		requestedSet[id] = true
	}

	for _, id := range requested {
		if !currentSet[id] {
			attach = append(attach, id)
		}
	}
	for _, id := range current {
		if !requestedSet[id] {
			detach = append(detach, id)
		}
	}
	return attach, detach
}
