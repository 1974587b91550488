package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/releve-dev/releve/internal/alias"
	"github.com/releve-dev/releve/internal/model"
)

const entitiesFile = "entities.csv"

var entityHeader = []string{"entity_id", "account_id", "name", "display_name", "category_id", "alias_of_id", "tag_ids"}

const (
	entNumFields  = 7
	entColID      = 0
	entColAccount = 1
	entColName    = 2
	entColDisplay = 3
	entColCat     = 4
	entColAliasOf = 5
	entColTags    = 6
)

func marshalEntity(e model.Entity) []string {
	row := make([]string, entNumFields)
	row[entColID] = e.ID
	row[entColAccount] = e.AccountID
	row[entColName] = e.Name
	row[entColDisplay] = e.DisplayName
	row[entColCat] = e.CategoryID
	row[entColAliasOf] = e.AliasOfID
	row[entColTags] = strings.Join(e.TagIDs, ";")
	return row
}

func unmarshalEntity(record []string) (model.Entity, error) {
	if len(record) != entNumFields {
		return model.Entity{}, fmt.Errorf("expected %d fields, got %d", entNumFields, len(record))
	}
	var tagIDs []string
	if record[entColTags] != "" {
		tagIDs = strings.Split(record[entColTags], ";")
	}
	return model.Entity{
		ID:          record[entColID],
		AccountID:   record[entColAccount],
		Name:        record[entColName],
		DisplayName: record[entColDisplay],
		CategoryID:  record[entColCat],
		AliasOfID:   record[entColAliasOf],
		TagIDs:      tagIDs,
	}, nil
}

func (s *Store) loadEntities() error {
	records, err := readCSV(s.path(entitiesFile), entNumFields)
	if err != nil {
		return err
	}
	s.entities = nil
	for i, rec := range records {
		e, err := unmarshalEntity(rec)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", entitiesFile, i+2, err)
		}
		s.entities = append(s.entities, e)
	}
	s.reindexEntities()
	return nil
}

func (s *Store) saveEntities() error {
	rows := make([][]string, len(s.entities))
	for i, e := range s.entities {
		rows[i] = marshalEntity(e)
	}
	return writeCSV(s.path(entitiesFile), entityHeader, rows)
}

func (s *Store) reindexEntities() {
	s.entityByID = make(map[string]model.Entity, len(s.entities))
	s.entityByName = make(map[string]map[string]model.Entity)
	for _, e := range s.entities {
		s.entityByID[e.ID] = e
		byName := s.entityByName[e.AccountID]
		if byName == nil {
			byName = make(map[string]model.Entity)
			s.entityByName[e.AccountID] = byName
		}
		byName[e.Name] = e
	}
}

// Entities returns the entities of one account, sorted by name.
func (s *Store) Entities(accountID string) []model.Entity {
	var out []model.Entity
	for _, e := range s.entities {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Entity returns an entity by id.
func (s *Store) Entity(id string) (model.Entity, bool) {
	e, ok := s.entityByID[id]
	return e, ok
}

// EntityByName returns the entity with the given extracted name within
// one account.
func (s *Store) EntityByName(accountID, name string) (model.Entity, bool) {
	e, ok := s.entityByName[accountID][name]
	return e, ok
}

// AddEntities appends a batch of new entities and saves once. Used by
// the reconciler to commit lazily created entities together with their
// transactions.
func (s *Store) AddEntities(batch []model.Entity) error {
	if len(batch) == 0 {
		return nil
	}
	for i := range batch {
		if batch[i].ID == "" {
			batch[i].ID = uuid.NewString()
		}
	}
	s.entities = append(s.entities, batch...)
	s.reindexEntities()
	return s.saveEntities()
}

// UpdateEntity replaces an entity by id.
func (s *Store) UpdateEntity(e model.Entity) error {
	for i, existing := range s.entities {
		if existing.ID == e.ID {
			s.entities[i] = e
			s.reindexEntities()
			return s.saveEntities()
		}
	}
	return fmt.Errorf("entity %s: %w", e.ID, ErrNotFound)
}

// MergeAliases synchronizes the alias set of a principal entity:
// currently attached aliases missing from the requested set are
// detached (their alias-of cleared), requested ones not yet attached
// are pointed at the principal. Attaching an alias that is itself a
// principal of other aliases is allowed, but it changes resolution for
// that whole sub-chain.
func (s *Store) MergeAliases(principalID string, aliasIDs []string) (attached, detached []string, err error) {
	principal, ok := s.entityByID[principalID]
	if !ok {
		return nil, nil, fmt.Errorf("entity %s: %w", principalID, ErrNotFound)
	}

	var current []string
	for _, e := range s.entities {
		if e.AliasOfID == principalID {
			current = append(current, e.ID)
		}
	}

	attach, detach := alias.Diff(current, aliasIDs)

	for _, id := range attach {
		if id == principalID {
			return nil, nil, fmt.Errorf("entity %s cannot alias itself: %w", id, ErrConflict)
		}
		e, ok := s.entityByID[id]
		if !ok {
			return nil, nil, fmt.Errorf("entity %s: %w", id, ErrNotFound)
		}
		if e.AccountID != principal.AccountID {
			return nil, nil, fmt.Errorf("entity %s belongs to another account: %w", id, ErrConflict)
		}
	}

	detachSet := make(map[string]bool, len(detach))
	for _, id := range detach {
		detachSet[id] = true
	}
	attachSet := make(map[string]bool, len(attach))
	for _, id := range attach {
		attachSet[id] = true
	}

	for i, e := range s.entities {
		switch {
		case detachSet[e.ID]:
			s.entities[i].AliasOfID = ""
		case attachSet[e.ID]:
			s.entities[i].AliasOfID = principalID
		}
	}
	s.reindexEntities()

	if err := s.saveEntities(); err != nil {
		return nil, nil, err
	}
	return attach, detach, nil
}
