package store

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/releve-dev/releve/internal/model"
)

const tagsFile = "tags.csv"

var tagHeader = []string{"tag_id", "name", "color"}

const (
	tagNumFields = 3
	tagColID     = 0
	tagColName   = 1
	tagColColor  = 2
)

func marshalTag(t model.Tag) []string {
	row := make([]string, tagNumFields)
	row[tagColID] = t.ID
	row[tagColName] = t.Name
	row[tagColColor] = t.Color
	return row
}

func unmarshalTag(record []string) (model.Tag, error) {
	if len(record) != tagNumFields {
		return model.Tag{}, fmt.Errorf("expected %d fields, got %d", tagNumFields, len(record))
	}
	return model.Tag{
		ID:    record[tagColID],
		Name:  record[tagColName],
		Color: record[tagColColor],
	}, nil
}

func (s *Store) loadTags() error {
	records, err := readCSV(s.path(tagsFile), tagNumFields)
	if err != nil {
		return err
	}
	s.tags = nil
	for i, rec := range records {
		t, err := unmarshalTag(rec)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", tagsFile, i+2, err)
		}
		s.tags = append(s.tags, t)
	}
	s.reindexTags()
	return nil
}

func (s *Store) saveTags() error {
	rows := make([][]string, len(s.tags))
	for i, t := range s.tags {
		rows[i] = marshalTag(t)
	}
	return writeCSV(s.path(tagsFile), tagHeader, rows)
}

func (s *Store) reindexTags() {
	s.tagByID = make(map[string]model.Tag, len(s.tags))
	for _, t := range s.tags {
		s.tagByID[t.ID] = t
	}
}

// Tags returns all tags sorted by name.
func (s *Store) Tags() []model.Tag {
	out := make([]model.Tag, len(s.tags))
	copy(out, s.tags)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tag returns a tag by id.
func (s *Store) Tag(id string) (model.Tag, bool) {
	t, ok := s.tagByID[id]
	return t, ok
}

// CreateTag adds a tag. Duplicate names are a conflict.
func (s *Store) CreateTag(t model.Tag) (model.Tag, error) {
	for _, existing := range s.tags {
		if existing.Name == t.Name {
			return model.Tag{}, fmt.Errorf("tag %q: %w", t.Name, ErrConflict)
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	s.tags = append(s.tags, t)
	s.reindexTags()
	if err := s.saveTags(); err != nil {
		return model.Tag{}, err
	}
	return t, nil
}

// DeleteTag removes a tag and detaches it from all entities.
func (s *Store) DeleteTag(id string) error {
	if _, ok := s.tagByID[id]; !ok {
		return fmt.Errorf("tag %s: %w", id, ErrNotFound)
	}

	kept := s.tags[:0]
	for _, t := range s.tags {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tags = kept
	s.reindexTags()

	changed := false
	for i, e := range s.entities {
		keptIDs := e.TagIDs[:0]
		for _, tid := range e.TagIDs {
			if tid != id {
				keptIDs = append(keptIDs, tid)
			}
		}
		if len(keptIDs) != len(e.TagIDs) {
			s.entities[i].TagIDs = keptIDs
			changed = true
		}
	}

	if err := s.saveTags(); err != nil {
		return err
	}
	if changed {
		s.reindexEntities()
		return s.saveEntities()
	}
	return nil
}
