package store

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/releve-dev/releve/internal/model"
)

const categoriesFile = "categories.csv"

var categoryHeader = []string{"category_id", "name", "parent_id", "description"}

const (
	catNumFields = 4
	catColID     = 0
	catColName   = 1
	catColParent = 2
	catColDesc   = 3
)

func marshalCategory(c model.Category) []string {
	row := make([]string, catNumFields)
	row[catColID] = c.ID
	row[catColName] = c.Name
	row[catColParent] = c.ParentID
	row[catColDesc] = c.Description
	return row
}

func unmarshalCategory(record []string) (model.Category, error) {
	if len(record) != catNumFields {
		return model.Category{}, fmt.Errorf("expected %d fields, got %d", catNumFields, len(record))
	}
	return model.Category{
		ID:          record[catColID],
		Name:        record[catColName],
		ParentID:    record[catColParent],
		Description: record[catColDesc],
	}, nil
}

func (s *Store) loadCategories() error {
	records, err := readCSV(s.path(categoriesFile), catNumFields)
	if err != nil {
		return err
	}
	s.categories = nil
	for i, rec := range records {
		c, err := unmarshalCategory(rec)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", categoriesFile, i+2, err)
		}
		s.categories = append(s.categories, c)
	}
	s.reindexCategories()
	return nil
}

func (s *Store) saveCategories() error {
	rows := make([][]string, len(s.categories))
	for i, c := range s.categories {
		rows[i] = marshalCategory(c)
	}
	return writeCSV(s.path(categoriesFile), categoryHeader, rows)
}

func (s *Store) reindexCategories() {
	s.categoryByID = make(map[string]model.Category, len(s.categories))
	for _, c := range s.categories {
		s.categoryByID[c.ID] = c
	}
}

// Categories returns all categories sorted by name.
func (s *Store) Categories() []model.Category {
	out := make([]model.Category, len(s.categories))
	copy(out, s.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Category returns a category by id.
func (s *Store) Category(id string) (model.Category, bool) {
	c, ok := s.categoryByID[id]
	return c, ok
}

// CreateCategory adds a category under an optional parent.
func (s *Store) CreateCategory(c model.Category) (model.Category, error) {
	for _, existing := range s.categories {
		if existing.Name == c.Name {
			return model.Category{}, fmt.Errorf("category %q: %w", c.Name, ErrConflict)
		}
	}
	if c.ParentID != "" {
		if _, ok := s.categoryByID[c.ParentID]; !ok {
			return model.Category{}, fmt.Errorf("parent category %s: %w", c.ParentID, ErrNotFound)
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	s.categories = append(s.categories, c)
	s.reindexCategories()
	if err := s.saveCategories(); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// DeleteCategory removes a category. Deleting a category that still
// has children is rejected with ErrConflict; entities referencing the
// category keep a dangling id that reports treat as uncategorized.
func (s *Store) DeleteCategory(id string) error {
	if _, ok := s.categoryByID[id]; !ok {
		return fmt.Errorf("category %s: %w", id, ErrNotFound)
	}
	for _, c := range s.categories {
		if c.ParentID == id {
			return fmt.Errorf("category %s has children: %w", id, ErrConflict)
		}
	}

	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	s.reindexCategories()
	return s.saveCategories()
}
