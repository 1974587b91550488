// Package store persists accounts, categories, tags, entities and
// transactions as plain CSV files under a data directory:
//
//	accounts.csv
//	categories.csv
//	tags.csv
//	entities.csv
//	transactions/<accountID>.csv
//
// Reference data is loaded into memory on Open; transaction files are
// loaded per account. Every write rewrites the whole file through a
// temp file and rename, so a batch is applied all-or-nothing.
package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/releve-dev/releve/internal/model"
)

// Store is the CSV-backed data store. Not safe for concurrent writers;
// callers importing into the same account must serialize externally.
type Store struct {
	root string

	accounts   []model.Account
	categories []model.Category
	tags       []model.Tag
	entities   []model.Entity

	accountByID  map[string]model.Account
	categoryByID map[string]model.Category
	tagByID      map[string]model.Tag
	entityByID   map[string]model.Entity
	entityByName map[string]map[string]model.Entity // accountID -> name
}

// Open loads all reference data from a data directory. Missing files
// are treated as empty.
func Open(root string) (*Store, error) {
	s := &Store{root: root}

	if err := s.loadAccounts(); err != nil {
		return nil, err
	}
	if err := s.loadCategories(); err != nil {
		return nil, err
	}
	if err := s.loadTags(); err != nil {
		return nil, err
	}
	if err := s.loadEntities(); err != nil {
		return nil, err
	}
	return s, nil
}

// Root returns the data directory the store was opened on.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name)
}

// readCSV reads all records of a CSV file, skipping the header row.
// A missing file yields no records.
func readCSV(path string, numFields int) ([][]string, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// writeCSV atomically rewrites a CSV file with header and rows.
func writeCSV(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := writeRecords(tmp, header, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func writeRecords(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
