// Package auditlog keeps an append-only CSV trail of import and
// reanalysis runs, one row per batch.
package auditlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp  time.Time
	AccountID  string
	Action     string // "import" or "reanalyze"
	SourceFile string
	Inserted   int
	Updated    int
	DryRun     bool
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,account_id,action,source_file,inserted,updated,dry_run"

const (
	numFields    = 7
	logDir       = "logs"
	logFile      = "logs/import-log.csv"
	colTimestamp = 0
	colAccount   = 1
	colAction    = 2
	colSource    = 3
	colInserted  = 4
	colUpdated   = 5
	colDryRun    = 6
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colAccount] = e.AccountID
	row[colAction] = e.Action
	row[colSource] = e.SourceFile
	row[colInserted] = strconv.Itoa(e.Inserted)
	row[colUpdated] = strconv.Itoa(e.Updated)
	if e.DryRun {
		row[colDryRun] = "true"
	}
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	inserted, err := strconv.Atoi(record[colInserted])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing inserted %q: %w", record[colInserted], err)
	}
	updated, err := strconv.Atoi(record[colUpdated])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing updated %q: %w", record[colUpdated], err)
	}

	return Entry{
		Timestamp:  ts,
		AccountID:  record[colAccount],
		Action:     record[colAction],
		SourceFile: record[colSource],
		Inserted:   inserted,
		Updated:    updated,
		DryRun:     record[colDryRun] == "true",
	}, nil
}

// Append adds one entry to <root>/logs/import-log.csv, creating the
// file with a header when missing.
func Append(root string, e Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	isNew := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		isNew = true
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	if isNew {
		if _, err := fmt.Fprintln(f, Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	cw := csv.NewWriter(f)
	if err := cw.Write(MarshalEntry(e)); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/import-log.csv. Returns an
// empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	path := filepath.Join(root, logFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
