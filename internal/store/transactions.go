package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/releve-dev/releve/internal/model"
)

const transactionsDir = "transactions"

var transactionHeader = []string{
	"fingerprint", "bank", "date_operation", "date_valeur", "label", "details",
	"debit", "credit", "amount", "year_month", "source_file",
	"type_operation", "entity_id", "category_id", "manual",
}

const (
	txNumFields  = 15
	txDateFormat = "2006-01-02"
	txColFP      = 0
	txColBank    = 1
	txColDateOp  = 2
	txColDateVal = 3
	txColLabel   = 4
	txColDetails = 5
	txColDebit   = 6
	txColCredit  = 7
	txColAmount  = 8
	txColPeriod  = 9
	txColSource  = 10
	txColType    = 11
	txColEntity  = 12
	txColCat     = 13
	txColManual  = 14
)

func marshalTransaction(t model.Transaction) []string {
	row := make([]string, txNumFields)
	row[txColFP] = t.Fingerprint
	row[txColBank] = t.Bank
	row[txColDateOp] = t.DateOperation.Format(txDateFormat)
	if !t.DateValeur.IsZero() {
		row[txColDateVal] = t.DateValeur.Format(txDateFormat)
	}
	row[txColLabel] = t.Label
	row[txColDetails] = t.Details

	if !t.Debit.IsZero() {
		row[txColDebit] = t.Debit.StringFixed(2)
	}
	if !t.Credit.IsZero() {
		row[txColCredit] = t.Credit.StringFixed(2)
	}
	row[txColAmount] = t.Amount.StringFixed(2)

	row[txColPeriod] = t.YearMonth
	row[txColSource] = t.SourceFile
	row[txColType] = string(t.TypeOperation)
	row[txColEntity] = t.EntityID
	row[txColCat] = t.CategoryID
	if t.Manual {
		row[txColManual] = "true"
	}
	return row
}

func unmarshalTransaction(record []string, accountID string) (model.Transaction, error) {
	if len(record) != txNumFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", txNumFields, len(record))
	}

	dateOp, err := time.Parse(txDateFormat, record[txColDateOp])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date_operation %q: %w", record[txColDateOp], err)
	}

	var dateVal time.Time
	if record[txColDateVal] != "" {
		dateVal, err = time.Parse(txDateFormat, record[txColDateVal])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date_valeur %q: %w", record[txColDateVal], err)
		}
	}

	debit, err := parseAmount(record[txColDebit])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing debit %q: %w", record[txColDebit], err)
	}
	credit, err := parseAmount(record[txColCredit])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing credit %q: %w", record[txColCredit], err)
	}
	amount, err := parseAmount(record[txColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[txColAmount], err)
	}

	return model.Transaction{
		Fingerprint:   record[txColFP],
		AccountID:     accountID,
		Bank:          record[txColBank],
		DateOperation: dateOp,
		DateValeur:    dateVal,
		Label:         record[txColLabel],
		Details:       record[txColDetails],
		Debit:         debit,
		Credit:        credit,
		Amount:        amount,
		YearMonth:     record[txColPeriod],
		SourceFile:    record[txColSource],
		TypeOperation: model.OperationType(record[txColType]),
		EntityID:      record[txColEntity],
		CategoryID:    record[txColCat],
		Manual:        record[txColManual] == "true",
	}, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func (s *Store) transactionsPath(accountID string) string {
	return filepath.Join(s.root, transactionsDir, accountID+".csv")
}

// LoadTransactions reads all transactions of one account. A missing
// file means the account has no transactions yet.
func (s *Store) LoadTransactions(accountID string) ([]model.Transaction, error) {
	records, err := readCSV(s.transactionsPath(accountID), txNumFields)
	if err != nil {
		return nil, err
	}

	var txns []model.Transaction
	for i, rec := range records {
		t, err := unmarshalTransaction(rec, accountID)
		if err != nil {
			return nil, fmt.Errorf("transactions %s row %d: %w", accountID, i+2, err)
		}
		txns = append(txns, t)
	}
	return txns, nil
}

// SaveTransactions atomically rewrites the transaction file of one
// account, ordered by operation date then fingerprint so the file
// stays diff-friendly.
func (s *Store) SaveTransactions(accountID string, txns []model.Transaction) error {
	sorted := make([]model.Transaction, len(txns))
	copy(sorted, txns)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].DateOperation.Equal(sorted[j].DateOperation) {
			return sorted[i].DateOperation.Before(sorted[j].DateOperation)
		}
		return sorted[i].Fingerprint < sorted[j].Fingerprint
	})

	rows := make([][]string, len(sorted))
	for i, t := range sorted {
		rows[i] = marshalTransaction(t)
	}
	return writeCSV(s.transactionsPath(accountID), transactionHeader, rows)
}
