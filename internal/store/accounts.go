package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/releve-dev/releve/internal/model"
)

const accountsFile = "accounts.csv"

var accountHeader = []string{"account_id", "name", "description", "bank_code", "iban", "color"}

const (
	acctNumFields = 6
	acctColID     = 0
	acctColName   = 1
	acctColDesc   = 2
	acctColBank   = 3
	acctColIBAN   = 4
	acctColColor  = 5
)

func marshalAccount(a model.Account) []string {
	row := make([]string, acctNumFields)
	row[acctColID] = a.ID
	row[acctColName] = a.Name
	row[acctColDesc] = a.Description
	row[acctColBank] = a.BankCode
	row[acctColIBAN] = a.IBAN
	row[acctColColor] = a.Color
	return row
}

func unmarshalAccount(record []string) (model.Account, error) {
	if len(record) != acctNumFields {
		return model.Account{}, fmt.Errorf("expected %d fields, got %d", acctNumFields, len(record))
	}
	return model.Account{
		ID:          record[acctColID],
		Name:        record[acctColName],
		Description: record[acctColDesc],
		BankCode:    record[acctColBank],
		IBAN:        record[acctColIBAN],
		Color:       record[acctColColor],
	}, nil
}

func (s *Store) loadAccounts() error {
	records, err := readCSV(s.path(accountsFile), acctNumFields)
	if err != nil {
		return err
	}
	s.accounts = nil
	for i, rec := range records {
		a, err := unmarshalAccount(rec)
		if err != nil {
			return fmt.Errorf("%s row %d: %w", accountsFile, i+2, err)
		}
		s.accounts = append(s.accounts, a)
	}
	s.reindexAccounts()
	return nil
}

func (s *Store) saveAccounts() error {
	rows := make([][]string, len(s.accounts))
	for i, a := range s.accounts {
		rows[i] = marshalAccount(a)
	}
	return writeCSV(s.path(accountsFile), accountHeader, rows)
}

func (s *Store) reindexAccounts() {
	s.accountByID = make(map[string]model.Account, len(s.accounts))
	for _, a := range s.accounts {
		s.accountByID[a.ID] = a
	}
}

// Accounts returns all accounts.
func (s *Store) Accounts() []model.Account {
	return s.accounts
}

// Account returns an account by id.
func (s *Store) Account(id string) (model.Account, bool) {
	a, ok := s.accountByID[id]
	return a, ok
}

// CreateAccount adds an account. An empty ID gets a new uuid; a
// duplicate name is a conflict.
func (s *Store) CreateAccount(a model.Account) (model.Account, error) {
	for _, existing := range s.accounts {
		if existing.Name == a.Name {
			return model.Account{}, fmt.Errorf("account %q: %w", a.Name, ErrConflict)
		}
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.accounts = append(s.accounts, a)
	s.reindexAccounts()
	if err := s.saveAccounts(); err != nil {
		return model.Account{}, err
	}
	return a, nil
}

// DeleteAccount removes an account. Rejected with ErrConflict while
// the account still owns transactions; entities owned by the account
// are removed with it.
func (s *Store) DeleteAccount(id string) error {
	if _, ok := s.accountByID[id]; !ok {
		return fmt.Errorf("account %s: %w", id, ErrNotFound)
	}

	txns, err := s.LoadTransactions(id)
	if err != nil {
		return err
	}
	if len(txns) > 0 {
		return fmt.Errorf("account %s has %d transactions: %w", id, len(txns), ErrConflict)
	}

	kept := s.accounts[:0]
	for _, a := range s.accounts {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	s.accounts = kept
	s.reindexAccounts()

	keptEnts := s.entities[:0]
	for _, e := range s.entities {
		if e.AccountID != id {
			keptEnts = append(keptEnts, e)
		}
	}
	s.entities = keptEnts
	s.reindexEntities()

	if err := s.saveAccounts(); err != nil {
		return err
	}
	return s.saveEntities()
}
