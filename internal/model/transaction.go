package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// OperationType tags a transaction with the kind of operation the bank
// label describes.
type OperationType string

const (
	OpPrelevement    OperationType = "PRLV"
	OpVirement       OperationType = "VIREMENT"
	OpFraisBancaires OperationType = "AUTRE_FRAIS_BANCAIRES"
	OpPaiementCB     OperationType = "PAIEMENT_CB"
	OpRetrait        OperationType = "RETRAIT"
	OpCheque         OperationType = "CHEQUE"
	OpAutre          OperationType = "AUTRE"
)

// Transaction is one persisted statement line. Its identity is the
// content fingerprint, which makes repeated imports of overlapping
// statement files idempotent.
type Transaction struct {
	Fingerprint   string
	AccountID     string
	Bank          string
	DateOperation time.Time
	DateValeur    time.Time // zero when the statement omits the value date
	Label         string
	Details       string
	Debit         decimal.Decimal // >= 0
	Credit        decimal.Decimal // >= 0
	Amount        decimal.Decimal // credit - debit
	YearMonth     string          // period key, "YYYY-MM"
	SourceFile    string
	CategoryID    string
	TypeOperation OperationType
	EntityID      string
	Manual        bool // classification pinned by the user; re-imports leave type/entity alone
}

// StatementRow is one row produced by the external statement-parsing
// service, not yet reconciled into the store.
type StatementRow struct {
	Bank          string
	AccountIBAN   string
	DateOperation time.Time
	DateValeur    time.Time
	Label         string
	Details       string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Amount        decimal.Decimal
	YearMonth     string
	SourceFile    string
}
