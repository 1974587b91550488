package reconcile

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releve-dev/releve/internal/classify"
	"github.com/releve-dev/releve/internal/model"
	"github.com/releve-dev/releve/internal/store"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *store.Store, string) {
	t.Helper()
	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	a, err := st.CreateAccount(model.Account{Name: "Courant", BankCode: "SG", IBAN: "FR7612345"})
	require.NoError(t, err)
	return NewService(st, classify.New(), zerolog.Nop()), st, a.ID
}

func row(day int, label string, debit, amount, source string) model.StatementRow {
	return model.StatementRow{
		Bank:          "SG",
		AccountIBAN:   "FR7612345",
		DateOperation: date(2025, 3, day),
		Label:         label,
		Debit:         dec(debit),
		Amount:        dec(amount),
		YearMonth:     "2025-03",
		SourceFile:    source,
	}
}

func TestReconcile_FreshImport(t *testing.T) {
	svc, st, acct := newTestService(t)

	rows := []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
		row(5, "CARTE X1234 05/10 AMAZON EU 25.90 EUR", "25.90", "-25.90", "mars.csv"),
		row(7, "RETRAIT DAB 50 EUR", "50.00", "-50.00", "mars.csv"),
	}
	res, err := svc.Reconcile(acct, rows, Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Inserted)
	assert.Equal(t, 0, res.Updated)
	assert.Equal(t, "mars.csv", res.SourceFile)

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	require.Len(t, txns, 3)

	edf, ok := st.EntityByName(acct, "EDF")
	require.True(t, ok)
	assert.Equal(t, edf.ID, txns[0].EntityID)
	assert.Equal(t, model.OpPrelevement, txns[0].TypeOperation)

	// Withdrawals never get an entity.
	assert.Equal(t, model.OpRetrait, txns[2].TypeOperation)
	assert.Empty(t, txns[2].EntityID)
}

func TestReconcile_Idempotent(t *testing.T) {
	svc, st, acct := newTestService(t)
	rows := []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
		row(5, "CARTE X1234 05/10 AMAZON EU 25.90 EUR", "25.90", "-25.90", "mars.csv"),
	}

	_, err := svc.Reconcile(acct, rows, Options{})
	require.NoError(t, err)

	res, err := svc.Reconcile(acct, rows, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 0, res.Updated)

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestReconcile_OverlappingFiles(t *testing.T) {
	svc, st, acct := newTestService(t)

	shared := "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE"
	_, err := svc.Reconcile(acct, []model.StatementRow{
		row(3, shared, "55.10", "-55.10", "mars.csv"),
		row(5, "CARTE X1234 05/10 AMAZON EU 25.90 EUR", "25.90", "-25.90", "mars.csv"),
	}, Options{})
	require.NoError(t, err)

	// The second statement repeats the EDF row. Same fingerprint, so it
	// matches, and only the source file differs.
	res, err := svc.Reconcile(acct, []model.StatementRow{
		row(3, shared, "55.10", "-55.10", "avril.csv"),
		row(28, "RETRAIT DAB 50 EUR", "50.00", "-50.00", "avril.csv"),
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 1, res.Updated)

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Len(t, txns, 3)
}

func TestReconcile_DryRunWritesNothing(t *testing.T) {
	svc, st, acct := newTestService(t)
	rows := []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
		row(5, "CARTE X1234 05/10 AMAZON EU 25.90 EUR", "25.90", "-25.90", "mars.csv"),
	}

	res, err := svc.Reconcile(acct, rows, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Simulated())
	require.Len(t, res.Preview, 2)
	assert.Equal(t, "EDF", res.Preview[0].After.Entity)

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Empty(t, txns)
	assert.Empty(t, st.Entities(acct), "dry run must not create entities")
}

func TestReconcile_SharedEntityWithinBatch(t *testing.T) {
	svc, st, acct := newTestService(t)

	res, err := svc.Reconcile(acct, []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
		row(17, "PRLV POUR CPTE DE: EDF ID999 MOTIF FACTURE", "61.30", "-61.30", "mars.csv"),
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)

	require.Len(t, st.Entities(acct), 1, "both rows share one lazily created entity")

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, txns[0].EntityID, txns[1].EntityID)
}

func TestReconcile_ManualPinned(t *testing.T) {
	svc, st, acct := newTestService(t)
	rows := []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
	}
	_, err := svc.Reconcile(acct, rows, Options{})
	require.NoError(t, err)

	// Pin the transaction to a manual classification.
	require.NoError(t, st.AddEntities([]model.Entity{{ID: "manual-ent", AccountID: acct, Name: "MA COPRO"}}))
	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	txns[0].Manual = true
	txns[0].EntityID = "manual-ent"
	txns[0].TypeOperation = model.OpAutre
	require.NoError(t, st.SaveTransactions(acct, txns))

	// A re-import must not undo the pin.
	_, err = svc.Reconcile(acct, rows, Options{})
	require.NoError(t, err)
	txns, err = st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Equal(t, "manual-ent", txns[0].EntityID)
	assert.Equal(t, model.OpAutre, txns[0].TypeOperation)

	// Force overrides it.
	res, err := svc.Reconcile(acct, rows, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	txns, err = st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Equal(t, model.OpPrelevement, txns[0].TypeOperation)
	edf, ok := st.EntityByName(acct, "EDF")
	require.True(t, ok)
	assert.Equal(t, edf.ID, txns[0].EntityID)
}

func TestReconcile_AccountValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Reconcile("", nil, Options{})
	require.ErrorIs(t, err, ErrAccountRequired)

	_, err = svc.Reconcile("ghost", nil, Options{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestReanalyze_FixesStaleClassification(t *testing.T) {
	svc, st, acct := newTestService(t)
	_, err := svc.Reconcile(acct, []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
		row(5, "CARTE X1234 05/10 AMAZON EU 25.90 EUR", "25.90", "-25.90", "mars.csv"),
	}, Options{})
	require.NoError(t, err)

	// Simulate a transaction imported before the rules knew better.
	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	txns[0].TypeOperation = model.OpAutre
	txns[0].EntityID = ""
	require.NoError(t, st.SaveTransactions(acct, txns))

	res, err := svc.Reanalyze(acct, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated, "only the stale transaction changes")

	txns, err = st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Equal(t, model.OpPrelevement, txns[0].TypeOperation)
	edf, ok := st.EntityByName(acct, "EDF")
	require.True(t, ok)
	assert.Equal(t, edf.ID, txns[0].EntityID)
}

func TestReanalyze_SkipsManualUnlessForce(t *testing.T) {
	svc, st, acct := newTestService(t)
	_, err := svc.Reconcile(acct, []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
	}, Options{})
	require.NoError(t, err)

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	txns[0].Manual = true
	txns[0].TypeOperation = model.OpAutre
	require.NoError(t, st.SaveTransactions(acct, txns))

	res, err := svc.Reanalyze(acct, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Updated)

	res, err = svc.Reanalyze(acct, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	txns, err = st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Equal(t, model.OpPrelevement, txns[0].TypeOperation)
}

func TestReanalyze_DryRunPreview(t *testing.T) {
	svc, st, acct := newTestService(t)
	_, err := svc.Reconcile(acct, []model.StatementRow{
		row(3, "PRLV POUR CPTE DE: EDF ID123 MOTIF FACTURE", "55.10", "-55.10", "mars.csv"),
	}, Options{})
	require.NoError(t, err)

	txns, err := st.LoadTransactions(acct)
	require.NoError(t, err)
	txns[0].TypeOperation = model.OpAutre
	require.NoError(t, st.SaveTransactions(acct, txns))

	res, err := svc.Reanalyze(acct, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
	require.Len(t, res.Preview, 1)
	assert.Equal(t, model.OpAutre, res.Preview[0].Before.Type)
	assert.Equal(t, model.OpPrelevement, res.Preview[0].After.Type)

	// Nothing written.
	txns, err = st.LoadTransactions(acct)
	require.NoError(t, err)
	assert.Equal(t, model.OpAutre, txns[0].TypeOperation)
}

func TestPreviewLimit(t *testing.T) {
	svc, _, acct := newTestService(t)
	svc.SetPreviewLimit(2)

	var rows []model.StatementRow
	for day := 1; day <= 5; day++ {
		rows = append(rows, row(day, "RETRAIT DAB 50 EUR", "50.00", "-50.00", "mars.csv"))
	}
	res, err := svc.Reconcile(acct, rows, Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Inserted)
	assert.Len(t, res.Preview, 2)
}
