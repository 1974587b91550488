// Package reconcile upserts parsed statement rows into the store,
// keyed by content fingerprint, so re-importing the same or an
// overlapping statement file is idempotent. One reconciliation pass
// always computes the full diff; the dry-run flag only gates the final
// write, so preview and live behavior cannot diverge.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/releve-dev/releve/internal/classify"
	"github.com/releve-dev/releve/internal/fingerprint"
	"github.com/releve-dev/releve/internal/model"
	"github.com/releve-dev/releve/internal/store"
)

// ErrAccountRequired is returned when no account id was given.
var ErrAccountRequired = errors.New("account id required")

// DefaultPreviewLimit bounds the number of changed rows reported by a
// dry run.
const DefaultPreviewLimit = 10

// Options controls a reconciliation pass.
type Options struct {
	// DryRun computes the diff without writing anything.
	DryRun bool
	// Force refreshes classification even when unchanged and
	// overrides manually pinned transactions.
	Force bool
}

// Classification is the (type, entity name) pair of a transaction.
type Classification struct {
	Type   model.OperationType
	Entity string
}

// Change is one before/after pair in a preview.
type Change struct {
	Fingerprint string
	Before      Classification
	After       Classification
}

// Result reports what a pass did (or would do, for a dry run).
type Result struct {
	Inserted   int
	Updated    int
	SourceFile string
	Preview    []Change
}

// Simulated returns the total number of would-be changes of a dry run.
func (r Result) Simulated() int {
	return r.Inserted + r.Updated
}

// Service runs import reconciliation and reclassification batches.
type Service struct {
	store        *store.Store
	classifier   *classify.Classifier
	log          zerolog.Logger
	previewLimit int
}

// NewService creates a reconciler over a store.
func NewService(st *store.Store, cl *classify.Classifier, log zerolog.Logger) *Service {
	return &Service{store: st, classifier: cl, log: log, previewLimit: DefaultPreviewLimit}
}

// SetPreviewLimit overrides the dry-run preview bound.
func (s *Service) SetPreviewLimit(n int) {
	if n > 0 {
		s.previewLimit = n
	}
}

// Reconcile upserts a batch of statement rows into one account. Rows
// are processed in input order, so an entity lazily created for one
// row is visible to later rows naming the same merchant. The whole
// batch is committed with one store write per file.
func (s *Service) Reconcile(accountID string, rows []model.StatementRow, opts Options) (Result, error) {
	if accountID == "" {
		return Result{}, ErrAccountRequired
	}
	if _, ok := s.store.Account(accountID); !ok {
		return Result{}, fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}

	txns, err := s.store.LoadTransactions(accountID)
	if err != nil {
		return Result{}, err
	}
	index := make(map[string]int, len(txns))
	for i, t := range txns {
		index[t.Fingerprint] = i
	}

	stage := newEntityStage(s.store, accountID)
	var res Result
	if len(rows) > 0 {
		res.SourceFile = rows[0].SourceFile
	}

	for _, row := range rows {
		fp := fingerprint.Make(row.Bank, row.DateOperation, row.Amount, row.Label, row.Details, row.AccountIBAN)
		op, entityName := s.classifier.Classify(row.Label + " " + row.Details)

		i, found := index[fp]
		if !found {
			txn := model.Transaction{
				Fingerprint:   fp,
				AccountID:     accountID,
				Bank:          row.Bank,
				DateOperation: row.DateOperation,
				DateValeur:    row.DateValeur,
				Label:         row.Label,
				Details:       row.Details,
				Debit:         row.Debit,
				Credit:        row.Credit,
				Amount:        row.Amount,
				YearMonth:     row.YearMonth,
				SourceFile:    row.SourceFile,
				TypeOperation: op,
				EntityID:      stage.idFor(entityName),
			}
			index[fp] = len(txns)
			txns = append(txns, txn)
			res.Inserted++
			s.addPreview(&res, Change{
				Fingerprint: fp,
				After:       Classification{Type: op, Entity: entityName},
			})
			continue
		}

		existing := txns[i]
		updated := existing
		updated.DateValeur = row.DateValeur
		updated.Label = row.Label
		updated.Details = row.Details
		updated.Debit = row.Debit
		updated.Credit = row.Credit
		updated.Amount = row.Amount
		updated.YearMonth = row.YearMonth
		updated.SourceFile = row.SourceFile
		if opts.Force || !existing.Manual {
			updated.TypeOperation = op
			updated.EntityID = stage.idFor(entityName)
		}

		if !opts.Force && sameTransaction(existing, updated) {
			continue
		}
		txns[i] = updated
		res.Updated++
		s.addPreview(&res, Change{
			Fingerprint: fp,
			Before:      Classification{Type: existing.TypeOperation, Entity: stage.name(existing.EntityID)},
			After:       Classification{Type: updated.TypeOperation, Entity: stage.name(updated.EntityID)},
		})
	}

	if opts.DryRun {
		return res, nil
	}
	if err := s.commit(accountID, stage, txns); err != nil {
		return Result{}, err
	}

	s.log.Info().
		Str("account", accountID).
		Str("source_file", res.SourceFile).
		Int("inserted", res.Inserted).
		Int("updated", res.Updated).
		Msg("import applied")
	return res, nil
}

// Reanalyze re-runs the classifier over the stored transactions of one
// account. Without force, only transactions whose classification
// actually changed are touched, and manually pinned ones are left
// alone; force refreshes every transaction, used to rebuild entity
// linkage after rule-table changes.
func (s *Service) Reanalyze(accountID string, opts Options) (Result, error) {
	if accountID == "" {
		return Result{}, ErrAccountRequired
	}
	if _, ok := s.store.Account(accountID); !ok {
		return Result{}, fmt.Errorf("account %s: %w", accountID, store.ErrNotFound)
	}

	txns, err := s.store.LoadTransactions(accountID)
	if err != nil {
		return Result{}, err
	}

	stage := newEntityStage(s.store, accountID)
	var res Result

	for i, t := range txns {
		if t.Manual && !opts.Force {
			continue
		}

		op, entityName := s.classifier.Classify(t.Label + " " + t.Details)
		oldName := stage.name(t.EntityID)
		if !opts.Force && op == t.TypeOperation && entityName == oldName {
			continue
		}

		updated := t
		updated.TypeOperation = op
		updated.EntityID = stage.idFor(entityName)
		txns[i] = updated
		res.Updated++
		s.addPreview(&res, Change{
			Fingerprint: t.Fingerprint,
			Before:      Classification{Type: t.TypeOperation, Entity: oldName},
			After:       Classification{Type: op, Entity: entityName},
		})
	}

	if opts.DryRun {
		return res, nil
	}
	if err := s.commit(accountID, stage, txns); err != nil {
		return Result{}, err
	}

	s.log.Info().
		Str("account", accountID).
		Int("updated", res.Updated).
		Bool("force", opts.Force).
		Msg("reanalysis applied")
	return res, nil
}

func (s *Service) commit(accountID string, stage *entityStage, txns []model.Transaction) error {
	// Entities first: a transaction referencing a missing entity is a
	// broken link, an orphan entity is harmless.
	if err := s.store.AddEntities(stage.created); err != nil {
		return err
	}
	return s.store.SaveTransactions(accountID, txns)
}

func (s *Service) addPreview(res *Result, c Change) {
	if len(res.Preview) < s.previewLimit {
		res.Preview = append(res.Preview, c)
	}
}

func sameTransaction(a, b model.Transaction) bool {
	return a.DateValeur.Equal(b.DateValeur) &&
		a.Label == b.Label &&
		a.Details == b.Details &&
		a.Debit.Equal(b.Debit) &&
		a.Credit.Equal(b.Credit) &&
		a.Amount.Equal(b.Amount) &&
		a.YearMonth == b.YearMonth &&
		a.SourceFile == b.SourceFile &&
		a.TypeOperation == b.TypeOperation &&
		a.EntityID == b.EntityID
}

// entityStage resolves entity names to ids during a pass, creating
// missing entities in memory so a dry run stays write-free.
type entityStage struct {
	st        *store.Store
	accountID string
	created   []model.Entity
	byName    map[string]string
	names     map[string]string // created id -> name
}

func newEntityStage(st *store.Store, accountID string) *entityStage {
	return &entityStage{
		st:        st,
		accountID: accountID,
		byName:    make(map[string]string),
		names:     make(map[string]string),
	}
}

func (g *entityStage) idFor(name string) string {
	if name == "" {
		return ""
	}
	if id, ok := g.byName[name]; ok {
		return id
	}
	if e, ok := g.st.EntityByName(g.accountID, name); ok {
		g.byName[name] = e.ID
		return e.ID
	}
	id := uuid.NewString()
	g.created = append(g.created, model.Entity{ID: id, AccountID: g.accountID, Name: name})
	g.byName[name] = id
	g.names[id] = name
	return id
}

func (g *entityStage) name(id string) string {
	if id == "" {
		return ""
	}
	if n, ok := g.names[id]; ok {
		return n
	}
	if e, ok := g.st.Entity(id); ok {
		return e.Name
	}
	return ""
}
