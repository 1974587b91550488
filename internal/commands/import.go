package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/auditlog"
	"github.com/releve-dev/releve/internal/classify"
	"github.com/releve-dev/releve/internal/gitops"
	"github.com/releve-dev/releve/internal/importer"
	"github.com/releve-dev/releve/internal/parser"
	"github.com/releve-dev/releve/internal/reconcile"
)

func newImportCommand(opts *rootOptions) *cobra.Command {
	var accountID string
	var dryRun, force, scan bool

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import statement files into an account",
		Long: `Import sends each statement file to the parsing service, fingerprints
the returned rows, and upserts them into the account. Re-importing the
same file is a no-op.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !scan && len(args) == 0 {
				return fmt.Errorf("no statement files given (use --scan to pick up the import directory)")
			}
			return runImport(cmd, opts, accountID, args, scan, reconcile.Options{DryRun: dryRun, Force: force})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account id to import into")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute the diff without writing anything")
	cmd.Flags().BoolVar(&force, "force", false, "refresh classification on every matched row")
	cmd.Flags().BoolVar(&scan, "scan", false, "also import every pending file from the import directory")
	return cmd
}

// statementFile is one file queued for import. Scanned files move to
// import/processed/ once applied; files named on the command line stay
// where they are.
type statementFile struct {
	name     string
	path     string
	fromScan bool
}

func runImport(cmd *cobra.Command, opts *rootOptions, accountID string, args []string, scan bool, ro reconcile.Options) error {
	log := opts.logger()
	st, err := opts.open()
	if err != nil {
		return err
	}
	if _, ok := st.Account(accountID); !ok {
		return fmt.Errorf("unknown account %q", accountID)
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	client := parser.NewClient(cfg.Parser.URL, time.Duration(cfg.Parser.TimeoutSeconds)*time.Second, log)
	svc := reconcile.NewService(st, classify.New(), log)
	svc.SetPreviewLimit(cfg.Import.PreviewLimit)

	var files []statementFile
	for _, a := range args {
		files = append(files, statementFile{name: filepath.Base(a), path: a})
	}
	if scan {
		pending, err := importer.Scan(st.Root())
		if err != nil {
			return err
		}
		for _, f := range pending {
			files = append(files, statementFile{name: f.Name, path: f.Path, fromScan: true})
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		res, err := importOne(cmd, client, svc, st.Root(), accountID, f, ro)
		if err != nil {
			return fmt.Errorf("importing %s: %w", f.name, err)
		}
		printResult(out, f.name, res, ro.DryRun)
	}

	if !ro.DryRun && cfg.Git.AutoCommit && gitops.IsRepo(st.Root()) {
		hash, err := gitops.CommitAll(st.Root(), fmt.Sprintf("import %d file(s) into %s", len(files), accountID),
			cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			return err
		}
		if hash != "" {
			fmt.Fprintf(out, "Committed %s\n", hash)
		}
	}
	return nil
}

func importOne(cmd *cobra.Command, client *parser.Client, svc *reconcile.Service, root, accountID string, f statementFile, ro reconcile.Options) (reconcile.Result, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return reconcile.Result{}, err
	}
	rows, err := client.ParseStatement(cmd.Context(), f.name, file)
	file.Close()
	if err != nil {
		return reconcile.Result{}, err
	}

	res, err := svc.Reconcile(accountID, rows, ro)
	if err != nil {
		return reconcile.Result{}, err
	}

	if err := auditlog.Append(root, auditlog.Entry{
		Timestamp:  time.Now(),
		AccountID:  accountID,
		Action:     "import",
		SourceFile: f.name,
		Inserted:   res.Inserted,
		Updated:    res.Updated,
		DryRun:     ro.DryRun,
	}); err != nil {
		return reconcile.Result{}, err
	}

	if f.fromScan && !ro.DryRun {
		if err := importer.MarkProcessed(root, f.name); err != nil {
			return reconcile.Result{}, err
		}
	}
	return res, nil
}

func printResult(w io.Writer, name string, res reconcile.Result, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "%s: would insert %d, would update %d (%d total)\n",
			name, res.Inserted, res.Updated, res.Simulated())
		for _, c := range res.Preview {
			fmt.Fprintf(w, "  %s: %s/%s -> %s/%s\n", shortFingerprint(c.Fingerprint),
				orDash(string(c.Before.Type)), orDash(c.Before.Entity),
				orDash(string(c.After.Type)), orDash(c.After.Entity))
		}
		return
	}
	fmt.Fprintf(w, "%s: inserted %d, updated %d\n", name, res.Inserted, res.Updated)
}

func shortFingerprint(fp string) string {
	if len(fp) > 8 {
		return fp[:8]
	}
	return fp
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
