package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/auditlog"
	"github.com/releve-dev/releve/internal/classify"
	"github.com/releve-dev/releve/internal/reconcile"
)

func newReanalyzeCommand(opts *rootOptions) *cobra.Command {
	var accountID string
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "reanalyze",
		Short: "Re-run classification over stored transactions",
		Long: `Reanalyze re-runs type detection and entity extraction over every
stored transaction of an account, applying rule changes to history.
Manually pinned transactions are left alone unless --force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReanalyze(cmd, opts, accountID, reconcile.Options{DryRun: dryRun, Force: force})
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account id to reanalyze")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report would-be changes without writing anything")
	cmd.Flags().BoolVar(&force, "force", false, "also refresh manually pinned transactions")
	return cmd
}

func runReanalyze(cmd *cobra.Command, opts *rootOptions, accountID string, ro reconcile.Options) error {
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

	svc := reconcile.NewService(st, classify.New(), log)
	svc.SetPreviewLimit(cfg.Import.PreviewLimit)

	res, err := svc.Reanalyze(accountID, ro)
	if err != nil {
		return err
	}

	if err := auditlog.Append(st.Root(), auditlog.Entry{
		Timestamp: time.Now(),
		AccountID: accountID,
		Action:    "reanalyze",
		Inserted:  res.Inserted,
		Updated:   res.Updated,
		DryRun:    ro.DryRun,
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if ro.DryRun {
		fmt.Fprintf(out, "Would update %d transaction(s)\n", res.Updated)
		for _, c := range res.Preview {
			fmt.Fprintf(out, "  %s: %s/%s -> %s/%s\n", shortFingerprint(c.Fingerprint),
				orDash(string(c.Before.Type)), orDash(c.Before.Entity),
				orDash(string(c.After.Type)), orDash(c.After.Entity))
		}
		return nil
	}
	fmt.Fprintf(out, "Updated %d transaction(s)\n", res.Updated)
	return nil
}
