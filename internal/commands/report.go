package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/model"
	"github.com/releve-dev/releve/internal/report"
	"github.com/releve-dev/releve/internal/store"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	var f reportFilter

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reports over an account's transactions",
	}
	cmd.PersistentFlags().StringVar(&f.accountID, "account", "", "account id to report on")
	_ = cmd.MarkPersistentFlagRequired("account")
	cmd.PersistentFlags().IntVar(&f.year, "year", 0, "restrict to one year")
	cmd.PersistentFlags().IntVar(&f.month, "month", 0, "restrict to one month (requires --year)")

	cmd.AddCommand(
		newReportByCategoryCommand(opts, &f),
		newReportByTypeCommand(opts, &f),
		newReportByEntityCommand(opts, &f),
		newReportMonthlyCommand(opts, &f),
		newReportSummaryCommand(opts, &f),
		newReportStatsCommand(opts, &f),
	)
	return cmd
}

type reportFilter struct {
	accountID string
	year      int
	month     int
}

// loadFiltered opens the store and returns the account's transactions
// restricted to the requested period.
func loadFiltered(opts *rootOptions, f *reportFilter) ([]model.Transaction, *store.Store, error) {
	if f.month != 0 && f.year == 0 {
		return nil, nil, fmt.Errorf("--month requires --year")
	}
	st, err := opts.open()
	if err != nil {
		return nil, nil, err
	}
	if _, ok := st.Account(f.accountID); !ok {
		return nil, nil, fmt.Errorf("unknown account %q", f.accountID)
	}
	txns, err := st.LoadTransactions(f.accountID)
	if err != nil {
		return nil, nil, err
	}
	return report.FilterPeriod(txns, f.year, f.month), st, nil
}

func newReportByCategoryCommand(opts *rootOptions, f *reportFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "by-category",
		Short: "Totals rolled up the category tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, st, err := loadFiltered(opts, f)
			if err != nil {
				return err
			}
			roots := report.ByCategory(txns, st.Entities(f.accountID), st.Categories())
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CATEGORY\tDEBIT\tCREDIT\tCOUNT")
			for _, node := range roots {
				printCategoryNode(w, node, 0)
			}
			return w.Flush()
		},
	}
}

func printCategoryNode(w io.Writer, n *report.CategoryNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s%s\t%s\t%s\t%d\n", indent, n.Name,
		n.Totals.Debit.StringFixed(2), n.Totals.Credit.StringFixed(2), n.Totals.Count)
	for _, child := range n.Children {
		printCategoryNode(w, child, depth+1)
	}
}

func newReportByTypeCommand(opts *rootOptions, f *reportFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "by-type",
		Short: "Totals grouped by operation type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, _, err := loadFiltered(opts, f)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE\tDEBIT\tCREDIT\tCOUNT")
			for _, ts := range report.ByType(txns) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", ts.Type,
					ts.Totals.Debit.StringFixed(2), ts.Totals.Credit.StringFixed(2), ts.Totals.Count)
			}
			return w.Flush()
		},
	}
}

func newReportByEntityCommand(opts *rootOptions, f *reportFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "by-entity",
		Short: "Totals grouped by principal entity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, st, err := loadFiltered(opts, f)
			if err != nil {
				return err
			}
			rep := report.ByEntity(txns, st.Entities(f.accountID))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ENTITY\tDEBIT\tCREDIT\tCOUNT\tALIASES")
			for _, es := range rep.Entities {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", es.Name,
					es.Totals.Debit.StringFixed(2), es.Totals.Credit.StringFixed(2),
					es.Totals.Count, strings.Join(es.Aliases, ", "))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if rep.Missing > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d transaction(s) without an entity\n", rep.Missing)
			}
			return nil
		},
	}
}

func newReportMonthlyCommand(opts *rootOptions, f *reportFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "monthly",
		Short: "Debit, credit and balance per month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, _, err := loadFiltered(opts, f)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MONTH\tDEBIT\tCREDIT\tBALANCE")
			for _, m := range report.Monthly(txns) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Month,
					m.Debit.StringFixed(2), m.Credit.StringFixed(2), m.Balance.StringFixed(2))
			}
			return w.Flush()
		},
	}
}

func newReportSummaryCommand(opts *rootOptions, f *reportFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Overall debit, credit and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, _, err := loadFiltered(opts, f)
			if err != nil {
				return err
			}
			s := report.Summarize(txns)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Transactions: %d\n", len(txns))
			fmt.Fprintf(out, "Debit:        %s\n", s.Debit.StringFixed(2))
			fmt.Fprintf(out, "Credit:       %s\n", s.Credit.StringFixed(2))
			fmt.Fprintf(out, "Balance:      %s\n", s.Balance.StringFixed(2))
			return nil
		},
	}
}

func newReportStatsCommand(opts *rootOptions, f *reportFilter) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Classification coverage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, _, err := loadFiltered(opts, f)
			if err != nil {
				return err
			}
			st := report.Coverage(txns)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:           %d\n", st.Total)
			fmt.Fprintf(out, "With entity:     %d\n", st.WithEntity)
			fmt.Fprintf(out, "Without entity:  %d\n", st.WithoutEntity)
			fmt.Fprintf(out, "With type:       %d\n", st.WithType)
			fmt.Fprintf(out, "Without type:    %d\n", st.WithoutType)
			fmt.Fprintf(out, "Entity coverage: %.1f%%\n", st.Coverage)
			return nil
		},
	}
}
