package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/model"
)

func newAccountCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage bank accounts",
	}
	cmd.AddCommand(
		newAccountAddCommand(opts),
		newAccountListCommand(opts),
		newAccountRemoveCommand(opts),
	)
	return cmd
}

func newAccountAddCommand(opts *rootOptions) *cobra.Command {
	var a model.Account

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			a.Name = args[0]
			created, err := st.CreateAccount(a)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created account %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&a.Description, "description", "", "free-form description")
	cmd.Flags().StringVar(&a.BankCode, "bank", "SG", "bank code")
	cmd.Flags().StringVar(&a.IBAN, "iban", "", "account IBAN")
	cmd.Flags().StringVar(&a.Color, "color", "", "display color")
	return cmd
}

func newAccountListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBANK\tIBAN")
			for _, a := range st.Accounts() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.BankCode, a.IBAN)
			}
			return w.Flush()
		},
	}
}

func newAccountRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an account without transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			if err := st.DeleteAccount(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed account %s\n", args[0])
			return nil
		},
	}
}
