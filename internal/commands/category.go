package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/model"
)

func newCategoryCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage spending categories",
	}
	cmd.AddCommand(
		newCategoryAddCommand(opts),
		newCategoryListCommand(opts),
		newCategoryRemoveCommand(opts),
	)
	return cmd
}

func newCategoryAddCommand(opts *rootOptions) *cobra.Command {
	var c model.Category

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			c.Name = args[0]
			created, err := st.CreateCategory(c)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (%s)\n", created.Name, created.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&c.ParentID, "parent", "", "parent category id")
	cmd.Flags().StringVar(&c.Description, "description", "", "free-form description")
	return cmd
}

func newCategoryListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tPARENT")
			for _, c := range st.Categories() {
				parent := "-"
				if c.ParentID != "" {
					if p, ok := st.Category(c.ParentID); ok {
						parent = p.Name
					} else {
						parent = c.ParentID
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, c.Name, parent)
			}
			return w.Flush()
		},
	}
}

func newCategoryRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a category without children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			if err := st.DeleteCategory(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed category %s\n", args[0])
			return nil
		},
	}
}
