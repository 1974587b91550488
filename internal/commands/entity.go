package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newEntityCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage counterparty entities",
	}
	cmd.AddCommand(
		newEntityListCommand(opts),
		newEntityMergeCommand(opts),
		newEntityDisplayCommand(opts),
		newEntitySetCategoryCommand(opts),
		newEntityTagCommand(opts),
	)
	return cmd
}

func newEntityListCommand(opts *rootOptions) *cobra.Command {
	var accountID string
	var aliases bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities of an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			if _, ok := st.Account(accountID); !ok {
				return fmt.Errorf("unknown account %q", accountID)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tALIAS OF\tTAGS")
			for _, e := range st.Entities(accountID) {
				if e.AliasOfID != "" && !aliases {
					continue
				}
				category := "-"
				if e.CategoryID != "" {
					if c, ok := st.Category(e.CategoryID); ok {
						category = c.Name
					}
				}
				aliasOf := "-"
				if e.AliasOfID != "" {
					if p, ok := st.Entity(e.AliasOfID); ok {
						aliasOf = p.Label()
					}
				}
				tags := make([]string, 0, len(e.TagIDs))
				for _, id := range e.TagIDs {
					if t, ok := st.Tag(id); ok {
						tags = append(tags, t.Name)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Label(), category, aliasOf, strings.Join(tags, ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&accountID, "account", "", "account id")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().BoolVar(&aliases, "aliases", false, "also list entities that alias another")
	return cmd
}

func newEntityMergeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <principal-id> [alias-id...]",
		Short: "Point alias entities at a principal",
		Long: `Merge makes the named alias entities point at the principal. Aliases
of the principal not named in the call are detached. Calling merge with
only the principal id detaches every current alias.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			attached, detached, err := st.MergeAliases(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %d, detached %d alias(es)\n", len(attached), len(detached))
			return nil
		},
	}
}

func newEntityDisplayCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "display <id> <name>",
		Short: "Set an entity's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			e, ok := st.Entity(args[0])
			if !ok {
				return fmt.Errorf("unknown entity %q", args[0])
			}
			e.DisplayName = args[1]
			if err := st.UpdateEntity(e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entity %s now displays as %s\n", e.Name, e.Label())
			return nil
		},
	}
}

func newEntitySetCategoryCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-category <entity-id> <category-id>",
		Short: "Assign an entity to a category",
		Long:  "Pass an empty category id (\"\") to clear the assignment.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			e, ok := st.Entity(args[0])
			if !ok {
				return fmt.Errorf("unknown entity %q", args[0])
			}
			if args[1] != "" {
				if _, ok := st.Category(args[1]); !ok {
					return fmt.Errorf("unknown category %q", args[1])
				}
			}
			e.CategoryID = args[1]
			if err := st.UpdateEntity(e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entity %s categorized\n", e.Label())
			return nil
		},
	}
}

func newEntityTagCommand(opts *rootOptions) *cobra.Command {
	var remove bool

	cmd := &cobra.Command{
		Use:   "tag <entity-id> <tag-id>",
		Short: "Attach or detach a tag on an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.open()
			if err != nil {
				return err
			}
			e, ok := st.Entity(args[0])
			if !ok {
				return fmt.Errorf("unknown entity %q", args[0])
			}
			if _, ok := st.Tag(args[1]); !ok && !remove {
				return fmt.Errorf("unknown tag %q", args[1])
			}

			tags := e.TagIDs[:0:0]
			for _, id := range e.TagIDs {
				if id != args[1] {
					tags = append(tags, id)
				}
			}
			if !remove {
				tags = append(tags, args[1])
			}
			e.TagIDs = tags
			if err := st.UpdateEntity(e); err != nil {
				return err
			}
			if remove {
				fmt.Fprintf(cmd.OutOrStdout(), "Detached tag from %s\n", e.Label())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Tagged %s\n", e.Label())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "detach the tag instead of attaching it")
	return cmd
}
