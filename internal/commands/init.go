package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/config"
	"github.com/releve-dev/releve/internal/gitops"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	var useGit bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := opts.root()
			if err != nil {
				return err
			}
			return runInit(cmd, root, useGit)
		},
	}
	cmd.Flags().BoolVar(&useGit, "git", false, "initialize a git repository in the data directory")
	return cmd
}

func runInit(cmd *cobra.Command, root string, useGit bool) error {
	for _, dir := range []string{"import", filepath.Join("import", "processed"), "logs", "transactions"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	cfgPath := filepath.Join(root, config.FileName)
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.Save(cfgPath, config.Default()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.FileName)
	}

	if useGit && !gitops.IsRepo(root) {
		if err := gitops.Init(root); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Initialized git repository")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Data directory ready at %s\n", root)
	return nil
}
