// Package commands wires the releve CLI.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/releve-dev/releve/internal/buildinfo"
	"github.com/releve-dev/releve/internal/config"
	"github.com/releve-dev/releve/internal/logger"
	"github.com/releve-dev/releve/internal/store"
)

// NewRootCommand creates the root CLI command with all subcommands
// registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "releve",
		Short:   "Bank statement tracking and classification",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data", ".", "data directory")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newImportCommand(opts),
		newReanalyzeCommand(opts),
		newReportCommand(opts),
		newAccountCommand(opts),
		newEntityCommand(opts),
		newCategoryCommand(opts),
		newTagCommand(opts),
	)
	return rootCmd
}

type rootOptions struct {
	dataDir string
	verbose bool
}

func (o *rootOptions) root() (string, error) {
	abs, err := filepath.Abs(o.dataDir)
	if err != nil {
		return "", fmt.Errorf("resolving data dir: %w", err)
	}
	return abs, nil
}

func (o *rootOptions) open() (*store.Store, error) {
	root, err := o.root()
	if err != nil {
		return nil, err
	}
	return store.Open(root)
}

func (o *rootOptions) logger() zerolog.Logger {
	return logger.New(o.verbose)
}

// loadConfig reads releve.yaml from the data directory, falling back
// to defaults when the file does not exist.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	root, err := o.root()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}
