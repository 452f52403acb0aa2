// Package cmd holds the fastaccess command tree.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmorales/fastaccess/internal/catalog"
	"github.com/dmorales/fastaccess/internal/config"
)

var (
	cfgFile     string
	catalogFile string
)

var rootCmd = &cobra.Command{
	Use:   "fastaccess",
	Short: "Voice-controlled application launcher",
	Long: `fastaccess keeps a catalog of named commands (apps and URLs) and
groups, launches them by voice, and exposes a small HTTP control plane.

Run the daemon with "fastaccess run"; edit the catalog with the add,
remove, group and list subcommands. Catalog edits are picked up by a
running daemon without a restart.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree and prints the terminal error, if any.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fastaccess: %v\n", err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml",
		"path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "",
		"catalog file path (overrides the configured one)")
}

// loadConfig reads the configuration file. Catalog-editing subcommands
// tolerate a missing file and fall back to defaults; the run subcommand
// does not, so callers pass required accordingly.
func loadConfig(required bool) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) && !required {
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCatalog opens the catalog store for the CLI editing commands,
// honouring the --catalog override.
func openCatalog() (*catalog.Store, error) {
	path := catalogFile
	if path == "" {
		cfg, err := loadConfig(false)
		if err != nil {
			return nil, err
		}
		path = cfg.Catalog.Path
	}
	return catalog.Open(path)
}
