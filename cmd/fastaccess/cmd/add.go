package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/fastaccess/internal/catalog"
)

var addKind string

var addCmd = &cobra.Command{
	Use:   "add <name> <target>",
	Short: "Add a command to the catalog",
	Long: `Add a named command to the catalog. The target is either a URL or a
filesystem path to an application.

The kind is inferred from the target (http/https targets become web
commands, everything else an app command) unless --type is given. If the
name is already taken a numeric suffix is appended, matching the behaviour
of the daemon's own catalog editing.`,
	Example: `  fastaccess add Spotify https://open.spotify.com
  fastaccess add Editor /usr/bin/code --type app`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addKind, "type", "", `command kind: "app" or "web" (default inferred)`)
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	name, target := args[0], args[1]

	kind := catalog.Kind(addKind)
	if addKind == "" {
		kind = inferKind(target)
	} else if !kind.IsValid() {
		return fmt.Errorf("unknown command type %q (want app or web)", addKind)
	}

	store, err := openCatalog()
	if err != nil {
		return err
	}
	added, err := store.AddCommand(catalog.Command{Name: name, Kind: kind, Action: target})
	if err != nil {
		return err
	}

	fmt.Printf("added %s command %q -> %s\n", added.Kind, added.Name, added.Action)
	if added.Name != name {
		fmt.Printf("note: %q was taken, stored as %q\n", name, added.Name)
	}
	return nil
}

func inferKind(target string) catalog.Kind {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return catalog.KindWeb
	}
	return catalog.KindApp
}
