package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a command from the catalog",
	Long: `Remove the named command from the catalog. Groups that reference the
command by name keep the entry; at execution time it is skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	if err := store.RemoveCommand(args[0]); err != nil {
		return err
	}
	fmt.Printf("removed command %q\n", args[0])
	return nil
}
