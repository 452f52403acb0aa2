package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmorales/fastaccess/internal/catalog"
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage command groups",
	Long: `Manage named groups. A group bundles several items that are opened
together, in order. An item is the name of a registered command, a raw URL,
or a filesystem path; unresolvable items are skipped at execution time.`,
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name> <item>...",
	Short: "Add a group to the catalog",
	Example: `  fastaccess group add Musica Spotify https://radio.example.com
  fastaccess group add Trabajo Editor Slack /home/d/notes.md`,
	Args: cobra.MinimumNArgs(2),
	RunE: runGroupAdd,
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a group from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupRemove,
}

func init() {
	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupRemoveCmd)
	rootCmd.AddCommand(groupCmd)
}

func runGroupAdd(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	added, err := store.AddGroup(catalog.Group{Name: args[0], Items: args[1:]})
	if err != nil {
		return err
	}
	fmt.Printf("added group %q with %d item(s)\n", added.Name, len(added.Items))
	if added.Name != args[0] {
		fmt.Printf("note: %q was taken, stored as %q\n", args[0], added.Name)
	}
	return nil
}

func runGroupRemove(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	if err := store.RemoveGroup(args[0]); err != nil {
		return err
	}
	fmt.Printf("removed group %q\n", args[0])
	return nil
}
