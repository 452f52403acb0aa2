package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog commands and groups",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog()
	if err != nil {
		return err
	}
	snap := store.Snapshot()

	if len(snap.CommandNames) == 0 && len(snap.GroupNames) == 0 {
		fmt.Println("catalog is empty; add a command with \"fastaccess add\"")
		return nil
	}

	if len(snap.CommandNames) > 0 {
		fmt.Printf("Commands (%d):\n", len(snap.CommandNames))
		for _, name := range snap.CommandNames {
			c, _ := snap.Command(name)
			fmt.Printf("  %-20s %-4s %s\n", c.Name, c.Kind, c.Action)
		}
	}
	if len(snap.GroupNames) > 0 {
		fmt.Printf("Groups (%d):\n", len(snap.GroupNames))
		for _, name := range snap.GroupNames {
			g, _ := snap.Group(name)
			fmt.Printf("  %-20s %s\n", g.Name, strings.Join(g.Items, ", "))
		}
	}
	return nil
}
