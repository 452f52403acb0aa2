package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/fastaccess/internal/executor"
	"github.com/dmorales/fastaccess/internal/resolve"
)

var openCmd = &cobra.Command{
	Use:   "open <phrase>...",
	Short: "Resolve a phrase and open the match",
	Long: `Resolve a phrase against the catalog exactly like a voice utterance
and open the matched command or group. Useful for trying out what a spoken
phrase would do, filler words and fuzzy matching included.`,
	Example: `  fastaccess open spotify
  fastaccess open abre el navegador`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	store, err := openCatalog()
	if err != nil {
		return err
	}
	snap := store.Snapshot()

	fillers := cfg.Voice.FillerWords
	if len(fillers) == 0 {
		fillers = resolve.DefaultFillerWords
	}
	resolver := resolve.NewResolver(fillers,
		resolve.WithSimilarityThreshold(cfg.Voice.MatchThreshold))

	phrase := strings.Join(args, " ")
	match, ok := resolver.Resolve(phrase, snap.CommandNames, snap.GroupNames)
	if !ok {
		return fmt.Errorf("nothing in the catalog matches %q", phrase)
	}

	exec := executor.New(executor.OSOpener{})
	switch match.Kind {
	case resolve.KindGroup:
		g, _ := snap.Group(match.Name)
		opened, err := exec.RunGroup(cmd.Context(), snap, g)
		if err != nil {
			return err
		}
		fmt.Printf("opened group %q (%d item(s))\n", g.Name, opened)
	default:
		c, _ := snap.Command(match.Name)
		if err := exec.RunCommand(cmd.Context(), c); err != nil {
			return err
		}
		fmt.Printf("opened %q -> %s\n", c.Name, c.Action)
	}
	return nil
}
