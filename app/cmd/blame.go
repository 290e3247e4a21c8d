package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/massimiliano76/nuclide/blame"
	"github.com/massimiliano76/nuclide/blame/cache"
	"github.com/massimiliano76/nuclide/blame/gitblame"
	"github.com/massimiliano76/nuclide/tui"
)

// newBlameCmd opens a file in the terminal viewer with the blame gutter
// attached. Blame data comes from git, optionally fronted by the SQLite
// snapshot cache when the config names a cache file.
func newBlameCmd() *cobra.Command {
	var noCache bool

	cmd := &cobra.Command{
		Use:   "blame <file>",
		Short: "View a file with per-line blame annotations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}
			logger := cliLogger(cmd)

			git := gitblame.New(filepath.Dir(path))
			var provider blame.Provider = git
			if globalCfg.CacheDB != "" && !globalCfg.DisableCache && !noCache {
				store, err := cache.NewSQLiteStore(globalCfg.CacheDB)
				if err != nil {
					return fmt.Errorf("open blame cache: %w", err)
				}
				defer store.Close()
				provider = blame.NewCachedProvider(git, store, git.Head, logger)
			}

			return tui.Run(cmd.Context(), path, provider, globalCfg)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the blame snapshot cache")
	return cmd
}
