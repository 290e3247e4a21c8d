package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/massimiliano76/nuclide/config"
)

var (
	cfgFile   string
	workspace string

	globalCfg config.Config
)

// Execute is the entry point for the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd wires the cobra tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "nuclide",
		Short:         "Blame gutter and diagnostics event toolkit",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if workspace == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				workspace = wd
			}
			if cfgFile == "" {
				cfgFile = config.DefaultPath(workspace)
			}
			cfg, err := config.Load(cfgFile)
			if errors.Is(err, os.ErrNotExist) {
				cfg = config.Default()
			} else if err != nil {
				return err
			}
			globalCfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", "", "Workspace directory")
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to nuclide config file")

	root.AddCommand(
		newBlameCmd(),
		newEventsCmd(),
		newConfigCmd(),
	)
	return root
}

// cliLogger builds the logger commands share, writing to the command's
// error stream so stdout stays clean for command output.
func cliLogger(cmd *cobra.Command) *log.Logger {
	return log.New(cmd.ErrOrStderr(), "nuclide: ", log.LstdFlags)
}
