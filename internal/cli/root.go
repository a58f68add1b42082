// Package cli implements the siteforge command-line interface.
//
// Commands load persisted site documents, exchange them with external
// formats, run the consistency rules, and manage the snapshot catalog.
// All commands support --verbose (-v) for debug-level logging; loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  string
	date    string
)

const defaultConfigFile = "siteforge.toml"

// SetVersion sets the version information displayed by --version. Values are
// injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the siteforge CLI and returns an error if any command fails.
func Execute() error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "siteforge",
		Short:        "Siteforge edits and converts robot site maps",
		Long:         `Siteforge manages robot site descriptions: levels, anchors, lanes, walls, and lifts. It validates sites, converts legacy building maps, exports simulation formats, and keeps a catalog of named snapshots.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("siteforge %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigFile, "path to TOML config file")

	loadCfg := func() (Config, error) {
		explicit := root.PersistentFlags().Changed("config")
		return loadConfig(configPath, explicit)
	}

	root.AddCommand(newExportCmd())
	root.AddCommand(newValidateCmd(loadCfg))
	root.AddCommand(newConvertCmd())
	root.AddCommand(newCatalogCmd(loadCfg))

	return root.ExecuteContext(context.Background())
}
