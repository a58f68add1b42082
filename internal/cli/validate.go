package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"siteforge/internal/core"
)

func newValidateCmd(loadCfg func() (Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [site file]",
		Short: "Run the consistency rules against a site document",
		Long:  `Validate loads a site document and reports every rule finding. Findings are advisory; a site that parses is never rejected here.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			return runValidate(cmd, args[0], cfg)
		},
	}
}

func runValidate(cmd *cobra.Command, input string, cfg Config) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	site, err := loadSiteFile(input)
	if err != nil {
		return err
	}

	store := core.NewSiteStore(site.Name, core.DefaultRulesEngine(cfg.Rules))
	result, err := store.Restore(ctx, site)
	if err != nil {
		return err
	}

	logger.Debugf("validated %s: %d levels, %d anchors, %d edges, %d lifts",
		site.Name, len(site.Levels), len(site.Anchors), len(site.Edges), len(site.Lifts))

	if len(result.Diagnostics) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "ok: no findings")
		return nil
	}
	for _, d := range result.Diagnostics {
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s %d\t%s\n", d.Severity, d.Rule, d.Entity, d.EntityID, d.Message)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d finding(s)\n", len(result.Diagnostics))
	return nil
}
