package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"siteforge/internal/format"
)

func newConvertCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "convert [building yaml]",
		Short: "Convert a legacy building map to a site document",
		Long:  `Convert reads a legacy building-map YAML file and writes the equivalent site document. Features the site model does not carry, such as per-level lift tables, are dropped and logged.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: input name with .site.json)")

	return cmd
}

func runConvert(cmd *cobra.Command, input, output string) error {
	logger := loggerFromContext(cmd.Context())

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read %s: %w", input, err)
	}
	site, err := format.ImportLegacyBuilding(data)
	if err != nil {
		return err
	}

	out, err := format.Export(site, format.TargetSite)
	if err != nil {
		return err
	}
	if output == "" {
		base := strings.TrimSuffix(input, ".yaml")
		base = strings.TrimSuffix(base, ".yml")
		output = base + format.TargetSite.Extension()
	}
	if err := os.WriteFile(output, out, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Infof("converted %s to %s: %d levels, %d anchors, %d edges",
		input, output, len(site.Levels), len(site.Anchors), len(site.Edges))
	return nil
}
