package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"siteforge/internal/blob"
	"siteforge/internal/exporter"
	"siteforge/internal/format"
	"siteforge/pkg/domain"
)

type exportOpts struct {
	output  string // output file path; target inferred from its extension
	target  string // explicit target overriding the extension
	blobKey string // when set, also store the artifact in the configured blob store
}

func newExportCmd() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [site file]",
		Short: "Export a site document to site, urdf, or sdf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file path")
	cmd.Flags().StringVarP(&opts.target, "format", "f", "", "target format: site, urdf, or sdf")
	cmd.Flags().StringVar(&opts.blobKey, "blob-key", "", "also store the artifact in the blob store under this key")

	return cmd
}

func runExport(cmd *cobra.Command, input string, opts *exportOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	site, err := loadSiteFile(input)
	if err != nil {
		return err
	}

	target := format.TargetSite
	switch {
	case opts.target != "":
		if target, err = format.ParseTarget(opts.target); err != nil {
			return err
		}
	case opts.output != "":
		if target, err = format.TargetForPath(opts.output); err != nil {
			return err
		}
	}

	data, err := format.Export(site, target)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = site.Name + target.Extension()
	}
	if err := os.WriteFile(output, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	logger.Infof("exported %s to %s (%d bytes)", site.Name, output, len(data))

	if opts.blobKey != "" {
		store, err := blob.Open(ctx)
		if err != nil {
			return err
		}
		worker := exporter.NewWorker(store)
		if _, err := worker.Submit(site, target, opts.blobKey); err != nil {
			worker.Close()
			return err
		}
		worker.Close()
		for _, c := range worker.Tick() {
			if c.Err != nil {
				return fmt.Errorf("store artifact %s: %w", c.Key, c.Err)
			}
			logger.Infof("stored %s (%d bytes, %s driver, %s)", c.Key, c.Info.Size, store.Driver(), c.Duration)
		}
	}
	return nil
}

// loadSiteFile reads and validates a persisted site document.
func loadSiteFile(path string) (domain.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Site{}, fmt.Errorf("read %s: %w", path, err)
	}
	return format.ImportSite(data)
}
