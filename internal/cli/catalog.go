package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"siteforge/internal/catalog"
	"siteforge/internal/format"
)

func newCatalogCmd(loadCfg func() (Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the catalog of named site snapshots",
	}

	cmd.AddCommand(newCatalogSaveCmd(loadCfg))
	cmd.AddCommand(newCatalogLoadCmd(loadCfg))
	cmd.AddCommand(newCatalogListCmd(loadCfg))
	cmd.AddCommand(newCatalogDeleteCmd(loadCfg))

	return cmd
}

// openCatalog selects the backend from config: Postgres when a DSN is set,
// a local SQLite file otherwise.
func openCatalog(cmd *cobra.Command, cfg Config) (catalog.Store, error) {
	if cfg.Catalog.DSN != "" {
		return catalog.NewPostgres(cmd.Context(), cfg.Catalog.DSN)
	}
	return catalog.NewSQLite(cfg.Catalog.Path)
}

func newCatalogSaveCmd(loadCfg func() (Config, error)) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "save [site file]",
		Short: "Store a site document in the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			site, err := loadSiteFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = site.Name
			}
			store, err := openCatalog(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			if err := store.Save(cmd.Context(), name, site); err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Infof("saved %s as %q", args[0], name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "snapshot name (default: site name)")

	return cmd
}

func newCatalogLoadCmd(loadCfg func() (Config, error)) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "load [name]",
		Short: "Write a cataloged snapshot back out as a site file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			site, err := store.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := format.Export(site, format.TargetSite)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0] + format.TargetSite.Extension()
			}
			if err := os.WriteFile(output, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			loggerFromContext(cmd.Context()).Infof("loaded %q into %s", args[0], output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file path (default: name with .site.json)")

	return cmd
}

func newCatalogListCmd(loadCfg func() (Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cataloged snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			entries, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tUPDATED\tSIZE")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%d\n", e.Name, e.UpdatedAt.Format(time.RFC3339), e.Size)
			}
			return w.Flush()
		},
	}
}

func newCatalogDeleteCmd(loadCfg func() (Config, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Remove a snapshot from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCfg()
			if err != nil {
				return err
			}
			store, err := openCatalog(cmd, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			removed, err := store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return catalog.ErrNotFound
			}
			loggerFromContext(cmd.Context()).Infof("deleted %q", args[0])
			return nil
		},
	}
}
