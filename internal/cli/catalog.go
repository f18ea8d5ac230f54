package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"transitboard/internal/app"
	"transitboard/internal/catalog"
)

func NewCatalogCmd(a *CtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Work with station catalogs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check [path]",
		Short: "Validate a catalog and summarize it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.config()
			if len(args) == 1 {
				cfg.Catalog = args[0]
			}
			cat, err := app.LoadCatalog(cfg, a.logger())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "station: %s (%.4f, %.4f)\n", cat.Station.Name, cat.Station.Lat, cat.Station.Lon)
			summarize(w, "trains", cat.Trains)
			summarize(w, "buses", cat.Buses)
			fmt.Fprintln(w, "ok")
			return nil
		},
	})
	return cmd
}

func summarize(w io.Writer, name string, f catalog.Feed) {
	fmt.Fprintf(w, "%s: targets=%v stops=%d routes=%d run_rules=%d\n",
		name, f.Targets().IDs(), len(f.Stops), len(f.Routes), len(f.RunRules))
}
