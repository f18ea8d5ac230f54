// Package cli implements transitctl, an operator tool for inspecting feeds,
// boards, notices and catalogs without running the server.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"transitboard/internal/app"
	"transitboard/internal/config"
)

// CtlApp holds state shared by all subcommands.
type CtlApp struct {
	CatalogPath string
	Verbose     bool

	// loadConfig is swapped in tests.
	loadConfig func() *config.Config
}

func Execute() error {
	return NewRootCmd(&CtlApp{loadConfig: config.Load}).Execute()
}

func NewRootCmd(a *CtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "transitctl",
		Short:         "Inspect transit feeds, boards and notices",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(
		&a.CatalogPath,
		"catalog",
		"",
		"Path to station catalog (.toml or .yaml); overrides TRANSIT_CATALOG",
	)
	cmd.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "Log at debug level to stderr")

	cmd.AddCommand(NewBoardCmd(a, "trains"))
	cmd.AddCommand(NewBoardCmd(a, "buses"))
	cmd.AddCommand(NewDumpCmd(a))
	cmd.AddCommand(NewNoticesCmd(a))
	cmd.AddCommand(NewCatalogCmd(a))

	return cmd
}

func (a *CtlApp) config() *config.Config {
	load := a.loadConfig
	if load == nil {
		load = config.Load
	}
	cfg := load()
	if a.CatalogPath != "" {
		cfg.Catalog = a.CatalogPath
	}
	return cfg
}

func (a *CtlApp) logger() *slog.Logger {
	if !a.Verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (a *CtlApp) build() (*app.App, error) {
	return app.New(a.config(), a.logger())
}
