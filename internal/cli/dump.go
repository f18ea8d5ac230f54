package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"transitboard/internal/feed"
)

func NewDumpCmd(a *CtlApp) *cobra.Command {
	var (
		feedName string
		file     string
	)
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print a raw GTFS-RT feed as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return err
				}
				raw = b
			} else {
				app, err := a.build()
				if err != nil {
					return err
				}
				b, err := app.Board(feedName)
				if err != nil {
					return err
				}
				raw, err = app.Fetcher.Fetch(cmd.Context(), b.Source())
				if err != nil {
					return fmt.Errorf("fetch %s: %w", feedName, err)
				}
			}
			out, err := feed.DumpJSON(raw)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&feedName, "feed", "trains", "Feed to fetch: trains or buses")
	cmd.Flags().StringVar(&file, "file", "", "Read a saved .pb file instead of fetching")
	return cmd
}
