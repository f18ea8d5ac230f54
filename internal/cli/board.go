package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"transitboard/internal/board"
)

func NewBoardCmd(a *CtlApp, kind string) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   kind,
		Short: fmt.Sprintf("Poll the %s feed once and print the board", kind),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := a.build()
			if err != nil {
				return err
			}
			b, err := app.Board(kind)
			if err != nil {
				return err
			}
			env := b.Poll(cmd.Context(), time.Now())
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(env)
			}
			printEnvelope(cmd.OutOrStdout(), env)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the envelope as JSON")
	return cmd
}

func printEnvelope(w io.Writer, env board.Envelope) {
	fmt.Fprintf(w, "%s board", env.Board.Title())
	if env.Station != "" {
		fmt.Fprintf(w, " at %s", env.Station)
	}
	fmt.Fprintf(w, " (live=%t)\n", env.IsLive)
	if env.Error != "" {
		fmt.Fprintln(w, env.Error)
		return
	}
	if env.Note != "" {
		fmt.Fprintln(w, env.Note)
	}
	for _, arr := range env.Arrivals {
		dest := arr.Destination
		if arr.DestinationEstimated {
			dest += "*"
		}
		fmt.Fprintf(w, "%3d min  %-14s %-22s %-10s %s\n",
			arr.MinutesAway, arr.RouteLabel, dest, arr.Status, arr.VehicleOrTripID)
	}
	if env.IsEstimate {
		fmt.Fprintln(w, "* destination estimated")
	}
}
