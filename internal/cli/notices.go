package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func NewNoticesCmd(a *CtlApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notices",
		Short: "Inspect building notices",
	}
	cmd.AddCommand(newNoticesListCmd(a))
	return cmd
}

func newNoticesListCmd(a *CtlApp) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List notices currently shown on the board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := a.build()
			if err != nil {
				return err
			}
			if err := app.OpenStore(); err != nil {
				return err
			}
			defer app.Close()

			ns, err := app.Notices.Active(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(ns) == 0 {
				fmt.Fprintln(w, "No active notices")
				return nil
			}
			for _, n := range ns {
				fmt.Fprintf(w, "[%s] %s  %s\n", n.Priority, n.Title, n.ID)
				if n.ExpiresAt != nil {
					fmt.Fprintf(w, "    expires %s\n", n.ExpiresAt.Local().Format(time.RFC1123))
				}
			}
			return nil
		},
	}
}
