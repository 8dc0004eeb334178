package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:         "history",
		Short:       "List earlier versions of the working trip",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{readOnly: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := app.Cache.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				title := e.Title
				if title == "" {
					title = "Untitled trip"
				}
				fmt.Fprintf(out, "%s  %-30s %3d items  %s\n", e.ID, title, e.Items, mutedStyle.Render(humanize.Time(e.SavedAt)))
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "How many versions to list")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <version-id>",
		Short: "Make an earlier version from history the working trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := app.Cache.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.Store().Restore(d)
			fmt.Fprintf(cmd.OutOrStdout(), "restored %q\n", d.Title)
			return nil
		},
	}
}
