package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errUnsaved = errors.New("the working trip has unsaved changes; save it first or pass --force")

func newNewCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Discard the working trip and start an empty one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Store()
			if s.Dirty() && !force {
				return errUnsaved
			}
			s.CreateNewTrip()
			fmt.Fprintln(cmd.OutOrStdout(), "started a new trip")
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard unsaved changes")
	return cmd
}

func newTitleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "title <text>",
		Short: "Set the trip title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Store().SetTitle(strings.Join(args, " "))
			return nil
		},
	}
}

func newDestinationCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "destination <text>",
		Short: "Set the destination label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Store().SetDestination(strings.Join(args, " "))
			return nil
		},
	}
}

func newSaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "save",
		Short: "Save the working trip to your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Store()
			created := s.ActiveTripID() == uuid.Nil
			id, err := s.SaveCurrentTrip(cmd.Context())
			if err != nil {
				return describe(err)
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s trip %s\n", verb, id)
			return nil
		},
	}
}

func newTripsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "trips",
		Short: "List your saved trips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Store()
			if err := s.RefreshTrips(cmd.Context()); err != nil {
				return describe(err)
			}
			trips := s.SavedTrips()
			out := cmd.OutOrStdout()
			if len(trips) == 0 {
				fmt.Fprintln(out, "no saved trips")
				return nil
			}
			active := s.ActiveTripID()
			for _, t := range trips {
				marker := " "
				if t.ID == active {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  %-30s %-20s %s  %s\n", marker, shortID(t.ID), t.Title, t.Destination,
					dayLabel(t.DayCount), mutedStyle.Render("updated "+humanize.Time(t.UpdatedAt)))
			}
			return nil
		},
	}
}

func newOpenCmd(app *App) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "open <trip-id>",
		Short: "Load a saved trip as the working trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			if s.Dirty() && !force {
				return errUnsaved
			}
			id, err := resolveTrip(s, args[0])
			if err != nil {
				return err
			}
			if err := s.OpenTrip(cmd.Context(), id); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "opened %q (%s)\n", s.Title(), dayLabel(s.DayCount()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Discard unsaved changes")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <trip-id>",
		Short: "Delete a saved trip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			id, err := resolveTrip(s, args[0])
			if err != nil {
				return err
			}
			wasActive := id == s.ActiveTripID()
			if err := s.DeleteTrip(cmd.Context(), id); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted trip %s\n", id)
			if wasActive {
				fmt.Fprintln(cmd.OutOrStdout(), "it was the working trip; started a new one")
			}
			return nil
		},
	}
}
