package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
)

// itemFlags are the activity fields shared by add and edit.
type itemFlags struct {
	time     string
	typ      string
	cost     float64
	location string
	notes    string
	image    string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.time, "time", "t", "", "Start time, HH:MM (24h)")
	cmd.Flags().StringVar(&f.typ, "type", string(domain.ItemActivity), "One of travel, stay, activity, food")
	cmd.Flags().Float64VarP(&f.cost, "cost", "c", 0, "Cost in the trip currency")
	cmd.Flags().StringVarP(&f.location, "location", "l", "", "Where it happens")
	cmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
	cmd.Flags().StringVar(&f.image, "image", "", "Image URL")
}

func newAddCmd(app *App) *cobra.Command {
	var f itemFlags
	var day int
	cmd := &cobra.Command{
		Use:   "add <activity>",
		Short: "Add an activity to the selected day",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			if cmd.Flags().Changed("day") {
				if err := s.SelectDay(day); err != nil {
					return err
				}
			}

			in := domain.ActivityInput{
				Time:     f.time,
				Activity: strings.Join(args, " "),
				Type:     domain.ItemType(f.typ),
				Cost:     f.cost,
				Location: f.location,
				Notes:    f.notes,
				Image:    f.image,
			}
			// The store refuses invalid input silently; check first so the
			// user sees why.
			if _, err := itinerary.NormalizeInput(in); err != nil {
				return err
			}
			item, ok := s.AddActivity(in)
			if !ok {
				return fmt.Errorf("%w: activity refused", domain.ErrValidation)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s to day %d: %s %s\n", shortID(item.ID), item.Day, item.Time, item.Activity)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVarP(&day, "day", "d", 0, "Day to add to (default: the selected day)")
	_ = cmd.MarkFlagRequired("time")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newEditCmd(app *App) *cobra.Command {
	var f itemFlags
	cmd := &cobra.Command{
		Use:   "edit <item-id> [activity]",
		Short: "Change fields of an activity; unset flags keep their value",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			item, err := resolveItem(s, args[0])
			if err != nil {
				return err
			}

			in := domain.ActivityInput{
				Time: item.Time, Activity: item.Activity, Type: item.Type, Cost: item.Cost,
				Location: item.Location, Notes: item.Notes, Image: item.Image,
			}
			if len(args) > 1 {
				in.Activity = strings.Join(args[1:], " ")
			}
			flags := cmd.Flags()
			if flags.Changed("time") {
				in.Time = f.time
			}
			if flags.Changed("type") {
				in.Type = domain.ItemType(f.typ)
			}
			if flags.Changed("cost") {
				in.Cost = f.cost
			}
			if flags.Changed("location") {
				in.Location = f.location
			}
			if flags.Changed("notes") {
				in.Notes = f.notes
			}
			if flags.Changed("image") {
				in.Image = f.image
			}

			if _, err := itinerary.NormalizeInput(in); err != nil {
				return err
			}
			if !s.EditActivity(item.ID, in) {
				return fmt.Errorf("%w: edit refused", domain.ErrValidation)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", shortID(item.ID))
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Remove an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			item, err := resolveItem(s, args[0])
			if errors.Is(err, domain.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "nothing to remove")
				return nil
			}
			if err != nil {
				return err
			}
			s.RemoveActivity(item.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s %s\n", shortID(item.ID), item.Activity)
			return nil
		},
	}
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <item-id> <position>",
		Short: "Move an activity to a 1-based position within its day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			item, err := resolveItem(s, args[0])
			if err != nil {
				return err
			}
			pos, err := strconv.Atoi(args[1])
			if err != nil || pos < 1 {
				return fmt.Errorf("%w: position must be a positive integer", domain.ErrValidation)
			}
			if err := s.MoveActivity(item.ID, pos-1); err != nil {
				return err
			}
			return nil
		},
	}
}

func newReorderCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <day> <item-id>...",
		Short: "Set the manual order of every activity on a day",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			day, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("%w: day must be a number", domain.ErrValidation)
			}
			ids := make([]uuid.UUID, 0, len(args)-1)
			for _, ref := range args[1:] {
				item, err := resolveItem(s, ref)
				if err != nil {
					return err
				}
				ids = append(ids, item.ID)
			}
			return s.ReorderDay(day, ids)
		},
	}
}

func newDayCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Add or select trip days",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add",
			Short: "Append a day to the trip and select it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				day := app.Store().AddDay()
				fmt.Fprintf(cmd.OutOrStdout(), "added day %d\n", day)
				return nil
			},
		},
		&cobra.Command{
			Use:   "select <day>",
			Short: "Choose the day new activities are added to",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				day, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("%w: day must be a number", domain.ErrValidation)
				}
				return app.Store().SelectDay(day)
			},
		},
	)
	return cmd
}
