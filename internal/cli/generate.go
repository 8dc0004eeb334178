package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kendala/planner/internal/itinerary"
)

func newGenerateCmd(app *App) *cobra.Command {
	var req itinerary.GenerateRequest
	var force bool
	cmd := &cobra.Command{
		Use:   "generate <suggestions.json>",
		Short: "Lay out a list of suggested activities over the trip days",
		Long: "Reads a JSON array of suggestions ({activity, location, type, cost, duration_min, notes}) " +
			"and replaces the itinerary with them, filling each day from --start to --end in order.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Store()
			if len(s.Itinerary()) > 0 && !force {
				return fmt.Errorf("the working trip already has activities; pass --force to replace them")
			}

			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			if err := json.Unmarshal(b, &req.Suggestions); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			if req.Days == 0 {
				req.Days = s.DayCount()
			}

			res, err := s.AutoGenerate(req)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "placed %d activities over %s\n", len(res.Items), dayLabel(res.DaysUsed))
			for _, sg := range res.Unplaced {
				fmt.Fprintf(out, "  did not fit: %s\n", sg.Activity)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&req.Days, "days", 0, "Days to fill (default: the trip's day count)")
	cmd.Flags().StringVar(&req.DayStart, "start", itinerary.DefaultDayStart, "First start time each day")
	cmd.Flags().StringVar(&req.DayEnd, "end", itinerary.DefaultDayEnd, "Latest end time each day")
	cmd.Flags().IntVar(&req.GapMin, "gap", itinerary.DefaultGapMin, "Minutes between activities")
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing activities")
	return cmd
}
