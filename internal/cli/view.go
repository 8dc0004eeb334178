package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kendala/planner/internal/domain"
	"github.com/kendala/planner/internal/itinerary"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	dayStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true)

	selectedDayStyle = dayStyle.
				Foreground(lipgloss.Color("10"))

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14")).
			Width(6)

	typeStyle = lipgloss.NewStyle().
			Width(9)

	mutedStyle = lipgloss.NewStyle().
			Faint(true)

	costStyle = lipgloss.NewStyle().
			Align(lipgloss.Right).
			Width(10)
)

// formatCost renders a cost with thousands separators and two decimals.
func formatCost(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func dayLabel(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

func newShowCmd(app *App) *cobra.Command {
	var sorted bool
	var onlyDay int
	cmd := &cobra.Command{
		Use:         "show",
		Short:       "Print the working trip day by day",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{readOnly: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Store()
			if onlyDay != 0 && (onlyDay < 1 || onlyDay > s.DayCount()) {
				return fmt.Errorf("%w: day %d outside 1..%d", domain.ErrValidation, onlyDay, s.DayCount())
			}
			renderTrip(cmd.OutOrStdout(), s, sorted, onlyDay)
			return nil
		},
	}
	cmd.Flags().BoolVar(&sorted, "sorted", true, "Order each day by time; --sorted=false shows the manual order")
	cmd.Flags().IntVarP(&onlyDay, "day", "d", 0, "Show a single day")
	return cmd
}

func renderTrip(w io.Writer, s *itinerary.Store, sorted bool, onlyDay int) {
	title := s.Title()
	if title == "" {
		title = "Untitled trip"
	}
	header := titleStyle.Render(title)
	if dest := s.Destination(); dest != "" {
		header += mutedStyle.Render(" · " + dest)
	}
	if s.Dirty() {
		header += mutedStyle.Render(" (unsaved)")
	}
	fmt.Fprintln(w, header)

	selected := s.SelectedDay()
	for day := 1; day <= s.DayCount(); day++ {
		if onlyDay != 0 && day != onlyDay {
			continue
		}
		style := dayStyle
		if day == selected {
			style = selectedDayStyle
		}
		fmt.Fprintf(w, "\n%s  %s\n", style.Render(fmt.Sprintf("Day %d", day)),
			mutedStyle.Render(formatCost(s.DayCost(day))))

		items := s.DayItems(day)
		if sorted {
			items = s.ItemsForDay(day)
		}
		if len(items) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("  nothing planned"))
			continue
		}
		for _, it := range items {
			fmt.Fprintln(w, renderItem(it))
		}
	}

	fmt.Fprintf(w, "\nTotal %s\n", formatCost(s.TotalCost()))
}

func renderItem(it domain.Item) string {
	line := strings.Join([]string{
		"  " + mutedStyle.Render(shortID(it.ID)),
		timeStyle.Render(it.Time),
		typeStyle.Render(string(it.Type)),
		it.Activity,
		mutedStyle.Render("@ " + it.Location),
		costStyle.Render(formatCost(it.Cost)),
	}, " ")
	if it.Notes != "" {
		line += "\n" + strings.Repeat(" ", 11) + mutedStyle.Render(it.Notes)
	}
	return line
}

func newTotalCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "total",
		Short:       "Print per-day and trip cost totals",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{readOnly: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Store()
			out := cmd.OutOrStdout()
			for day := 1; day <= s.DayCount(); day++ {
				fmt.Fprintf(out, "Day %-3d %s\n", day, costStyle.Render(formatCost(s.DayCost(day))))
			}
			fmt.Fprintf(out, "Total   %s\n", costStyle.Render(formatCost(s.TotalCost())))
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:         "export",
		Short:       "Write the working trip as CSV",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{readOnly: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := itinerary.ExportRows(app.Store().Trip())

			if outPath == "" || outPath == "-" {
				return itinerary.WriteCSV(cmd.OutOrStdout(), rows)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create %s: %w", outPath, err)
			}
			if err := itinerary.WriteCSV(f, rows); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(rows), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
