package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"calterm/internal/calendar"
)

type listOptions struct {
	Month    string
	Search   string
	Category string
}

func addList(topLevel *cobra.Command) {
	lo := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "print the events of a month",
		Example: `
calterm list
calterm list --month 2024-12 --search jon
calterm list --category work
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context())
			if err != nil {
				return err
			}
			defer s.Close()

			month := s.cfg.StartMonth(time.Now())
			if lo.Month != "" {
				if month, err = calendar.ParseMonth(lo.Month); err != nil {
					return fmt.Errorf("--month: %w", err)
				}
			}
			filtered := calendar.FilterEvents(s.store.Events().Get(), lo.Search, lo.Category)
			printMonth(cmd.OutOrStdout(), s.store, month, filtered)
			return nil
		},
	}

	cmd.Flags().StringVar(&lo.Month, "month", "", "month to print as YYYY-MM (default: current month)")
	cmd.Flags().StringVar(&lo.Search, "search", "", "only days with an event whose title or time contains this text")
	cmd.Flags().StringVar(&lo.Category, "category", calendar.AllCategories, "only days with an event in this category")

	topLevel.AddCommand(cmd)
}

var categoryColors = map[string]color.Attribute{
	"blue":   color.FgHiBlue,
	"green":  color.FgHiGreen,
	"pink":   color.FgHiMagenta,
	"purple": color.FgMagenta,
	"orange": color.FgYellow,
}

func printMonth(w io.Writer, store *calendar.Store, month calendar.Month, filtered calendar.EventsIndex) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint)

	_, _ = fmt.Fprintln(w, title.Sprint(month.String()))
	if note := store.MonthNotes(month.Key()); note != "" {
		_, _ = fmt.Fprintln(w, faint.Sprint(note))
	}
	_, _ = fmt.Fprintln(w, "")

	var days []string
	for key := range filtered {
		if month.Contains(key) {
			days = append(days, key)
		}
	}
	if len(days) == 0 {
		_, _ = fmt.Fprintln(w, faint.Sprint(" none"))
		return
	}
	sort.Strings(days)

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 48
	tbl.Wrap = true
	tbl.AddRow(bold.Sprint("DATE"), bold.Sprint("TIME"), bold.Sprint("TITLE"), bold.Sprint("CATEGORY"), bold.Sprint("NOTES"))
	for _, day := range days {
		for i, ev := range filtered[day] {
			date := day
			if i > 0 {
				date = ""
			}
			name := ev.Category
			if c, ok := store.Category(ev.Category); ok {
				name = c.Name
			}
			if attr, ok := categoryColors[ev.Color]; ok {
				name = color.New(attr).Sprint(name)
			}
			tbl.AddRow(date, ev.Time, ev.Title, name, ev.Notes)
		}
		if note := store.Notes(day); note != "" {
			tbl.AddRow("", "", faint.Sprint("note: "+note), "", "")
		}
	}
	_, _ = fmt.Fprintln(w, tbl)
}
