// ABOUTME: Follow-up tracking CLI commands
// ABOUTME: Lists notes with follow-up dates, flagging overdue ones and those missing from the calendar
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
)

const followUpLimit = 200

// FollowupListCommand lists notes with follow-up dates, soonest first.
func FollowupListCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	overdueOnly := fs.Bool("overdue-only", false, "Show only overdue follow-ups")
	limit := fs.Int("limit", 20, "Maximum number of follow-ups to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	followUps, err := app.Store.ListFollowUps(ctx, app.Config.User, *limit)
	if err != nil {
		return fmt.Errorf("failed to get follow-up list: %w", err)
	}

	today := app.today()
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tLEAD\tNOTE\tCALENDAR")
	_, _ = fmt.Fprintln(w, "----\t----\t----\t--------")

	for _, f := range followUps {
		date := *f.FollowUpDate
		if *overdueOnly && date >= today {
			continue
		}

		indicator := "🟢"
		if date < today {
			indicator = "🔴"
		} else if date == today {
			indicator = "🟡"
		}

		onCalendar := "-"
		if f.RemoteEventID() != "" {
			onCalendar = "✓"
		}

		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\n", indicator, date, f.LeadName, f.Content, onCalendar)
	}

	return w.Flush()
}
