// ABOUTME: Lead and note CLI commands
// ABOUTME: Adds leads and notes, mirroring follow-up dates to the connected calendar
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/harperreed/leadflow/models"
	"github.com/harperreed/leadflow/sync"
)

// LeadAddCommand creates a lead.
func LeadAddCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	name := fs.String("name", "", "Lead name (required)")
	email := fs.String("email", "", "Email address")
	company := fs.String("company", "", "Company name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" {
		return errors.New("--name is required")
	}

	lead := &models.Lead{UserID: app.Config.User, Name: *name, Email: *email, Company: *company}
	if err := app.Store.CreateLead(ctx, lead); err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Created lead: %s (ID: %s)\n", lead.Name, lead.ID)
	return nil
}

// LeadListCommand lists the user's leads by name.
func LeadListCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("limit", 50, "Maximum number of leads to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	leads, err := app.Store.ListLeads(ctx, app.Config.User, *limit)
	if err != nil {
		return fmt.Errorf("failed to list leads: %w", err)
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tEMAIL")
	_, _ = fmt.Fprintln(w, "--\t----\t-------\t-----")
	for _, lead := range leads {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", lead.ID, lead.Name, lead.Company, lead.Email)
	}
	return w.Flush()
}

// NoteAddCommand saves a note on a lead. A --date makes it a follow-up and
// creates its calendar event when the user is connected.
func NoteAddCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	leadID := fs.String("lead", "", "Lead ID (required)")
	content := fs.String("content", "", "Note text (required)")
	date := fs.String("date", "", "Follow-up date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	id, err := uuid.Parse(*leadID)
	if err != nil {
		return fmt.Errorf("invalid lead ID: %w", err)
	}
	if *content == "" {
		return errors.New("--content is required")
	}

	note := &models.Note{LeadID: id, Content: *content}
	if *date != "" {
		if err := app.requireOAuth(); err != nil {
			return err
		}
		note.FollowUpDate = date
	}

	result, err := app.followUps().CreateNote(ctx, app.Config.User, note)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Saved note (ID: %s)\n", result.Note.ID)
	printCalendarOutcome(app, result)
	return nil
}

func printCalendarOutcome(app *App, result *sync.NoteResult) {
	switch result.Calendar {
	case sync.CalendarSynced:
		_, _ = fmt.Fprintf(app.Out, "✓ Added to Google Calendar (event: %s)\n", result.Note.RemoteEventID())
	case sync.CalendarNotConnected:
		_, _ = fmt.Fprintln(app.Out, "  Google Calendar not connected; follow-up saved locally only")
	case sync.CalendarFailed:
		_, _ = fmt.Fprintf(app.Out, "⚠ %s\n", result.Warning)
	}
}
