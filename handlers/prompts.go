// ABOUTME: MCP prompt handlers for follow-up workflows
// ABOUTME: Builds prompts from scheduled follow-ups and a lead's notes
package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadflow/models"
)

type PromptHandlers struct {
	userID string
	store  Store
	now    func() time.Time
}

func NewPromptHandlers(userID string, store Store) *PromptHandlers {
	return &PromptHandlers{userID: userID, store: store, now: time.Now}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "follow-up-review":
		return h.getFollowUpReviewPrompt(ctx)
	case "schedule-follow-up":
		return h.getScheduleFollowUpPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getFollowUpReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	followUps, err := h.store.ListFollowUps(ctx, h.userID, resourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch follow-ups: %w", err)
	}

	today := h.now().Format("2006-01-02")
	var overdue, upcoming strings.Builder
	for _, f := range followUps {
		line := fmt.Sprintf("- %s: %s (%s)", *f.FollowUpDate, f.LeadName, f.Content)
		if f.RemoteEventID() == "" {
			line += " [not on calendar]"
		}
		if *f.FollowUpDate < today {
			overdue.WriteString(line + "\n")
		} else {
			upcoming.WriteString(line + "\n")
		}
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Follow-up review for %s.\n\n", today))
	if overdue.Len() > 0 {
		promptText.WriteString("Overdue:\n" + overdue.String() + "\n")
	}
	if upcoming.Len() > 0 {
		promptText.WriteString("Upcoming:\n" + upcoming.String() + "\n")
	}
	if len(followUps) == 0 {
		promptText.WriteString("No follow-ups are scheduled.\n\n")
	}

	promptText.WriteString("Please:")
	promptText.WriteString("\n1. Prioritize the overdue follow-ups")
	promptText.WriteString("\n2. Use sync_followup for any follow-up not on the calendar")
	promptText.WriteString("\n3. Suggest new dates for anything that should be rescheduled")

	return userPrompt("Review of scheduled follow-ups", promptText.String()), nil
}

func (h *PromptHandlers) getScheduleFollowUpPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	leadID, ok := args["lead_id"]
	if !ok || leadID == "" {
		return nil, fmt.Errorf("lead_id is required")
	}

	lead, err := h.store.GetLead(ctx, leadID)
	if err == nil && lead.UserID != h.userID {
		err = models.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString(fmt.Sprintf("Schedule a follow-up with %s", lead.Name))
	if lead.Company != "" {
		promptText.WriteString(fmt.Sprintf(" (%s)", lead.Company))
	}
	promptText.WriteString(".\n\n")
	if reason := args["reason"]; reason != "" {
		promptText.WriteString(fmt.Sprintf("Reason: %s\n\n", reason))
	}
	promptText.WriteString(fmt.Sprintf("Use create_calendar_event with lead_id %s, a title of the form \"Follow-up: %s\", ", lead.ID, lead.Name))
	promptText.WriteString("and a date in YYYY-MM-DD. Check calendar_status first.")

	return userPrompt(fmt.Sprintf("Schedule a follow-up with %s", lead.Name), promptText.String()), nil
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

// Register adds the prompts to server.
func (h *PromptHandlers) Register(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "follow-up-review",
		Description: "Review overdue and upcoming follow-ups",
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "schedule-follow-up",
		Description: "Plan a calendar follow-up with a lead",
		Arguments: []*mcp.PromptArgument{
			{Name: "lead_id", Description: "Lead ID", Required: true},
			{Name: "reason", Description: "Why the follow-up is needed"},
		},
	}, h.GetPrompt)
}
