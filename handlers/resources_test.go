// ABOUTME: Tests for MCP resources and prompts
// ABOUTME: Checks lead and follow-up JSON resources and the follow-up prompts
package handlers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/leadflow/models"
)

func readResource(t *testing.T, h *ResourceHandlers, uri string) string {
	t.Helper()
	result, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, uri, result.Contents[0].URI)
	return result.Contents[0].Text
}

func TestFollowUpsResource(t *testing.T) {
	store := setupTestStore(t)
	createLeadNote(t, store, "Acme", "2024-03-20")
	createLeadNote(t, store, "Globex", "2024-03-10")
	createLeadNote(t, store, "Initech", "")
	h := NewResourceHandlers(testUser, store)

	var followUps []models.FollowUp
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, followUpsURI)), &followUps))
	require.Len(t, followUps, 2)
	assert.Equal(t, "Globex", followUps[0].LeadName)
	assert.Equal(t, "Acme", followUps[1].LeadName)
}

func TestLeadResources(t *testing.T) {
	store := setupTestStore(t)
	lead, _ := createLeadNote(t, store, "Acme", "")
	h := NewResourceHandlers(testUser, store)

	var leads []models.Lead
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, leadsURI)), &leads))
	require.Len(t, leads, 1)

	var one models.Lead
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, leadsURI+"/"+lead.ID.String())), &one))
	assert.Equal(t, "Acme", one.Name)
}

func TestResourcesOnlyShowOwnLeads(t *testing.T) {
	store := setupTestStore(t)
	createLeadNote(t, store, "Acme", "2024-03-20")
	theirs, _ := createLeadNoteFor(t, store, "someone-else", "Globex", "2024-03-10")
	h := NewResourceHandlers(testUser, store)

	var leads []models.Lead
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, leadsURI)), &leads))
	require.Len(t, leads, 1)
	assert.Equal(t, "Acme", leads[0].Name)

	var followUps []models.FollowUp
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, followUpsURI)), &followUps))
	require.Len(t, followUps, 1)
	assert.Equal(t, "Acme", followUps[0].LeadName)

	uri := leadsURI + "/" + theirs.ID.String()
	_, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	assert.ErrorIs(t, err, models.ErrLeadNotFound)

	_, err = getPrompt(NewPromptHandlers(testUser, store), "schedule-follow-up", map[string]string{"lead_id": theirs.ID.String()})
	assert.ErrorIs(t, err, models.ErrLeadNotFound)
}

func TestReadResourceRejectsUnknownURIs(t *testing.T) {
	h := NewResourceHandlers(testUser, setupTestStore(t))

	for _, uri := range []string{"crm://contacts", "leadflow://deals"} {
		_, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
		assert.Error(t, err, uri)
	}
}

func getPrompt(h *PromptHandlers, name string, args map[string]string) (*mcp.GetPromptResult, error) {
	return h.GetPrompt(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: name, Arguments: args}})
}

func promptText(t *testing.T, result *mcp.GetPromptResult) string {
	t.Helper()
	require.Len(t, result.Messages, 1)
	text, ok := result.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestFollowUpReviewPrompt(t *testing.T) {
	store := setupTestStore(t)
	createLeadNote(t, store, "Acme", "2024-03-20")
	createLeadNote(t, store, "Globex", "2024-03-10")
	h := NewPromptHandlers(testUser, store)
	h.now = func() time.Time { return time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC) }

	result, err := getPrompt(h, "follow-up-review", nil)
	require.NoError(t, err)

	text := promptText(t, result)
	assert.Contains(t, text, "Overdue:\n- 2024-03-10: Globex")
	assert.Contains(t, text, "Upcoming:\n- 2024-03-20: Acme")
	assert.Contains(t, text, "[not on calendar]")
}

func TestScheduleFollowUpPrompt(t *testing.T) {
	store := setupTestStore(t)
	lead, _ := createLeadNote(t, store, "Acme", "")
	h := NewPromptHandlers(testUser, store)

	result, err := getPrompt(h, "schedule-follow-up", map[string]string{"lead_id": lead.ID.String(), "reason": "pricing"})
	require.NoError(t, err)
	text := promptText(t, result)
	assert.Contains(t, text, "Follow-up: Acme")
	assert.Contains(t, text, "Reason: pricing")
	assert.Contains(t, text, "(Acme Inc)")

	_, err = getPrompt(h, "schedule-follow-up", nil)
	assert.Error(t, err)

	_, err = getPrompt(h, "deal-analysis", nil)
	assert.Error(t, err)
}
