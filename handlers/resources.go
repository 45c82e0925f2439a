// ABOUTME: MCP resource handlers for exposing follow-up data
// ABOUTME: Provides read-only access to leads and scheduled follow-ups via leadflow:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadflow/models"
)

const (
	leadsURI     = "leadflow://leads"
	followUpsURI = "leadflow://follow-ups"

	resourceLimit = 1000
)

// ResourceHandlers only exposes leads owned by userID.
type ResourceHandlers struct {
	userID string
	store  Store
}

func NewResourceHandlers(userID string, store Store) *ResourceHandlers {
	return &ResourceHandlers{userID: userID, store: store}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "leadflow://") {
		return nil, fmt.Errorf("invalid URI scheme: expected leadflow://")
	}

	parts := strings.Split(strings.TrimPrefix(uri, "leadflow://"), "/")
	switch parts[0] {
	case "leads":
		if len(parts) == 1 {
			return h.readAllLeads(ctx)
		}
		return h.readLead(ctx, parts[1])
	case "follow-ups":
		return h.readFollowUps(ctx)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func (h *ResourceHandlers) readAllLeads(ctx context.Context) (*mcp.ReadResourceResult, error) {
	leads, err := h.store.ListLeads(ctx, h.userID, resourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return jsonResource(leadsURI, leads)
}

func (h *ResourceHandlers) readLead(ctx context.Context, id string) (*mcp.ReadResourceResult, error) {
	lead, err := h.store.GetLead(ctx, id)
	if err == nil && lead.UserID != h.userID {
		err = models.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead: %w", err)
	}
	return jsonResource(leadsURI+"/"+id, lead)
}

func (h *ResourceHandlers) readFollowUps(ctx context.Context) (*mcp.ReadResourceResult, error) {
	followUps, err := h.store.ListFollowUps(ctx, h.userID, resourceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch follow-ups: %w", err)
	}
	return jsonResource(followUpsURI, followUps)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

// Register adds the resources to server.
func (h *ResourceHandlers) Register(server *mcp.Server) {
	server.AddResource(&mcp.Resource{
		URI:         leadsURI,
		Name:        "leads",
		Description: "All leads",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         followUpsURI,
		Name:        "follow-ups",
		Description: "Notes with a follow-up date, soonest first",
		MIMEType:    "application/json",
	}, h.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: leadsURI + "/{id}",
		Name:        "lead",
		Description: "A single lead by ID",
		MIMEType:    "application/json",
	}, h.ReadResource)
}
