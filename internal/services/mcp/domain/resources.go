package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	sequencing "sequent.dev/internal/services/sequencing/domain"
)

// Resource URIs. Both resources are notified on every committed mutation
// through the store-changed signal.
const (
	// ParticipantsResourceURI addresses the roster snapshot.
	ParticipantsResourceURI = "sequent://participants"
	// PendingEventsResourceURI addresses the pending-action listing.
	PendingEventsResourceURI = "sequent://events/pending"
)

// ParticipantsPayload represents the MCP resource payload for the roster.
type ParticipantsPayload struct {
	Participants []ParticipantSummary `json:"participants"`
	Count        int                  `json:"count"`
}

// PendingEventsPayload represents the MCP resource payload for pending
// actions.
type PendingEventsPayload struct {
	Actions []EventView `json:"actions"`
	Count   int         `json:"count"`
}

// ParticipantsResource describes the roster snapshot resource.
func ParticipantsResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "participants",
		Title:       "Outreach Roster",
		Description: "Readable roster snapshot in seed order with status, dependency readiness, and draft presence",
		MIMEType:    "application/json",
		URI:         ParticipantsResourceURI,
	}
}

// PendingEventsResource describes the pending-action resource.
func PendingEventsResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "events_pending",
		Title:       "Pending Actions",
		Description: "Readable listing of automation events still awaiting an operator, newest first",
		MIMEType:    "application/json",
		URI:         PendingEventsResourceURI,
	}
}

// ParticipantsResourceHandler serves the roster snapshot resource.
func ParticipantsResourceHandler(service *sequencing.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if service == nil {
			return nil, fmt.Errorf("sequencing service is not configured")
		}

		uri := ParticipantsResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		roster, err := service.Roster(ctx)
		if err != nil {
			return nil, fmt.Errorf("list roster: %w", err)
		}

		byID := sequencing.IndexByID(roster)
		payload := ParticipantsPayload{Participants: []ParticipantSummary{}}
		for _, participant := range roster {
			payload.Participants = append(payload.Participants, ParticipantSummary{
				ID:                 participant.ID,
				Name:               participant.Name,
				Organization:       participant.Organization,
				Phase:              participant.Phase,
				Track:              participant.Track,
				Status:             string(participant.Status),
				Dependencies:       participant.Dependencies,
				DepsMet:            sequencing.DepsMet(byID, participant),
				HasDraft:           participant.Draft != nil,
				LastClassification: string(participant.LastClassification),
				UpdatedAt:          formatTime(participant.UpdatedAt),
			})
		}
		payload.Count = len(payload.Participants)

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal roster: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}

// PendingEventsResourceHandler serves the pending-action resource.
func PendingEventsResourceHandler(service *sequencing.Service) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if service == nil {
			return nil, fmt.Errorf("sequencing service is not configured")
		}

		uri := PendingEventsResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}

		pending, err := service.PendingActions(ctx)
		if err != nil {
			return nil, fmt.Errorf("list pending actions: %w", err)
		}

		payload := PendingEventsPayload{Actions: []EventView{}}
		for _, event := range pending {
			payload.Actions = append(payload.Actions, eventView(event))
		}
		payload.Count = len(payload.Actions)

		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal pending actions: %w", err)
		}

		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
