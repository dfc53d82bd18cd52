package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	sequencing "sequent.dev/internal/services/sequencing/domain"
)

// EventAddHandler appends an operator-authored event.
func EventAddHandler(service *sequencing.Service) mcp.ToolHandlerFor[EventAddInput, EventAddResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventAddInput) (*mcp.CallToolResult, EventAddResult, error) {
		if service == nil {
			return nil, EventAddResult{}, fmt.Errorf("sequencing service is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, EventAddResult{}, fmt.Errorf("participant_id is required")
		}
		if strings.TrimSpace(input.Kind) == "" {
			return nil, EventAddResult{}, fmt.Errorf("kind is required")
		}

		event, err := service.AddEvent(ctx, sequencing.AddEventInput{
			ParticipantID:  input.ParticipantID,
			Kind:           input.Kind,
			Description:    input.Description,
			RequiresAction: input.RequiresAction,
			ActionLabel:    input.ActionLabel,
		})
		if err != nil {
			return nil, EventAddResult{}, fmt.Errorf("add event: %w", err)
		}
		return nil, EventAddResult{Event: eventView(event)}, nil
	}
}

// EventDismissHandler clears an event's requires-action flag.
func EventDismissHandler(service *sequencing.Service) mcp.ToolHandlerFor[EventDismissInput, EventDismissResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventDismissInput) (*mcp.CallToolResult, EventDismissResult, error) {
		if service == nil {
			return nil, EventDismissResult{}, fmt.Errorf("sequencing service is not configured")
		}
		if strings.TrimSpace(input.EventID) == "" {
			return nil, EventDismissResult{}, fmt.Errorf("event_id is required")
		}

		event, err := service.DismissEvent(ctx, input.EventID)
		if err != nil {
			return nil, EventDismissResult{}, fmt.Errorf("dismiss event: %w", err)
		}
		return nil, EventDismissResult{Event: eventView(event)}, nil
	}
}

// EventListHandler pages through the automation log.
func EventListHandler(service *sequencing.Service) mcp.ToolHandlerFor[EventListInput, EventListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventListInput) (*mcp.CallToolResult, EventListResult, error) {
		if service == nil {
			return nil, EventListResult{}, fmt.Errorf("sequencing service is not configured")
		}

		page, err := service.ListEvents(ctx, sequencing.EventQuery{
			Filter:    input.Filter,
			PageSize:  input.PageSize,
			PageToken: input.PageToken,
		})
		if err != nil {
			return nil, EventListResult{}, fmt.Errorf("list events: %w", err)
		}

		result := EventListResult{
			Events:        make([]EventView, 0, len(page.Events)),
			NextPageToken: page.NextPageToken,
		}
		for _, event := range page.Events {
			result.Events = append(result.Events, eventView(event))
		}
		return nil, result, nil
	}
}

// ActionsPendingHandler lists events still awaiting an operator.
func ActionsPendingHandler(service *sequencing.Service) mcp.ToolHandlerFor[ActionsPendingInput, ActionsPendingResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ActionsPendingInput) (*mcp.CallToolResult, ActionsPendingResult, error) {
		if service == nil {
			return nil, ActionsPendingResult{}, fmt.Errorf("sequencing service is not configured")
		}

		pending, err := service.PendingActions(ctx)
		if err != nil {
			return nil, ActionsPendingResult{}, fmt.Errorf("list pending actions: %w", err)
		}

		result := ActionsPendingResult{Actions: make([]EventView, 0, len(pending))}
		for _, event := range pending {
			result.Actions = append(result.Actions, eventView(event))
		}
		result.Count = len(result.Actions)
		return nil, result, nil
	}
}
