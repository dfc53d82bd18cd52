package domain

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	sequencing "sequent.dev/internal/services/sequencing/domain"
)

// EventView represents one automation log record in MCP output.
type EventView struct {
	ID             string `json:"id"`
	Seq            int64  `json:"seq"`
	ParticipantID  string `json:"participant_id"`
	Kind           string `json:"kind"`
	Description    string `json:"description"`
	Timestamp      string `json:"timestamp"`
	RequiresAction bool   `json:"requires_action"`
	ActionLabel    string `json:"action_label,omitempty"`
	DismissedAt    string `json:"dismissed_at,omitempty"`
}

// EventAddInput represents the MCP tool input for appending a log entry.
type EventAddInput struct {
	ParticipantID  string `json:"participant_id" jsonschema:"participant identifier"`
	Kind           string `json:"kind" jsonschema:"event kind (status_changed, response_detected, dependency_unlocked, draft_generated, follow_up_generated)"`
	Description    string `json:"description,omitempty" jsonschema:"free-form description"`
	RequiresAction bool   `json:"requires_action,omitempty" jsonschema:"whether the event awaits an operator"`
	ActionLabel    string `json:"action_label,omitempty" jsonschema:"label for the expected next step"`
}

// EventAddResult represents the MCP tool output for appending a log entry.
type EventAddResult struct {
	Event EventView `json:"event" jsonschema:"the appended event"`
}

// EventDismissInput represents the MCP tool input for dismissing an event.
type EventDismissInput struct {
	EventID string `json:"event_id" jsonschema:"event identifier"`
}

// EventDismissResult represents the MCP tool output for dismissing an event.
type EventDismissResult struct {
	Event EventView `json:"event" jsonschema:"the event with its requires-action flag cleared"`
}

// EventListInput represents the MCP tool input for paging the event log.
type EventListInput struct {
	Filter    string `json:"filter,omitempty" jsonschema:"optional AIP-160 filter over participant_id, kind, requires_action, create_time"`
	PageSize  int    `json:"page_size,omitempty" jsonschema:"maximum events per page"`
	PageToken string `json:"page_token,omitempty" jsonschema:"token from a previous page"`
}

// EventListResult represents the MCP tool output for paging the event log.
type EventListResult struct {
	Events        []EventView `json:"events"`
	NextPageToken string      `json:"next_page_token,omitempty" jsonschema:"token for the next page, empty on the last page"`
}

// ActionsPendingInput represents the MCP tool input for listing pending
// actions. It carries no fields.
type ActionsPendingInput struct{}

// ActionsPendingResult represents the MCP tool output for pending actions.
type ActionsPendingResult struct {
	Actions []EventView `json:"actions"`
	Count   int         `json:"count" jsonschema:"number of events awaiting an operator"`
}

// EventAddTool describes the event_add MCP tool.
func EventAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "event_add",
		Description: "Appends one automation event to the log. The log never de-duplicates; records are immutable once appended.",
	}
}

// EventDismissTool describes the event_dismiss MCP tool.
func EventDismissTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "event_dismiss",
		Description: "Clears an event's requires-action flag. The record stays in the log and remains queryable.",
	}
}

// EventListTool describes the event_list MCP tool.
func EventListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "event_list",
		Description: "Pages through the automation log newest first, optionally filtered with an AIP-160 expression such as participant_id = \"p1\" && requires_action = true.",
	}
}

// ActionsPendingTool describes the actions_pending MCP tool.
func ActionsPendingTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "actions_pending",
		Description: "Lists every event still awaiting an operator, newest first.",
	}
}

// eventView converts a log record to its MCP output form.
func eventView(event sequencing.Event) EventView {
	return EventView{
		ID:             event.ID,
		Seq:            event.Seq,
		ParticipantID:  event.ParticipantID,
		Kind:           string(event.Kind),
		Description:    event.Description,
		Timestamp:      formatTime(event.Timestamp),
		RequiresAction: event.RequiresAction,
		ActionLabel:    event.ActionLabel,
		DismissedAt:    formatTime(event.DismissedAt),
	}
}
