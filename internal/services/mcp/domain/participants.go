package domain

import (
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ParticipantListInput represents the MCP tool input for roster listings.
type ParticipantListInput struct {
	Status string `json:"status,omitempty" jsonschema:"optional status filter (for example not_started, sent, confirmed)"`
	Phase  string `json:"phase,omitempty" jsonschema:"optional phase filter (for example keynote, panel)"`
}

// ParticipantSummary represents one roster entry in list output.
type ParticipantSummary struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Organization       string   `json:"organization,omitempty"`
	Phase              string   `json:"phase,omitempty"`
	Track              string   `json:"track,omitempty"`
	Status             string   `json:"status"`
	Dependencies       []string `json:"dependencies,omitempty"`
	DepsMet            bool     `json:"deps_met"`
	HasDraft           bool     `json:"has_draft"`
	LastClassification string   `json:"last_classification,omitempty"`
	UpdatedAt          string   `json:"updated_at"`
}

// ParticipantListResult represents the MCP tool output for roster listings.
type ParticipantListResult struct {
	Participants []ParticipantSummary `json:"participants"`
	Count        int                  `json:"count" jsonschema:"number of participants returned"`
}

// ParticipantGetInput represents the MCP tool input for a single participant.
type ParticipantGetInput struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
}

// DraftView represents a stored draft in MCP output.
type DraftView struct {
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	FollowUp    bool   `json:"follow_up"`
	Source      string `json:"source" jsonschema:"generator that produced the draft (openai or template)"`
	GeneratedAt string `json:"generated_at" jsonschema:"RFC3339 timestamp when the draft was generated"`
}

// ParticipantGetResult represents the MCP tool output for a single participant.
type ParticipantGetResult struct {
	ID                 string     `json:"id" jsonschema:"participant identifier"`
	Name               string     `json:"name" jsonschema:"display name"`
	Organization       string     `json:"organization,omitempty"`
	Email              string     `json:"email,omitempty"`
	Phase              string     `json:"phase,omitempty" jsonschema:"progress grouping key"`
	Track              string     `json:"track,omitempty"`
	Status             string     `json:"status" jsonschema:"current workflow status"`
	Dependencies       []string   `json:"dependencies,omitempty" jsonschema:"participant ids that must confirm first"`
	DepsMet            bool       `json:"deps_met" jsonschema:"whether every dependency is confirmed"`
	LeverageNote       string     `json:"leverage_note,omitempty"`
	LastClassification string     `json:"last_classification,omitempty"`
	LastSnippet        string     `json:"last_snippet,omitempty"`
	LastResponseAt     string     `json:"last_response_at,omitempty" jsonschema:"RFC3339 timestamp of the last classified response"`
	Draft              *DraftView `json:"draft,omitempty" jsonschema:"stored invitation draft, when one exists"`
	CreatedAt          string     `json:"created_at" jsonschema:"RFC3339 timestamp when the participant was seeded"`
	UpdatedAt          string     `json:"updated_at" jsonschema:"RFC3339 timestamp of the last mutation"`
}

// StatusSetInput represents the MCP tool input for a manual status change.
type StatusSetInput struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
	Status        string `json:"status" jsonschema:"target status (not_started, pre_warming, draft_pending, draft_ready, approved, sent, confirmed, declined, more_info, meeting_requested, follow_up_draft, follow_up_sent)"`
}

// StatusSetResult represents the MCP tool output for a manual status change.
type StatusSetResult struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
	Name          string `json:"name" jsonschema:"display name"`
	Status        string `json:"status" jsonschema:"status after the change"`
	UpdatedAt     string `json:"updated_at" jsonschema:"RFC3339 timestamp of the change"`
}

// ResponseClassifyInput represents the MCP tool input for applying a
// classified response.
type ResponseClassifyInput struct {
	ParticipantID  string `json:"participant_id" jsonschema:"participant identifier"`
	Classification string `json:"classification" jsonschema:"response classification (confirmed, declined, more_info, meeting_requested, unclear)"`
	Snippet        string `json:"snippet,omitempty" jsonschema:"optional response excerpt stored with the event"`
}

// ResponseClassifyResult represents the MCP tool output for a classified
// response.
type ResponseClassifyResult struct {
	ParticipantID  string   `json:"participant_id" jsonschema:"participant identifier"`
	Applied        bool     `json:"applied" jsonschema:"false when the classification was unclear and nothing changed"`
	Status         string   `json:"status" jsonschema:"participant status after the call"`
	Classification string   `json:"classification" jsonschema:"classification that was applied"`
	Unlocked       []string `json:"unlocked,omitempty" jsonschema:"participant ids whose prerequisite set became fully confirmed"`
}

// DepsCheckInput represents the MCP tool input for a dependency check.
type DepsCheckInput struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
}

// DependencyState represents one prerequisite in dependency check output.
type DependencyState struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Confirmed bool   `json:"confirmed"`
}

// DepsCheckResult represents the MCP tool output for a dependency check.
type DepsCheckResult struct {
	ParticipantID string            `json:"participant_id" jsonschema:"participant identifier"`
	DepsMet       bool              `json:"deps_met" jsonschema:"whether outreach may begin"`
	Dependencies  []DependencyState `json:"dependencies,omitempty" jsonschema:"per-prerequisite status"`
}

// ParticipantListTool describes the participant_list MCP tool.
func ParticipantListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "participant_list",
		Description: "Lists the outreach roster in seed order with status, dependency readiness, and draft presence. Optional status and phase filters.",
	}
}

// ParticipantGetTool describes the participant_get MCP tool.
func ParticipantGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "participant_get",
		Description: "Returns one participant with dependencies, last classified response, and any stored draft.",
	}
}

// StatusSetTool describes the status_set MCP tool.
func StatusSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "status_set",
		Description: "Moves a participant to any status as an operator override. Appends one status_changed event and never triggers dependency unlocks.",
	}
}

// ResponseClassifyTool describes the response_classify MCP tool.
func ResponseClassifyTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "response_classify",
		Description: "Applies a classified response to a participant. Unclear classifications change nothing; a confirmed classification may unlock dependents.",
	}
}

// DepsCheckTool describes the deps_check MCP tool.
func DepsCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "deps_check",
		Description: "Reports whether a participant's prerequisite set is fully confirmed, listing each dependency's status.",
	}
}

// formatTime renders timestamps for MCP output; zero times render empty so
// omitempty drops them.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
