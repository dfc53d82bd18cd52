package domain

import "github.com/modelcontextprotocol/go-sdk/mcp"

// DraftGenerateInput represents the MCP tool input for draft generation.
type DraftGenerateInput struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
	FollowUp      bool   `json:"follow_up,omitempty" jsonschema:"generate a follow-up answering the last classified response instead of a first-touch invitation"`
}

// DraftGenerateResult represents the MCP tool output for draft generation.
type DraftGenerateResult struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
	Subject       string `json:"subject" jsonschema:"generated subject line"`
	Body          string `json:"body" jsonschema:"generated message body"`
	FollowUp      bool   `json:"follow_up" jsonschema:"whether the draft is a follow-up"`
	Source        string `json:"source" jsonschema:"generator that produced the draft (openai or template)"`
	EventID       string `json:"event_id" jsonschema:"identifier of the appended draft event"`
}

// InvitationSendInput represents the MCP tool input for sending a stored
// draft.
type InvitationSendInput struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
}

// InvitationSendResult represents the MCP tool output for sending a stored
// draft.
type InvitationSendResult struct {
	ParticipantID string `json:"participant_id" jsonschema:"participant identifier"`
	Recipient     string `json:"recipient" jsonschema:"email address the draft was delivered to"`
	Subject       string `json:"subject" jsonschema:"delivered subject line"`
	Status        string `json:"status" jsonschema:"participant status after delivery (sent or follow_up_sent)"`
}

// ScanRunInput represents the MCP tool input for a response scan pass. It
// carries no fields.
type ScanRunInput struct{}

// ScanOutcomeView represents one participant's scan attempt in MCP output.
type ScanOutcomeView struct {
	ParticipantID  string   `json:"participant_id"`
	Disposition    string   `json:"disposition" jsonschema:"no_message, classified, unclear, or failed"`
	Classification string   `json:"classification,omitempty"`
	Unlocked       []string `json:"unlocked,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// ScanRunResult represents the MCP tool output for a response scan pass.
type ScanRunResult struct {
	Scanned    int               `json:"scanned" jsonschema:"participants checked for a response"`
	Classified int               `json:"classified" jsonschema:"responses applied through the checked transition"`
	Failed     int               `json:"failed" jsonschema:"participants whose scan attempt errored"`
	Outcomes   []ScanOutcomeView `json:"outcomes"`
}

// DraftGenerateTool describes the draft_generate MCP tool.
func DraftGenerateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "draft_generate",
		Description: "Generates an invitation draft for a participant using the confirmed roster as social proof, falling back to the deterministic template when the model generator is unavailable. Stores the draft without advancing status.",
	}
}

// InvitationSendTool describes the invitation_send MCP tool.
func InvitationSendTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "invitation_send",
		Description: "Delivers a participant's stored draft once and marks the participant sent (or follow_up_sent for a follow-up draft). On delivery failure the status is left unchanged.",
	}
}

// ScanRunTool describes the scan_run MCP tool.
func ScanRunTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scan_run",
		Description: "Runs one response scan pass over every participant awaiting a reply, classifying new responses and reporting per-participant outcomes. One participant's failure never aborts the rest.",
	}
}
