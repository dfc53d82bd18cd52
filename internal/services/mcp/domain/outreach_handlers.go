package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"sequent.dev/internal/services/sequencing/app"
)

// DraftGenerateHandler generates and stores an invitation draft.
func DraftGenerateHandler(outreach *app.Outreach) mcp.ToolHandlerFor[DraftGenerateInput, DraftGenerateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DraftGenerateInput) (*mcp.CallToolResult, DraftGenerateResult, error) {
		if outreach == nil {
			return nil, DraftGenerateResult{}, fmt.Errorf("outreach orchestration is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, DraftGenerateResult{}, fmt.Errorf("participant_id is required")
		}

		participant, event, err := outreach.GenerateDraft(ctx, input.ParticipantID, input.FollowUp)
		if err != nil {
			return nil, DraftGenerateResult{}, fmt.Errorf("generate draft: %w", err)
		}
		if participant.Draft == nil {
			return nil, DraftGenerateResult{}, fmt.Errorf("draft was not stored for participant %s", participant.ID)
		}
		return nil, DraftGenerateResult{
			ParticipantID: participant.ID,
			Subject:       participant.Draft.Subject,
			Body:          participant.Draft.Body,
			FollowUp:      participant.Draft.FollowUp,
			Source:        participant.Draft.Source,
			EventID:       event.ID,
		}, nil
	}
}

// InvitationSendHandler delivers a stored draft once.
func InvitationSendHandler(outreach *app.Outreach) mcp.ToolHandlerFor[InvitationSendInput, InvitationSendResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input InvitationSendInput) (*mcp.CallToolResult, InvitationSendResult, error) {
		if outreach == nil {
			return nil, InvitationSendResult{}, fmt.Errorf("outreach orchestration is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, InvitationSendResult{}, fmt.Errorf("participant_id is required")
		}

		participant, err := outreach.SendInvitation(ctx, input.ParticipantID)
		if err != nil {
			return nil, InvitationSendResult{}, fmt.Errorf("send invitation: %w", err)
		}
		result := InvitationSendResult{
			ParticipantID: participant.ID,
			Recipient:     participant.Email,
			Status:        string(participant.Status),
		}
		if participant.Draft != nil {
			result.Subject = participant.Draft.Subject
		}
		return nil, result, nil
	}
}

// ScanRunHandler triggers one on-demand response scan pass.
func ScanRunHandler(outreach *app.Outreach) mcp.ToolHandlerFor[ScanRunInput, ScanRunResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ScanRunInput) (*mcp.CallToolResult, ScanRunResult, error) {
		if outreach == nil {
			return nil, ScanRunResult{}, fmt.Errorf("outreach orchestration is not configured")
		}

		report, err := outreach.Scan(ctx)
		if err != nil {
			return nil, ScanRunResult{}, fmt.Errorf("run scan: %w", err)
		}

		result := ScanRunResult{
			Scanned:    report.Scanned,
			Classified: report.Classified(),
			Failed:     report.Failed(),
			Outcomes:   make([]ScanOutcomeView, 0, len(report.Outcomes)),
		}
		for _, outcome := range report.Outcomes {
			view := ScanOutcomeView{
				ParticipantID:  outcome.ParticipantID,
				Disposition:    outcome.Disposition,
				Classification: outcome.Classification,
				Unlocked:       outcome.Unlocked,
			}
			if outcome.Err != nil {
				view.Error = outcome.Err.Error()
			}
			result.Outcomes = append(result.Outcomes, view)
		}
		return nil, result, nil
	}
}
