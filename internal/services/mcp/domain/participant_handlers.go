package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	sequencing "sequent.dev/internal/services/sequencing/domain"
)

// ParticipantListHandler lists the roster in seed order.
func ParticipantListHandler(service *sequencing.Service) mcp.ToolHandlerFor[ParticipantListInput, ParticipantListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParticipantListInput) (*mcp.CallToolResult, ParticipantListResult, error) {
		if service == nil {
			return nil, ParticipantListResult{}, fmt.Errorf("sequencing service is not configured")
		}

		var statusFilter sequencing.Status
		if value := strings.TrimSpace(input.Status); value != "" {
			status, ok := sequencing.ParseStatus(value)
			if !ok {
				return nil, ParticipantListResult{}, fmt.Errorf("unknown status filter %q", input.Status)
			}
			statusFilter = status
		}
		phaseFilter := strings.TrimSpace(input.Phase)

		roster, err := service.Roster(ctx)
		if err != nil {
			return nil, ParticipantListResult{}, fmt.Errorf("list roster: %w", err)
		}

		byID := sequencing.IndexByID(roster)
		result := ParticipantListResult{Participants: []ParticipantSummary{}}
		for _, participant := range roster {
			if statusFilter != "" && participant.Status != statusFilter {
				continue
			}
			if phaseFilter != "" && participant.Phase != phaseFilter {
				continue
			}
			result.Participants = append(result.Participants, ParticipantSummary{
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
		result.Count = len(result.Participants)
		return nil, result, nil
	}
}

// ParticipantGetHandler returns one participant in full detail.
func ParticipantGetHandler(service *sequencing.Service) mcp.ToolHandlerFor[ParticipantGetInput, ParticipantGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ParticipantGetInput) (*mcp.CallToolResult, ParticipantGetResult, error) {
		if service == nil {
			return nil, ParticipantGetResult{}, fmt.Errorf("sequencing service is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, ParticipantGetResult{}, fmt.Errorf("participant_id is required")
		}

		participant, err := service.Participant(ctx, input.ParticipantID)
		if err != nil {
			return nil, ParticipantGetResult{}, fmt.Errorf("get participant: %w", err)
		}
		depsMet, err := service.DepsMet(ctx, participant.ID)
		if err != nil {
			return nil, ParticipantGetResult{}, fmt.Errorf("check dependencies: %w", err)
		}

		result := ParticipantGetResult{
			ID:                 participant.ID,
			Name:               participant.Name,
			Organization:       participant.Organization,
			Email:              participant.Email,
			Phase:              participant.Phase,
			Track:              participant.Track,
			Status:             string(participant.Status),
			Dependencies:       participant.Dependencies,
			DepsMet:            depsMet,
			LeverageNote:       participant.LeverageNote,
			LastClassification: string(participant.LastClassification),
			LastSnippet:        participant.LastSnippet,
			LastResponseAt:     formatTime(participant.LastResponseAt),
			CreatedAt:          formatTime(participant.CreatedAt),
			UpdatedAt:          formatTime(participant.UpdatedAt),
		}
		if participant.Draft != nil {
			result.Draft = &DraftView{
				Subject:     participant.Draft.Subject,
				Body:        participant.Draft.Body,
				FollowUp:    participant.Draft.FollowUp,
				Source:      participant.Draft.Source,
				GeneratedAt: formatTime(participant.Draft.GeneratedAt),
			}
		}
		return nil, result, nil
	}
}

// StatusSetHandler applies the unchecked manual transition. It never
// unlocks dependents, even when the target status is confirmed.
func StatusSetHandler(service *sequencing.Service) mcp.ToolHandlerFor[StatusSetInput, StatusSetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input StatusSetInput) (*mcp.CallToolResult, StatusSetResult, error) {
		if service == nil {
			return nil, StatusSetResult{}, fmt.Errorf("sequencing service is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, StatusSetResult{}, fmt.Errorf("participant_id is required")
		}
		if strings.TrimSpace(input.Status) == "" {
			return nil, StatusSetResult{}, fmt.Errorf("status is required")
		}

		participant, err := service.SetStatus(ctx, sequencing.SetStatusInput{
			ParticipantID: input.ParticipantID,
			Status:        input.Status,
		})
		if err != nil {
			return nil, StatusSetResult{}, fmt.Errorf("set status: %w", err)
		}
		return nil, StatusSetResult{
			ParticipantID: participant.ID,
			Name:          participant.Name,
			Status:        string(participant.Status),
			UpdatedAt:     formatTime(participant.UpdatedAt),
		}, nil
	}
}

// ResponseClassifyHandler applies the checked classification transition,
// the only path that can unlock dependents.
func ResponseClassifyHandler(service *sequencing.Service) mcp.ToolHandlerFor[ResponseClassifyInput, ResponseClassifyResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ResponseClassifyInput) (*mcp.CallToolResult, ResponseClassifyResult, error) {
		if service == nil {
			return nil, ResponseClassifyResult{}, fmt.Errorf("sequencing service is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, ResponseClassifyResult{}, fmt.Errorf("participant_id is required")
		}
		if strings.TrimSpace(input.Classification) == "" {
			return nil, ResponseClassifyResult{}, fmt.Errorf("classification is required")
		}

		applied, err := service.ClassifyResponse(ctx, sequencing.ClassifyResponseInput{
			ParticipantID:  input.ParticipantID,
			Classification: input.Classification,
			Snippet:        input.Snippet,
		})
		if err != nil {
			return nil, ResponseClassifyResult{}, fmt.Errorf("classify response: %w", err)
		}
		result := ResponseClassifyResult{
			ParticipantID: applied.Participant.ID,
			Applied:       applied.Applied,
			Status:        string(applied.Participant.Status),
			Unlocked:      applied.Unlocked,
		}
		if applied.Applied {
			result.Classification = string(applied.Participant.LastClassification)
		} else {
			result.Classification = string(sequencing.ClassificationUnclear)
		}
		return nil, result, nil
	}
}

// DepsCheckHandler reports per-dependency readiness for one participant.
func DepsCheckHandler(service *sequencing.Service) mcp.ToolHandlerFor[DepsCheckInput, DepsCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DepsCheckInput) (*mcp.CallToolResult, DepsCheckResult, error) {
		if service == nil {
			return nil, DepsCheckResult{}, fmt.Errorf("sequencing service is not configured")
		}
		if strings.TrimSpace(input.ParticipantID) == "" {
			return nil, DepsCheckResult{}, fmt.Errorf("participant_id is required")
		}

		participant, err := service.Participant(ctx, input.ParticipantID)
		if err != nil {
			return nil, DepsCheckResult{}, fmt.Errorf("get participant: %w", err)
		}
		roster, err := service.Roster(ctx)
		if err != nil {
			return nil, DepsCheckResult{}, fmt.Errorf("list roster: %w", err)
		}

		byID := sequencing.IndexByID(roster)
		result := DepsCheckResult{
			ParticipantID: participant.ID,
			DepsMet:       sequencing.DepsMet(byID, participant),
		}
		for _, dep := range participant.Dependencies {
			state := DependencyState{ID: dep}
			if other, ok := byID[dep]; ok {
				state.Name = other.Name
				state.Status = string(other.Status)
				state.Confirmed = other.Status == sequencing.StatusConfirmed
			}
			result.Dependencies = append(result.Dependencies, state)
		}
		return nil, result, nil
	}
}
