package domain

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	sequencing "sequent.dev/internal/services/sequencing/domain"
	"sequent.dev/internal/services/sequencing/projection"
)

// ProgressGetInput represents the MCP tool input for phase progress.
type ProgressGetInput struct {
	Phase string `json:"phase,omitempty" jsonschema:"optional phase to report on; empty reports every phase"`
}

// PhaseProgressView represents one phase's aggregate in MCP output.
type PhaseProgressView struct {
	Phase       string  `json:"phase"`
	Total       int     `json:"total"`
	Confirmed   int     `json:"confirmed"`
	Sent        int     `json:"sent"`
	Declined    int     `json:"declined"`
	FillPercent float64 `json:"fill_percent" jsonschema:"confirmed share of the phase, 0..100"`
}

// ProgressGetResult represents the MCP tool output for phase progress.
type ProgressGetResult struct {
	Phases []PhaseProgressView `json:"phases"`
}

// RosterConfirmedInput represents the MCP tool input for the confirmed
// roster. It carries no fields.
type RosterConfirmedInput struct{}

// RosterConfirmedResult represents the MCP tool output for the confirmed
// roster.
type RosterConfirmedResult struct {
	Names []string `json:"names" jsonschema:"confirmed participant names in collated order"`
	Count int      `json:"count"`
}

// ProgressGetTool describes the progress_get MCP tool.
func ProgressGetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "progress_get",
		Description: "Aggregates roster progress per phase: totals plus confirmed, sent, and declined counts with a fill percentage.",
	}
}

// RosterConfirmedTool describes the roster_confirmed MCP tool.
func RosterConfirmedTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "roster_confirmed",
		Description: "Lists the names of every confirmed participant, sorted for display. Feeds draft generation as social proof.",
	}
}

// ProgressGetHandler reports phase aggregates over a roster snapshot.
func ProgressGetHandler(service *sequencing.Service) mcp.ToolHandlerFor[ProgressGetInput, ProgressGetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ProgressGetInput) (*mcp.CallToolResult, ProgressGetResult, error) {
		if service == nil {
			return nil, ProgressGetResult{}, fmt.Errorf("sequencing service is not configured")
		}

		roster, err := service.Roster(ctx)
		if err != nil {
			return nil, ProgressGetResult{}, fmt.Errorf("list roster: %w", err)
		}

		result := ProgressGetResult{Phases: []PhaseProgressView{}}
		if phase := strings.TrimSpace(input.Phase); phase != "" {
			result.Phases = append(result.Phases, phaseProgressView(projection.PhaseFor(roster, phase)))
			return nil, result, nil
		}
		for _, progress := range projection.ProgressByPhase(roster) {
			result.Phases = append(result.Phases, phaseProgressView(progress))
		}
		return nil, result, nil
	}
}

// RosterConfirmedHandler lists confirmed participant names.
func RosterConfirmedHandler(service *sequencing.Service, locale string) mcp.ToolHandlerFor[RosterConfirmedInput, RosterConfirmedResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ RosterConfirmedInput) (*mcp.CallToolResult, RosterConfirmedResult, error) {
		if service == nil {
			return nil, RosterConfirmedResult{}, fmt.Errorf("sequencing service is not configured")
		}

		roster, err := service.Roster(ctx)
		if err != nil {
			return nil, RosterConfirmedResult{}, fmt.Errorf("list roster: %w", err)
		}

		names := projection.ConfirmedNames(roster, locale)
		if names == nil {
			names = []string{}
		}
		return nil, RosterConfirmedResult{Names: names, Count: len(names)}, nil
	}
}

func phaseProgressView(progress projection.PhaseProgress) PhaseProgressView {
	return PhaseProgressView{
		Phase:       progress.Phase,
		Total:       progress.Total,
		Confirmed:   progress.Confirmed,
		Sent:        progress.Sent,
		Declined:    progress.Declined,
		FillPercent: progress.FillPercent(),
	}
}
