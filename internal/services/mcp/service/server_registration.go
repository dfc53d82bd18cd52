package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"sequent.dev/internal/services/mcp/domain"
	"sequent.dev/internal/services/sequencing/app"
	sequencing "sequent.dev/internal/services/sequencing/domain"
)

type mcpRegistrationKind int

const (
	mcpRegistrationKindTools mcpRegistrationKind = iota
	mcpRegistrationKindResources
)

type mcpRegistrationModule struct {
	name     string
	kind     mcpRegistrationKind
	register func(mcpRegistrationTarget) error
}

const (
	mcpParticipantToolsModuleName   = "participant-tools"
	mcpEventToolsModuleName         = "event-tools"
	mcpProgressToolsModuleName      = "progress-tools"
	mcpOutreachToolsModuleName      = "outreach-tools"
	mcpSequencingResourceModuleName = "sequencing-resources"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

type mcpServerRegistrationAdapter struct {
	server *mcp.Server
}

func (r mcpServerRegistrationAdapter) AddTool(tool *mcp.Tool, handler any) error {
	return addMCPTool(r.server, tool, handler)
}

func (r mcpServerRegistrationAdapter) AddResource(resource *mcp.Resource, handler mcp.ResourceHandler) {
	r.server.AddResource(resource, handler)
}

type mcpToolRegistrar struct {
	matches func(any) bool
	add     func(*mcp.Server, *mcp.Tool, any)
}

func newMCPToolRegistrar[I any, O any]() mcpToolRegistrar {
	return mcpToolRegistrar{
		matches: func(handler any) bool {
			_, ok := handler.(mcp.ToolHandlerFor[I, O])
			return ok
		},
		add: func(server *mcp.Server, tool *mcp.Tool, handler any) {
			mcp.AddTool(server, tool, handler.(mcp.ToolHandlerFor[I, O]))
		},
	}
}

var mcpToolRegistrars = []mcpToolRegistrar{
	newMCPToolRegistrar[domain.ParticipantListInput, domain.ParticipantListResult](),
	newMCPToolRegistrar[domain.ParticipantGetInput, domain.ParticipantGetResult](),
	newMCPToolRegistrar[domain.StatusSetInput, domain.StatusSetResult](),
	newMCPToolRegistrar[domain.ResponseClassifyInput, domain.ResponseClassifyResult](),
	newMCPToolRegistrar[domain.DepsCheckInput, domain.DepsCheckResult](),
	newMCPToolRegistrar[domain.EventAddInput, domain.EventAddResult](),
	newMCPToolRegistrar[domain.EventDismissInput, domain.EventDismissResult](),
	newMCPToolRegistrar[domain.EventListInput, domain.EventListResult](),
	newMCPToolRegistrar[domain.ActionsPendingInput, domain.ActionsPendingResult](),
	newMCPToolRegistrar[domain.ProgressGetInput, domain.ProgressGetResult](),
	newMCPToolRegistrar[domain.RosterConfirmedInput, domain.RosterConfirmedResult](),
	newMCPToolRegistrar[domain.DraftGenerateInput, domain.DraftGenerateResult](),
	newMCPToolRegistrar[domain.InvitationSendInput, domain.InvitationSendResult](),
	newMCPToolRegistrar[domain.ScanRunInput, domain.ScanRunResult](),
}

func addMCPTool(server *mcp.Server, tool *mcp.Tool, handler any) error {
	for _, registrar := range mcpToolRegistrars {
		if registrar.matches(handler) {
			registrar.add(server, tool, handler)
			return nil
		}
	}
	toolName := "<nil>"
	if tool != nil {
		toolName = tool.Name
	}
	return fmt.Errorf("mcp registration adapter does not support handler type %T for tool %q", handler, toolName)
}

func newMCPRegistrationModules(deps Deps) []mcpRegistrationModule {
	return []mcpRegistrationModule{
		{
			name: mcpParticipantToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerParticipantTools(registrar, deps.Sequencing)
			},
		},
		{
			name: mcpEventToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerEventTools(registrar, deps.Sequencing)
			},
		},
		{
			name: mcpProgressToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerProgressTools(registrar, deps.Sequencing, deps.Locale)
			},
		},
		{
			name: mcpOutreachToolsModuleName,
			kind: mcpRegistrationKindTools,
			register: func(registrar mcpRegistrationTarget) error {
				return registerOutreachTools(registrar, deps.Outreach)
			},
		},
		{
			name: mcpSequencingResourceModuleName,
			kind: mcpRegistrationKindResources,
			register: func(registrar mcpRegistrationTarget) error {
				registerSequencingResources(registrar, deps.Sequencing)
				return nil
			},
		},
	}
}

func registerParticipantTools(registrar mcpRegistrationTarget, service *sequencing.Service) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.ParticipantListTool(), handler: domain.ParticipantListHandler(service)},
		{tool: domain.ParticipantGetTool(), handler: domain.ParticipantGetHandler(service)},
		{tool: domain.StatusSetTool(), handler: domain.StatusSetHandler(service)},
		{tool: domain.ResponseClassifyTool(), handler: domain.ResponseClassifyHandler(service)},
		{tool: domain.DepsCheckTool(), handler: domain.DepsCheckHandler(service)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerEventTools(registrar mcpRegistrationTarget, service *sequencing.Service) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.EventAddTool(), handler: domain.EventAddHandler(service)},
		{tool: domain.EventDismissTool(), handler: domain.EventDismissHandler(service)},
		{tool: domain.EventListTool(), handler: domain.EventListHandler(service)},
		{tool: domain.ActionsPendingTool(), handler: domain.ActionsPendingHandler(service)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerProgressTools(registrar mcpRegistrationTarget, service *sequencing.Service, locale string) error {
	if err := registerTool(registrar, domain.ProgressGetTool(), domain.ProgressGetHandler(service)); err != nil {
		return err
	}
	return registerTool(registrar, domain.RosterConfirmedTool(), domain.RosterConfirmedHandler(service, locale))
}

func registerOutreachTools(registrar mcpRegistrationTarget, outreach *app.Outreach) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.DraftGenerateTool(), handler: domain.DraftGenerateHandler(outreach)},
		{tool: domain.InvitationSendTool(), handler: domain.InvitationSendHandler(outreach)},
		{tool: domain.ScanRunTool(), handler: domain.ScanRunHandler(outreach)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerSequencingResources registers the readable roster and
// pending-action MCP resources.
func registerSequencingResources(registrar mcpRegistrationTarget, service *sequencing.Service) {
	registrar.AddResource(domain.ParticipantsResource(), domain.ParticipantsResourceHandler(service))
	registrar.AddResource(domain.PendingEventsResource(), domain.PendingEventsResourceHandler(service))
}
