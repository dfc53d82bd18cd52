package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"sequent.dev/internal/platform/branding"
	"sequent.dev/internal/services/mcp/domain"
	"sequent.dev/internal/services/sequencing/app"
	sequencing "sequent.dev/internal/services/sequencing/domain"
)

// serverVersion identifies the MCP server version.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures how the MCP server is exposed.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the streamable HTTP listen address. Defaults to
	// localhost:8081 for the HTTP transport.
	HTTPAddr string
}

// Deps carries the in-process services the MCP surface exposes.
type Deps struct {
	Sequencing *sequencing.Service
	Outreach   *app.Outreach
	// Locale orders the confirmed-name roster; empty falls back to
	// English collation.
	Locale string
}

// Server hosts the MCP server over a chosen transport.
type Server struct {
	mcpServer *mcp.Server
}

// New builds the MCP server: it registers every tool and resource against
// the sequencing and outreach services and wires the store-changed signal to
// resource-updated notifications for subscribed clients.
func New(deps Deps) (*Server, error) {
	if deps.Sequencing == nil {
		return nil, fmt.Errorf("sequencing service is required")
	}
	if deps.Outreach == nil {
		return nil, fmt.Errorf("outreach orchestration is required")
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	resourceNotifier := func(ctx context.Context, uri string) {
		if strings.TrimSpace(uri) == "" {
			return
		}
		if ctx == nil {
			ctx = context.Background()
		}
		if err := mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.Printf("mcp resource updated notify failed: uri=%s err=%v", uri, err)
		}
	}

	for _, module := range newMCPRegistrationModules(deps) {
		if err := module.register(mcpServerRegistrationAdapter{server: mcpServer}); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}

	// Every committed mutation fans out to both resources. The signal is
	// coarse on purpose: clients re-read, the server does not diff.
	deps.Sequencing.OnStoreChanged(func() {
		domain.NotifyResourceUpdates(context.Background(), resourceNotifier,
			domain.ParticipantsResourceURI,
			domain.PendingEventsResourceURI,
		)
	})

	return &Server{mcpServer: mcpServer}, nil
}

// completionHandler handles completion/complete requests with empty results.
// The tool inputs are flat ids and enum labels; argument completion would
// need a roster snapshot per keystroke and is not worth the traffic.
func completionHandler(ctx context.Context, req *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Run builds a server for deps and serves it until the context ends. It is
// transport-agnostic so startup can choose stdio for local operator tools
// and HTTP for remote clients.
func Run(ctx context.Context, deps Deps, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	server, err := New(deps)
	if err != nil {
		return err
	}

	switch cfg.Transport {
	case TransportStdio:
		return server.Serve(ctx)
	case TransportHTTP:
		httpAddr := cfg.HTTPAddr
		if httpAddr == "" {
			httpAddr = "localhost:8081"
		}
		return NewHTTPTransport(httpAddr, server.mcpServer).Start(ctx)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the normal shutdown path, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
