package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"sequent.dev/internal/platform/timeouts"
)

var listenTCP = net.Listen

// defaultReadHeaderTimeout bounds slow clients during the request preamble.
const defaultReadHeaderTimeout = 10 * time.Second

// HTTPTransport serves the MCP server over the SDK's streamable HTTP
// protocol. Sessions and SSE streaming are handled by the SDK handler; this
// type owns the listener lifecycle and graceful shutdown.
//
// The listener binds whatever address it is given; deployments are expected
// to keep it on localhost or behind their own trust boundary, since the MCP
// surface carries no authentication of its own.
type HTTPTransport struct {
	addr      string
	mcpServer *mcp.Server
}

// NewHTTPTransport creates an HTTP transport for an already-registered MCP
// server.
func NewHTTPTransport(addr string, mcpServer *mcp.Server) *HTTPTransport {
	return &HTTPTransport{addr: addr, mcpServer: mcpServer}
}

// Start listens and serves until the context ends, then shuts the HTTP
// server down gracefully. Context cancellation is the normal exit path.
func (t *HTTPTransport) Start(ctx context.Context) error {
	if t == nil || t.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return t.mcpServer
	}, nil)

	listener, err := listenTCP("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}

	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()
	log.Printf("mcp http transport listening at %v", listener.Addr())

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve MCP over HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown MCP HTTP server: %w", err)
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve MCP over HTTP: %w", err)
	}
	return nil
}
