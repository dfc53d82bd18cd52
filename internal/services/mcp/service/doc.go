// Package service wires protocol transport to the sequencing engine.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or streamable HTTP and delegates business meaning to the domain
// handlers in the MCP domain package.
package service
