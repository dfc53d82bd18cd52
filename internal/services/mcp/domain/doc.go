// Package domain defines the MCP tool and resource surface for the
// sequencing engine: typed tool inputs and results, tool and resource
// constructors, and the handlers that bind them to the in-process
// sequencing service and outreach orchestrations.
package domain
