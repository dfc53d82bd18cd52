// Package timeouts defines shared timeout constants used across the daemon.
// Centralizing these values prevents drift between components and makes the
// durations discoverable.
package timeouts

import "time"

// GRPCDial caps the wait time when dialing the health endpoint.
const GRPCDial = 2 * time.Second

// HealthProbe caps a single health check round trip.
const HealthProbe = 2 * time.Second

// Collaborator caps one outbound call to a drafting, classification, or
// delivery collaborator.
const Collaborator = 30 * time.Second

// Shutdown limits how long servers wait for in-flight work during
// graceful shutdown.
const Shutdown = 5 * time.Second
