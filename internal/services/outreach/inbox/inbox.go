// Package inbox surfaces inbound participant responses to the scan loop.
package inbox

import (
	"context"
	"time"
)

// Message is one inbound response.
type Message struct {
	From          string
	ParticipantID string
	Body          string
	ReceivedAt    time.Time
}

// Source yields the latest inbound message for a participant. The second
// return value reports whether any message exists.
type Source interface {
	Latest(ctx context.Context, participantID string) (Message, bool, error)
}
