package inbox

import (
	"context"
	"sync"
)

// MemorySource is an in-memory response source for tests and dry runs.
type MemorySource struct {
	mu       sync.Mutex
	messages []Message
}

// NewMemorySource builds an empty in-memory source.
func NewMemorySource() *MemorySource {
	return &MemorySource{}
}

// Add records a message.
func (s *MemorySource) Add(message Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

// Latest returns the newest message for the participant by received time,
// with later additions winning ties.
func (s *MemorySource) Latest(ctx context.Context, participantID string) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest Message
	found := false
	for _, message := range s.messages {
		if message.ParticipantID != participantID {
			continue
		}
		if !found || !message.ReceivedAt.Before(latest.ReceivedAt) {
			latest = message
			found = true
		}
	}
	if !found {
		return Message{}, false, nil
	}
	return latest, true, nil
}
