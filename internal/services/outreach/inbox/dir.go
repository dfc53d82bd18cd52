package inbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirSource reads a drop directory holding one JSON file per inbound message:
//
//	{"from": "...", "participant_id": "...", "body": "...", "received_at": "RFC3339"}
//
// Foreign or malformed files are skipped so an untidy directory never blocks
// scanning. A missing directory reads as an empty inbox.
type DirSource struct {
	dir string
}

// NewDirSource builds a drop-directory response source.
func NewDirSource(dir string) (*DirSource, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	return &DirSource{dir: filepath.Clean(dir)}, nil
}

type messageFile struct {
	From          string    `json:"from"`
	ParticipantID string    `json:"participant_id"`
	Body          string    `json:"body"`
	ReceivedAt    time.Time `json:"received_at"`
}

// Latest returns the newest message for the participant, by received time
// then filename.
func (s *DirSource) Latest(ctx context.Context, participantID string) (Message, bool, error) {
	if err := ctx.Err(); err != nil {
		return Message{}, false, err
	}
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return Message{}, false, fmt.Errorf("participant id is required")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Message{}, false, nil
		}
		return Message{}, false, fmt.Errorf("read inbox directory: %w", err)
	}

	var latest Message
	var latestName string
	found := false
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			return Message{}, false, fmt.Errorf("read inbox file %s: %w", entry.Name(), err)
		}
		var parsed messageFile
		if err := json.Unmarshal(data, &parsed); err != nil {
			continue
		}
		if strings.TrimSpace(parsed.ParticipantID) != participantID {
			continue
		}
		message := Message{
			From:          strings.TrimSpace(parsed.From),
			ParticipantID: participantID,
			Body:          parsed.Body,
			ReceivedAt:    parsed.ReceivedAt.UTC(),
		}
		if !found || message.ReceivedAt.After(latest.ReceivedAt) ||
			(message.ReceivedAt.Equal(latest.ReceivedAt) && entry.Name() > latestName) {
			latest = message
			latestName = entry.Name()
			found = true
		}
	}
	if !found {
		return Message{}, false, nil
	}
	return latest, true, nil
}
