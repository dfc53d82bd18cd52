// Package seed loads the fixed participant set from a YAML document. The
// loader only reads and decodes; graph validation happens in the domain
// service before anything is written.
package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"sequent.dev/internal/services/sequencing/domain"
)

// File is the on-disk seed document.
type File struct {
	Participants []Entry `yaml:"participants"`
}

// Entry is one participant in the seed document. Dependencies reference
// other entries by id and gate outreach until those are confirmed.
type Entry struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	Organization string   `yaml:"organization,omitempty"`
	Email        string   `yaml:"email"`
	Phase        string   `yaml:"phase,omitempty"`
	Track        string   `yaml:"track,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
	LeverageNote string   `yaml:"leverage_note,omitempty"`
}

// Load reads and parses the seed file at path.
func Load(path string) ([]domain.CreateParticipantInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	inputs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return inputs, nil
}

// Parse decodes a seed document. Unknown fields are rejected so typos fail
// loudly instead of silently dropping attributes. An empty document parses
// to an empty set; the domain service rejects that at ingest.
func Parse(data []byte) ([]domain.CreateParticipantInput, error) {
	var file File
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse seed document: %w", err)
	}

	inputs := make([]domain.CreateParticipantInput, 0, len(file.Participants))
	for _, entry := range file.Participants {
		inputs = append(inputs, domain.CreateParticipantInput{
			ID:           entry.ID,
			Name:         entry.Name,
			Organization: entry.Organization,
			Email:        entry.Email,
			Phase:        entry.Phase,
			Track:        entry.Track,
			Dependencies: entry.Dependencies,
			LeverageNote: entry.LeverageNote,
		})
	}
	return inputs, nil
}
