package domain

import (
	"strings"
	"time"

	apperrors "sequent.dev/internal/platform/errors"
)

// Participant is one outreach target in the sequencing roster.
//
// Participants are created once from the seed set and never deleted. Status
// and the response/draft fields change only through the service operations.
type Participant struct {
	ID           string
	Name         string
	Organization string
	Email        string
	// Phase groups participants for progress reporting (for example
	// "keynote" or "panel"). Track is a finer, optional grouping.
	Phase string
	Track string
	// OrderIndex is the participant's position within the seed set. Roster
	// listings and cascade scans iterate in this order so results are stable.
	OrderIndex int
	Status     Status
	// Dependencies holds ids of participants that must reach confirmed
	// before this one's outreach may begin. Order follows the seed file.
	Dependencies []string
	// LeverageNote is optional operator-supplied context fed to drafting.
	LeverageNote string

	LastClassification Classification
	LastSnippet        string
	LastResponseAt     time.Time

	Draft *Draft

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Draft is the stored invitation draft for a participant.
type Draft struct {
	Subject string
	Body    string
	// FollowUp marks a draft written in reply to a response rather than a
	// first-touch invitation.
	FollowUp bool
	// Source records which generator produced the draft ("openai" or
	// "template").
	Source      string
	GeneratedAt time.Time
}

// DependsOn reports whether the participant lists dep as a prerequisite.
func (p Participant) DependsOn(dep string) bool {
	for _, d := range p.Dependencies {
		if d == dep {
			return true
		}
	}
	return false
}

// CreateParticipantInput carries the seed attributes for one participant.
type CreateParticipantInput struct {
	ID           string
	Name         string
	Organization string
	Email        string
	Phase        string
	Track        string
	Dependencies []string
	LeverageNote string
}

// NormalizeCreateParticipantInput trims free-text fields and drops blank
// dependency entries.
func NormalizeCreateParticipantInput(input CreateParticipantInput) CreateParticipantInput {
	input.ID = strings.TrimSpace(input.ID)
	input.Name = strings.TrimSpace(input.Name)
	input.Organization = strings.TrimSpace(input.Organization)
	input.Email = strings.TrimSpace(input.Email)
	input.Phase = strings.TrimSpace(input.Phase)
	input.Track = strings.TrimSpace(input.Track)
	input.LeverageNote = strings.TrimSpace(input.LeverageNote)
	deps := make([]string, 0, len(input.Dependencies))
	for _, dep := range input.Dependencies {
		dep = strings.TrimSpace(dep)
		if dep != "" {
			deps = append(deps, dep)
		}
	}
	input.Dependencies = deps
	return input
}

// CreateParticipant validates seed input and builds the initial record.
// Every participant starts not_started; the cascade and the operator move it
// from there.
func CreateParticipant(input CreateParticipantInput, orderIndex int, now func() time.Time) (Participant, error) {
	if now == nil {
		now = time.Now
	}
	input = NormalizeCreateParticipantInput(input)
	if input.ID == "" {
		return Participant{}, apperrors.New(apperrors.CodeParticipantEmptyID, "participant id is required")
	}
	if input.Name == "" {
		return Participant{}, apperrors.WithMetadata(apperrors.CodeParticipantEmptyName, "participant name is required", map[string]string{"participant_id": input.ID})
	}
	if input.Email == "" {
		return Participant{}, apperrors.WithMetadata(apperrors.CodeParticipantEmptyEmail, "participant email is required", map[string]string{"participant_id": input.ID})
	}
	for _, dep := range input.Dependencies {
		if dep == input.ID {
			return Participant{}, apperrors.WithMetadata(apperrors.CodeDependencySelfReference, "participant cannot depend on itself", map[string]string{"participant_id": input.ID})
		}
	}

	created := now().UTC()
	return Participant{
		ID:           input.ID,
		Name:         input.Name,
		Organization: input.Organization,
		Email:        input.Email,
		Phase:        input.Phase,
		Track:        input.Track,
		OrderIndex:   orderIndex,
		Status:       StatusNotStarted,
		Dependencies: input.Dependencies,
		LeverageNote: input.LeverageNote,
		CreatedAt:    created,
		UpdatedAt:    created,
	}, nil
}
