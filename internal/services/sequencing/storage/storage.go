// Package storage defines the persistence records and store contract for the
// sequencing roster and automation event log. Records are storage-shaped;
// the app layer converts them to and from domain types.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested participant or event record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrConflict indicates a write conflicts with uniqueness constraints.
	ErrConflict = errors.New("record conflict")
)

// ParticipantRecord stores one roster row.
type ParticipantRecord struct {
	ID           string
	Name         string
	Organization string
	Email        string
	Phase        string
	Track        string
	OrderIndex   int
	Status       string
	// DependenciesJSON is a JSON array of participant ids, opaque to the
	// store.
	DependenciesJSON   string
	LeverageNote       string
	LastClassification string
	LastSnippet        string
	// LastResponseAt is zero when no response was ever classified; stored
	// as NULL.
	LastResponseAt time.Time
	DraftSubject   string
	DraftBody      string
	DraftFollowUp  bool
	DraftSource    string
	// DraftGeneratedAt is zero when no draft is stored; draft presence is
	// keyed on it.
	DraftGeneratedAt time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EventRecord stores one automation log row. Seq is assigned by the store on
// append and orders the log globally.
type EventRecord struct {
	ID             string
	Seq            int64
	ParticipantID  string
	Kind           string
	Description    string
	CreateTime     time.Time
	RequiresAction bool
	ActionLabel    string
	// DismissedAt is zero until the event's action is dismissed.
	DismissedAt time.Time
	PayloadJSON string
}

// EventQuery configures event listing.
type EventQuery struct {
	// Filter is an AIP-160 expression over participant_id, kind,
	// requires_action, and create_time.
	Filter    string
	PageSize  int
	PageToken string
}

// EventPage stores a paged event listing result, newest first.
type EventPage struct {
	Events        []EventRecord
	NextPageToken string
}

// Store persists roster and event log state.
type Store interface {
	CountParticipants(ctx context.Context) (int, error)
	// SeedParticipants inserts the initial roster in one transaction.
	SeedParticipants(ctx context.Context, records []ParticipantRecord) error
	GetParticipant(ctx context.Context, participantID string) (ParticipantRecord, error)
	ListParticipants(ctx context.Context) ([]ParticipantRecord, error)
	// ApplyChange commits participant updates and event appends atomically.
	ApplyChange(ctx context.Context, participants []ParticipantRecord, events []EventRecord) error
	GetEvent(ctx context.Context, eventID string) (EventRecord, error)
	ListEvents(ctx context.Context, query EventQuery) (EventPage, error)
	ListPendingActions(ctx context.Context) ([]EventRecord, error)
	// DismissEvent clears the requires-action flag and stamps dismissed_at.
	// A second dismissal keeps the original timestamp.
	DismissEvent(ctx context.Context, eventID string, dismissedAt time.Time) (EventRecord, error)
}
