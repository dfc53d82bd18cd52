package domain

import (
	"errors"

	apperrors "sequent.dev/internal/platform/errors"
)

var (
	// ErrStoreNotConfigured indicates the service is missing persistence wiring.
	ErrStoreNotConfigured = errors.New("sequencing store is not configured")
	// ErrIDGeneratorNotConfigured indicates an ID generator is required.
	ErrIDGeneratorNotConfigured = errors.New("sequencing id generator is not configured")
	// ErrIDGeneratorExhausted indicates a fixed test ID sequence was exhausted.
	ErrIDGeneratorExhausted = errors.New("sequencing id generator exhausted")
	// ErrNotFound is returned by stores when a participant or event row is missing.
	ErrNotFound = errors.New("sequencing record not found")
	// ErrConflict is returned by stores when a write violates a uniqueness constraint.
	ErrConflict = errors.New("sequencing write conflict")
)

// Coded sentinels for caller-facing validation failures. Matching works
// through errors.Is by code, so wrapped variants with metadata still match.
var (
	// ErrUnknownParticipant rejects operations naming an id outside the roster.
	ErrUnknownParticipant = apperrors.New(apperrors.CodeParticipantUnknown, "unknown participant id")
	// ErrInvalidStatus rejects labels outside the workflow states.
	ErrInvalidStatus = apperrors.New(apperrors.CodeStatusInvalid, "invalid status label")
	// ErrInvalidClassification rejects labels outside the classification set.
	ErrInvalidClassification = apperrors.New(apperrors.CodeClassificationInvalid, "invalid classification label")
	// ErrInvalidKind rejects labels outside the event kinds.
	ErrInvalidKind = apperrors.New(apperrors.CodeEventInvalidKind, "invalid event kind")
	// ErrEventNotFound rejects lookups and dismissals of unknown event ids.
	ErrEventNotFound = apperrors.New(apperrors.CodeEventNotFound, "unknown event id")
	// ErrDraftMissing rejects delivery for a participant without a stored draft.
	ErrDraftMissing = apperrors.New(apperrors.CodeDraftMissing, "participant has no stored draft")
	// ErrSeedEmpty rejects seeding an empty participant set.
	ErrSeedEmpty = apperrors.New(apperrors.CodeSeedEmpty, "seed set has no participants")
)
