// Package errors provides structured error handling for the sequencing engine.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Participant errors
	CodeParticipantEmptyID      Code = "PARTICIPANT_EMPTY_ID"
	CodeParticipantEmptyName    Code = "PARTICIPANT_EMPTY_NAME"
	CodeParticipantUnknown      Code = "PARTICIPANT_UNKNOWN"
	CodeParticipantDuplicateID  Code = "PARTICIPANT_DUPLICATE_ID"
	CodeParticipantEmptyEmail   Code = "PARTICIPANT_EMPTY_EMAIL"
	CodeParticipantInvalidPhase Code = "PARTICIPANT_INVALID_PHASE"

	// Status machine errors
	CodeStatusInvalid         Code = "STATUS_INVALID"
	CodeClassificationInvalid Code = "CLASSIFICATION_INVALID"

	// Dependency graph errors
	CodeDependencyUnknownParticipant Code = "DEPENDENCY_UNKNOWN_PARTICIPANT"
	CodeDependencySelfReference      Code = "DEPENDENCY_SELF_REFERENCE"
	CodeDependencyCycle              Code = "DEPENDENCY_CYCLE"

	// Event log errors
	CodeEventEmptyParticipantID Code = "EVENT_EMPTY_PARTICIPANT_ID"
	CodeEventInvalidKind        Code = "EVENT_INVALID_KIND"
	CodeEventNotFound           Code = "EVENT_NOT_FOUND"

	// Draft and delivery errors
	CodeDraftMissing        Code = "DRAFT_MISSING"
	CodeDeliveryFailed      Code = "DELIVERY_FAILED"
	CodeDeliveryNoRecipient Code = "DELIVERY_NO_RECIPIENT"

	// Seed errors
	CodeSeedEmpty   Code = "SEED_EMPTY"
	CodeSeedInvalid Code = "SEED_INVALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeConflict Code = "CONFLICT"
)
