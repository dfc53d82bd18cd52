package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind identifies what an automation event records.
type Kind string

const (
	// KindStatusChanged records a manual status transition.
	KindStatusChanged Kind = "status_changed"
	// KindResponseDetected records a classified inbound response.
	KindResponseDetected Kind = "response_detected"
	// KindDependencyUnlocked records that every prerequisite of a
	// participant reached confirmed.
	KindDependencyUnlocked Kind = "dependency_unlocked"
	// KindDraftGenerated records a generated first-touch invitation draft.
	KindDraftGenerated Kind = "draft_generated"
	// KindFollowUpGenerated records a generated follow-up draft.
	KindFollowUpGenerated Kind = "follow_up_generated"
)

// ParseKind canonicalizes an event kind label.
func ParseKind(value string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindStatusChanged:
		return KindStatusChanged, true
	case KindResponseDetected:
		return KindResponseDetected, true
	case KindDependencyUnlocked:
		return KindDependencyUnlocked, true
	case KindDraftGenerated:
		return KindDraftGenerated, true
	case KindFollowUpGenerated:
		return KindFollowUpGenerated, true
	default:
		return "", false
	}
}

// Operator action labels surfaced on events that require a next step.
const (
	ActionLabelGenerateDraft   = "Generate draft"
	ActionLabelDraftFollowUp   = "Draft follow-up"
	ActionLabelScheduleMeeting = "Schedule meeting"
)

// Event is one append-only automation log record.
//
// Records are immutable once appended except for the requires-action flag,
// which dismissal clears. Seq is assigned by the store on append and orders
// the log globally.
type Event struct {
	ID            string
	Seq           int64
	ParticipantID string
	Kind          Kind
	Description   string
	Timestamp     time.Time
	// RequiresAction marks events awaiting an operator; ActionLabel names
	// the expected next step.
	RequiresAction bool
	ActionLabel    string
	DismissedAt    time.Time
	// PayloadJSON holds the kind-specific payload, decoded through the
	// typed accessors below.
	PayloadJSON []byte
}

// Dismissed reports whether the requires-action flag was cleared.
func (e Event) Dismissed() bool {
	return !e.DismissedAt.IsZero()
}

// StatusChangedPayload describes a manual transition.
type StatusChangedPayload struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

// ResponseDetectedPayload describes a classified response.
type ResponseDetectedPayload struct {
	Classification Classification `json:"classification"`
	Snippet        string         `json:"snippet,omitempty"`
}

// DependencyUnlockedPayload describes a participant whose prerequisite set
// became fully confirmed.
type DependencyUnlockedPayload struct {
	// UnlockedBy is the participant whose confirmation completed the set.
	UnlockedBy   string   `json:"unlocked_by"`
	Dependencies []string `json:"dependencies"`
}

// DraftGeneratedPayload describes a generated first-touch draft.
type DraftGeneratedPayload struct {
	Subject string `json:"subject"`
	Source  string `json:"source"`
}

// FollowUpGeneratedPayload describes a generated follow-up draft.
type FollowUpGeneratedPayload struct {
	Subject string `json:"subject"`
	Source  string `json:"source"`
	// ResponseClassification is the classification the follow-up answers.
	ResponseClassification Classification `json:"response_classification"`
}

// NewStatusChangedEvent builds the record for a manual transition.
func NewStatusChangedEvent(id, participantID string, from, to Status, at time.Time) (Event, error) {
	payload, err := json.Marshal(StatusChangedPayload{From: from, To: to})
	if err != nil {
		return Event{}, fmt.Errorf("marshal status_changed payload: %w", err)
	}
	return Event{
		ID:            id,
		ParticipantID: participantID,
		Kind:          KindStatusChanged,
		Description:   fmt.Sprintf("Status changed from %s to %s", from, to),
		Timestamp:     at.UTC(),
		PayloadJSON:   payload,
	}, nil
}

// NewResponseDetectedEvent builds the record for a classified response. The
// requires-action flag is set only for classifications that demand a next
// step (more_info, meeting_requested).
func NewResponseDetectedEvent(id, participantID string, classification Classification, snippet string, at time.Time) (Event, error) {
	payload, err := json.Marshal(ResponseDetectedPayload{Classification: classification, Snippet: snippet})
	if err != nil {
		return Event{}, fmt.Errorf("marshal response_detected payload: %w", err)
	}
	event := Event{
		ID:            id,
		ParticipantID: participantID,
		Kind:          KindResponseDetected,
		Description:   fmt.Sprintf("Response detected: %s", classification),
		Timestamp:     at.UTC(),
		PayloadJSON:   payload,
	}
	if label, ok := actionForClassification(classification); ok {
		event.RequiresAction = true
		event.ActionLabel = label
	}
	return event, nil
}

// NewDependencyUnlockedEvent builds the record for a fully satisfied
// prerequisite set. It always requires operator action.
func NewDependencyUnlockedEvent(id, participantID, unlockedBy string, dependencies []string, at time.Time) (Event, error) {
	payload, err := json.Marshal(DependencyUnlockedPayload{UnlockedBy: unlockedBy, Dependencies: dependencies})
	if err != nil {
		return Event{}, fmt.Errorf("marshal dependency_unlocked payload: %w", err)
	}
	return Event{
		ID:             id,
		ParticipantID:  participantID,
		Kind:           KindDependencyUnlocked,
		Description:    "All dependencies confirmed",
		Timestamp:      at.UTC(),
		RequiresAction: true,
		ActionLabel:    ActionLabelGenerateDraft,
		PayloadJSON:    payload,
	}, nil
}

// NewDraftGeneratedEvent builds the record for a generated invitation draft.
func NewDraftGeneratedEvent(id, participantID, subject, source string, at time.Time) (Event, error) {
	payload, err := json.Marshal(DraftGeneratedPayload{Subject: subject, Source: source})
	if err != nil {
		return Event{}, fmt.Errorf("marshal draft_generated payload: %w", err)
	}
	return Event{
		ID:            id,
		ParticipantID: participantID,
		Kind:          KindDraftGenerated,
		Description:   "Invitation draft generated",
		Timestamp:     at.UTC(),
		PayloadJSON:   payload,
	}, nil
}

// NewFollowUpGeneratedEvent builds the record for a generated follow-up draft.
func NewFollowUpGeneratedEvent(id, participantID, subject, source string, responseClassification Classification, at time.Time) (Event, error) {
	payload, err := json.Marshal(FollowUpGeneratedPayload{
		Subject:                subject,
		Source:                 source,
		ResponseClassification: responseClassification,
	})
	if err != nil {
		return Event{}, fmt.Errorf("marshal follow_up_generated payload: %w", err)
	}
	return Event{
		ID:            id,
		ParticipantID: participantID,
		Kind:          KindFollowUpGenerated,
		Description:   "Follow-up draft generated",
		Timestamp:     at.UTC(),
		PayloadJSON:   payload,
	}, nil
}

// StatusChanged decodes the payload of a status_changed event.
func (e Event) StatusChanged() (StatusChangedPayload, error) {
	var payload StatusChangedPayload
	if e.Kind != KindStatusChanged {
		return payload, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, KindStatusChanged)
	}
	if err := json.Unmarshal(e.PayloadJSON, &payload); err != nil {
		return payload, fmt.Errorf("decode status_changed payload: %w", err)
	}
	return payload, nil
}

// ResponseDetected decodes the payload of a response_detected event.
func (e Event) ResponseDetected() (ResponseDetectedPayload, error) {
	var payload ResponseDetectedPayload
	if e.Kind != KindResponseDetected {
		return payload, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, KindResponseDetected)
	}
	if err := json.Unmarshal(e.PayloadJSON, &payload); err != nil {
		return payload, fmt.Errorf("decode response_detected payload: %w", err)
	}
	return payload, nil
}

// DependencyUnlocked decodes the payload of a dependency_unlocked event.
func (e Event) DependencyUnlocked() (DependencyUnlockedPayload, error) {
	var payload DependencyUnlockedPayload
	if e.Kind != KindDependencyUnlocked {
		return payload, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, KindDependencyUnlocked)
	}
	if err := json.Unmarshal(e.PayloadJSON, &payload); err != nil {
		return payload, fmt.Errorf("decode dependency_unlocked payload: %w", err)
	}
	return payload, nil
}

// DraftGenerated decodes the payload of a draft_generated event.
func (e Event) DraftGenerated() (DraftGeneratedPayload, error) {
	var payload DraftGeneratedPayload
	if e.Kind != KindDraftGenerated {
		return payload, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, KindDraftGenerated)
	}
	if err := json.Unmarshal(e.PayloadJSON, &payload); err != nil {
		return payload, fmt.Errorf("decode draft_generated payload: %w", err)
	}
	return payload, nil
}

// FollowUpGenerated decodes the payload of a follow_up_generated event.
func (e Event) FollowUpGenerated() (FollowUpGeneratedPayload, error) {
	var payload FollowUpGeneratedPayload
	if e.Kind != KindFollowUpGenerated {
		return payload, fmt.Errorf("event %s is %s, not %s", e.ID, e.Kind, KindFollowUpGenerated)
	}
	if err := json.Unmarshal(e.PayloadJSON, &payload); err != nil {
		return payload, fmt.Errorf("decode follow_up_generated payload: %w", err)
	}
	return payload, nil
}
