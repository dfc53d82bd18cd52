package domain

import "strings"

// Classification is the categorical reading of a free-text response.
type Classification string

const (
	// ClassificationConfirmed means the participant accepted.
	ClassificationConfirmed Classification = "confirmed"
	// ClassificationDeclined means the participant refused.
	ClassificationDeclined Classification = "declined"
	// ClassificationMoreInfo means the participant asked for details.
	ClassificationMoreInfo Classification = "more_info"
	// ClassificationMeetingRequested means the participant asked for a call.
	ClassificationMeetingRequested Classification = "meeting_requested"
	// ClassificationUnclear means no category could be read from the text.
	// Unclear responses are a deliberate no-op: no status change, no event.
	ClassificationUnclear Classification = "unclear"
)

// ParseClassification canonicalizes a classification label.
func ParseClassification(value string) (Classification, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ClassificationConfirmed):
		return ClassificationConfirmed, true
	case string(ClassificationDeclined):
		return ClassificationDeclined, true
	case string(ClassificationMoreInfo):
		return ClassificationMoreInfo, true
	case string(ClassificationMeetingRequested):
		return ClassificationMeetingRequested, true
	case string(ClassificationUnclear):
		return ClassificationUnclear, true
	default:
		return "", false
	}
}

// statusForClassification maps a classification onto the status it assigns.
// Unclear has no mapping; callers must branch on it before asking.
func statusForClassification(c Classification) (Status, bool) {
	switch c {
	case ClassificationConfirmed:
		return StatusConfirmed, true
	case ClassificationDeclined:
		return StatusDeclined, true
	case ClassificationMoreInfo:
		return StatusMoreInfo, true
	case ClassificationMeetingRequested:
		return StatusMeetingRequested, true
	default:
		return "", false
	}
}

// actionForClassification returns the operator action label surfaced on the
// response_detected event, if the classification demands a next step.
func actionForClassification(c Classification) (string, bool) {
	switch c {
	case ClassificationMoreInfo:
		return "Draft follow-up", true
	case ClassificationMeetingRequested:
		return "Schedule meeting", true
	default:
		return "", false
	}
}
