package domain

import "strings"

// Status describes where a participant sits in the outreach workflow.
type Status string

const (
	// StatusNotStarted is the initial status for every seeded participant.
	StatusNotStarted Status = "not_started"
	// StatusPreWarming marks relationship building before any draft exists.
	StatusPreWarming Status = "pre_warming"
	// StatusDraftPending marks a participant whose invitation draft was requested.
	StatusDraftPending Status = "draft_pending"
	// StatusDraftReady marks a generated draft awaiting operator review.
	StatusDraftReady Status = "draft_ready"
	// StatusApproved marks a reviewed draft cleared for sending.
	StatusApproved Status = "approved"
	// StatusSent marks a delivered invitation awaiting a response.
	StatusSent Status = "sent"
	// StatusConfirmed marks a positive response; dependents may unlock.
	StatusConfirmed Status = "confirmed"
	// StatusDeclined marks a negative response.
	StatusDeclined Status = "declined"
	// StatusMoreInfo marks a response asking for more information.
	StatusMoreInfo Status = "more_info"
	// StatusMeetingRequested marks a response asking for a call or meeting.
	StatusMeetingRequested Status = "meeting_requested"
	// StatusFollowUpDraft marks a follow-up draft awaiting review.
	StatusFollowUpDraft Status = "follow_up_draft"
	// StatusFollowUpSent marks a delivered follow-up awaiting a response.
	StatusFollowUpSent Status = "follow_up_sent"
)

// statuses lists every valid status in workflow order.
var statuses = []Status{
	StatusNotStarted,
	StatusPreWarming,
	StatusDraftPending,
	StatusDraftReady,
	StatusApproved,
	StatusSent,
	StatusConfirmed,
	StatusDeclined,
	StatusMoreInfo,
	StatusMeetingRequested,
	StatusFollowUpDraft,
	StatusFollowUpSent,
}

// Statuses returns every valid status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(statuses))
	copy(out, statuses)
	return out
}

// ParseStatus canonicalizes a status label.
func ParseStatus(value string) (Status, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, status := range statuses {
		if trimmed == string(status) {
			return status, true
		}
	}
	return "", false
}

// IsValid reports whether the status is one of the defined workflow states.
func (s Status) IsValid() bool {
	_, ok := ParseStatus(string(s))
	return ok
}

// AwaitingResponse reports whether the participant is waiting on an inbound
// reply, which is when the response scan polls for messages.
func (s Status) AwaitingResponse() bool {
	return s == StatusSent || s == StatusFollowUpSent
}
