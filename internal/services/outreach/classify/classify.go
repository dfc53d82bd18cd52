// Package classify turns free-text invitation responses into categorical
// classifications with a confidence score.
package classify

import "context"

// Classification labels understood by the sequencing engine. The engine owns
// the status mapping; this package only reports what the text says.
const (
	LabelConfirmed        = "confirmed"
	LabelDeclined         = "declined"
	LabelMoreInfo         = "more_info"
	LabelMeetingRequested = "meeting_requested"
	LabelUnclear          = "unclear"
)

// Result is one classification reading.
type Result struct {
	// Classification is one of the Label constants.
	Classification string
	// Confidence is the classifier's self-reported certainty in [0, 1].
	Confidence float64
}

// Classifier reads an inbound response body and classifies it.
type Classifier interface {
	Classify(ctx context.Context, bodyText, participantName string) (Result, error)
}
