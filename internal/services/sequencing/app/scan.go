package app

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"sequent.dev/internal/services/outreach/classify"
	"sequent.dev/internal/services/sequencing/domain"
)

// Scan outcome dispositions.
const (
	// ScanNoMessage means the response source held nothing for the participant.
	ScanNoMessage = "no_message"
	// ScanClassified means a classification was applied.
	ScanClassified = "classified"
	// ScanUnclear means the classification was unclear and nothing changed.
	ScanUnclear = "unclear"
	// ScanFailed means the fetch, classification, or apply step errored.
	ScanFailed = "failed"
)

// ScanOutcome reports one participant's scan attempt.
type ScanOutcome struct {
	ParticipantID string
	Disposition   string
	// Classification is the label read from the response, after any
	// confidence demotion. Empty when no message was found or fetching failed.
	Classification string
	// Unlocked lists participants whose prerequisite set a classified
	// confirmation completed.
	Unlocked []string
	Err      error
}

// ScanReport accumulates the outcomes of one scan pass.
type ScanReport struct {
	Scanned  int
	Outcomes []ScanOutcome
}

// Classified counts outcomes that applied a classification.
func (r ScanReport) Classified() int {
	return r.count(ScanClassified)
}

// Failed counts outcomes that errored.
func (r ScanReport) Failed() int {
	return r.count(ScanFailed)
}

func (r ScanReport) count(disposition string) int {
	total := 0
	for _, outcome := range r.Outcomes {
		if outcome.Disposition == disposition {
			total++
		}
	}
	return total
}

// Scan polls the response source for every participant awaiting a reply and
// applies classified responses through the checked transition. Items are
// independent: one participant's failure is recorded in the report and the
// scan moves on.
func (o *Outreach) Scan(ctx context.Context) (ScanReport, error) {
	if o == nil || o.sequencing == nil {
		return ScanReport{}, domain.ErrStoreNotConfigured
	}
	if o.inbox == nil || o.classifier == nil {
		return ScanReport{}, ErrScanNotConfigured
	}

	roster, err := o.sequencing.Roster(ctx)
	if err != nil {
		return ScanReport{}, err
	}

	var report ScanReport
	for _, participant := range roster {
		if !participant.Status.AwaitingResponse() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Scanned++
		report.Outcomes = append(report.Outcomes, o.scanParticipant(ctx, participant))
	}
	return report, nil
}

func (o *Outreach) scanParticipant(ctx context.Context, participant domain.Participant) ScanOutcome {
	outcome := ScanOutcome{ParticipantID: participant.ID}

	message, ok, err := o.inbox.Latest(ctx, participant.ID)
	if err != nil {
		outcome.Disposition = ScanFailed
		outcome.Err = fmt.Errorf("fetch latest response: %w", err)
		return outcome
	}
	if !ok {
		outcome.Disposition = ScanNoMessage
		return outcome
	}

	result, err := o.classifier.Classify(ctx, message.Body, participant.Name)
	if err != nil {
		outcome.Disposition = ScanFailed
		outcome.Err = fmt.Errorf("classify response: %w", err)
		return outcome
	}
	classification := result.Classification
	if o.minConfidence > 0 && classification != classify.LabelUnclear && result.Confidence < o.minConfidence {
		o.logf("scan %s: demoting %s at confidence %.2f, floor %.2f", participant.ID, classification, result.Confidence, o.minConfidence)
		classification = classify.LabelUnclear
	}
	outcome.Classification = classification
	if classification == classify.LabelUnclear {
		outcome.Disposition = ScanUnclear
		return outcome
	}

	applied, err := o.sequencing.ClassifyResponse(ctx, domain.ClassifyResponseInput{
		ParticipantID:  participant.ID,
		Classification: classification,
		Snippet:        snippet(message.Body),
	})
	if err != nil {
		outcome.Disposition = ScanFailed
		outcome.Err = fmt.Errorf("apply classification: %w", err)
		return outcome
	}
	outcome.Disposition = ScanClassified
	outcome.Unlocked = applied.Unlocked
	return outcome
}

// maxSnippetRunes bounds the response excerpt stored on the participant and
// its response_detected event.
const maxSnippetRunes = 240

func snippet(body string) string {
	collapsed := strings.Join(strings.Fields(body), " ")
	if utf8.RuneCountInString(collapsed) <= maxSnippetRunes {
		return collapsed
	}
	runes := []rune(collapsed)
	return string(runes[:maxSnippetRunes])
}
