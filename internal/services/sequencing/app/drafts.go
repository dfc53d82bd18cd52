package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sequent.dev/internal/services/outreach/classify"
	"sequent.dev/internal/services/outreach/deliver"
	"sequent.dev/internal/services/outreach/draft"
	"sequent.dev/internal/services/outreach/inbox"
	"sequent.dev/internal/services/sequencing/domain"
	"sequent.dev/internal/services/sequencing/projection"
)

var (
	// ErrSenderNotConfigured indicates delivery was requested without a sender.
	ErrSenderNotConfigured = errors.New("delivery sender is not configured")
	// ErrScanNotConfigured indicates a scan was requested without an inbox
	// source or classifier.
	ErrScanNotConfigured = errors.New("response scan is not configured")
)

// Outreach coordinates drafting, delivery, and the response scan on top of
// the sequencing service.
type Outreach struct {
	sequencing *domain.Service
	generator  draft.Generator
	template   *draft.TemplateGenerator
	sender     deliver.Sender
	inbox      inbox.Source
	classifier classify.Classifier
	// minConfidence demotes classifications below it to unclear; zero
	// applies every classification as reported.
	minConfidence float64
	locale        string
	logf          func(format string, args ...any)
}

// OutreachConfig wires the outreach collaborators.
type OutreachConfig struct {
	Sequencing *domain.Service
	// ModelGenerator is the model-backed draft generator. Nil, or any
	// generation error, falls back to the deterministic template so
	// drafting never blocks on an external model.
	ModelGenerator draft.Generator
	Sender         deliver.Sender
	Inbox          inbox.Source
	Classifier     classify.Classifier
	// MinConfidence is the classification confidence floor applied by the
	// scan. Zero applies every classification.
	MinConfidence float64
	// Locale orders the confirmed names quoted in drafts. Empty falls back
	// to English collation.
	Locale string
	Logf   func(format string, args ...any)
}

// NewOutreach builds the outreach coordinator.
func NewOutreach(cfg OutreachConfig) (*Outreach, error) {
	if cfg.Sequencing == nil {
		return nil, fmt.Errorf("sequencing service is required")
	}
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}
	return &Outreach{
		sequencing:    cfg.Sequencing,
		generator:     cfg.ModelGenerator,
		template:      draft.NewTemplateGenerator(),
		sender:        cfg.Sender,
		inbox:         cfg.Inbox,
		classifier:    cfg.Classifier,
		minConfidence: cfg.MinConfidence,
		locale:        cfg.Locale,
		logf:          logf,
	}, nil
}

// GenerateDraft produces and stores an invitation draft, or a follow-up
// draft answering the participant's last classified response. The draft is
// attached to the participant and logged; status is left for the operator.
func (o *Outreach) GenerateDraft(ctx context.Context, participantID string, followUp bool) (domain.Participant, domain.Event, error) {
	if o == nil || o.sequencing == nil {
		return domain.Participant{}, domain.Event{}, domain.ErrStoreNotConfigured
	}
	participant, err := o.sequencing.Participant(ctx, participantID)
	if err != nil {
		return domain.Participant{}, domain.Event{}, err
	}
	roster, err := o.sequencing.Roster(ctx)
	if err != nil {
		return domain.Participant{}, domain.Event{}, err
	}

	request := draft.Request{
		ParticipantName:        participant.Name,
		Organization:           participant.Organization,
		Phase:                  participant.Phase,
		Track:                  participant.Track,
		LeverageNote:           participant.LeverageNote,
		ConfirmedNames:         projection.ConfirmedNames(roster, o.locale),
		IsFollowUp:             followUp,
		ResponseClassification: string(participant.LastClassification),
		ResponseSnippet:        participant.LastSnippet,
	}
	content, source, err := o.generate(ctx, request)
	if err != nil {
		return domain.Participant{}, domain.Event{}, err
	}

	return o.sequencing.AttachDraft(ctx, domain.AttachDraftInput{
		ParticipantID: participant.ID,
		Subject:       content.Subject,
		Body:          content.Body,
		FollowUp:      followUp,
		Source:        source,
	})
}

func (o *Outreach) generate(ctx context.Context, request draft.Request) (draft.Draft, string, error) {
	if o.generator != nil {
		content, err := o.generator.Generate(ctx, request)
		if err == nil {
			return content, draft.SourceOpenAI, nil
		}
		o.logf("draft generator failed for %s, using template: %v", request.ParticipantName, err)
	}
	content, err := o.template.Generate(ctx, request)
	if err != nil {
		return draft.Draft{}, "", fmt.Errorf("template draft: %w", err)
	}
	return content, draft.SourceTemplate, nil
}
