package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"sequent.dev/internal/services/outreach/classify"
	"sequent.dev/internal/services/outreach/inbox"
	"sequent.dev/internal/services/sequencing/domain"
)

func TestScanClassifiesConfirmationAndUnlocksDependents(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	seedRoster(t, svc,
		participantInput("keynote-anchor"),
		participantInput("panel-lead", "keynote-anchor"),
	)
	setStatus(t, svc, "keynote-anchor", domain.StatusSent)

	source := inbox.NewMemorySource()
	source.Add(inbox.Message{
		From:          "chen@atlas.example",
		ParticipantID: "keynote-anchor",
		Body:          "Count me in, happy to join the program.",
		ReceivedAt:    time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
	})

	outreach, err := NewOutreach(OutreachConfig{
		Sequencing: svc,
		Inbox:      source,
		Classifier: classify.NewKeywordClassifier(),
	})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	report, err := outreach.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Scanned != 1 {
		t.Fatalf("scanned = %d, want 1", report.Scanned)
	}
	if len(report.Outcomes) != 1 {
		t.Fatalf("outcomes = %d, want 1", len(report.Outcomes))
	}
	outcome := report.Outcomes[0]
	if outcome.Disposition != ScanClassified {
		t.Fatalf("disposition = %q, want %q (err %v)", outcome.Disposition, ScanClassified, outcome.Err)
	}
	if outcome.Classification != classify.LabelConfirmed {
		t.Fatalf("classification = %q, want %q", outcome.Classification, classify.LabelConfirmed)
	}
	if len(outcome.Unlocked) != 1 || outcome.Unlocked[0] != "panel-lead" {
		t.Fatalf("unlocked = %v, want [panel-lead]", outcome.Unlocked)
	}
	if report.Classified() != 1 || report.Failed() != 0 {
		t.Fatalf("report counts = %d classified %d failed, want 1/0", report.Classified(), report.Failed())
	}

	anchor := mustParticipant(t, svc, "keynote-anchor")
	if anchor.Status != domain.StatusConfirmed {
		t.Fatalf("anchor status = %q, want %q", anchor.Status, domain.StatusConfirmed)
	}
	if anchor.LastSnippet == "" || !strings.Contains(anchor.LastSnippet, "Count me in") {
		t.Fatalf("anchor snippet = %q, want stored excerpt", anchor.LastSnippet)
	}

	pending, err := svc.PendingActions(context.Background())
	if err != nil {
		t.Fatalf("pending actions: %v", err)
	}
	foundUnlock := false
	for _, event := range pending {
		if event.Kind == domain.KindDependencyUnlocked && event.ParticipantID == "panel-lead" {
			foundUnlock = true
		}
	}
	if !foundUnlock {
		t.Fatalf("pending actions %+v missing dependency_unlocked for panel-lead", pending)
	}
}

func TestScanSkipsParticipantsNotAwaitingResponse(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	seedRoster(t, svc,
		participantInput("keynote-anchor"),
		participantInput("panel-lead"),
	)
	setStatus(t, svc, "panel-lead", domain.StatusConfirmed)

	outreach, err := NewOutreach(OutreachConfig{
		Sequencing: svc,
		Inbox:      inbox.NewMemorySource(),
		Classifier: classify.NewKeywordClassifier(),
	})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	report, err := outreach.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if report.Scanned != 0 || len(report.Outcomes) != 0 {
		t.Fatalf("report = %+v, want empty scan", report)
	}
}

func TestScanReportsNoMessage(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	seedRoster(t, svc, participantInput("keynote-anchor"))
	setStatus(t, svc, "keynote-anchor", domain.StatusSent)

	outreach, err := NewOutreach(OutreachConfig{
		Sequencing: svc,
		Inbox:      inbox.NewMemorySource(),
		Classifier: classify.NewKeywordClassifier(),
	})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	report, err := outreach.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Disposition != ScanNoMessage {
		t.Fatalf("outcomes = %+v, want one no_message", report.Outcomes)
	}
}

func TestScanUnclearResponseChangesNothing(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	seedRoster(t, svc, participantInput("keynote-anchor"))
	setStatus(t, svc, "keynote-anchor", domain.StatusFollowUpSent)

	source := inbox.NewMemorySource()
	source.Add(inbox.Message{
		ParticipantID: "keynote-anchor",
		Body:          "Interesting times lately.",
		ReceivedAt:    time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
	})

	outreach, err := NewOutreach(OutreachConfig{
		Sequencing: svc,
		Inbox:      source,
		Classifier: classify.NewKeywordClassifier(),
	})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	report, err := outreach.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Disposition != ScanUnclear {
		t.Fatalf("outcomes = %+v, want one unclear", report.Outcomes)
	}

	participant := mustParticipant(t, svc, "keynote-anchor")
	if participant.Status != domain.StatusFollowUpSent {
		t.Fatalf("status = %q, want unchanged %q", participant.Status, domain.StatusFollowUpSent)
	}
	if participant.LastClassification != "" {
		t.Fatalf("last classification = %q, want empty", participant.LastClassification)
	}

	page, err := svc.ListEvents(context.Background(), domain.EventQuery{PageSize: 10})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	for _, event := range page.Events {
		if event.Kind == domain.KindResponseDetected {
			t.Fatalf("unexpected response_detected event for unclear response: %+v", event)
		}
	}
}

func TestScanDemotesLowConfidenceClassifications(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	seedRoster(t, svc, participantInput("keynote-anchor"))
	setStatus(t, svc, "keynote-anchor", domain.StatusSent)

	source := inbox.NewMemorySource()
	source.Add(inbox.Message{
		ParticipantID: "keynote-anchor",
		Body:          "Yes.",
		ReceivedAt:    time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
	})

	var logs []string
	outreach, err := NewOutreach(OutreachConfig{
		Sequencing:    svc,
		Inbox:         source,
		Classifier:    classify.NewKeywordClassifier(),
		MinConfidence: 0.95,
		Logf: func(format string, args ...any) {
			logs = append(logs, fmt.Sprintf(format, args...))
		},
	})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	report, err := outreach.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Outcomes) != 1 || report.Outcomes[0].Disposition != ScanUnclear {
		t.Fatalf("outcomes = %+v, want one demoted unclear", report.Outcomes)
	}
	if len(logs) != 1 || !strings.Contains(logs[0], "demoting") {
		t.Fatalf("logs = %v, want one demotion line", logs)
	}

	participant := mustParticipant(t, svc, "keynote-anchor")
	if participant.Status != domain.StatusSent {
		t.Fatalf("status = %q, want unchanged %q", participant.Status, domain.StatusSent)
	}
}

func TestScanIsolatesPerParticipantFailures(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	seedRoster(t, svc,
		participantInput("keynote-anchor"),
		participantInput("panel-lead"),
	)
	setStatus(t, svc, "keynote-anchor", domain.StatusSent)
	setStatus(t, svc, "panel-lead", domain.StatusSent)

	source := &fakeInbox{
		messages: map[string]inbox.Message{
			"panel-lead": {
				ParticipantID: "panel-lead",
				Body:          "Unfortunately I have to pass this year.",
				ReceivedAt:    time.Date(2026, 3, 3, 8, 0, 0, 0, time.UTC),
			},
		},
		errs: map[string]error{
			"keynote-anchor": errors.New("mailbox offline"),
		},
	}

	outreach, err := NewOutreach(OutreachConfig{
		Sequencing: svc,
		Inbox:      source,
		Classifier: classify.NewKeywordClassifier(),
	})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	report, err := outreach.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(report.Outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(report.Outcomes))
	}
	if report.Failed() != 1 || report.Classified() != 1 {
		t.Fatalf("report counts = %d failed %d classified, want 1/1", report.Failed(), report.Classified())
	}

	byID := map[string]ScanOutcome{}
	for _, outcome := range report.Outcomes {
		byID[outcome.ParticipantID] = outcome
	}
	if got := byID["keynote-anchor"]; got.Disposition != ScanFailed || got.Err == nil {
		t.Fatalf("keynote-anchor outcome = %+v, want failed with error", got)
	}
	if got := byID["panel-lead"]; got.Disposition != ScanClassified || got.Classification != classify.LabelDeclined {
		t.Fatalf("panel-lead outcome = %+v, want classified declined", got)
	}

	panelLead := mustParticipant(t, svc, "panel-lead")
	if panelLead.Status != domain.StatusDeclined {
		t.Fatalf("panel-lead status = %q, want %q", panelLead.Status, domain.StatusDeclined)
	}
}

func TestScanWithoutCollaborators(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	outreach, err := NewOutreach(OutreachConfig{Sequencing: svc})
	if err != nil {
		t.Fatalf("NewOutreach: %v", err)
	}

	if _, err := outreach.Scan(context.Background()); !errors.Is(err, ErrScanNotConfigured) {
		t.Fatalf("error = %v, want ErrScanNotConfigured", err)
	}
}

func TestSnippetCollapsesAndBounds(t *testing.T) {
	t.Parallel()

	if got, want := snippet("  Happy\n to\tjoin.  "), "Happy to join."; got != want {
		t.Fatalf("snippet = %q, want %q", got, want)
	}

	long := strings.Repeat("ya", 300)
	got := snippet(long)
	if len([]rune(got)) != maxSnippetRunes {
		t.Fatalf("snippet length = %d runes, want %d", len([]rune(got)), maxSnippetRunes)
	}
}
