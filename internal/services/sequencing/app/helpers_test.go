package app

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"sequent.dev/internal/services/outreach/draft"
	"sequent.dev/internal/services/outreach/inbox"
	"sequent.dev/internal/services/sequencing/domain"
	"sequent.dev/internal/services/sequencing/storage/sqlite"
)

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "sequencing.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func newTestService(t *testing.T, now time.Time) *domain.Service {
	t.Helper()
	return domain.NewService(newStoreAdapter(openTestStore(t)), func() time.Time { return now }, testIDGenerator())
}

func testIDGenerator() func() (string, error) {
	next := 0
	return func() (string, error) {
		next++
		return fmt.Sprintf("id-%03d", next), nil
	}
}

func participantInput(id string, deps ...string) domain.CreateParticipantInput {
	return domain.CreateParticipantInput{
		ID:           id,
		Name:         "Speaker " + id,
		Organization: "Org " + id,
		Email:        id + "@example.org",
		Phase:        "keynote",
		Dependencies: deps,
	}
}

func seedRoster(t *testing.T, svc *domain.Service, inputs ...domain.CreateParticipantInput) {
	t.Helper()
	if _, err := svc.Seed(context.Background(), inputs); err != nil {
		t.Fatalf("seed roster: %v", err)
	}
}

func setStatus(t *testing.T, svc *domain.Service, participantID string, status domain.Status) {
	t.Helper()
	if _, err := svc.SetStatus(context.Background(), domain.SetStatusInput{
		ParticipantID: participantID,
		Status:        string(status),
	}); err != nil {
		t.Fatalf("set status %s on %s: %v", status, participantID, err)
	}
}

func mustParticipant(t *testing.T, svc *domain.Service, participantID string) domain.Participant {
	t.Helper()
	participant, err := svc.Participant(context.Background(), participantID)
	if err != nil {
		t.Fatalf("get participant %s: %v", participantID, err)
	}
	return participant
}

type fakeGenerator struct {
	draft       draft.Draft
	err         error
	calls       int
	lastRequest draft.Request
}

func (g *fakeGenerator) Generate(_ context.Context, request draft.Request) (draft.Draft, error) {
	g.calls++
	g.lastRequest = request
	if g.err != nil {
		return draft.Draft{}, g.err
	}
	return g.draft, nil
}

type sentMessage struct {
	Recipient string
	Subject   string
	Body      string
}

type fakeSender struct {
	err  error
	sent []sentMessage
}

func (s *fakeSender) Send(_ context.Context, recipient, subject, body string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMessage{Recipient: recipient, Subject: subject, Body: body})
	return nil
}

type fakeInbox struct {
	messages map[string]inbox.Message
	errs     map[string]error
}

func (f *fakeInbox) Latest(_ context.Context, participantID string) (inbox.Message, bool, error) {
	if err := f.errs[participantID]; err != nil {
		return inbox.Message{}, false, err
	}
	message, ok := f.messages[participantID]
	return message, ok, nil
}
