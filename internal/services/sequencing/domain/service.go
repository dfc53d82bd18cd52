package domain

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	apperrors "sequent.dev/internal/platform/errors"
	"sequent.dev/internal/platform/grpc/pagination"
	"sequent.dev/internal/platform/id"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ChangeSet is one atomic store mutation: participant upserts plus event
// appends, committed together or not at all.
type ChangeSet struct {
	Participants []Participant
	Events       []Event
}

// EventQuery configures event log listing.
type EventQuery struct {
	// Filter is an AIP-160 expression over participant_id, kind,
	// requires_action, and create_time. Empty lists everything.
	Filter    string
	PageSize  int
	PageToken string
}

// EventPage is a paged event log view, newest first.
type EventPage struct {
	Events        []Event
	NextPageToken string
}

// Store is the domain persistence boundary for the roster and event log.
type Store interface {
	CountParticipants(ctx context.Context) (int, error)
	SeedParticipants(ctx context.Context, participants []Participant) error
	GetParticipant(ctx context.Context, participantID string) (Participant, error)
	ListParticipants(ctx context.Context) ([]Participant, error)
	Apply(ctx context.Context, change ChangeSet) error
	GetEvent(ctx context.Context, eventID string) (Event, error)
	ListEvents(ctx context.Context, query EventQuery) (EventPage, error)
	ListPendingActions(ctx context.Context) ([]Event, error)
	DismissEvent(ctx context.Context, eventID string, dismissedAt time.Time) (Event, error)
}

// Service owns every roster and event log mutation.
type Service struct {
	store Store
	clock func() time.Time
	newID func() (string, error)

	// mu serializes mutations. A cascade scan runs between its trigger's
	// status update and the commit, against a snapshot that includes the
	// update, so unlocks are never missed or doubled.
	mu sync.Mutex

	onChange func()
}

// NewService constructs the sequencing use-cases.
func NewService(store Store, clock func() time.Time, newID func() (string, error)) *Service {
	if clock == nil {
		clock = time.Now
	}
	if newID == nil {
		newID = id.NewID
	}
	return &Service{
		store: store,
		clock: clock,
		newID: newID,
	}
}

// OnStoreChanged registers a coarse change signal fired after every committed
// mutation. The callback must be non-blocking; it carries no detail beyond
// "something changed".
func (s *Service) OnStoreChanged(fn func()) {
	if s == nil {
		return
	}
	s.onChange = fn
}

func (s *Service) notifyChanged() {
	if s.onChange != nil {
		s.onChange()
	}
}

// Seed ingests the fixed participant set exactly once. When the store
// already holds participants the call is a no-op returning nil. The whole
// set is validated (ids, dependency edges, acyclicity) before any write.
func (s *Service) Seed(ctx context.Context, inputs []CreateParticipantInput) ([]Participant, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if len(inputs) == 0 {
		return nil, ErrSeedEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.store.CountParticipants(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}

	participants := make([]Participant, 0, len(inputs))
	for i, input := range inputs {
		participant, err := CreateParticipant(input, i, s.clock)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	if err := ValidateGraph(participants); err != nil {
		return nil, err
	}
	if err := s.store.SeedParticipants(ctx, participants); err != nil {
		return nil, err
	}
	s.notifyChanged()
	return participants, nil
}

// Participant returns one roster entry.
func (s *Service) Participant(ctx context.Context, participantID string) (Participant, error) {
	if s == nil || s.store == nil {
		return Participant{}, ErrStoreNotConfigured
	}
	return s.getParticipant(ctx, participantID)
}

// Roster returns all participants in seed order.
func (s *Service) Roster(ctx context.Context) ([]Participant, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListParticipants(ctx)
}

// DepsMet reports whether every dependency of the participant is confirmed.
func (s *Service) DepsMet(ctx context.Context, participantID string) (bool, error) {
	if s == nil || s.store == nil {
		return false, ErrStoreNotConfigured
	}
	participant, err := s.getParticipant(ctx, participantID)
	if err != nil {
		return false, err
	}
	if len(participant.Dependencies) == 0 {
		return true, nil
	}
	roster, err := s.store.ListParticipants(ctx)
	if err != nil {
		return false, err
	}
	return DepsMet(IndexByID(roster), participant), nil
}

// SetStatusInput identifies a manual transition.
type SetStatusInput struct {
	ParticipantID string
	Status        string
}

// SetStatus applies the unchecked manual transition policy: any participant
// may move to any status. Exactly one status_changed event is appended and
// no cascade scan runs, even when the new status is confirmed. Manual
// confirmations are operator bookkeeping, not verified responses.
func (s *Service) SetStatus(ctx context.Context, input SetStatusInput) (Participant, error) {
	if s == nil || s.store == nil {
		return Participant{}, ErrStoreNotConfigured
	}
	status, ok := ParseStatus(input.Status)
	if !ok {
		return Participant{}, apperrors.WithMetadata(apperrors.CodeStatusInvalid, "invalid status label "+strings.TrimSpace(input.Status), map[string]string{"status": input.Status})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, err := s.getParticipant(ctx, input.ParticipantID)
	if err != nil {
		return Participant{}, err
	}

	eventID, err := s.nextID()
	if err != nil {
		return Participant{}, err
	}
	now := s.nowUTC()
	from := participant.Status
	participant.Status = status
	participant.UpdatedAt = now

	event, err := NewStatusChangedEvent(eventID, participant.ID, from, status, now)
	if err != nil {
		return Participant{}, err
	}
	if err := s.store.Apply(ctx, ChangeSet{
		Participants: []Participant{participant},
		Events:       []Event{event},
	}); err != nil {
		return Participant{}, err
	}
	s.notifyChanged()
	return participant, nil
}

// ClassifyResponseInput identifies a classification-driven transition.
type ClassifyResponseInput struct {
	ParticipantID  string
	Classification string
	// Snippet is the response excerpt stored on the participant and event.
	Snippet string
}

// ClassifyResponseResult reports what a classified response changed.
type ClassifyResponseResult struct {
	Participant Participant
	// Applied is false for unclear classifications, which change nothing.
	Applied bool
	// Event is the appended response_detected record when Applied.
	Event Event
	// Unlocked lists participants that received a dependency_unlocked
	// event, in roster order.
	Unlocked []string
}

// ClassifyResponse applies the checked transition policy for a verified
// external response. Unclear classifications change nothing and append
// nothing. A confirmed classification additionally scans the roster and
// appends one dependency_unlocked event per participant whose full
// prerequisite set just became confirmed; unlocked participants keep status
// not_started until an operator acts.
func (s *Service) ClassifyResponse(ctx context.Context, input ClassifyResponseInput) (ClassifyResponseResult, error) {
	if s == nil || s.store == nil {
		return ClassifyResponseResult{}, ErrStoreNotConfigured
	}
	classification, ok := ParseClassification(input.Classification)
	if !ok {
		return ClassifyResponseResult{}, apperrors.WithMetadata(apperrors.CodeClassificationInvalid, "invalid classification label "+strings.TrimSpace(input.Classification), map[string]string{"classification": input.Classification})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, err := s.getParticipant(ctx, input.ParticipantID)
	if err != nil {
		return ClassifyResponseResult{}, err
	}

	if classification == ClassificationUnclear {
		return ClassifyResponseResult{Participant: participant}, nil
	}

	status, _ := statusForClassification(classification)
	now := s.nowUTC()
	participant.Status = status
	participant.LastClassification = classification
	participant.LastSnippet = input.Snippet
	participant.LastResponseAt = now
	participant.UpdatedAt = now

	eventID, err := s.nextID()
	if err != nil {
		return ClassifyResponseResult{}, err
	}
	responseEvent, err := NewResponseDetectedEvent(eventID, participant.ID, classification, input.Snippet, now)
	if err != nil {
		return ClassifyResponseResult{}, err
	}

	change := ChangeSet{
		Participants: []Participant{participant},
		Events:       []Event{responseEvent},
	}

	var unlocked []string
	if status == StatusConfirmed {
		unlockEvents, unlockedIDs, err := s.cascade(ctx, participant, now)
		if err != nil {
			return ClassifyResponseResult{}, err
		}
		change.Events = append(change.Events, unlockEvents...)
		unlocked = unlockedIDs
	}

	if err := s.store.Apply(ctx, change); err != nil {
		return ClassifyResponseResult{}, err
	}
	s.notifyChanged()
	return ClassifyResponseResult{
		Participant: participant,
		Applied:     true,
		Event:       responseEvent,
		Unlocked:    unlocked,
	}, nil
}

// cascade scans the roster for participants unblocked by the confirmation of
// trigger. The snapshot is overlaid with the not-yet-committed trigger
// update so depsMet sees the confirmation that caused the scan.
func (s *Service) cascade(ctx context.Context, trigger Participant, now time.Time) ([]Event, []string, error) {
	roster, err := s.store.ListParticipants(ctx)
	if err != nil {
		return nil, nil, err
	}
	byID := IndexByID(roster)
	byID[trigger.ID] = trigger

	var events []Event
	var unlocked []string
	for _, candidate := range roster {
		if candidate.ID == trigger.ID {
			continue
		}
		if !candidate.DependsOn(trigger.ID) {
			continue
		}
		if candidate.Status != StatusNotStarted {
			continue
		}
		if !DepsMet(byID, candidate) {
			continue
		}
		eventID, err := s.nextID()
		if err != nil {
			return nil, nil, err
		}
		event, err := NewDependencyUnlockedEvent(eventID, candidate.ID, trigger.ID, candidate.Dependencies, now)
		if err != nil {
			return nil, nil, err
		}
		events = append(events, event)
		unlocked = append(unlocked, candidate.ID)
	}
	return events, unlocked, nil
}

// AttachDraftInput stores generated draft content on a participant.
type AttachDraftInput struct {
	ParticipantID string
	Subject       string
	Body          string
	FollowUp      bool
	// Source names the generator that produced the draft ("openai" or
	// "template").
	Source string
}

// AttachDraft records a generated draft and appends the matching
// draft_generated or follow_up_generated event. The participant's status is
// not advanced; review and approval stay with the operator.
func (s *Service) AttachDraft(ctx context.Context, input AttachDraftInput) (Participant, Event, error) {
	if s == nil || s.store == nil {
		return Participant{}, Event{}, ErrStoreNotConfigured
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, err := s.getParticipant(ctx, input.ParticipantID)
	if err != nil {
		return Participant{}, Event{}, err
	}

	now := s.nowUTC()
	participant.Draft = &Draft{
		Subject:     strings.TrimSpace(input.Subject),
		Body:        input.Body,
		FollowUp:    input.FollowUp,
		Source:      strings.TrimSpace(input.Source),
		GeneratedAt: now,
	}
	participant.UpdatedAt = now

	eventID, err := s.nextID()
	if err != nil {
		return Participant{}, Event{}, err
	}
	var event Event
	if input.FollowUp {
		event, err = NewFollowUpGeneratedEvent(eventID, participant.ID, participant.Draft.Subject, participant.Draft.Source, participant.LastClassification, now)
	} else {
		event, err = NewDraftGeneratedEvent(eventID, participant.ID, participant.Draft.Subject, participant.Draft.Source, now)
	}
	if err != nil {
		return Participant{}, Event{}, err
	}

	if err := s.store.Apply(ctx, ChangeSet{
		Participants: []Participant{participant},
		Events:       []Event{event},
	}); err != nil {
		return Participant{}, Event{}, err
	}
	s.notifyChanged()
	return participant, event, nil
}

// AddEventInput describes an operator-authored log entry.
type AddEventInput struct {
	ParticipantID  string
	Kind           string
	Description    string
	RequiresAction bool
	ActionLabel    string
}

// AddEvent appends one event with a generated id and the current time. The
// log never de-duplicates; repeated appends are legitimate history.
func (s *Service) AddEvent(ctx context.Context, input AddEventInput) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	kind, ok := ParseKind(input.Kind)
	if !ok {
		return Event{}, apperrors.WithMetadata(apperrors.CodeEventInvalidKind, "invalid event kind "+strings.TrimSpace(input.Kind), map[string]string{"kind": input.Kind})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	participant, err := s.getParticipant(ctx, input.ParticipantID)
	if err != nil {
		return Event{}, err
	}

	eventID, err := s.nextID()
	if err != nil {
		return Event{}, err
	}
	event := Event{
		ID:             eventID,
		ParticipantID:  participant.ID,
		Kind:           kind,
		Description:    strings.TrimSpace(input.Description),
		Timestamp:      s.nowUTC(),
		RequiresAction: input.RequiresAction,
		ActionLabel:    strings.TrimSpace(input.ActionLabel),
	}
	if err := s.store.Apply(ctx, ChangeSet{Events: []Event{event}}); err != nil {
		return Event{}, err
	}
	s.notifyChanged()
	return event, nil
}

// DismissEvent clears the requires-action flag. The record itself stays in
// the log and remains queryable.
func (s *Service) DismissEvent(ctx context.Context, eventID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return Event{}, ErrEventNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.store.DismissEvent(ctx, eventID, s.nowUTC())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "unknown event id "+eventID, map[string]string{"event_id": eventID})
		}
		return Event{}, err
	}
	s.notifyChanged()
	return event, nil
}

// PendingActions lists events still awaiting an operator, newest first.
func (s *Service) PendingActions(ctx context.Context) ([]Event, error) {
	if s == nil || s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	return s.store.ListPendingActions(ctx)
}

// Event returns one log record by id.
func (s *Service) Event(ctx context.Context, eventID string) (Event, error) {
	if s == nil || s.store == nil {
		return Event{}, ErrStoreNotConfigured
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return Event{}, ErrEventNotFound
	}
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Event{}, apperrors.WithMetadata(apperrors.CodeEventNotFound, "unknown event id "+eventID, map[string]string{"event_id": eventID})
		}
		return Event{}, err
	}
	return event, nil
}

// ListEvents pages through the log, newest first, optionally filtered.
func (s *Service) ListEvents(ctx context.Context, query EventQuery) (EventPage, error) {
	if s == nil || s.store == nil {
		return EventPage{}, ErrStoreNotConfigured
	}
	query.PageSize = pagination.ClampPageSize(int32(query.PageSize), pagination.PageSizeConfig{
		Default: defaultPageSize,
		Max:     maxPageSize,
	})
	query.Filter = strings.TrimSpace(query.Filter)
	query.PageToken = strings.TrimSpace(query.PageToken)
	return s.store.ListEvents(ctx, query)
}

func (s *Service) getParticipant(ctx context.Context, participantID string) (Participant, error) {
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return Participant{}, ErrUnknownParticipant
	}
	participant, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Participant{}, apperrors.WithMetadata(apperrors.CodeParticipantUnknown, "unknown participant id "+participantID, map[string]string{"participant_id": participantID})
		}
		return Participant{}, err
	}
	return participant, nil
}

func (s *Service) nextID() (string, error) {
	if s.newID == nil {
		return "", ErrIDGeneratorNotConfigured
	}
	return s.newID()
}

func (s *Service) nowUTC() time.Time {
	if s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}
