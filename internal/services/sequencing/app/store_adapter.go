package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"sequent.dev/internal/services/sequencing/domain"
	"sequent.dev/internal/services/sequencing/storage"
)

// storeAdapter exposes a storage.Store as the domain persistence boundary,
// converting between storage records and domain types.
type storeAdapter struct {
	store storage.Store
}

func newStoreAdapter(store storage.Store) *storeAdapter {
	return &storeAdapter{store: store}
}

func (a *storeAdapter) CountParticipants(ctx context.Context) (int, error) {
	if a == nil || a.store == nil {
		return 0, domain.ErrStoreNotConfigured
	}
	count, err := a.store.CountParticipants(ctx)
	if err != nil {
		return 0, mapStorageError(err)
	}
	return count, nil
}

func (a *storeAdapter) SeedParticipants(ctx context.Context, participants []domain.Participant) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	records := make([]storage.ParticipantRecord, 0, len(participants))
	for _, participant := range participants {
		record, err := toStorageParticipant(participant)
		if err != nil {
			return err
		}
		records = append(records, record)
	}
	return mapStorageError(a.store.SeedParticipants(ctx, records))
}

func (a *storeAdapter) GetParticipant(ctx context.Context, participantID string) (domain.Participant, error) {
	if a == nil || a.store == nil {
		return domain.Participant{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.Participant{}, mapStorageError(err)
	}
	return toDomainParticipant(record)
}

func (a *storeAdapter) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.store.ListParticipants(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	participants := make([]domain.Participant, 0, len(records))
	for _, record := range records {
		participant, err := toDomainParticipant(record)
		if err != nil {
			return nil, err
		}
		participants = append(participants, participant)
	}
	return participants, nil
}

func (a *storeAdapter) Apply(ctx context.Context, change domain.ChangeSet) error {
	if a == nil || a.store == nil {
		return domain.ErrStoreNotConfigured
	}
	participants := make([]storage.ParticipantRecord, 0, len(change.Participants))
	for _, participant := range change.Participants {
		record, err := toStorageParticipant(participant)
		if err != nil {
			return err
		}
		participants = append(participants, record)
	}
	events := make([]storage.EventRecord, 0, len(change.Events))
	for _, event := range change.Events {
		events = append(events, toStorageEvent(event))
	}
	return mapStorageError(a.store.ApplyChange(ctx, participants, events))
}

func (a *storeAdapter) GetEvent(ctx context.Context, eventID string) (domain.Event, error) {
	if a == nil || a.store == nil {
		return domain.Event{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, mapStorageError(err)
	}
	return toDomainEvent(record), nil
}

func (a *storeAdapter) ListEvents(ctx context.Context, query domain.EventQuery) (domain.EventPage, error) {
	if a == nil || a.store == nil {
		return domain.EventPage{}, domain.ErrStoreNotConfigured
	}
	page, err := a.store.ListEvents(ctx, storage.EventQuery{
		Filter:    query.Filter,
		PageSize:  query.PageSize,
		PageToken: query.PageToken,
	})
	if err != nil {
		return domain.EventPage{}, mapStorageError(err)
	}
	result := domain.EventPage{
		Events:        make([]domain.Event, 0, len(page.Events)),
		NextPageToken: page.NextPageToken,
	}
	for _, record := range page.Events {
		result.Events = append(result.Events, toDomainEvent(record))
	}
	return result, nil
}

func (a *storeAdapter) ListPendingActions(ctx context.Context) ([]domain.Event, error) {
	if a == nil || a.store == nil {
		return nil, domain.ErrStoreNotConfigured
	}
	records, err := a.store.ListPendingActions(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	events := make([]domain.Event, 0, len(records))
	for _, record := range records {
		events = append(events, toDomainEvent(record))
	}
	return events, nil
}

func (a *storeAdapter) DismissEvent(ctx context.Context, eventID string, dismissedAt time.Time) (domain.Event, error) {
	if a == nil || a.store == nil {
		return domain.Event{}, domain.ErrStoreNotConfigured
	}
	record, err := a.store.DismissEvent(ctx, eventID, dismissedAt)
	if err != nil {
		return domain.Event{}, mapStorageError(err)
	}
	return toDomainEvent(record), nil
}

func toStorageParticipant(participant domain.Participant) (storage.ParticipantRecord, error) {
	dependencies, err := encodeDependencies(participant.Dependencies)
	if err != nil {
		return storage.ParticipantRecord{}, err
	}
	record := storage.ParticipantRecord{
		ID:                 participant.ID,
		Name:               participant.Name,
		Organization:       participant.Organization,
		Email:              participant.Email,
		Phase:              participant.Phase,
		Track:              participant.Track,
		OrderIndex:         participant.OrderIndex,
		Status:             string(participant.Status),
		DependenciesJSON:   dependencies,
		LeverageNote:       participant.LeverageNote,
		LastClassification: string(participant.LastClassification),
		LastSnippet:        participant.LastSnippet,
		LastResponseAt:     participant.LastResponseAt,
		CreatedAt:          participant.CreatedAt,
		UpdatedAt:          participant.UpdatedAt,
	}
	if participant.Draft != nil {
		record.DraftSubject = participant.Draft.Subject
		record.DraftBody = participant.Draft.Body
		record.DraftFollowUp = participant.Draft.FollowUp
		record.DraftSource = participant.Draft.Source
		record.DraftGeneratedAt = participant.Draft.GeneratedAt
	}
	return record, nil
}

func toDomainParticipant(record storage.ParticipantRecord) (domain.Participant, error) {
	dependencies, err := decodeDependencies(record.DependenciesJSON)
	if err != nil {
		return domain.Participant{}, fmt.Errorf("decode dependencies for participant %s: %w", record.ID, err)
	}
	participant := domain.Participant{
		ID:                 record.ID,
		Name:               record.Name,
		Organization:       record.Organization,
		Email:              record.Email,
		Phase:              record.Phase,
		Track:              record.Track,
		OrderIndex:         record.OrderIndex,
		Status:             domain.Status(record.Status),
		Dependencies:       dependencies,
		LeverageNote:       record.LeverageNote,
		LastClassification: domain.Classification(record.LastClassification),
		LastSnippet:        record.LastSnippet,
		LastResponseAt:     record.LastResponseAt,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
	}
	if !record.DraftGeneratedAt.IsZero() {
		participant.Draft = &domain.Draft{
			Subject:     record.DraftSubject,
			Body:        record.DraftBody,
			FollowUp:    record.DraftFollowUp,
			Source:      record.DraftSource,
			GeneratedAt: record.DraftGeneratedAt,
		}
	}
	return participant, nil
}

func toStorageEvent(event domain.Event) storage.EventRecord {
	return storage.EventRecord{
		ID:             event.ID,
		Seq:            event.Seq,
		ParticipantID:  event.ParticipantID,
		Kind:           string(event.Kind),
		Description:    event.Description,
		CreateTime:     event.Timestamp,
		RequiresAction: event.RequiresAction,
		ActionLabel:    event.ActionLabel,
		DismissedAt:    event.DismissedAt,
		PayloadJSON:    string(event.PayloadJSON),
	}
}

func toDomainEvent(record storage.EventRecord) domain.Event {
	return domain.Event{
		ID:             record.ID,
		Seq:            record.Seq,
		ParticipantID:  record.ParticipantID,
		Kind:           domain.Kind(record.Kind),
		Description:    record.Description,
		Timestamp:      record.CreateTime,
		RequiresAction: record.RequiresAction,
		ActionLabel:    record.ActionLabel,
		DismissedAt:    record.DismissedAt,
		PayloadJSON:    []byte(record.PayloadJSON),
	}
}

func encodeDependencies(dependencies []string) (string, error) {
	if len(dependencies) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(dependencies)
	if err != nil {
		return "", fmt.Errorf("encode dependencies: %w", err)
	}
	return string(data), nil
}

func decodeDependencies(encoded string) ([]string, error) {
	if strings.TrimSpace(encoded) == "" {
		return nil, nil
	}
	var dependencies []string
	if err := json.Unmarshal([]byte(encoded), &dependencies); err != nil {
		return nil, err
	}
	if len(dependencies) == 0 {
		return nil, nil
	}
	return dependencies, nil
}

func mapStorageError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return domain.ErrNotFound
	case errors.Is(err, storage.ErrConflict):
		return domain.ErrConflict
	default:
		return err
	}
}
