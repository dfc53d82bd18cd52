package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"sequent.dev/internal/services/sequencing/storage"
)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenConfiguresConnectionPragmas(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)

	var journalMode string
	if err := store.sqlDB.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Fatalf("journal_mode = %q, want wal", journalMode)
	}

	var busyTimeout int
	if err := store.sqlDB.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout); err != nil {
		t.Fatalf("query busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Fatalf("busy_timeout = %d, want 5000", busyTimeout)
	}
}

func TestSeedListAndGetParticipants(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	if err := store.SeedParticipants(context.Background(), []storage.ParticipantRecord{
		{
			ID:               "workshop-lead",
			Name:             "Workshop Lead",
			Phase:            "phase-2",
			OrderIndex:       2,
			Status:           "not_started",
			DependenciesJSON: `["keynote-anchor"]`,
			CreatedAt:        now,
			UpdatedAt:        now,
		},
		{
			ID:         "keynote-anchor",
			Name:       "Keynote Anchor",
			Phase:      "phase-1",
			OrderIndex: 1,
			Status:     "not_started",
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}); err != nil {
		t.Fatalf("seed participants: %v", err)
	}

	count, err := store.CountParticipants(context.Background())
	if err != nil {
		t.Fatalf("count participants: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}

	roster, err := store.ListParticipants(context.Background())
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(roster) != 2 {
		t.Fatalf("roster size = %d, want 2", len(roster))
	}
	if roster[0].ID != "keynote-anchor" || roster[1].ID != "workshop-lead" {
		t.Fatalf("roster order = [%s %s], want seed order", roster[0].ID, roster[1].ID)
	}

	got, err := store.GetParticipant(context.Background(), "workshop-lead")
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if got.DependenciesJSON != `["keynote-anchor"]` {
		t.Fatalf("dependencies json = %q", got.DependenciesJSON)
	}
	if !got.LastResponseAt.IsZero() {
		t.Fatalf("last response at = %v, want zero", got.LastResponseAt)
	}
	if !got.DraftGeneratedAt.IsZero() {
		t.Fatalf("draft generated at = %v, want zero", got.DraftGeneratedAt)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("created at = %v, want %v", got.CreatedAt, now)
	}

	if _, err := store.GetParticipant(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing participant err = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestSeedParticipantsRollsBackOnConflict(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)

	err := store.SeedParticipants(context.Background(), []storage.ParticipantRecord{
		{ID: "dup", Name: "First", Status: "not_started", CreatedAt: now, UpdatedAt: now},
		{ID: "dup", Name: "Second", Status: "not_started", CreatedAt: now, UpdatedAt: now},
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	count, err := store.CountParticipants(context.Background())
	if err != nil {
		t.Fatalf("count participants: %v", err)
	}
	if count != 0 {
		t.Fatalf("count after rollback = %d, want 0", count)
	}
}

func TestApplyChangeUpdatesAndAppends(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	seedParticipant(t, store, "keynote-anchor", now)

	updated := mustGetParticipant(t, store, "keynote-anchor")
	updated.Status = "sent"
	updated.UpdatedAt = now.Add(time.Minute)

	if err := store.ApplyChange(context.Background(), []storage.ParticipantRecord{updated}, []storage.EventRecord{
		{
			ID:            "evt-1",
			ParticipantID: "keynote-anchor",
			Kind:          "status_changed",
			Description:   "not_started -> sent",
			CreateTime:    now.Add(time.Minute),
		},
	}); err != nil {
		t.Fatalf("apply change: %v", err)
	}

	got := mustGetParticipant(t, store, "keynote-anchor")
	if got.Status != "sent" {
		t.Fatalf("status = %q, want sent", got.Status)
	}

	event, err := store.GetEvent(context.Background(), "evt-1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if event.Seq == 0 {
		t.Fatal("expected assigned seq")
	}
	if event.PayloadJSON != "{}" {
		t.Fatalf("payload json = %q, want {}", event.PayloadJSON)
	}
	if !event.CreateTime.Equal(now.Add(time.Minute)) {
		t.Fatalf("create time = %v", event.CreateTime)
	}
}

func TestApplyChangeRollsBackOnEventConflict(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 10, 10, 0, 0, time.UTC)
	seedParticipant(t, store, "keynote-anchor", now)

	if err := store.ApplyChange(context.Background(), nil, []storage.EventRecord{
		{ID: "evt-dup", ParticipantID: "keynote-anchor", Kind: "status_changed", CreateTime: now},
	}); err != nil {
		t.Fatalf("apply first change: %v", err)
	}

	updated := mustGetParticipant(t, store, "keynote-anchor")
	updated.Status = "confirmed"
	updated.UpdatedAt = now.Add(time.Minute)

	err := store.ApplyChange(context.Background(), []storage.ParticipantRecord{updated}, []storage.EventRecord{
		{ID: "evt-dup", ParticipantID: "keynote-anchor", Kind: "status_changed", CreateTime: now.Add(time.Minute)},
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	got := mustGetParticipant(t, store, "keynote-anchor")
	if got.Status != "not_started" {
		t.Fatalf("status after rollback = %q, want not_started", got.Status)
	}
}

func TestApplyChangeRejectsEventForMissingParticipant(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 10, 20, 0, 0, time.UTC)

	err := store.ApplyChange(context.Background(), nil, []storage.EventRecord{
		{ID: "evt-orphan", ParticipantID: "missing", Kind: "status_changed", CreateTime: now},
	})
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict for missing participant parent, got %v", err)
	}
}

func TestApplyChangeRejectsUpdateForMissingParticipant(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 10, 25, 0, 0, time.UTC)

	err := store.ApplyChange(context.Background(), []storage.ParticipantRecord{
		{ID: "missing", Name: "Ghost", Status: "sent", CreatedAt: now, UpdatedAt: now},
	}, nil)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListEventsPaginatesNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	seedParticipant(t, store, "keynote-anchor", now)

	for i, id := range []string{"evt-1", "evt-2", "evt-3"} {
		if err := store.ApplyChange(context.Background(), nil, []storage.EventRecord{
			{
				ID:            id,
				ParticipantID: "keynote-anchor",
				Kind:          "note_added",
				CreateTime:    now.Add(time.Duration(i) * time.Minute),
			},
		}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	pageOne, err := store.ListEvents(context.Background(), storage.EventQuery{PageSize: 2})
	if err != nil {
		t.Fatalf("list page one: %v", err)
	}
	if len(pageOne.Events) != 2 {
		t.Fatalf("page one size = %d, want 2", len(pageOne.Events))
	}
	if pageOne.Events[0].ID != "evt-3" || pageOne.Events[1].ID != "evt-2" {
		t.Fatalf("page one order = [%s %s], want newest first", pageOne.Events[0].ID, pageOne.Events[1].ID)
	}
	if pageOne.NextPageToken == "" {
		t.Fatal("expected next page token")
	}

	pageTwo, err := store.ListEvents(context.Background(), storage.EventQuery{PageSize: 2, PageToken: pageOne.NextPageToken})
	if err != nil {
		t.Fatalf("list page two: %v", err)
	}
	if len(pageTwo.Events) != 1 {
		t.Fatalf("page two size = %d, want 1", len(pageTwo.Events))
	}
	if pageTwo.Events[0].ID != "evt-1" {
		t.Fatalf("page two id = %q, want evt-1", pageTwo.Events[0].ID)
	}
	if pageTwo.NextPageToken != "" {
		t.Fatalf("page two next page token = %q, want empty", pageTwo.NextPageToken)
	}

	stale, err := store.ListEvents(context.Background(), storage.EventQuery{PageSize: 2, PageToken: "unknown-token"})
	if err != nil {
		t.Fatalf("list with stale token: %v", err)
	}
	if len(stale.Events) != 0 || stale.NextPageToken != "" {
		t.Fatalf("stale token page = %+v, want empty", stale)
	}
}

func TestListEventsAppliesFilter(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 11, 30, 0, 0, time.UTC)
	seedParticipant(t, store, "keynote-anchor", now)
	seedParticipant(t, store, "panel-star", now)

	if err := store.ApplyChange(context.Background(), nil, []storage.EventRecord{
		{ID: "evt-a", ParticipantID: "keynote-anchor", Kind: "status_changed", CreateTime: now},
		{ID: "evt-b", ParticipantID: "panel-star", Kind: "dependency_unlocked", RequiresAction: true, ActionLabel: "Generate draft", CreateTime: now.Add(time.Minute)},
		{ID: "evt-c", ParticipantID: "keynote-anchor", Kind: "note_added", CreateTime: now.Add(2 * time.Minute)},
	}); err != nil {
		t.Fatalf("append events: %v", err)
	}

	byParticipant, err := store.ListEvents(context.Background(), storage.EventQuery{
		Filter:   `participant_id = "keynote-anchor"`,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("list by participant: %v", err)
	}
	if len(byParticipant.Events) != 2 {
		t.Fatalf("participant filter size = %d, want 2", len(byParticipant.Events))
	}

	actionable, err := store.ListEvents(context.Background(), storage.EventQuery{
		Filter:   `requires_action = true AND kind = "dependency_unlocked"`,
		PageSize: 10,
	})
	if err != nil {
		t.Fatalf("list actionable: %v", err)
	}
	if len(actionable.Events) != 1 || actionable.Events[0].ID != "evt-b" {
		t.Fatalf("actionable filter = %+v, want evt-b", actionable.Events)
	}

	if _, err := store.ListEvents(context.Background(), storage.EventQuery{
		Filter:   `bogus = "x"`,
		PageSize: 10,
	}); err == nil {
		t.Fatal("expected error for unknown filter field")
	}
}

func TestListPendingActionsAndDismiss(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	seedParticipant(t, store, "keynote-anchor", now)

	if err := store.ApplyChange(context.Background(), nil, []storage.EventRecord{
		{ID: "evt-action", ParticipantID: "keynote-anchor", Kind: "dependency_unlocked", RequiresAction: true, ActionLabel: "Generate draft", CreateTime: now},
		{ID: "evt-plain", ParticipantID: "keynote-anchor", Kind: "status_changed", CreateTime: now.Add(time.Minute)},
	}); err != nil {
		t.Fatalf("append events: %v", err)
	}

	pending, err := store.ListPendingActions(context.Background())
	if err != nil {
		t.Fatalf("list pending actions: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "evt-action" {
		t.Fatalf("pending = %+v, want evt-action", pending)
	}

	dismissedAt := now.Add(2 * time.Minute)
	dismissed, err := store.DismissEvent(context.Background(), "evt-action", dismissedAt)
	if err != nil {
		t.Fatalf("dismiss event: %v", err)
	}
	if !dismissed.DismissedAt.Equal(dismissedAt) {
		t.Fatalf("dismissed at = %v, want %v", dismissed.DismissedAt, dismissedAt)
	}
	if dismissed.RequiresAction {
		t.Fatal("dismissal must clear requires_action")
	}

	again, err := store.DismissEvent(context.Background(), "evt-action", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("dismiss event twice: %v", err)
	}
	if !again.DismissedAt.Equal(dismissedAt) {
		t.Fatalf("second dismiss at = %v, want original %v", again.DismissedAt, dismissedAt)
	}

	pending, err = store.ListPendingActions(context.Background())
	if err != nil {
		t.Fatalf("list pending actions after dismiss: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("pending after dismiss = %d, want 0", len(pending))
	}

	if _, err := store.DismissEvent(context.Background(), "missing", dismissedAt); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("dismiss missing err = %v, want %v", err, storage.ErrNotFound)
	}
}

func seedParticipant(t *testing.T, store *Store, id string, now time.Time) {
	t.Helper()
	if err := store.SeedParticipants(context.Background(), []storage.ParticipantRecord{
		{ID: id, Name: id, Status: "not_started", CreatedAt: now, UpdatedAt: now},
	}); err != nil {
		t.Fatalf("seed participant %s: %v", id, err)
	}
}

func mustGetParticipant(t *testing.T, store *Store, id string) storage.ParticipantRecord {
	t.Helper()
	record, err := store.GetParticipant(context.Background(), id)
	if err != nil {
		t.Fatalf("get participant %s: %v", id, err)
	}
	return record
}

func openTempStore(t *testing.T) *Store {
	t.Helper()
	storePath := filepath.Join(t.TempDir(), "sequencing.db")
	store, err := Open(storePath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := store.Close(); closeErr != nil {
			t.Fatalf("close store: %v", closeErr)
		}
	})
	return store
}
