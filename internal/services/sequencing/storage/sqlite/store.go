package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "sequent.dev/internal/platform/storage/sqlitemigrate"
	"sequent.dev/internal/services/sequencing/storage"
	"sequent.dev/internal/services/sequencing/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed persistence for sequencing state.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a sequencing SQLite store at the provided path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writers so concurrent scans and tool
	// calls queue on busy_timeout instead of surfacing SQLITE_BUSY.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureForeignKeysEnabled(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	store := &Store{sqlDB: sqlDB}
	if err := store.runMigrations(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) runMigrations() error {
	return sqlitemigrate.ApplyMigrations(s.sqlDB, migrations.FS, "")
}

func ensureForeignKeysEnabled(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite db is required")
	}
	var enabled int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled); err != nil {
		return fmt.Errorf("check sqlite foreign key pragma: %w", err)
	}
	if enabled != 1 {
		return fmt.Errorf("sqlite foreign keys are disabled")
	}
	return nil
}

// CountParticipants returns the number of seeded roster rows.
func (s *Store) CountParticipants(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	var count int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(1) FROM participants`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

// SeedParticipants inserts the initial roster in one transaction. Any
// conflict aborts the whole batch.
func (s *Store) SeedParticipants(ctx context.Context, records []storage.ParticipantRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	normalized := make([]storage.ParticipantRecord, 0, len(records))
	for _, record := range records {
		n, err := normalizeParticipantRecord(record)
		if err != nil {
			return err
		}
		normalized = append(normalized, n)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed write: %w", err)
	}
	for _, record := range normalized {
		if err := insertParticipantExec(ctx, tx, record); err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				return fmt.Errorf("%w: rollback seed write: %v", err, rollbackErr)
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed write: %w", err)
	}
	return nil
}

// GetParticipant loads one roster row by id.
func (s *Store) GetParticipant(ctx context.Context, participantID string) (storage.ParticipantRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.ParticipantRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ParticipantRecord{}, fmt.Errorf("storage is not configured")
	}
	participantID = strings.TrimSpace(participantID)
	if participantID == "" {
		return storage.ParticipantRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+participantColumns+`
FROM participants
WHERE id = ?
`, participantID)
	record, err := scanParticipant(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ParticipantRecord{}, storage.ErrNotFound
		}
		return storage.ParticipantRecord{}, fmt.Errorf("get participant: %w", err)
	}
	return record, nil
}

// ListParticipants lists the roster in seed order.
func (s *Store) ListParticipants(ctx context.Context) ([]storage.ParticipantRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+participantColumns+`
FROM participants
ORDER BY order_index ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	records := make([]storage.ParticipantRecord, 0)
	for rows.Next() {
		record, scanErr := scanParticipant(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan participant row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participant rows: %w", err)
	}
	return records, nil
}

// ApplyChange commits participant updates and event appends in one
// transaction. Durability is established before the call returns.
func (s *Store) ApplyChange(ctx context.Context, participants []storage.ParticipantRecord, events []storage.EventRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	normalizedParticipants := make([]storage.ParticipantRecord, 0, len(participants))
	for _, record := range participants {
		n, err := normalizeParticipantRecord(record)
		if err != nil {
			return err
		}
		normalizedParticipants = append(normalizedParticipants, n)
	}
	normalizedEvents := make([]storage.EventRecord, 0, len(events))
	for _, record := range events {
		n, err := normalizeEventRecord(record)
		if err != nil {
			return err
		}
		normalizedEvents = append(normalizedEvents, n)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin change write: %w", err)
	}
	rollbackWith := func(cause error) error {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return fmt.Errorf("%w: rollback change write: %v", cause, rollbackErr)
		}
		return cause
	}

	for _, record := range normalizedParticipants {
		if err := updateParticipantExec(ctx, tx, record); err != nil {
			return rollbackWith(err)
		}
	}
	for _, record := range normalizedEvents {
		if err := appendEventExec(ctx, tx, record); err != nil {
			return rollbackWith(err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit change write: %w", err)
	}
	return nil
}

// GetEvent loads one event row by id.
func (s *Store) GetEvent(ctx context.Context, eventID string) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EventRecord{}, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, storage.ErrNotFound
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT `+eventColumns+`
FROM automation_events
WHERE id = ?
`, eventID)
	record, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.EventRecord{}, storage.ErrNotFound
		}
		return storage.EventRecord{}, fmt.Errorf("get event: %w", err)
	}
	return record, nil
}

// ListEvents lists event rows newest-first with keyset pagination and an
// optional AIP-160 filter.
func (s *Store) ListEvents(ctx context.Context, query storage.EventQuery) (storage.EventPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EventPage{}, fmt.Errorf("storage is not configured")
	}
	if query.PageSize <= 0 {
		return storage.EventPage{}, fmt.Errorf("page size must be greater than zero")
	}

	condition, err := ParseEventFilter(query.Filter)
	if err != nil {
		return storage.EventPage{}, err
	}

	clauses := make([]string, 0, 2)
	params := make([]any, 0, len(condition.Params)+1)
	if condition.Clause != "" {
		clauses = append(clauses, condition.Clause)
		params = append(params, condition.Params...)
	}

	pageToken := strings.TrimSpace(query.PageToken)
	if pageToken != "" {
		tokenSeq, err := s.eventSeqByID(ctx, pageToken)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return storage.EventPage{}, nil
			}
			return storage.EventPage{}, err
		}
		clauses = append(clauses, "seq < ?")
		params = append(params, tokenSeq)
	}

	querySQL := `
SELECT ` + eventColumns + `
FROM automation_events
`
	if len(clauses) > 0 {
		querySQL += "WHERE " + strings.Join(clauses, " AND ") + "\n"
	}
	querySQL += "ORDER BY seq DESC\nLIMIT ?"
	params = append(params, query.PageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, querySQL, params...)
	if err != nil {
		return storage.EventPage{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	return collectEventPage(rows, query.PageSize)
}

// ListPendingActions lists undismissed requires-action events newest-first.
func (s *Store) ListPendingActions(ctx context.Context) ([]storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT `+eventColumns+`
FROM automation_events
WHERE requires_action = 1
  AND dismissed_at IS NULL
ORDER BY seq DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list pending actions: %w", err)
	}
	defer rows.Close()

	records := make([]storage.EventRecord, 0)
	for rows.Next() {
		record, scanErr := scanEvent(rows.Scan)
		if scanErr != nil {
			return nil, fmt.Errorf("scan pending action row: %w", scanErr)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending action rows: %w", err)
	}
	return records, nil
}

// DismissEvent stamps dismissed_at on one event row. A second dismissal
// keeps the original timestamp.
func (s *Store) DismissEvent(ctx context.Context, eventID string, dismissedAt time.Time) (storage.EventRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.EventRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.EventRecord{}, fmt.Errorf("storage is not configured")
	}
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return storage.EventRecord{}, storage.ErrNotFound
	}
	if dismissedAt.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("dismissed at is required")
	}

	result, err := s.sqlDB.ExecContext(ctx, `
UPDATE automation_events
SET requires_action = 0, dismissed_at = COALESCE(dismissed_at, ?)
WHERE id = ?
`, toMillis(dismissedAt), eventID)
	if err != nil {
		return storage.EventRecord{}, fmt.Errorf("dismiss event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return storage.EventRecord{}, fmt.Errorf("dismiss event rows affected: %w", err)
	}
	if affected == 0 {
		return storage.EventRecord{}, storage.ErrNotFound
	}
	return s.GetEvent(ctx, eventID)
}

func (s *Store) eventSeqByID(ctx context.Context, eventID string) (int64, error) {
	row := s.sqlDB.QueryRowContext(ctx, `
SELECT seq
FROM automation_events
WHERE id = ?
`, eventID)
	var seq int64
	if err := row.Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("lookup event cursor: %w", err)
	}
	return seq, nil
}

const participantColumns = `id, name, organization, email, phase, track, order_index, status, dependencies_json, leverage_note, last_classification, last_snippet, last_response_at, draft_subject, draft_body, draft_follow_up, draft_source, draft_generated_at, created_at, updated_at`

const eventColumns = `seq, id, participant_id, kind, description, create_time, requires_action, action_label, dismissed_at, payload_json`

type scanner func(dest ...any) error

type sqlExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func normalizeParticipantRecord(record storage.ParticipantRecord) (storage.ParticipantRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.Name = strings.TrimSpace(record.Name)
	record.Email = strings.TrimSpace(record.Email)
	record.Status = strings.TrimSpace(record.Status)
	if record.DependenciesJSON == "" {
		record.DependenciesJSON = "[]"
	}
	if record.ID == "" {
		return storage.ParticipantRecord{}, fmt.Errorf("participant id is required")
	}
	if record.Name == "" {
		return storage.ParticipantRecord{}, fmt.Errorf("participant name is required")
	}
	if record.Status == "" {
		return storage.ParticipantRecord{}, fmt.Errorf("participant status is required")
	}
	if record.CreatedAt.IsZero() {
		return storage.ParticipantRecord{}, fmt.Errorf("created_at is required")
	}
	if record.UpdatedAt.IsZero() {
		return storage.ParticipantRecord{}, fmt.Errorf("updated_at is required")
	}
	record.CreatedAt = record.CreatedAt.UTC()
	record.UpdatedAt = record.UpdatedAt.UTC()
	if !record.LastResponseAt.IsZero() {
		record.LastResponseAt = record.LastResponseAt.UTC()
	}
	if !record.DraftGeneratedAt.IsZero() {
		record.DraftGeneratedAt = record.DraftGeneratedAt.UTC()
	}
	return record, nil
}

func normalizeEventRecord(record storage.EventRecord) (storage.EventRecord, error) {
	record.ID = strings.TrimSpace(record.ID)
	record.ParticipantID = strings.TrimSpace(record.ParticipantID)
	record.Kind = strings.TrimSpace(record.Kind)
	record.PayloadJSON = strings.TrimSpace(record.PayloadJSON)
	if record.PayloadJSON == "" {
		record.PayloadJSON = "{}"
	}
	if record.ID == "" {
		return storage.EventRecord{}, fmt.Errorf("event id is required")
	}
	if record.ParticipantID == "" {
		return storage.EventRecord{}, fmt.Errorf("event participant id is required")
	}
	if record.Kind == "" {
		return storage.EventRecord{}, fmt.Errorf("event kind is required")
	}
	if record.CreateTime.IsZero() {
		return storage.EventRecord{}, fmt.Errorf("event create time is required")
	}
	record.CreateTime = record.CreateTime.UTC()
	if !record.DismissedAt.IsZero() {
		record.DismissedAt = record.DismissedAt.UTC()
	}
	return record, nil
}

func insertParticipantExec(ctx context.Context, execer sqlExecer, record storage.ParticipantRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO participants (
		`+participantColumns+`
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, participantArgs(record)...)
	if err != nil {
		if isUniqueConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func updateParticipantExec(ctx context.Context, execer sqlExecer, record storage.ParticipantRecord) error {
	result, err := execer.ExecContext(ctx, `
	UPDATE participants SET
		name = ?,
		organization = ?,
		email = ?,
		phase = ?,
		track = ?,
		order_index = ?,
		status = ?,
		dependencies_json = ?,
		leverage_note = ?,
		last_classification = ?,
		last_snippet = ?,
		last_response_at = ?,
		draft_subject = ?,
		draft_body = ?,
		draft_follow_up = ?,
		draft_source = ?,
		draft_generated_at = ?,
		created_at = ?,
		updated_at = ?
	WHERE id = ?
	`,
		record.Name,
		record.Organization,
		record.Email,
		record.Phase,
		record.Track,
		record.OrderIndex,
		record.Status,
		record.DependenciesJSON,
		record.LeverageNote,
		record.LastClassification,
		record.LastSnippet,
		nullableMillis(record.LastResponseAt),
		record.DraftSubject,
		record.DraftBody,
		boolToInt(record.DraftFollowUp),
		record.DraftSource,
		nullableMillis(record.DraftGeneratedAt),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update participant rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func appendEventExec(ctx context.Context, execer sqlExecer, record storage.EventRecord) error {
	_, err := execer.ExecContext(ctx, `
	INSERT INTO automation_events (
		id, participant_id, kind, description, create_time, requires_action, action_label, dismissed_at, payload_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.ParticipantID,
		record.Kind,
		record.Description,
		toMillis(record.CreateTime),
		boolToInt(record.RequiresAction),
		record.ActionLabel,
		nullableMillis(record.DismissedAt),
		record.PayloadJSON,
	)
	if err != nil {
		if isUniqueConstraintError(err) || isForeignKeyConstraintError(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

func participantArgs(record storage.ParticipantRecord) []any {
	return []any{
		record.ID,
		record.Name,
		record.Organization,
		record.Email,
		record.Phase,
		record.Track,
		record.OrderIndex,
		record.Status,
		record.DependenciesJSON,
		record.LeverageNote,
		record.LastClassification,
		record.LastSnippet,
		nullableMillis(record.LastResponseAt),
		record.DraftSubject,
		record.DraftBody,
		boolToInt(record.DraftFollowUp),
		record.DraftSource,
		nullableMillis(record.DraftGeneratedAt),
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	}
}

func scanParticipant(scan scanner) (storage.ParticipantRecord, error) {
	var record storage.ParticipantRecord
	var lastResponseAt sql.NullInt64
	var draftFollowUp int
	var draftGeneratedAt sql.NullInt64
	var createdAt int64
	var updatedAt int64
	if err := scan(
		&record.ID,
		&record.Name,
		&record.Organization,
		&record.Email,
		&record.Phase,
		&record.Track,
		&record.OrderIndex,
		&record.Status,
		&record.DependenciesJSON,
		&record.LeverageNote,
		&record.LastClassification,
		&record.LastSnippet,
		&lastResponseAt,
		&record.DraftSubject,
		&record.DraftBody,
		&draftFollowUp,
		&record.DraftSource,
		&draftGeneratedAt,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.ParticipantRecord{}, err
	}
	if lastResponseAt.Valid {
		record.LastResponseAt = fromMillis(lastResponseAt.Int64)
	}
	record.DraftFollowUp = draftFollowUp != 0
	if draftGeneratedAt.Valid {
		record.DraftGeneratedAt = fromMillis(draftGeneratedAt.Int64)
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func scanEvent(scan scanner) (storage.EventRecord, error) {
	var record storage.EventRecord
	var createTime int64
	var requiresAction int
	var dismissedAt sql.NullInt64
	if err := scan(
		&record.Seq,
		&record.ID,
		&record.ParticipantID,
		&record.Kind,
		&record.Description,
		&createTime,
		&requiresAction,
		&record.ActionLabel,
		&dismissedAt,
		&record.PayloadJSON,
	); err != nil {
		return storage.EventRecord{}, err
	}
	record.CreateTime = fromMillis(createTime)
	record.RequiresAction = requiresAction != 0
	if dismissedAt.Valid {
		record.DismissedAt = fromMillis(dismissedAt.Int64)
	}
	return record, nil
}

func collectEventPage(rows *sql.Rows, pageSize int) (storage.EventPage, error) {
	page := storage.EventPage{
		Events: make([]storage.EventRecord, 0, pageSize),
	}
	for rows.Next() {
		record, err := scanEvent(rows.Scan)
		if err != nil {
			return storage.EventPage{}, fmt.Errorf("scan event row: %w", err)
		}
		page.Events = append(page.Events, record)
	}
	if err := rows.Err(); err != nil {
		return storage.EventPage{}, fmt.Errorf("iterate event rows: %w", err)
	}
	if len(page.Events) > pageSize {
		page.NextPageToken = page.Events[pageSize-1].ID
		page.Events = page.Events[:pageSize]
	}
	return page, nil
}

func nullableMillis(value time.Time) sql.NullInt64 {
	if value.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(value), Valid: true}
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint failed")
}

func isForeignKeyConstraintError(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "foreign key constraint failed")
}
