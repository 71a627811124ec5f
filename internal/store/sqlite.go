package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/offlinekit/jobsync/internal/models"
)

// ErrNotFound is the explicit not-present result for a missing job id. It
// lets callers distinguish "confirmed absent" from a real failure.
var ErrNotFound = errors.New("job not found")

const (
	schemaVersion = 1

	schemaVersionKey = "schema_version"
	lastSyncKey      = "last_sync_at"

	// DefaultStaleAfter is how old the last successful bulk sync may be
	// before the catalog is considered stale.
	DefaultStaleAfter = time.Hour
)

const createJobsTable = `
CREATE TABLE IF NOT EXISTS jobs (
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	company         TEXT NOT NULL DEFAULT '',
	location        TEXT NOT NULL DEFAULT '',
	employment_type TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT '',
	featured        INTEGER NOT NULL DEFAULT 0,
	salary          TEXT NOT NULL DEFAULT '',
	posted_at       TEXT NOT NULL DEFAULT '',
	posted_at_raw   TEXT NOT NULL DEFAULT '',
	description     TEXT NOT NULL DEFAULT '',
	requirements    TEXT NOT NULL DEFAULT '',
	benefits        TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
)`

// Store is the durable on-device table of job records, keyed by id. The
// schema-version marker and last-sync timestamp live in the KV, outside the
// relational transaction boundary.
type Store struct {
	db  *sql.DB
	kv  *KV
	now func() time.Time
}

// Open opens (creating if absent) the SQLite database at path.
func Open(path string, kv *KV) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	return &Store{db: db, kv: kv, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Init creates the jobs table if absent and migrates when the stored schema
// version differs from the code's. Idempotent.
func (s *Store) Init(ctx context.Context) error {
	stored, err := s.kv.Get(schemaVersionKey)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if stored != "" && stored != strconv.Itoa(schemaVersion) {
		// Catalog data is fully recoverable from the remote, so migration
		// is a rebuild: drop the table and force the next sync.
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS jobs`); err != nil {
			return fmt.Errorf("drop jobs table: %w", err)
		}
		if err := s.kv.Remove(lastSyncKey); err != nil {
			return fmt.Errorf("reset last sync: %w", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, createJobsTable); err != nil {
		return fmt.Errorf("create jobs table: %w", err)
	}

	if err := s.kv.Set(schemaVersionKey, strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return nil
}

// UpsertMany inserts or replaces records by id inside a single transaction.
// Any row failure rolls back the whole batch. Empty batches are a no-op.
func (s *Store) UpsertMany(ctx context.Context, records []models.JobRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO jobs (
			id, title, company, location, employment_type, category,
			featured, salary, posted_at, posted_at_raw,
			description, requirements, benefits, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title           = excluded.title,
			company         = excluded.company,
			location        = excluded.location,
			employment_type = excluded.employment_type,
			category        = excluded.category,
			featured        = excluded.featured,
			salary          = excluded.salary,
			posted_at       = excluded.posted_at,
			posted_at_raw   = excluded.posted_at_raw,
			description     = excluded.description,
			requirements    = excluded.requirements,
			benefits        = excluded.benefits,
			updated_at      = excluded.updated_at
	`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	now := s.now().UTC()
	for _, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.ID,
			record.Title,
			record.Company,
			record.Location,
			record.EmploymentType,
			record.Category,
			boolInt(record.Featured),
			record.Salary,
			timeText(record.PostedAt),
			record.PostedAtRaw,
			record.Description,
			textListText(record.Requirements),
			textListText(record.Benefits),
			timeText(now),
			timeText(now),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert job %q: %w", record.ID, err)
		}
	}

	return tx.Commit()
}

const selectColumns = `
	id, title, company, location, employment_type, category,
	featured, salary, posted_at, posted_at_raw,
	description, requirements, benefits, created_at, updated_at`

// GetAll returns every record, featured listings first, then most recent.
func (s *Store) GetAll(ctx context.Context) ([]models.JobRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM jobs
		ORDER BY featured DESC, posted_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.JobRecord
	for rows.Next() {
		record, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetByID returns one record or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (models.JobRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM jobs
		WHERE id = ?
	`, id)

	record, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobRecord{}, ErrNotFound
	}
	if err != nil {
		return models.JobRecord{}, err
	}
	return record, nil
}

// ClearAll deletes every record. Used only for an explicit user reset.
func (s *Store) ClearAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM jobs`); err != nil {
		return err
	}
	return s.kv.Remove(lastSyncKey)
}

// LastSyncAt returns the timestamp of the last successful bulk sync, or the
// zero time when none has ever been recorded.
func (s *Store) LastSyncAt() (time.Time, error) {
	raw, err := s.kv.Get(lastSyncKey)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Time{}, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, nil
	}
	return time.UnixMilli(millis).UTC(), nil
}

func (s *Store) SetLastSyncAt(t time.Time) error {
	return s.kv.Set(lastSyncKey, strconv.FormatInt(t.UnixMilli(), 10))
}

// Stale reports whether a bulk refresh is warranted: no sync has ever been
// recorded, or the last one is older than the threshold.
func Stale(last time.Time, now time.Time, threshold time.Duration) bool {
	if last.IsZero() {
		return true
	}
	return now.Sub(last) > threshold
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (models.JobRecord, error) {
	var (
		record                 models.JobRecord
		featured               int
		postedAt               string
		requirements, benefits string
		createdAt, updatedAt   string
	)
	if err := row.Scan(
		&record.ID,
		&record.Title,
		&record.Company,
		&record.Location,
		&record.EmploymentType,
		&record.Category,
		&featured,
		&record.Salary,
		&postedAt,
		&record.PostedAtRaw,
		&record.Description,
		&requirements,
		&benefits,
		&createdAt,
		&updatedAt,
	); err != nil {
		return models.JobRecord{}, err
	}

	record.Featured = featured != 0
	record.PostedAt = parseTimeText(postedAt)
	record.Requirements = parseTextList(requirements)
	record.Benefits = parseTextList(benefits)
	record.CreatedAt = parseTimeText(createdAt)
	record.UpdatedAt = parseTimeText(updatedAt)
	return record, nil
}

func boolInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func timeText(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeText(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Lists are stored as opaque JSON text and parsed on read. A value that is
// not valid JSON stays usable as a one-element list rather than failing.
func textListText(list models.TextList) string {
	if len(list) == 0 {
		return ""
	}
	data, err := json.Marshal(list)
	if err != nil {
		return list.Join()
	}
	return string(data)
}

func parseTextList(value string) models.TextList {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var list models.TextList
	if err := json.Unmarshal([]byte(value), &list); err != nil {
		return models.TextList{value}
	}
	return list
}
