package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/offlinekit/jobsync/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()

	kv, err := NewKV(filepath.Join(dir, "meta.json"))
	if err != nil {
		t.Fatalf("NewKV() error = %v", err)
	}
	s, err := Open(filepath.Join(dir, "jobs.db"), kv)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return s
}

func TestInitIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
}

func TestSchemaMismatchRebuildsTable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	records := []models.JobRecord{{ID: "1", Title: "Engineer"}}
	if err := s.UpsertMany(ctx, records); err != nil {
		t.Fatalf("UpsertMany() error = %v", err)
	}
	if err := s.SetLastSyncAt(time.Now()); err != nil {
		t.Fatalf("SetLastSyncAt() error = %v", err)
	}

	if err := s.kv.Set(schemaVersionKey, "0"); err != nil {
		t.Fatalf("force old schema version: %v", err)
	}
	if err := s.Init(ctx); err != nil {
		t.Fatalf("Init() after version bump error = %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty table after migration, got %d rows", len(all))
	}

	last, err := s.LastSyncAt()
	if err != nil {
		t.Fatalf("LastSyncAt() error = %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("expected sync timestamp reset after migration, got %v", last)
	}

	version, err := s.kv.Get(schemaVersionKey)
	if err != nil {
		t.Fatalf("read schema version: %v", err)
	}
	if version != "1" {
		t.Fatalf("schema version = %q, want %q", version, "1")
	}
}

func TestUpsertManyEmptyBatchIsNoOp(t *testing.T) {
	s := newTestStore(t)
	if err := s.UpsertMany(context.Background(), nil); err != nil {
		t.Fatalf("UpsertMany(nil) error = %v", err)
	}
}

func TestGetAllOrdersFeaturedThenRecency(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	day := func(d int) time.Time {
		return time.Date(2026, time.August, d, 0, 0, 0, 0, time.UTC)
	}
	records := []models.JobRecord{
		{ID: "old", Title: "Old", PostedAt: day(1)},
		{ID: "new", Title: "New", PostedAt: day(20)},
		{ID: "feat", Title: "Featured", Featured: true, PostedAt: day(5)},
	}
	if err := s.UpsertMany(ctx, records); err != nil {
		t.Fatalf("UpsertMany() error = %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	wantOrder := []string{"feat", "new", "old"}
	for i, want := range wantOrder {
		if all[i].ID != want {
			t.Fatalf("order[%d] = %q, want %q (%v)", i, all[i].ID, want, all)
		}
	}
}

func TestUpsertManyReplacesByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertMany(ctx, []models.JobRecord{{ID: "1", Title: "First"}}); err != nil {
		t.Fatalf("UpsertMany() error = %v", err)
	}
	if err := s.UpsertMany(ctx, []models.JobRecord{{ID: "1", Title: "Second", Description: "Now detailed"}}); err != nil {
		t.Fatalf("UpsertMany() error = %v", err)
	}

	got, err := s.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Title != "Second" || !got.Detailed() {
		t.Fatalf("unexpected record after replace: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("expected bookkeeping timestamps to be set")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestListsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	record := models.JobRecord{
		ID:           "1",
		Title:        "Engineer",
		Description:  "Detail",
		Requirements: models.TextList{"Go", "SQL; advanced"},
		Benefits:     models.TextList{"Four day week"},
	}
	if err := s.UpsertMany(ctx, []models.JobRecord{record}); err != nil {
		t.Fatalf("UpsertMany() error = %v", err)
	}

	got, err := s.GetByID(ctx, "1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(got.Requirements) != 2 || got.Requirements[1] != "SQL; advanced" {
		t.Fatalf("Requirements = %#v", got.Requirements)
	}
	if len(got.Benefits) != 1 || got.Benefits[0] != "Four day week" {
		t.Fatalf("Benefits = %#v", got.Benefits)
	}
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.UpsertMany(ctx, []models.JobRecord{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("UpsertMany() error = %v", err)
	}
	if err := s.SetLastSyncAt(time.Now()); err != nil {
		t.Fatalf("SetLastSyncAt() error = %v", err)
	}

	if err := s.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll() error = %v", err)
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty store, got %d rows", len(all))
	}

	last, err := s.LastSyncAt()
	if err != nil {
		t.Fatalf("LastSyncAt() error = %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("expected sync timestamp removed, got %v", last)
	}
}

func TestLastSyncRoundTrip(t *testing.T) {
	s := newTestStore(t)

	last, err := s.LastSyncAt()
	if err != nil {
		t.Fatalf("LastSyncAt() error = %v", err)
	}
	if !last.IsZero() {
		t.Fatalf("expected zero time before any sync, got %v", last)
	}

	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	if err := s.SetLastSyncAt(now); err != nil {
		t.Fatalf("SetLastSyncAt() error = %v", err)
	}

	got, err := s.LastSyncAt()
	if err != nil {
		t.Fatalf("LastSyncAt() error = %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("LastSyncAt() = %v, want %v", got, now)
	}
}

func TestStale(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)

	if !Stale(time.Time{}, now, time.Hour) {
		t.Fatalf("expected stale when no sync ever recorded")
	}
	if Stale(now, now, time.Hour) {
		t.Fatalf("expected fresh immediately after sync")
	}
	if Stale(now.Add(-time.Hour), now, time.Hour) {
		t.Fatalf("expected fresh at exactly the threshold")
	}
	if !Stale(now.Add(-time.Hour-time.Minute), now, time.Hour) {
		t.Fatalf("expected stale past the threshold")
	}
}
