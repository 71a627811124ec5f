// Package syncer reconciles the remote job catalog with the on-device store
// and an in-memory cache. It gives callers an always-available read path that
// never blocks indefinitely on the network, converges toward fresh data
// opportunistically, and collapses duplicate concurrent detail fetches into
// one network call.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/offlinekit/jobsync/internal/models"
	"github.com/offlinekit/jobsync/internal/store"
)

var (
	// ErrNetworkUnavailable means a refresh was requested with no
	// connectivity and nothing cached to fall back on.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrUnavailableOffline means a detail read found no cached data for
	// the id while offline.
	ErrUnavailableOffline = errors.New("unavailable offline")
)

// Storage is the persistent store consumed by the syncer.
type Storage interface {
	Init(ctx context.Context) error
	UpsertMany(ctx context.Context, records []models.JobRecord) error
	GetAll(ctx context.Context) ([]models.JobRecord, error)
	GetByID(ctx context.Context, id string) (models.JobRecord, error)
	ClearAll(ctx context.Context) error
	LastSyncAt() (time.Time, error)
	SetLastSyncAt(t time.Time) error
}

// Catalog is the remote job catalog client.
type Catalog interface {
	FetchAll(ctx context.Context) ([]models.JobRecord, int, error)
	FetchByID(ctx context.Context, id string) (models.JobRecord, error)
}

// Connectivity reports network reachability.
type Connectivity interface {
	Offline() bool
	Check(ctx context.Context) bool
	OnChange(fn func(offline bool))
}

// State is the read-only snapshot exposed to consumers.
type State struct {
	Jobs       []models.JobRecord
	Loading    bool
	Refreshing bool
	Offline    bool
	Err        string
}

// Syncer is the synchronization orchestrator. Construct one instance with
// New, call Start once, and share the handle; there are no package globals.
type Syncer struct {
	store      Storage
	catalog    Catalog
	net        Connectivity
	logger     zerolog.Logger
	staleAfter time.Duration
	now        func() time.Time

	mu         sync.Mutex
	cache      map[string]models.JobRecord
	loading    bool
	refreshing bool
	offline    bool
	lastErr    string
	listeners  []func()

	// detail is the dedup table: N concurrent detail reads for one id
	// share a single in-flight fetch, and the entry is removed when the
	// fetch settles, success or failure.
	detail  singleflight.Group
	refresh singleflight.Group
}

type Option func(*Syncer)

// WithStaleAfter overrides the staleness threshold.
func WithStaleAfter(threshold time.Duration) Option {
	return func(s *Syncer) { s.staleAfter = threshold }
}

// WithClock injects the time source, used by staleness tests.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

func New(storage Storage, catalog Catalog, net Connectivity, logger zerolog.Logger, opts ...Option) *Syncer {
	s := &Syncer{
		store:      storage,
		catalog:    catalog,
		net:        net,
		logger:     logger,
		staleAfter: store.DefaultStaleAfter,
		now:        time.Now,
		cache:      map[string]models.JobRecord{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the persistent store, warms the memory cache from it,
// and, when the catalog is stale or empty, kicks off a background refresh
// without blocking. Callers get whatever is already cached immediately and
// are notified again when the refresh settles.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	if err := s.store.Init(ctx); err != nil {
		s.finishLoading()
		return fmt.Errorf("init store: %w", err)
	}

	records, err := s.store.GetAll(ctx)
	if err != nil {
		s.finishLoading()
		return fmt.Errorf("load store: %w", err)
	}

	s.mu.Lock()
	for _, record := range records {
		s.cache[record.ID] = record
	}
	empty := len(s.cache) == 0
	s.loading = false
	s.mu.Unlock()
	s.notify()

	last, err := s.store.LastSyncAt()
	if err != nil {
		s.logger.Warn().Err(err).Msg("read last sync timestamp")
	}
	if empty || store.Stale(last, s.now(), s.staleAfter) {
		go func() { _ = s.RefreshAll(ctx) }()
	}
	return nil
}

// RefreshAll runs a bulk refresh: fetch the full catalog, merge it into the
// cache without downgrading detailed records, persist the batch in one
// transaction, and only then advance the sync timestamp. Concurrent calls
// collapse into one run. Errors surface only when there is no cached data to
// show; a populated view is never blanked by a failed refresh.
func (s *Syncer) RefreshAll(ctx context.Context) error {
	_, err, _ := s.refresh.Do("refresh", func() (any, error) {
		return nil, s.refreshAll(ctx)
	})
	return err
}

func (s *Syncer) refreshAll(ctx context.Context) error {
	log := s.logger.With().Str("sync_run", uuid.NewString()).Logger()

	s.setRefreshing(true)
	defer s.setRefreshing(false)

	hadData := s.hasData()

	if s.net.Offline() {
		s.setOffline(true)
		s.setErr("no network, showing cached data")
		if !hadData {
			return ErrNetworkUnavailable
		}
		log.Debug().Msg("offline, keeping cached catalog")
		return nil
	}
	s.setOffline(false)

	incoming, total, err := s.catalog.FetchAll(ctx)
	if err != nil {
		if !hadData {
			s.setErr(err.Error())
			return fmt.Errorf("refresh catalog: %w", err)
		}
		log.Warn().Err(err).Msg("catalog fetch failed, cached data stays authoritative")
		return nil
	}

	s.mu.Lock()
	batch, stats := mergeBatch(s.cache, incoming)
	s.mu.Unlock()

	if err := s.store.UpsertMany(ctx, batch); err != nil {
		if !hadData {
			s.setErr(err.Error())
			return fmt.Errorf("persist catalog: %w", err)
		}
		log.Warn().Err(err).Msg("catalog persist failed, sync timestamp not advanced")
		return nil
	}

	if err := s.store.SetLastSyncAt(s.now()); err != nil {
		log.Warn().Err(err).Msg("record sync timestamp")
	}

	s.setErr("")
	s.notify()
	log.Info().
		Int("total", total).
		Int("added", stats.Added).
		Int("replaced", stats.Replaced).
		Int("detail_preserved", stats.Preserved).
		Msg("bulk refresh complete")
	return nil
}

// GetJobByID is the detail read path: memory cache, then persistent store,
// then the network, writing back up the chain on a miss. While offline it
// returns whatever partial record is cached rather than failing, and only
// reports ErrUnavailableOffline when nothing at all is cached.
func (s *Syncer) GetJobByID(ctx context.Context, id string) (models.JobRecord, error) {
	if cached, ok := s.cached(id); ok && cached.Detailed() {
		return cached, nil
	}

	value, err, _ := s.detail.Do(id, func() (any, error) {
		return s.loadDetail(ctx, id)
	})
	if err != nil {
		return models.JobRecord{}, err
	}
	return value.(models.JobRecord), nil
}

func (s *Syncer) loadDetail(ctx context.Context, id string) (models.JobRecord, error) {
	stored, err := s.store.GetByID(ctx, id)
	switch {
	case err == nil:
		if stored.Detailed() {
			s.put(stored)
			return stored, nil
		}
	case errors.Is(err, store.ErrNotFound):
	default:
		s.logger.Warn().Err(err).Str("id", id).Msg("store read failed during detail load")
	}

	if s.net.Offline() {
		if partial, ok := s.partial(id, stored, err == nil); ok {
			return partial, nil
		}
		return models.JobRecord{}, fmt.Errorf("job %q: %w", id, ErrUnavailableOffline)
	}

	fetched, fetchErr := s.catalog.FetchByID(ctx, id)
	if fetchErr != nil {
		// Network error, not-found and malformed payload are treated
		// identically: fall back to any cached data before failing.
		if partial, ok := s.partial(id, stored, err == nil); ok {
			return partial, nil
		}
		return models.JobRecord{}, fmt.Errorf("fetch job %q: %w", id, fetchErr)
	}
	fetched.ID = id

	s.put(fetched)
	if err := s.store.UpsertMany(ctx, []models.JobRecord{fetched}); err != nil {
		// The cache stays ahead of the store; it is rebuilt from the
		// store on next startup, so a failed write is not rolled back.
		s.logger.Warn().Err(err).Str("id", id).Msg("persist detail failed")
	}
	return fetched, nil
}

// CheckNetworkAndRefresh re-probes connectivity and refreshes when online.
func (s *Syncer) CheckNetworkAndRefresh(ctx context.Context) error {
	offline := s.net.Check(ctx)
	s.setOffline(offline)
	if offline {
		return nil
	}
	return s.RefreshAll(ctx)
}

// ClearAll empties the persistent store, the memory cache and the sync
// timestamp. User-initiated reset only.
func (s *Syncer) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("clear store: %w", err)
	}
	s.mu.Lock()
	s.cache = map[string]models.JobRecord{}
	s.mu.Unlock()
	s.notify()
	return nil
}

// Snapshot returns the current observable state. Jobs are ordered featured
// first, then most recently posted.
func (s *Syncer) Snapshot() State {
	s.mu.Lock()
	jobs := make([]models.JobRecord, 0, len(s.cache))
	for _, record := range s.cache {
		jobs = append(jobs, record)
	}
	state := State{
		Jobs:       jobs,
		Loading:    s.loading,
		Refreshing: s.refreshing,
		Offline:    s.offline,
		Err:        s.lastErr,
	}
	s.mu.Unlock()

	sort.SliceStable(state.Jobs, func(i, j int) bool {
		a, b := state.Jobs[i], state.Jobs[j]
		if a.Featured != b.Featured {
			return a.Featured
		}
		return a.PostedAt.After(b.PostedAt)
	})
	return state
}

// OnUpdate registers a callback fired after every state transition.
func (s *Syncer) OnUpdate(fn func()) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Stale reports whether the catalog is due for a bulk refresh.
func (s *Syncer) Stale() bool {
	last, err := s.store.LastSyncAt()
	if err != nil {
		return true
	}
	return store.Stale(last, s.now(), s.staleAfter)
}

func (s *Syncer) cached(id string) (models.JobRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.cache[id]
	return record, ok
}

// partial returns the best available cached data for id: the memory cache
// first, then the store row read earlier in the same operation.
func (s *Syncer) partial(id string, stored models.JobRecord, storedOK bool) (models.JobRecord, bool) {
	if cached, ok := s.cached(id); ok {
		return cached, true
	}
	if storedOK {
		return stored, true
	}
	return models.JobRecord{}, false
}

// put writes a record to the memory cache. Writes always land in the cache
// before the store, so a reader never sees a store value newer than the cache.
func (s *Syncer) put(record models.JobRecord) {
	s.mu.Lock()
	s.cache[record.ID] = record
	s.mu.Unlock()
}

func (s *Syncer) hasData() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cache) > 0
}

func (s *Syncer) finishLoading() {
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.notify()
}

func (s *Syncer) setRefreshing(refreshing bool) {
	s.mu.Lock()
	s.refreshing = refreshing
	s.mu.Unlock()
	s.notify()
}

func (s *Syncer) setOffline(offline bool) {
	s.mu.Lock()
	changed := s.offline != offline
	s.offline = offline
	s.mu.Unlock()
	if changed {
		s.notify()
	}
}

func (s *Syncer) setErr(message string) {
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
}

func (s *Syncer) notify() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}
