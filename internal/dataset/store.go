package dataset

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"pulseapi/internal/errors"
	"pulseapi/internal/infrastructure"
	"pulseapi/pkg/contracts/domain"
)

// table memoizes one loaded dataset. The mutex guarantees a single load even
// under concurrent first access; load errors are not cached so a fixed file
// is picked up on the next request.
type table[T any] struct {
	mu     sync.Mutex
	loaded bool
	rows   []T
}

// get returns the cached rows, loading them through load on first use.
// The second return value reports whether this was a cache hit.
func (t *table[T]) get(load func() ([]T, error)) ([]T, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loaded {
		return t.rows, true, nil
	}

	rows, err := load()
	if err != nil {
		return nil, false, err
	}

	t.rows = rows
	t.loaded = true
	return rows, false, nil
}

func (t *table[T]) invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = nil
	t.loaded = false
}

// Store is the explicit dataset cache owned by the application. Callers must
// treat returned slices as read-only; the aggregation layer never mutates
// them.
type Store struct {
	dataDir string
	logger  *slog.Logger
	metrics *infrastructure.RequestMetrics

	transactions    table[domain.TransactionRecord]
	users           table[domain.UserRecord]
	insurance       table[domain.InsuranceRecord]
	mapTransactions table[domain.MapTransactionRecord]
	topPerformers   table[domain.TopPerformerRecord]
}

// NewStore creates a dataset store rooted at dataDir.
func NewStore(dataDir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dataDir: dataDir,
		logger:  logger.With(slog.String("component", "dataset_store")),
	}
}

// SetMetrics attaches load/cache-hit counters. Optional; a nil receiver on
// the metrics side is a no-op.
func (s *Store) SetMetrics(m *infrastructure.RequestMetrics) {
	s.metrics = m
}

// DataDir returns the directory the store reads from.
func (s *Store) DataDir() string {
	return s.dataDir
}

func (s *Store) observe(ctx context.Context, id domain.DatasetID, hit bool, rows int, start time.Time, err error) {
	if err != nil {
		s.logger.ErrorContext(ctx, "dataset load failed",
			slog.String("dataset", string(id)),
			slog.String("error", err.Error()))
		return
	}

	if hit {
		if s.metrics != nil {
			s.metrics.CacheHits.Add(ctx, 1)
		}
		return
	}

	if s.metrics != nil {
		s.metrics.DatasetLoads.Add(ctx, 1)
	}
	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("dataset", string(id)),
		slog.Int("rows", rows),
		slog.Duration("duration", time.Since(start)))
}

// Transactions returns the aggregated transactions dataset.
func (s *Store) Transactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	start := time.Now()
	rows, hit, err := s.transactions.get(func() ([]domain.TransactionRecord, error) {
		return loadTransactions(s.dataDir)
	})
	s.observe(ctx, domain.DatasetTransactions, hit, len(rows), start, err)
	return rows, err
}

// Users returns the aggregated users dataset.
func (s *Store) Users(ctx context.Context) ([]domain.UserRecord, error) {
	start := time.Now()
	rows, hit, err := s.users.get(func() ([]domain.UserRecord, error) {
		return loadUsers(s.dataDir)
	})
	s.observe(ctx, domain.DatasetUsers, hit, len(rows), start, err)
	return rows, err
}

// Insurance returns the aggregated insurance dataset.
func (s *Store) Insurance(ctx context.Context) ([]domain.InsuranceRecord, error) {
	start := time.Now()
	rows, hit, err := s.insurance.get(func() ([]domain.InsuranceRecord, error) {
		return loadInsurance(s.dataDir)
	})
	s.observe(ctx, domain.DatasetInsurance, hit, len(rows), start, err)
	return rows, err
}

// MapTransactions returns the district-level map dataset.
func (s *Store) MapTransactions(ctx context.Context) ([]domain.MapTransactionRecord, error) {
	start := time.Now()
	rows, hit, err := s.mapTransactions.get(func() ([]domain.MapTransactionRecord, error) {
		return loadMapTransactions(s.dataDir)
	})
	s.observe(ctx, domain.DatasetMapTransactions, hit, len(rows), start, err)
	return rows, err
}

// TopPerformers returns the top performers dataset.
func (s *Store) TopPerformers(ctx context.Context) ([]domain.TopPerformerRecord, error) {
	start := time.Now()
	rows, hit, err := s.topPerformers.get(func() ([]domain.TopPerformerRecord, error) {
		return loadTopPerformers(s.dataDir)
	})
	s.observe(ctx, domain.DatasetTopPerformers, hit, len(rows), start, err)
	return rows, err
}

// Dataset returns the raw rows of any dataset by identifier, for the
// inspection endpoint. The concrete element type depends on the id.
func (s *Store) Dataset(ctx context.Context, id domain.DatasetID) (interface{}, int, error) {
	switch id {
	case domain.DatasetTransactions:
		rows, err := s.Transactions(ctx)
		return rows, len(rows), err
	case domain.DatasetUsers:
		rows, err := s.Users(ctx)
		return rows, len(rows), err
	case domain.DatasetInsurance:
		rows, err := s.Insurance(ctx)
		return rows, len(rows), err
	case domain.DatasetMapTransactions:
		rows, err := s.MapTransactions(ctx)
		return rows, len(rows), err
	case domain.DatasetTopPerformers:
		rows, err := s.TopPerformers(ctx)
		return rows, len(rows), err
	default:
		return nil, 0, errors.NewValidationError("unknown dataset identifier").
			WithContext("dataset", string(id))
	}
}

// Invalidate drops the cached copy of one dataset.
func (s *Store) Invalidate(id domain.DatasetID) {
	switch id {
	case domain.DatasetTransactions:
		s.transactions.invalidate()
	case domain.DatasetUsers:
		s.users.invalidate()
	case domain.DatasetInsurance:
		s.insurance.invalidate()
	case domain.DatasetMapTransactions:
		s.mapTransactions.invalidate()
	case domain.DatasetTopPerformers:
		s.topPerformers.invalidate()
	}
}

// InvalidateAll drops every cached dataset.
func (s *Store) InvalidateAll() {
	for _, id := range domain.AllDatasets() {
		s.Invalidate(id)
	}
	s.logger.Info("dataset cache invalidated")
}

// Warm preloads all datasets concurrently. Used at startup and after an
// explicit cache refresh so the first page render does not pay the load cost.
func (s *Store) Warm(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { _, err := s.Transactions(ctx); return err })
	g.Go(func() error { _, err := s.Users(ctx); return err })
	g.Go(func() error { _, err := s.Insurance(ctx); return err })
	g.Go(func() error { _, err := s.MapTransactions(ctx); return err })
	g.Go(func() error { _, err := s.TopPerformers(ctx); return err })

	return g.Wait()
}

// States returns the sorted distinct state names across the transactions
// dataset, which is the reference enumeration for the filter widgets.
func (s *Store) States(ctx context.Context) ([]string, error) {
	rows, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.State] = struct{}{}
	}

	states := make([]string, 0, len(seen))
	for state := range seen {
		states = append(states, state)
	}
	sort.Strings(states)
	return states, nil
}

// Years returns the sorted distinct years in the transactions dataset.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for _, r := range rows {
		seen[r.Year] = struct{}{}
	}

	years := make([]int, 0, len(seen))
	for year := range seen {
		years = append(years, year)
	}
	sort.Ints(years)
	return years, nil
}

// Quarters returns the sorted distinct quarters in the transactions dataset.
func (s *Store) Quarters(ctx context.Context) ([]int, error) {
	rows, err := s.Transactions(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[int]struct{})
	for _, r := range rows {
		seen[r.Quarter] = struct{}{}
	}

	quarters := make([]int, 0, len(seen))
	for q := range seen {
		quarters = append(quarters, q)
	}
	sort.Ints(quarters)
	return quarters, nil
}
