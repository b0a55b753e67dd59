package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exodash/internal/domain"
)

type fakeSource struct {
	calls atomic.Int32
	delay time.Duration
	errs  []error
	got   domain.CatalogQuery
	mu    sync.Mutex
}

func (s *fakeSource) Name() string { return "fake" }

func (s *fakeSource) Query(_ context.Context, q domain.CatalogQuery) (*domain.Table, error) {
	n := int(s.calls.Add(1))
	s.mu.Lock()
	s.got = q
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if n <= len(s.errs) && s.errs[n-1] != nil {
		return nil, s.errs[n-1]
	}
	t := domain.NewTable(q.Columns)
	t.Rows = append(t.Rows, domain.Record{PlanetName: "Kepler-22 b", DiscoveryMethod: "Transit"})
	return t, nil
}

func TestFetcher_CachesFirstResult(t *testing.T) {
	src := &fakeSource{}
	f := NewFetcher(src, nil)

	ok, _ := f.Cached()
	assert.False(t, ok)

	first, err := f.Fetch(context.Background())
	require.NoError(t, err)
	second, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second, "second call returns the cached table")
	assert.Equal(t, int32(1), src.calls.Load())

	ok, loadedAt := f.Cached()
	assert.True(t, ok)
	assert.False(t, loadedAt.IsZero())
}

func TestFetcher_SendsFixedQuery(t *testing.T) {
	src := &fakeSource{}
	_, err := NewFetcher(src, nil).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ps", src.got.Table)
	assert.Equal(t, domain.AllColumns(), src.got.Columns)
	assert.Equal(t, "pl_bmasse IS NOT NULL AND pl_rade IS NOT NULL AND pl_orbper IS NOT NULL", src.got.Where)
}

func TestFetcher_ErrorNotCached(t *testing.T) {
	upstream := errors.New("connection refused")
	src := &fakeSource{errs: []error{upstream}}
	f := NewFetcher(src, nil)

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	var fetchErr *domain.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "fake", fetchErr.Source)
	assert.ErrorIs(t, err, upstream)

	ok, _ := f.Cached()
	assert.False(t, ok)

	tbl, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestFetcher_ConcurrentFirstFetchQueriesOnce(t *testing.T) {
	src := &fakeSource{delay: 50 * time.Millisecond}
	f := NewFetcher(src, nil)

	const callers = 8
	tables := make([]*domain.Table, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tbl, err := f.Fetch(context.Background())
			assert.NoError(t, err)
			tables[i] = tbl
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for i := 1; i < callers; i++ {
		assert.Same(t, tables[0], tables[i])
	}
}

// gatedSource blocks until release is closed and honours ctx cancellation.
type gatedSource struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (s *gatedSource) Name() string { return "gated" }

func (s *gatedSource) Query(ctx context.Context, q domain.CatalogQuery) (*domain.Table, error) {
	if s.calls.Add(1) == 1 {
		close(s.started)
	}
	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	t := domain.NewTable(q.Columns)
	t.Rows = append(t.Rows, domain.Record{PlanetName: "Kepler-22 b"})
	return t, nil
}

func TestFetcher_CancelledCallerDoesNotAbortSharedFetch(t *testing.T) {
	src := &gatedSource{started: make(chan struct{}), release: make(chan struct{})}
	f := NewFetcher(src, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctxA)
		errA <- err
	}()
	<-src.started

	type result struct {
		tbl *domain.Table
		err error
	}
	resB := make(chan result, 1)
	go func() {
		tbl, err := f.Fetch(context.Background())
		resB <- result{tbl, err}
	}()

	cancelA()
	require.ErrorIs(t, <-errA, context.Canceled)

	close(src.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 1, b.tbl.Len())
	assert.Equal(t, int32(1), src.calls.Load())

	ok, _ := f.Cached()
	assert.True(t, ok, "shared fetch fills the slot after the starter left")
}
