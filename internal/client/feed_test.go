package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// memLister serves pages from an in-memory slice, newest first, and can
// hold a call until released.
type memLister struct {
	mu      sync.Mutex
	entries []model.Entry
	calls   int
	fail    error
	gate    map[int]chan struct{} // call number -> release
	started chan int
}

func (m *memLister) add(title string, kind model.Kind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.entries) + 1)
	m.entries = append([]model.Entry{{ID: id, Title: title, Kind: kind}}, m.entries...)
}

func (m *memLister) List(_ context.Context, f Filter, page, limit int) (*Page, error) {
	m.mu.Lock()
	m.calls++
	call := m.calls
	gate := m.gate[call]
	fail := m.fail
	var matched []model.Entry
	for _, e := range m.entries {
		if f.Kind == "" || e.Kind == f.Kind {
			matched = append(matched, e)
		}
	}
	m.mu.Unlock()

	if m.started != nil {
		m.started <- call
	}
	if gate != nil {
		<-gate
	}
	if fail != nil {
		return nil, fail
	}
	start := (page - 1) * limit
	end := start + limit
	if start > len(matched) {
		start = len(matched)
	}
	if end > len(matched) {
		end = len(matched)
	}
	total := int64(len(matched))
	return &Page{
		Entries:    append([]model.Entry(nil), matched[start:end]...),
		Pagination: Pagination{Page: page, Limit: limit, Total: total, HasNext: int64(page*limit) < total, HasPrev: page > 1},
	}, nil
}

func titles(v View) []string {
	out := make([]string, 0, len(v.Entries))
	for _, e := range v.Entries {
		out = append(out, e.Title)
	}
	return out
}

func newFeed(src Lister, limit int) *Feed { return NewFeed(src, limit, WithLogger(zerolog.Nop())) }

func TestFeedLoadsPagesInOrder(t *testing.T) {
	src := &memLister{}
	for i := 1; i <= 25; i++ {
		src.add(fmt.Sprintf("m%02d", i), model.KindFilm)
	}
	f := newFeed(src, 10)
	ctx := context.Background()

	require.NoError(t, f.Reset(ctx))
	v := f.Snapshot()
	assert.Len(t, v.Entries, 10)
	assert.Equal(t, 1, v.Page)
	assert.True(t, v.HasMore)
	assert.EqualValues(t, 25, v.Total)

	for {
		more, err := f.LoadMore(ctx)
		require.NoError(t, err)
		if !more {
			break
		}
	}
	v = f.Snapshot()
	assert.Len(t, v.Entries, 25)
	assert.Equal(t, 3, v.Page)
	assert.False(t, v.HasMore)
	assert.Equal(t, "m25", v.Entries[0].Title)
	assert.Equal(t, "m01", v.Entries[24].Title)
}

func TestFeedFilterChangeReplacesEntries(t *testing.T) {
	src := &memLister{}
	for i := 1; i <= 15; i++ {
		src.add(fmt.Sprintf("movie %d", i), model.KindFilm)
	}
	for i := 1; i <= 3; i++ {
		src.add(fmt.Sprintf("show %d", i), model.KindSeries)
	}
	f := newFeed(src, 10)
	ctx := context.Background()

	require.NoError(t, f.SetFilter(ctx, Filter{Kind: model.KindFilm}))
	more, err := f.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, more)
	require.Len(t, f.Snapshot().Entries, 15)

	require.NoError(t, f.SetFilter(ctx, Filter{Kind: model.KindSeries}))
	v := f.Snapshot()
	assert.Equal(t, []string{"show 3", "show 2", "show 1"}, titles(v))
	for _, e := range v.Entries {
		assert.Equal(t, model.KindSeries, e.Kind)
	}
	assert.Equal(t, 1, v.Page)
	assert.EqualValues(t, 3, v.Total)
}

func TestFeedSameFilterIsNoop(t *testing.T) {
	src := &memLister{}
	src.add("a", model.KindFilm)
	f := newFeed(src, 10)
	ctx := context.Background()

	require.NoError(t, f.SetFilter(ctx, Filter{Search: "a"}))
	epoch := f.Snapshot().Epoch
	require.NoError(t, f.SetFilter(ctx, Filter{Search: "a"}))
	assert.Equal(t, epoch, f.Snapshot().Epoch)
	assert.Equal(t, 1, src.calls)
}

func TestFeedResetAfterMutationStartsAtPageOne(t *testing.T) {
	src := &memLister{}
	for i := 1; i <= 15; i++ {
		src.add(fmt.Sprintf("e%d", i), model.KindFilm)
	}
	f := newFeed(src, 10)
	ctx := context.Background()
	require.NoError(t, f.Reset(ctx))
	_, err := f.LoadMore(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, f.Snapshot().Page)

	src.add("fresh", model.KindFilm)
	f.EntryMutated(ctx, OpCreated, 16)

	v := f.Snapshot()
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Entries, 10)
	assert.Equal(t, "fresh", v.Entries[0].Title)
	assert.EqualValues(t, 16, v.Total)
}

func TestFeedDiscardsStaleEpoch(t *testing.T) {
	src := &memLister{
		gate:    map[int]chan struct{}{1: make(chan struct{})},
		started: make(chan int, 4),
	}
	src.add("movie", model.KindFilm)
	src.add("show", model.KindSeries)
	f := newFeed(src, 10)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- f.SetFilter(ctx, Filter{Kind: model.KindFilm}) }()
	require.Equal(t, 1, <-src.started)

	// A newer filter completes while the first fetch is still pending.
	require.NoError(t, f.SetFilter(ctx, Filter{Kind: model.KindSeries}))
	<-src.started
	assert.Equal(t, []string{"show"}, titles(f.Snapshot()))

	close(src.gate[1])
	require.NoError(t, <-done)

	v := f.Snapshot()
	assert.Equal(t, []string{"show"}, titles(v))
	assert.Equal(t, Filter{Kind: model.KindSeries}, v.Filter)
	assert.False(t, v.Loading)
}

func TestFeedSuppressesLoadMoreWhileInFlight(t *testing.T) {
	src := &memLister{started: make(chan int, 4)}
	for i := 1; i <= 30; i++ {
		src.add(fmt.Sprintf("e%d", i), model.KindFilm)
	}
	f := newFeed(src, 10)
	ctx := context.Background()
	require.NoError(t, f.Reset(ctx))
	<-src.started

	src.mu.Lock()
	src.gate = map[int]chan struct{}{2: make(chan struct{})}
	src.mu.Unlock()

	done := make(chan bool, 1)
	go func() {
		more, _ := f.LoadMore(ctx)
		done <- more
	}()
	require.Equal(t, 2, <-src.started)
	assert.True(t, f.Snapshot().Loading)

	more, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.False(t, more, "second trigger must be suppressed")

	close(src.gate[2])
	assert.True(t, <-done)

	v := f.Snapshot()
	assert.Equal(t, 2, v.Page)
	assert.Len(t, v.Entries, 20)
	assert.Equal(t, 2, src.calls)
}

func TestFeedLoadMoreWithoutMorePages(t *testing.T) {
	src := &memLister{}
	src.add("only", model.KindFilm)
	f := newFeed(src, 10)

	more, err := f.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, more, "nothing loaded yet")

	require.NoError(t, f.Reset(context.Background()))
	more, err = f.LoadMore(context.Background())
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, 1, src.calls)
}

func TestFeedFetchErrorKeepsState(t *testing.T) {
	src := &memLister{}
	for i := 1; i <= 12; i++ {
		src.add(fmt.Sprintf("e%d", i), model.KindFilm)
	}
	f := newFeed(src, 10)
	ctx := context.Background()
	require.NoError(t, f.Reset(ctx))
	before := f.Snapshot()

	src.fail = errors.New("network down")
	more, err := f.LoadMore(ctx)
	assert.Error(t, err)
	assert.False(t, more)
	after := f.Snapshot()
	assert.Equal(t, before.Entries, after.Entries)
	assert.Equal(t, 1, after.Page)
	assert.True(t, after.HasMore)
	assert.False(t, after.Loading)

	// A failed reset keeps the old entries but no longer offers their next page.
	require.Error(t, f.Reset(ctx))
	after = f.Snapshot()
	assert.Equal(t, before.Entries, after.Entries)
	assert.False(t, after.HasMore)
	assert.False(t, after.Loading)

	src.fail = nil
	more, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	v := f.Snapshot()
	assert.Equal(t, 1, v.Page, "page 1 is fetched again before appending")
	assert.Len(t, v.Entries, 10)

	more, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	assert.Len(t, f.Snapshot().Entries, 12)
}

func TestFeedLoadMoreAfterFailedFilterChange(t *testing.T) {
	src := &memLister{}
	for i := 1; i <= 15; i++ {
		src.add(fmt.Sprintf("movie %d", i), model.KindFilm)
	}
	for i := 1; i <= 15; i++ {
		src.add(fmt.Sprintf("show %d", i), model.KindSeries)
	}
	f := newFeed(src, 10)
	ctx := context.Background()
	require.NoError(t, f.SetFilter(ctx, Filter{Kind: model.KindFilm}))
	require.Len(t, f.Snapshot().Entries, 10)

	src.fail = errors.New("network down")
	require.Error(t, f.SetFilter(ctx, Filter{Kind: model.KindSeries}))
	src.fail = nil

	more, err := f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)

	v := f.Snapshot()
	assert.Equal(t, Filter{Kind: model.KindSeries}, v.Filter)
	assert.Equal(t, 1, v.Page)
	require.Len(t, v.Entries, 10)
	for _, e := range v.Entries {
		assert.Equal(t, model.KindSeries, e.Kind, e.Title)
	}
	assert.Equal(t, "show 15", v.Entries[0].Title)

	more, err = f.LoadMore(ctx)
	require.NoError(t, err)
	assert.True(t, more)
	v = f.Snapshot()
	require.Len(t, v.Entries, 15)
	assert.Equal(t, "show 1", v.Entries[14].Title)
	assert.False(t, v.HasMore)
}

func TestFeedSameFilterRetriesAfterFailure(t *testing.T) {
	src := &memLister{}
	src.add("heat", model.KindFilm)
	f := newFeed(src, 10)
	ctx := context.Background()

	src.fail = errors.New("network down")
	require.Error(t, f.SetFilter(ctx, Filter{Search: "heat"}))
	assert.Empty(t, f.Snapshot().Entries)

	src.fail = nil
	require.NoError(t, f.SetFilter(ctx, Filter{Search: "heat"}))
	assert.Equal(t, []string{"heat"}, titles(f.Snapshot()))
	assert.Equal(t, 2, src.calls)

	require.NoError(t, f.SetFilter(ctx, Filter{Search: "heat"}))
	assert.Equal(t, 2, src.calls)
}

func TestFeedDropsDuplicateIDsAcrossPages(t *testing.T) {
	src := &memLister{}
	for i := 1; i <= 12; i++ {
		src.add(fmt.Sprintf("e%d", i), model.KindFilm)
	}
	f := newFeed(src, 10)
	ctx := context.Background()
	require.NoError(t, f.Reset(ctx))

	// A concurrent insert shifts every row down by one, so page 2 repeats
	// the last row of page 1.
	src.add("late", model.KindFilm)
	_, err := f.LoadMore(ctx)
	require.NoError(t, err)

	v := f.Snapshot()
	ids := map[int64]bool{}
	for _, e := range v.Entries {
		assert.False(t, ids[e.ID], "duplicate %d", e.ID)
		ids[e.ID] = true
	}
	assert.Len(t, v.Entries, 12)
}
