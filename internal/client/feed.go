package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// Lister fetches one page of a filtered list.  *Client implements it.
type Lister interface {
	List(ctx context.Context, f Filter, page, limit int) (*Page, error)
}

// View is a point-in-time copy of a Feed's state.
type View struct {
	Filter  Filter
	Entries []model.Entry
	Page    int   // last page applied; 0 before the first page arrives
	HasMore bool  // the server reported another page for the current filter
	Total   int64 // server-side match count of the last applied page
	Loading bool  // a fetch for the current filter is in flight
	Epoch   uint64
}

// Feed accumulates the pages of one filtered result set, in server order.
//
// Each filter change or reset starts a new epoch whose page 1 replaces the
// accumulated entries when it arrives; LoadMore appends the next page.
// Results that come back for an older epoch are dropped, and a page other
// than 1 is only requested for the epoch entries belong to, so entries
// always form the pages fetched since the last reset, in order and without
// gaps.
// An entry id already present is not appended twice.
//
// Feed is safe for concurrent use.  Fetches run without holding the lock.
type Feed struct {
	src   Lister
	limit int
	log   zerolog.Logger

	mu       sync.Mutex
	filter   Filter
	epoch    uint64
	inflight uint64 // epoch of the in-flight fetch, 0 when idle
	loaded   uint64 // epoch whose pages entries holds
	entries  []model.Entry
	seen     map[int64]struct{}
	page     int
	hasMore  bool
	total    int64
}

// FeedOption customises a Feed.
type FeedOption func(*Feed)

// WithLogger sets the logger used for failed fetches.
func WithLogger(l zerolog.Logger) FeedOption { return func(f *Feed) { f.log = l } }

// NewFeed returns an empty Feed with the zero Filter.  Call Reset to load
// the first page.  A limit below 1 uses the server default of 10.
func NewFeed(src Lister, limit int, opts ...FeedOption) *Feed {
	if limit < 1 {
		limit = 10
	}
	f := &Feed{src: src, limit: limit, log: log.Logger, seen: map[int64]struct{}{}}
	for _, o := range opts {
		o(f)
	}
	return f
}

// SetFilter switches to filter and loads its first page.  Setting the
// filter already applied does nothing once its page 1 has arrived or is on
// the way; after a failed load it retries.  The previous entries stay
// visible until the new page 1 arrives.
func (f *Feed) SetFilter(ctx context.Context, filter Filter) error {
	f.mu.Lock()
	if filter == f.filter && f.epoch > 0 && (f.loaded == f.epoch || f.inflight == f.epoch) {
		f.mu.Unlock()
		return nil
	}
	f.filter = filter
	epoch := f.beginEpochLocked()
	f.mu.Unlock()

	return f.fetch(ctx, epoch, filter, 1)
}

// Reset reloads page 1 of the current filter, e.g. after a mutation.
func (f *Feed) Reset(ctx context.Context) error {
	f.mu.Lock()
	filter := f.filter
	epoch := f.beginEpochLocked()
	f.mu.Unlock()

	return f.fetch(ctx, epoch, filter, 1)
}

// LoadMore fetches and appends the next page.  It returns false without
// error when there is no further page or a fetch for the current filter is
// already in flight.  If page 1 of the current filter has not arrived yet,
// because its fetch failed, LoadMore fetches page 1 instead.
func (f *Feed) LoadMore(ctx context.Context) (bool, error) {
	f.mu.Lock()
	if f.inflight == f.epoch {
		f.mu.Unlock()
		return false, nil
	}
	page := 1
	if f.loaded == f.epoch {
		if !f.hasMore {
			f.mu.Unlock()
			return false, nil
		}
		page = f.page + 1
	}
	epoch, filter := f.epoch, f.filter
	f.inflight = epoch
	f.mu.Unlock()

	if err := f.fetch(ctx, epoch, filter, page); err != nil {
		return false, err
	}
	return true, nil
}

// EntryMutated implements MutationListener: any successful mutation
// restarts the feed at page 1.
func (f *Feed) EntryMutated(ctx context.Context, op string, id int64) {
	if err := f.Reset(ctx); err != nil {
		f.log.Warn().Err(err).Str("op", op).Int64("entry_id", id).Msg("feed reset after mutation failed")
	}
}

// Snapshot returns a copy of the current state.
func (f *Feed) Snapshot() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return View{
		Filter:  f.filter,
		Entries: append([]model.Entry(nil), f.entries...),
		Page:    f.page,
		HasMore: f.hasMore && f.loaded == f.epoch,
		Total:   f.total,
		Loading: f.inflight != 0 && f.inflight == f.epoch,
		Epoch:   f.epoch,
	}
}

// beginEpochLocked starts a new epoch with its page-1 fetch in flight.
// f.mu must be held.
func (f *Feed) beginEpochLocked() uint64 {
	f.epoch++
	f.inflight = f.epoch
	return f.epoch
}

// fetch loads one page for epoch and applies it if epoch is still current.
// A failed fetch leaves the accumulated state untouched.
func (f *Feed) fetch(ctx context.Context, epoch uint64, filter Filter, page int) error {
	p, err := f.src.List(ctx, filter, page, f.limit)

	f.mu.Lock()
	defer f.mu.Unlock()
	if epoch != f.epoch {
		return nil // superseded by a newer filter or reset
	}
	f.inflight = 0
	if err != nil {
		f.log.Error().Err(err).Int("page", page).Str("search", filter.Search).Str("type", string(filter.Kind)).Msg("feed fetch failed")
		return err
	}

	if page == 1 {
		f.entries = f.entries[:0:0]
		f.seen = make(map[int64]struct{}, len(p.Entries))
		f.loaded = epoch
	}
	for _, e := range p.Entries {
		if _, dup := f.seen[e.ID]; dup {
			continue
		}
		f.seen[e.ID] = struct{}{}
		f.entries = append(f.entries, e)
	}
	f.page = page
	f.hasMore = p.Pagination.HasNext
	f.total = p.Pagination.Total
	return nil
}
