// Package service holds the catalog use cases between the HTTP handlers and
// the store.  Every successful mutation is reported to the registered
// MutationListeners, in registration order.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-show-catalog/internal/model"
	"github.com/iliyamo/movie-show-catalog/internal/queue"
	"github.com/iliyamo/movie-show-catalog/internal/repository"
)

// Store is the persistence the service needs; *repository.EntryRepo
// implements it.
type Store interface {
	Insert(ctx context.Context, f model.EntryFields) (*model.Entry, error)
	GetByID(ctx context.Context, id int64) (*model.Entry, error)
	List(ctx context.Context, q repository.EntrySearchQuery) ([]model.Entry, int64, error)
	Update(ctx context.Context, id int64, p model.EntryPatch) (*model.Entry, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// Mutation describes one successful change.  Entry is the stored state
// after a create or update and nil after a delete.
type Mutation struct {
	Op      string // queue.OpCreated, queue.OpUpdated or queue.OpDeleted
	EntryID int64
	Entry   *model.Entry
	At      time.Time
}

// MutationListener is told about each successful mutation.  A returned
// error is logged; it never fails the mutation.
type MutationListener interface {
	EntryMutated(ctx context.Context, m Mutation) error
}

// MutationListenerFunc adapts a function to MutationListener.
type MutationListenerFunc func(ctx context.Context, m Mutation) error

func (f MutationListenerFunc) EntryMutated(ctx context.Context, m Mutation) error { return f(ctx, m) }

// CatalogService performs catalog operations.
type CatalogService struct {
	store     Store
	listeners []MutationListener
}

// NewCatalogService wires a store and its mutation listeners.
func NewCatalogService(store Store, listeners ...MutationListener) *CatalogService {
	return &CatalogService{store: store, listeners: listeners}
}

// AddListener registers another mutation listener.  It must not be called
// concurrently with mutations.
func (s *CatalogService) AddListener(l MutationListener) { s.listeners = append(s.listeners, l) }

// Create stores a new entry.
func (s *CatalogService) Create(ctx context.Context, f model.EntryFields) (*model.Entry, error) {
	e, err := s.store.Insert(ctx, f)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, Mutation{Op: queue.OpCreated, EntryID: e.ID, Entry: e, At: e.UpdatedAt})
	return e, nil
}

// Get returns one entry or repository.ErrEntryNotFound.
func (s *CatalogService) Get(ctx context.Context, id int64) (*model.Entry, error) {
	return s.store.GetByID(ctx, id)
}

// List returns a page of entries and the total match count.
func (s *CatalogService) List(ctx context.Context, q repository.EntrySearchQuery) ([]model.Entry, int64, error) {
	return s.store.List(ctx, q)
}

// Update applies a partial update.
func (s *CatalogService) Update(ctx context.Context, id int64, p model.EntryPatch) (*model.Entry, error) {
	e, err := s.store.Update(ctx, id, p)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, Mutation{Op: queue.OpUpdated, EntryID: e.ID, Entry: e, At: e.UpdatedAt})
	return e, nil
}

// Delete removes an entry.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, Mutation{Op: queue.OpDeleted, EntryID: id, At: time.Now().UTC()})
	return nil
}

// Ping reports whether the store is reachable.
func (s *CatalogService) Ping(ctx context.Context) error { return s.store.Ping(ctx) }

func (s *CatalogService) notify(ctx context.Context, m Mutation) {
	for _, l := range s.listeners {
		if err := l.EntryMutated(ctx, m); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("op", m.Op).Int64("entry_id", m.EntryID).Msg("mutation listener failed")
		}
	}
}
