package client

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// Mutation operations reported to listeners.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// MutationListener is called synchronously after each successful mutation.
type MutationListener interface {
	EntryMutated(ctx context.Context, op string, id int64)
}

// Catalog performs mutations through a Client and tells its listeners
// about every one that succeeds.  Failed mutations are logged and returned;
// listeners are not called.
type Catalog struct {
	*Client
	listeners []MutationListener
}

// NewCatalog wraps c.
func NewCatalog(c *Client, listeners ...MutationListener) *Catalog {
	return &Catalog{Client: c, listeners: listeners}
}

// Subscribe adds a listener.  It must not be called concurrently with
// mutations.
func (c *Catalog) Subscribe(l MutationListener) { c.listeners = append(c.listeners, l) }

// Create stores a new entry and notifies listeners.
func (c *Catalog) Create(ctx context.Context, in Fields) (*model.Entry, error) {
	e, err := c.Client.Create(ctx, in)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("create entry failed")
		return nil, err
	}
	c.notify(ctx, OpCreated, e.ID)
	return e, nil
}

// Update applies a partial update and notifies listeners.
func (c *Catalog) Update(ctx context.Context, id int64, in Fields) (*model.Entry, error) {
	e, err := c.Client.Update(ctx, id, in)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("entry_id", id).Msg("update entry failed")
		return nil, err
	}
	c.notify(ctx, OpUpdated, id)
	return e, nil
}

// Delete removes an entry and notifies listeners.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	if err := c.Client.Delete(ctx, id); err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("entry_id", id).Msg("delete entry failed")
		return err
	}
	c.notify(ctx, OpDeleted, id)
	return nil
}

func (c *Catalog) notify(ctx context.Context, op string, id int64) {
	for _, l := range c.listeners {
		l.EntryMutated(ctx, op, id)
	}
}
