package client_test

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-catalog/internal/client"
	"github.com/iliyamo/movie-show-catalog/internal/config"
	"github.com/iliyamo/movie-show-catalog/internal/database/dbtest"
	"github.com/iliyamo/movie-show-catalog/internal/model"
	"github.com/iliyamo/movie-show-catalog/internal/repository"
	"github.com/iliyamo/movie-show-catalog/internal/router"
	"github.com/iliyamo/movie-show-catalog/internal/service"
)

func newClient(t *testing.T) *client.Client {
	t.Helper()
	repo := repository.NewEntryRepo(dbtest.Open(t))
	e := router.New(router.Deps{
		Config:  config.Config{Env: config.EnvTest},
		Catalog: service.NewCatalogService(repo),
		Logger:  zerolog.Nop(),
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return client.New(srv.URL + "/")
}

func TestClientCRUD(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	created, err := c.Create(ctx, client.Fields{
		"title": "Heat", "type": "Movie", "director": "Michael Mann",
		"budget": "60000000", "rating": 8.3, "genre": "Crime",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	require.NotNil(t, created.Budget)
	assert.Equal(t, "60000000.00", *created.Budget)
	assert.Equal(t, model.StatusCompleted, created.Status)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	updated, err := c.Update(ctx, created.ID, client.Fields{"genre": nil, "year": 1995})
	require.NoError(t, err)
	assert.Nil(t, updated.Genre)
	require.NotNil(t, updated.Year)
	assert.Equal(t, 1995, *updated.Year)
	assert.Equal(t, "Michael Mann", updated.Director)

	require.NoError(t, c.Delete(ctx, created.ID))
	_, err = c.Get(ctx, created.ID)
	assert.True(t, client.IsNotFound(err))
}

func TestClientValidationError(t *testing.T) {
	c := newClient(t)

	_, err := c.Create(context.Background(), client.Fields{"title": "", "type": "Documentary"})
	require.Error(t, err)

	var ae *client.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Status)
	assert.Equal(t, "Validation error", ae.Message)
	fields := map[string]bool{}
	for _, fe := range ae.Errors {
		fields[fe.Field] = true
	}
	assert.True(t, fields["title"])
	assert.True(t, fields["type"])
	assert.True(t, fields["director"])
	assert.False(t, client.IsNotFound(err))
}

func TestClientListFilter(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()
	for _, in := range []client.Fields{
		{"title": "Dark", "type": "TV Show", "director": "Baran bo Odar"},
		{"title": "Darkman", "type": "Movie", "director": "Sam Raimi"},
		{"title": "Alien", "type": "Movie", "director": "Ridley Scott"},
	} {
		_, err := c.Create(ctx, in)
		require.NoError(t, err)
	}

	p, err := c.List(ctx, client.Filter{Search: "dark", Kind: model.KindFilm}, 1, 10)
	require.NoError(t, err)
	require.Len(t, p.Entries, 1)
	assert.Equal(t, "Darkman", p.Entries[0].Title)
	assert.EqualValues(t, 1, p.Pagination.Total)
	assert.False(t, p.Pagination.HasNext)

	_, err = c.List(ctx, client.Filter{}, 1, 500)
	var ae *client.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 400, ae.Status)
}

type recorder struct{ ops []string }

func (r *recorder) EntryMutated(_ context.Context, op string, id int64) {
	r.ops = append(r.ops, fmt.Sprintf("%s:%d", op, id))
}

func TestCatalogNotifiesOnlyOnSuccess(t *testing.T) {
	rec := &recorder{}
	cat := client.NewCatalog(newClient(t), rec)
	ctx := context.Background()

	e, err := cat.Create(ctx, client.Fields{"title": "Up", "type": "Movie", "director": "Pete Docter"})
	require.NoError(t, err)
	_, err = cat.Update(ctx, e.ID, client.Fields{"rating": "8.2"})
	require.NoError(t, err)
	require.NoError(t, cat.Delete(ctx, e.ID))

	assert.Error(t, cat.Delete(ctx, e.ID))
	_, err = cat.Update(ctx, e.ID, client.Fields{"title": "x"})
	assert.Error(t, err)

	id := fmt.Sprint(e.ID)
	assert.Equal(t, []string{"created:" + id, "updated:" + id, "deleted:" + id}, rec.ops)
}

func TestFeedResetsToFirstPageAfterCreate(t *testing.T) {
	cat := client.NewCatalog(newClient(t))
	ctx := context.Background()
	for i := 1; i <= 15; i++ {
		_, err := cat.Create(ctx, client.Fields{"title": fmt.Sprintf("Film %d", i), "type": "Movie", "director": "D"})
		require.NoError(t, err)
	}

	feed := client.NewFeed(cat, 10, client.WithLogger(zerolog.Nop()))
	cat.Subscribe(feed)
	require.NoError(t, feed.Reset(ctx))
	more, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, 2, feed.Snapshot().Page)
	require.Len(t, feed.Snapshot().Entries, 15)

	created, err := cat.Create(ctx, client.Fields{"title": "Brand New", "type": "TV Show", "director": "D"})
	require.NoError(t, err)

	v := feed.Snapshot()
	assert.Equal(t, 1, v.Page)
	assert.Len(t, v.Entries, 10)
	assert.Equal(t, created.ID, v.Entries[0].ID)
	assert.EqualValues(t, 16, v.Total)
	assert.True(t, v.HasMore)
}

func TestFeedFilterChangeAgainstServer(t *testing.T) {
	cat := client.NewCatalog(newClient(t))
	ctx := context.Background()
	for i := 1; i <= 15; i++ {
		_, err := cat.Create(ctx, client.Fields{"title": fmt.Sprintf("Film %d", i), "type": "Movie", "director": "D"})
		require.NoError(t, err)
	}
	for i := 1; i <= 2; i++ {
		_, err := cat.Create(ctx, client.Fields{"title": fmt.Sprintf("Show %d", i), "type": "TV Show", "director": "D"})
		require.NoError(t, err)
	}

	feed := client.NewFeed(cat.Client, 10, client.WithLogger(zerolog.Nop()))
	require.NoError(t, feed.SetFilter(ctx, client.Filter{Kind: model.KindFilm}))
	_, err := feed.LoadMore(ctx)
	require.NoError(t, err)
	require.Len(t, feed.Snapshot().Entries, 15)

	require.NoError(t, feed.SetFilter(ctx, client.Filter{Kind: model.KindSeries}))
	v := feed.Snapshot()
	require.Len(t, v.Entries, 2)
	assert.Equal(t, "Show 2", v.Entries[0].Title)
	assert.Equal(t, "Show 1", v.Entries[1].Title)
	assert.False(t, v.HasMore)
}
