package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-show-catalog/internal/database/dbtest"
	"github.com/iliyamo/movie-show-catalog/internal/model"
	"github.com/iliyamo/movie-show-catalog/internal/validation"
)

func ptr[T any](v T) *T { return &v }

// fixedClock returns a clock frozen at t; advance moves it forward.
func fixedClock(t time.Time) (now func() time.Time, advance func(time.Duration)) {
	cur := t
	return func() time.Time { return cur }, func(d time.Duration) { cur = cur.Add(d) }
}

func newRepo(t *testing.T) *EntryRepo {
	return NewEntryRepo(dbtest.Open(t))
}

func film(title, director string) model.EntryFields {
	return model.EntryFields{Title: title, Kind: model.KindFilm, Director: director, Status: model.StatusCompleted}
}

func TestEntryRepoInsertAndGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	in := model.EntryFields{
		Title:           "The Shawshank Redemption",
		Kind:            model.KindFilm,
		Director:        "Frank Darabont",
		Budget:          ptr("25000000.00"),
		Location:        ptr("Ohio, USA"),
		DurationMinutes: ptr(142),
		Year:            ptr(1994),
		ActiveRange:     ptr("1994"),
		Description:     ptr("Two imprisoned men bond over a number of years."),
		Rating:          ptr(9.3),
		Genre:           ptr("Drama"),
		Status:          model.StatusCompleted,
	}
	created, err := repo.Insert(ctx, in)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	want := model.NewEntry(in)
	want.ID = created.ID
	want.CreatedAt = created.CreatedAt
	want.UpdatedAt = created.UpdatedAt
	assert.Equal(t, want, *got)
}

func TestEntryRepoInsertNullsAndDefaultStatus(t *testing.T) {
	repo := newRepo(t)
	e, err := repo.Insert(context.Background(), model.EntryFields{Title: "Inception", Kind: model.KindFilm, Director: "Christopher Nolan"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, e.Status)
	assert.Nil(t, e.Budget)
	assert.Nil(t, e.Rating)
	assert.Nil(t, e.Year)
}

func TestEntryRepoInsertMissingRequired(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Insert(context.Background(), model.EntryFields{Kind: model.KindFilm})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEntryRepoGetMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEntryRepoUpdatePartial(t *testing.T) {
	repo := newRepo(t)
	now, advance := fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	repo.now = now
	ctx := context.Background()

	in := film("Heat", "Michael Mann")
	in.Genre = ptr("Crime")
	in.Year = ptr(1995)
	created, err := repo.Insert(ctx, in)
	require.NoError(t, err)

	advance(time.Second)
	updated, err := repo.Update(ctx, created.ID, model.EntryPatch{
		Rating: model.Some(ptr(8.3)),
		Genre:  model.Some[*string](nil),
	})
	require.NoError(t, err)

	assert.Equal(t, "Heat", updated.Title)
	assert.Equal(t, "Michael Mann", updated.Director)
	assert.Equal(t, 1995, *updated.Year)
	assert.Nil(t, updated.Genre)
	assert.Equal(t, 8.3, *updated.Rating)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
}

func TestEntryRepoUpdatedAtStrictlyIncreasesWithinOneTick(t *testing.T) {
	repo := newRepo(t)
	now, _ := fixedClock(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	repo.now = now
	ctx := context.Background()

	e, err := repo.Insert(ctx, film("Heat", "Michael Mann"))
	require.NoError(t, err)

	prev := e.UpdatedAt
	for i := 0; i < 3; i++ {
		e, err = repo.Update(ctx, e.ID, model.EntryPatch{})
		require.NoError(t, err)
		assert.True(t, e.UpdatedAt.After(prev), "update %d", i)
		prev = e.UpdatedAt
	}
	assert.Equal(t, "Heat", e.Title)
}

func TestEntryRepoUpdateMissing(t *testing.T) {
	repo := newRepo(t)
	_, err := repo.Update(context.Background(), 7, model.EntryPatch{Title: model.Some("x")})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestEntryRepoDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	e, err := repo.Insert(ctx, film("Heat", "Michael Mann"))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, e.ID))
	_, err = repo.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, e.ID), ErrEntryNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, 999), ErrEntryNotFound)
}

func TestEntryRepoListPagesCoverTotalOnce(t *testing.T) {
	repo := newRepo(t)
	now, advance := fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	repo.now = now
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		// Every third insert shares its timestamp with the previous one.
		if i%3 != 0 {
			advance(time.Millisecond)
		}
		_, err := repo.Insert(ctx, film(fmt.Sprintf("Entry %02d", i), "Someone"))
		require.NoError(t, err)
	}

	seen := map[int64]bool{}
	var all []model.Entry
	for page := 1; ; page++ {
		entries, total, err := repo.List(ctx, EntrySearchQuery{Page: page, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 25, total)
		if len(entries) == 0 {
			break
		}
		for _, e := range entries {
			assert.False(t, seen[e.ID], "duplicate id %d", e.ID)
			seen[e.ID] = true
		}
		all = append(all, entries...)
	}
	assert.Len(t, all, 25)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt), "order broken at %d", i)
	}
	assert.Equal(t, "Entry 24", all[0].Title)
}

func TestEntryRepoListSearchAndKind(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, f := range []model.EntryFields{
		film("The Dark Knight", "Christopher Nolan"),
		film("Inception", "Christopher Nolan"),
		film("The Shawshank Redemption", "Frank Darabont"),
		{Title: "Breaking Bad", Kind: model.KindSeries, Director: "Vince Gilligan", Genre: ptr("Crime, Drama")},
	} {
		_, err := repo.Insert(ctx, f)
		require.NoError(t, err)
	}

	entries, total, err := repo.List(ctx, EntrySearchQuery{Search: "nolan", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, entries, 2)

	entries, total, err = repo.List(ctx, EntrySearchQuery{Search: "DRAMA", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Breaking Bad", entries[0].Title)

	_, total, err = repo.List(ctx, EntrySearchQuery{Kind: model.KindSeries, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = repo.List(ctx, EntrySearchQuery{Search: "the", Kind: model.KindFilm, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestEntryRepoListWildcardsMatchLiterally(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for _, title := range []string{"100% Wolf", "Snake_Eyes", "Plain Title", "Wow!"} {
		_, err := repo.Insert(ctx, film(title, "Someone"))
		require.NoError(t, err)
	}

	for term, want := range map[string]string{"%": "100% Wolf", "_": "Snake_Eyes", "!": "Wow!"} {
		entries, total, err := repo.List(ctx, EntrySearchQuery{Search: term, Page: 1, PageSize: 10})
		require.NoError(t, err)
		require.EqualValues(t, 1, total, term)
		assert.Equal(t, want, entries[0].Title)
	}
}

func TestEntryRepoListBeyondLastPage(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	_, err := repo.Insert(ctx, film("Heat", "Michael Mann"))
	require.NoError(t, err)

	entries, total, err := repo.List(ctx, EntrySearchQuery{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Empty(t, entries)
}
