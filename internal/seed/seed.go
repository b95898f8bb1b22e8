// Package seed loads a small set of well-known titles into an empty catalog.
package seed

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// Store is the part of the repository seeding needs.
type Store interface {
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, f model.EntryFields) (*model.Entry, error)
}

func str(s string) *string      { return &s }
func num(n int) *int            { return &n }
func rating(r float64) *float64 { return &r }

// Samples returns the seed entries in insertion order.
func Samples() []model.EntryFields {
	return []model.EntryFields{
		{
			Title:           "The Shawshank Redemption",
			Kind:            model.KindFilm,
			Director:        "Frank Darabont",
			Budget:          str("25000000.00"),
			Location:        str("Ohio, USA"),
			DurationMinutes: num(142),
			Year:            num(1994),
			Description:     str("Two imprisoned men bond over a number of years, finding solace and eventual redemption through acts of common decency."),
			Rating:          rating(9.3),
			Genre:           str("Drama"),
			Status:          model.StatusCompleted,
		},
		{
			Title:           "Breaking Bad",
			Kind:            model.KindSeries,
			Director:        "Vince Gilligan",
			Budget:          str("3000000.00"),
			Location:        str("Albuquerque, New Mexico"),
			DurationMinutes: num(47),
			Year:            num(2008),
			ActiveRange:     str("2008-2013"),
			Description:     str("A high school chemistry teacher turned methamphetamine producer partners with a former student."),
			Rating:          rating(9.5),
			Genre:           str("Crime, Drama, Thriller"),
			Status:          model.StatusCompleted,
		},
		{
			Title:           "The Dark Knight",
			Kind:            model.KindFilm,
			Director:        "Christopher Nolan",
			Budget:          str("185000000.00"),
			Location:        str("Chicago, Illinois"),
			DurationMinutes: num(152),
			Year:            num(2008),
			Description:     str("When the menace known as the Joker wreaks havoc and chaos on the people of Gotham, Batman must accept one of the greatest psychological and physical tests."),
			Rating:          rating(9.0),
			Genre:           str("Action, Crime, Drama"),
			Status:          model.StatusCompleted,
		},
		{
			Title:           "Stranger Things",
			Kind:            model.KindSeries,
			Director:        "The Duffer Brothers",
			Budget:          str("8000000.00"),
			Location:        str("Georgia, USA"),
			DurationMinutes: num(51),
			Year:            num(2016),
			ActiveRange:     str("2016-Present"),
			Description:     str("When a young boy disappears, his mother, a police chief and his friends must confront terrifying supernatural forces."),
			Rating:          rating(8.7),
			Genre:           str("Drama, Fantasy, Horror"),
			Status:          model.StatusOngoing,
		},
		{
			Title:           "Inception",
			Kind:            model.KindFilm,
			Director:        "Christopher Nolan",
			Budget:          str("160000000.00"),
			Location:        str("Multiple locations"),
			DurationMinutes: num(148),
			Year:            num(2010),
			Description:     str("A thief who steals corporate secrets through the use of dream-sharing technology is given the inverse task of planting an idea."),
			Rating:          rating(8.8),
			Genre:           str("Action, Sci-Fi, Thriller"),
			Status:          model.StatusCompleted,
		},
	}
}

// Run inserts Samples when the catalog is empty and returns how many
// entries it added.  A non-empty catalog is left alone.
func Run(ctx context.Context, s Store) (int, error) {
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Ctx(ctx).Info().Int64("existing", n).Msg("catalog already has entries; skipping seed")
		return 0, nil
	}
	added := 0
	for _, f := range Samples() {
		if _, err := s.Insert(ctx, f); err != nil {
			return added, errors.Wrapf(err, "seed %q", f.Title)
		}
		added++
	}
	log.Ctx(ctx).Info().Int("added", added).Msg("catalog seeded")
	return added, nil
}
