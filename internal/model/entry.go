package model

import "time"

// Kind distinguishes films from series.  The values are the wire strings
// used by the JSON API and stored in movies_and_shows.type.
type Kind string

const (
	KindFilm   Kind = "Movie"
	KindSeries Kind = "TV Show"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool { return k == KindFilm || k == KindSeries }

// Status is the production state of an entry.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusOngoing   Status = "ongoing"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusCompleted, StatusOngoing, StatusCancelled:
		return true
	}
	return false
}

// Entry is one film or series in the catalog.  Optional attributes are
// pointers and encode as JSON null when unset.
//
// Fields:
//   - ID: primary key, assigned by the store.
//   - Title, Director: required text.
//   - Kind: Movie or TV Show (JSON "type").
//   - Budget: decimal string normalised to two places.
//   - DurationMinutes: runtime, or episode length for series (JSON "duration").
//   - ActiveRange: free-form airing span such as "2008-2013" (JSON "timeRange").
//   - Rating: 0..10 with one decimal place.
//   - CreatedAt: set once on insert.
//   - UpdatedAt: refreshed on every update, never before CreatedAt.
type Entry struct {
	ID              int64     `json:"id"`          // movies_and_shows.id
	Title           string    `json:"title"`       // movies_and_shows.title
	Kind            Kind      `json:"type"`        // movies_and_shows.type
	Director        string    `json:"director"`    // movies_and_shows.director
	Budget          *string   `json:"budget"`      // movies_and_shows.budget
	Location        *string   `json:"location"`    // movies_and_shows.location
	DurationMinutes *int      `json:"duration"`    // movies_and_shows.duration
	Year            *int      `json:"year"`        // movies_and_shows.year
	ActiveRange     *string   `json:"timeRange"`   // movies_and_shows.time_range
	Description     *string   `json:"description"` // movies_and_shows.description
	Rating          *float64  `json:"rating"`      // movies_and_shows.rating
	Genre           *string   `json:"genre"`       // movies_and_shows.genre
	Status          Status    `json:"status"`      // movies_and_shows.status
	CreatedAt       time.Time `json:"createdAt"`   // movies_and_shows.created_at
	UpdatedAt       time.Time `json:"updatedAt"`   // movies_and_shows.updated_at
}

// EntryFields carries the attributes of a new entry after validation.
// Status is already defaulted.
type EntryFields struct {
	Title           string
	Kind            Kind
	Director        string
	Budget          *string
	Location        *string
	DurationMinutes *int
	Year            *int
	ActiveRange     *string
	Description     *string
	Rating          *float64
	Genre           *string
	Status          Status
}

// Patch is one optional attribute of a partial update.  Set distinguishes
// "leave unchanged" from "set to Value", where Value may itself be nil.
type Patch[T any] struct {
	Set   bool
	Value T
}

// Some returns a Patch that sets v.
func Some[T any](v T) Patch[T] { return Patch[T]{Set: true, Value: v} }

// EntryPatch is a validated partial update.  Only fields with Set are
// written.
type EntryPatch struct {
	Title           Patch[string]
	Kind            Patch[Kind]
	Director        Patch[string]
	Budget          Patch[*string]
	Location        Patch[*string]
	DurationMinutes Patch[*int]
	Year            Patch[*int]
	ActiveRange     Patch[*string]
	Description     Patch[*string]
	Rating          Patch[*float64]
	Genre           Patch[*string]
	Status          Patch[Status]
}

// IsEmpty reports whether the patch sets no field.
func (p EntryPatch) IsEmpty() bool {
	return !(p.Title.Set || p.Kind.Set || p.Director.Set || p.Budget.Set ||
		p.Location.Set || p.DurationMinutes.Set || p.Year.Set || p.ActiveRange.Set ||
		p.Description.Set || p.Rating.Set || p.Genre.Set || p.Status.Set)
}

// Apply merges the set fields of p into e.  Timestamps are left to the
// caller.
func (p EntryPatch) Apply(e *Entry) {
	if p.Title.Set {
		e.Title = p.Title.Value
	}
	if p.Kind.Set {
		e.Kind = p.Kind.Value
	}
	if p.Director.Set {
		e.Director = p.Director.Value
	}
	if p.Budget.Set {
		e.Budget = p.Budget.Value
	}
	if p.Location.Set {
		e.Location = p.Location.Value
	}
	if p.DurationMinutes.Set {
		e.DurationMinutes = p.DurationMinutes.Value
	}
	if p.Year.Set {
		e.Year = p.Year.Value
	}
	if p.ActiveRange.Set {
		e.ActiveRange = p.ActiveRange.Value
	}
	if p.Description.Set {
		e.Description = p.Description.Value
	}
	if p.Rating.Set {
		e.Rating = p.Rating.Value
	}
	if p.Genre.Set {
		e.Genre = p.Genre.Value
	}
	if p.Status.Set {
		e.Status = p.Status.Value
	}
}

// NewEntry builds an unsaved Entry from validated fields.
func NewEntry(f EntryFields) Entry {
	return Entry{
		Title:           f.Title,
		Kind:            f.Kind,
		Director:        f.Director,
		Budget:          f.Budget,
		Location:        f.Location,
		DurationMinutes: f.DurationMinutes,
		Year:            f.Year,
		ActiveRange:     f.ActiveRange,
		Description:     f.Description,
		Rating:          f.Rating,
		Genre:           f.Genre,
		Status:          f.Status,
	}
}
