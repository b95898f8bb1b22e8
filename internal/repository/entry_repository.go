// Package repository contains data access logic separated from HTTP handlers.
// This file defines EntryRepo, the catalog store: single-row CRUD over the
// movies_and_shows table.  Listing with filters and pagination lives in
// entry_search.go.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"strings"
	"time"

	"github.com/pkg/errors" // errors wraps driver errors with the failing operation

	"github.com/iliyamo/movie-show-catalog/internal/model"
	"github.com/iliyamo/movie-show-catalog/internal/validation"
)

// entryColumns lists the columns scanned by scanEntry, in order.
const entryColumns = `id, title, type, director, budget, location, duration, year,
	time_range, description, rating, genre, status, created_at, updated_at`

// EntryRepo encapsulates all database queries related to catalog entries.
// It works unchanged against MySQL and SQLite.
type EntryRepo struct {
	db  *sql.DB          // db is the underlying database connection pool
	now func() time.Time // now is the clock used for created_at/updated_at
}

// NewEntryRepo constructs an EntryRepo with the provided DB handle.
func NewEntryRepo(db *sql.DB) *EntryRepo {
	return &EntryRepo{db: db, now: time.Now}
}

// timestamp returns the current time at the precision both dialects store
// (DATETIME(6) on MySQL).
func (r *EntryRepo) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Microsecond)
}

// Insert stores a new entry and returns it with its generated id.
// created_at and updated_at are set to the same instant.  A missing
// required attribute yields validation.Errors without touching the DB.
func (r *EntryRepo) Insert(ctx context.Context, f model.EntryFields) (*model.Entry, error) {
	var verrs validation.Errors
	if f.Title == "" {
		verrs = append(verrs, validation.FieldError{Field: "title", Message: "Title is required"})
	}
	if !f.Kind.Valid() {
		verrs = append(verrs, validation.FieldError{Field: "type", Message: "Type must be either Movie or TV Show"})
	}
	if f.Director == "" {
		verrs = append(verrs, validation.FieldError{Field: "director", Message: "Director is required"})
	}
	if len(verrs) > 0 {
		return nil, verrs
	}
	if f.Status == "" {
		f.Status = model.StatusCompleted
	}

	ts := r.timestamp()
	const qInsert = `INSERT INTO movies_and_shows
		(title, type, director, budget, location, duration, year, time_range,
		 description, rating, genre, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert,
		f.Title, string(f.Kind), f.Director, nullString(f.Budget), nullString(f.Location),
		nullInt(f.DurationMinutes), nullInt(f.Year), nullString(f.ActiveRange),
		nullString(f.Description), nullFloat(f.Rating), nullString(f.Genre),
		string(f.Status), ts, ts)
	if err != nil {
		return nil, errors.Wrap(err, "insert entry")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, errors.Wrap(err, "insert entry")
	}

	// Read the row back so callers receive exactly what was persisted.
	return r.GetByID(ctx, id)
}

// GetByID fetches an entry by its ID.  It returns ErrEntryNotFound if no
// row is found.
func (r *EntryRepo) GetByID(ctx context.Context, id int64) (*model.Entry, error) {
	q := "SELECT " + entryColumns + " FROM movies_and_shows WHERE id = ?"
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, errors.Wrapf(err, "get entry %d", id)
	}
	return &e, nil
}

// Update writes the set fields of p to entry id and refreshes updated_at.
// updated_at always moves forward, even for an empty patch or when two
// updates land within the same clock tick.  The existence check and the
// write are separate statements.
func (r *EntryRepo) Update(ctx context.Context, id int64, p model.EntryPatch) (*model.Entry, error) {
	prev, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ts := r.timestamp()
	if floor := prev.UpdatedAt.Add(time.Microsecond); ts.Before(floor) {
		ts = floor
	}

	sets := []string{}
	args := []any{}
	set := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	if p.Title.Set {
		set("title", p.Title.Value)
	}
	if p.Kind.Set {
		set("type", string(p.Kind.Value))
	}
	if p.Director.Set {
		set("director", p.Director.Value)
	}
	if p.Budget.Set {
		set("budget", nullString(p.Budget.Value))
	}
	if p.Location.Set {
		set("location", nullString(p.Location.Value))
	}
	if p.DurationMinutes.Set {
		set("duration", nullInt(p.DurationMinutes.Value))
	}
	if p.Year.Set {
		set("year", nullInt(p.Year.Value))
	}
	if p.ActiveRange.Set {
		set("time_range", nullString(p.ActiveRange.Value))
	}
	if p.Description.Set {
		set("description", nullString(p.Description.Value))
	}
	if p.Rating.Set {
		set("rating", nullFloat(p.Rating.Value))
	}
	if p.Genre.Set {
		set("genre", nullString(p.Genre.Value))
	}
	if p.Status.Set {
		set("status", string(p.Status.Value))
	}
	set("updated_at", ts)
	args = append(args, id)

	q := "UPDATE movies_and_shows SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "update entry %d", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrEntryNotFound // deleted between the check and the write
	}
	return r.GetByID(ctx, id)
}

// Delete removes entry id.  It returns ErrEntryNotFound when there is no
// such entry.
func (r *EntryRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM movies_and_shows WHERE id = ?", id)
	if err != nil {
		return errors.Wrapf(err, "delete entry %d", id)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete entry %d", id)
	}
	if n == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// Count returns the number of stored entries.
func (r *EntryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM movies_and_shows").Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count entries")
	}
	return n, nil
}

// Ping checks that the database is reachable.
func (r *EntryRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (model.Entry, error) {
	var (
		e                                         model.Entry
		kind, status                              string
		budget, location, timeRange, descr, genre sql.NullString
		duration, year                            sql.NullInt64
		rating                                    sql.NullFloat64
	)
	if err := s.Scan(&e.ID, &e.Title, &kind, &e.Director, &budget, &location, &duration, &year,
		&timeRange, &descr, &rating, &genre, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.Entry{}, err
	}
	e.Kind = model.Kind(kind)
	e.Status = model.Status(status)
	e.Budget = strPtr(budget)
	e.Location = strPtr(location)
	e.ActiveRange = strPtr(timeRange)
	e.Description = strPtr(descr)
	e.Genre = strPtr(genre)
	e.DurationMinutes = intPtr(duration)
	e.Year = intPtr(year)
	if rating.Valid {
		v := rating.Float64
		e.Rating = &v
	}
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return e, nil
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func strPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}
