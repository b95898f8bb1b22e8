package repository

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// EntrySearchQuery defines filters & pagination for listing entries.
type EntrySearchQuery struct {
	Search   string     // case-insensitive substring of title, director or genre
	Kind     model.Kind // exact match when non-empty
	Page     int        // 1-based
	PageSize int
}

// escapeLike makes %, _ and the escape character itself match literally
// in a LIKE pattern declared with ESCAPE '!'.
func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

// List returns one page of entries matching q, newest first, together with
// the total number of matching entries.  Ties on created_at are broken by
// id so that consecutive pages never overlap.
func (r *EntryRepo) List(ctx context.Context, q EntrySearchQuery) ([]model.Entry, int64, error) {
	where := []string{}
	args := []any{}

	if s := strings.TrimSpace(q.Search); s != "" {
		pattern := "%" + escapeLike(strings.ToLower(s)) + "%"
		where = append(where, `(LOWER(title) LIKE ? ESCAPE '!'
			OR LOWER(director) LIKE ? ESCAPE '!'
			OR LOWER(genre) LIKE ? ESCAPE '!')`)
		args = append(args, pattern, pattern, pattern)
	}
	if q.Kind != "" {
		where = append(where, "type = ?")
		args = append(args, string(q.Kind))
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM movies_and_shows WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count entries")
	}

	limit := q.PageSize
	if limit < 1 {
		limit = 10
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	dataSQL := `SELECT ` + entryColumns + `
		FROM movies_and_shows
		WHERE ` + cond + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list entries")
	}
	defer rows.Close()

	out := make([]model.Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan entry")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "list entries")
	}
	return out, total, nil
}
