package handler

import (
	"time"

	"github.com/iliyamo/movie-show-catalog/internal/model"
	"github.com/iliyamo/movie-show-catalog/internal/validation"
)

// Envelope is the body of every API response.  Success is always present;
// the other members only when they carry a value.
type Envelope struct {
	Success   bool              `json:"success"`
	Data      any               `json:"data,omitempty"`
	Message   string            `json:"message,omitempty"`
	Errors    validation.Errors `json:"errors,omitempty"`
	Timestamp string            `json:"timestamp,omitempty"`
}

// Pagination describes one page of a list response.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// EntryPage is the data member of a list response.
type EntryPage struct {
	Entries    []model.Entry `json:"entries"`
	Pagination Pagination    `json:"pagination"`
}

// NewPagination derives the paging flags from page, limit and total.
func NewPagination(page, limit int, total int64) Pagination {
	l := int64(limit)
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: (total + l - 1) / l,
		HasNext:    int64(page)*l < total,
		HasPrev:    page > 1,
	}
}

// isoNow renders the current time the way JavaScript's toISOString does.
func isoNow() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}
