package validation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// Defaults and bounds for list pagination.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	MaxPage      = 1000000 // keeps (page-1)*limit well inside int range
)

// ListQuery is a validated list request.
type ListQuery struct {
	Page   int        `query:"page" validate:"min=1,max=1000000"`
	Limit  int        `query:"limit" validate:"min=1,max=100"`
	Search string     `query:"search" validate:"max=255"`
	Kind   model.Kind `query:"type" validate:"omitempty,oneof='Movie' 'TV Show'"`
}

var queryMessages = map[string]string{
	"page":   "Page must be a positive integer",
	"limit":  "Limit must be between 1 and 100",
	"search": "Search term too long",
	"type":   msgKind,
}

const msgPageTooLarge = "Page must not exceed 1000000"

// ValidateListQuery parses page, limit, search and type.  Missing or empty
// page and limit take their defaults; search is trimmed and an empty search
// means no text filter.
func ValidateListQuery(values url.Values) (ListQuery, error) {
	var errs Errors
	q := ListQuery{
		Page:   DefaultPage,
		Limit:  DefaultLimit,
		Search: strings.TrimSpace(values.Get("search")),
		Kind:   model.Kind(values.Get("type")),
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs.add("page", queryMessages["page"])
		} else {
			q.Page = n
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs.add("limit", queryMessages["limit"])
		} else {
			q.Limit = n
		}
	}
	if err := V().Struct(q); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range ve {
				if errs.has(fe.Field()) {
					continue
				}
				msg := queryMessages[fe.Field()]
				if fe.Field() == "page" && fe.Tag() == "max" {
					msg = msgPageTooLarge
				}
				errs.add(fe.Field(), msg)
			}
		} else {
			return ListQuery{}, err
		}
	}
	if err := errs.orNil(); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}

func (e Errors) has(field string) bool {
	for _, fe := range e {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Offset returns the number of rows skipped before this page.
func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }
