package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-show-catalog/internal/repository"
	"github.com/iliyamo/movie-show-catalog/internal/service"
	"github.com/iliyamo/movie-show-catalog/internal/validation"
)

// EntryHandler serves the /api/movies-shows resource.
type EntryHandler struct {
	Catalog *service.CatalogService
}

// NewEntryHandler constructs an EntryHandler and panics if the service is nil.
func NewEntryHandler(catalog *service.CatalogService) *EntryHandler {
	if catalog == nil {
		panic("nil catalog service passed to NewEntryHandler")
	}
	return &EntryHandler{Catalog: catalog}
}

// List handles GET /api/movies-shows with page, limit, search and type.
func (h *EntryHandler) List(c echo.Context) error {
	q, err := validation.ValidateListQuery(c.QueryParams())
	if err != nil {
		return err
	}
	entries, total, err := h.Catalog.List(c.Request().Context(), repository.EntrySearchQuery{
		Search:   q.Search,
		Kind:     q.Kind,
		Page:     q.Page,
		PageSize: q.Limit,
	})
	if err != nil {
		return failed("fetch entries", err)
	}
	return c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    EntryPage{Entries: entries, Pagination: NewPagination(q.Page, q.Limit, total)},
	})
}

// Get handles GET /api/movies-shows/:id.
func (h *EntryHandler) Get(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}
	e, err := h.Catalog.Get(c.Request().Context(), id)
	if err != nil {
		return failed("fetch entry", err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: e})
}

// Create handles POST /api/movies-shows.
func (h *EntryHandler) Create(c echo.Context) error {
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	fields, err := validation.ValidateCreate(p)
	if err != nil {
		return err
	}
	e, err := h.Catalog.Create(c.Request().Context(), fields)
	if err != nil {
		return failed("create entry", err)
	}
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: e, Message: "Entry created successfully"})
}

// Update handles PUT /api/movies-shows/:id with a partial body.
func (h *EntryHandler) Update(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}
	p, err := bindPayload(c)
	if err != nil {
		return err
	}
	patch, err := validation.ValidatePatch(p)
	if err != nil {
		return err
	}
	e, err := h.Catalog.Update(c.Request().Context(), id, patch)
	if err != nil {
		return failed("update entry", err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: e, Message: "Entry updated successfully"})
}

// Delete handles DELETE /api/movies-shows/:id.
func (h *EntryHandler) Delete(c echo.Context) error {
	id, err := entryID(c)
	if err != nil {
		return err
	}
	if err := h.Catalog.Delete(c.Request().Context(), id); err != nil {
		return failed("delete entry", err)
	}
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: "Entry deleted successfully"})
}

// entryID parses the :id path parameter as a positive integer.
func entryID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, MsgInvalidID)
	}
	return id, nil
}

// bindPayload decodes a JSON object body.  An empty body decodes as {};
// anything after the object other than whitespace is rejected.
func bindPayload(c echo.Context) (validation.EntryPayload, error) {
	var p validation.EntryPayload
	dec := json.NewDecoder(c.Request().Body)
	err := dec.Decode(&p)
	if errors.Is(err, io.EOF) {
		return p, nil
	}
	if err == nil {
		if err = dec.Decode(&json.RawMessage{}); errors.Is(err, io.EOF) {
			return p, nil
		}
		if err == nil {
			err = errors.New("unexpected data after JSON body")
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return p, err // body limit
	}
	return p, echo.NewHTTPError(http.StatusBadRequest, MsgInvalidBody).SetInternal(err)
}
