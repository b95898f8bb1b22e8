package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/movie-show-catalog/internal/repository"
	"github.com/iliyamo/movie-show-catalog/internal/validation"
)

// Messages shared by handlers and the error handler.
const (
	MsgValidation   = "Validation error"
	MsgNotFound     = "Entry not found"
	MsgInvalidID    = "Invalid entry ID"
	MsgInvalidBody  = "Request body must be a JSON object"
	MsgInternal     = "Internal server error"
	MsgBodyTooLarge = "Request entity too large"
)

// opError marks an infrastructure failure of one catalog operation, e.g.
// "create entry".
type opError struct {
	op  string
	err error
}

func (e *opError) Error() string { return "failed to " + e.op + ": " + e.err.Error() }
func (e *opError) Unwrap() error { return e.err }

// failed classifies err for the error handler: validation and not-found
// errors pass through, anything else becomes an opError for op.
func failed(op string, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) || errors.Is(err, repository.ErrEntryNotFound) {
		return err
	}
	return &opError{op: op, err: err}
}

// NewErrorHandler renders every error as an Envelope.  With exposeDetails
// set (development) a 500 message carries the underlying error text.
func NewErrorHandler(exposeDetails bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := classify(err, c, exposeDetails)
		if status >= http.StatusInternalServerError {
			zerolog.Ctx(c.Request().Context()).Error().Err(err).
				Str("method", c.Request().Method).Str("path", c.Request().URL.Path).Msg("request failed")
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(status)
		} else {
			werr = c.JSON(status, body)
		}
		if werr != nil {
			zerolog.Ctx(c.Request().Context()).Error().Err(werr).Msg("write error response")
		}
	}
}

func classify(err error, c echo.Context, exposeDetails bool) (int, Envelope) {
	var (
		verrs validation.Errors
		oe    *opError
		he    *echo.HTTPError
	)
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, Envelope{Message: MsgValidation, Errors: verrs}
	case errors.Is(err, repository.ErrEntryNotFound):
		return http.StatusNotFound, Envelope{Message: MsgNotFound}
	case errors.As(err, &oe):
		msg := "Failed to " + oe.op
		if exposeDetails {
			msg += ": " + oe.err.Error()
		}
		return http.StatusInternalServerError, Envelope{Message: msg}
	case errors.As(err, &he):
		switch he.Code {
		case http.StatusNotFound, http.StatusMethodNotAllowed:
			return http.StatusNotFound, Envelope{
				Message:   fmt.Sprintf("Route not found: %s %s", c.Request().Method, c.Request().URL.RequestURI()),
				Timestamp: isoNow(),
			}
		case http.StatusRequestEntityTooLarge:
			return he.Code, Envelope{Message: MsgBodyTooLarge}
		}
		msg, ok := he.Message.(string)
		if !ok || he.Code >= http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
			if he.Code == http.StatusInternalServerError {
				msg = MsgInternal
			}
		}
		return he.Code, Envelope{Message: msg}
	}
	msg := MsgInternal
	if exposeDetails {
		msg += ": " + err.Error()
	}
	return http.StatusInternalServerError, Envelope{Message: msg}
}
