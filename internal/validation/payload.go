package validation

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/movie-show-catalog/internal/model"
)

// Field holds one raw JSON member of a request body.  It records whether the
// member was present at all, which lets partial updates tell an omitted
// field from an explicit null.
type Field struct {
	present bool
	raw     json.RawMessage
}

// UnmarshalJSON is only invoked for members that appear in the document,
// including those whose value is null.
func (f *Field) UnmarshalJSON(b []byte) error {
	f.present = true
	f.raw = append(f.raw[:0], b...)
	return nil
}

// MarshalJSON writes the raw member back out; an absent field encodes as null.
func (f Field) MarshalJSON() ([]byte, error) {
	if !f.present {
		return []byte("null"), nil
	}
	return f.raw, nil
}

// RawField builds a present field from a JSON literal such as `"Heat"`,
// `42` or `null`.
func RawField(literal string) Field {
	return Field{present: true, raw: json.RawMessage(literal)}
}

// Present reports whether the member appeared in the body.
func (f Field) Present() bool { return f.present }

// Null reports whether the member appeared with the value null.
func (f Field) Null() bool { return f.present && bytes.Equal(bytes.TrimSpace(f.raw), []byte("null")) }

func (f Field) lead() byte {
	b := bytes.TrimSpace(f.raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}

func (f Field) isString() bool { return f.lead() == '"' }

func (f Field) isNumber() bool {
	c := f.lead()
	return c == '-' || (c >= '0' && c <= '9')
}

func (f Field) str() (string, bool) {
	if !f.isString() {
		return "", false
	}
	var s string
	if err := json.Unmarshal(f.raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// EntryPayload is the request body of create and update.  Unknown members
// are ignored.
type EntryPayload struct {
	Title       Field `json:"title"`
	Type        Field `json:"type"`
	Director    Field `json:"director"`
	Budget      Field `json:"budget"`
	Location    Field `json:"location"`
	Duration    Field `json:"duration"`
	Year        Field `json:"year"`
	TimeRange   Field `json:"timeRange"`
	Description Field `json:"description"`
	Rating      Field `json:"rating"`
	Genre       Field `json:"genre"`
	Status      Field `json:"status"`
}

type textRule struct {
	field string
	label string
	tag   string // validator tag applied to non-empty values
	long  string // message for a failed max
}

var (
	titleRule       = textRule{"title", "Title", "max=255", "Title too long"}
	directorRule    = textRule{"director", "Director", "max=255", "Director name too long"}
	locationRule    = textRule{"location", "Location", "max=255", "Location too long"}
	timeRangeRule   = textRule{"timeRange", "Time range", "max=50", "Time range too long"}
	genreRule       = textRule{"genre", "Genre", "max=100", "Genre too long"}
	descriptionRule = textRule{"description", "Description", "", ""}
)

const (
	msgKind   = "Type must be either Movie or TV Show"
	msgStatus = "Status must be one of completed, ongoing, cancelled"
	msgBudget = "Budget must be a valid positive number"
	msgRating = "Rating must be between 0 and 10"
)

var budgetPattern = regexp.MustCompile(`^\d{1,13}(\.\d{1,2})?$`)

// now is replaced in tests that pin the year bound.
var now = time.Now

// ValidateCreate checks a creation payload.  title, type and director are
// required; status defaults to completed; empty optional strings become nil.
func ValidateCreate(p EntryPayload) (model.EntryFields, error) {
	var errs Errors
	out := model.EntryFields{Status: model.StatusCompleted}

	out.Title = requiredText(&errs, titleRule, p.Title)
	out.Kind = kind(&errs, p.Type)
	out.Director = requiredText(&errs, directorRule, p.Director)
	out.Budget = budget(&errs, p.Budget)
	out.Location = optionalText(&errs, locationRule, p.Location)
	out.DurationMinutes = duration(&errs, p.Duration)
	out.Year = year(&errs, p.Year)
	out.ActiveRange = optionalText(&errs, timeRangeRule, p.TimeRange)
	out.Description = optionalText(&errs, descriptionRule, p.Description)
	out.Rating = rating(&errs, p.Rating)
	out.Genre = optionalText(&errs, genreRule, p.Genre)
	if p.Status.Present() && !p.Status.Null() {
		out.Status = status(&errs, p.Status)
	}
	if err := errs.orNil(); err != nil {
		return model.EntryFields{}, err
	}
	return out, nil
}

// ValidatePatch checks a partial update.  Omitted members stay unset in the
// returned patch; present members follow the creation rules, and required
// attributes cannot be cleared.
func ValidatePatch(p EntryPayload) (model.EntryPatch, error) {
	var errs Errors
	var out model.EntryPatch

	if p.Title.Present() {
		out.Title = model.Some(requiredText(&errs, titleRule, p.Title))
	}
	if p.Type.Present() {
		out.Kind = model.Some(kind(&errs, p.Type))
	}
	if p.Director.Present() {
		out.Director = model.Some(requiredText(&errs, directorRule, p.Director))
	}
	if p.Budget.Present() {
		out.Budget = model.Some(budget(&errs, p.Budget))
	}
	if p.Location.Present() {
		out.Location = model.Some(optionalText(&errs, locationRule, p.Location))
	}
	if p.Duration.Present() {
		out.DurationMinutes = model.Some(duration(&errs, p.Duration))
	}
	if p.Year.Present() {
		out.Year = model.Some(year(&errs, p.Year))
	}
	if p.TimeRange.Present() {
		out.ActiveRange = model.Some(optionalText(&errs, timeRangeRule, p.TimeRange))
	}
	if p.Description.Present() {
		out.Description = model.Some(optionalText(&errs, descriptionRule, p.Description))
	}
	if p.Rating.Present() {
		out.Rating = model.Some(rating(&errs, p.Rating))
	}
	if p.Genre.Present() {
		out.Genre = model.Some(optionalText(&errs, genreRule, p.Genre))
	}
	if p.Status.Present() {
		out.Status = model.Some(status(&errs, p.Status))
	}
	if err := errs.orNil(); err != nil {
		return model.EntryPatch{}, err
	}
	return out, nil
}

func requiredText(errs *Errors, r textRule, f Field) string {
	if !f.Present() || f.Null() {
		errs.add(r.field, r.label+" is required")
		return ""
	}
	s, ok := f.str()
	if !ok {
		errs.add(r.field, r.label+" must be a string")
		return ""
	}
	if err := V().Var(s, "required,"+r.tag); err != nil {
		if failedTag(err) == "required" {
			errs.add(r.field, r.label+" is required")
		} else {
			errs.add(r.field, r.long)
		}
		return ""
	}
	return s
}

func optionalText(errs *Errors, r textRule, f Field) *string {
	if !f.Present() || f.Null() {
		return nil
	}
	s, ok := f.str()
	if !ok {
		errs.add(r.field, r.label+" must be a string")
		return nil
	}
	if s == "" {
		return nil
	}
	if r.tag != "" {
		if err := V().Var(s, r.tag); err != nil {
			errs.add(r.field, r.long)
			return nil
		}
	}
	return &s
}

func kind(errs *Errors, f Field) model.Kind {
	s, ok := f.str()
	if !ok || V().Var(s, "oneof='Movie' 'TV Show'") != nil {
		errs.add("type", msgKind)
		return ""
	}
	return model.Kind(s)
}

func status(errs *Errors, f Field) model.Status {
	s, ok := f.str()
	if !ok || !model.Status(s).Valid() {
		errs.add("status", msgStatus)
		return ""
	}
	return model.Status(s)
}

// budget accepts a decimal string (or a bare JSON number) and normalises it
// to two decimal places without leading zeros.
func budget(errs *Errors, f Field) *string {
	if !f.Present() || f.Null() {
		return nil
	}
	var s string
	switch {
	case f.isString():
		s, _ = f.str()
	case f.isNumber():
		s = string(bytes.TrimSpace(f.raw))
	default:
		errs.add("budget", msgBudget)
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if !budgetPattern.MatchString(s) {
		errs.add("budget", msgBudget)
		return nil
	}
	n := NormalizeDecimal(s)
	return &n
}

// NormalizeDecimal rewrites a string matching ^\d+(\.\d{1,2})?$ to exactly
// two decimal places, e.g. "007" becomes "7.00" and "9.5" becomes "9.50".
func NormalizeDecimal(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}
	return intPart + "." + frac
}

// rating accepts a JSON number or a numeric string in [0, 10] and rounds it
// to one decimal place.
func rating(errs *Errors, f Field) *float64 {
	if !f.Present() || f.Null() {
		return nil
	}
	var text string
	switch {
	case f.isString():
		text, _ = f.str()
		text = strings.TrimSpace(text)
		if text == "" {
			return nil
		}
	case f.isNumber():
		text = string(bytes.TrimSpace(f.raw))
	default:
		errs.add("rating", msgRating)
		return nil
	}
	r, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r < 0 || r > 10 {
		errs.add("rating", msgRating)
		return nil
	}
	r = math.Round(r*10) / 10
	return &r
}

func duration(errs *Errors, f Field) *int {
	n, ok := wholeNumber(errs, "duration", "Duration", f)
	if !ok {
		return nil
	}
	if V().Var(n, "min=1") != nil {
		errs.add("duration", "Duration must be at least 1 minute")
		return nil
	}
	return &n
}

func year(errs *Errors, f Field) *int {
	n, ok := wholeNumber(errs, "year", "Year", f)
	if !ok {
		return nil
	}
	switch {
	case n < 1800:
		errs.add("year", "Year must be after 1800")
		return nil
	case n > now().Year()+10:
		errs.add("year", "Year cannot be too far in the future")
		return nil
	}
	return &n
}

// wholeNumber decodes an integral JSON number.  ok is false for an absent or
// null member as well as for an invalid one; only the latter records an error.
func wholeNumber(errs *Errors, field, label string, f Field) (int, bool) {
	if !f.Present() || f.Null() {
		return 0, false
	}
	if !f.isNumber() {
		errs.add(field, label+" must be a whole number")
		return 0, false
	}
	x, err := strconv.ParseFloat(string(bytes.TrimSpace(f.raw)), 64)
	if err != nil || x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
		errs.add(field, label+" must be a whole number")
		return 0, false
	}
	return int(x), true
}

func failedTag(err error) string {
	if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
		return ve[0].Tag()
	}
	return ""
}
