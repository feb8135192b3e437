// Package form binds and validates the HTML forms of the booking site and
// the JSON bodies of the quiz API.  It installs go-playground/validator as
// echo's Validator and registers the domain tags used by the form structs:
//
//	genre         one of Genres
//	us_state      one of States
//	flexdatetime  a time accepted by ParseTime
package form

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validator adapts validator.Validate to echo.Validator.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns a Validator with the domain tags registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return genreSet[fl.Field().String()]
	})
	_ = v.RegisterValidation("us_state", func(fl validator.FieldLevel) bool {
		return stateSet[fl.Field().String()]
	})
	_ = v.RegisterValidation("flexdatetime", func(fl validator.FieldLevel) bool {
		_, err := ParseTime(fl.Field().String())
		return err == nil
	})
	v.RegisterStructValidation(artistWindow, ArtistForm{})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i any) error {
	return cv.v.Struct(i)
}

// fieldName reports fields by their form or json name.
func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"form", "json"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// Problems turns a validation error into one message per field.  Errors of
// other kinds are reported under the empty key.
func Problems(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		if err != nil {
			out[""] = err.Error()
		}
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = message(fe)
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	case "url":
		return "Invalid URL."
	case "number", "numeric":
		return "Must be a number."
	case "genre":
		return "Not a valid choice."
	case "us_state":
		return "Not a valid state."
	case "flexdatetime":
		return "Not a valid datetime value."
	case "window":
		return "Must not be earlier than available from."
	case "min", "gte", "lte":
		return fmt.Sprintf("Out of range (%s %s).", fe.Tag(), fe.Param())
	}
	return "Invalid value."
}

// Layouts are tried in order by ParseTime.  The first matches the HTML
// datetime-local input.
var Layouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
}

// ParseTime parses s with the first matching layout.  Times without a zone
// are taken as UTC; the result is always in UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range Layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised datetime %q", s)
}

// InputTime formats t for a datetime-local input.
func InputTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(Layouts[0])
}
