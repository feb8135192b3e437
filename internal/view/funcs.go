package view

import (
	"html/template"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iliyamo/fyyur-trivia/internal/form"
	"github.com/iliyamo/fyyur-trivia/internal/model"
)

const (
	fullLayout   = "Monday January, 2, 2006 at 3:04PM"
	mediumLayout = "Mon 01, 02, 2006 3:04PM"
)

// FormatDatetime renders t for display.  format is "full" or "medium"
// (default).
func FormatDatetime(t time.Time, format string) string {
	if t.IsZero() {
		return ""
	}
	if format == "full" {
		return t.UTC().Format(fullLayout)
	}
	return t.UTC().Format(mediumLayout)
}

// Funcs are available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"datetime":  FormatDatetime,
		"humanize":  humanize.Time,
		"join":      strings.Join,
		"has":       func(list []string, s string) bool { return model.Genres(list).Contains(s) },
		"genres":    func() []string { return form.Genres },
		"states":    func() []string { return form.States },
		"inputTime": form.InputTime,
		"lines":     func(s string) []string { return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") },
	}
}
