// Package repository holds the gorm-backed data access layer of both
// applications.  Every mutation runs inside db.Transaction, so the pooled
// connection is committed or rolled back and returned on every path.
//
// The sentinel values below let handlers map failures to responses with
// errors.Is.
package repository

import "errors"

var (
	ErrVenueNotFound    = errors.New("venue not found")
	ErrArtistNotFound   = errors.New("artist not found")
	ErrShowNotFound     = errors.New("show not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrPlayerNotFound   = errors.New("player not found")

	// ErrArtistUnavailable rejects a show outside the artist's window.
	ErrArtistUnavailable = errors.New("artist not available at start time")

	// ErrNoQuestionsLeft means every quiz candidate was excluded.
	ErrNoQuestionsLeft = errors.New("no questions left")
)
