package model

import (
    "database/sql/driver"
    "fmt"
    "strings"
)

// Genres is an ordered set of genre names.  It is persisted as the
// comma-joined text stored by the first schema revision ("Jazz,Rock").  Blank
// entries and repeats are dropped; the first occurrence keeps its position.
type Genres []string

// ParseGenres splits a comma-joined column value.
func ParseGenres(s string) Genres {
    return NewGenres(strings.Split(s, ",")...)
}

// NewGenres builds a Genres value from arbitrary input, trimming each name.
func NewGenres(names ...string) Genres {
    out := make(Genres, 0, len(names))
    seen := make(map[string]bool, len(names))
    for _, n := range names {
        n = strings.TrimSpace(n)
        if n == "" || seen[n] {
            continue
        }
        seen[n] = true
        out = append(out, n)
    }
    return out
}

// String returns the storage form.
func (g Genres) String() string { return strings.Join(g, ",") }

// Contains reports whether name is one of the genres.
func (g Genres) Contains(name string) bool {
    for _, n := range g {
        if n == name {
            return true
        }
    }
    return false
}

// Value implements driver.Valuer.
func (g Genres) Value() (driver.Value, error) {
    return NewGenres(g...).String(), nil
}

// Scan implements sql.Scanner.
func (g *Genres) Scan(src any) error {
    switch v := src.(type) {
    case nil:
        *g = Genres{}
    case string:
        *g = ParseGenres(v)
    case []byte:
        *g = ParseGenres(string(v))
    default:
        return fmt.Errorf("genres: cannot scan %T", src)
    }
    return nil
}
