package repository

import "strings"

// likeEscape is the escape character declared in every LIKE clause.  '!'
// needs no quoting in MySQL, PostgreSQL or SQLite string literals.
const likeEscape = "!"

// containsClause is a case-insensitive substring match on col.
func containsClause(col string) string {
	return "LOWER(" + col + ") LIKE ? ESCAPE '" + likeEscape + "'"
}

// containsPattern lower-cases term and escapes LIKE wildcards so user input
// is always matched literally.
func containsPattern(term string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
