package persistence

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps a user-supplied term for a contains-style LIKE match,
// escaping the wildcard characters so "%" matches a literal percent sign
// instead of every row.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
