// Package listquery builds the WHERE and ORDER BY parts of list queries from
// filter, search and ordering parameters, using PostgreSQL positional
// placeholders.
package listquery

import (
	"fmt"
	"strings"
)

// Query accumulates conditions, arguments and ordering for one SELECT.
type Query struct {
	where   []string
	args    []any
	orderBy []string
}

// Arg registers v and returns its placeholder ("$1", "$2", ...).
func (q *Query) Arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

// Where adds a condition. Each %s verb in format is replaced by the
// placeholder of the matching arg:
//
//	q.Where("author_id = %s", authorID)
func (q *Query) Where(format string, args ...any) {
	ph := make([]any, len(args))
	for i, a := range args {
		ph[i] = q.Arg(a)
	}
	q.where = append(q.where, fmt.Sprintf(format, ph...))
}

// Search splits text into terms on whitespace and commas. Every term must
// match at least one of columns, case-insensitively, as a substring.
func (q *Query) Search(text string, columns ...string) {
	if len(columns) == 0 {
		return
	}
	for _, term := range SearchTerms(text) {
		p := q.Arg("%" + EscapeLike(term) + "%")
		parts := make([]string, len(columns))
		for i, c := range columns {
			parts[i] = c + " ILIKE " + p
		}
		q.where = append(q.where, "("+strings.Join(parts, " OR ")+")")
	}
}

// OrderBy appends ORDER BY terms. columns maps public field names to SQL
// expressions; terms naming unknown fields were already dropped by
// ParseOrdering.
func (q *Query) OrderBy(terms []OrderTerm, columns map[string]string) {
	for _, t := range terms {
		col, ok := columns[t.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if t.Desc {
			dir = "DESC"
		}
		q.orderBy = append(q.orderBy, col+" "+dir)
	}
}

// Build returns base followed by the WHERE and ORDER BY clauses, and the args.
func (q *Query) Build(base string) (string, []any) {
	var sb strings.Builder
	sb.WriteString(base)
	if len(q.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(q.where, " AND "))
	}
	if len(q.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(q.orderBy, ", "))
	}
	return sb.String(), q.args
}

// SearchTerms splits a search parameter the way the list endpoints expect.
func SearchTerms(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// EscapeLike escapes LIKE wildcards so term matches literally.
func EscapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}
