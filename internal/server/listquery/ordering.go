package listquery

import "strings"

// OrderTerm is one field of an ordering parameter.
type OrderTerm struct {
	Field string
	Desc  bool
}

// ParseOrdering parses "title,-created_at". Fields not in allowed are
// ignored; when nothing valid remains, def is returned.
func ParseOrdering(raw string, allowed []string, def []OrderTerm) []OrderTerm {
	ok := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		ok[a] = struct{}{}
	}

	var terms []OrderTerm
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		field := strings.TrimPrefix(part, "-")
		if _, found := ok[field]; !found {
			continue
		}
		terms = append(terms, OrderTerm{Field: field, Desc: desc})
	}

	if len(terms) == 0 {
		return def
	}
	return terms
}

// Asc builds ascending terms for fields.
func Asc(fields ...string) []OrderTerm {
	terms := make([]OrderTerm, len(fields))
	for i, f := range fields {
		terms[i] = OrderTerm{Field: f}
	}
	return terms
}
