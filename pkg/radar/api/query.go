package api

import (
	"net/url"
	"strings"
)

// query is an ordered set of query parameters. url.Values sorts keys on
// Encode, which would reorder the service's documented parameters.
type query []param

type param struct{ key, value string }

func (q *query) add(key, value string) {
	*q = append(*q, param{key, value})
}

func (q *query) addOptional(key, value string) {
	if value == "" {
		return
	}
	q.add(key, value)
}

func (q query) encode() string {
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}
