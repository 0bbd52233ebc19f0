package record

import (
	"strings"

	"github.com/papercomputeco/tagstash/pkg/tag"
)

// Query is a search query in the same normalized space as stored tags.
// Tokens are distinct and keep their first-occurrence order; only membership
// matters for matching.
type Query struct {
	Tokens []string
}

// NewQuery tokenizes and normalizes free-form query text.
func NewQuery(text string) Query {
	raw := tag.Parse(text)
	tokens := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, r := range raw {
		token := tag.Normalize(r)
		if token == "" {
			continue
		}
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		tokens = append(tokens, token)
	}
	return Query{Tokens: tokens}
}

// IsEmpty reports whether the query has no tokens and so matches everything.
func (q Query) IsEmpty() bool {
	return len(q.Tokens) == 0
}

// String joins the tokens with single spaces.
func (q Query) String() string {
	return strings.Join(q.Tokens, " ")
}
