package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilter(t *testing.T) {
	year := 1965
	tests := []struct {
		name  string
		kind  Kind
		query string
		want  Filter
	}{
		{"empty", Books, "", Filter{}},
		{"title and author", Books, "title=+dune+&author=herb", Filter{Title: "dune", Secondary: "herb"}},
		{"secondary follows kind", Films, "director=mann&author=ignored", Filter{Secondary: "mann"}},
		{"year", Magazines, "year=1965", Filter{Year: &year}},
		{"blank year ignored", Books, "year=+", Filter{}},
		{"non-numeric year matches nothing", Books, "year=abc", Filter{MatchNone: true}},
		{"year beyond column range matches nothing", Books, "year=3000000000", Filter{MatchNone: true}},
		{"search", Books, "search=war", Filter{Search: "war"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ParseFilter(tt.kind, q))
		})
	}
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Search: "x"}.IsZero())
	assert.False(t, Filter{MatchNone: true}.IsZero())
}
