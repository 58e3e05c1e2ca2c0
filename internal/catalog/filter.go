package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// ParseFilter reads list filters from a query string: title, year, the kind's
// secondary field (author, publisher or director) and search.
func ParseFilter(k Kind, q url.Values) Filter {
	f := Filter{
		Title:     strings.TrimSpace(q.Get("title")),
		Secondary: strings.TrimSpace(q.Get(k.Secondary)),
		Search:    strings.TrimSpace(q.Get("search")),
	}

	if year := strings.TrimSpace(q.Get("year")); year != "" {
		n, err := parseYear(year)
		if err != nil {
			f.MatchNone = true
		} else {
			f.Year = &n
		}
	}
	return f
}


// parseYear parses a year that fits the 32-bit year column of every dialect.
func parseYear(s string) (int, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
