package catalog

import (
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when no item with the given id exists for a kind.
	ErrNotFound = errors.New("item not found")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("invalid item")

	// ErrUnknownKind is returned by LookupKind for names that are not a catalog kind.
	ErrUnknownKind = errors.New("unknown kind")
)

// Item is a stored record of one kind. Fields holds the kind's text columns by name.
type Item struct {
	ID     int64
	Kind   string
	Fields map[string]string
	Year   int
	Rank   int
}

// Get returns the value of a text field, or "" when it is unset.
func (i Item) Get(name string) string {
	return i.Fields[name]
}

// Title returns the item's title.
func (i Item) Title() string {
	return i.Fields["title"]
}

// MarshalJSON flattens the kind's fields next to id, kind, year and rank.
func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Fields)+4)
	for name, value := range i.Fields {
		out[name] = value
	}
	out["id"] = i.ID
	out["kind"] = i.Kind
	out["year"] = i.Year
	out["rank"] = i.Rank
	return json.Marshal(out)
}

// Input is the raw, unvalidated data submitted to create an item.
type Input struct {
	Fields map[string]string
	Year   string
}

// Filter narrows a listing. A non-empty Search switches to free-text mode, where the
// term is matched against the title, the secondary field and (when numeric) the year,
// and the per-field filters are ignored.
type Filter struct {
	Title     string
	Secondary string
	Year      *int
	Search    string

	// MatchNone is set when a filter value can never match, e.g. a non-numeric year.
	MatchNone bool
}

// IsZero reports whether the filter selects every item.
func (f Filter) IsZero() bool {
	return f.Title == "" && f.Secondary == "" && f.Year == nil && f.Search == "" && !f.MatchNone
}
