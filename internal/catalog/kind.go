package catalog

import (
	"fmt"
	"strings"
)

// Field describes one text column of a kind.
type Field struct {
	Name     string
	Label    string
	Required bool
	MaxLen   int
}

// Kind describes one catalog category. Plural doubles as the table name and the
// list path, so it must stay a plain identifier.
type Kind struct {
	Name      string
	Plural    string
	Label     string
	Fields    []Field
	Secondary string
}

var (
	Books = Kind{
		Name:   "book",
		Plural: "books",
		Label:  "Books",
		Fields: []Field{
			{Name: "title", Label: "Title", Required: true, MaxLen: 150},
			{Name: "author", Label: "Author", Required: true, MaxLen: 100},
		},
		Secondary: "author",
	}

	Magazines = Kind{
		Name:   "magazine",
		Plural: "magazines",
		Label:  "Magazines",
		Fields: []Field{
			{Name: "title", Label: "Title", Required: true, MaxLen: 150},
			{Name: "issue", Label: "Issue", Required: true, MaxLen: 50},
			{Name: "publisher", Label: "Publisher", Required: true, MaxLen: 100},
		},
		Secondary: "publisher",
	}

	Films = Kind{
		Name:   "film",
		Plural: "films",
		Label:  "Films",
		Fields: []Field{
			{Name: "title", Label: "Title", Required: true, MaxLen: 150},
			{Name: "director", Label: "Director", Required: true, MaxLen: 100},
			{Name: "genre", Label: "Genre", MaxLen: 100},
		},
		Secondary: "director",
	}
)

// Kinds returns every catalog kind in display order.
func Kinds() []Kind {
	return []Kind{Books, Magazines, Films}
}

// LookupKind resolves a singular or plural kind name, case-insensitively.
func LookupKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if name == k.Name || name == k.Plural {
			return k, nil
		}
	}
	return Kind{}, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Table returns the kind's table name.
func (k Kind) Table() string {
	return k.Plural
}

// Path returns the kind's list path.
func (k Kind) Path() string {
	return "/" + k.Plural
}

// DeletePath returns the path that deletes the item with the given id.
func (k Kind) DeletePath(id int64) string {
	return fmt.Sprintf("/delete_%s/%d", k.Name, id)
}

// SecondaryField returns the descriptor of the secondary search field.
func (k Kind) SecondaryField() Field {
	for _, f := range k.Fields {
		if f.Name == k.Secondary {
			return f
		}
	}
	return Field{Name: k.Secondary}
}
