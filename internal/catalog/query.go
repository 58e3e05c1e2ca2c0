package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported databases.
type Dialect struct {
	Name string

	placeholder func(n int) string
	quote       func(ident string) string
	// ilike renders a case-insensitive LIKE; lowerArg reports whether the pattern
	// must be lowercased by the caller to match it.
	ilike    func(column, arg string) string
	lowerArg bool
}

var (
	Postgres = Dialect{
		Name:        "postgres",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
		quote:       func(ident string) string { return `"` + ident + `"` },
		ilike: func(column, arg string) string {
			return fmt.Sprintf("%s ILIKE %s ESCAPE '!'", column, arg)
		},
	}

	// SQLite's LOWER() folds ASCII only; unicode_lower is registered on the driver
	// by internal/platform/database.
	SQLite = Dialect{
		Name:        "sqlite",
		placeholder: func(int) string { return "?" },
		quote:       func(ident string) string { return `"` + ident + `"` },
		ilike: func(column, arg string) string {
			return fmt.Sprintf("unicode_lower(%s) LIKE %s ESCAPE '!'", column, arg)
		},
		lowerArg: true,
	}

	MySQL = Dialect{
		Name:        "mysql",
		placeholder: func(int) string { return "?" },
		quote:       func(ident string) string { return "`" + ident + "`" },
		ilike: func(column, arg string) string {
			return fmt.Sprintf("LOWER(%s) LIKE %s ESCAPE '!'", column, arg)
		},
		lowerArg: true,
	}
)

// likePattern wraps term for substring matching, escaping LIKE metacharacters with '!'.
func likePattern(term string, lower bool) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	if lower {
		term = strings.ToLower(term)
	}
	return "%" + r.Replace(term) + "%"
}

// selectColumns lists id, the kind's text fields, year and rank, in scan order.
func (d Dialect) selectColumns(k Kind) string {
	cols := make([]string, 0, len(k.Fields)+3)
	cols = append(cols, d.quote("id"))
	for _, f := range k.Fields {
		col := d.quote(f.Name)
		cols = append(cols, fmt.Sprintf("COALESCE(%s, '')", col))
	}
	cols = append(cols, d.quote("year"), d.quote("rank"))
	return strings.Join(cols, ", ")
}

// orderBy sorts by rank with unranked rows last and id as tie-breaker.
func (d Dialect) orderBy() string {
	rank := d.quote("rank")
	return fmt.Sprintf("ORDER BY %s IS NULL, %s ASC, %s ASC", rank, rank, d.quote("id"))
}

func (d Dialect) where(k Kind, f Filter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if f.MatchNone {
		return "WHERE 1=0", args
	}

	if f.Search != "" {
		pattern := likePattern(f.Search, d.lowerArg)
		or := []string{
			d.ilike(d.quote("title"), d.placeholder(argn)),
			d.ilike(d.quote(k.Secondary), d.placeholder(argn+1)),
		}
		args = append(args, pattern, pattern)
		argn += 2
		if year, err := parseYear(f.Search); err == nil {
			or = append(or, fmt.Sprintf("%s = %s", d.quote("year"), d.placeholder(argn)))
			args = append(args, year)
		}
		clauses = append(clauses, "("+strings.Join(or, " OR ")+")")
		return "WHERE " + strings.Join(clauses, " AND "), args
	}

	if f.Title != "" {
		clauses = append(clauses, d.ilike(d.quote("title"), d.placeholder(argn)))
		args = append(args, likePattern(f.Title, d.lowerArg))
		argn++
	}

	if f.Secondary != "" {
		clauses = append(clauses, d.ilike(d.quote(k.Secondary), d.placeholder(argn)))
		args = append(args, likePattern(f.Secondary, d.lowerArg))
		argn++
	}

	if f.Year != nil {
		clauses = append(clauses, fmt.Sprintf("%s = %s", d.quote("year"), d.placeholder(argn)))
		args = append(args, *f.Year)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func (d Dialect) listQuery(k Kind, f Filter) (string, []any) {
	where, args := d.where(k, f)
	query := fmt.Sprintf("SELECT %s FROM %s %s %s",
		d.selectColumns(k), d.quote(k.Table()), where, d.orderBy())
	return query, args
}

func (d Dialect) getQuery(k Kind) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		d.selectColumns(k), d.quote(k.Table()), d.quote("id"), d.placeholder(1))
}

func (d Dialect) nextRankQuery(k Kind) string {
	return fmt.Sprintf("SELECT COALESCE(MAX(%s), 0) + 1 FROM %s", d.quote("rank"), d.quote(k.Table()))
}

// insertQuery inserts the kind's text fields, year and rank, in that argument order.
func (d Dialect) insertQuery(k Kind) string {
	cols := make([]string, 0, len(k.Fields)+2)
	phs := make([]string, 0, len(k.Fields)+2)
	for i, f := range k.Fields {
		cols = append(cols, d.quote(f.Name))
		phs = append(phs, d.placeholder(i+1))
	}
	n := len(k.Fields)
	cols = append(cols, d.quote("year"), d.quote("rank"))
	phs = append(phs, d.placeholder(n+1), d.placeholder(n+2))
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.quote(k.Table()), strings.Join(cols, ", "), strings.Join(phs, ", "))
}

// insertArgs returns the arguments for insertQuery. Empty optional fields are stored as NULL.
func insertArgs(k Kind, it *Item) []any {
	args := make([]any, 0, len(k.Fields)+2)
	for _, f := range k.Fields {
		v := it.Fields[f.Name]
		if v == "" && !f.Required {
			args = append(args, nil)
			continue
		}
		args = append(args, v)
	}
	return append(args, it.Year, it.Rank)
}

func (d Dialect) deleteQuery(k Kind) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = %s", d.quote(k.Table()), d.quote("id"), d.placeholder(1))
}

// scanner is satisfied by pgx.Row(s) and *sql.Row(s).
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(k Kind, row scanner) (Item, error) {
	values := make([]string, len(k.Fields))
	var (
		it   Item
		rank *int
	)
	dest := make([]any, 0, len(k.Fields)+3)
	dest = append(dest, &it.ID)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &it.Year, &rank)

	if err := row.Scan(dest...); err != nil {
		return Item{}, err
	}

	it.Kind = k.Name
	it.Fields = make(map[string]string, len(k.Fields))
	for i, f := range k.Fields {
		it.Fields[f.Name] = values[i]
	}
	if rank != nil {
		it.Rank = *rank
	}
	return it, nil
}
