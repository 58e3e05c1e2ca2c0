package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%dune%", likePattern("dune", false))
	assert.Equal(t, "%dune%", likePattern("DUNE", true))
	assert.Equal(t, "%élan%", likePattern("ÉLAN", true))
	assert.Equal(t, "%100!% !_x!!%", likePattern("100% _x!", false))
}

func TestDialect_Where(t *testing.T) {
	year := 1965

	t.Run("postgres numbered placeholders", func(t *testing.T) {
		where, args := Postgres.where(Books, Filter{Title: "War", Secondary: "tol", Year: &year})
		assert.Equal(t, `WHERE 1=1 AND "title" ILIKE $1 ESCAPE '!' AND "author" ILIKE $2 ESCAPE '!' AND "year" = $3`, where)
		assert.Equal(t, []any{"%War%", "%tol%", 1965}, args)
	})

	t.Run("sqlite lowercases the pattern", func(t *testing.T) {
		where, args := SQLite.where(Films, Filter{Title: "HEAT"})
		assert.Equal(t, `WHERE 1=1 AND unicode_lower("title") LIKE ? ESCAPE '!'`, where)
		assert.Equal(t, []any{"%heat%"}, args)
	})

	t.Run("search numeric adds year", func(t *testing.T) {
		where, args := MySQL.where(Magazines, Filter{Search: "1999"})
		assert.Equal(t, "WHERE 1=1 AND (LOWER(`title`) LIKE ? ESCAPE '!' OR LOWER(`publisher`) LIKE ? ESCAPE '!' OR `year` = ?)", where)
		assert.Equal(t, []any{"%1999%", "%1999%", 1999}, args)
	})

	t.Run("search beyond the year column range is text only", func(t *testing.T) {
		where, args := Postgres.where(Books, Filter{Search: "3000000000"})
		assert.Equal(t, `WHERE 1=1 AND ("title" ILIKE $1 ESCAPE '!' OR "author" ILIKE $2 ESCAPE '!')`, where)
		assert.Equal(t, []any{"%3000000000%", "%3000000000%"}, args)
	})

	t.Run("search text", func(t *testing.T) {
		where, args := Postgres.where(Books, Filter{Search: "dune", Title: "ignored"})
		assert.Equal(t, `WHERE 1=1 AND ("title" ILIKE $1 ESCAPE '!' OR "author" ILIKE $2 ESCAPE '!')`, where)
		assert.Len(t, args, 2)
	})

	t.Run("match none", func(t *testing.T) {
		where, args := SQLite.where(Books, Filter{MatchNone: true, Title: "x"})
		assert.Equal(t, "WHERE 1=0", where)
		assert.Empty(t, args)
	})
}

func TestDialect_Statements(t *testing.T) {
	assert.Equal(t,
		`INSERT INTO "films" ("title", "director", "genre", "year", "rank") VALUES ($1, $2, $3, $4, $5)`,
		Postgres.insertQuery(Films))
	assert.Equal(t,
		"SELECT COALESCE(MAX(`rank`), 0) + 1 FROM `books`",
		MySQL.nextRankQuery(Books))
	assert.Equal(t,
		`SELECT "id", COALESCE("title", ''), COALESCE("author", ''), "year", "rank" FROM "books" WHERE "id" = ?`,
		SQLite.getQuery(Books))
	assert.Equal(t, `ORDER BY "rank" IS NULL, "rank" ASC, "id" ASC`, Postgres.orderBy())
}

func TestInsertArgs(t *testing.T) {
	it := &Item{Fields: map[string]string{"title": "Heat", "director": "Mann"}, Year: 1995, Rank: 4}
	assert.Equal(t, []any{"Heat", "Mann", nil, 1995, 4}, insertArgs(Films, it))
}
