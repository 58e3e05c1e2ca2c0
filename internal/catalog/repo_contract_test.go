package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// testRepository runs the store behaviour every Repository implementation must have.
// newRepo must return a repository over empty tables.
func testRepository(t *testing.T, newRepo func(t *testing.T) Repository) {
	t.Run("rank assignment", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		first := mustCreate(t, repo, Books, "Dune", "Herrington", 1965)
		second := mustCreate(t, repo, Books, "Foundation", "Asimov", 1951)

		assert.Equal(t, 1, first.Rank)
		assert.Equal(t, 2, second.Rank)
		assert.NotEqual(t, first.ID, second.ID)

		// kinds rank independently
		film := mustCreate(t, repo, Films, "Alien", "Scott", 1979)
		assert.Equal(t, 1, film.Rank)

		got, err := repo.Get(ctx, Books, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Foundation", got.Title())
		assert.Equal(t, "Asimov", got.Get("author"))
		assert.Equal(t, 1951, got.Year)
		assert.Equal(t, 2, got.Rank)
	})

	t.Run("delete compacts ranks", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mustCreate(t, repo, Books, "Dune", "Herrington", 1965)
		foundation := mustCreate(t, repo, Books, "Foundation", "Asimov", 1951)
		mustCreate(t, repo, Books, "Neuromancer", "Gibson", 1984)

		require.NoError(t, repo.Delete(ctx, Books, foundation.ID))

		items, err := repo.List(ctx, Books, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Dune", "Neuromancer"}, titles(items))
		assert.Equal(t, []int{1, 2}, ranks(items))

		_, err = repo.Get(ctx, Books, foundation.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete unknown id leaves ranks untouched", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mustCreate(t, repo, Magazines, "Wired", "", 2020)
		mustCreate(t, repo, Magazines, "Byte", "", 1985)

		err := repo.Delete(ctx, Magazines, 999999)
		assert.True(t, errors.Is(err, ErrNotFound))

		items, err := repo.List(ctx, Magazines, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Wired", "Byte"}, titles(items))
		assert.Equal(t, []int{1, 2}, ranks(items))
	})

	t.Run("ranks stay dense across mixed operations", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var ids []int64
		for i := 0; i < 8; i++ {
			it := mustCreate(t, repo, Films, fmt.Sprintf("Film %d", i), "Director", 2000+i)
			ids = append(ids, it.ID)
		}
		for _, i := range []int{0, 7, 3, 4} {
			require.NoError(t, repo.Delete(ctx, Films, ids[i]))
			assertDense(t, repo, Films)
		}
		last := mustCreate(t, repo, Films, "Film 8", "Director", 2008)
		assert.Equal(t, 5, last.Rank)

		items, err := repo.List(ctx, Films, Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Film 1", "Film 2", "Film 5", "Film 6", "Film 8"}, titles(items))
		assertDense(t, repo, Films)
	})

	t.Run("filters", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		mustCreate(t, repo, Books, "War and Peace", "Tolstoy", 1869)
		mustCreate(t, repo, Books, "Dune", "Herrington", 1965)
		mustCreate(t, repo, Books, "The Art of WAR", "Sun Tzu", 1965)
		mustCreate(t, repo, Books, "100% Pure", "Under_Score", 2001)
		mustCreate(t, repo, Books, "Élan Vital", "Bergson", 1907)
		mustCreate(t, repo, Books, "Преступление и наказание", "Достоевский", 1866)

		year := 1965
		tests := []struct {
			name   string
			filter Filter
			want   []string
		}{
			{"empty", Filter{}, []string{"War and Peace", "Dune", "The Art of WAR", "100% Pure", "Élan Vital", "Преступление и наказание"}},
			{"title substring case-insensitive", Filter{Title: "war"}, []string{"War and Peace", "The Art of WAR"}},
			{"year exact", Filter{Year: &year}, []string{"Dune", "The Art of WAR"}},
			{"secondary substring", Filter{Secondary: "TOL"}, []string{"War and Peace"}},
			{"combined filters intersect", Filter{Title: "war", Year: &year}, []string{"The Art of WAR"}},
			{"match none", Filter{MatchNone: true}, []string{}},
			{"percent is literal", Filter{Title: "% P"}, []string{"100% Pure"}},
			{"underscore is literal", Filter{Secondary: "r_s"}, []string{"100% Pure"}},
			{"search title or secondary", Filter{Search: "tzu"}, []string{"The Art of WAR"}},
			{"search year", Filter{Search: "1965"}, []string{"Dune", "The Art of WAR"}},
			{"accented title exact case", Filter{Title: "Élan"}, []string{"Élan Vital"}},
			{"accented title folded", Filter{Title: "élan"}, []string{"Élan Vital"}},
			{"cyrillic title", Filter{Title: "ПРЕСТУПЛЕНИЕ"}, []string{"Преступление и наказание"}},
			{"cyrillic secondary", Filter{Secondary: "дост"}, []string{"Преступление и наказание"}},
			{"cyrillic search", Filter{Search: "Наказание"}, []string{"Преступление и наказание"}},
			{"search ignores per-field filters", Filter{Search: "dune", Title: "war"}, []string{"Dune"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				items, err := repo.List(ctx, Books, tt.filter)
				require.NoError(t, err)
				assert.Equal(t, tt.want, titles(items))
			})
		}
	})

	t.Run("optional field stored empty", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		film := Item{Kind: Films.Name, Fields: map[string]string{"title": "Heat", "director": "Mann"}, Year: 1995}
		require.NoError(t, repo.Create(ctx, Films, &film))

		got, err := repo.Get(ctx, Films, film.ID)
		require.NoError(t, err)
		assert.Equal(t, "", got.Get("genre"))
		assert.Equal(t, "Mann", got.Get("director"))
	})

	t.Run("concurrent creates get distinct ranks", func(t *testing.T) {
		repo := newRepo(t)

		var g errgroup.Group
		for i := 0; i < 10; i++ {
			g.Go(func() error {
				it := Item{Kind: Books.Name, Fields: map[string]string{"title": fmt.Sprintf("Book %d", i), "author": "A"}, Year: 2000}
				return repo.Create(context.Background(), Books, &it)
			})
		}
		require.NoError(t, g.Wait())
		assertDense(t, repo, Books)
	})
}

func mustCreate(t *testing.T, repo Repository, k Kind, title, secondary string, year int) Item {
	t.Helper()
	fields := map[string]string{"title": title}
	for _, f := range k.Fields {
		if f.Name != "title" && f.Required {
			fields[f.Name] = secondary
			if fields[f.Name] == "" {
				fields[f.Name] = "n/a"
			}
		}
	}
	it := Item{Kind: k.Name, Fields: fields, Year: year}
	require.NoError(t, repo.Create(context.Background(), k, &it))
	return it
}

func assertDense(t *testing.T, repo Repository, k Kind) {
	t.Helper()
	items, err := repo.List(context.Background(), k, Filter{})
	require.NoError(t, err)
	for i, it := range items {
		assert.Equal(t, i+1, it.Rank, "rank of %q", it.Title())
	}
}

func titles(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Title()
	}
	return out
}

func ranks(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Rank
	}
	return out
}
