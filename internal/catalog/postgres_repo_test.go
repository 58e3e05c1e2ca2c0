package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medialib/internal/testutil"
)

func TestPostgresRepo(t *testing.T) {
	pool := testutil.PostgresPool(t)

	testRepository(t, func(t *testing.T) Repository {
		_, err := pool.Exec(context.Background(), "TRUNCATE books, magazines, films")
		require.NoError(t, err)
		return NewPostgresRepo(pool, 5*time.Second)
	})
}
