package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
	dialect Dialect
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout, dialect: Postgres}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// lock serializes rank maintenance on the kind's table for the rest of tx.
// SHARE ROW EXCLUSIVE conflicts with itself but still admits plain readers.
func (r *PostgresRepo) lock(ctx context.Context, tx pgx.Tx, k Kind) error {
	sql := fmt.Sprintf("LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE", r.dialect.quote(k.Table()))
	if _, err := tx.Exec(ctx, sql); err != nil {
		return fmt.Errorf("lock %s: %w", k.Table(), err)
	}
	return nil
}

func (r *PostgresRepo) Create(ctx context.Context, k Kind, it *Item) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.lock(ctx, tx, k); err != nil {
		return err
	}

	var rank int
	if err := tx.QueryRow(ctx, r.dialect.nextRankQuery(k)).Scan(&rank); err != nil {
		return fmt.Errorf("next rank: %w", err)
	}
	it.Rank = rank

	var id int64
	insertSQL := r.dialect.insertQuery(k) + " RETURNING id"
	if err := tx.QueryRow(ctx, insertSQL, insertArgs(k, it)...).Scan(&id); err != nil {
		return fmt.Errorf("insert %s: %w", k.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	it.ID = id
	it.Kind = k.Name
	return nil
}

func (r *PostgresRepo) List(ctx context.Context, k Kind, f Filter) ([]Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args := r.dialect.listQuery(k, f)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		it, err := scanItem(k, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, k Kind, id int64) (Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	it, err := scanItem(k, r.db.QueryRow(ctx, r.dialect.getQuery(k), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, k Kind, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.lock(ctx, tx, k); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, r.dialect.deleteQuery(k), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", k.Name, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	table := r.dialect.quote(k.Table())
	renumberSQL := fmt.Sprintf(`
		UPDATE %[1]s t SET rank = o.pos
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY rank ASC NULLS LAST, id ASC) AS pos
			FROM %[1]s
		) o
		WHERE t.id = o.id AND t.rank IS DISTINCT FROM o.pos`, table)
	if _, err := tx.Exec(ctx, renumberSQL); err != nil {
		return fmt.Errorf("renumber %s: %w", k.Table(), err)
	}

	return tx.Commit(ctx)
}
