package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLRepo stores the catalog through database/sql. It serves SQLite and MySQL.
//
// SQLite handles must be opened with _txlock=immediate so that every transaction
// takes the write lock up front; MySQL transactions lock the rows they read with
// FOR UPDATE.
type SQLRepo struct {
	db      *sql.DB
	timeout time.Duration
	dialect Dialect
}

func NewSQLRepo(db *sql.DB, dialect Dialect, timeout time.Duration) *SQLRepo {
	return &SQLRepo{db: db, timeout: timeout, dialect: dialect}
}

func (r *SQLRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLRepo) forUpdate() string {
	if r.dialect.Name == MySQL.Name {
		return " FOR UPDATE"
	}
	return ""
}

func (r *SQLRepo) Create(ctx context.Context, k Kind, it *Item) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var rank int
	if err := tx.QueryRowContext(ctx, r.dialect.nextRankQuery(k)+r.forUpdate()).Scan(&rank); err != nil {
		return fmt.Errorf("next rank: %w", err)
	}
	it.Rank = rank

	res, err := tx.ExecContext(ctx, r.dialect.insertQuery(k), insertArgs(k, it)...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", k.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s: %w", k.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	it.ID = id
	it.Kind = k.Name
	return nil
}

func (r *SQLRepo) List(ctx context.Context, k Kind, f Filter) ([]Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	query, args := r.dialect.listQuery(k, f)
	rows, err := r.db.QueryContext(ctx, query, args...)
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

func (r *SQLRepo) Get(ctx context.Context, k Kind, id int64) (Item, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	it, err := scanItem(k, r.db.QueryRowContext(ctx, r.dialect.getQuery(k), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *SQLRepo) Delete(ctx context.Context, k Kind, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, r.dialect.deleteQuery(k), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", k.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", k.Name, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := r.renumber(ctx, tx, k); err != nil {
		return err
	}
	return tx.Commit()
}

// renumber rewrites the ranks of k to 1..N in their current order. Ranks only move
// down while walking in ascending order, so no two rows share a rank mid-way.
func (r *SQLRepo) renumber(ctx context.Context, tx *sql.Tx, k Kind) error {
	d := r.dialect
	query := fmt.Sprintf("SELECT %s, %s FROM %s %s%s",
		d.quote("id"), d.quote("rank"), d.quote(k.Table()), d.orderBy(), r.forUpdate())

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("renumber %s: %w", k.Table(), err)
	}
	type entry struct {
		id   int64
		rank sql.NullInt64
	}
	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.id, &e.rank); err != nil {
			rows.Close()
			return fmt.Errorf("renumber %s: %w", k.Table(), err)
		}
		entries = append(entries, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("renumber %s: %w", k.Table(), err)
	}

	update := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
		d.quote(k.Table()), d.quote("rank"), d.placeholder(1), d.quote("id"), d.placeholder(2))
	for i, e := range entries {
		pos := int64(i + 1)
		if e.rank.Valid && e.rank.Int64 == pos {
			continue
		}
		if _, err := tx.ExecContext(ctx, update, pos, e.id); err != nil {
			return fmt.Errorf("renumber %s: %w", k.Table(), err)
		}
	}
	return nil
}
