package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/expenses/internal/domain/model"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

func (d dialect) String() string {
	if d == dialectPostgres {
		return "postgres"
	}
	return "sqlite"
}

// "date" is quoted; it is a keyword in postgres.
const (
	selectColumns = `SELECT id, amount, category, COALESCE("date", ''), COALESCE(description, '') FROM expenses`

	queryInsert = `INSERT INTO expenses (amount, category, "date", description) VALUES (?, ?, ?, ?) RETURNING id`
	queryGet    = selectColumns + " WHERE id = ?"
	queryList   = selectColumns + " ORDER BY id"
	queryUpdate = `UPDATE expenses SET amount = ?, category = ?, "date" = ?, description = ? WHERE id = ?`
	queryDelete = "DELETE FROM expenses WHERE id = ?"
	queryCount  = "SELECT COUNT(*) FROM expenses"
)

// SQLStore is a Store on database/sql, backed by sqlite or postgres.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// q rewrites ? placeholders into the dialect's form.
func (s *SQLStore) q(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (model.Expense, error) {
	var e model.Expense
	if err := row.Scan(&e.ID, &e.Amount, &e.Category, &e.Date, &e.Description); err != nil {
		return model.Expense{}, err
	}
	return e, nil
}

// Create implements Store.
func (s *SQLStore) Create(ctx context.Context, d model.Draft) (model.Expense, error) {
	e := d.Expense()
	err := s.db.QueryRowContext(ctx, s.q(queryInsert), e.Amount, e.Category, e.Date, e.Description).Scan(&e.ID)
	if err != nil {
		return model.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	return e, nil
}

// Get implements Store.
func (s *SQLStore) Get(ctx context.Context, id int64) (model.Expense, error) {
	e, err := scanExpense(s.db.QueryRowContext(ctx, s.q(queryGet), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, ErrNotFound
	}
	if err != nil {
		return model.Expense{}, fmt.Errorf("select expense %d: %w", id, err)
	}
	return e, nil
}

// List implements Store.
func (s *SQLStore) List(ctx context.Context) ([]model.Expense, error) {
	rows, err := s.db.QueryContext(ctx, s.q(queryList))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	out := make([]model.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

// Update implements Store. The read and the write share one transaction.
func (s *SQLStore) Update(ctx context.Context, id int64, p model.Patch) (model.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Expense{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := queryGet
	if s.dialect == dialectPostgres {
		query += " FOR UPDATE"
	}
	current, err := scanExpense(tx.QueryRowContext(ctx, s.q(query), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, ErrNotFound
	}
	if err != nil {
		return model.Expense{}, fmt.Errorf("select expense %d: %w", id, err)
	}

	next := p.Apply(current)
	if _, err := tx.ExecContext(ctx, s.q(queryUpdate), next.Amount, next.Category, next.Date, next.Description, id); err != nil {
		return model.Expense{}, fmt.Errorf("update expense %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Expense{}, fmt.Errorf("commit update: %w", err)
	}
	return next, nil
}

// Delete implements Store.
func (s *SQLStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.q(queryDelete), id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping implements Store.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Count implements Store.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, queryCount).Scan(&n); err != nil {
		return 0, fmt.Errorf("count expenses: %w", err)
	}
	return n, nil
}

// Close implements Store.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
