package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxSession is the Session implementation over a pgx connection pool.
// Every call borrows a pooled connection; the pool provides the
// backpressure for blocking database I/O.
type PgxSession struct {
	pool *pgxpool.Pool
}

// NewPgxSession connects a pool to the given database URL and verifies the
// connection.
func NewPgxSession(ctx context.Context, url string) (*PgxSession, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &PgxSession{pool: pool}, nil
}

func (s *PgxSession) Execute(ctx context.Context, query string, values ...interface{}) error {
	_, err := s.pool.Exec(ctx, rewritePlaceholders(query), values...)
	return err
}

func (s *PgxSession) ExecuteIter(ctx context.Context, query string, values ...interface{}) (ResultSet, error) {
	rows, err := s.pool.Query(ctx, rewritePlaceholders(query), values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collected := make([]Row, 0)
	for rows.Next() {
		row, err := mapRow(rows)
		if err != nil {
			return nil, err
		}
		collected = append(collected, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &resultSet{values: collected}, nil
}

func (s *PgxSession) ExecuteStream(ctx context.Context, query string, fn func(Row) error, values ...interface{}) error {
	rows, err := s.pool.Query(ctx, rewritePlaceholders(query), values...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		row, err := mapRow(rows)
		if err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *PgxSession) Close() {
	s.pool.Close()
}

func mapRow(rows pgx.Rows) (Row, error) {
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}

	fields := rows.FieldDescriptions()
	row := make(Row, len(fields))
	for i, field := range fields {
		row[field.Name] = values[i]
	}
	return row, nil
}
