// SPDX-License-Identifier: Apache-2.0

package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

type Querier interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) Row
	Exec(ctx context.Context, query string, args ...any) (CommandTag, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Rows is the subset of pgx.Rows used to read query results.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

type Row interface {
	Scan(dest ...any) error
}

type CommandTag struct {
	pgconn.CommandTag
}

type mappedRow struct {
	inner Row
}

func (mr *mappedRow) Scan(dest ...any) error {
	return MapError(mr.inner.Scan(dest...))
}

type mappedRows struct {
	Rows
}

func (mr *mappedRows) Scan(dest ...any) error {
	return MapError(mr.Rows.Scan(dest...))
}

func (mr *mappedRows) Err() error {
	return MapError(mr.Rows.Err())
}
