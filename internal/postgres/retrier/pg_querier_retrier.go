// SPDX-License-Identifier: Apache-2.0

package retrier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xataio/catalogsearch/internal/backoff"
	"github.com/xataio/catalogsearch/internal/postgres"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Querier retries postgres operations that fail with transient errors,
// rebuilding the connection between attempts.
type Querier struct {
	connBuilder     connBuilder
	backoffProvider backoff.Provider
	logger          loglib.Logger

	mu      sync.RWMutex
	querier postgres.Querier
}

type connBuilder func(context.Context) (postgres.Querier, error)

func NewQuerier(ctx context.Context, cfg backoff.Config, connBuilder connBuilder, logger loglib.Logger) (*Querier, error) {
	conn, err := connBuilder(ctx)
	if err != nil {
		return nil, err
	}

	return &Querier{
		connBuilder:     connBuilder,
		querier:         conn,
		backoffProvider: backoff.NewProvider(&cfg),
		logger: loglib.NewLogger(logger).WithFields(loglib.Fields{
			loglib.ModuleField: "postgres_querier_retrier",
		}),
	}, nil
}

func (q *Querier) Query(ctx context.Context, query string, args ...any) (postgres.Rows, error) {
	var rows postgres.Rows
	op := func() error {
		var err error
		rows, err = q.current().Query(ctx, query, args...)
		return err
	}

	if err := q.withRetry(ctx, op); err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryRow defers the query until the row is scanned, so that the scan can
// be retried.
func (q *Querier) QueryRow(ctx context.Context, query string, args ...any) postgres.Row {
	return &row{
		scan: func(dest ...any) error {
			return q.withRetry(ctx, func() error {
				return q.current().QueryRow(ctx, query, args...).Scan(dest...)
			})
		},
	}
}

func (q *Querier) Exec(ctx context.Context, query string, args ...any) (postgres.CommandTag, error) {
	var cmdTag postgres.CommandTag
	op := func() error {
		var err error
		cmdTag, err = q.current().Exec(ctx, query, args...)
		return err
	}

	if err := q.withRetry(ctx, op); err != nil {
		return postgres.CommandTag{}, err
	}
	return cmdTag, nil
}

func (q *Querier) Ping(ctx context.Context) error {
	return q.current().Ping(ctx)
}

func (q *Querier) Close(ctx context.Context) error {
	return q.current().Close(ctx)
}

func (q *Querier) current() postgres.Querier {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.querier
}

func (q *Querier) withRetry(ctx context.Context, operation func() error) error {
	err := operation()
	if err == nil || !q.isRetriableError(err) {
		return err
	}

	// only initialise the backoff provider if the operation fails
	bo := q.backoffProvider(ctx)
	err = bo.RetryNotify(func() error {
		if connErr := q.resetConn(ctx); connErr != nil {
			return fmt.Errorf("unable to reset connection: %w", connErr)
		}

		err := operation()
		if err == nil {
			return nil
		}
		if !q.isRetriableError(err) {
			return fmt.Errorf("%w: %w", err, backoff.ErrPermanent)
		}
		return err
	}, func(err error, d time.Duration) {
		q.logger.Warn(err, "retrying postgres operation after error", loglib.Fields{
			"retry_delay": d.String(),
		})
	})

	if err == nil {
		q.logger.Info("retried postgres operation succeeded")
	}
	return err
}

func (q *Querier) resetConn(ctx context.Context) error {
	conn, connErr := q.connBuilder(ctx)
	if connErr != nil {
		return connErr
	}

	q.mu.Lock()
	previous := q.querier
	q.querier = conn
	q.mu.Unlock()

	if previous != nil {
		previous.Close(ctx)
	}
	return nil
}

func (q *Querier) isRetriableError(err error) bool {
	mappedErr := postgres.MapError(err)

	permissionDenied := &postgres.ErrPermissionDenied{}
	constraintViolation := &postgres.ErrConstraintViolation{}
	syntaxError := &postgres.ErrSyntaxError{}
	doesNotExist := &postgres.ErrRelationDoesNotExist{}
	switch {
	case errors.Is(mappedErr, postgres.ErrNoRows),
		errors.As(mappedErr, &permissionDenied),
		errors.As(mappedErr, &constraintViolation),
		errors.As(mappedErr, &syntaxError),
		errors.As(mappedErr, &doesNotExist):
		return false
	}

	// retry everything else unless the caller gave up
	return !errors.Is(err, context.Canceled)
}

type row struct {
	scan func(dest ...any) error
}

func (r *row) Scan(dest ...any) error {
	return r.scan(dest...)
}
