package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yaddak/yaddak/internal/common/db"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/observability/metrics"
)

var tracer = otel.Tracer("github.com/yaddak/yaddak/internal/store")

type Options struct {
	Retry   db.RetryConfig
	Breaker *db.DBCircuitBreaker
}

// PgRepository implements Repository[T] for any entity with a Schema. All
// caller values are bound through $n placeholders.
type PgRepository[T any] struct {
	q       db.Querier
	schema  Schema[T]
	log     *logger.Logger
	retry   db.RetryConfig
	breaker *db.DBCircuitBreaker
	sql     sq.StatementBuilderType
}

func NewPgRepository[T any](q db.Querier, schema Schema[T], log *logger.Logger, opts Options) *PgRepository[T] {
	retry := opts.Retry
	if retry.MaxAttempts == 0 {
		retry = db.DefaultRetryConfig
	}
	return &PgRepository[T]{
		q:       q,
		schema:  schema,
		log:     log,
		retry:   retry,
		breaker: opts.Breaker,
		sql:     sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *PgRepository[T]) Schema() Schema[T] {
	return r.schema
}

func (r *PgRepository[T]) Migrate(ctx context.Context) error {
	stmts := append([]string{r.schema.CreateTableSQL()}, r.schema.CreateIndexSQL()...)
	return r.run(ctx, "migrate", func(ctx context.Context) error {
		for _, stmt := range stmts {
			if _, err := r.q.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PgRepository[T]) Get(ctx context.Context, id uuid.UUID) (T, error) {
	return r.FindOne(ctx, sq.Eq{Ident(r.schema.Key): id})
}

func (r *PgRepository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.FindWhere(ctx, nil)
}

func (r *PgRepository[T]) Insert(ctx context.Context, entity T) error {
	query, args, err := r.sql.
		Insert(Ident(r.schema.Table)).
		Columns(r.schema.columnNames()...).
		Values(r.schema.Values(entity)...).
		ToSql()
	if err != nil {
		return commonerrors.ErrBackend.WithCause(fmt.Errorf("build insert: %w", err))
	}

	return r.run(ctx, "insert", func(ctx context.Context) error {
		_, err := r.q.Exec(ctx, query, args...)
		return err
	})
}

// Update overwrites every non-key column of the row matching id.
func (r *PgRepository[T]) Update(ctx context.Context, id uuid.UUID, entity T) error {
	values := r.schema.Values(entity)
	set := make(map[string]interface{}, len(values))
	for i, c := range r.schema.Columns {
		if c.Name == r.schema.Key {
			continue
		}
		set[Ident(c.Name)] = values[i]
	}

	query, args, err := r.sql.
		Update(Ident(r.schema.Table)).
		SetMap(set).
		Where(sq.Eq{Ident(r.schema.Key): id}).
		ToSql()
	if err != nil {
		return commonerrors.ErrBackend.WithCause(fmt.Errorf("build update: %w", err))
	}

	return r.run(ctx, "update", func(ctx context.Context) error {
		tag, err := r.q.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return commonerrors.ErrNotFound
		}
		return nil
	})
}

func (r *PgRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.sql.
		Delete(Ident(r.schema.Table)).
		Where(sq.Eq{Ident(r.schema.Key): id}).
		ToSql()
	if err != nil {
		return commonerrors.ErrBackend.WithCause(fmt.Errorf("build delete: %w", err))
	}

	return r.run(ctx, "delete", func(ctx context.Context) error {
		tag, err := r.q.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return commonerrors.ErrNotFound
		}
		return nil
	})
}

// FindOne returns the first row matching where, or STORAGE_NOT_FOUND.
func (r *PgRepository[T]) FindOne(ctx context.Context, where sq.Sqlizer) (T, error) {
	var result T

	query, args, err := r.selectBuilder(where).Limit(1).ToSql()
	if err != nil {
		return result, commonerrors.ErrBackend.WithCause(fmt.Errorf("build select: %w", err))
	}

	err = r.run(ctx, "select", func(ctx context.Context) error {
		entity, err := r.schema.Scan(r.q.QueryRow(ctx, query, args...))
		if err != nil {
			return err
		}
		result = entity
		return nil
	})
	return result, err
}

// FindWhere returns every row matching where; a nil where selects all rows.
func (r *PgRepository[T]) FindWhere(ctx context.Context, where sq.Sqlizer) ([]T, error) {
	query, args, err := r.selectBuilder(where).ToSql()
	if err != nil {
		return nil, commonerrors.ErrBackend.WithCause(fmt.Errorf("build select: %w", err))
	}

	var result []T
	err = r.run(ctx, "select_all", func(ctx context.Context) error {
		rows, err := r.q.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		items := make([]T, 0)
		for rows.Next() {
			entity, err := r.schema.Scan(rows)
			if err != nil {
				return err
			}
			items = append(items, entity)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		result = items
		return nil
	})
	return result, err
}

// Exists reports whether any row matches where.
func (r *PgRepository[T]) Exists(ctx context.Context, where sq.Sqlizer) (bool, error) {
	query, args, err := r.sql.
		Select(Ident(r.schema.Key)).
		From(Ident(r.schema.Table)).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return false, commonerrors.ErrBackend.WithCause(fmt.Errorf("build exists: %w", err))
	}

	found := false
	err = r.run(ctx, "exists", func(ctx context.Context) error {
		var key uuid.UUID
		if err := r.q.QueryRow(ctx, query, args...).Scan(&key); err != nil {
			return err
		}
		found = true
		return nil
	})
	if errors.Is(err, commonerrors.ErrNotFound) {
		return false, nil
	}
	return found, err
}

func (r *PgRepository[T]) selectBuilder(where sq.Sqlizer) sq.SelectBuilder {
	b := r.sql.Select(r.schema.columnNames()...).From(Ident(r.schema.Table))
	if where != nil {
		b = b.Where(where)
	}
	return b
}

func (r *PgRepository[T]) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	ctx, span := tracer.Start(ctx, "store."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.sql.table", r.schema.Table),
			attribute.String("db.operation", operation),
		),
	)
	defer span.End()

	start := time.Now()
	attempt := 0
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		return db.RetryWithBackoff(ctx, r.log, r.retry, func(ctx context.Context) error {
			attempt++
			if attempt > 1 {
				metrics.DBQueryRetries.WithLabelValues(operation, r.schema.Table).Inc()
			}
			return fn(ctx)
		})
	})

	err = db.HandleQueryError(err, operation, r.schema.Table, start)
	if err != nil && !errors.Is(err, commonerrors.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.log.WithFields(ctx, logger.Fields{
			"operation": operation,
			"table":     r.schema.Table,
			"attempts":  attempt,
		}).Warnf("storage operation failed: %v", err)
	}
	return err
}
