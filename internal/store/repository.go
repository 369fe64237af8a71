// Package store defines the repository contract every persisted entity
// satisfies and its PostgreSQL adapter.
package store

import (
	"context"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v4"
)

// Repository is the CRUD and migrate contract shared by all entities.
//
// Get fails with STORAGE_NOT_FOUND when no row matches. Update and Delete
// report STORAGE_NOT_FOUND when zero rows were affected.
type Repository[T any] interface {
	Migrate(ctx context.Context) error
	Get(ctx context.Context, id uuid.UUID) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	Insert(ctx context.Context, entity T) error
	Update(ctx context.Context, id uuid.UUID, entity T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Migrator is the part of Repository used at bootstrap.
type Migrator interface {
	Migrate(ctx context.Context) error
}

type Column struct {
	Name string
	// Type is the DDL fragment following the column name, e.g. "text NOT NULL".
	Type string
}

type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Schema describes how an entity maps onto one table. Columns are ordered and
// must include Key; Values returns bound values in the same order.
type Schema[T any] struct {
	Table       string
	Key         string
	Columns     []Column
	Constraints []string
	Indexes     []Index
	Scan        func(row pgx.Row) (T, error)
	Values      func(entity T) []any
}

func (s Schema[T]) columnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = Ident(c.Name)
	}
	return names
}
