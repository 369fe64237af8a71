package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	pgx "github.com/jackc/pgx/v4"

	"github.com/yaddak/yaddak/internal/common/db"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/store"
	"github.com/yaddak/yaddak/internal/user/domain"
)

const (
	Table = "users"

	NameKey  = "users_user_name_key"
	EmailKey = "users_user_email_key"
)

type Repository interface {
	store.Repository[domain.User]
	FindByName(ctx context.Context, name string) (domain.User, error)
	FindByAuth(ctx context.Context, digest string) (domain.User, error)
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}

var Schema = store.Schema[domain.User]{
	Table: Table,
	Key:   "id",
	Columns: []store.Column{
		{Name: "id", Type: "uuid NOT NULL PRIMARY KEY"},
		{Name: "user_name", Type: "text NOT NULL"},
		{Name: "user_email", Type: "text NOT NULL"},
		{Name: "user_auth", Type: "text NOT NULL"},
	},
	Indexes: []store.Index{
		{Name: NameKey, Columns: []string{"user_name"}, Unique: true},
		{Name: EmailKey, Columns: []string{"user_email"}, Unique: true},
		{Name: "users_user_auth_idx", Columns: []string{"user_auth"}},
	},
	Scan: func(row pgx.Row) (domain.User, error) {
		var u domain.User
		err := row.Scan(&u.ID, &u.UserName, &u.UserEmail, &u.UserAuth)
		return u, err
	},
	Values: func(u domain.User) []any {
		return []any{u.ID, u.UserName, u.UserEmail, u.UserAuth}
	},
}

type PgRepository struct {
	*store.PgRepository[domain.User]
}

func NewPgRepository(q db.Querier, log *logger.Logger, opts store.Options) *PgRepository {
	return &PgRepository{PgRepository: store.NewPgRepository(q, Schema, log, opts)}
}

// Insert maps a violation of either unique index to AUTH_ALREADY_EXISTS.
func (r *PgRepository) Insert(ctx context.Context, user domain.User) error {
	return uniqueToAlreadyExists(r.PgRepository.Insert(ctx, user))
}

func (r *PgRepository) Update(ctx context.Context, id uuid.UUID, user domain.User) error {
	return uniqueToAlreadyExists(r.PgRepository.Update(ctx, id, user))
}

func (r *PgRepository) FindByName(ctx context.Context, name string) (domain.User, error) {
	return r.FindOne(ctx, sq.Eq{store.Ident("user_name"): name})
}

func (r *PgRepository) FindByAuth(ctx context.Context, digest string) (domain.User, error) {
	return r.FindOne(ctx, sq.Eq{store.Ident("user_auth"): digest})
}

// NameTaken reports whether another user already holds name. exclude may be
// uuid.Nil.
func (r *PgRepository) NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error) {
	return r.Exists(ctx, excluding(sq.Eq{store.Ident("user_name"): name}, exclude))
}

func (r *PgRepository) EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error) {
	return r.Exists(ctx, excluding(sq.Eq{store.Ident("user_email"): email}, exclude))
}

func excluding(cond sq.Sqlizer, id uuid.UUID) sq.Sqlizer {
	if id == uuid.Nil {
		return cond
	}
	return sq.And{cond, sq.NotEq{store.Ident("id"): id}}
}

// uniqueToAlreadyExists replaces the storage conflict for a unique index
// violation with AUTH_ALREADY_EXISTS. The driver error is kept as the cause
// and the STORAGE_CONFLICT wrapper is dropped, so callers see one code.
func uniqueToAlreadyExists(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || !db.IsUniqueViolation(pgErr, "") {
		return err
	}
	switch pgErr.ConstraintName {
	case NameKey:
		return commonerrors.ErrAlreadyExists.WithMessage("user name is already used").WithCause(pgErr)
	case EmailKey:
		return commonerrors.ErrAlreadyExists.WithMessage("user email is already used").WithCause(pgErr)
	}
	return commonerrors.ErrAlreadyExists.WithCause(pgErr)
}
