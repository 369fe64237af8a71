package service

import (
	"context"

	"github.com/google/uuid"

	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

type IdentityLookup interface {
	NameTaken(ctx context.Context, name string, exclude uuid.UUID) (bool, error)
	EmailTaken(ctx context.Context, email string, exclude uuid.UUID) (bool, error)
}

// UniquenessGuard rejects a login name or contact address already held by
// another user, or reserved for a system user. Matching is exact and
// case-sensitive, except reserved addresses which match in any case. The unique indexes on
// users remain the authoritative check; this only fails fast with a precise
// message.
type UniquenessGuard struct {
	lookup IdentityLookup
}

func NewUniquenessGuard(lookup IdentityLookup) *UniquenessGuard {
	return &UniquenessGuard{lookup: lookup}
}

// Check tests name, then email. exclude is the id of the user being updated,
// or uuid.Nil for a new identity.
func (g *UniquenessGuard) Check(ctx context.Context, name, email string, exclude uuid.UUID) error {
	if exclude != userdomain.CatalogOwnerID {
		if userdomain.ReservedName(name) {
			return ErrUserNameTaken
		}
		if userdomain.ReservedEmail(email) {
			return ErrUserEmailTaken
		}
	}

	taken, err := g.lookup.NameTaken(ctx, name, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrUserNameTaken
	}

	taken, err = g.lookup.EmailTaken(ctx, email, exclude)
	if err != nil {
		return err
	}
	if taken {
		return ErrUserEmailTaken
	}
	return nil
}
